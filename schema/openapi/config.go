package openapi

import (
	"strings"

	"github.com/google/uuid"

	schemagen "github.com/goliatone/go-schemagen"
	"github.com/goliatone/go-schemagen/pkg/activity"
)

// SupportedVersions is the semver constraint WithOpenAPIVersion must satisfy.
const SupportedVersions = ">= 3.0.0, < 3.2.0"

type builderConfig struct {
	openAPIVersion string
	info           Info
	contentType    string
	generatorOpts  []schemagen.Option
	logger         schemagen.Logger
	emitter        *activity.Emitter
	actor          Actor
	newID          func() uuid.UUID
}

// Info is the document info block.
type Info struct {
	Title       string
	Version     string
	Description string
}

// Actor identifies who requested a build in emitted activity.
type Actor struct {
	ActorID  string
	UserID   string
	TenantID string
}

func defaultBuilderConfig() builderConfig {
	return builderConfig{
		openAPIVersion: "3.0.3",
		info: Info{
			Title:   "API",
			Version: "1.0.0",
		},
		contentType: "application/json",
		newID:       uuid.New,
	}
}

// BuilderOption configures a Builder.
type BuilderOption func(*builderConfig)

// WithOpenAPIVersion overrides the OpenAPI version string (default: 3.0.3).
// The value is checked against SupportedVersions when the document is built.
func WithOpenAPIVersion(version string) BuilderOption {
	return func(cfg *builderConfig) {
		if version == "" {
			return
		}
		cfg.openAPIVersion = version
	}
}

// InfoOption configures optional fields on the info section.
type InfoOption func(*Info)

// WithInfoDescription sets the info description.
func WithInfoDescription(description string) InfoOption {
	return func(info *Info) {
		info.Description = description
	}
}

// WithInfo configures the info block. Empty strings retain the existing
// values.
func WithInfo(title, version string, opts ...InfoOption) BuilderOption {
	return func(cfg *builderConfig) {
		if title != "" {
			cfg.info.Title = title
		}
		if version != "" {
			cfg.info.Version = version
		}
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.info)
			}
		}
	}
}

// WithContentType sets the media type used for request and response bodies.
func WithContentType(contentType string) BuilderOption {
	return func(cfg *builderConfig) {
		contentType = strings.TrimSpace(contentType)
		if contentType == "" {
			return
		}
		cfg.contentType = contentType
	}
}

// WithGeneratorOptions configures the schema generator used for every build.
func WithGeneratorOptions(opts ...schemagen.Option) BuilderOption {
	return func(cfg *builderConfig) {
		cfg.generatorOpts = append(cfg.generatorOpts, opts...)
	}
}

// WithLogger receives the generator's schema events.
func WithLogger(logger schemagen.Logger) BuilderOption {
	return func(cfg *builderConfig) {
		cfg.logger = logger
	}
}

// WithActivity emits build and conflict events through emitter.
func WithActivity(emitter *activity.Emitter, actor Actor) BuilderOption {
	return func(cfg *builderConfig) {
		cfg.emitter = emitter
		cfg.actor = actor
	}
}

// WithIDGenerator overrides how document build IDs are produced.
func WithIDGenerator(newID func() uuid.UUID) BuilderOption {
	return func(cfg *builderConfig) {
		if newID == nil {
			return
		}
		cfg.newID = newID
	}
}
