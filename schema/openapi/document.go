// Package openapi assembles OpenAPI 3 documents from schemagen contracts.
//
// A Builder collects operations and standalone components, runs every
// request and response body through one schemagen.Generator against a single
// repository, and publishes the repository's definitions under
// components.schemas in claim order.
package openapi

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"

	schemagen "github.com/goliatone/go-schemagen"
	"github.com/goliatone/go-schemagen/pkg/activity"
)

// Document is a built OpenAPI document.
type Document struct {
	ID      uuid.UUID
	Schemas []string
	Body    map[string]any
}

// Builder collects operations and components for one document. It is not
// safe for concurrent use; Build may be called repeatedly.
type Builder struct {
	config     builderConfig
	operations []Operation
	components []any
}

// NewBuilder constructs a Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	cfg := defaultBuilderConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Builder{config: cfg}
}

// AddOperation registers an operation. The method defaults to get and the
// operation ID to "method:path".
func (b *Builder) AddOperation(path, method, operationID string, opts ...OperationOption) *Builder {
	b.operations = append(b.operations, newOperation(path, method, operationID, opts...))
	return b
}

// AddComponent publishes a contract under components.schemas even when no
// operation references it.
func (b *Builder) AddComponent(contract any) *Builder {
	b.components = append(b.components, contract)
	return b
}

// Build generates every schema and assembles the document. Any generation
// error aborts the build; no partial document is returned.
func (b *Builder) Build(ctx context.Context) (*Document, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	id := b.config.newID()

	doc, err := b.build(ctx, id)
	if err != nil {
		b.emit(ctx, activity.BuildDocumentFailedEvent(b.eventInput(id, nil, err)))
		return nil, err
	}
	b.emit(ctx, activity.BuildDocumentBuiltEvent(b.eventInput(id, doc.Schemas, nil)))
	return doc, nil
}

func (b *Builder) build(ctx context.Context, id uuid.UUID) (*Document, error) {
	if err := validateVersion(b.config.openAPIVersion); err != nil {
		return nil, err
	}

	assembly := &assembly{
		builder:   b,
		repo:      schemagen.NewRepository(),
		generator: b.generator(ctx, id),
	}

	for i, component := range b.components {
		if _, err := assembly.schema(component); err != nil {
			return nil, fmt.Errorf("openapi: component %d: %w", i, err)
		}
	}

	paths, err := assembly.paths()
	if err != nil {
		return nil, err
	}

	if pending := assembly.repo.Pending(); len(pending) > 0 {
		return nil, fmt.Errorf("openapi: schemas %v were claimed but never defined", pending)
	}

	document := map[string]any{
		"openapi": b.config.openAPIVersion,
		"info":    b.buildInfo(),
		"paths":   paths,
	}
	if components := assembly.components(); len(components) > 0 {
		document["components"] = map[string]any{
			"schemas": components,
		}
	}
	if err := validateDocument(document); err != nil {
		return nil, err
	}

	return &Document{
		ID:      id,
		Schemas: assembly.repo.IDs(),
		Body:    document,
	}, nil
}

func (b *Builder) generator(ctx context.Context, id uuid.UUID) *schemagen.Generator {
	opts := append([]schemagen.Option{}, b.config.generatorOpts...)
	logger := b.config.logger
	if b.config.emitter.Enabled() {
		logger = activity.SchemaLogger(ctx, b.config.emitter, id.String(), logger)
	}
	if logger != nil {
		opts = append(opts, schemagen.WithLogger(logger))
	}
	return schemagen.NewGenerator(opts...)
}

func (b *Builder) buildInfo() map[string]any {
	info := map[string]any{
		"title":   b.config.info.Title,
		"version": b.config.info.Version,
	}
	if b.config.info.Description != "" {
		info["description"] = b.config.info.Description
	}
	return info
}

func (b *Builder) eventInput(id uuid.UUID, schemas []string, err error) activity.DocumentEventInput {
	return activity.DocumentEventInput{
		ActorID:        b.config.actor.ActorID,
		UserID:         b.config.actor.UserID,
		TenantID:       b.config.actor.TenantID,
		DocumentID:     id.String(),
		Title:          b.config.info.Title,
		Version:        b.config.info.Version,
		OpenAPIVersion: b.config.openAPIVersion,
		Schemas:        schemas,
		Operations:     len(b.operations),
		Err:            err,
	}
}

func (b *Builder) emit(ctx context.Context, event activity.Event) {
	// Activity is best effort; a failing sink never fails a build.
	_ = b.config.emitter.Emit(ctx, event)
}

type assembly struct {
	builder   *Builder
	repo      *schemagen.Repository
	generator *schemagen.Generator
}

func (a *assembly) schema(body any) (schemagen.Schema, error) {
	if contract, ok := body.(schemagen.DataContract); ok {
		return a.generator.GenerateSchema(contract, a.repo)
	}
	return a.generator.GenerateFor(body, a.repo)
}

func (a *assembly) content(body any) (map[string]any, error) {
	schema, err := a.schema(body)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		a.builder.config.contentType: map[string]any{
			"schema": schema.Map(schemagen.DefaultRefPrefix),
		},
	}, nil
}

func (a *assembly) paths() (map[string]any, error) {
	paths := map[string]any{}
	for _, op := range a.builder.operations {
		if err := op.validate(); err != nil {
			return nil, err
		}
		item, _ := paths[op.Path].(map[string]any)
		if item == nil {
			item = map[string]any{}
			paths[op.Path] = item
		}
		if _, exists := item[op.Method]; exists {
			return nil, fmt.Errorf("openapi: operation %s %s registered twice", op.Method, op.Path)
		}
		operation, err := a.operation(op)
		if err != nil {
			return nil, fmt.Errorf("openapi: operation %s %s: %w", op.Method, op.Path, err)
		}
		item[op.Method] = operation
	}
	return paths, nil
}

func (a *assembly) operation(op Operation) (map[string]any, error) {
	operation := map[string]any{
		"operationId": op.OperationID,
	}
	if op.Summary != "" {
		operation["summary"] = op.Summary
	}
	if op.Request != nil {
		content, err := a.content(op.Request)
		if err != nil {
			return nil, err
		}
		operation["requestBody"] = map[string]any{
			"required": true,
			"content":  content,
		}
	}

	responses := make(map[string]any, len(op.Responses))
	for _, resp := range op.Responses {
		entry := map[string]any{"description": resp.Description}
		if resp.Body != nil {
			content, err := a.content(resp.Body)
			if err != nil {
				return nil, err
			}
			entry["content"] = content
		}
		responses[resp.Status] = entry
	}
	operation["responses"] = responses
	return operation, nil
}

func (a *assembly) components() map[string]any {
	definitions := a.repo.Definitions()
	out := make(map[string]any, len(definitions))
	for _, id := range a.repo.IDs() {
		if body, ok := definitions[id]; ok {
			out[id] = body.Map(schemagen.DefaultRefPrefix)
		}
	}
	return out
}

func validateVersion(version string) error {
	parsed, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("openapi: invalid version %q: %w", version, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return err
	}
	if !constraint.Check(parsed) {
		return fmt.Errorf("openapi: version %s is outside %s", version, SupportedVersions)
	}
	return nil
}

func validateDocument(document map[string]any) error {
	if document == nil {
		return fmt.Errorf("openapi: document cannot be nil")
	}
	info, _ := document["info"].(map[string]any)
	if info == nil {
		return fmt.Errorf("openapi: document missing info section")
	}
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	paths, _ := document["paths"].(map[string]any)
	if len(paths) == 0 && document["components"] == nil {
		return fmt.Errorf("openapi: document must define at least one path or component")
	}
	for pathKey, pathValue := range paths {
		pathItem, _ := pathValue.(map[string]any)
		if len(pathItem) == 0 {
			return fmt.Errorf("openapi: path %q missing operations", pathKey)
		}
		for method, operationValue := range pathItem {
			operation, _ := operationValue.(map[string]any)
			if operation == nil {
				return fmt.Errorf("openapi: operation %s %s invalid payload", method, pathKey)
			}
			if id, _ := operation["operationId"].(string); id == "" {
				return fmt.Errorf("openapi: operation %s %s missing operationId", method, pathKey)
			}
			if responses, _ := operation["responses"].(map[string]any); len(responses) == 0 {
				return fmt.Errorf("openapi: operation %s %s missing responses", method, pathKey)
			}
		}
	}
	return nil
}
