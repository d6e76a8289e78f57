package schemagen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stoewer/go-strcase"

	"github.com/goliatone/go-schemagen/internal/hydrate"
	"github.com/goliatone/go-schemagen/layering"
)

// Settings is the file form of the generator options. Keys may be written in
// camelCase, snake_case or kebab-case.
type Settings struct {
	Naming             string         `json:"naming" yaml:"naming"`
	Prefix             string         `json:"prefix" yaml:"prefix"`
	ValueNaming        string         `json:"valueNaming" yaml:"valueNaming"`
	EnumsAsStrings     bool           `json:"enumsAsStrings" yaml:"enumsAsStrings"`
	InlineEnums        bool           `json:"inlineEnums" yaml:"inlineEnums"`
	FlattenInheritance bool           `json:"flattenInheritance" yaml:"flattenInheritance"`
	IgnoreDeprecated   bool           `json:"ignoreDeprecated" yaml:"ignoreDeprecated"`
	Rules              []RuleSettings `json:"rules" yaml:"rules"`
}

// RuleSettings declares an ExtensionFilter, optionally guarded by When.
type RuleSettings struct {
	Engine    string         `json:"engine" yaml:"engine"`
	When      string         `json:"when" yaml:"when"`
	Extension string         `json:"extension" yaml:"extension"`
	Value     string         `json:"value" yaml:"value"`
	Args      map[string]any `json:"args" yaml:"args"`
}

// LoadSettingsFile reads settings from a YAML or JSON file.
func LoadSettingsFile(path string) (Settings, error) {
	settings, _, err := LoadSettingsFiles(path)
	return settings, err
}

// LoadSettingsFiles reads and merges layered settings files ordered from
// strongest to weakest, so a local override listed first wins over a shared
// base listed after it. The returned trace names the file that supplied each
// setting.
func LoadSettingsFiles(paths ...string) (Settings, layering.Trace, error) {
	if len(paths) == 0 {
		return Settings{}, nil, fmt.Errorf("schemagen: no settings files given")
	}
	layers := make([]layering.Layer, 0, len(paths))
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, nil, fmt.Errorf("schemagen: read settings: %w", err)
		}
		ctx := hydrate.Context{Source: path, Format: strings.TrimPrefix(filepath.Ext(path), ".")}
		payload, err := parseSettingsPayload(ctx, raw)
		if err != nil {
			return Settings{}, nil, err
		}
		layers = append(layers, layering.Layer{Source: path, Payload: payload})
	}

	merged, trace := layering.Merge(layers...)
	settings, err := decodeSettings(hydrate.Context{Source: paths[0]}, merged)
	if err != nil {
		return Settings{}, nil, err
	}
	return settings, trace, nil
}

// ParseSettings decodes settings. ctx.Format "json" selects JSON; anything
// else is read as YAML.
func ParseSettings(ctx hydrate.Context, raw []byte) (Settings, error) {
	payload, err := parseSettingsPayload(ctx, raw)
	if err != nil {
		return Settings{}, err
	}
	return decodeSettings(ctx, payload)
}

// parseSettingsPayload unmarshals raw and normalises its keys so layers
// written in different key styles merge onto the same paths.
func parseSettingsPayload(ctx hydrate.Context, raw []byte) (map[string]any, error) {
	payload, err := hydrate.Parse(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("schemagen: parse settings %s: %w", describeSource(ctx), err)
	}
	normalized, err := normalizeSettingsKeys(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("schemagen: parse settings %s: %w", describeSource(ctx), err)
	}
	return normalized, nil
}

func decodeSettings(ctx hydrate.Context, payload map[string]any) (Settings, error) {
	decoder := hydrate.NewDecoder[Settings](
		hydrate.WithPreHook[Settings](normalizeSettingsKeys),
		hydrate.WithDisallowUnknownFields[Settings](),
		hydrate.WithPostHook[Settings](validateSettings),
	)
	settings, err := decoder.Decode(ctx, payload)
	if err != nil {
		return Settings{}, fmt.Errorf("schemagen: %w", err)
	}
	return settings, nil
}

func describeSource(ctx hydrate.Context) string {
	if ctx.Source == "" {
		return "payload"
	}
	return fmt.Sprintf("%q", ctx.Source)
}

// Options converts the settings into generator options. Rule engines share
// one program cache and the default function registry.
func (s Settings) Options() ([]Option, error) {
	naming, err := NamingPolicyByName(s.Naming)
	if err != nil {
		return nil, err
	}
	if s.Prefix != "" {
		naming = PrefixedNaming(s.Prefix, naming)
	}
	opts := []Option{
		WithNamingPolicy(naming),
		WithEnumsAsStrings(s.EnumsAsStrings),
		WithInlineEnums(s.InlineEnums),
		WithFlattenInheritance(s.FlattenInheritance),
		WithIgnoreDeprecated(s.IgnoreDeprecated),
	}
	if s.ValueNaming != "" {
		valueNaming, err := ValueNamingByName(s.ValueNaming)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithValueNaming(valueNaming))
	}

	cache := NewMemoryProgramCache()
	registry := DefaultFunctionRegistry()
	for i, rule := range s.Rules {
		filter, err := rule.filter(cache, registry)
		if err != nil {
			return nil, fmt.Errorf("schemagen: rule %d: %w", i, err)
		}
		opts = append(opts, WithFilter(filter))
	}
	return opts, nil
}

func (r RuleSettings) filter(cache ProgramCache, registry *FunctionRegistry) (Filter, error) {
	evaluator, err := EvaluatorByName(r.Engine, RuleProgramCache(cache), RuleFunctions(registry))
	if err != nil {
		return nil, err
	}
	var ruleOpts []RuleFilterOption
	if len(r.Args) > 0 {
		ruleOpts = append(ruleOpts, RuleArgs(r.Args))
	}
	filter, err := ExtensionFilter(evaluator, r.Extension, r.Value, ruleOpts...)
	if err != nil {
		return nil, err
	}
	if r.When == "" {
		return filter, nil
	}
	return WhenFilter(evaluator, r.When, filter, ruleOpts...)
}

func normalizeSettingsKeys(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		if key == "rules" {
			rules, ok := value.([]any)
			if !ok {
				return nil, fmt.Errorf("rules must be a list, got %T", value)
			}
			normalized := make([]any, 0, len(rules))
			for _, rule := range rules {
				entry, ok := rule.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("rule must be a mapping, got %T", rule)
				}
				normalized = append(normalized, normalizeRuleKeys(entry))
			}
			value = normalized
		}
		out[strcase.LowerCamelCase(key)] = value
	}
	return out, nil
}

func normalizeRuleKeys(rule map[string]any) map[string]any {
	out := make(map[string]any, len(rule))
	for key, value := range rule {
		if key == "args" {
			out[key] = value
			continue
		}
		out[strcase.LowerCamelCase(key)] = value
	}
	return out
}

func validateSettings(_ hydrate.Context, settings *Settings) error {
	if _, err := NamingPolicyByName(settings.Naming); err != nil {
		return err
	}
	if settings.ValueNaming != "" {
		if _, err := ValueNamingByName(settings.ValueNaming); err != nil {
			return err
		}
	}
	for i, rule := range settings.Rules {
		if rule.Extension == "" || rule.Value == "" {
			return fmt.Errorf("rule %d requires extension and value", i)
		}
	}
	return nil
}
