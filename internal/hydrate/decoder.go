// Package hydrate turns loosely typed settings documents into typed structs.
// Payloads pass through pre-hooks, a JSON round trip (or a custom decoder)
// and post-hooks, in that order.
package hydrate

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Context identifies the settings document being decoded.
type Context struct {
	Source string
	Format string
}

func (ctx Context) String() string {
	if ctx.Source == "" {
		return "settings"
	}
	return fmt.Sprintf("%q", ctx.Source)
}

// PreHook rewrites the payload before decoding. Returning nil keeps the
// payload it was given.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook adjusts or validates the decoded value.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the JSON round trip.
type CustomDecoder[T any] func(Context, map[string]any) (T, error)

// DecoderOption configures a Decoder.
type DecoderOption[T any] func(*Decoder[T])

// Decoder hydrates T from settings payloads. A Decoder is immutable once
// built and may be shared.
type Decoder[T any] struct {
	preHooks  []PreHook
	postHooks []PostHook[T]
	custom    CustomDecoder[T]
	useNumber bool
	strict    bool
}

// WithPreHook appends a pre-hook.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.preHooks = append(d.preHooks, hook)
		}
	}
}

// WithPostHook appends a post-hook.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.postHooks = append(d.postHooks, hook)
		}
	}
}

// WithUseNumber decodes numbers held in untyped fields as json.Number.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.useNumber = true
	}
}

// WithDisallowUnknownFields rejects keys that do not map onto T.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.strict = true
	}
}

// WithCustomDecoder replaces the JSON round trip.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

// NewDecoder builds a Decoder.
func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Parse reads a settings document into a payload. Format "json" is parsed as
// JSON; anything else as YAML. A blank document is an empty payload.
func Parse(ctx Context, raw []byte) (map[string]any, error) {
	payload := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return payload, nil
	}
	var err error
	if strings.EqualFold(ctx.Format, "json") {
		err = json.Unmarshal(raw, &payload)
	} else {
		err = yaml.Unmarshal(raw, &payload)
	}
	if err != nil {
		return nil, fmt.Errorf("hydrate: parse %s: %w", ctx, err)
	}
	return payload, nil
}

// DecodeBytes parses raw and decodes the resulting payload.
func (d *Decoder[T]) DecodeBytes(ctx Context, raw []byte) (T, error) {
	payload, err := Parse(ctx, raw)
	if err != nil {
		var zero T
		return zero, err
	}
	return d.Decode(ctx, payload)
}

// Decode converts payload into T. The payload is never mutated.
func (d *Decoder[T]) Decode(ctx Context, payload map[string]any) (T, error) {
	var zero T
	if payload == nil {
		return zero, fmt.Errorf("hydrate: payload is nil for %s", ctx)
	}

	prepared, err := d.prepare(ctx, payload)
	if err != nil {
		return zero, err
	}
	result, err := d.hydrate(ctx, prepared)
	if err != nil {
		return zero, err
	}
	for _, hook := range d.postHooks {
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for %s failed: %w", ctx, err)
		}
	}
	return result, nil
}

func (d *Decoder[T]) prepare(ctx Context, payload map[string]any) (map[string]any, error) {
	current := clonePayload(payload)
	for _, hook := range d.preHooks {
		next, err := hook(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("hydrate: pre-hook for %s failed: %w", ctx, err)
		}
		if next != nil {
			current = next
		}
	}
	return current, nil
}

func (d *Decoder[T]) hydrate(ctx Context, payload map[string]any) (T, error) {
	var result T
	if d.custom != nil {
		value, err := d.custom(ctx, payload)
		if err != nil {
			return value, fmt.Errorf("hydrate: custom decoder for %s failed: %w", ctx, err)
		}
		return value, nil
	}

	buffer, err := json.Marshal(payload)
	if err != nil {
		return result, fmt.Errorf("hydrate: encode %s: %w", ctx, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	if d.useNumber {
		decoder.UseNumber()
	}
	if d.strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(&result); err != nil {
		return result, fmt.Errorf("hydrate: decode %s: %w", ctx, err)
	}
	return result, nil
}

// clonePayload copies nested maps and lists so hooks can edit freely.
func clonePayload(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return clonePayload(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
