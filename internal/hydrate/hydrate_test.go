package hydrate

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type generatorSettings struct {
	Naming      string   `json:"naming"`
	InlineEnums bool     `json:"inlineEnums"`
	Depth       any      `json:"depth"`
	Tags        []string `json:"tags"`
}

func TestDecoderAppliesHooksInOrder(t *testing.T) {
	decoder := NewDecoder[generatorSettings](
		WithPreHook[generatorSettings](func(_ Context, payload map[string]any) (map[string]any, error) {
			if value, ok := payload["inline_enums"]; ok {
				payload["inlineEnums"] = value
				delete(payload, "inline_enums")
			}
			return payload, nil
		}),
		WithPostHook[generatorSettings](func(ctx Context, settings *generatorSettings) error {
			if len(settings.Tags) == 0 {
				settings.Tags = []string{ctx.Format + ":" + ctx.Source}
			}
			return nil
		}),
	)

	result, err := decoder.Decode(Context{Source: "schemagen.yaml", Format: "yaml"}, map[string]any{
		"naming":       "qualified",
		"inline_enums": true,
	})
	require.NoError(t, err)
	assert.Equal(t, generatorSettings{
		Naming:      "qualified",
		InlineEnums: true,
		Tags:        []string{"yaml:schemagen.yaml"},
	}, result)
}

func TestDecoderDoesNotMutateInput(t *testing.T) {
	payload := map[string]any{"naming": "short"}
	decoder := NewDecoder[generatorSettings](
		WithPreHook[generatorSettings](func(_ Context, payload map[string]any) (map[string]any, error) {
			payload["naming"] = "qualified"
			return payload, nil
		}),
	)

	result, err := decoder.Decode(Context{}, payload)
	require.NoError(t, err)
	assert.Equal(t, "qualified", result.Naming)
	assert.Equal(t, "short", payload["naming"])
}

func TestDecoderUseNumber(t *testing.T) {
	decoder := NewDecoder[generatorSettings](WithUseNumber[generatorSettings]())

	result, err := decoder.Decode(Context{}, map[string]any{"depth": 3})
	require.NoError(t, err)
	assert.Equal(t, json.Number("3"), result.Depth)
}

func TestDecoderDisallowUnknownFields(t *testing.T) {
	decoder := NewDecoder[generatorSettings](WithDisallowUnknownFields[generatorSettings]())

	_, err := decoder.Decode(Context{Source: "settings.json"}, map[string]any{"nmaing": "short"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `hydrate: decode "settings.json"`)
}

func TestDecoderNilPayload(t *testing.T) {
	_, err := NewDecoder[generatorSettings]().Decode(Context{}, nil)
	require.EqualError(t, err, "hydrate: payload is nil for settings")
}

func TestDecoderHookErrors(t *testing.T) {
	boom := errors.New("boom")

	pre := NewDecoder[generatorSettings](
		WithPreHook[generatorSettings](func(Context, map[string]any) (map[string]any, error) {
			return nil, boom
		}),
	)
	_, err := pre.Decode(Context{Source: "a.yaml"}, map[string]any{})
	require.ErrorIs(t, err, boom)
	assert.True(t, strings.HasPrefix(err.Error(), `hydrate: pre-hook for "a.yaml" failed`))

	post := NewDecoder[generatorSettings](
		WithPostHook[generatorSettings](func(Context, *generatorSettings) error {
			return boom
		}),
	)
	_, err = post.Decode(Context{Source: "b.yaml"}, map[string]any{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "post-hook")
}

func TestDecoderCustomDecoder(t *testing.T) {
	decoder := NewDecoder[generatorSettings](
		WithCustomDecoder[generatorSettings](func(_ Context, payload map[string]any) (generatorSettings, error) {
			raw, ok := payload["naming"].(string)
			if !ok {
				return generatorSettings{}, fmt.Errorf("naming missing")
			}
			return generatorSettings{Naming: strings.ToUpper(raw)}, nil
		}),
	)

	result, err := decoder.Decode(Context{}, map[string]any{"naming": "short"})
	require.NoError(t, err)
	assert.Equal(t, "SHORT", result.Naming)

	_, err = decoder.Decode(Context{}, map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "custom decoder")
}

func TestParseFormats(t *testing.T) {
	payload, err := Parse(Context{Format: "yaml"}, []byte("naming: short\ntags: [a, b]\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"naming": "short", "tags": []any{"a", "b"}}, payload)

	payload, err = Parse(Context{Format: "JSON"}, []byte(`{"naming":"qualified"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"naming": "qualified"}, payload)

	payload, err = Parse(Context{}, []byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, payload)

	_, err = Parse(Context{Source: "broken.json", Format: "json"}, []byte(`{"naming":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `hydrate: parse "broken.json"`)
}

func TestDecodeBytes(t *testing.T) {
	decoder := NewDecoder[generatorSettings](WithDisallowUnknownFields[generatorSettings]())

	result, err := decoder.DecodeBytes(Context{Source: "schemagen.yaml"}, []byte("naming: qualified\ninlineEnums: true\n"))
	require.NoError(t, err)
	assert.Equal(t, "qualified", result.Naming)
	assert.True(t, result.InlineEnums)

	_, err = decoder.DecodeBytes(Context{Source: "schemagen.yaml"}, []byte("naming: [\n"))
	assert.Error(t, err)
}
