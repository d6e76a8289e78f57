// Package layering merges settings payloads decoded from several files. Layers
// are ordered from strongest to weakest: a stronger layer keeps its explicit
// values and weaker layers only fill what it leaves out.
package layering

import (
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Layer is one decoded settings payload and the source it came from.
type Layer struct {
	Source  string
	Payload map[string]any
}

// Trace maps every dotted leaf path of a merged payload to the source of the
// layer that supplied it.
type Trace map[string]string

// Source returns the layer source that supplied path.
func (t Trace) Source(path string) (string, bool) {
	source, ok := t[path]
	return source, ok
}

// Paths returns the traced paths sorted alphabetically.
func (t Trace) Paths() []string {
	paths := make([]string, 0, len(t))
	for path := range t {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// ToJSON serialises the trace for logging.
func (t Trace) ToJSON() ([]byte, error) {
	return json.Marshal(map[string]string(t))
}

// Merge composes layers ordered from strongest to weakest. Nested maps are
// merged key by key; any other value, lists included, is replaced whole by the
// stronger layer. The inputs are never mutated.
func Merge(layers ...Layer) (map[string]any, Trace) {
	merged := map[string]any{}
	trace := Trace{}
	for i := len(layers) - 1; i >= 0; i-- {
		overlay(merged, layers[i].Payload, "", layers[i].Source, trace)
	}
	return merged, trace
}

func overlay(dst, src map[string]any, prefix, source string, trace Trace) {
	for key, value := range src {
		path := joinPath(prefix, key)
		if nested, ok := value.(map[string]any); ok {
			existing, isMap := dst[key].(map[string]any)
			if !isMap {
				dropTrace(trace, path)
				existing = map[string]any{}
				dst[key] = existing
			}
			overlay(existing, nested, path, source, trace)
			if len(nested) == 0 && len(existing) == 0 {
				trace[path] = source
			}
			continue
		}
		dropTrace(trace, path)
		dst[key] = cloneValue(value)
		trace[path] = source
	}
}

// dropTrace forgets path and everything below it.
func dropTrace(trace Trace, path string) {
	delete(trace, path)
	prefix := path + "."
	for existing := range trace {
		if strings.HasPrefix(existing, prefix) {
			delete(trace, existing)
		}
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, nested := range v {
			out[key] = cloneValue(nested)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, nested := range v {
			out[i] = cloneValue(nested)
		}
		return out
	default:
		return v
	}
}
