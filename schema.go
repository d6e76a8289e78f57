package schemagen

import (
	"sort"
	"strings"
)

// DefaultRefPrefix is the JSON pointer prefix used when rendering references.
const DefaultRefPrefix = "#/components/schemas/"

// Schema is an output node: either an inline body or a reference to a
// repository definition by schema ID.
type Schema struct {
	Ref  string
	Body *Body
}

// Inline wraps body as an inline schema.
func Inline(body *Body) Schema {
	if body == nil {
		body = &Body{}
	}
	return Schema{Body: body}
}

// Ref returns a reference schema to id.
func Ref(id string) Schema {
	return Schema{Ref: id}
}

// IsRef reports whether the schema is a reference.
func (s Schema) IsRef() bool {
	return s.Ref != ""
}

// IsZero reports whether the schema carries neither a reference nor a body.
func (s Schema) IsZero() bool {
	return s.Ref == "" && s.Body == nil
}

// Map renders the schema as a plain JSON-compatible tree. An empty prefix
// falls back to DefaultRefPrefix.
func (s Schema) Map(refPrefix string) map[string]any {
	if s.Ref != "" {
		return map[string]any{"$ref": refPath(refPrefix, s.Ref)}
	}
	if s.Body == nil {
		return map[string]any{}
	}
	return s.Body.Map(refPrefix)
}

func refPath(prefix, id string) string {
	if prefix == "" {
		prefix = DefaultRefPrefix
	}
	return prefix + id
}

// NamedSchema is one entry in an ordered property list.
type NamedSchema struct {
	Name   string
	Schema Schema
}

// Discriminator maps discriminator values to the schema IDs of subtypes.
type Discriminator struct {
	PropertyName string
	Mapping      map[string]string
}

// Body is the content of a schema node.
type Body struct {
	Type        string
	Format      string
	Description string
	Enum        []any
	Default     any
	Nullable    bool
	ReadOnly    bool
	WriteOnly   bool
	Deprecated  bool

	Items       *Schema
	UniqueItems bool

	Properties []NamedSchema
	Required   []string
	// AdditionalProperties is the value schema of an open map.
	AdditionalProperties *Schema
	// Closed forbids properties other than the declared ones.
	Closed bool

	AllOf         []Schema
	OneOf         []Schema
	Discriminator *Discriminator

	// Extensions holds vendor fields. Keys without an x- prefix get one on
	// render.
	Extensions map[string]any
}

// Property returns the named property schema.
func (b *Body) Property(name string) (Schema, bool) {
	if b == nil {
		return Schema{}, false
	}
	for _, prop := range b.Properties {
		if prop.Name == name {
			return prop.Schema, true
		}
	}
	return Schema{}, false
}

// PropertyNames returns property names in declaration order.
func (b *Body) PropertyNames() []string {
	if b == nil {
		return nil
	}
	names := make([]string, 0, len(b.Properties))
	for _, prop := range b.Properties {
		names = append(names, prop.Name)
	}
	return names
}

// SetProperty replaces a like-named property in place or appends it.
func (b *Body) SetProperty(name string, schema Schema) {
	for i := range b.Properties {
		if b.Properties[i].Name == name {
			b.Properties[i].Schema = schema
			return
		}
	}
	b.Properties = append(b.Properties, NamedSchema{Name: name, Schema: schema})
}

// SetExtension sets a vendor field, adding the x- prefix when missing.
func (b *Body) SetExtension(key string, value any) {
	key = extensionKey(key)
	if key == "" {
		return
	}
	if b.Extensions == nil {
		b.Extensions = map[string]any{}
	}
	b.Extensions[key] = value
}

func extensionKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if strings.HasPrefix(key, "x-") {
		return key
	}
	return "x-" + key
}

func (b *Body) addRequired(name string) {
	for _, existing := range b.Required {
		if existing == name {
			return
		}
	}
	b.Required = append(b.Required, name)
}

// Clone returns a deep copy of the body structure. Literal values such as
// defaults and extension payloads are shared.
func (b *Body) Clone() *Body {
	if b == nil {
		return nil
	}
	out := *b
	if b.Enum != nil {
		out.Enum = append([]any(nil), b.Enum...)
	}
	if b.Items != nil {
		items := b.Items.clone()
		out.Items = &items
	}
	if b.Properties != nil {
		out.Properties = make([]NamedSchema, len(b.Properties))
		for i, prop := range b.Properties {
			out.Properties[i] = NamedSchema{Name: prop.Name, Schema: prop.Schema.clone()}
		}
	}
	if b.Required != nil {
		out.Required = append([]string(nil), b.Required...)
	}
	if b.AdditionalProperties != nil {
		additional := b.AdditionalProperties.clone()
		out.AdditionalProperties = &additional
	}
	out.AllOf = cloneSchemas(b.AllOf)
	out.OneOf = cloneSchemas(b.OneOf)
	if b.Discriminator != nil {
		disc := Discriminator{PropertyName: b.Discriminator.PropertyName}
		if b.Discriminator.Mapping != nil {
			disc.Mapping = make(map[string]string, len(b.Discriminator.Mapping))
			for key, value := range b.Discriminator.Mapping {
				disc.Mapping[key] = value
			}
		}
		out.Discriminator = &disc
	}
	if b.Extensions != nil {
		out.Extensions = make(map[string]any, len(b.Extensions))
		for key, value := range b.Extensions {
			out.Extensions[key] = value
		}
	}
	return &out
}

func (s Schema) clone() Schema {
	return Schema{Ref: s.Ref, Body: s.Body.Clone()}
}

func cloneSchemas(in []Schema) []Schema {
	if in == nil {
		return nil
	}
	out := make([]Schema, len(in))
	for i, schema := range in {
		out[i] = schema.clone()
	}
	return out
}

func (b *Body) baseMap() map[string]any {
	result := map[string]any{}
	if b.Type != "" {
		result["type"] = b.Type
	}
	if b.Format != "" {
		result["format"] = b.Format
	}
	if b.Description != "" {
		result["description"] = b.Description
	}
	if b.Default != nil {
		result["default"] = b.Default
	}
	if len(b.Enum) > 0 {
		result["enum"] = append([]any(nil), b.Enum...)
	}
	if b.Nullable {
		result["nullable"] = true
	}
	if b.ReadOnly {
		result["readOnly"] = true
	}
	if b.WriteOnly {
		result["writeOnly"] = true
	}
	if b.Deprecated {
		result["deprecated"] = true
	}
	return result
}

// Map renders the body as a plain JSON-compatible tree.
func (b *Body) Map(refPrefix string) map[string]any {
	if b == nil {
		return map[string]any{}
	}
	result := b.baseMap()

	if b.Items != nil {
		result["items"] = b.Items.Map(refPrefix)
	}
	if b.UniqueItems {
		result["uniqueItems"] = true
	}

	if len(b.Properties) > 0 {
		props := make(map[string]any, len(b.Properties))
		for _, prop := range b.Properties {
			props[prop.Name] = prop.Schema.Map(refPrefix)
		}
		result["properties"] = props
	}
	if len(b.Required) > 0 {
		result["required"] = append([]string(nil), b.Required...)
	}
	switch {
	case b.AdditionalProperties != nil:
		result["additionalProperties"] = b.AdditionalProperties.Map(refPrefix)
	case b.Closed:
		result["additionalProperties"] = false
	}

	if len(b.AllOf) > 0 {
		result["allOf"] = schemaList(b.AllOf, refPrefix)
	}
	if len(b.OneOf) > 0 {
		result["oneOf"] = schemaList(b.OneOf, refPrefix)
	}
	if b.Discriminator != nil {
		disc := map[string]any{"propertyName": b.Discriminator.PropertyName}
		if len(b.Discriminator.Mapping) > 0 {
			mapping := make(map[string]any, len(b.Discriminator.Mapping))
			for value, id := range b.Discriminator.Mapping {
				mapping[value] = refPath(refPrefix, id)
			}
			disc["mapping"] = mapping
		}
		result["discriminator"] = disc
	}

	if len(b.Extensions) > 0 {
		keys := make([]string, 0, len(b.Extensions))
		for key := range b.Extensions {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			result[extensionKey(key)] = b.Extensions[key]
		}
	}

	return result
}

func schemaList(schemas []Schema, refPrefix string) []any {
	out := make([]any, 0, len(schemas))
	for _, schema := range schemas {
		out = append(out, schema.Map(refPrefix))
	}
	return out
}
