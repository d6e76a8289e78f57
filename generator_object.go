package schemagen

func (g *Generator) objectBody(o *Object, repo *Repository) (*Body, error) {
	if o.IsPolymorphic() {
		return g.polymorphicBody(o, repo)
	}

	if o.Base != nil && !g.cfg.flattenInheritance && !hasPolymorphicAncestor(o) && !shadowsInherited(o) {
		return g.composedBody(o, repo)
	}

	body, err := g.propertiesBody(inheritedProperties(o), repo)
	if err != nil {
		return nil, err
	}
	pinDiscriminator(body, o)
	body.Description = o.Description
	if err := g.additionalProperties(body, o, repo); err != nil {
		return nil, err
	}
	return body, nil
}

// composedBody emits allOf: [$ref base, {own properties}].
func (g *Generator) composedBody(o *Object, repo *Repository) (*Body, error) {
	base, err := g.generate(o.Base, repo)
	if err != nil {
		return nil, err
	}
	own, err := g.propertiesBody(o.Properties, repo)
	if err != nil {
		return nil, err
	}
	if err := g.additionalProperties(own, o, repo); err != nil {
		return nil, err
	}
	return &Body{
		Description: o.Description,
		AllOf:       []Schema{base, Inline(own)},
	}, nil
}

// polymorphicBody emits a oneOf over the known subtypes, with a discriminator
// mapping from each subtype's value to its schema ID.
func (g *Generator) polymorphicBody(o *Object, repo *Repository) (*Body, error) {
	body := &Body{Description: o.Description}
	mapping := map[string]string{}
	for _, sub := range o.Subtypes {
		if sub == nil {
			continue
		}
		schema, err := g.generate(sub, repo)
		if err != nil {
			return nil, err
		}
		body.OneOf = append(body.OneOf, schema)
		if schema.IsRef() && sub.DiscriminatorValue != "" {
			mapping[sub.DiscriminatorValue] = schema.Ref
		}
	}
	if o.DiscriminatorProperty != "" {
		body.Discriminator = &Discriminator{PropertyName: o.DiscriminatorProperty}
		if len(mapping) > 0 {
			body.Discriminator.Mapping = mapping
		}
	}
	return body, nil
}

func (g *Generator) propertiesBody(props []Property, repo *Repository) (*Body, error) {
	body := &Body{Type: "object"}
	for _, prop := range props {
		if g.cfg.ignoreDeprecated && prop.Deprecated {
			continue
		}
		schema, err := g.generate(prop.Contract, repo)
		if err != nil {
			return nil, err
		}
		body.SetProperty(prop.Name, withPropertyAttributes(schema, prop))
		if prop.Required {
			body.addRequired(prop.Name)
		}
	}
	return body, nil
}

func (g *Generator) additionalProperties(body *Body, o *Object, repo *Repository) error {
	if isNilContract(o.AdditionalProperties) {
		return nil
	}
	schema, err := g.generate(o.AdditionalProperties, repo)
	if err != nil {
		return err
	}
	body.AdditionalProperties = &schema
	return nil
}

// withPropertyAttributes attaches property-level metadata to the property's
// own schema node. References are wrapped in allOf since siblings of $ref are
// ignored by OpenAPI 3.0 consumers.
func withPropertyAttributes(schema Schema, prop Property) Schema {
	if !prop.hasAttributes() {
		return schema
	}
	var body *Body
	if schema.IsRef() {
		body = &Body{AllOf: []Schema{schema}}
	} else {
		body = schema.Body.Clone()
		if body == nil {
			body = &Body{}
		}
	}
	if prop.Nullable {
		body.Nullable = true
	}
	if prop.ReadOnly {
		body.ReadOnly = true
	}
	if prop.WriteOnly {
		body.WriteOnly = true
	}
	if prop.Deprecated {
		body.Deprecated = true
	}
	if prop.Default != nil {
		body.Default = prop.Default
	}
	if prop.Description != "" {
		body.Description = prop.Description
	}
	return Inline(body)
}

// inheritedProperties merges the base chain root first. A property redeclared
// further down the chain replaces the inherited one in place: most derived
// wins.
func inheritedProperties(o *Object) []Property {
	chain := []*Object{}
	seen := map[*Object]bool{}
	for current := o; current != nil && !seen[current]; current = current.Base {
		seen[current] = true
		chain = append(chain, current)
	}

	var merged []Property
	index := map[string]int{}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, prop := range chain[i].Properties {
			if pos, ok := index[prop.Name]; ok {
				merged[pos] = prop
				continue
			}
			index[prop.Name] = len(merged)
			merged = append(merged, prop)
		}
	}
	return merged
}

// shadowsInherited reports whether o redeclares a property of its base chain.
// allOf cannot express an override, so such objects are flattened instead.
func shadowsInherited(o *Object) bool {
	inherited := map[string]bool{}
	seen := map[*Object]bool{o: true}
	for base := o.Base; base != nil && !seen[base]; base = base.Base {
		seen[base] = true
		for _, prop := range base.Properties {
			inherited[prop.Name] = true
		}
	}
	for _, prop := range o.Properties {
		if inherited[prop.Name] {
			return true
		}
	}
	return false
}

func hasPolymorphicAncestor(o *Object) bool {
	return polymorphicAncestor(o) != nil
}

func polymorphicAncestor(o *Object) *Object {
	seen := map[*Object]bool{o: true}
	for base := o.Base; base != nil && !seen[base]; base = base.Base {
		if base.IsPolymorphic() {
			return base
		}
		seen[base] = true
	}
	return nil
}

// pinDiscriminator makes sure a subtype declares the discriminator of its
// polymorphic ancestor, pinned to its own value.
func pinDiscriminator(body *Body, o *Object) {
	ancestor := polymorphicAncestor(o)
	if ancestor == nil || ancestor.DiscriminatorProperty == "" || o.DiscriminatorValue == "" {
		return
	}
	name := ancestor.DiscriminatorProperty
	if _, exists := body.Property(name); exists {
		return
	}
	pinned := NamedSchema{
		Name: name,
		Schema: Inline(&Body{
			Type: string(DataTypeString),
			Enum: []any{o.DiscriminatorValue},
		}),
	}
	body.Properties = append([]NamedSchema{pinned}, body.Properties...)
	body.Required = append([]string{name}, body.Required...)
}
