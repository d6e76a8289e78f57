package schemagen

// primitiveIdentity names the built-in scalar contracts. Inline primitives
// never touch the repository so the identity only matters for overrides.
func primitiveIdentity(dataType DataType, format string) Identity {
	if format == "" {
		return Identity{Name: string(dataType)}
	}
	return Identity{Name: string(dataType) + ":" + format}
}

// BooleanContract returns an inline boolean primitive.
func BooleanContract() *Primitive {
	return &Primitive{ID: primitiveIdentity(DataTypeBoolean, ""), DataType: DataTypeBoolean}
}

// IntegerContract returns an inline integer primitive with an optional format
// (int32, int64).
func IntegerContract(format string) *Primitive {
	return &Primitive{ID: primitiveIdentity(DataTypeInteger, format), DataType: DataTypeInteger, Format: format}
}

// NumberContract returns an inline number primitive with an optional format
// (float, double).
func NumberContract(format string) *Primitive {
	return &Primitive{ID: primitiveIdentity(DataTypeNumber, format), DataType: DataTypeNumber, Format: format}
}

// StringContract returns an inline string primitive with an optional format
// (date-time, uuid, byte, ...).
func StringContract(format string) *Primitive {
	return &Primitive{ID: primitiveIdentity(DataTypeString, format), DataType: DataTypeString, Format: format}
}

// EnumContract returns a closed enumeration identified by id.
func EnumContract(id Identity, dataType DataType, values ...any) *Primitive {
	return &Primitive{
		ID:            id,
		DataType:      dataType,
		LiteralValues: append([]any(nil), values...),
	}
}

// ArrayOf returns an array contract.
func ArrayOf(id Identity, items DataContract) *Array {
	return &Array{ID: id, Items: items}
}

// SetOf returns an array contract whose items are unique.
func SetOf(id Identity, items DataContract) *Array {
	return &Array{ID: id, Items: items, UniqueItems: true}
}

// MapOf returns an open string-keyed dictionary.
func MapOf(id Identity, values DataContract) *Dictionary {
	return &Dictionary{ID: id, Values: values}
}

// ClosedMapOf returns a dictionary whose keys are drawn from keys' literal
// values.
func ClosedMapOf(id Identity, keys *Primitive, values DataContract) *Dictionary {
	return &Dictionary{ID: id, Keys: keys, Values: values}
}

// DynamicContract returns an opaque contract.
func DynamicContract(id Identity) *Dynamic {
	return &Dynamic{ID: id}
}

// NewObject returns an object contract with the given properties in
// declaration order.
func NewObject(id Identity, props ...Property) *Object {
	return &Object{ID: id, Properties: props}
}

// AddProperty appends a property and returns the object for chaining. It is
// the usual way to close a self-referencing cycle after construction.
func (o *Object) AddProperty(prop Property) *Object {
	o.Properties = append(o.Properties, prop)
	return o
}

// Extends sets the base contract.
func (o *Object) Extends(base *Object) *Object {
	o.Base = base
	return o
}

// WithSubtypes marks the object as polymorphic over subtypes, discriminated by
// property. Each subtype's Base is pointed at o when unset.
func (o *Object) WithSubtypes(property string, subtypes ...*Object) *Object {
	o.DiscriminatorProperty = property
	for _, sub := range subtypes {
		if sub == nil {
			continue
		}
		if sub.Base == nil {
			sub.Base = o
		}
		o.Subtypes = append(o.Subtypes, sub)
	}
	return o
}

// PropertyOption configures a Property built by Prop.
type PropertyOption func(*Property)

// Prop builds a property.
func Prop(name string, contract DataContract, opts ...PropertyOption) Property {
	prop := Property{Name: name, Contract: contract}
	for _, opt := range opts {
		if opt != nil {
			opt(&prop)
		}
	}
	return prop
}

// Required marks the property as required on the owning object.
func Required() PropertyOption {
	return func(p *Property) { p.Required = true }
}

// Nullable marks the property schema as nullable.
func Nullable() PropertyOption {
	return func(p *Property) { p.Nullable = true }
}

// ReadOnly marks the property schema as read only.
func ReadOnly() PropertyOption {
	return func(p *Property) { p.ReadOnly = true }
}

// WriteOnly marks the property schema as write only.
func WriteOnly() PropertyOption {
	return func(p *Property) { p.WriteOnly = true }
}

// Deprecated marks the property schema as deprecated.
func Deprecated() PropertyOption {
	return func(p *Property) { p.Deprecated = true }
}

// WithDefault attaches a default value to the property schema.
func WithDefault(value any) PropertyOption {
	return func(p *Property) { p.Default = value }
}

// Describe sets the property description.
func Describe(description string) PropertyOption {
	return func(p *Property) { p.Description = description }
}
