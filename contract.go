package schemagen

import "strings"

// Identity is the nominal identity of the type a contract was derived from.
// It is only used to name reference targets and detect collisions.
type Identity struct {
	Package string
	Name    string
}

// NewIdentity builds an identity from a package path and a type name.
func NewIdentity(pkg, name string) Identity {
	return Identity{
		Package: strings.TrimSpace(pkg),
		Name:    strings.TrimSpace(name),
	}
}

// String renders the identity as package.Name.
func (i Identity) String() string {
	if i.Package == "" {
		return i.Name
	}
	return i.Package + "." + i.Name
}

// IsZero reports whether the identity carries no information.
func (i Identity) IsZero() bool {
	return i.Package == "" && i.Name == ""
}

// Kind enumerates the contract variants.
type Kind int

const (
	KindDynamic Kind = iota
	KindPrimitive
	KindArray
	KindDictionary
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindDictionary:
		return "dictionary"
	case KindObject:
		return "object"
	default:
		return "dynamic"
	}
}

// DataType is the wire type of a primitive contract.
type DataType string

const (
	DataTypeBoolean DataType = "boolean"
	DataTypeInteger DataType = "integer"
	DataTypeNumber  DataType = "number"
	DataTypeString  DataType = "string"
)

// DataContract describes the shape of a value independent of any concrete
// type system. The set of implementations is closed.
type DataContract interface {
	Identity() Identity
	Kind() Kind
	isDataContract()
}

// Primitive is a scalar contract. A non-empty LiteralValues turns it into a
// closed enumeration; the values are already in their wire representation.
type Primitive struct {
	ID            Identity
	DataType      DataType
	Format        string
	LiteralValues []any
}

func (p *Primitive) Identity() Identity { return p.ID }
func (p *Primitive) Kind() Kind         { return KindPrimitive }
func (*Primitive) isDataContract()      {}

// IsEnum reports whether the primitive is a closed enumeration.
func (p *Primitive) IsEnum() bool {
	return p != nil && len(p.LiteralValues) > 0
}

// Array is a homogeneous sequence contract.
type Array struct {
	ID          Identity
	Items       DataContract
	UniqueItems bool
}

func (a *Array) Identity() Identity { return a.ID }
func (a *Array) Kind() Kind         { return KindArray }
func (*Array) isDataContract()      {}

// Dictionary is a keyed map contract. Keys is only set when the key domain is
// a closed enumeration; a nil Keys is an open string-keyed map.
type Dictionary struct {
	ID     Identity
	Keys   *Primitive
	Values DataContract
}

func (d *Dictionary) Identity() Identity { return d.ID }
func (d *Dictionary) Kind() Kind         { return KindDictionary }
func (*Dictionary) isDataContract()      {}

// Object is a structured contract with ordered properties, an optional base
// contract and optional polymorphic subtypes.
type Object struct {
	ID                    Identity
	Description           string
	Properties            []Property
	AdditionalProperties  DataContract
	Base                  *Object
	DiscriminatorProperty string
	DiscriminatorValue    string
	Subtypes              []*Object
}

func (o *Object) Identity() Identity { return o.ID }
func (o *Object) Kind() Kind         { return KindObject }
func (*Object) isDataContract()      {}

// IsPolymorphic reports whether the object has known subtypes.
func (o *Object) IsPolymorphic() bool {
	return o != nil && len(o.Subtypes) > 0
}

// Property is a single named member of an object contract.
type Property struct {
	Name        string
	Contract    DataContract
	Required    bool
	Nullable    bool
	ReadOnly    bool
	WriteOnly   bool
	Deprecated  bool
	Default     any
	Description string
}

func (p Property) hasAttributes() bool {
	return p.Nullable || p.ReadOnly || p.WriteOnly || p.Deprecated || p.Default != nil || p.Description != ""
}

// Dynamic is an opaque contract with no known shape.
type Dynamic struct {
	ID Identity
}

func (d *Dynamic) Identity() Identity { return d.ID }
func (d *Dynamic) Kind() Kind         { return KindDynamic }
func (*Dynamic) isDataContract()      {}
