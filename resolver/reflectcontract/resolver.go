// Package reflectcontract derives data contracts from Go types.
//
// Structs become objects named after their package path and type name, json
// tags decide property names and optionality, and the first embedded struct
// becomes the base contract. Interfaces become polymorphic objects once their
// implementations are registered with WithSubtypes. Contracts are memoised per
// reflect.Type so recursive types produce cyclic contract graphs.
package reflectcontract

import (
	"fmt"
	"maps"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	schemagen "github.com/goliatone/go-schemagen"
)

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

// Describer lets a type supply the description of its object contract.
type Describer interface {
	SchemaDescription() string
}

var describerType = reflect.TypeOf((*Describer)(nil)).Elem()

// Subtype pairs a discriminator value with an implementation type.
type Subtype struct {
	Value string
	Type  reflect.Type
}

// Variant returns the Subtype for T.
func Variant[T any](value string) Subtype {
	return Subtype{Value: value, Type: reflect.TypeFor[T]()}
}

type polymorphism struct {
	property string
	subtypes []Subtype
}

type scalar struct {
	dataType schemagen.DataType
	format   string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEnum registers the closed set of values of T. Maps keyed by T become
// closed-key dictionaries.
func WithEnum[T any](values ...T) Option {
	return func(r *Resolver) {
		literals := make([]any, 0, len(values))
		for _, value := range values {
			literals = append(literals, wireValue(reflect.ValueOf(value)))
		}
		r.enums[reflect.TypeFor[T]()] = literals
	}
}

// WithSubtypes registers the implementations of interface T, discriminated by
// property.
func WithSubtypes[T any](property string, subtypes ...Subtype) Option {
	return func(r *Resolver) {
		iface := reflect.TypeFor[T]()
		r.polymorphic[iface] = polymorphism{property: property, subtypes: subtypes}
		for _, sub := range subtypes {
			r.parents[indirect(sub.Type)] = iface
		}
	}
}

// WithScalar maps T onto a primitive wire type, for example a custom ID type
// onto string/uuid.
func WithScalar[T any](dataType schemagen.DataType, format string) Option {
	return func(r *Resolver) {
		r.scalars[reflect.TypeFor[T]()] = scalar{dataType: dataType, format: format}
	}
}

// Resolver implements schemagen.ContractResolver over reflect.Type. It is safe
// for concurrent use.
type Resolver struct {
	mu          sync.Mutex
	cache       map[reflect.Type]schemagen.DataContract
	enums       map[reflect.Type][]any
	scalars     map[reflect.Type]scalar
	polymorphic map[reflect.Type]polymorphism
	parents     map[reflect.Type]reflect.Type
	// undo restores objects cached by earlier calls that the current call
	// changed.
	undo []func()
}

// New constructs a Resolver. time.Time resolves to string/date-time and
// uuid.UUID to string/uuid unless overridden with WithScalar.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		cache:       map[reflect.Type]schemagen.DataContract{},
		enums:       map[reflect.Type][]any{},
		polymorphic: map[reflect.Type]polymorphism{},
		parents:     map[reflect.Type]reflect.Type{},
		scalars: map[reflect.Type]scalar{
			timeType: {dataType: schemagen.DataTypeString, format: "date-time"},
			uuidType: {dataType: schemagen.DataTypeString, format: "uuid"},
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ResolveContract accepts a reflect.Type or a sample value.
func (r *Resolver) ResolveContract(nominal any) (schemagen.DataContract, error) {
	var rt reflect.Type
	switch v := nominal.(type) {
	case nil:
		return nil, fmt.Errorf("reflectcontract: cannot resolve nil")
	case reflect.Type:
		rt = v
	default:
		rt = reflect.TypeOf(v)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := maps.Clone(r.cache)
	r.undo = nil
	contract, err := r.resolve(indirect(rt))
	if err != nil {
		// Partially built contracts must not leak into later calls, and
		// objects that were already cached go back to how they were.
		for i := len(r.undo) - 1; i >= 0; i-- {
			r.undo[i]()
		}
		r.cache = snapshot
		r.undo = nil
		return nil, err
	}
	r.undo = nil
	return contract, nil
}

// Of resolves the contract of T.
func Of[T any](r *Resolver) (schemagen.DataContract, error) {
	return r.ResolveContract(reflect.TypeFor[T]())
}

func (r *Resolver) resolve(rt reflect.Type) (schemagen.DataContract, error) {
	if cached, ok := r.cache[rt]; ok {
		return cached, nil
	}
	if s, ok := r.scalars[rt]; ok {
		return &schemagen.Primitive{ID: identityOf(rt), DataType: s.dataType, Format: s.format}, nil
	}
	if values, ok := r.enums[rt]; ok {
		dataType, _, err := primitiveType(rt)
		if err != nil {
			return nil, err
		}
		contract := schemagen.EnumContract(identityOf(rt), dataType, values...)
		r.cache[rt] = contract
		return contract, nil
	}

	switch rt.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		dataType, format, err := primitiveType(rt)
		if err != nil {
			return nil, err
		}
		return &schemagen.Primitive{ID: identityOf(rt), DataType: dataType, Format: format}, nil
	case reflect.Struct:
		return r.resolveStruct(rt)
	case reflect.Interface:
		return r.resolveInterface(rt)
	case reflect.Slice, reflect.Array:
		if rt.Elem().Kind() == reflect.Uint8 {
			return schemagen.StringContract("byte"), nil
		}
		return r.resolveArray(rt)
	case reflect.Map:
		return r.resolveMap(rt)
	case reflect.Pointer:
		return r.resolve(indirect(rt))
	default:
		return nil, fmt.Errorf("reflectcontract: unsupported type %s", rt)
	}
}

func (r *Resolver) resolveStruct(rt reflect.Type) (schemagen.DataContract, error) {
	object := schemagen.NewObject(identityOf(rt))
	if rt.Name() != "" {
		r.cache[rt] = object
	}
	if rt.Implements(describerType) {
		object.Description = reflect.Zero(rt).Interface().(Describer).SchemaDescription()
	}
	if err := r.collectFields(rt, object); err != nil {
		return nil, err
	}
	if parent, ok := r.parents[rt]; ok {
		// Resolving the interface links this object into its hierarchy.
		if _, err := r.resolve(parent); err != nil {
			return nil, err
		}
	}
	return object, nil
}

// collectFields follows encoding/json field rules. The first embedded struct
// becomes object's base, later ones have their fields promoted.
func (r *Resolver) collectFields(rt reflect.Type, object *schemagen.Object) error {
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag, skip := parseFieldTag(field)
		if skip {
			continue
		}

		if field.Anonymous && !tag.named && indirect(field.Type).Kind() == reflect.Struct {
			embedded := indirect(field.Type)
			if _, isScalar := r.scalars[embedded]; !isScalar {
				if err := r.embed(embedded, object); err != nil {
					return err
				}
				continue
			}
		}
		if !field.IsExported() {
			continue
		}

		prop, err := r.property(field, tag)
		if err != nil {
			return fmt.Errorf("reflectcontract: field %s.%s: %w", rt.Name(), field.Name, err)
		}
		object.AddProperty(prop)
	}
	return nil
}

func (r *Resolver) embed(embedded reflect.Type, object *schemagen.Object) error {
	if object.Base == nil && embedded.Name() != "" {
		base, err := r.resolve(embedded)
		if err != nil {
			return err
		}
		object.Extends(base.(*schemagen.Object))
		return nil
	}
	return r.collectFields(embedded, object)
}

func (r *Resolver) property(field reflect.StructField, tag fieldTag) (schemagen.Property, error) {
	contract, err := r.resolve(indirect(field.Type))
	if err != nil {
		return schemagen.Property{}, err
	}
	base := indirect(field.Type)

	if tag.enum != "" {
		values, err := parseEnum(base, tag.enum)
		if err != nil {
			return schemagen.Property{}, fmt.Errorf("parse enum: %w", err)
		}
		dataType, _, err := primitiveType(base)
		if err != nil {
			return schemagen.Property{}, err
		}
		contract = schemagen.EnumContract(schemagen.Identity{}, dataType, values...)
	}
	if tag.format != "" {
		if primitive, ok := contract.(*schemagen.Primitive); ok && !primitive.IsEnum() {
			contract = &schemagen.Primitive{ID: primitive.ID, DataType: primitive.DataType, Format: tag.format}
		}
	}

	prop := schemagen.Prop(tag.name, contract)
	pointer := field.Type.Kind() == reflect.Pointer
	prop.Required = !tag.omitEmpty && !pointer
	prop.Nullable = pointer
	prop.ReadOnly = tag.readOnly
	prop.WriteOnly = tag.writeOnly
	prop.Deprecated = tag.deprecated
	prop.Description = tag.description
	if tag.defaultValue != "" {
		value, err := parseScalar(base, tag.defaultValue)
		if err != nil {
			return schemagen.Property{}, fmt.Errorf("parse default: %w", err)
		}
		prop.Default = value
	}
	return prop, nil
}

func (r *Resolver) resolveInterface(rt reflect.Type) (schemagen.DataContract, error) {
	poly, ok := r.polymorphic[rt]
	if !ok {
		return schemagen.DynamicContract(identityOf(rt)), nil
	}
	object := schemagen.NewObject(identityOf(rt))
	r.cache[rt] = object

	subtypes := make([]*schemagen.Object, 0, len(poly.subtypes))
	for _, sub := range poly.subtypes {
		contract, err := r.resolve(indirect(sub.Type))
		if err != nil {
			return nil, err
		}
		subObject, ok := contract.(*schemagen.Object)
		if !ok {
			return nil, fmt.Errorf("reflectcontract: subtype %s of %s is not a struct", sub.Type, rt)
		}
		subtypes = append(subtypes, subObject)
	}

	// Subtypes are only linked once every one of them resolved.
	for i, subObject := range subtypes {
		r.remember(subObject)
		subObject.DiscriminatorValue = poly.subtypes[i].Value
	}
	object.WithSubtypes(poly.property, subtypes...)
	return object, nil
}

// remember records how object looks before it joins a hierarchy so a failed
// call can put it back.
func (r *Resolver) remember(object *schemagen.Object) {
	base, value := object.Base, object.DiscriminatorValue
	r.undo = append(r.undo, func() {
		object.Base = base
		object.DiscriminatorValue = value
	})
}

func (r *Resolver) resolveArray(rt reflect.Type) (schemagen.DataContract, error) {
	array := &schemagen.Array{ID: identityOf(rt)}
	if rt.Name() != "" {
		r.cache[rt] = array
	}
	items, err := r.resolve(indirect(rt.Elem()))
	if err != nil {
		return nil, err
	}
	array.Items = items
	return array, nil
}

func (r *Resolver) resolveMap(rt reflect.Type) (schemagen.DataContract, error) {
	dictionary := &schemagen.Dictionary{ID: identityOf(rt)}
	if rt.Name() != "" {
		r.cache[rt] = dictionary
	}

	key := rt.Key()
	if _, ok := r.enums[key]; ok {
		keys, err := r.resolve(key)
		if err != nil {
			return nil, err
		}
		dictionary.Keys = keys.(*schemagen.Primitive)
	} else {
		switch key.Kind() {
		case reflect.String,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		default:
			return nil, fmt.Errorf("reflectcontract: map key type %s unsupported", key)
		}
	}

	values, err := r.resolve(indirect(rt.Elem()))
	if err != nil {
		return nil, err
	}
	dictionary.Values = values
	return dictionary, nil
}

func identityOf(rt reflect.Type) schemagen.Identity {
	if rt.Name() == "" {
		return schemagen.Identity{}
	}
	return schemagen.NewIdentity(rt.PkgPath(), rt.Name())
}

func indirect(rt reflect.Type) reflect.Type {
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt
}

func primitiveType(rt reflect.Type) (schemagen.DataType, string, error) {
	switch rt.Kind() {
	case reflect.Bool:
		return schemagen.DataTypeBoolean, "", nil
	case reflect.String:
		return schemagen.DataTypeString, "", nil
	case reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint8, reflect.Uint16:
		return schemagen.DataTypeInteger, "int32", nil
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return schemagen.DataTypeInteger, "int64", nil
	case reflect.Float32:
		return schemagen.DataTypeNumber, "float", nil
	case reflect.Float64:
		return schemagen.DataTypeNumber, "double", nil
	default:
		return "", "", fmt.Errorf("reflectcontract: %s is not a scalar type", rt)
	}
}

// wireValue converts an enum constant of a named type into its underlying
// wire value.
func wireValue(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return fmt.Sprint(rv.Interface())
	}
}
