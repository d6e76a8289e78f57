package reflectcontract

import (
	"reflect"
	"strconv"
	"strings"
)

type fieldTag struct {
	name         string
	named        bool
	omitEmpty    bool
	format       string
	enum         string
	defaultValue string
	description  string
	readOnly     bool
	writeOnly    bool
	deprecated   bool
}

func parseFieldTag(field reflect.StructField) (fieldTag, bool) {
	tag := fieldTag{name: field.Name}
	if raw, ok := field.Tag.Lookup("json"); ok {
		segments := strings.Split(raw, ",")
		if segments[0] == "-" && len(segments) == 1 {
			return fieldTag{}, true
		}
		if segments[0] != "" {
			tag.name = segments[0]
			tag.named = true
		}
		for _, segment := range segments[1:] {
			if segment == "omitempty" || segment == "omitzero" {
				tag.omitEmpty = true
			}
		}
	}
	tag.format = field.Tag.Get("format")
	tag.enum = field.Tag.Get("enum")
	tag.defaultValue = field.Tag.Get("default")
	tag.description = field.Tag.Get("description")
	tag.readOnly = boolTag(field, "readonly")
	tag.writeOnly = boolTag(field, "writeonly")
	tag.deprecated = boolTag(field, "deprecated")
	return tag, false
}

// boolTag treats a present tag as true unless it parses as false.
func boolTag(field reflect.StructField, key string) bool {
	raw, ok := field.Tag.Lookup(key)
	if !ok {
		return false
	}
	if raw == "" {
		return true
	}
	value, err := strconv.ParseBool(raw)
	return err != nil || value
}

func parseScalar(t reflect.Type, raw string) (any, error) {
	switch t.Kind() {
	case reflect.Bool:
		return strconv.ParseBool(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.ParseInt(raw, 10, t.Bits())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseUint(raw, 10, t.Bits())
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(raw, t.Bits())
	default:
		return raw, nil
	}
}

func parseEnum(t reflect.Type, raw string) ([]any, error) {
	parts := strings.Split(raw, ",")
	values := make([]any, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		value, err := parseScalar(t, part)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}
