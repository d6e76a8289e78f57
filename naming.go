package schemagen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/stoewer/go-strcase"
)

// NamingPolicy maps a nominal identity to a schema ID.
type NamingPolicy func(Identity) string

// ValueNaming transforms string enum literals before they are emitted.
type ValueNaming func(string) string

// ShortNaming derives the schema ID from the type's own name. Two types that
// share a short name anywhere in one document conflict.
func ShortNaming(id Identity) string {
	name := sanitizeSchemaID(id.Name)
	if name == "" {
		return "Schema"
	}
	return name
}

// QualifiedNaming prefixes the short name with the last package path
// segment, so models.User becomes models_User.
func QualifiedNaming(id Identity) string {
	short := ShortNaming(id)
	pkg := id.Package
	if idx := strings.LastIndex(pkg, "/"); idx >= 0 {
		pkg = pkg[idx+1:]
	}
	pkg = sanitizeSchemaID(pkg)
	if pkg == "" {
		return short
	}
	return pkg + "_" + short
}

// PrefixedNaming wraps policy and prepends prefix to every ID.
func PrefixedNaming(prefix string, policy NamingPolicy) NamingPolicy {
	if policy == nil {
		policy = ShortNaming
	}
	return func(id Identity) string {
		return prefix + policy(id)
	}
}

// CamelCaseValues renders enum literals as lowerCamelCase.
func CamelCaseValues(value string) string {
	return strcase.LowerCamelCase(value)
}

// PascalCaseValues renders enum literals as UpperCamelCase.
func PascalCaseValues(value string) string {
	return strcase.UpperCamelCase(value)
}

// SnakeCaseValues renders enum literals as snake_case.
func SnakeCaseValues(value string) string {
	return strcase.SnakeCase(value)
}

// KebabCaseValues renders enum literals as kebab-case.
func KebabCaseValues(value string) string {
	return strcase.KebabCase(value)
}

// ValueNamingByName resolves a value naming policy from its settings name.
func ValueNamingByName(name string) (ValueNaming, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "identity":
		return nil, nil
	case "camel", "camelcase":
		return CamelCaseValues, nil
	case "pascal", "pascalcase":
		return PascalCaseValues, nil
	case "snake", "snakecase":
		return SnakeCaseValues, nil
	case "kebab", "kebabcase":
		return KebabCaseValues, nil
	default:
		return nil, fmt.Errorf("schemagen: unknown value naming %q", name)
	}
}

// NamingPolicyByName resolves a naming policy from its settings name.
func NamingPolicyByName(name string) (NamingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "short":
		return ShortNaming, nil
	case "qualified":
		return QualifiedNaming, nil
	default:
		return nil, fmt.Errorf("schemagen: unknown naming policy %q", name)
	}
}

var schemaIDRegexp = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

func sanitizeSchemaID(name string) string {
	name = schemaIDRegexp.ReplaceAllString(name, "_")
	name = trimUnderscores(name)
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func trimUnderscores(input string) string {
	start := 0
	for start < len(input) && input[start] == '_' {
		start++
	}
	end := len(input)
	for end > start && input[end-1] == '_' {
		end--
	}
	return input[start:end]
}
