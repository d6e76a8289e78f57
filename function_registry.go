package schemagen

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/stoewer/go-strcase"
)

// Function is a helper callable from rule expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry stores rule helpers keyed by case-insensitive name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry returns an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: map[string]Function{}}
}

// DefaultFunctionRegistry returns a registry preloaded with the string
// helpers rule authors usually need: lower, upper, camel, snake, kebab and
// hasPrefix.
func DefaultFunctionRegistry() *FunctionRegistry {
	registry := NewFunctionRegistry()
	_ = registry.Register("lower", stringFunction("lower", strings.ToLower))
	_ = registry.Register("upper", stringFunction("upper", strings.ToUpper))
	_ = registry.Register("camel", stringFunction("camel", strcase.LowerCamelCase))
	_ = registry.Register("snake", stringFunction("snake", strcase.SnakeCase))
	_ = registry.Register("kebab", stringFunction("kebab", strcase.KebabCase))
	_ = registry.Register("hasPrefix", func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("schemagen: hasPrefix expects 2 arguments, got %d", len(args))
		}
		value, ok1 := args[0].(string)
		prefix, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("schemagen: hasPrefix expects string arguments")
		}
		return strings.HasPrefix(value, prefix), nil
	})
	return registry
}

func stringFunction(name string, fn func(string) string) Function {
	return func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("schemagen: %s expects 1 argument, got %d", name, len(args))
		}
		value, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("schemagen: %s expects a string, got %T", name, args[0])
		}
		return fn(value), nil
	}
}

// Register stores fn under name. Names are unique ignoring case.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("schemagen: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("schemagen: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = map[string]Function{}
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("schemagen: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a shallow copy so evaluators do not observe later
// registrations.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{functions: make(map[string]Function, len(r.functions))}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call runs the function registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("schemagen: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("schemagen: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns the registered names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
