package schemagen

import (
	"sync"
)

// RuleContext carries the inputs a rule expression can see: a descriptor of
// the contract being filtered, the rendered schema body, and caller supplied
// args and metadata.
type RuleContext struct {
	Contract map[string]any
	Schema   map[string]any
	Args     map[string]any
	Metadata map[string]any
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Contract == nil {
		ctx.Contract = map[string]any{}
	}
	if ctx.Schema == nil {
		ctx.Schema = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) variables() map[string]any {
	ctx = ctx.withDefaultMaps()
	return map[string]any{
		"contract": ctx.Contract,
		"schema":   ctx.Schema,
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
	}
}

// Evaluator executes rule expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// ProgramCache stores compiled programs keyed by expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryProgramCache is a ProgramCache backed by a map.
type MemoryProgramCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewMemoryProgramCache returns an empty cache.
func NewMemoryProgramCache() *MemoryProgramCache {
	return &MemoryProgramCache{programs: map[string]any{}}
}

// Get implements ProgramCache.
func (c *MemoryProgramCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.programs[key]
	return value, ok
}

// Set implements ProgramCache.
func (c *MemoryProgramCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.programs == nil {
		c.programs = map[string]any{}
	}
	c.programs[key] = value
}

// Len returns the number of cached programs.
func (c *MemoryProgramCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

// DescribeContract renders the parts of a contract rule expressions can
// inspect.
func DescribeContract(contract DataContract) map[string]any {
	if isNilContract(contract) {
		return map[string]any{"kind": KindDynamic.String()}
	}
	id := contract.Identity()
	out := map[string]any{
		"id":      id.String(),
		"name":    id.Name,
		"package": id.Package,
		"kind":    contract.Kind().String(),
	}
	switch c := contract.(type) {
	case *Primitive:
		out["dataType"] = string(c.DataType)
		out["format"] = c.Format
		out["enum"] = append([]any{}, c.LiteralValues...)
	case *Array:
		out["uniqueItems"] = c.UniqueItems
	case *Dictionary:
		out["closed"] = c.Keys.IsEnum()
	case *Object:
		names := make([]any, 0, len(c.Properties))
		for _, prop := range c.Properties {
			names = append(names, prop.Name)
		}
		out["properties"] = names
		out["description"] = c.Description
		out["discriminator"] = c.DiscriminatorProperty
		out["discriminatorValue"] = c.DiscriminatorValue
		out["polymorphic"] = c.IsPolymorphic()
		if c.Base != nil {
			out["base"] = c.Base.ID.String()
		}
	}
	return out
}
