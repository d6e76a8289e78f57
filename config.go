package schemagen

// MappingFunc produces a fixed schema body for a custom-mapped identity.
type MappingFunc func() *Body

// Option configures a Generator.
type Option func(*generatorConfig)

type generatorConfig struct {
	naming             NamingPolicy
	valueNaming        ValueNaming
	enumsAsStrings     bool
	inlineEnums        bool
	flattenInheritance bool
	ignoreDeprecated   bool
	mappings           map[Identity]MappingFunc
	filters            []Filter
	resolver           ContractResolver
	logger             Logger
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		naming:   ShortNaming,
		mappings: map[Identity]MappingFunc{},
		logger:   noopLogger{},
	}
}

func applyOptions(opts []Option) generatorConfig {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithNamingPolicy overrides how schema IDs are derived from identities.
func WithNamingPolicy(policy NamingPolicy) Option {
	return func(cfg *generatorConfig) {
		if policy == nil {
			return
		}
		cfg.naming = policy
	}
}

// WithValueNaming transforms string enum literals (for example
// CamelCaseValues).
func WithValueNaming(naming ValueNaming) Option {
	return func(cfg *generatorConfig) {
		cfg.valueNaming = naming
	}
}

// WithEnumsAsStrings emits every enum as a string enum, converting non-string
// literals with their default formatting.
func WithEnumsAsStrings(enabled bool) Option {
	return func(cfg *generatorConfig) {
		cfg.enumsAsStrings = enabled
	}
}

// WithInlineEnums emits enums inline at every use instead of as shared
// definitions.
func WithInlineEnums(enabled bool) Option {
	return func(cfg *generatorConfig) {
		cfg.inlineEnums = enabled
	}
}

// WithFlattenInheritance merges inherited properties into each object
// instead of composing it with its base through allOf.
func WithFlattenInheritance(enabled bool) Option {
	return func(cfg *generatorConfig) {
		cfg.flattenInheritance = enabled
	}
}

// WithIgnoreDeprecated drops deprecated properties from object bodies.
func WithIgnoreDeprecated(enabled bool) Option {
	return func(cfg *generatorConfig) {
		cfg.ignoreDeprecated = enabled
	}
}

// WithCustomMapping registers a fixed schema for id. Mapped identities never
// reach the repository.
func WithCustomMapping(id Identity, mapping MappingFunc) Option {
	return func(cfg *generatorConfig) {
		if mapping == nil {
			delete(cfg.mappings, id)
			return
		}
		cfg.mappings[id] = mapping
	}
}

// WithFilter appends a post-processing filter. Filters run in registration
// order.
func WithFilter(filter Filter) Option {
	return func(cfg *generatorConfig) {
		if filter == nil {
			return
		}
		cfg.filters = append(cfg.filters, filter)
	}
}

// WithContractResolver configures the resolver used by GenerateFor.
func WithContractResolver(resolver ContractResolver) Option {
	return func(cfg *generatorConfig) {
		cfg.resolver = resolver
	}
}
