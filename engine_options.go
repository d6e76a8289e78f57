package schemagen

// EngineOption configures a rule engine. The same options apply to the expr,
// CEL and JS evaluators.
type EngineOption func(*engineConfig)

type engineConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// RuleProgramCache shares compiled programs between evaluations. Keys are
// namespaced per engine so one cache can serve every engine.
func RuleProgramCache(cache ProgramCache) EngineOption {
	return func(cfg *engineConfig) {
		cfg.cache = cache
	}
}

// RuleFunctions exposes registry helpers to expressions, by name and through
// call(name, ...). The registry is copied; later registrations are not seen.
func RuleFunctions(registry *FunctionRegistry) EngineOption {
	return func(cfg *engineConfig) {
		cfg.registry = registry.Clone()
	}
}

func applyEngineOptions(opts []EngineOption) engineConfig {
	var cfg engineConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func programKey(engine, expression string) string {
	return engine + ":" + expression
}
