package schemagen

import (
	"fmt"
)

// RuleFilterOption configures WhenFilter and ExtensionFilter.
type RuleFilterOption func(*ruleFilterConfig)

type ruleFilterConfig struct {
	args     map[string]any
	metadata map[string]any
}

// RuleArgs exposes args to the rule expression.
func RuleArgs(args map[string]any) RuleFilterOption {
	return func(cfg *ruleFilterConfig) {
		cfg.args = args
	}
}

// RuleMetadata exposes metadata to the rule expression.
func RuleMetadata(metadata map[string]any) RuleFilterOption {
	return func(cfg *ruleFilterConfig) {
		cfg.metadata = metadata
	}
}

func applyRuleFilterOptions(opts []RuleFilterOption) ruleFilterConfig {
	cfg := ruleFilterConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg ruleFilterConfig) context(body *Body, contract DataContract, repo *Repository) RuleContext {
	metadata := map[string]any{}
	for key, value := range cfg.metadata {
		metadata[key] = value
	}
	if repo != nil {
		metadata["definitions"] = repo.Len()
	}
	return RuleContext{
		Contract: DescribeContract(contract),
		Schema:   body.Map(""),
		Args:     cfg.args,
		Metadata: metadata,
	}
}

// WhenFilter runs filter only on bodies for which expression evaluates to
// true. A nil evaluator selects the expr engine. The expression is compiled
// up front so syntax errors surface at configuration time.
func WhenFilter(evaluator Evaluator, expression string, filter Filter, opts ...RuleFilterOption) (Filter, error) {
	if filter == nil {
		return nil, fmt.Errorf("schemagen: when filter requires a filter")
	}
	rule, err := compileRule(evaluator, expression)
	if err != nil {
		return nil, err
	}
	cfg := applyRuleFilterOptions(opts)
	return func(body *Body, contract DataContract, repo *Repository) (*Body, error) {
		result, err := rule.Evaluate(cfg.context(body, contract, repo))
		if err != nil {
			return nil, err
		}
		matched, ok := result.(bool)
		if !ok {
			return nil, wrapRuleError("", expression, contract.Identity().String(),
				fmt.Errorf("condition must return bool, got %T", result))
		}
		if !matched {
			return body, nil
		}
		return filter(body, contract, repo)
	}, nil
}

// ExtensionFilter stores the result of expression under the vendor field key
// on every body. Nil results leave the body untouched.
func ExtensionFilter(evaluator Evaluator, key, expression string, opts ...RuleFilterOption) (Filter, error) {
	if extensionKey(key) == "" {
		return nil, fmt.Errorf("schemagen: extension filter requires a key")
	}
	rule, err := compileRule(evaluator, expression)
	if err != nil {
		return nil, err
	}
	cfg := applyRuleFilterOptions(opts)
	return func(body *Body, contract DataContract, repo *Repository) (*Body, error) {
		result, err := rule.Evaluate(cfg.context(body, contract, repo))
		if err != nil {
			return nil, err
		}
		if result == nil {
			return body, nil
		}
		body.SetExtension(key, result)
		return body, nil
	}, nil
}

func compileRule(evaluator Evaluator, expression string) (CompiledRule, error) {
	if evaluator == nil {
		evaluator = NewExprEvaluator()
	}
	if expression == "" {
		return nil, wrapEvaluatorError("rule", errEmptyExpression)
	}
	return evaluator.Compile(expression)
}

// EvaluatorByName returns the evaluator for an engine name: expr (default),
// cel or js. The js engine requires the js_eval build tag.
func EvaluatorByName(engine string, opts ...EngineOption) (Evaluator, error) {
	switch engine {
	case "", "expr":
		return NewExprEvaluator(opts...), nil
	case "cel":
		return NewCELEvaluator(opts...), nil
	case "js":
		evaluator := NewJSEvaluator(opts...)
		if evaluator == nil {
			return nil, fmt.Errorf("schemagen: js evaluator requires the js_eval build tag")
		}
		return evaluator, nil
	default:
		return nil, fmt.Errorf("schemagen: unknown rule engine %q", engine)
	}
}
