//go:build !js_eval

package schemagen

// NewJSEvaluator is unavailable without the js_eval build tag and returns nil.
func NewJSEvaluator(...EngineOption) Evaluator {
	return nil
}

// JSEvaluatorAvailable reports whether the binary was built with the js_eval
// tag.
func JSEvaluatorAvailable() bool {
	return false
}
