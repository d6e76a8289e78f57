//go:build js_eval

package schemagen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSEvaluator(t *testing.T) {
	cache := NewMemoryProgramCache()
	evaluator := NewJSEvaluator(RuleProgramCache(cache), RuleFunctions(DefaultFunctionRegistry()))
	ctx := RuleContext{Contract: map[string]any{"kind": "object", "name": "PetOwner"}}

	result, err := evaluator.Evaluate(ctx, `contract.kind === "object" && contract.name.indexOf("Pet") === 0`)
	require.NoError(t, err)
	assert.Equal(t, true, result)

	result, err = evaluator.Evaluate(ctx, `kebab(contract.name)`)
	require.NoError(t, err)
	assert.Equal(t, "pet-owner", result)
	assert.Equal(t, 2, cache.Len())

	filter, err := ExtensionFilter(evaluator, "x-name", `call("snake", contract.name)`)
	require.NoError(t, err)
	repo := NewRepository()
	_, err = NewGenerator(WithFilter(filter)).GenerateSchema(NewObject(id("PetOwner")), repo)
	require.NoError(t, err)
	body, _ := repo.Lookup("PetOwner")
	assert.Equal(t, "pet_owner", body.Extensions["x-name"])
}
