package schemagen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPackage = "example.com/models"

func id(name string) Identity {
	return NewIdentity(testPackage, name)
}

func TestGenerateSelfReferencingObject(t *testing.T) {
	node := NewObject(id("T"))
	node.AddProperty(Prop("self", node))

	repo := NewRepository()
	schema, err := NewGenerator().GenerateSchema(node, repo)
	require.NoError(t, err)
	assert.Equal(t, Ref("T"), schema)

	body, ok := repo.Lookup("T")
	require.True(t, ok)
	self, ok := body.Property("self")
	require.True(t, ok)
	assert.Equal(t, Ref("T"), self)
	assert.Equal(t, []string{"T"}, repo.IDs())
	assert.Empty(t, repo.Pending())
}

func TestGenerateMutualRecursion(t *testing.T) {
	a := NewObject(id("A"))
	b := NewObject(id("B"), Prop("a", a))
	a.AddProperty(Prop("b", b))

	repo := NewRepository()
	schema, err := NewGenerator().GenerateSchema(a, repo)
	require.NoError(t, err)
	assert.Equal(t, Ref("A"), schema)

	bodyA, _ := repo.Lookup("A")
	bodyB, _ := repo.Lookup("B")
	propB, _ := bodyA.Property("b")
	propA, _ := bodyB.Property("a")
	assert.Equal(t, Ref("B"), propB)
	assert.Equal(t, Ref("A"), propA)
	assert.Equal(t, []string{"A", "B"}, repo.IDs())
}

func TestGenerateThreeStepCycle(t *testing.T) {
	a := NewObject(id("A"))
	b := NewObject(id("B"))
	c := NewObject(id("C"))
	a.AddProperty(Prop("next", b))
	b.AddProperty(Prop("next", c))
	c.AddProperty(Prop("next", a))

	repo := NewRepository()
	_, err := NewGenerator().GenerateSchema(a, repo)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, repo.IDs())
	assert.Len(t, repo.Definitions(), 3)
	bodyC, _ := repo.Lookup("C")
	next, _ := bodyC.Property("next")
	assert.Equal(t, Ref("A"), next)
}

func TestGenerateDeduplicatesDefinitions(t *testing.T) {
	address := NewObject(id("Address"), Prop("city", StringContract(""), Required()))
	user := NewObject(id("User"),
		Prop("home", address),
		Prop("work", address),
		Prop("previous", ArrayOf(Identity{}, address)),
	)

	repo := NewRepository()
	generator := NewGenerator()
	_, err := generator.GenerateSchema(user, repo)
	require.NoError(t, err)
	again, err := generator.GenerateSchema(address, repo)
	require.NoError(t, err)

	assert.Equal(t, Ref("Address"), again)
	assert.Equal(t, []string{"User", "Address"}, repo.IDs())

	body, _ := repo.Lookup("User")
	home, _ := body.Property("home")
	work, _ := body.Property("work")
	previous, _ := body.Property("previous")
	assert.Equal(t, Ref("Address"), home)
	assert.Equal(t, Ref("Address"), work)
	assert.Equal(t, Ref("Address"), *previous.Body.Items)
}

func TestGenerateConflictPoisonsRepository(t *testing.T) {
	first := NewObject(NewIdentity("example.com/a", "User"))
	second := NewObject(NewIdentity("example.com/b", "User"))
	holder := NewObject(id("Holder"), Prop("first", first), Prop("second", second))

	repo := NewRepository()
	_, err := NewGenerator().GenerateSchema(holder, repo)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaIDConflict)

	var conflict *SchemaIDConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "User", conflict.SchemaID)
	assert.Equal(t, first.ID, conflict.Existing)
	assert.Equal(t, second.ID, conflict.Incoming)
	assert.Contains(t, err.Error(), `"example.com/a.User"`)
	assert.Contains(t, err.Error(), `"example.com/b.User"`)

	assert.Nil(t, repo.Definitions())
	assert.ErrorIs(t, repo.Err(), ErrSchemaIDConflict)

	_, err = NewGenerator().GenerateSchema(NewObject(id("Other")), repo)
	assert.ErrorIs(t, err, ErrSchemaIDConflict)
}

func TestQualifiedNamingAvoidsConflict(t *testing.T) {
	first := NewObject(NewIdentity("example.com/a", "User"))
	second := NewObject(NewIdentity("example.com/b", "User"))
	holder := NewObject(id("Holder"), Prop("first", first), Prop("second", second))

	repo := NewRepository()
	_, err := NewGenerator(WithNamingPolicy(QualifiedNaming)).GenerateSchema(holder, repo)
	require.NoError(t, err)
	assert.Equal(t, []string{"models_Holder", "a_User", "b_User"}, repo.IDs())
}

func TestGeneratePolymorphicHierarchy(t *testing.T) {
	cat := NewObject(id("Cat"), Prop("lives", IntegerContract("int32")))
	cat.DiscriminatorValue = "cat"
	dog := NewObject(id("Dog"), Prop("breed", StringContract("")))
	dog.DiscriminatorValue = "dog"
	pet := NewObject(id("Pet"), Prop("name", StringContract(""), Required())).
		WithSubtypes("kind", cat, dog)

	repo := NewRepository()
	schema, err := NewGenerator().GenerateSchema(pet, repo)
	require.NoError(t, err)
	assert.Equal(t, Ref("Pet"), schema)

	body, _ := repo.Lookup("Pet")
	assert.Equal(t, []Schema{Ref("Cat"), Ref("Dog")}, body.OneOf)
	require.NotNil(t, body.Discriminator)
	assert.Equal(t, "kind", body.Discriminator.PropertyName)
	assert.Equal(t, map[string]string{"cat": "Cat", "dog": "Dog"}, body.Discriminator.Mapping)

	catBody, _ := repo.Lookup("Cat")
	assert.Equal(t, []string{"kind", "name", "lives"}, catBody.PropertyNames())
	assert.Equal(t, []string{"kind", "name"}, catBody.Required)
	kind, _ := catBody.Property("kind")
	assert.Equal(t, []any{"cat"}, kind.Body.Enum)
	assert.Equal(t, []string{"kind", "name"}, catBody.Map("")["required"])

	rendered := body.Map("")
	assert.Equal(t, map[string]any{
		"propertyName": "kind",
		"mapping": map[string]any{
			"cat": "#/components/schemas/Cat",
			"dog": "#/components/schemas/Dog",
		},
	}, rendered["discriminator"])
}

func TestGenerateSubtypeFirstStillLinksHierarchy(t *testing.T) {
	cat := NewObject(id("Cat"))
	cat.DiscriminatorValue = "cat"
	pet := NewObject(id("Pet")).WithSubtypes("kind", cat)

	repo := NewRepository()
	schema, err := NewGenerator().GenerateSchema(cat, repo)
	require.NoError(t, err)
	assert.Equal(t, Ref("Cat"), schema)
	assert.Equal(t, []string{"Cat"}, repo.IDs())

	_, err = NewGenerator().GenerateSchema(pet, repo)
	require.NoError(t, err)
	body, _ := repo.Lookup("Pet")
	assert.Equal(t, []Schema{Ref("Cat")}, body.OneOf)
}

func TestGenerateComposedInheritance(t *testing.T) {
	base := NewObject(id("Entity"), Prop("id", StringContract("uuid"), Required()))
	user := NewObject(id("User"), Prop("email", StringContract("email"))).Extends(base)

	repo := NewRepository()
	_, err := NewGenerator().GenerateSchema(user, repo)
	require.NoError(t, err)

	body, _ := repo.Lookup("User")
	require.Len(t, body.AllOf, 2)
	assert.Equal(t, Ref("Entity"), body.AllOf[0])
	assert.Equal(t, []string{"email"}, body.AllOf[1].Body.PropertyNames())
	assert.Equal(t, []string{"User", "Entity"}, repo.IDs())
}

func TestGenerateFlattenedInheritanceMostDerivedWins(t *testing.T) {
	base := NewObject(id("Entity"),
		Prop("id", StringContract("")),
		Prop("name", StringContract("")),
	)
	user := NewObject(id("User"),
		Prop("name", StringContract(""), Required()),
		Prop("email", StringContract("email")),
	).Extends(base)

	repo := NewRepository()
	_, err := NewGenerator(WithFlattenInheritance(true)).GenerateSchema(user, repo)
	require.NoError(t, err)

	body, _ := repo.Lookup("User")
	assert.Empty(t, body.AllOf)
	assert.Equal(t, []string{"id", "name", "email"}, body.PropertyNames())
	assert.Equal(t, []string{"name"}, body.Required)
	assert.Equal(t, []string{"User"}, repo.IDs())
}

func TestGenerateComposedShadowingFallsBackToFlatten(t *testing.T) {
	base := NewObject(id("Entity"),
		Prop("id", StringContract("")),
		Prop("name", StringContract("")),
	)
	user := NewObject(id("User"), Prop("name", StringContract("email"), Required())).Extends(base)

	repo := NewRepository()
	_, err := NewGenerator().GenerateSchema(user, repo)
	require.NoError(t, err)

	body, _ := repo.Lookup("User")
	assert.Empty(t, body.AllOf)
	assert.Equal(t, []string{"id", "name"}, body.PropertyNames())
	name, _ := body.Property("name")
	assert.Equal(t, "email", name.Body.Format)
	assert.Equal(t, []string{"name"}, body.Required)
}

func TestGenerateEnumNaming(t *testing.T) {
	color := EnumContract(id("Color"), DataTypeString, "Foo", "Bar")

	repo := NewRepository()
	schema, err := NewGenerator(WithValueNaming(CamelCaseValues)).GenerateSchema(color, repo)
	require.NoError(t, err)
	assert.Equal(t, Ref("Color"), schema)

	body, _ := repo.Lookup("Color")
	assert.Equal(t, "string", body.Type)
	assert.Equal(t, []any{"foo", "bar"}, body.Enum)
}

func TestGenerateEnumOptions(t *testing.T) {
	level := EnumContract(id("Level"), DataTypeInteger, 1, 2, 3)

	repo := NewRepository()
	schema, err := NewGenerator(WithEnumsAsStrings(true), WithInlineEnums(true)).GenerateSchema(level, repo)
	require.NoError(t, err)
	require.False(t, schema.IsRef())
	assert.Equal(t, "string", schema.Body.Type)
	assert.Equal(t, []any{"1", "2", "3"}, schema.Body.Enum)
	assert.Zero(t, repo.Len())

	native, err := NewGenerator().GenerateSchema(level, NewRepository())
	require.NoError(t, err)
	assert.Equal(t, Ref("Level"), native)
}

func TestGenerateClosedKeyDictionary(t *testing.T) {
	keys := EnumContract(id("Slot"), DataTypeString, "A", "B")
	dict := ClosedMapOf(Identity{}, keys, IntegerContract("int32"))

	repo := NewRepository()
	schema, err := NewGenerator().GenerateSchema(dict, repo)
	require.NoError(t, err)
	require.False(t, schema.IsRef())

	body := schema.Body
	assert.Equal(t, "object", body.Type)
	assert.Equal(t, []string{"A", "B"}, body.PropertyNames())
	assert.True(t, body.Closed)
	assert.Nil(t, body.AdditionalProperties)
	assert.Equal(t, false, body.Map("")["additionalProperties"])
	assert.Zero(t, repo.Len())
}

func TestGenerateOpenDictionaryAndSelfReferencingArray(t *testing.T) {
	dict := MapOf(Identity{}, StringContract(""))
	schema, err := NewGenerator().GenerateSchema(dict, NewRepository())
	require.NoError(t, err)
	require.NotNil(t, schema.Body.AdditionalProperties)
	assert.Equal(t, "string", schema.Body.AdditionalProperties.Body.Type)

	tree := &Array{ID: id("Tree")}
	tree.Items = tree
	repo := NewRepository()
	schema, err = NewGenerator().GenerateSchema(tree, repo)
	require.NoError(t, err)
	assert.Equal(t, Ref("Tree"), schema)
	body, _ := repo.Lookup("Tree")
	assert.Equal(t, Ref("Tree"), *body.Items)
}

func TestGenerateAnonymousSelfReferenceFails(t *testing.T) {
	object := &Object{}
	object.Properties = []Property{{Name: "self", Contract: object}}

	repo := NewRepository()
	_, err := NewGenerator().GenerateSchema(object, repo)
	require.ErrorIs(t, err, ErrAnonymousCycle)
	assert.ErrorIs(t, repo.Err(), ErrAnonymousCycle)
	assert.Empty(t, repo.IDs())
	assert.Empty(t, repo.Definitions())
}

func TestGenerateAnonymousSelfReferencingCollectionsStayApart(t *testing.T) {
	list := &Array{}
	list.Items = list
	dict := &Dictionary{}
	dict.Values = dict

	for name, contract := range map[string]DataContract{"array": list, "dictionary": dict} {
		t.Run(name, func(t *testing.T) {
			repo := NewRepository()
			schema, err := NewGenerator().GenerateSchema(contract, repo)
			require.ErrorIs(t, err, ErrAnonymousCycle)
			assert.True(t, schema.IsZero())
			assert.Empty(t, repo.IDs())
		})
	}

	// One repository: the first failure poisons it, so the second contract can
	// never land on the first one's definition.
	repo := NewRepository()
	_, err := NewGenerator().GenerateSchema(list, repo)
	require.ErrorIs(t, err, ErrAnonymousCycle)
	_, err = NewGenerator().GenerateSchema(dict, repo)
	require.Error(t, err)
	assert.Empty(t, repo.IDs())
}

func TestGenerateAnonymousObjectInsideNamedCycle(t *testing.T) {
	node := NewObject(id("Node"))
	wrapper := NewObject(Identity{}, Prop("next", node))
	node.AddProperty(Prop("wrapper", wrapper)).AddProperty(Prop("alias", wrapper))

	repo := NewRepository()
	schema, err := NewGenerator().GenerateSchema(node, repo)
	require.NoError(t, err)
	assert.Equal(t, Ref("Node"), schema)

	body, ok := repo.Lookup("Node")
	require.True(t, ok)
	for _, name := range []string{"wrapper", "alias"} {
		prop, ok := body.Property(name)
		require.Truef(t, ok, "missing %s", name)
		require.NotNil(t, prop.Body)
		next, ok := prop.Body.Property("next")
		require.True(t, ok)
		assert.Equal(t, Ref("Node"), next)
	}
	assert.Equal(t, []string{"Node"}, repo.IDs())
}

func TestGeneratePropertyAttributes(t *testing.T) {
	owner := NewObject(id("Owner"))
	pet := NewObject(id("Pet"),
		Prop("owner", owner, Nullable(), Describe("current owner")),
		Prop("name", StringContract(""), ReadOnly(), WithDefault("rex")),
		Prop("secret", StringContract(""), WriteOnly()),
		Prop("legacy", StringContract(""), Deprecated()),
	)

	repo := NewRepository()
	_, err := NewGenerator().GenerateSchema(pet, repo)
	require.NoError(t, err)
	body, _ := repo.Lookup("Pet")

	ownerSchema, _ := body.Property("owner")
	require.NotNil(t, ownerSchema.Body)
	assert.Equal(t, []Schema{Ref("Owner")}, ownerSchema.Body.AllOf)
	assert.True(t, ownerSchema.Body.Nullable)
	assert.Equal(t, "current owner", ownerSchema.Body.Description)

	name, _ := body.Property("name")
	assert.True(t, name.Body.ReadOnly)
	assert.Equal(t, "rex", name.Body.Default)

	secret, _ := body.Property("secret")
	assert.True(t, secret.Body.WriteOnly)
	legacy, _ := body.Property("legacy")
	assert.True(t, legacy.Body.Deprecated)

	trimmed := NewRepository()
	_, err = NewGenerator(WithIgnoreDeprecated(true)).GenerateSchema(pet, trimmed)
	require.NoError(t, err)
	trimmedBody, _ := trimmed.Lookup("Pet")
	assert.Equal(t, []string{"owner", "name", "secret"}, trimmedBody.PropertyNames())
}

func TestGenerateAnonymousObjectIsInlined(t *testing.T) {
	inner := NewObject(Identity{}, Prop("x", NumberContract("double")))
	outer := NewObject(id("Outer"), Prop("inner", inner))

	repo := NewRepository()
	_, err := NewGenerator().GenerateSchema(outer, repo)
	require.NoError(t, err)
	assert.Equal(t, []string{"Outer"}, repo.IDs())
	body, _ := repo.Lookup("Outer")
	prop, _ := body.Property("inner")
	require.NotNil(t, prop.Body)
	assert.Equal(t, []string{"x"}, prop.Body.PropertyNames())
}

func TestGenerateCustomMappingBypassesRepository(t *testing.T) {
	money := NewObject(id("Money"), Prop("amount", NumberContract("")))
	order := NewObject(id("Order"), Prop("total", money))
	calls := 0

	generator := NewGenerator(WithCustomMapping(money.ID, func() *Body {
		calls++
		return &Body{Type: "string", Format: "decimal"}
	}))

	repo := NewRepository()
	_, err := generator.GenerateSchema(order, repo)
	require.NoError(t, err)
	assert.Equal(t, []string{"Order"}, repo.IDs())
	body, _ := repo.Lookup("Order")
	total, _ := body.Property("total")
	assert.Equal(t, "decimal", total.Body.Format)

	top, err := generator.GenerateSchema(money, repo)
	require.NoError(t, err)
	assert.Equal(t, "string", top.Body.Type)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"Order"}, repo.IDs())
}

func TestGenerateDynamicFallback(t *testing.T) {
	var seen []LogEvent
	generator := NewGenerator(WithLogger(LoggerFunc(func(event LogEvent) {
		seen = append(seen, event)
	})))

	holder := NewObject(id("Holder"),
		Prop("anything", DynamicContract(Identity{})),
		Prop("missing", nil),
	)
	repo := NewRepository()
	_, err := generator.GenerateSchema(holder, repo)
	require.NoError(t, err)

	body, _ := repo.Lookup("Holder")
	anything, _ := body.Property("anything")
	assert.Equal(t, map[string]any{}, anything.Map(""))
	missing, _ := body.Property("missing")
	assert.Equal(t, map[string]any{}, missing.Map(""))

	actions := make([]LogAction, 0, len(seen))
	for _, event := range seen {
		actions = append(actions, event.Action)
	}
	assert.Equal(t, []LogAction{LogClaim, LogFallback, LogDefine}, actions)
}

func TestGenerateRejectsNilInputs(t *testing.T) {
	generator := NewGenerator()

	_, err := generator.GenerateSchema(NewObject(id("A")), nil)
	assert.ErrorIs(t, err, ErrNilRepository)

	_, err = generator.GenerateSchema(nil, NewRepository())
	assert.ErrorIs(t, err, ErrNilContract)

	var object *Object
	_, err = generator.GenerateSchema(object, NewRepository())
	assert.ErrorIs(t, err, ErrNilContract)
}

func TestGenerateForUsesResolver(t *testing.T) {
	pet := NewObject(id("Pet"))
	resolverErr := errors.New("unknown type")
	resolver := ContractResolverFunc(func(nominal any) (DataContract, error) {
		if nominal == "Pet" {
			return pet, nil
		}
		return nil, resolverErr
	})
	generator := NewGenerator(WithContractResolver(resolver))

	repo := NewRepository()
	schema, err := generator.GenerateFor("Pet", repo)
	require.NoError(t, err)
	assert.Equal(t, Ref("Pet"), schema)

	failed := NewRepository()
	_, err = generator.GenerateFor("Cat", failed)
	assert.Same(t, resolverErr, err)
	assert.Nil(t, failed.Definitions())

	_, err = NewGenerator().GenerateFor("Pet", NewRepository())
	assert.ErrorIs(t, err, ErrNoResolver)
}

func TestGeneratorIsReusableAcrossRepositories(t *testing.T) {
	node := NewObject(id("Node"))
	node.AddProperty(Prop("next", node))
	generator := NewGenerator()

	for i := 0; i < 3; i++ {
		repo := NewRepository()
		schema, err := generator.GenerateSchema(node, repo)
		require.NoError(t, err)
		assert.Equal(t, Ref("Node"), schema)
		assert.Equal(t, 1, repo.Len())
	}
	assert.Equal(t, "Node", generator.SchemaID(node.ID))
}
