package schemagen

import "fmt"

// ContractResolver turns a host type (a reflect.Type, a sample value, a type
// name; whatever the adapter understands) into a data contract.
type ContractResolver interface {
	ResolveContract(nominal any) (DataContract, error)
}

// ContractResolverFunc adapts a function to ContractResolver.
type ContractResolverFunc func(nominal any) (DataContract, error)

// ResolveContract implements ContractResolver.
func (f ContractResolverFunc) ResolveContract(nominal any) (DataContract, error) {
	return f(nominal)
}

// Generator compiles data contracts into schema nodes. It holds only
// configuration and may be shared; all build state lives in the Repository
// passed to each call.
type Generator struct {
	cfg generatorConfig
}

// NewGenerator constructs a generator.
func NewGenerator(opts ...Option) *Generator {
	return &Generator{cfg: applyOptions(opts)}
}

// GenerateSchema returns the schema for contract and records every named
// definition reachable from it in repo. Repeated calls against one repository
// share and deduplicate definitions. Any error fails repo for good.
func (g *Generator) GenerateSchema(contract DataContract, repo *Repository) (Schema, error) {
	if repo == nil {
		return Schema{}, ErrNilRepository
	}
	if err := repo.Err(); err != nil {
		return Schema{}, err
	}
	if isNilContract(contract) {
		return Schema{}, ErrNilContract
	}

	if schema, ok := g.mapped(contract); ok {
		return schema, nil
	}

	schema, err := g.generate(contract, repo)
	if err != nil {
		repo.fail(err)
		return Schema{}, err
	}
	if schema.IsRef() {
		return schema, nil
	}

	body, err := g.runFilters(contract.Identity().String(), schema.Body, contract, repo)
	if err != nil {
		repo.fail(err)
		return Schema{}, err
	}
	return Inline(body), nil
}

// GenerateFor resolves nominal through the configured ContractResolver and
// generates its schema. Resolver errors are returned unchanged.
func (g *Generator) GenerateFor(nominal any, repo *Repository) (Schema, error) {
	if g.cfg.resolver == nil {
		return Schema{}, ErrNoResolver
	}
	if repo == nil {
		return Schema{}, ErrNilRepository
	}
	contract, err := g.cfg.resolver.ResolveContract(nominal)
	if err != nil {
		repo.fail(err)
		return Schema{}, err
	}
	return g.GenerateSchema(contract, repo)
}

// SchemaID returns the ID the naming policy assigns to id.
func (g *Generator) SchemaID(id Identity) string {
	return g.cfg.naming(id)
}

func (g *Generator) mapped(contract DataContract) (Schema, bool) {
	mapping, ok := g.cfg.mappings[contract.Identity()]
	if !ok {
		return Schema{}, false
	}
	g.cfg.logger.LogSchema(LogEvent{
		Action:   LogMapping,
		Identity: contract.Identity(),
		Kind:     contract.Kind(),
	})
	return Inline(mapping().Clone()), true
}

func (g *Generator) generate(contract DataContract, repo *Repository) (Schema, error) {
	if isNilContract(contract) {
		g.cfg.logger.LogSchema(LogEvent{Action: LogFallback, Kind: KindDynamic})
		return Inline(&Body{}), nil
	}
	if schema, ok := g.mapped(contract); ok {
		return schema, nil
	}
	if !g.referenced(contract) {
		return g.inline(contract, repo)
	}

	owner := contract.Identity()
	id := g.cfg.naming(owner)
	claim, err := repo.TryClaim(id, owner)
	switch claim {
	case ClaimConflict:
		g.cfg.logger.LogSchema(LogEvent{Action: LogConflict, SchemaID: id, Identity: owner, Kind: contract.Kind(), Err: err})
		return Schema{}, err
	case ClaimExisting:
		return repo.Resolve(id)
	}
	g.cfg.logger.LogSchema(LogEvent{Action: LogClaim, SchemaID: id, Identity: owner, Kind: contract.Kind()})

	// The slot is claimed before recursing so nested visits of the same
	// identity resolve to a reference instead of re-entering buildBody.
	body, err := g.buildBody(contract, repo)
	if err != nil {
		return Schema{}, err
	}
	if err := repo.Define(id, body); err != nil {
		return Schema{}, err
	}
	filtered, err := g.runFilters(id, body, contract, repo)
	if err != nil {
		return Schema{}, err
	}
	repo.redefine(id, filtered)
	g.cfg.logger.LogSchema(LogEvent{Action: LogDefine, SchemaID: id, Identity: owner, Kind: contract.Kind()})
	return repo.Resolve(id)
}

// inline builds a body that owns no repository slot. Without a slot there is
// no reference to break a cycle with, so re-entering a contract still being
// inlined is an error.
func (g *Generator) inline(contract DataContract, repo *Repository) (Schema, error) {
	if !repo.enterInline(contract) {
		return Schema{}, fmt.Errorf("%w: %s %s", ErrAnonymousCycle, contract.Kind(), describeIdentity(contract.Identity()))
	}
	defer repo.leaveInline(contract)

	body, err := g.buildBody(contract, repo)
	if err != nil {
		return Schema{}, err
	}
	return Inline(body), nil
}

// referenced reports whether contract occupies a repository slot. Contracts
// without an identity never do: the naming policy has nothing to name them by.
func (g *Generator) referenced(contract DataContract) bool {
	switch c := contract.(type) {
	case *Object:
		return !c.ID.IsZero()
	case *Primitive:
		return c.IsEnum() && !c.ID.IsZero() && !g.cfg.inlineEnums
	case *Array:
		return !c.ID.IsZero() && selfReferencing(c, c.Items)
	case *Dictionary:
		return !c.ID.IsZero() && selfReferencing(c, c.Values)
	default:
		return false
	}
}

func selfReferencing(outer, nested DataContract) bool {
	if isNilContract(nested) {
		return false
	}
	return nested == outer || nested.Identity() == outer.Identity()
}

func (g *Generator) buildBody(contract DataContract, repo *Repository) (*Body, error) {
	switch c := contract.(type) {
	case *Primitive:
		return g.primitiveBody(c), nil
	case *Array:
		return g.arrayBody(c, repo)
	case *Dictionary:
		return g.dictionaryBody(c, repo)
	case *Object:
		return g.objectBody(c, repo)
	case *Dynamic:
		return &Body{}, nil
	default:
		g.cfg.logger.LogSchema(LogEvent{Action: LogFallback, Identity: contract.Identity(), Kind: contract.Kind()})
		return &Body{}, nil
	}
}

func (g *Generator) primitiveBody(p *Primitive) *Body {
	body := &Body{Type: string(p.DataType), Format: p.Format}
	if !p.IsEnum() {
		return body
	}
	asStrings := g.cfg.enumsAsStrings && p.DataType != DataTypeString
	if asStrings {
		body.Type = string(DataTypeString)
		body.Format = ""
	}
	body.Enum = make([]any, 0, len(p.LiteralValues))
	for _, value := range p.LiteralValues {
		switch v := value.(type) {
		case string:
			body.Enum = append(body.Enum, g.enumValue(v))
		default:
			if asStrings {
				body.Enum = append(body.Enum, g.enumValue(fmt.Sprint(v)))
				continue
			}
			body.Enum = append(body.Enum, v)
		}
	}
	return body
}

func (g *Generator) enumValue(value string) string {
	if g.cfg.valueNaming == nil {
		return value
	}
	return g.cfg.valueNaming(value)
}

func (g *Generator) arrayBody(a *Array, repo *Repository) (*Body, error) {
	items, err := g.generate(a.Items, repo)
	if err != nil {
		return nil, err
	}
	return &Body{
		Type:        "array",
		Items:       &items,
		UniqueItems: a.UniqueItems,
	}, nil
}

func (g *Generator) dictionaryBody(d *Dictionary, repo *Repository) (*Body, error) {
	values, err := g.generate(d.Values, repo)
	if err != nil {
		return nil, err
	}
	body := &Body{Type: "object"}
	if !d.Keys.IsEnum() {
		body.AdditionalProperties = &values
		return body, nil
	}
	for _, key := range d.Keys.LiteralValues {
		body.SetProperty(fmt.Sprint(key), values.clone())
	}
	body.Closed = true
	return body, nil
}

func isNilContract(contract DataContract) bool {
	switch c := contract.(type) {
	case nil:
		return true
	case *Primitive:
		return c == nil
	case *Array:
		return c == nil
	case *Dictionary:
		return c == nil
	case *Object:
		return c == nil
	case *Dynamic:
		return c == nil
	default:
		return false
	}
}
