package schemagen

// ClaimResult is the outcome of Repository.TryClaim.
type ClaimResult int

const (
	// ClaimNew means the caller now owns the slot and must define it.
	ClaimNew ClaimResult = iota
	// ClaimExisting means the same identity already holds the slot; the body
	// is defined or is being built further up the call stack.
	ClaimExisting
	// ClaimConflict means a different identity holds the slot.
	ClaimConflict
)

func (r ClaimResult) String() string {
	switch r {
	case ClaimNew:
		return "new"
	case ClaimExisting:
		return "existing"
	default:
		return "conflict"
	}
}

type repositoryEntry struct {
	id      string
	owner   Identity
	body    *Body
	defined bool
}

// Repository interns named schema definitions for one document build. Slots
// are claimed before their body is built so recursive generation can hand out
// references to definitions still under construction.
//
// A Repository is not safe for concurrent mutation.
type Repository struct {
	entries map[string]*repositoryEntry
	order   []string
	err     error
	// inlining holds the unnamed contracts whose bodies are being built
	// further up the call stack.
	inlining map[DataContract]struct{}
}

// NewRepository returns an empty repository.
func NewRepository() *Repository {
	return &Repository{
		entries: map[string]*repositoryEntry{},
	}
}

// TryClaim reserves id for owner. A conflict is returned together with a
// *SchemaIDConflictError and poisons the repository.
func (r *Repository) TryClaim(id string, owner Identity) (ClaimResult, error) {
	if r.err != nil {
		return ClaimConflict, r.err
	}
	if entry, ok := r.entries[id]; ok {
		if entry.owner == owner {
			return ClaimExisting, nil
		}
		err := &SchemaIDConflictError{
			SchemaID: id,
			Existing: entry.owner,
			Incoming: owner,
		}
		r.err = err
		return ClaimConflict, err
	}
	r.entries[id] = &repositoryEntry{id: id, owner: owner}
	r.order = append(r.order, id)
	return ClaimNew, nil
}

// Define stores the body of a claimed slot. Defining an already defined slot
// is a no-op.
func (r *Repository) Define(id string, body *Body) error {
	if r.err != nil {
		return r.err
	}
	entry, ok := r.entries[id]
	if !ok {
		return unclaimedError(id)
	}
	if entry.defined {
		return nil
	}
	if body == nil {
		body = &Body{}
	}
	entry.body = body
	entry.defined = true
	return nil
}

// redefine swaps the body of a defined slot with a post-processed one.
func (r *Repository) redefine(id string, body *Body) {
	if entry, ok := r.entries[id]; ok && entry.defined && body != nil {
		entry.body = body
	}
}

// Resolve returns a reference to a claimed slot, whether or not its body has
// been defined yet.
func (r *Repository) Resolve(id string) (Schema, error) {
	if _, ok := r.entries[id]; !ok {
		return Schema{}, unclaimedError(id)
	}
	return Ref(id), nil
}

// Owner returns the identity holding id.
func (r *Repository) Owner(id string) (Identity, bool) {
	entry, ok := r.entries[id]
	if !ok {
		return Identity{}, false
	}
	return entry.owner, true
}

// Lookup returns the defined body for id.
func (r *Repository) Lookup(id string) (*Body, bool) {
	if r.err != nil {
		return nil, false
	}
	entry, ok := r.entries[id]
	if !ok || !entry.defined {
		return nil, false
	}
	return entry.body, true
}

// IsDefined reports whether id has a body.
func (r *Repository) IsDefined(id string) bool {
	if r.err != nil {
		return false
	}
	entry, ok := r.entries[id]
	return ok && entry.defined
}

// IDs returns the claimed schema IDs in first-claim order.
func (r *Repository) IDs() []string {
	return append([]string(nil), r.order...)
}

// Pending returns IDs that are claimed but have no body.
func (r *Repository) Pending() []string {
	var pending []string
	for _, id := range r.order {
		if !r.entries[id].defined {
			pending = append(pending, id)
		}
	}
	return pending
}

// Definitions returns the defined bodies keyed by schema ID. A failed
// repository has no definitions.
func (r *Repository) Definitions() map[string]*Body {
	if r.err != nil {
		return nil
	}
	out := make(map[string]*Body, len(r.order))
	for _, id := range r.order {
		if entry := r.entries[id]; entry.defined {
			out[id] = entry.body
		}
	}
	return out
}

// Len returns the number of claimed slots.
func (r *Repository) Len() int {
	return len(r.order)
}

// Err returns the error that failed the build, if any.
func (r *Repository) Err() error {
	return r.err
}

func (r *Repository) fail(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// enterInline marks contract as being inlined. It reports false when the
// contract is already on the stack.
func (r *Repository) enterInline(contract DataContract) bool {
	if _, ok := r.inlining[contract]; ok {
		return false
	}
	if r.inlining == nil {
		r.inlining = map[DataContract]struct{}{}
	}
	r.inlining[contract] = struct{}{}
	return true
}

func (r *Repository) leaveInline(contract DataContract) {
	delete(r.inlining, contract)
}
