package schemagen

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaIDConflict matches any *SchemaIDConflictError via errors.Is.
	ErrSchemaIDConflict = errors.New("schemagen: schema id conflict")
	// ErrUnclaimedSchema is returned when defining or resolving an ID nobody
	// claimed.
	ErrUnclaimedSchema = errors.New("schemagen: schema id not claimed")
	ErrNilContract     = errors.New("schemagen: contract is nil")
	ErrNilRepository   = errors.New("schemagen: repository is nil")
	ErrNoResolver      = errors.New("schemagen: contract resolver not configured")
	// ErrAnonymousCycle is returned when a contract without an identity
	// contains itself. Only named contracts can be referenced, so such a
	// graph has no finite schema.
	ErrAnonymousCycle = errors.New("schemagen: anonymous contract contains itself")
)

// SchemaIDConflictError reports two distinct identities mapped to the same
// schema ID by the naming policy.
type SchemaIDConflictError struct {
	SchemaID string
	Existing Identity
	Incoming Identity
}

func (e *SchemaIDConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("schemagen: schema id %q is claimed by %s and %s; supply a naming policy that distinguishes them",
		e.SchemaID, describeIdentity(e.Existing), describeIdentity(e.Incoming))
}

// Is lets errors.Is match ErrSchemaIDConflict.
func (e *SchemaIDConflictError) Is(target error) bool {
	return target == ErrSchemaIDConflict
}

func describeIdentity(id Identity) string {
	if id.IsZero() {
		return "<anonymous>"
	}
	return fmt.Sprintf("%q", id.String())
}

func unclaimedError(id string) error {
	return fmt.Errorf("%w: %q", ErrUnclaimedSchema, id)
}

// wrapFilterError annotates a filter failure with the schema being filtered.
func wrapFilterError(target string, index int, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("schemagen: filter %d on %s: %w", index, target, err)
}
