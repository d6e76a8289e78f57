// Package activity reports schema build outcomes to pluggable sinks.
//
// Builders describe what happened as an Event and hand it to an Emitter,
// which stamps defaults, applies the configured verb filter and fans the
// event out to its Hooks. Emission is best effort: callers decide whether a
// hook failure matters.
package activity

import (
	"strings"
	"time"
)

// Event describes a schema build occurrence. IDs are strings so callers are
// not tied to a UUID type.
type Event struct {
	Verb       string
	ActorID    string
	UserID     string
	TenantID   string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Valid reports whether the event names a verb and the object it is about.
func (e Event) Valid() bool {
	return e.Verb != "" && e.ObjectType != "" && e.ObjectID != ""
}

// Normalized returns a copy with identifiers trimmed, metadata copied and
// OccurredAt defaulted to now.
func (e Event) Normalized() Event {
	for _, field := range []*string{
		&e.Verb, &e.ActorID, &e.UserID, &e.TenantID,
		&e.ObjectType, &e.ObjectID, &e.Channel,
	} {
		*field = strings.TrimSpace(*field)
	}
	e.Metadata = copyMetadata(e.Metadata)
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	return e
}

// NormalizeEvent is shorthand for event.Normalized().
func NormalizeEvent(event Event) Event {
	return event.Normalized()
}

// MatchesVerb reports whether the event verb equals pattern or, when pattern
// ends in ".", starts with it.
func (e Event) MatchesVerb(pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if strings.HasSuffix(pattern, ".") {
		return strings.HasPrefix(e.Verb, pattern)
	}
	return e.Verb == pattern
}

func copyMetadata(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
