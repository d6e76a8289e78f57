package activity

import (
	"context"
	"strings"
)

// DefaultChannel is stamped on events that do not name a channel.
const DefaultChannel = "schemagen"

// Config controls emission.
type Config struct {
	Enabled bool
	Channel string
	// Verbs limits emission to matching verbs. An entry ending in "." matches
	// every verb under that prefix, for example "schemagen.schema.". Empty
	// means every verb.
	Verbs []string
}

// Emitter stamps defaults onto events and forwards them to hooks. A nil
// Emitter is valid and emits nothing.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
	verbs   []string
}

// NewEmitter builds an emitter. It is disabled unless cfg.Enabled is set and
// at least one non-nil hook is given.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	e := &Emitter{
		hooks:   hooks.withoutNil(),
		channel: strings.TrimSpace(cfg.Channel),
	}
	if e.channel == "" {
		e.channel = DefaultChannel
	}
	for _, verb := range cfg.Verbs {
		if verb = strings.TrimSpace(verb); verb != "" {
			e.verbs = append(e.verbs, verb)
		}
	}
	e.enabled = cfg.Enabled && e.hooks.Enabled()
	return e
}

// Enabled reports whether Emit can reach any hook.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Accepts reports whether the verb filter lets event through.
func (e *Emitter) Accepts(event Event) bool {
	if !e.Enabled() {
		return false
	}
	if len(e.verbs) == 0 {
		return true
	}
	event.Verb = strings.TrimSpace(event.Verb)
	for _, pattern := range e.verbs {
		if event.MatchesVerb(pattern) {
			return true
		}
	}
	return false
}

// Emit forwards event to every hook when the filter accepts it.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Accepts(event) {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	return e.hooks.Notify(ctx, event)
}
