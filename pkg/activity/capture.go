package activity

import (
	"context"
	"sync"
)

// CaptureHook keeps every event it is given. Tests and dry runs use it to
// inspect what a build reported.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
	// Err is returned from every Notify call.
	Err error
}

func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	h.Events = append(h.Events, event.Normalized())
	h.mu.Unlock()
	return h.Err
}

// Verbs lists recorded verbs in arrival order.
func (h *CaptureHook) Verbs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.Events))
	for i := range h.Events {
		out[i] = h.Events[i].Verb
	}
	return out
}

// Find returns the first recorded event with verb.
func (h *CaptureHook) Find(verb string) (Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, event := range h.Events {
		if event.Verb == verb {
			return event, true
		}
	}
	return Event{}, false
}
