// Package usersink records schema build events in a go-users activity feed.
package usersink

import (
	"context"
	"fmt"
	"strings"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-schemagen/pkg/activity"
)

// Hook writes activity events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// Strict rejects events whose actor, user or tenant is not a UUID. By
	// default such identifiers are stored as uuid.Nil and kept verbatim in
	// the record data under actor_id, user_id and tenant_id.
	Strict bool
}

var _ activity.ActivityHook = Hook{}

// Notify converts event and logs it. Invalid events are skipped.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = event.Normalized()
	if !event.Valid() {
		return nil
	}
	record, err := h.Record(event)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, record)
}

// Record maps a normalized event onto an ActivityRecord.
func (h Hook) Record(event activity.Event) (usertypes.ActivityRecord, error) {
	ids := identifiers{strict: h.Strict}
	record := usertypes.ActivityRecord{
		ActorID:    ids.parse("actor_id", event.ActorID),
		UserID:     ids.parse("user_id", event.UserID),
		TenantID:   ids.parse("tenant_id", event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		OccurredAt: event.OccurredAt,
	}
	if ids.err != nil {
		return usertypes.ActivityRecord{}, fmt.Errorf("usersink: %s %s: %w", event.Verb, event.ObjectID, ids.err)
	}

	data := make(map[string]any, len(event.Metadata)+len(ids.raw))
	for key, value := range event.Metadata {
		data[key] = value
	}
	for key, value := range ids.raw {
		data[key] = value
	}
	if len(data) > 0 {
		record.Data = data
	}
	return record, nil
}

type identifiers struct {
	strict bool
	raw    map[string]string
	err    error
}

func (ids *identifiers) parse(key, value string) uuid.UUID {
	value = strings.TrimSpace(value)
	if value == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(value)
	if err == nil {
		return id
	}
	if ids.strict {
		if ids.err == nil {
			ids.err = fmt.Errorf("%s %q is not a UUID: %w", key, value, err)
		}
		return uuid.Nil
	}
	if ids.raw == nil {
		ids.raw = map[string]string{}
	}
	ids.raw[key] = value
	return uuid.Nil
}
