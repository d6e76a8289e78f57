package usersink_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-schemagen/pkg/activity"
	"github.com/goliatone/go-schemagen/pkg/activity/usersink"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsDocumentEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()
	documentID := uuid.New().String()

	event := activity.BuildDocumentBuiltEvent(activity.DocumentEventInput{
		ActorID:    actorID.String(),
		TenantID:   tenantID.String(),
		Channel:    "builds",
		DocumentID: documentID,
		Title:      "Pets",
		Schemas:    []string{"Pet"},
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID {
		t.Fatalf("expected actor %s got %s", actorID, record.ActorID)
	}
	if record.TenantID != tenantID {
		t.Fatalf("expected tenant %s got %s", tenantID, record.TenantID)
	}
	if record.UserID != uuid.Nil {
		t.Fatalf("expected nil user got %s", record.UserID)
	}
	if record.Verb != activity.VerbDocumentBuilt || record.ObjectType != activity.ObjectTypeDocument || record.ObjectID != documentID {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "builds" {
		t.Fatalf("expected channel builds got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["title"] != "Pets" {
		t.Fatalf("expected metadata passthrough got %v", record.Data["title"])
	}
}

func TestHookNotifyKeepsNonUUIDIdentifiers(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbDocumentBuilt,
		ActorID:    "ci-bot",
		ObjectType: activity.ObjectTypeDocument,
		ObjectID:   "1",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	record := sink.records[0]
	if record.ActorID != uuid.Nil {
		t.Fatalf("expected nil actor got %s", record.ActorID)
	}
	if record.Data["actor_id"] != "ci-bot" {
		t.Fatalf("expected raw actor id in data got %v", record.Data["actor_id"])
	}
	if record.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}

func TestHookNotifySkipsInvalidEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookStrictRejectsNonUUIDIdentifiers(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink, Strict: true}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbSchemaConflict,
		TenantID:   "acme",
		ObjectType: activity.ObjectTypeSchema,
		ObjectID:   "User",
	})
	if err == nil {
		t.Fatalf("expected strict hook to reject tenant id")
	}
	if !strings.Contains(err.Error(), `tenant_id "acme"`) {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("expected nothing logged, got %d", len(sink.records))
	}
}

func TestHookPropagatesSinkError(t *testing.T) {
	boom := errors.New("sink down")
	hook := usersink.Hook{Sink: &recordingSink{err: boom}}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbDocumentFailed,
		ObjectType: activity.ObjectTypeDocument,
		ObjectID:   "1",
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}
