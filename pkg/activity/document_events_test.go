package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schemagen "github.com/goliatone/go-schemagen"
)

func TestBuildDocumentBuiltEvent(t *testing.T) {
	event := BuildDocumentBuiltEvent(DocumentEventInput{
		ActorID:        " actor ",
		DocumentID:     "doc-1",
		Title:          "Pets",
		Version:        "1.0.0",
		OpenAPIVersion: "3.0.3",
		Schemas:        []string{"Pet", "Owner"},
		Operations:     2,
		Metadata:       map[string]any{"source": "cli"},
	})

	assert.Equal(t, VerbDocumentBuilt, event.Verb)
	assert.Equal(t, ObjectTypeDocument, event.ObjectType)
	assert.Equal(t, "doc-1", event.ObjectID)
	assert.Equal(t, "actor", event.ActorID)
	assert.Equal(t, map[string]any{
		"source":          "cli",
		"title":           "Pets",
		"version":         "1.0.0",
		"openapi":         "3.0.3",
		"schema_count":    2,
		"schemas":         []string{"Pet", "Owner"},
		"operation_count": 2,
	}, event.Metadata)
}

func TestBuildDocumentFailedEventFallsBackToTitle(t *testing.T) {
	event := BuildDocumentFailedEvent(DocumentEventInput{
		Title: "Pets",
		Err:   errors.New("schema id conflict"),
	})

	assert.Equal(t, VerbDocumentFailed, event.Verb)
	assert.Equal(t, "Pets", event.ObjectID)
	assert.Equal(t, "schema id conflict", event.Metadata["error"])

	anonymous := BuildDocumentFailedEvent(DocumentEventInput{})
	assert.Equal(t, ObjectTypeDocument, anonymous.ObjectID)
}

func TestSchemaLoggerForwardsConflicts(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true})
	var seen []schemagen.LogAction
	next := schemagen.LoggerFunc(func(event schemagen.LogEvent) {
		seen = append(seen, event.Action)
	})

	logger := SchemaLogger(context.Background(), emitter, "doc-1", next)
	logger.LogSchema(schemagen.LogEvent{Action: schemagen.LogClaim, SchemaID: "Pet"})
	logger.LogSchema(schemagen.LogEvent{
		Action:   schemagen.LogConflict,
		SchemaID: "Pet",
		Identity: schemagen.NewIdentity("example.com/b", "Pet"),
		Kind:     schemagen.KindObject,
		Err:      errors.New("conflict"),
	})

	assert.Equal(t, []schemagen.LogAction{schemagen.LogClaim, schemagen.LogConflict}, seen)
	require.Len(t, capture.Events, 1)
	event := capture.Events[0]
	assert.Equal(t, VerbSchemaConflict, event.Verb)
	assert.Equal(t, "Pet", event.ObjectID)
	assert.Equal(t, "example.com/b.Pet", event.Metadata["incoming"])
	assert.Equal(t, "doc-1", event.Metadata["document_id"])
	assert.Equal(t, DefaultChannel, event.Channel)
}
