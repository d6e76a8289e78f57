package activity

import (
	"context"
	"strings"
	"time"

	schemagen "github.com/goliatone/go-schemagen"
)

const (
	VerbDocumentBuilt  = "schemagen.document.built"
	VerbDocumentFailed = "schemagen.document.failed"
	VerbSchemaConflict = "schemagen.schema.conflict"

	ObjectTypeDocument = "schemagen.document"
	ObjectTypeSchema   = "schemagen.schema"
)

// DocumentEventInput describes one document build.
type DocumentEventInput struct {
	ActorID        string
	UserID         string
	TenantID       string
	Channel        string
	DocumentID     string
	Title          string
	Version        string
	OpenAPIVersion string
	Schemas        []string
	Operations     int
	Err            error
	Metadata       map[string]any
	OccurredAt     time.Time
}

// BuildDocumentBuiltEvent reports a document that was assembled successfully.
func BuildDocumentBuiltEvent(input DocumentEventInput) Event {
	return buildDocumentEvent(VerbDocumentBuilt, input)
}

// BuildDocumentFailedEvent reports a build that produced no document.
func BuildDocumentFailedEvent(input DocumentEventInput) Event {
	return buildDocumentEvent(VerbDocumentFailed, input)
}

func buildDocumentEvent(verb string, input DocumentEventInput) Event {
	metadata := copyMetadata(input.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	if input.Title != "" {
		metadata["title"] = input.Title
	}
	if input.Version != "" {
		metadata["version"] = input.Version
	}
	if input.OpenAPIVersion != "" {
		metadata["openapi"] = input.OpenAPIVersion
	}
	metadata["schema_count"] = len(input.Schemas)
	if len(input.Schemas) > 0 {
		metadata["schemas"] = append([]string{}, input.Schemas...)
	}
	metadata["operation_count"] = input.Operations
	if input.Err != nil {
		metadata["error"] = input.Err.Error()
	}

	objectID := strings.TrimSpace(input.DocumentID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Title)
	}
	if objectID == "" {
		objectID = ObjectTypeDocument
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeDocument,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// BuildSchemaConflictEvent reports two identities competing for one schema ID.
func BuildSchemaConflictEvent(documentID string, event schemagen.LogEvent) Event {
	metadata := map[string]any{
		"incoming": event.Identity.String(),
		"kind":     event.Kind.String(),
	}
	if documentID != "" {
		metadata["document_id"] = documentID
	}
	if event.Err != nil {
		metadata["error"] = event.Err.Error()
	}
	return Event{
		Verb:       VerbSchemaConflict,
		ObjectType: ObjectTypeSchema,
		ObjectID:   event.SchemaID,
		Metadata:   metadata,
	}
}

// SchemaLogger returns a schemagen.Logger that forwards conflicts to emitter
// and every event to next. Emission errors are dropped; the build reports
// the conflict itself.
func SchemaLogger(ctx context.Context, emitter *Emitter, documentID string, next schemagen.Logger) schemagen.Logger {
	return schemagen.LoggerFunc(func(event schemagen.LogEvent) {
		if next != nil {
			next.LogSchema(event)
		}
		if event.Action != schemagen.LogConflict {
			return
		}
		_ = emitter.Emit(ctx, BuildSchemaConflictEvent(documentID, event))
	})
}
