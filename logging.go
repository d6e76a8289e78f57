package schemagen

import "github.com/go-logr/logr"

// LogAction names a step of schema generation.
type LogAction string

const (
	LogClaim    LogAction = "claim"
	LogDefine   LogAction = "define"
	LogConflict LogAction = "conflict"
	LogFallback LogAction = "fallback"
	LogMapping  LogAction = "mapping"
)

// LogEvent describes a generation step for logging.
type LogEvent struct {
	Action   LogAction
	SchemaID string
	Identity Identity
	Kind     Kind
	Err      error
}

// Logger records generation events.
type Logger interface {
	LogSchema(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogSchema implements Logger.
func (f LoggerFunc) LogSchema(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogSchema(LogEvent) {}

type logrLogger struct {
	log logr.Logger
}

// NewLogrLogger forwards generation events to a logr.Logger. Conflicts are
// logged as errors, fallbacks at V(0), everything else at V(1).
func NewLogrLogger(log logr.Logger) Logger {
	return logrLogger{log: log.WithName("schemagen")}
}

func (l logrLogger) LogSchema(event LogEvent) {
	kv := []any{
		"action", string(event.Action),
		"identity", event.Identity.String(),
		"kind", event.Kind.String(),
	}
	if event.SchemaID != "" {
		kv = append(kv, "schemaID", event.SchemaID)
	}
	switch event.Action {
	case LogConflict:
		l.log.Error(event.Err, "schema id conflict", kv...)
	case LogFallback:
		l.log.Info("unsupported contract, using open schema", kv...)
	default:
		l.log.V(1).Info("schema "+string(event.Action), kv...)
	}
}

// WithLogger attaches a logger to the generator. A nil logger disables
// logging.
func WithLogger(logger Logger) Option {
	return func(cfg *generatorConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}
