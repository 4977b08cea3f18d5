package interfaces

import "context"

// Logger is the leveled logging contract used across bookcheck packages.
// It mirrors github.com/goliatone/go-logger so that package plugs in without
// an intermediate adapter.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider exposes named loggers, typically one child per module
// (bookcheck.lint, bookcheck.catalog, ...).
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is an optional extension for attaching persistent structured
// fields. Implementations return a new logger; the receiver is unchanged.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
