package interfaces

import "context"

// Logger is the leveled logging contract used throughout the compiler. It
// matches the surface exposed by github.com/goliatone/go-logger so hosts can
// plug that package in directly; any other backend only needs this interface.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out named loggers. Implementations may scope children
// per name or return a shared instance.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is an optional extension for loggers that support persistent
// structured fields. Providers return a new logger carrying the fields on
// every entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
