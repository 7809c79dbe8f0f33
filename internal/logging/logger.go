package logging

import (
	"context"
	"strings"
	"time"
)

// LogLevel represents logging verbosity levels
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a verbosity name to a level. Unknown names map to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "verbose":
		return DEBUG
	case "warn", "warning", "quiet":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Field represents a structured logging field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// LogEntry is the JSON shape written by the file logger
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	TraceID   string                 `json:"traceId,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger is the logging interface used throughout the application
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithTraceID returns a logger that stamps every line with the trace ID
	WithTraceID(traceID string) Logger
	// WithContext returns a logger carrying the trace ID from ctx, if any
	WithContext(ctx context.Context) Logger

	SetLevel(level LogLevel)
	Close() error
}

type contextKey string

const traceIDKey contextKey = "traceID"

// ContextWithTraceID returns a context carrying the trace ID
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext extracts the trace ID from a context, or ""
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}

// NoOpLogger discards everything
type NoOpLogger struct{}

// NewNoOpLogger creates a logger that does nothing
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (l *NoOpLogger) Debug(msg string, fields ...Field)     {}
func (l *NoOpLogger) Info(msg string, fields ...Field)      {}
func (l *NoOpLogger) Warn(msg string, fields ...Field)      {}
func (l *NoOpLogger) Error(msg string, fields ...Field)     {}
func (l *NoOpLogger) WithTraceID(traceID string) Logger     { return l }
func (l *NoOpLogger) WithContext(ctx context.Context) Logger { return l }
func (l *NoOpLogger) SetLevel(level LogLevel)               {}
func (l *NoOpLogger) Close() error                          { return nil }
