package logger

import (
	"context"
)

// Logger provides a high-level interface for structured logging.
// It is implemented by *LoggerClient.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})

	// Fatal logs and terminates the process.
	Fatal(msg string, err error, fields ...map[string]interface{})

	// The ...WithContext variants add trace_id and span_id when tracing is
	// enabled and ctx carries a recording span.

	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	FatalWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
