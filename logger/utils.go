package logger

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// extractTracingFields returns trace_id and span_id for the recording span in
// ctx, or nil when tracing is disabled or there is no valid span.
func (l *LoggerClient) extractTracingFields(ctx context.Context) []zap.Field {
	if !l.tracingEnabled || ctx == nil {
		return nil
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return nil
	}

	spanContext := span.SpanContext()
	if !spanContext.IsValid() {
		return nil
	}

	return []zap.Field{
		zap.String("trace_id", spanContext.TraceID().String()),
		zap.String("span_id", spanContext.SpanID().String()),
	}
}

// convertToZapFields turns the error and field maps into zap fields. Keys of
// each map are emitted in sorted order so console output is stable; a key
// repeated in a later map is emitted again and wins in JSON decoders.
func (l *LoggerClient) convertToZapFields(err error, fields ...map[string]interface{}) []zap.Field {
	var zapFields []zap.Field
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}

	for _, fieldMap := range fields {
		keys := make([]string, 0, len(fieldMap))
		for key := range fieldMap {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			zapFields = append(zapFields, zap.Any(key, fieldMap[key]))
		}
	}
	return zapFields
}

func (l *LoggerClient) contextFields(ctx context.Context, err error, fields ...map[string]interface{}) []zap.Field {
	return append(l.convertToZapFields(err, fields...), l.extractTracingFields(ctx)...)
}

// Info logs an informational message with an optional error and fields.
//
//	log.Info("partition assigned", nil, map[string]interface{}{"partition": 3})
func (l *LoggerClient) Info(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Info(msg, l.convertToZapFields(err, fields...)...)
}

// Debug logs a debug-level message.
func (l *LoggerClient) Debug(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Debug(msg, l.convertToZapFields(err, fields...)...)
}

// Warn logs a warning.
func (l *LoggerClient) Warn(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Warn(msg, l.convertToZapFields(err, fields...)...)
}

// Error logs an error message including err.
//
//	if err := client.CommitSync(ctx); err != nil {
//	    log.Error("commit failed", err, map[string]interface{}{"topic": topic})
//	}
func (l *LoggerClient) Error(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Error(msg, l.convertToZapFields(err, fields...)...)
}

// Fatal logs the message and calls os.Exit(1).
func (l *LoggerClient) Fatal(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Fatal(msg, l.convertToZapFields(err, fields...)...)
}

// InfoWithContext is Info plus trace correlation fields from ctx.
func (l *LoggerClient) InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Info(msg, l.contextFields(ctx, err, fields...)...)
}

// DebugWithContext is Debug plus trace correlation fields from ctx.
func (l *LoggerClient) DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Debug(msg, l.contextFields(ctx, err, fields...)...)
}

// WarnWithContext is Warn plus trace correlation fields from ctx.
func (l *LoggerClient) WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Warn(msg, l.contextFields(ctx, err, fields...)...)
}

// ErrorWithContext is Error plus trace correlation fields from ctx.
func (l *LoggerClient) ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Error(msg, l.contextFields(ctx, err, fields...)...)
}

// FatalWithContext is Fatal plus trace correlation fields from ctx.
func (l *LoggerClient) FatalWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Fatal(msg, l.contextFields(ctx, err, fields...)...)
}

// NewObserved wraps an arbitrary zap logger, typically one built on
// zaptest/observer in tests.
func NewObserved(z *zap.Logger, tracingEnabled bool) *LoggerClient {
	return &LoggerClient{Zap: z, tracingEnabled: tracingEnabled}
}
