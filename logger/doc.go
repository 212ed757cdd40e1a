// Package logger wraps go.uber.org/zap with the small structured logging API
// used throughout topic-audit.
//
// Every method takes a message, an optional error and any number of field
// maps. The ...WithContext variants additionally attach trace_id and span_id
// when tracing is enabled, which ties the per-batch log lines of the audit
// runner to their OpenTelemetry spans.
//
//	log := logger.NewLoggerClient(logger.Config{Level: logger.Info, ServiceName: "topic-audit"})
//	log.InfoWithContext(ctx, "Consumed records", nil, map[string]interface{}{"count": 42})
//
// Console encoding is the default because the end-of-run summary is meant to
// be read by people; set Encoding to "json" when logs are shipped.
package logger
