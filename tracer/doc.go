// Package tracer provides OpenTelemetry tracing for topic-audit.
//
// The audit runner opens one span per polled batch and, when a record carries
// W3C trace context in its headers, a child span continuing the producer's
// trace. Partition assignment gets its own span with the topic, the partition
// count and the lookback. The logger package reads the active span from the
// context to add trace_id and span_id to log entries.
//
// Export is off by default; set EnableExport (and optionally Endpoint) to ship
// spans to an OTLP/HTTP collector. Without export spans are still created, so
// log correlation works in every run.
//
// # Usage
//
//	tracerClient, err := tracer.NewClient(tracer.Config{
//		ServiceName:  "topic-audit",
//		AppEnv:       "uat",
//		EnableExport: true,
//		Endpoint:     "http://otel-collector:4318",
//	})
//	if err != nil {
//		return err
//	}
//
//	ctx, span := tracerClient.StartSpan(ctx, "audit.batch")
//	defer span.End()
//	span.SetAttributes(map[string]interface{}{
//		"topic":   "claims",
//		"records": len(records),
//	})
//
// # Continuing a Producer's Trace
//
// SetCarrierOnContext extracts the traceparent and baggage headers of a
// record into ctx. Spans started from the returned context join the
// producer's trace; a carrier without trace headers leaves ctx unchanged:
//
//	ctx = tracerClient.SetCarrierOnContext(ctx, record.Headers)
//	ctx, span := tracerClient.StartSpan(ctx, "audit.record")
//	defer span.End()
//
// # Attributes
//
// SetAttributes keeps strings, integers, floats, booleans and string slices
// as typed attributes. Durations and fmt.Stringer values are stored as their
// string form; anything else goes through fmt.Sprint.
//
// # FX Module Integration
//
// FXModule provides *TracerClient and Tracer from a Config in the container
// and shuts the provider down on stop, flushing pending spans.
package tracer
