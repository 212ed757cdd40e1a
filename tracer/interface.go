package tracer

import (
	"context"
)

// Tracer creates spans. It is implemented by *TracerClient.
type Tracer interface {
	// StartSpan starts a span as a child of the span in ctx, if any. Callers
	// must End the returned span.
	StartSpan(ctx context.Context, name string) (context.Context, Span)

	// SetCarrierOnContext continues a trace whose W3C trace context was
	// propagated in carrier, for example in Kafka record headers.
	SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context
}

// Span is the subset of an OpenTelemetry span used by topic-audit.
type Span interface {
	End()

	// SetAttributes accepts string, int, int64, float64 and bool values;
	// anything else is recorded with fmt.Sprint.
	SetAttributes(attrs map[string]interface{})

	// RecordError records err and marks the span as failed.
	RecordError(err error)
}
