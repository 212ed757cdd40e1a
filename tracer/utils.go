package tracer

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	traceSpan "go.opentelemetry.io/otel/trace"
)

// carrierPropagator reads the W3C trace context and baggage headers that
// producers attach to records.
var carrierPropagator = propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})

type spanImpl struct {
	span traceSpan.Span
}

func (s *spanImpl) End() {
	s.span.End()
}

func (s *spanImpl) SetAttributes(attrs map[string]interface{}) {
	if len(attrs) == 0 {
		return
	}

	attributes := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		attributes = append(attributes, toAttribute(k, v))
	}
	s.span.SetAttributes(attributes...)
}

func (s *spanImpl) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// toAttribute covers the value types used on audit spans: topics and tables
// as strings, partitions and offsets as integers, filter lists as string
// slices and the lookback as a duration. Anything else is stringified.
func toAttribute(key string, v interface{}) attribute.KeyValue {
	switch val := v.(type) {
	case string:
		return attribute.String(key, val)
	case int:
		return attribute.Int(key, val)
	case int32:
		return attribute.Int(key, int(val))
	case int64:
		return attribute.Int64(key, val)
	case float64:
		return attribute.Float64(key, val)
	case bool:
		return attribute.Bool(key, val)
	case []string:
		return attribute.StringSlice(key, val)
	case time.Duration:
		return attribute.String(key, val.String())
	case fmt.Stringer:
		return attribute.String(key, val.String())
	default:
		return attribute.String(key, fmt.Sprint(val))
	}
}

// StartSpan implements Tracer.
func (t *TracerClient) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, otSpan := t.tracer.Tracer(instrumentationName).Start(ctx, name)
	return ctx, &spanImpl{span: otSpan}
}

// SetCarrierOnContext implements Tracer. The carrier is the header map of a
// consumed record; records without trace headers leave ctx unchanged.
func (t *TracerClient) SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context {
	if len(carrier) == 0 {
		return ctx
	}
	return carrierPropagator.Extract(ctx, propagation.MapCarrier(carrier))
}
