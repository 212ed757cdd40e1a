package tracer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func newTestClient(t *testing.T) *TracerClient {
	t.Helper()
	client, err := NewClient(Config{ServiceName: "test", AppEnv: "test", EnableExport: false})
	require.NoError(t, err)
	return client
}

func carrierOf(ctx context.Context) map[string]string {
	carrier := propagation.MapCarrier{}
	propagation.TraceContext{}.Inject(ctx, carrier)
	return carrier
}

func TestStartSpanIsRecording(t *testing.T) {
	t.Parallel()
	client := newTestClient(t)

	ctx, span := client.StartSpan(context.Background(), "audit.batch")
	defer span.End()

	assert.True(t, trace.SpanFromContext(ctx).IsRecording())
}

func TestStartSpanChildInheritsParent(t *testing.T) {
	t.Parallel()
	client := newTestClient(t)

	parentCtx, parent := client.StartSpan(context.Background(), "audit.run")
	defer parent.End()
	childCtx, child := client.StartSpan(parentCtx, "audit.batch")
	defer child.End()

	assert.Equal(t,
		trace.SpanFromContext(parentCtx).SpanContext().TraceID(),
		trace.SpanFromContext(childCtx).SpanContext().TraceID())
}

func TestSetAttributesAllTypes(t *testing.T) {
	t.Parallel()
	client := newTestClient(t)
	_, span := client.StartSpan(context.Background(), "attrs")
	defer span.End()

	assert.NotPanics(t, func() {
		span.SetAttributes(map[string]interface{}{
			"topic":      "orders",
			"partition":  3,
			"offset":     int64(100),
			"ratio":      0.5,
			"tombstone":  true,
			"partitions": []int{1, 2},
		})
		span.SetAttributes(nil)
	})
}

func TestToAttribute(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		value interface{}
		want  attribute.KeyValue
	}{
		"topic":     {"orders", attribute.String("topic", "orders")},
		"partition": {int32(3), attribute.Int("partition", 3)},
		"offset":    {int64(100), attribute.Int64("offset", 100)},
		"tables":    {[]string{"claim", "policy"}, attribute.StringSlice("tables", []string{"claim", "policy"})},
		"lookback":  {48 * time.Hour, attribute.String("lookback", "48h0m0s")},
		"ids":       {[]int{1, 2}, attribute.String("ids", "[1 2]")},
	}
	for key, tc := range cases {
		assert.Equal(t, tc.want, toAttribute(key, tc.value), key)
	}
}

func TestRecordError(t *testing.T) {
	t.Parallel()
	client := newTestClient(t)
	_, span := client.StartSpan(context.Background(), "err")
	defer span.End()

	assert.NotPanics(t, func() {
		span.RecordError(errors.New("decode fault"))
		span.RecordError(nil)
	})
}

func TestSetCarrierOnContextContinuesTrace(t *testing.T) {
	t.Parallel()
	client := newTestClient(t)

	producerCtx, producer := client.StartSpan(context.Background(), "produce")
	defer producer.End()

	carrier := carrierOf(producerCtx)
	require.Contains(t, carrier, "traceparent")

	restored := client.SetCarrierOnContext(context.Background(), carrier)
	assert.Equal(t,
		trace.SpanFromContext(producerCtx).SpanContext().TraceID(),
		trace.SpanFromContext(restored).SpanContext().TraceID())
}

func TestSetCarrierOnContextEmptyCarrier(t *testing.T) {
	t.Parallel()
	client := newTestClient(t)
	ctx := context.Background()

	assert.Equal(t, ctx, client.SetCarrierOnContext(ctx, nil))
	assert.False(t, trace.SpanFromContext(client.SetCarrierOnContext(ctx, map[string]string{"other": "x"})).SpanContext().IsValid())
}
