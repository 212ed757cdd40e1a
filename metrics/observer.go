package metrics

import (
	"github.com/aalemi-dev/topic-audit/observability"
)

// OperationObserver records infrastructure operations reported through
// observability.Observer as a duration histogram and an error counter.
type OperationObserver struct {
	durations Histogram
	failures  Counter
}

// NewOperationObserver registers the operation metrics on collector.
func NewOperationObserver(collector MetricsCollector) *OperationObserver {
	return &OperationObserver{
		durations: collector.CreateHistogram(
			"operation_duration_seconds",
			"Duration of kafka and schema registry operations",
			[]string{"component", "operation", "status"},
			[]float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30},
		),
		failures: collector.CreateCounter(
			"operation_errors_total",
			"Failed kafka and schema registry operations",
			[]string{"component", "operation"},
		),
	}
}

// ObserveOperation implements observability.Observer.
func (o *OperationObserver) ObserveOperation(ctx observability.OperationContext) {
	o.durations.WithLabelValues(ctx.Component, ctx.Operation, ctx.Status()).Observe(ctx.Duration.Seconds())
	if ctx.Error != nil {
		o.failures.WithLabelValues(ctx.Component, ctx.Operation).Inc()
	}
}
