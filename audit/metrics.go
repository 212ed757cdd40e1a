package audit

import (
	"github.com/aalemi-dev/topic-audit/metrics"
	"github.com/aalemi-dev/topic-audit/tables"
)

// runMetrics mirrors the aggregator into Prometheus. A nil *runMetrics
// records nothing.
type runMetrics struct {
	messages   metrics.Counter
	operations metrics.Counter
	consumed   metrics.Counter
	assigned   metrics.Gauge
}

func newRunMetrics(collector metrics.MetricsCollector) *runMetrics {
	return &runMetrics{
		messages: collector.CreateCounter(
			"table_messages_total",
			"Records accepted per table",
			[]string{"table"},
		),
		operations: collector.CreateCounter(
			"table_operations_total",
			"Change-data operations per table",
			[]string{"table", "operation"},
		),
		consumed: collector.CreateCounter(
			"records_consumed_total",
			"Records polled, including filtered records",
			nil,
		),
		assigned: collector.CreateGauge(
			"assigned_partitions",
			"Partitions in the current assignment",
			nil,
		),
	}
}

func (m *runMetrics) message(table string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(table).Inc()
}

func (m *runMetrics) operation(table string, op tables.Operation) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(table, op.String()).Inc()
}

func (m *runMetrics) polled(n int) {
	if m == nil || n == 0 {
		return
	}
	m.consumed.Add(float64(n))
}

func (m *runMetrics) assignment(partitions int) {
	if m == nil {
		return
	}
	m.assigned.Set(float64(partitions))
}
