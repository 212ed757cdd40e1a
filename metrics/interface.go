package metrics

// MetricsCollector creates metrics registered to the application registry.
// Names are prefixed with the configured namespace and every series carries
// the "service" label. It is implemented by *Metrics.
type MetricsCollector interface {
	// CreateCounter registers a counter.
	//
	//   messages := m.CreateCounter("table_messages_total", "Messages per table", []string{"table"})
	//   messages.WithLabelValues("cc_claim").Inc()
	CreateCounter(name, help string, labels []string) Counter

	// CreateHistogram registers a histogram with the given buckets
	// (prometheus.DefBuckets when nil).
	CreateHistogram(name, help string, labels []string, buckets []float64) Histogram

	// CreateGauge registers a gauge.
	CreateGauge(name, help string, labels []string) Gauge
}
