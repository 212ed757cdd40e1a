package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CreateCounter implements MetricsCollector.
func (m *Metrics) CreateCounter(name, help string, labels []string) Counter {
	promCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: m.namespace, Name: name, Help: help},
		labels,
	)
	m.wrappedApplicationRegisterer.MustRegister(promCounter)
	return &counter{vec: promCounter}
}

// CreateHistogram implements MetricsCollector.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) Histogram {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	promHistogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: m.namespace, Name: name, Help: help, Buckets: buckets},
		labels,
	)
	m.wrappedApplicationRegisterer.MustRegister(promHistogram)
	return &histogram{vec: promHistogram}
}

// CreateGauge implements MetricsCollector.
func (m *Metrics) CreateGauge(name, help string, labels []string) Gauge {
	promGauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: m.namespace, Name: name, Help: help},
		labels,
	)
	m.wrappedApplicationRegisterer.MustRegister(promGauge)
	return &gauge{vec: promGauge}
}
