package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Counter is a cumulative metric. WithLabelValues binds label values in
// declaration order; Inc and Add resolve the series from the bound values,
// so a counter created without labels can be used directly.
type Counter interface {
	WithLabelValues(lvs ...string) Counter
	Inc()
	Add(val float64)
}

// Gauge is a metric that can go up and down, such as the size of the
// current partition assignment.
type Gauge interface {
	WithLabelValues(lvs ...string) Gauge
	Set(val float64)
	Inc()
	Dec()
}

// Histogram samples observations into buckets.
type Histogram interface {
	WithLabelValues(lvs ...string) Observer
	Observe(val float64)
}

// Observer records a single observation.
type Observer interface {
	Observe(val float64)
}

// series holds label values bound so far. Binding copies, so a partially
// bound metric can be shared.
type series []string

func (s series) with(lvs []string) series {
	bound := make(series, 0, len(s)+len(lvs))
	return append(append(bound, s...), lvs...)
}

type counter struct {
	vec    *prometheus.CounterVec
	labels series
}

func (c *counter) WithLabelValues(lvs ...string) Counter {
	return &counter{vec: c.vec, labels: c.labels.with(lvs)}
}

func (c *counter) Inc() { c.vec.WithLabelValues(c.labels...).Inc() }

func (c *counter) Add(val float64) { c.vec.WithLabelValues(c.labels...).Add(val) }

type gauge struct {
	vec    *prometheus.GaugeVec
	labels series
}

func (g *gauge) WithLabelValues(lvs ...string) Gauge {
	return &gauge{vec: g.vec, labels: g.labels.with(lvs)}
}

func (g *gauge) Set(val float64) { g.vec.WithLabelValues(g.labels...).Set(val) }

func (g *gauge) Inc() { g.vec.WithLabelValues(g.labels...).Inc() }

func (g *gauge) Dec() { g.vec.WithLabelValues(g.labels...).Dec() }

type histogram struct {
	vec    *prometheus.HistogramVec
	labels series
}

func (h *histogram) WithLabelValues(lvs ...string) Observer {
	return &histogram{vec: h.vec, labels: h.labels.with(lvs)}
}

func (h *histogram) Observe(val float64) { h.vec.WithLabelValues(h.labels...).Observe(val) }
