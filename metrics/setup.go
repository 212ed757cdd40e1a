package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application registry, the optional system registry and
// their optional HTTP servers.
type Metrics struct {
	// SystemServer is nil unless Config.SystemMetricsAddress is set.
	SystemServer *http.Server

	// ApplicationServer is nil unless Config.ApplicationMetricsAddress is set.
	ApplicationServer *http.Server

	// SystemRegistry holds the Go runtime, process and build info collectors.
	// It is nil when the system endpoint is disabled.
	SystemRegistry *prometheus.Registry

	// ApplicationRegistry holds every metric created through MetricsCollector.
	ApplicationRegistry *prometheus.Registry

	namespace                    string
	wrappedApplicationRegisterer prometheus.Registerer
}

// NewMetrics builds the registries described by cfg. Servers are created but
// not started; RegisterMetricsLifecycle starts them.
//
//	m := metrics.NewMetrics(metrics.Config{ServiceName: "topic-audit", ApplicationMetricsAddress: ":9091"})
//	consumed := m.CreateCounter("records_consumed_total", "Records polled", nil)
func NewMetrics(cfg Config) *Metrics {
	m := &Metrics{namespace: cfg.namespace()}

	if cfg.SystemMetricsAddress != "" {
		systemRegistry := prometheus.NewRegistry()
		wrappedSystemRegistry := prometheus.WrapRegistererWith(
			prometheus.Labels{"service": cfg.ServiceName},
			systemRegistry,
		)
		wrappedSystemRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)

		m.SystemRegistry = systemRegistry
		m.SystemServer = &http.Server{
			Addr:    cfg.SystemMetricsAddress,
			Handler: promhttp.HandlerFor(systemRegistry, promhttp.HandlerOpts{}),
		}
	}

	applicationRegistry := prometheus.NewRegistry()
	m.ApplicationRegistry = applicationRegistry
	m.wrappedApplicationRegisterer = prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		applicationRegistry,
	)

	if cfg.ApplicationMetricsAddress != "" {
		m.ApplicationServer = &http.Server{
			Addr:    cfg.ApplicationMetricsAddress,
			Handler: promhttp.HandlerFor(applicationRegistry, promhttp.HandlerOpts{}),
		}
	}

	return m
}
