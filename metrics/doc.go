// Package metrics exposes Prometheus metrics for a topic-audit run.
//
// The audit runner records per-table message and operation counters, the
// total number of consumed records and the number of assigned partitions;
// OperationObserver turns kafka and schema registry operation events into a
// duration histogram. Everything lives in process memory for the duration of
// one run. Set ApplicationMetricsAddress (and optionally SystemMetricsAddress)
// to scrape a long run while it is in progress.
//
// # Architecture
//
//   - MetricsCollector interface: CreateCounter, CreateGauge, CreateHistogram
//   - Metrics struct: the registries, the optional scrape servers and the
//     collector implementation
//   - Counter, Gauge, Histogram: thin wrappers over the Prometheus vectors
//   - OperationObserver: an observability.Observer backed by the collector
//   - FX module provides *Metrics, MetricsCollector and observability.Observer
//
// Two registries are kept apart. The application registry holds the audit
// metrics; the system registry holds the Go runtime, process and build info
// collectors and is only populated when its endpoint is configured.
//
// # Naming
//
// Every application metric is prefixed with the namespace ("topic_audit"
// unless Config.Namespace says otherwise) and carries a constant "service"
// label with Config.ServiceName:
//
//	m := metrics.NewMetrics(metrics.Config{ServiceName: "topic-audit"})
//	messages := m.CreateCounter("table_messages_total", "Records accepted per table", []string{"table"})
//	messages.WithLabelValues("claim").Inc()
//	// topic_audit_table_messages_total{service="topic-audit",table="claim"} 1
//
// Registering the same name twice panics, as with prometheus.MustRegister.
//
// # Labels
//
// WithLabelValues binds label values in declaration order and may be called
// in steps. The series is resolved when the value changes:
//
//	operations := m.CreateCounter("table_operations_total", "Operations per table", []string{"table", "operation"})
//	claim := operations.WithLabelValues("claim")
//	claim.WithLabelValues("insert").Inc()
//	claim.WithLabelValues("update").Add(2)
//
// Metrics created without labels are used directly:
//
//	consumed := m.CreateCounter("records_consumed_total", "Records polled", nil)
//	consumed.Add(float64(len(records)))
//
// # Operation Metrics
//
// OperationObserver registers
// topic_audit_operation_duration_seconds{component,operation,status} and
// topic_audit_operation_errors_total{component,operation}. Attach it to the
// clients that report operations:
//
//	observer := metrics.NewOperationObserver(m)
//	client = client.WithObserver(observer)
//	registry = registry.WithObserver(observer)
//
// # FX Module Integration
//
//	app := fx.New(
//		metrics.FXModule,
//		fx.Supply(metrics.Config{
//			ServiceName:               "topic-audit",
//			ApplicationMetricsAddress: ":9091",
//		}),
//	)
//
// The lifecycle starts the configured scrape servers on start and shuts them
// down on stop. A run that configures no address binds no port.
package metrics
