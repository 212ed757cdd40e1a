package metrics

// DefaultNamespace prefixes every application metric.
const DefaultNamespace = "topic_audit"

// Config defines the Prometheus registries and their optional scrape endpoints.
//
// topic-audit is a batch job: metrics live for the duration of one run. Both
// endpoints are disabled unless an address is configured, so a run never
// binds a port by default.
type Config struct {
	// SystemMetricsAddress serves Go runtime, process and build info metrics,
	// e.g. ":9090". Empty disables the endpoint and the system collectors.
	SystemMetricsAddress string

	// ApplicationMetricsAddress serves the audit metrics, e.g. ":9091".
	// Empty disables the endpoint; the application registry still exists.
	ApplicationMetricsAddress string

	// ServiceName is added as a constant "service" label to every metric.
	ServiceName string

	// Namespace prefixes metric names. Defaults to DefaultNamespace.
	Namespace string
}

func (c Config) namespace() string {
	if c.Namespace == "" {
		return DefaultNamespace
	}
	return c.Namespace
}
