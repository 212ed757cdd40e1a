package tracer

// Config defines the configuration for the OpenTelemetry tracer.
type Config struct {
	// ServiceName identifies the service on every span.
	ServiceName string

	// AppEnv sets the "deployment.environment" and "environment" resource
	// attributes, e.g. "development" or "production".
	AppEnv string

	// EnableExport configures an OTLP/HTTP exporter. When false spans are
	// still created (log correlation keeps working) but never leave the process.
	EnableExport bool

	// Endpoint overrides the collector URL, e.g. "http://otel-collector:4318".
	// When empty the exporter honours the standard OTEL_EXPORTER_OTLP_*
	// environment variables.
	Endpoint string
}
