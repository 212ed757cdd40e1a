package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const instrumentationName = "github.com/aalemi-dev/topic-audit"

// TracerClient wraps an OpenTelemetry TracerProvider. It is safe for
// concurrent use and implements Tracer.
type TracerClient struct {
	tracer *trace.TracerProvider
}

// NewClient builds the tracer provider, installs it as the global provider and
// sets the W3C trace context and baggage propagators.
//
//	tracerClient, err := tracer.NewClient(tracer.Config{ServiceName: "topic-audit", AppEnv: "production"})
//	if err != nil {
//	    return err
//	}
//	ctx, span := tracerClient.StartSpan(ctx, "audit.batch")
//	defer span.End()
func NewClient(cfg Config) (*TracerClient, error) {
	return newClientWithContext(context.Background(), cfg)
}

func newClientWithContext(ctx context.Context, cfg Config) (*TracerClient, error) {
	var options []trace.TracerProviderOption

	if cfg.EnableExport {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("failed to initialize OTLP exporter: %w", err)
		}

		var clientOptions []otlptracehttp.Option
		if cfg.Endpoint != "" {
			clientOptions = append(clientOptions, otlptracehttp.WithEndpointURL(cfg.Endpoint))
		}

		exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(clientOptions...))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OTLP exporter: %w", err)
		}
		options = append(options, trace.WithBatcher(exporter))
	}

	options = append(options, trace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))

	tp := trace.NewTracerProvider(options...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return &TracerClient{tracer: tp}, nil
}
