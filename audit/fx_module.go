package audit

import (
	"go.uber.org/fx"

	"github.com/aalemi-dev/topic-audit/kafka"
	"github.com/aalemi-dev/topic-audit/metrics"
	"github.com/aalemi-dev/topic-audit/schema_registry"
	"github.com/aalemi-dev/topic-audit/tracer"
)

// FXModule provides *Runner built from the Config, kafka.Client and
// schema_registry.RecordDecoder in the container. The runner is not started
// by the module; the caller invokes Run once the application has started.
//
// Usage:
//
//	app := fx.New(
//	    kafka.FXModule,
//	    schema_registry.FXModule,
//	    audit.FXModule,
//	    fx.Supply(auditConfig, kafkaConfig, registryConfig),
//	    fx.Populate(&runner),
//	)
var FXModule = fx.Module("audit",
	fx.Provide(NewRunnerWithDI),
)

// RunnerParams groups the dependencies needed to create a Runner
type RunnerParams struct {
	fx.In

	Config  Config
	Client  kafka.Client
	Records schema_registry.RecordDecoder
	Logger  Logger                   `optional:"true"`
	Tracer  tracer.Tracer            `optional:"true"`
	Metrics metrics.MetricsCollector `optional:"true"`
}

// NewRunnerWithDI creates a Runner using dependency injection.
func NewRunnerWithDI(params RunnerParams) (*Runner, error) {
	runner, err := NewRunner(params.Config, params.Client, params.Records)
	if err != nil {
		return nil, err
	}

	if params.Logger != nil {
		runner.WithLogger(params.Logger)
	}
	if params.Tracer != nil {
		runner.WithTracer(params.Tracer)
	}
	if params.Metrics != nil {
		runner.WithMetrics(params.Metrics)
	}
	return runner, nil
}
