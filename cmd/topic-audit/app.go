package main

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/aalemi-dev/topic-audit/audit"
	"github.com/aalemi-dev/topic-audit/config"
	"github.com/aalemi-dev/topic-audit/kafka"
	"github.com/aalemi-dev/topic-audit/logger"
	"github.com/aalemi-dev/topic-audit/metrics"
	"github.com/aalemi-dev/topic-audit/schema_registry"
	"github.com/aalemi-dev/topic-audit/tracer"
)

// newApp wires every module of a run. The runner is populated but not
// started; run drives it between app start and stop.
func newApp(cfg *config.Config, targets ...interface{}) *fx.App {
	return fx.New(
		fx.Supply(
			cfg.LoggerConfig(),
			cfg.TracerConfig(),
			cfg.MetricsConfig(),
			cfg.KafkaConfig(),
			cfg.SchemaRegistryConfig(),
			cfg.AuditConfig(),
		),
		logger.FXModule,
		tracer.FXModule,
		metrics.FXModule,
		kafka.FXModule,
		schema_registry.FXModule,
		audit.FXModule,
		fx.Provide(
			func(l *logger.LoggerClient) kafka.Logger { return l },
			func(l *logger.LoggerClient) schema_registry.Logger { return l },
			func(l *logger.LoggerClient) metrics.Logger { return l },
			func(l *logger.LoggerClient) audit.Logger { return l },
		),
		fx.WithLogger(logger.NewFxEventLogger),
		fx.Populate(targets...),
	)
}

func run(ctx context.Context, cfg *config.Config) error {
	var (
		runner   *audit.Runner
		registry schema_registry.Registry
		log      *logger.LoggerClient
	)

	app := newApp(cfg, &runner, &registry, &log)
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	runErr := consume(ctx, cfg, runner, registry, log)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		log.Warn("Application did not stop cleanly", err)
	}
	return runErr
}

func consume(ctx context.Context, cfg *config.Config, runner *audit.Runner, registry schema_registry.Registry, log *logger.LoggerClient) error {
	if cfg.Audit.PrintSchemas {
		if err := audit.LogTopicSchemas(ctx, registry, cfg.Audit.Topic, log); err != nil {
			return err
		}
	}

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	log.InfoWithContext(ctx, "Audit complete", nil, map[string]interface{}{
		"topic":  cfg.Audit.Topic,
		"total":  report.Total,
		"tables": len(report.Tables),
	})
	return nil
}
