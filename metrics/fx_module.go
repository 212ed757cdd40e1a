package metrics

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"

	"github.com/aalemi-dev/topic-audit/observability"
)

// Logger is the logging surface used by the lifecycle hooks.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// FXModule provides *Metrics, MetricsCollector and an observability.Observer
// backed by OperationObserver, and runs the configured scrape endpoints for
// the lifetime of the application.
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		fx.Annotate(
			func(m *Metrics) MetricsCollector { return m },
			fx.As(new(MetricsCollector)),
		),
		fx.Annotate(
			func(c MetricsCollector) observability.Observer { return NewOperationObserver(c) },
			fx.As(new(observability.Observer)),
		),
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// LifecycleParams groups the dependencies of RegisterMetricsLifecycle.
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Metrics   *Metrics
	Logger    Logger `optional:"true"`
}

// RegisterMetricsLifecycle starts the configured servers on start and shuts
// them down on stop.
func RegisterMetricsLifecycle(p LifecycleParams) {
	servers := []*http.Server{p.Metrics.SystemServer, p.Metrics.ApplicationServer}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for _, server := range servers {
				if server == nil {
					continue
				}
				go func(server *http.Server) {
					logInfo(p.Logger, "Starting metrics server", map[string]interface{}{"address": server.Addr})
					if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logError(p.Logger, "Metrics server stopped", err)
					}
				}(server)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			for _, server := range servers {
				if server == nil {
					continue
				}
				if err := server.Shutdown(ctx); err != nil {
					logError(p.Logger, "Error shutting down metrics server", err)
				}
			}
			return nil
		},
	})
}

func logInfo(l Logger, msg string, fields map[string]interface{}) {
	if l != nil {
		l.Info(msg, nil, fields)
	}
}

func logError(l Logger, msg string, err error) {
	if l != nil {
		l.Error(msg, err)
	}
}
