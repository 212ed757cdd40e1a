package tracer

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides *TracerClient and the Tracer interface from a Config in
// the container and shuts the provider down, flushing pending spans, when the
// application stops.
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
		fx.Annotate(
			func(t *TracerClient) Tracer { return t },
			fx.As(new(Tracer)),
		),
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle shuts the tracer provider down on stop.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *TracerClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if tracer.tracer == nil {
				return nil
			}
			return tracer.tracer.Shutdown(ctx)
		},
	})
}
