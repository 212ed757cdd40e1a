package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"
)

// FXModule provides *LoggerClient and the Logger interface from a Config
// found in the container, and flushes the logger on shutdown.
//
//	app := fx.New(
//	    fx.Supply(logger.Config{Level: logger.Info, ServiceName: "topic-audit"}),
//	    logger.FXModule,
//	    fx.WithLogger(logger.NewFxEventLogger),
//	)
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
		fx.Annotate(
			func(l *LoggerClient) Logger { return l },
			fx.As(new(Logger)),
		),
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle syncs the Zap logger when the application stops.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *LoggerClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync on stderr returns EINVAL/ENOTTY on some platforms.
			_ = client.Zap.Sync()
			return nil
		},
	})
}

// NewFxEventLogger routes fx's own lifecycle events through the client at
// debug level so they stay out of the audit summary.
func NewFxEventLogger(client *LoggerClient) fxevent.Logger {
	l := &fxevent.ZapLogger{Logger: client.Zap}
	l.UseLogLevel(zapcore.DebugLevel)
	return l
}
