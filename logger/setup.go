package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerClient is a wrapper around Uber's Zap logger.
//
// LoggerClient implements the Logger interface and the narrower logger
// interfaces declared by the kafka, schema_registry, rebalance and audit
// packages.
type LoggerClient struct {
	// Zap is the underlying logger, exposed for zap specific integrations
	// such as fxevent.ZapLogger.
	Zap *zap.Logger

	tracingEnabled bool
}

// NewLoggerClient builds a logger from cfg.
//
// Entries carry an ISO8601 "timestamp", a capitalised level, the caller and
// the initial fields "pid" and "service". The process is terminated with
// log.Fatal if the zap configuration cannot be built (for example an
// unwritable output path).
//
// Example:
//
//	log := logger.NewLoggerClient(logger.Config{
//	    Level:       logger.Info,
//	    ServiceName: "topic-audit",
//	})
//	log.Info("consumer subscribed", nil, map[string]interface{}{"topic": "orders"})
func NewLoggerClient(cfg Config) *LoggerClient {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(ParseLevel(cfg.Level)),
		Development:       false,
		DisableCaller:     false,
		DisableStacktrace: true,
		Sampling:          nil,
		Encoding:          cfg.encoding(),
		EncoderConfig:     encoderCfg,
		OutputPaths:       cfg.outputPaths(),
		ErrorOutputPaths:  []string{"stderr"},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": cfg.ServiceName,
		},
	}

	callerSkip := cfg.CallerSkip
	if callerSkip <= 0 {
		callerSkip = 1
	}

	logger, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(callerSkip))
	if err != nil {
		log.Fatal(err)
	}

	return &LoggerClient{
		Zap:            logger,
		tracingEnabled: cfg.EnableTracing,
	}
}

// ParseLevel maps a configured level name to a zap level. Unknown names map
// to InfoLevel.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case Debug:
		return zap.DebugLevel
	case Warning, "warn":
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
