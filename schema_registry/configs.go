package schema_registry

import (
	"context"
	"time"
)

// Config holds configuration for schema registry client
type Config struct {
	// URL is the schema registry endpoint (e.g., "http://localhost:8081")
	URL string

	// Username for basic auth (optional)
	Username string

	// Password for basic auth (optional)
	Password string `json:"-"` //nolint:gosec

	// Timeout for HTTP requests
	// Default: 10s
	Timeout time.Duration
}

// DefaultTimeout is applied when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Logger is the subset of logger.Logger used by this package.
type Logger interface {
	// InfoWithContext logs an informational message with trace context.
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// WarnWithContext logs a warning message with trace context.
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// ErrorWithContext logs an error message with trace context.
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
