package kafka

import (
	"context"
	"time"
)

// Config defines the configuration of the consumer-group client.
// A client consumes exactly one topic, chosen at Subscribe time.
type Config struct {
	// Brokers is a list of Kafka broker addresses
	Brokers []string

	// GroupID is the consumer group joined on Subscribe.
	// Default: "topic-audit-<uuid>", a fresh group per process
	GroupID string

	// ClientID is reported to the brokers on every connection
	ClientID string

	// MinBytes is the minimum number of bytes to fetch in a single request
	// Default: 1 byte
	MinBytes int

	// MaxBytes is the maximum number of bytes to fetch in a single request
	// Default: 10MB
	MaxBytes int

	// MaxWait is the maximum amount of time to wait for MinBytes to become available
	// Default: 500ms
	MaxWait time.Duration

	// StartOffset determines where a partition starts when the group has no committed offset
	// and no seek was issued during assignment. A partition with no record at or after the
	// audit's target time gets no seek, so the default only reads records written from now on.
	// Options: FirstOffset (-2), LastOffset (-1)
	// Default: LastOffset
	StartOffset int64

	// SessionTimeout is the group session timeout
	// Default: 30s
	SessionTimeout time.Duration

	// RebalanceTimeout bounds how long the coordinator waits for members to rejoin
	// Default: 30s
	RebalanceTimeout time.Duration

	// HeartbeatInterval is how often the member heartbeats the coordinator
	// Default: 3s
	HeartbeatInterval time.Duration

	// MaxPollRecords caps the number of records returned by a single Poll
	// Default: 500
	MaxPollRecords int

	// TLS contains TLS/SSL configuration
	TLS TLSConfig

	// SASL contains SASL authentication configuration
	SASL SASLConfig
}

// Logger is the subset of logger.Logger used by the client.
type Logger interface {
	// InfoWithContext logs an informational message with trace context.
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// WarnWithContext logs a warning message with trace context.
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// ErrorWithContext logs an error message with trace context.
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// TLSConfig contains TLS/SSL configuration parameters.
type TLSConfig struct {
	// Enabled determines whether to use TLS/SSL for the connection
	Enabled bool

	// CACertPath is the file path to the CA certificate for verifying the broker
	CACertPath string

	// ClientCertPath is the file path to the client certificate
	ClientCertPath string

	// ClientKeyPath is the file path to the client certificate's private key
	ClientKeyPath string

	// InsecureSkipVerify controls whether to skip verification of the server's certificate
	// WARNING: Setting this to true is insecure and should only be used in testing
	InsecureSkipVerify bool
}

// SASLConfig contains SASL authentication configuration parameters.
type SASLConfig struct {
	// Enabled determines whether to use SASL authentication
	Enabled bool

	// Mechanism specifies the SASL mechanism to use
	// Options: "PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512"
	Mechanism string

	// Username is the SASL username
	Username string

	// Password is the SASL password
	Password string //nolint:gosec
}

// Default values for configuration
const (
	DefaultGroupIDPrefix     = "topic-audit-"
	DefaultMinBytes          = 1
	DefaultMaxBytes          = 10e6 // 10MB
	DefaultMaxWait           = 500 * time.Millisecond
	DefaultStartOffset       = LastOffset
	DefaultSessionTimeout    = 30 * time.Second
	DefaultRebalanceTimeout  = 30 * time.Second
	DefaultHeartbeatInterval = 3 * time.Second
	DefaultMaxPollRecords    = 500

	// Consumer offset modes
	FirstOffset = -2 // Start from the beginning
	LastOffset  = -1 // Start from the end
)
