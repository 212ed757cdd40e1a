package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"

	"github.com/aalemi-dev/topic-audit/observability"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// KafkaClient consumes one topic as a member of a consumer group.
//
// Partitions are read by one fetcher goroutine each, started per group
// generation; the fetchers only perform I/O and hand messages to Poll.
//
// KafkaClient implements the Client interface.
type KafkaClient struct {
	// cfg stores the configuration for this Kafka client
	cfg Config

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// logger provides optional logging for lifecycle and background operations
	logger Logger

	dialer *kafka.Dialer

	// seams replaced in unit tests
	newGroup     func(topic string) (consumerGroup, error)
	newReader    func(tp TopicPartition) partitionReader
	lookupOffset func(ctx context.Context, tp TopicPartition, millis int64) (int64, error)

	topic    string
	listener RebalanceListener
	group    consumerGroup
	current  *generationState

	// assigning and pendingSeeks are only non-nil while the assignment
	// callback runs.
	assigning    map[TopicPartition]struct{}
	pendingSeeks map[TopicPartition]int64

	// mu guards closed
	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// NewClient creates a KafkaClient with the provided configuration.
// No connection is opened until Subscribe or OffsetsForTimes is called.
//
// Example:
//
//	client, err := kafka.NewClient(kafka.Config{Brokers: []string{"localhost:9092"}})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
func NewClient(cfg Config) (*KafkaClient, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}

	// Apply defaults
	if cfg.GroupID == "" {
		cfg.GroupID = DefaultGroupIDPrefix + uuid.NewString()
	}
	if cfg.MinBytes == 0 {
		cfg.MinBytes = DefaultMinBytes
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	if cfg.StartOffset == 0 {
		cfg.StartOffset = DefaultStartOffset
	}
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = DefaultSessionTimeout
	}
	if cfg.RebalanceTimeout == 0 {
		cfg.RebalanceTimeout = DefaultRebalanceTimeout
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.MaxPollRecords <= 0 {
		cfg.MaxPollRecords = DefaultMaxPollRecords
	}

	dialer, err := createDialer(cfg)
	if err != nil {
		return nil, err
	}

	k := &KafkaClient{
		cfg:    cfg,
		dialer: dialer,
	}
	k.newGroup = k.createConsumerGroup
	k.newReader = k.createPartitionReader
	k.lookupOffset = k.readOffsetForTime

	return k, nil
}

// WithObserver attaches an observer to the Kafka client for tracking operations.
// This method uses the builder pattern and returns the client for method chaining.
//
// When using FX, use NewClientWithDI instead, which injects the observer.
func (k *KafkaClient) WithObserver(observer observability.Observer) *KafkaClient {
	k.observer = observer
	return k
}

// WithLogger attaches a logger to the Kafka client for lifecycle and
// rebalance logging. This method uses the builder pattern and returns the
// client for method chaining.
func (k *KafkaClient) WithLogger(logger Logger) *KafkaClient {
	k.logger = logger
	return k
}

// GroupID returns the consumer group joined on Subscribe.
func (k *KafkaClient) GroupID() string {
	return k.cfg.GroupID
}

// logInfo logs an informational message using the configured logger if available.
func (k *KafkaClient) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if k.logger != nil {
		k.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

// logWarn logs a warning message using the configured logger if available.
func (k *KafkaClient) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if k.logger != nil {
		k.logger.WarnWithContext(ctx, msg, err, fields)
	}
}

// logError logs an error message using the configured logger if available.
// It is only used for errors raised inside kafka-go background goroutines.
func (k *KafkaClient) logError(ctx context.Context, msg string, fields map[string]interface{}) {
	if k.logger != nil {
		k.logger.ErrorWithContext(ctx, msg, nil, fields)
	}
}

// createErrorLogger creates a Kafka error logger from the client's logger
func createErrorLogger(client *KafkaClient) kafka.LoggerFunc {
	return kafka.LoggerFunc(func(msg string, args ...interface{}) {
		formattedMsg := msg
		if len(args) > 0 {
			formattedMsg = fmt.Sprintf(msg, args...)
		}
		client.logError(context.Background(), "Kafka internal error", map[string]interface{}{
			"error": formattedMsg,
		})
	})
}

func (k *KafkaClient) createConsumerGroup(topic string) (consumerGroup, error) {
	group, err := kafka.NewConsumerGroup(kafka.ConsumerGroupConfig{
		ID:                k.cfg.GroupID,
		Brokers:           k.cfg.Brokers,
		Dialer:            k.dialer,
		Topics:            []string{topic},
		StartOffset:       k.cfg.StartOffset,
		SessionTimeout:    k.cfg.SessionTimeout,
		RebalanceTimeout:  k.cfg.RebalanceTimeout,
		HeartbeatInterval: k.cfg.HeartbeatInterval,
		ErrorLogger:       createErrorLogger(k),
	})
	if err != nil {
		return nil, err
	}
	return kafkaConsumerGroup{group: group}, nil
}

func (k *KafkaClient) createPartitionReader(tp TopicPartition) partitionReader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     k.cfg.Brokers,
		Topic:       tp.Topic,
		Partition:   tp.Partition,
		Dialer:      k.dialer,
		MinBytes:    k.cfg.MinBytes,
		MaxBytes:    k.cfg.MaxBytes,
		MaxWait:     k.cfg.MaxWait,
		ErrorLogger: createErrorLogger(k),
	})
}

// createDialer builds the dialer shared by the group, the fetchers and the offset lookups.
func createDialer(cfg Config) (*kafka.Dialer, error) {
	dialer := &kafka.Dialer{
		ClientID:  cfg.ClientID,
		Timeout:   DefaultSessionTimeout,
		DualStack: true,
	}

	if cfg.TLS.Enabled {
		tlsConfig, err := createTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		dialer.TLS = tlsConfig
	}

	if cfg.SASL.Enabled {
		mechanism, err := createSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
		dialer.SASLMechanism = mechanism
	}

	return dialer, nil
}

// createTLSConfig creates a TLS configuration from the provided config
func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	// Load CA certificate
	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	// Load client certificate
	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// createSASLMechanism creates a SASL mechanism from the provided config
func createSASLMechanism(cfg SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", cfg.Mechanism)
	}
}
