package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aalemi-dev/topic-audit/audit"
	"github.com/aalemi-dev/topic-audit/kafka"
	"github.com/aalemi-dev/topic-audit/logger"
	"github.com/aalemi-dev/topic-audit/metrics"
	"github.com/aalemi-dev/topic-audit/schema_registry"
	"github.com/aalemi-dev/topic-audit/tracer"
)

const (
	// DefaultServiceName names the service in logs, spans and metrics.
	DefaultServiceName = "topic-audit"

	// EnvPrefix prefixes every environment variable, e.g. TOPIC_AUDIT_KAFKA_BROKERS.
	EnvPrefix = "TOPIC_AUDIT"

	configName = "topic-audit"

	// StartOffsetLatest and StartOffsetEarliest are the values of kafka.startOffset.
	StartOffsetLatest   = "latest"
	StartOffsetEarliest = "earliest"
)

var (
	// ErrMissingBrokers is returned by Validate when no broker is configured
	ErrMissingBrokers = errors.New("kafka.brokers is required")

	// ErrMissingSchemaRegistry is returned by Validate when no registry URL is configured
	ErrMissingSchemaRegistry = errors.New("schemaRegistry.url is required")

	// ErrInvalidStartOffset is returned by Validate for a kafka.startOffset other than
	// "latest" or "earliest"
	ErrInvalidStartOffset = errors.New("kafka.startOffset must be latest or earliest")
)

// Config is the complete configuration of a run.
type Config struct {
	ServiceName    string                `mapstructure:"serviceName"`
	Environment    string                `mapstructure:"environment"`
	Audit          AuditSection          `mapstructure:"audit"`
	Kafka          KafkaSection          `mapstructure:"kafka"`
	SchemaRegistry SchemaRegistrySection `mapstructure:"schemaRegistry"`
	Log            LogSection            `mapstructure:"log"`
	Tracing        TracingSection        `mapstructure:"tracing"`
	Metrics        MetricsSection        `mapstructure:"metrics"`
}

type AuditSection struct {
	Topic string `mapstructure:"topic"`
	Days  int    `mapstructure:"days"`

	// Timeout is the poll timeout in seconds.
	Timeout      int      `mapstructure:"timeout"`
	LogValues    bool     `mapstructure:"log"`
	Tables       []string `mapstructure:"tables"`
	Sources      []string `mapstructure:"sources"`
	ChangeData   bool     `mapstructure:"cda"`
	PrintSchemas bool     `mapstructure:"printSchemas"`
}

type KafkaSection struct {
	Brokers        []string    `mapstructure:"brokers"`
	GroupID        string      `mapstructure:"groupID"`
	ClientID       string      `mapstructure:"clientID"`
	MaxPollRecords int         `mapstructure:"maxPollRecords"`
	StartOffset    string      `mapstructure:"startOffset"`
	TLS            TLSSection  `mapstructure:"tls"`
	SASL           SASLSection `mapstructure:"sasl"`
}

type TLSSection struct {
	Enabled            bool   `mapstructure:"enabled"`
	CAFile             string `mapstructure:"caFile"`
	CertFile           string `mapstructure:"certFile"`
	KeyFile            string `mapstructure:"keyFile"`
	InsecureSkipVerify bool   `mapstructure:"insecureSkipVerify"`
}

type SASLSection struct {
	Enabled   bool   `mapstructure:"enabled"`
	Mechanism string `mapstructure:"mechanism"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"` //nolint:gosec
}

type SchemaRegistrySection struct {
	URL      string        `mapstructure:"url"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"` //nolint:gosec
	Timeout  time.Duration `mapstructure:"timeout"`
}

type LogSection struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type TracingSection struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

type MetricsSection struct {
	Address       string `mapstructure:"address"`
	SystemAddress string `mapstructure:"systemAddress"`
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"topic":               "audit.topic",
	"days":                "audit.days",
	"timeout":             "audit.timeout",
	"log":                 "audit.log",
	"tables":              "audit.tables",
	"sources":             "audit.sources",
	"cda":                 "audit.cda",
	"print-schemas":       "audit.printSchemas",
	"brokers":             "kafka.brokers",
	"group-id":            "kafka.groupID",
	"schema-registry-url": "schemaRegistry.url",
	"log-level":           "log.level",
	"metrics-address":     "metrics.address",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serviceName", DefaultServiceName)
	v.SetDefault("environment", "")

	v.SetDefault("audit.topic", "")
	v.SetDefault("audit.days", 0)
	v.SetDefault("audit.timeout", int(audit.DefaultPollTimeout/time.Second))
	v.SetDefault("audit.log", false)
	v.SetDefault("audit.tables", []string{})
	v.SetDefault("audit.sources", []string{})
	v.SetDefault("audit.cda", false)
	v.SetDefault("audit.printSchemas", false)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.groupID", "")
	v.SetDefault("kafka.clientID", DefaultServiceName)
	v.SetDefault("kafka.maxPollRecords", kafka.DefaultMaxPollRecords)
	v.SetDefault("kafka.startOffset", StartOffsetLatest)
	v.SetDefault("kafka.tls.enabled", false)
	v.SetDefault("kafka.tls.caFile", "")
	v.SetDefault("kafka.tls.certFile", "")
	v.SetDefault("kafka.tls.keyFile", "")
	v.SetDefault("kafka.tls.insecureSkipVerify", false)
	v.SetDefault("kafka.sasl.enabled", false)
	v.SetDefault("kafka.sasl.mechanism", "PLAIN")
	v.SetDefault("kafka.sasl.username", "")
	v.SetDefault("kafka.sasl.password", "")

	v.SetDefault("schemaRegistry.url", "http://localhost:8081")
	v.SetDefault("schemaRegistry.username", "")
	v.SetDefault("schemaRegistry.password", "")
	v.SetDefault("schemaRegistry.timeout", schema_registry.DefaultTimeout)

	v.SetDefault("log.level", logger.Info)
	v.SetDefault("log.encoding", logger.EncodingConsole)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "")

	v.SetDefault("metrics.address", "")
	v.SetDefault("metrics.systemAddress", "")
}

// Load reads the configuration from, in increasing precedence: defaults, the
// config file, TOPIC_AUDIT_* environment variables and the flags in flags
// that were set explicitly. With an empty cfgFile, topic-audit.yaml is looked
// up in $HOME/.config and the working directory; a missing file is not an
// error. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("unable to bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Audit.Tables = splitList(cfg.Audit.Tables)
	cfg.Audit.Sources = splitList(cfg.Audit.Sources)
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)

	return &cfg, nil
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	if err := c.AuditConfig().Validate(); err != nil {
		return err
	}
	if len(c.Kafka.Brokers) == 0 {
		return ErrMissingBrokers
	}
	if c.Kafka.StartOffset != StartOffsetLatest && c.Kafka.StartOffset != StartOffsetEarliest {
		return fmt.Errorf("%w: %q", ErrInvalidStartOffset, c.Kafka.StartOffset)
	}
	if c.SchemaRegistry.URL == "" {
		return ErrMissingSchemaRegistry
	}
	return nil
}

// AuditConfig returns the run configuration.
func (c *Config) AuditConfig() audit.Config {
	return audit.Config{
		Topic:       c.Audit.Topic,
		DayOffset:   c.Audit.Days,
		PollTimeout: time.Duration(c.Audit.Timeout) * time.Second,
		LogValues:   c.Audit.LogValues,
		Tables:      c.Audit.Tables,
		Sources:     c.Audit.Sources,
		ChangeData:  c.Audit.ChangeData,
	}
}

// KafkaConfig returns the consumer configuration. An empty group id is left
// for kafka.NewClient to generate.
func (c *Config) KafkaConfig() kafka.Config {
	return kafka.Config{
		Brokers:        c.Kafka.Brokers,
		GroupID:        c.Kafka.GroupID,
		ClientID:       c.Kafka.ClientID,
		MaxPollRecords: c.Kafka.MaxPollRecords,
		StartOffset:    c.startOffset(),
		TLS: kafka.TLSConfig{
			Enabled:            c.Kafka.TLS.Enabled,
			CACertPath:         c.Kafka.TLS.CAFile,
			ClientCertPath:     c.Kafka.TLS.CertFile,
			ClientKeyPath:      c.Kafka.TLS.KeyFile,
			InsecureSkipVerify: c.Kafka.TLS.InsecureSkipVerify,
		},
		SASL: kafka.SASLConfig{
			Enabled:   c.Kafka.SASL.Enabled,
			Mechanism: c.Kafka.SASL.Mechanism,
			Username:  c.Kafka.SASL.Username,
			Password:  c.Kafka.SASL.Password,
		},
	}
}

// startOffset maps kafka.startOffset onto the kafka-go offset constants.
func (c *Config) startOffset() int64 {
	if c.Kafka.StartOffset == StartOffsetEarliest {
		return kafka.FirstOffset
	}
	return kafka.LastOffset
}

// SchemaRegistryConfig returns the registry client configuration.
func (c *Config) SchemaRegistryConfig() schema_registry.Config {
	return schema_registry.Config{
		URL:      c.SchemaRegistry.URL,
		Username: c.SchemaRegistry.Username,
		Password: c.SchemaRegistry.Password,
		Timeout:  c.SchemaRegistry.Timeout,
	}
}

// LoggerConfig returns the logger configuration.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:         c.Log.Level,
		Encoding:      c.Log.Encoding,
		ServiceName:   c.ServiceName,
		EnableTracing: c.Tracing.Enabled,
	}
}

// TracerConfig returns the tracer configuration.
func (c *Config) TracerConfig() tracer.Config {
	return tracer.Config{
		ServiceName:  c.ServiceName,
		AppEnv:       c.Environment,
		EnableExport: c.Tracing.Enabled,
		Endpoint:     c.Tracing.Endpoint,
	}
}

// MetricsConfig returns the metrics configuration.
func (c *Config) MetricsConfig() metrics.Config {
	return metrics.Config{
		ServiceName:               c.ServiceName,
		ApplicationMetricsAddress: c.Metrics.Address,
		SystemMetricsAddress:      c.Metrics.SystemAddress,
	}
}

// splitList flattens comma separated entries and drops blanks, so
// "a,b" from the environment and ["a", "b"] from a file read the same.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
