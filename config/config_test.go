package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalemi-dev/topic-audit/audit"
	"github.com/aalemi-dev/topic-audit/kafka"
	"github.com/aalemi-dev/topic-audit/logger"
)

const sampleConfig = `
serviceName: claims-audit
environment: uat
audit:
  topic: uat.raw.cda.claims
  days: 3
  timeout: 20
  cda: true
  tables: [claim, policy]
kafka:
  brokers: ["broker-1:9093", "broker-2:9093"]
  groupID: audit-group
  tls:
    enabled: true
    caFile: /etc/kafka/ca.pem
  sasl:
    enabled: true
    mechanism: SCRAM-SHA-512
    username: audit
    password: secret
schemaRegistry:
  url: https://registry:8081
  timeout: 30s
log:
  level: debug
  encoding: json
tracing:
  enabled: true
  endpoint: http://otel:4318
metrics:
  address: ":9091"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topic-audit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("topic-audit", pflag.ContinueOnError)
	flags.StringP("topic", "t", "", "")
	flags.IntP("days", "d", 0, "")
	flags.IntP("timeout", "p", 5, "")
	flags.BoolP("log", "l", false, "")
	flags.StringSliceP("tables", "i", nil, "")
	flags.StringSliceP("sources", "s", nil, "")
	flags.BoolP("cda", "c", false, "")
	flags.Bool("print-schemas", false, "")
	flags.StringSlice("brokers", nil, "")
	flags.String("group-id", "", "")
	flags.String("schema-registry-url", "", "")
	flags.String("log-level", "", "")
	flags.String("metrics-address", "", "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultServiceName, cfg.ServiceName)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "http://localhost:8081", cfg.SchemaRegistry.URL)
	assert.Equal(t, logger.Info, cfg.Log.Level)
	assert.Empty(t, cfg.Audit.Tables)

	auditCfg := cfg.AuditConfig()
	assert.Equal(t, audit.DefaultPollTimeout, auditCfg.PollTimeout)
	assert.False(t, auditCfg.ChangeData)

	assert.Empty(t, cfg.KafkaConfig().GroupID)
	assert.Equal(t, kafka.DefaultMaxPollRecords, cfg.KafkaConfig().MaxPollRecords)
	assert.Equal(t, int64(kafka.LastOffset), cfg.KafkaConfig().StartOffset)
	assert.Empty(t, cfg.MetricsConfig().ApplicationMetricsAddress)

	assert.ErrorIs(t, cfg.Validate(), audit.ErrMissingTopic)
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig), nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	auditCfg := cfg.AuditConfig()
	assert.Equal(t, "uat.raw.cda.claims", auditCfg.Topic)
	assert.Equal(t, 3, auditCfg.DayOffset)
	assert.Equal(t, 20*time.Second, auditCfg.PollTimeout)
	assert.True(t, auditCfg.ChangeData)
	assert.Equal(t, []string{"claim", "policy"}, auditCfg.Tables)

	kafkaCfg := cfg.KafkaConfig()
	assert.Equal(t, []string{"broker-1:9093", "broker-2:9093"}, kafkaCfg.Brokers)
	assert.Equal(t, "audit-group", kafkaCfg.GroupID)
	assert.True(t, kafkaCfg.TLS.Enabled)
	assert.Equal(t, "/etc/kafka/ca.pem", kafkaCfg.TLS.CACertPath)
	assert.Equal(t, "SCRAM-SHA-512", kafkaCfg.SASL.Mechanism)
	assert.Equal(t, "secret", kafkaCfg.SASL.Password)

	registryCfg := cfg.SchemaRegistryConfig()
	assert.Equal(t, "https://registry:8081", registryCfg.URL)
	assert.Equal(t, 30*time.Second, registryCfg.Timeout)

	loggerCfg := cfg.LoggerConfig()
	assert.Equal(t, "debug", loggerCfg.Level)
	assert.Equal(t, logger.EncodingJSON, loggerCfg.Encoding)
	assert.Equal(t, "claims-audit", loggerCfg.ServiceName)
	assert.True(t, loggerCfg.EnableTracing)

	tracerCfg := cfg.TracerConfig()
	assert.True(t, tracerCfg.EnableExport)
	assert.Equal(t, "uat", tracerCfg.AppEnv)
	assert.Equal(t, "http://otel:4318", tracerCfg.Endpoint)

	assert.Equal(t, ":9091", cfg.MetricsConfig().ApplicationMetricsAddress)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("TOPIC_AUDIT_AUDIT_TOPIC", "from-env")
	t.Setenv("TOPIC_AUDIT_AUDIT_SOURCES", "CC, PC")
	t.Setenv("TOPIC_AUDIT_KAFKA_BROKERS", "env-1:9092,env-2:9092")

	cfg, err := Load(writeConfig(t, sampleConfig), nil)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Audit.Topic)
	assert.Equal(t, []string{"CC", "PC"}, cfg.Audit.Sources)
	assert.Equal(t, []string{"env-1:9092", "env-2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadFlagsOverrideEverything(t *testing.T) {
	t.Setenv("TOPIC_AUDIT_AUDIT_TOPIC", "from-env")

	flags := newFlags(t,
		"-t", "from-flag",
		"-d", "9",
		"-p", "7",
		"-l",
		"-i", "claim",
		"-i", "policy",
		"-s", "CC",
		"--group-id", "flag-group",
		"--log-level", "warning",
	)
	cfg, err := Load(writeConfig(t, sampleConfig), flags)
	require.NoError(t, err)

	auditCfg := cfg.AuditConfig()
	assert.Equal(t, "from-flag", auditCfg.Topic)
	assert.Equal(t, 9, auditCfg.DayOffset)
	assert.Equal(t, 7*time.Second, auditCfg.PollTimeout)
	assert.True(t, auditCfg.LogValues)
	assert.Equal(t, []string{"claim", "policy"}, auditCfg.Tables)
	assert.Equal(t, []string{"CC"}, auditCfg.Sources)

	// unset flags keep the file values
	assert.True(t, auditCfg.ChangeData)
	assert.Equal(t, "https://registry:8081", cfg.SchemaRegistry.URL)

	assert.Equal(t, "flag-group", cfg.Kafka.GroupID)
	assert.Equal(t, "warning", cfg.Log.Level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "error reading config file")
}

func TestValidate(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig), nil)
	require.NoError(t, err)

	cfg.SchemaRegistry.URL = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingSchemaRegistry)

	cfg.Kafka.Brokers = nil
	assert.ErrorIs(t, cfg.Validate(), ErrMissingBrokers)

	cfg.Audit.Days = -1
	assert.ErrorIs(t, cfg.Validate(), audit.ErrNegativeDayOffset)
}

func TestStartOffset(t *testing.T) {
	t.Setenv("TOPIC_AUDIT_KAFKA_STARTOFFSET", StartOffsetEarliest)

	cfg, err := Load(writeConfig(t, sampleConfig), nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, int64(kafka.FirstOffset), cfg.KafkaConfig().StartOffset)

	cfg.Kafka.StartOffset = "beginning"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidStartOffset)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a,b", " c ", ""}))
	assert.Empty(t, splitList(nil))
}
