package kafka

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

// seekToTimeListener positions every assigned partition at the first record
// written at or after since.
type seekToTimeListener struct {
	client *KafkaClient
	since  time.Time
}

func (l *seekToTimeListener) OnPartitionsRevoked(context.Context, []TopicPartition) error {
	return nil
}

func (l *seekToTimeListener) OnPartitionsAssigned(ctx context.Context, partitions []TopicPartition) error {
	query := make(map[TopicPartition]int64, len(partitions))
	for _, tp := range partitions {
		query[tp] = l.since.UnixMilli()
	}
	resolved, err := l.client.OffsetsForTimes(ctx, query)
	if err != nil {
		return err
	}
	for tp, offset := range resolved {
		if err := l.client.Seek(tp, offset); err != nil {
			return err
		}
	}
	return nil
}

func produceAt(ctx context.Context, t *testing.T, brokers []string, topic string, messages ...kafka.Message) {
	t.Helper()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	defer func() {
		if err := writer.Close(); err != nil {
			t.Logf("failed to close writer: %v", err)
		}
	}()

	require.NoError(t, writer.WriteMessages(ctx, messages...))
}

// TestKafkaConsumeFromTimestamp seeks to a point in time on assignment and
// consumes until the topic goes idle.
func TestKafkaConsumeFromTimestamp(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	brokers, containerInstance := initializeKafka(ctx, t)
	defer func() {
		if err := containerInstance.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	const topic = "audit-timestamps"
	createTestTopic(t, brokers, topic, 2)

	now := time.Now()
	produceAt(ctx, t, brokers, topic,
		kafka.Message{Key: []byte("a"), Value: []byte("old-a"), Time: now.Add(-48 * time.Hour)},
		kafka.Message{Key: []byte("b"), Value: []byte("old-b"), Time: now.Add(-48 * time.Hour)},
		kafka.Message{Key: []byte("a"), Value: []byte("new-a"), Time: now.Add(-time.Minute)},
		kafka.Message{Key: []byte("b"), Value: []byte("new-b"), Time: now.Add(-time.Minute)},
		kafka.Message{Key: []byte("c"), Value: nil, Time: now},
	)

	var client *KafkaClient
	app := fx.New(
		FXModule,
		fx.Supply(Config{Brokers: brokers, MaxWait: 200 * time.Millisecond}),
		fx.Populate(&client),
		fx.NopLogger,
	)
	require.NoError(t, app.Start(ctx))
	defer func() {
		if err := app.Stop(ctx); err != nil {
			t.Logf("failed to stop app: %v", err)
		}
	}()

	listener := &seekToTimeListener{client: client, since: now.Add(-24 * time.Hour)}
	require.NoError(t, client.Subscribe(ctx, topic, listener))

	var values []string
	tombstones := 0
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		records, err := client.Poll(ctx, 10*time.Second)
		require.NoError(t, err)
		if len(records) == 0 {
			break
		}
		for _, r := range records {
			if r.IsTombstone() {
				tombstones++
				continue
			}
			values = append(values, string(r.Value))
		}
		require.NoError(t, client.CommitSync(ctx))
	}

	assert.ElementsMatch(t, []string{"new-a", "new-b"}, values)
	assert.Equal(t, 1, tombstones)

	require.NoError(t, client.Unsubscribe())
	require.NoError(t, client.Close())
}

// TestKafkaOffsetsForTimesAfterLastRecord checks that a timestamp past the
// end of a partition resolves to nothing.
func TestKafkaOffsetsForTimesAfterLastRecord(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	brokers, containerInstance := initializeKafka(ctx, t)
	defer func() {
		if err := containerInstance.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	const topic = "audit-future"
	createTestTopic(t, brokers, topic, 1)
	produceAt(ctx, t, brokers, topic, kafka.Message{Value: []byte("x"), Time: time.Now().Add(-time.Hour)})

	client, err := NewClient(Config{Brokers: brokers})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	tp := TopicPartition{Topic: topic, Partition: 0}
	resolved, err := client.OffsetsForTimes(ctx, map[TopicPartition]int64{
		tp: time.Now().Add(time.Hour).UnixMilli(),
	})
	require.NoError(t, err)
	assert.NotContains(t, resolved, tp)

	resolved, err = client.OffsetsForTimes(ctx, map[TopicPartition]int64{
		tp: time.Now().Add(-2 * time.Hour).UnixMilli(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resolved[tp])
}

func initializeKafka(ctx context.Context, t *testing.T) ([]string, testcontainers.Container) {
	t.Helper()

	hostPort, err := getFreePort()
	require.NoError(t, err)

	containerInstance, err := createKafkaContainer(ctx, hostPort)
	require.NoError(t, err)

	dialer := &net.Dialer{Timeout: 2 * time.Second}
	require.Eventually(t, func() bool {
		conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort("localhost", hostPort))
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 60*time.Second, 500*time.Millisecond, "Kafka port not ready")

	brokers := []string{fmt.Sprintf("localhost:%s", hostPort)}
	return brokers, containerInstance
}

// createTestTopic creates a test topic using kafka-go admin operations.
func createTestTopic(t *testing.T, brokers []string, topic string, partitions int) {
	t.Helper()

	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		t.Logf("Warning: Could not create admin connection: %v", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			t.Logf("failed to close admin connection: %v", err)
		}
	}()

	controller, err := conn.Controller()
	if err != nil {
		t.Logf("Warning: Could not get controller: %v", err)
		return
	}

	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		t.Logf("Warning: Could not connect to controller: %v", err)
		return
	}
	defer func() {
		if err := controllerConn.Close(); err != nil {
			t.Logf("failed to close controller connection: %v", err)
		}
	}()

	err = controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("Warning: Could not create topic (may already exist): %v", err)
	} else {
		t.Logf("Created topic: %s", topic)
	}
}

func createKafkaContainer(ctx context.Context, hostPort string) (testcontainers.Container, error) {
	portBindings := nat.PortMap{
		"9092/tcp": []nat.PortBinding{{HostPort: hostPort}},
	}

	req := testcontainers.ContainerRequest{
		Image:        "confluentinc/cp-kafka:7.5.0",
		ExposedPorts: []string{"9092/tcp"},
		Env: map[string]string{
			"KAFKA_BROKER_ID":                                "1",
			"KAFKA_LISTENER_SECURITY_PROTOCOL_MAP":           "PLAINTEXT:PLAINTEXT,PLAINTEXT_HOST:PLAINTEXT,CONTROLLER:PLAINTEXT",
			"KAFKA_ADVERTISED_LISTENERS":                     fmt.Sprintf("PLAINTEXT://localhost:29092,PLAINTEXT_HOST://localhost:%s", hostPort),
			"KAFKA_OFFSETS_TOPIC_REPLICATION_FACTOR":         "1",
			"KAFKA_GROUP_INITIAL_REBALANCE_DELAY_MS":         "0",
			"KAFKA_TRANSACTION_STATE_LOG_MIN_ISR":            "1",
			"KAFKA_TRANSACTION_STATE_LOG_REPLICATION_FACTOR": "1",
			"KAFKA_PROCESS_ROLES":                            "broker,controller",
			"KAFKA_NODE_ID":                                  "1",
			"KAFKA_CONTROLLER_QUORUM_VOTERS":                 "1@localhost:29093",
			"KAFKA_LISTENERS":                                "PLAINTEXT://0.0.0.0:29092,PLAINTEXT_HOST://0.0.0.0:9092,CONTROLLER://0.0.0.0:29093",
			"KAFKA_INTER_BROKER_LISTENER_NAME":               "PLAINTEXT",
			"KAFKA_CONTROLLER_LISTENER_NAMES":                "CONTROLLER",
			"KAFKA_LOG_DIRS":                                 "/tmp/kraft-combined-logs",
			"CLUSTER_ID":                                     "MkU3OEVBNTcwNTJENDM2Qk",
			"KAFKA_AUTO_CREATE_TOPICS_ENABLE":                "true",
		},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("9092/tcp").WithStartupTimeout(60*time.Second),
			wait.ForLog("Kafka Server started").WithStartupTimeout(60*time.Second),
		),
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err == nil {
			return c, nil
		}
		lastErr = err
		if strings.Contains(err.Error(), "docker.sock") {
			time.Sleep(time.Duration(attempt+1) * time.Second)
			continue
		}
		break
	}

	return nil, fmt.Errorf("failed to start Kafka container after 3 attempts: %w", lastErr)
}

func getFreePort() (string, error) {
	lc := &net.ListenConfig{}
	l, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer func() { _ = l.Close() }()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port), nil
}
