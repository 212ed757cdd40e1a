package kafka

import (
	"context"
	"fmt"
	"time"
)

// Client is a single-topic consumer-group client with explicit commit.
// Implementations are single-owner: Poll, Seek, CommitSync and Unsubscribe
// must be called from one goroutine. Close is idempotent.
//
// This interface is implemented by the concrete *KafkaClient type.
type Client interface {
	// Subscribe joins the consumer group for topic. The listener is invoked
	// synchronously from Poll whenever the assignment changes.
	Subscribe(ctx context.Context, topic string, listener RebalanceListener) error

	// Poll waits up to timeout for records of the current assignment.
	// An empty batch with a nil error means the stream was idle for timeout.
	Poll(ctx context.Context, timeout time.Duration) ([]Record, error)

	// Seek overrides the start offset of a partition. It is only valid from
	// inside RebalanceListener.OnPartitionsAssigned.
	Seek(tp TopicPartition, offset int64) error

	// OffsetsForTimes returns, per partition, the earliest offset whose record
	// timestamp is at or after the given epoch millis. Partitions without such
	// a record are absent from the result.
	OffsetsForTimes(ctx context.Context, query map[TopicPartition]int64) (map[TopicPartition]int64, error)

	// CommitSync commits the positions of every record returned since the last commit.
	CommitSync(ctx context.Context) error

	// Unsubscribe revokes the current assignment and leaves the group.
	Unsubscribe() error

	// Close releases every resource held by the client.
	Close() error
}

// RebalanceListener is notified about assignment changes.
type RebalanceListener interface {
	OnPartitionsRevoked(ctx context.Context, partitions []TopicPartition) error
	OnPartitionsAssigned(ctx context.Context, partitions []TopicPartition) error
}

// TopicPartition identifies one partition of a topic.
type TopicPartition struct {
	Topic     string
	Partition int
}

func (tp TopicPartition) String() string {
	return fmt.Sprintf("%s-%d", tp.Topic, tp.Partition)
}

// Record is one consumed message.
type Record struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// TopicPartition returns the partition the record was read from.
func (r Record) TopicPartition() TopicPartition {
	return TopicPartition{Topic: r.Topic, Partition: r.Partition}
}

// IsTombstone reports whether the record carries no value.
func (r Record) IsTombstone() bool {
	return len(r.Value) == 0
}
