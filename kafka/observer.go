package kafka

import (
	"time"

	"github.com/aalemi-dev/topic-audit/observability"
)

// Operations reported to the observer.
const (
	opSubscribe       = "subscribe"
	opPoll            = "poll"
	opSeek            = "seek"
	opCommit          = "commit"
	opOffsetsForTimes = "offsets_for_times"
)

// observe reports an operation that began at start. Resource is the topic;
// subResource is the consumer group or the partition. Size counts records
// polled, offsets committed or partitions looked up.
func (k *KafkaClient) observe(operation, resource, subResource string, start time.Time, err error, size int64) {
	if k.observer == nil {
		return
	}
	k.observer.ObserveOperation(observability.OperationContext{
		Component:   "kafka",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    time.Since(start),
		Error:       err,
		Size:        size,
	})
}
