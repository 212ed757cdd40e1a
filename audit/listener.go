package audit

import (
	"context"

	"github.com/aalemi-dev/topic-audit/kafka"
	"github.com/aalemi-dev/topic-audit/rebalance"
)

// assignmentListener traces each rebalance and tracks the assignment size
// around the timestamp resolver.
type assignmentListener struct {
	resolver *rebalance.TimestampOffsetResolver
	runner   *Runner
}

var _ kafka.RebalanceListener = (*assignmentListener)(nil)

func (l *assignmentListener) OnPartitionsAssigned(ctx context.Context, partitions []kafka.TopicPartition) error {
	ctx, span := l.runner.startSpan(ctx, "audit.rebalance")
	defer span.End()
	span.SetAttributes(map[string]interface{}{
		"topic":      l.runner.cfg.Topic,
		"partitions": len(partitions),
		"lookback":   l.resolver.Lookback().String(),
	})

	l.runner.metrics.assignment(len(partitions))

	err := l.resolver.OnPartitionsAssigned(ctx, partitions)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (l *assignmentListener) OnPartitionsRevoked(ctx context.Context, partitions []kafka.TopicPartition) error {
	l.runner.metrics.assignment(0)
	return l.resolver.OnPartitionsRevoked(ctx, partitions)
}
