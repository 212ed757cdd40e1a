package rebalance

import (
	"context"
	"fmt"
	"time"

	"github.com/aalemi-dev/topic-audit/kafka"
)

// OffsetLookup resolves timestamps to offsets. It is satisfied by kafka.Client.
type OffsetLookup interface {
	OffsetsForTimes(ctx context.Context, query map[kafka.TopicPartition]int64) (map[kafka.TopicPartition]int64, error)
}

// Seeker moves the read position of an assigned partition. It is satisfied by kafka.Client.
type Seeker interface {
	Seek(tp kafka.TopicPartition, offset int64) error
}

// Logger is the subset of logger.Logger used by the resolver.
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// TimestampOffsetResolver positions every newly assigned partition at the
// first record written at or after now minus the lookback.
//
// It implements kafka.RebalanceListener. Revocations are ignored; nothing is
// committed or persisted on revoke.
type TimestampOffsetResolver struct {
	lookup   OffsetLookup
	seeker   Seeker
	lookback time.Duration
	now      func() time.Time
	logger   Logger
}

var _ kafka.RebalanceListener = (*TimestampOffsetResolver)(nil)

// NewTimestampOffsetResolver creates a resolver. lookup and seeker are
// usually the same kafka.Client.
func NewTimestampOffsetResolver(lookup OffsetLookup, seeker Seeker, lookback time.Duration) *TimestampOffsetResolver {
	return &TimestampOffsetResolver{
		lookup:   lookup,
		seeker:   seeker,
		lookback: lookback,
		now:      time.Now,
	}
}

// WithLogger attaches a logger and returns the resolver for chaining.
func (r *TimestampOffsetResolver) WithLogger(logger Logger) *TimestampOffsetResolver {
	r.logger = logger
	return r
}

// WithClock replaces the time source.
func (r *TimestampOffsetResolver) WithClock(now func() time.Time) *TimestampOffsetResolver {
	r.now = now
	return r
}

// Lookback returns the configured lookback.
func (r *TimestampOffsetResolver) Lookback() time.Duration {
	return r.lookback
}

// OnPartitionsRevoked does nothing.
func (r *TimestampOffsetResolver) OnPartitionsRevoked(context.Context, []kafka.TopicPartition) error {
	return nil
}

// OnPartitionsAssigned resolves one shared target timestamp for all
// partitions and seeks those that resolve. A lookup failure is returned as
// is and aborts the poll that triggered the assignment.
func (r *TimestampOffsetResolver) OnPartitionsAssigned(ctx context.Context, partitions []kafka.TopicPartition) error {
	if len(partitions) == 0 {
		return nil
	}

	ts := TargetTimestamp(r.now(), r.lookback)
	targets := Targets(partitions, ts)

	resolved, err := r.lookup.OffsetsForTimes(ctx, Query(targets))
	if err != nil {
		return fmt.Errorf("resolve offsets for %s: %w", time.UnixMilli(ts).UTC().Format(time.RFC3339), err)
	}

	seeks := SeekInstructions(targets, resolved)
	for _, t := range Unresolved(targets, seeks) {
		r.debug(ctx, "No offset at or after target timestamp, keeping default position", map[string]interface{}{
			"partition": t.Partition.String(),
			"timestamp": t.Timestamp,
		})
	}

	if err := ApplySeeks(r.seeker, seeks); err != nil {
		return err
	}

	if r.logger != nil {
		r.logger.InfoWithContext(ctx, "Partitions positioned by timestamp", nil, map[string]interface{}{
			"partitions": len(partitions),
			"seeked":     len(seeks),
			"timestamp":  ts,
		})
	}
	return nil
}

func (r *TimestampOffsetResolver) debug(ctx context.Context, msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.DebugWithContext(ctx, msg, nil, fields)
	}
}
