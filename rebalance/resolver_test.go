package rebalance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aalemi-dev/topic-audit/kafka"
	"github.com/aalemi-dev/topic-audit/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeBroker struct {
	offsets   map[kafka.TopicPartition]int64
	lookupErr error
	seekErr   error

	queries []map[kafka.TopicPartition]int64
	seeks   []SeekInstruction
}

func (b *fakeBroker) OffsetsForTimes(_ context.Context, query map[kafka.TopicPartition]int64) (map[kafka.TopicPartition]int64, error) {
	b.queries = append(b.queries, query)
	if b.lookupErr != nil {
		return nil, b.lookupErr
	}
	resolved := make(map[kafka.TopicPartition]int64)
	for tp := range query {
		if offset, ok := b.offsets[tp]; ok {
			resolved[tp] = offset
		}
	}
	return resolved, nil
}

func (b *fakeBroker) Seek(tp kafka.TopicPartition, offset int64) error {
	if b.seekErr != nil {
		return b.seekErr
	}
	b.seeks = append(b.seeks, SeekInstruction{Partition: tp, Offset: offset})
	return nil
}

func tp(partition int) kafka.TopicPartition {
	return kafka.TopicPartition{Topic: "claims", Partition: partition}
}

var fixedNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestTargetTimestamp(t *testing.T) {
	assert.Equal(t, fixedNow.UnixMilli(), TargetTimestamp(fixedNow, 0))
	assert.Equal(t, time.Date(2024, time.March, 3, 12, 0, 0, 0, time.UTC).UnixMilli(), TargetTimestamp(fixedNow, 7*24*time.Hour))
}

func TestTargetsShareTimestampAndAreOrdered(t *testing.T) {
	targets := Targets([]kafka.TopicPartition{tp(2), tp(0), tp(1)}, 42)

	assert.Equal(t, []PartitionOffsetTarget{
		{Partition: tp(0), Timestamp: 42},
		{Partition: tp(1), Timestamp: 42},
		{Partition: tp(2), Timestamp: 42},
	}, targets)
	assert.Equal(t, map[kafka.TopicPartition]int64{tp(0): 42, tp(1): 42, tp(2): 42}, Query(targets))
	assert.Empty(t, Targets(nil, 42))
}

func TestSeekInstructionsKeepResolvedOffsetsOnly(t *testing.T) {
	targets := Targets([]kafka.TopicPartition{tp(0), tp(1), tp(2), tp(3)}, 42)
	resolved := map[kafka.TopicPartition]int64{
		tp(0): 17,
		tp(2): -1,
		tp(3): 0,
	}

	assert.Equal(t, []SeekInstruction{
		{Partition: tp(0), Offset: 17},
		{Partition: tp(3), Offset: 0},
	}, SeekInstructions(targets, resolved))
	assert.Empty(t, SeekInstructions(targets, nil))
}

func TestUnresolvedCoversMissingAndNegativeOffsets(t *testing.T) {
	targets := Targets([]kafka.TopicPartition{tp(0), tp(1), tp(2), tp(3)}, 42)
	resolved := map[kafka.TopicPartition]int64{
		tp(0): 17,
		tp(2): -1,
		tp(3): 0,
	}

	assert.Equal(t, []PartitionOffsetTarget{
		{Partition: tp(1), Timestamp: 42},
		{Partition: tp(2), Timestamp: 42},
	}, Unresolved(targets, SeekInstructions(targets, resolved)))
	assert.Equal(t, targets, Unresolved(targets, nil))
	assert.Empty(t, Unresolved(nil, nil))
}

func TestApplySeeksStopsAtFirstFailure(t *testing.T) {
	seekErr := errors.New("not assigned")
	broker := &fakeBroker{seekErr: seekErr}

	err := ApplySeeks(broker, []SeekInstruction{{Partition: tp(0), Offset: 1}, {Partition: tp(1), Offset: 2}})
	assert.ErrorIs(t, err, seekErr)
	assert.ErrorContains(t, err, "claims-0")

	assert.NoError(t, ApplySeeks(broker, nil))
}

func TestResolverSeeksResolvedPartitions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	broker := &fakeBroker{offsets: map[kafka.TopicPartition]int64{tp(0): 100, tp(2): 7, tp(3): -1}}

	resolver := NewTimestampOffsetResolver(broker, broker, 3*24*time.Hour).
		WithClock(func() time.Time { return fixedNow }).
		WithLogger(logger.NewObserved(zap.New(core), false))

	err := resolver.OnPartitionsAssigned(context.Background(), []kafka.TopicPartition{tp(2), tp(1), tp(3), tp(0)})
	require.NoError(t, err)

	want := fixedNow.Add(-72 * time.Hour).UnixMilli()
	require.Len(t, broker.queries, 1)
	assert.Equal(t, map[kafka.TopicPartition]int64{tp(0): want, tp(1): want, tp(2): want, tp(3): want}, broker.queries[0])
	assert.Equal(t, []SeekInstruction{{Partition: tp(0), Offset: 100}, {Partition: tp(2), Offset: 7}}, broker.seeks)

	// unresolved partitions are reported at debug level only, whether the
	// lookup left them out or answered with a negative offset
	kept := logs.FilterMessageSnippet("keeping default position")
	assert.Equal(t, 2, kept.Len())
	assert.Equal(t, 1, kept.FilterField(zap.String("partition", "claims-1")).Len())
	assert.Equal(t, 1, kept.FilterField(zap.String("partition", "claims-3")).Len())
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestResolverPropagatesLookupFailure(t *testing.T) {
	lookupErr := errors.New("broker unreachable")
	broker := &fakeBroker{lookupErr: lookupErr}

	resolver := NewTimestampOffsetResolver(broker, broker, time.Hour)
	err := resolver.OnPartitionsAssigned(context.Background(), []kafka.TopicPartition{tp(0)})

	assert.ErrorIs(t, err, lookupErr)
	assert.Empty(t, broker.seeks)
}

func TestResolverIgnoresEmptyAssignmentAndRevocation(t *testing.T) {
	broker := &fakeBroker{}
	resolver := NewTimestampOffsetResolver(broker, broker, time.Hour)

	require.NoError(t, resolver.OnPartitionsAssigned(context.Background(), nil))
	require.NoError(t, resolver.OnPartitionsRevoked(context.Background(), []kafka.TopicPartition{tp(0)}))

	assert.Empty(t, broker.queries)
	assert.Empty(t, broker.seeks)
	assert.Equal(t, time.Hour, resolver.Lookback())
}
