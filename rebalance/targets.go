package rebalance

import (
	"fmt"
	"sort"
	"time"

	"github.com/aalemi-dev/topic-audit/kafka"
)

// PartitionOffsetTarget pairs a partition with the epoch millis it should be
// positioned at.
type PartitionOffsetTarget struct {
	Partition kafka.TopicPartition
	Timestamp int64
}

// SeekInstruction is a resolved position for one partition.
type SeekInstruction struct {
	Partition kafka.TopicPartition
	Offset    int64
}

// TargetTimestamp returns now minus lookback in epoch millis.
func TargetTimestamp(now time.Time, lookback time.Duration) int64 {
	return now.Add(-lookback).UnixMilli()
}

// Targets builds one target per partition, all sharing ts. The result is
// ordered by topic and partition.
func Targets(partitions []kafka.TopicPartition, ts int64) []PartitionOffsetTarget {
	targets := make([]PartitionOffsetTarget, 0, len(partitions))
	for _, tp := range partitions {
		targets = append(targets, PartitionOffsetTarget{Partition: tp, Timestamp: ts})
	}
	sort.Slice(targets, func(i, j int) bool {
		a, b := targets[i].Partition, targets[j].Partition
		if a.Topic != b.Topic {
			return a.Topic < b.Topic
		}
		return a.Partition < b.Partition
	})
	return targets
}

// Query converts targets into an offsets-for-times request.
func Query(targets []PartitionOffsetTarget) map[kafka.TopicPartition]int64 {
	query := make(map[kafka.TopicPartition]int64, len(targets))
	for _, t := range targets {
		query[t.Partition] = t.Timestamp
	}
	return query
}

// SeekInstructions keeps, in target order, the partitions that resolved to
// an offset >= 0.
func SeekInstructions(targets []PartitionOffsetTarget, resolved map[kafka.TopicPartition]int64) []SeekInstruction {
	var seeks []SeekInstruction
	for _, t := range targets {
		offset, ok := resolved[t.Partition]
		if !ok || offset < 0 {
			continue
		}
		seeks = append(seeks, SeekInstruction{Partition: t.Partition, Offset: offset})
	}
	return seeks
}

// Unresolved returns the targets that have no seek instruction, in target
// order. Those partitions keep the position the group assigns them.
func Unresolved(targets []PartitionOffsetTarget, seeks []SeekInstruction) []PartitionOffsetTarget {
	seeked := make(map[kafka.TopicPartition]struct{}, len(seeks))
	for _, s := range seeks {
		seeked[s.Partition] = struct{}{}
	}
	var missing []PartitionOffsetTarget
	for _, t := range targets {
		if _, ok := seeked[t.Partition]; !ok {
			missing = append(missing, t)
		}
	}
	return missing
}

// ApplySeeks seeks every instruction in order and stops at the first failure.
func ApplySeeks(seeker Seeker, seeks []SeekInstruction) error {
	for _, s := range seeks {
		if err := seeker.Seek(s.Partition, s.Offset); err != nil {
			return fmt.Errorf("seek %s to %d: %w", s.Partition, s.Offset, err)
		}
	}
	return nil
}
