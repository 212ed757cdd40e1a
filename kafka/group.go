package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// consumerGroup is the part of *kafka.ConsumerGroup the client drives.
type consumerGroup interface {
	Next(ctx context.Context) (groupGeneration, error)
	Close() error
}

// groupGeneration is the part of *kafka.Generation the client drives.
type groupGeneration interface {
	Assignments() map[string][]kafka.PartitionAssignment
	Start(fn func(ctx context.Context))
	CommitOffsets(offsets map[string]map[int]int64) error
}

// partitionReader is satisfied by a partition-bound *kafka.Reader.
type partitionReader interface {
	SetOffset(offset int64) error
	FetchMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type kafkaConsumerGroup struct {
	group *kafka.ConsumerGroup
}

func (g kafkaConsumerGroup) Next(ctx context.Context) (groupGeneration, error) {
	gen, err := g.group.Next(ctx)
	if err != nil {
		return nil, err
	}
	return kafkaGeneration{gen: gen}, nil
}

func (g kafkaConsumerGroup) Close() error {
	return g.group.Close()
}

type kafkaGeneration struct {
	gen *kafka.Generation
}

func (g kafkaGeneration) Assignments() map[string][]kafka.PartitionAssignment {
	return g.gen.Assignments
}

func (g kafkaGeneration) Start(fn func(ctx context.Context)) {
	g.gen.Start(fn)
}

func (g kafkaGeneration) CommitOffsets(offsets map[string]map[int]int64) error {
	return g.gen.CommitOffsets(offsets)
}

// generationState holds what Poll needs from one group generation.
type generationState struct {
	gen        groupGeneration
	partitions []TopicPartition

	records chan kafka.Message
	errs    chan error
	ended   chan struct{}

	// positions holds, per partition, the offset after the last record
	// handed out by Poll and not yet committed.
	positions map[int]int64
}

func newGenerationState(gen groupGeneration, partitions []TopicPartition, buffer int) *generationState {
	return &generationState{
		gen:        gen,
		partitions: partitions,
		records:    make(chan kafka.Message, buffer),
		errs:       make(chan error, len(partitions)+1),
		ended:      make(chan struct{}),
		positions:  make(map[int]int64),
	}
}

// hasEnded reports whether the generation was stopped by the group.
func (s *generationState) hasEnded() bool {
	select {
	case <-s.ended:
		return true
	default:
		return false
	}
}

// fetch reads one partition until the generation ends. A fetch error is
// reported once and the fetcher then idles so the generation is only ever
// ended by the group.
func (s *generationState) fetch(ctx context.Context, reader partitionReader, offset int64) {
	defer func() { _ = reader.Close() }()

	if err := reader.SetOffset(offset); err != nil {
		s.fail(ctx, err)
		return
	}

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.fail(ctx, err)
			return
		}

		select {
		case s.records <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (s *generationState) fail(ctx context.Context, err error) {
	select {
	case s.errs <- err:
	default:
	}
	<-ctx.Done()
}
