package kafka

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/segmentio/kafka-go"
)

// Subscribe joins the consumer group for topic. Partitions are assigned
// lazily by the first Poll.
func (k *KafkaClient) Subscribe(ctx context.Context, topic string, listener RebalanceListener) error {
	start := time.Now()

	if k.isClosed() {
		return ErrClientClosed
	}
	if k.group != nil {
		return ErrAlreadySubscribed
	}

	group, err := k.newGroup(topic)
	if err != nil {
		err = TranslateError(err)
		k.observe(opSubscribe, topic, k.cfg.GroupID, start, err, 0)
		return fmt.Errorf("failed to join consumer group %s: %w", k.cfg.GroupID, err)
	}

	k.topic = topic
	k.listener = listener
	k.group = group

	k.observe(opSubscribe, topic, k.cfg.GroupID, start, nil, 0)
	k.logInfo(ctx, "Subscribed to topic", map[string]interface{}{
		"topic":    topic,
		"group_id": k.cfg.GroupID,
	})
	return nil
}

// Poll returns the next batch of records. It blocks until at least one
// record is available, the timeout elapses or ctx is done. On timeout it
// returns an empty batch and a nil error.
//
// Joining the group and every subsequent rebalance happen inside Poll, so
// the listener always runs before the first record of a new assignment is
// returned.
func (k *KafkaClient) Poll(ctx context.Context, timeout time.Duration) ([]Record, error) {
	start := time.Now()
	records, err := k.poll(ctx, timeout)
	k.observe(opPoll, k.topic, "", start, err, int64(len(records)))
	return records, err
}

func (k *KafkaClient) poll(ctx context.Context, timeout time.Duration) ([]Record, error) {
	if k.isClosed() {
		return nil, ErrClientClosed
	}
	if k.group == nil {
		return nil, ErrNotSubscribed
	}

	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		if k.current == nil {
			gen, err := k.group.Next(pollCtx)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				if pollCtx.Err() != nil {
					return nil, nil
				}
				return nil, TranslateError(err)
			}
			if err := k.assign(ctx, gen); err != nil {
				return nil, err
			}
		}

		state := k.current

		// A pending fetch error wins over the end of the generation.
		select {
		case err := <-state.errs:
			return nil, TranslateError(err)
		default:
		}
		if state.hasEnded() {
			if err := k.revoke(ctx); err != nil {
				return nil, err
			}
			continue
		}

		select {
		case msg := <-state.records:
			return k.drain(state, msg), nil
		case err := <-state.errs:
			return nil, TranslateError(err)
		case <-state.ended:
			if err := k.revoke(ctx); err != nil {
				return nil, err
			}
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, nil
		}
	}
}

// drain collects already fetched records without blocking.
func (k *KafkaClient) drain(state *generationState, first kafka.Message) []Record {
	batch := []Record{k.track(state, first)}
	for len(batch) < k.cfg.MaxPollRecords {
		select {
		case msg := <-state.records:
			batch = append(batch, k.track(state, msg))
		default:
			return batch
		}
	}
	return batch
}

func (k *KafkaClient) track(state *generationState, msg kafka.Message) Record {
	state.positions[msg.Partition] = msg.Offset + 1
	return newRecord(msg)
}

// assign installs a new generation: it runs the assignment callback, which
// may Seek, and then starts one fetcher per partition.
func (k *KafkaClient) assign(ctx context.Context, gen groupGeneration) error {
	assignments := gen.Assignments()[k.topic]
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })

	partitions := make([]TopicPartition, 0, len(assignments))
	k.assigning = make(map[TopicPartition]struct{}, len(assignments))
	k.pendingSeeks = make(map[TopicPartition]int64, len(assignments))
	for _, a := range assignments {
		tp := TopicPartition{Topic: k.topic, Partition: a.ID}
		partitions = append(partitions, tp)
		k.assigning[tp] = struct{}{}
	}

	var err error
	if k.listener != nil {
		err = k.listener.OnPartitionsAssigned(ctx, partitions)
	}
	seeks := k.pendingSeeks
	k.assigning = nil
	k.pendingSeeks = nil
	if err != nil {
		return fmt.Errorf("partition assignment callback failed: %w", err)
	}

	state := newGenerationState(gen, partitions, k.cfg.MaxPollRecords)
	for _, a := range assignments {
		tp := TopicPartition{Topic: k.topic, Partition: a.ID}
		offset := a.Offset
		if seek, ok := seeks[tp]; ok {
			offset = seek
		}
		reader := k.newReader(tp)
		gen.Start(func(genCtx context.Context) {
			state.fetch(genCtx, reader, offset)
		})
	}
	gen.Start(func(genCtx context.Context) {
		<-genCtx.Done()
		close(state.ended)
	})
	k.current = state

	k.logInfo(ctx, "Partitions assigned", map[string]interface{}{
		"topic":      k.topic,
		"partitions": len(partitions),
		"seeks":      len(seeks),
	})
	return nil
}

// revoke drops the current generation and notifies the listener.
func (k *KafkaClient) revoke(ctx context.Context) error {
	state := k.current
	if state == nil {
		return nil
	}
	k.current = nil

	k.logInfo(ctx, "Partitions revoked", map[string]interface{}{
		"topic":      k.topic,
		"partitions": len(state.partitions),
	})

	if k.listener != nil {
		if err := k.listener.OnPartitionsRevoked(ctx, state.partitions); err != nil {
			return fmt.Errorf("partition revocation callback failed: %w", err)
		}
	}
	return nil
}

// Seek sets the offset a partition starts from. It is only accepted while
// the assignment callback runs and only for partitions of that assignment.
func (k *KafkaClient) Seek(tp TopicPartition, offset int64) error {
	start := time.Now()
	err := k.seek(tp, offset)
	k.observe(opSeek, tp.Topic, tp.String(), start, err, 0)
	return err
}

func (k *KafkaClient) seek(tp TopicPartition, offset int64) error {
	if k.pendingSeeks == nil {
		return ErrSeekOutsideAssignment
	}
	if _, ok := k.assigning[tp]; !ok {
		return fmt.Errorf("%w: %s is not assigned", ErrSeekOutsideAssignment, tp)
	}
	if offset < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidOffset, offset)
	}
	k.pendingSeeks[tp] = offset
	return nil
}

// CommitSync commits the positions reached by Poll to the group coordinator.
// Nothing is sent when no record was returned since the last commit.
func (k *KafkaClient) CommitSync(ctx context.Context) error {
	if k.isClosed() {
		return ErrClientClosed
	}
	if k.group == nil {
		return ErrNotSubscribed
	}

	state := k.current
	if state == nil || len(state.positions) == 0 {
		return nil
	}
	if state.hasEnded() {
		k.logWarn(ctx, "Generation ended before commit, positions dropped", nil, map[string]interface{}{
			"topic":      k.topic,
			"partitions": len(state.positions),
		})
		state.positions = make(map[int]int64)
		return nil
	}

	start := time.Now()
	offsets := make(map[int]int64, len(state.positions))
	for partition, offset := range state.positions {
		offsets[partition] = offset
	}

	err := state.gen.CommitOffsets(map[string]map[int]int64{k.topic: offsets})
	if err != nil {
		err = TranslateError(err)
	} else {
		state.positions = make(map[int]int64)
	}
	k.observe(opCommit, k.topic, k.cfg.GroupID, start, err, int64(len(offsets)))
	return err
}

// Unsubscribe revokes the current assignment and leaves the group. Calling
// it without a subscription is a no-op.
func (k *KafkaClient) Unsubscribe() error {
	if k.group == nil {
		return nil
	}

	ctx := context.Background()
	revokeErr := k.revoke(ctx)

	err := k.group.Close()
	k.group = nil
	k.listener = nil
	if err != nil && !errors.Is(err, kafka.ErrGroupClosed) {
		k.logWarn(ctx, "Failed to leave consumer group", err, map[string]interface{}{
			"group_id": k.cfg.GroupID,
		})
		return TranslateError(err)
	}

	k.logInfo(ctx, "Left consumer group", map[string]interface{}{
		"group_id": k.cfg.GroupID,
	})
	return revokeErr
}

// Close leaves the group if still subscribed and marks the client closed.
// Only the first call has an effect.
func (k *KafkaClient) Close() error {
	k.closeOnce.Do(func() {
		k.closeErr = k.Unsubscribe()

		k.mu.Lock()
		k.closed = true
		k.mu.Unlock()

		k.logInfo(context.Background(), "Kafka client closed", nil)
	})
	return k.closeErr
}

func (k *KafkaClient) isClosed() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.closed
}

func newRecord(msg kafka.Message) Record {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return Record{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Timestamp: msg.Time,
	}
}
