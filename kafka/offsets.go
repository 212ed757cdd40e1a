package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// OffsetsForTimes resolves every queried partition concurrently and waits
// for all of them. The first lookup failure cancels the others and is
// returned. Partitions with no record at or after their timestamp are left
// out of the result.
func (k *KafkaClient) OffsetsForTimes(ctx context.Context, query map[TopicPartition]int64) (map[TopicPartition]int64, error) {
	start := time.Now()

	resolved := make(map[TopicPartition]int64, len(query))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for tp, millis := range query {
		tp, millis := tp, millis
		g.Go(func() error {
			offset, err := k.lookupOffset(gctx, tp, millis)
			if err != nil {
				return fmt.Errorf("offset lookup for %s: %w", tp, TranslateError(err))
			}
			if offset < 0 {
				return nil
			}
			mu.Lock()
			resolved[tp] = offset
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	k.observe(opOffsetsForTimes, k.topic, "", start, err, int64(len(query)))
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// readOffsetForTime asks the partition leader for the first offset at or
// after millis. The brokers are tried in order until one reaches the leader.
func (k *KafkaClient) readOffsetForTime(ctx context.Context, tp TopicPartition, millis int64) (int64, error) {
	var lastErr error
	for _, broker := range k.cfg.Brokers {
		conn, err := k.dialer.DialLeader(ctx, "tcp", broker, tp.Topic, tp.Partition)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		offset, err := conn.ReadOffset(time.UnixMilli(millis))
		_ = conn.Close()
		return offset, err
	}
	return -1, lastErr
}
