// Package kafka provides a single-topic consumer-group client on top of
// segmentio/kafka-go with explicit, synchronous offset commits.
//
// The client is built for consumers that must decide where each partition
// starts, process every record on their own goroutine and commit only what
// they have fully handled. It joins a consumer group, hands records out in
// batches through Poll, runs rebalance callbacks inside Poll and commits
// through CommitSync.
//
// # Architecture
//
// The package follows the "accept interfaces, return structs" Go idiom:
//   - Client interface: Subscribe, Poll, Seek, OffsetsForTimes, CommitSync,
//     Unsubscribe and Close
//   - KafkaClient struct: the kafka-go backed implementation
//   - RebalanceListener: callbacks run synchronously inside Poll
//   - Record: key, value, headers and position of one consumed record
//   - Constructor returns *KafkaClient (concrete type)
//   - FX module provides both *KafkaClient and Client
//
// This design allows:
//   - Direct usage: use *KafkaClient in a command or a test
//   - Interface usage: depend on Client and swap in a fake for loop tests
//
// Each group generation starts one fetcher goroutine per assigned partition.
// Fetchers only read; every record is handed to the caller through Poll, so
// processing stays on the caller's goroutine. Seeks issued from
// OnPartitionsAssigned decide where the fetchers start.
//
// # Basic Usage
//
//	client, err := kafka.NewClient(kafka.Config{
//		Brokers: []string{"localhost:9092"},
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	if err := client.Subscribe(ctx, "claims", listener); err != nil {
//		return err
//	}
//	for {
//		records, err := client.Poll(ctx, 5*time.Second)
//		if err != nil {
//			return err
//		}
//		if len(records) == 0 {
//			break
//		}
//		for _, record := range records {
//			if record.IsTombstone() {
//				continue
//			}
//			// process record.Key and record.Value
//		}
//		if err := client.CommitSync(ctx); err != nil {
//			return err
//		}
//	}
//	return client.Unsubscribe()
//
// # FX Module Integration
//
// The module takes a Config from the container, plus an optional Logger and
// observability.Observer, and closes the client when the application stops:
//
//	app := fx.New(
//		kafka.FXModule,
//		fx.Supply(kafka.Config{
//			Brokers: []string{"broker-1:9093", "broker-2:9093"},
//		}),
//		fx.Invoke(func(c kafka.Client) {
//			// Subscribe and poll from the owning component
//		}),
//	)
//
// # Poll Contract
//
// Poll blocks until at least one record is available, the timeout elapses or
// ctx is done:
//   - records are returned in fetch order per partition; a batch holds at
//     most Config.MaxPollRecords records and may mix partitions
//   - an empty batch with a nil error means nothing arrived for timeout,
//     including while the group is still being joined
//   - ctx cancellation returns ctx.Err()
//   - a fetch failure of any partition is returned, translated by
//     TranslateError
//
// Poll, Seek, CommitSync and Unsubscribe belong to one goroutine. The
// client does not lock around them.
//
// # Rebalance Contract
//
// Joining the group and every later rebalance happen inside Poll, before any
// record of the new assignment is returned:
//
//  1. When a generation ends, OnPartitionsRevoked receives the partitions
//     of the old assignment. Positions not yet committed are dropped.
//  2. When a new generation starts, OnPartitionsAssigned receives the new
//     partitions, ordered by partition number.
//  3. Inside OnPartitionsAssigned, Seek may set the start offset of any
//     partition of that assignment. Seek anywhere else returns
//     ErrSeekOutsideAssignment, and a negative offset returns
//     ErrInvalidOffset.
//  4. A partition without a seek starts at its committed offset, or at
//     Config.StartOffset when the group has none. The default StartOffset
//     is LastOffset, so a partition that was not positioned reads only
//     records written after the assignment.
//
// An error returned by a callback aborts the Poll that ran it.
//
//	type startAt struct {
//		client *kafka.KafkaClient
//		millis int64
//	}
//
//	func (l *startAt) OnPartitionsRevoked(context.Context, []kafka.TopicPartition) error {
//		return nil
//	}
//
//	func (l *startAt) OnPartitionsAssigned(ctx context.Context, partitions []kafka.TopicPartition) error {
//		query := make(map[kafka.TopicPartition]int64, len(partitions))
//		for _, tp := range partitions {
//			query[tp] = l.millis
//		}
//		resolved, err := l.client.OffsetsForTimes(ctx, query)
//		if err != nil {
//			return err
//		}
//		for tp, offset := range resolved {
//			if err := l.client.Seek(tp, offset); err != nil {
//				return err
//			}
//		}
//		return nil
//	}
//
// # Commit Contract
//
// CommitSync commits, per partition, the offset after the last record that
// Poll returned since the previous commit. Nothing is sent when no record
// was returned. The call blocks until the coordinator answers:
//   - a failed commit keeps the positions, so the next CommitSync retries them
//   - a commit after its generation ended logs a warning and drops the
//     positions; the next assignment starts from the committed offsets
//   - there is no auto-commit; records that were polled but not committed
//     are delivered again to the next member of the group
//
// # Time-based Positioning
//
// OffsetsForTimes asks each partition leader for the first offset at or
// after an epoch-millis timestamp. Lookups run in parallel through an
// errgroup and the call returns once all of them finished. Partitions
// without a matching record are omitted from the result, so the caller can
// tell "nothing written since" apart from "offset 0":
//
//	resolved, err := client.OffsetsForTimes(ctx, map[kafka.TopicPartition]int64{
//		{Topic: "claims", Partition: 0}: time.Now().Add(-24 * time.Hour).UnixMilli(),
//	})
//
// # Consumer Groups
//
// An empty Config.GroupID gets a generated "topic-audit-<uuid>" group, so
// every process starts without committed offsets and positions itself from
// the rebalance callback. A fixed GroupID resumes from the group's commits.
//
// # Security
//
// TLS and SASL are configured on the dialer used for fetching, group
// coordination and offset lookups:
//
//	cfg := kafka.Config{
//		Brokers: []string{"broker:9093"},
//		TLS: kafka.TLSConfig{
//			Enabled:    true,
//			CACertPath: "/etc/kafka/ca.pem",
//		},
//		SASL: kafka.SASLConfig{
//			Enabled:   true,
//			Mechanism: "SCRAM-SHA-512",
//			Username:  "audit",
//			Password:  os.Getenv("KAFKA_PASSWORD"),
//		},
//	}
//
// Supported mechanisms are PLAIN, SCRAM-SHA-256 and SCRAM-SHA-512.
//
// # Error Handling
//
// TranslateError maps kafka-go protocol codes and transport messages to the
// sentinels of this package while keeping the original error in the chain:
//
//	if errors.Is(err, kafka.ErrAuthenticationFailed) {
//		// check the SASL settings
//	}
//
// IsRetryableError and IsAuthenticationError classify translated errors for
// reporting. The client itself never retries.
//
// # Observability
//
// An optional observability.Observer receives one OperationContext per
// subscribe, poll, seek, commit and offsets_for_times call. Size carries
// the number of records polled, offsets committed or partitions looked up:
//
//	client, err := kafka.NewClient(cfg)
//	if err != nil {
//		return err
//	}
//	client = client.WithObserver(metrics.NewOperationObserver(collector)).
//		WithLogger(log)
//
// # Thread Safety
//
// The client is single-owner. Close is idempotent and only its first call
// has an effect; like every other method it is called by the goroutine that
// owns the client. OffsetsForTimes is the only call that fans out, and it
// joins its goroutines before returning.
package kafka
