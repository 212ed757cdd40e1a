package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aalemi-dev/topic-audit/avro"
	"github.com/aalemi-dev/topic-audit/kafka"
	"github.com/aalemi-dev/topic-audit/metrics"
	"github.com/aalemi-dev/topic-audit/rebalance"
	"github.com/aalemi-dev/topic-audit/schema_registry"
	"github.com/aalemi-dev/topic-audit/tables"
	"github.com/aalemi-dev/topic-audit/tracer"
)

// Logger is the subset of logger.Logger used by the runner.
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Report is the outcome of a run.
type Report struct {
	// Total counts every polled record, including filtered ones.
	Total int64

	// Tables holds one snapshot per table, sorted by table name.
	Tables []tables.Snapshot
}

// Runner consumes one topic from a time-derived position until a poll comes
// back empty, aggregating per-table counters on the way.
//
// A Runner owns its kafka.Client: the client is closed when Run returns,
// whatever the outcome. Run may therefore be called once.
type Runner struct {
	cfg     Config
	mode    tables.Mode
	filters tables.Filters

	client  kafka.Client
	records schema_registry.RecordDecoder
	decoder *avro.Decoder

	logger  Logger
	tracer  tracer.Tracer
	metrics *runMetrics
	now     func() time.Time

	mu    sync.Mutex
	state State
}

// NewRunner validates cfg and builds a runner reading from client and
// decoding through records.
//
//	runner, err := audit.NewRunner(cfg, kafkaClient, recordDecoder)
//	if err != nil {
//	    return err
//	}
//	report, err := runner.WithLogger(log).Run(ctx)
func NewRunner(cfg Config, client kafka.Client, records schema_registry.RecordDecoder) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Runner{
		cfg:     cfg,
		mode:    cfg.Mode(),
		filters: cfg.Filters(),
		client:  client,
		records: records,
		decoder: avro.NewDecoder(nil),
		now:     time.Now,
		state:   StateIdle,
	}, nil
}

// WithLogger attaches a logger and returns the runner for chaining.
func (r *Runner) WithLogger(logger Logger) *Runner {
	r.logger = logger
	return r
}

// WithTracer attaches a tracer and returns the runner for chaining.
func (r *Runner) WithTracer(t tracer.Tracer) *Runner {
	r.tracer = t
	return r
}

// WithMetrics registers the run metrics on collector. It must be called at
// most once per collector.
func (r *Runner) WithMetrics(collector metrics.MetricsCollector) *Runner {
	if collector != nil {
		r.metrics = newRunMetrics(collector)
	}
	return r
}

// WithDecoder replaces the value decoder, e.g. to render dates in a fixed zone.
func (r *Runner) WithDecoder(d *avro.Decoder) *Runner {
	r.decoder = d
	return r
}

// WithClock replaces the time source used for the lookback.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// State returns the current state. It is safe to call from any goroutine.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Run subscribes, polls and processes batches until an empty poll, then logs
// the summary, leaves the group and closes the client. The first decode,
// poll or commit failure aborts the run; the report then holds the counters
// reached so far.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return Report{}, ErrAlreadyRun
	}
	r.state = StatePolling
	r.mu.Unlock()

	agg := tables.NewAggregator()
	var total int64

	err := r.consume(ctx, agg, &total)
	report := Report{Total: total, Tables: agg.Summary()}
	if err != nil {
		r.setState(StateFailed)
		if closeErr := r.client.Close(); closeErr != nil {
			r.logWarn(ctx, "Failed to close Kafka client", closeErr, nil)
		}
		r.logError(ctx, "Audit run failed", err, map[string]interface{}{
			"topic":          r.cfg.Topic,
			"total":          total,
			"retryable":      kafka.IsRetryableError(err),
			"authentication": kafka.IsAuthenticationError(err),
		})
		return report, err
	}

	r.setState(StateDraining)
	r.logSummary(ctx, report)

	unsubscribeErr := r.client.Unsubscribe()
	closeErr := r.client.Close()
	if unsubscribeErr != nil || closeErr != nil {
		r.setState(StateFailed)
		if unsubscribeErr != nil {
			return report, fmt.Errorf("failed to unsubscribe from %s: %w", r.cfg.Topic, unsubscribeErr)
		}
		return report, fmt.Errorf("failed to close Kafka client: %w", closeErr)
	}

	r.setState(StateClosed)
	return report, nil
}

func (r *Runner) consume(ctx context.Context, agg *tables.Aggregator, total *int64) error {
	resolver := rebalance.NewTimestampOffsetResolver(r.client, r.client, r.cfg.Lookback()).
		WithClock(r.now).
		WithLogger(r.logger)

	r.logInfo(ctx, "Subscribing to topic", map[string]interface{}{
		"topic":    r.cfg.Topic,
		"mode":     r.mode.String(),
		"lookback": r.cfg.Lookback().String(),
	})
	if err := r.client.Subscribe(ctx, r.cfg.Topic, &assignmentListener{resolver: resolver, runner: r}); err != nil {
		return err
	}

	for {
		r.setState(StatePolling)
		batch, err := r.client.Poll(ctx, r.cfg.pollTimeout())
		if err != nil {
			return fmt.Errorf("failed to poll %s: %w", r.cfg.Topic, err)
		}
		if len(batch) == 0 {
			return nil
		}

		if err := r.processBatch(ctx, agg, batch); err != nil {
			return err
		}
		*total += int64(len(batch))
		r.metrics.polled(len(batch))

		r.setState(StateCommitting)
		if err := r.client.CommitSync(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrCommitFault, err)
		}
	}
}

func (r *Runner) processBatch(ctx context.Context, agg *tables.Aggregator, batch []kafka.Record) error {
	r.setState(StateProcessing)

	ctx, span := r.startSpan(ctx, "audit.batch")
	defer span.End()
	span.SetAttributes(map[string]interface{}{
		"topic":   r.cfg.Topic,
		"records": len(batch),
	})

	for _, rec := range batch {
		if err := r.processTraced(ctx, agg, rec); err != nil {
			span.RecordError(err)
			return err
		}
	}
	return nil
}

// processTraced continues the producer's trace when the record carries one.
func (r *Runner) processTraced(ctx context.Context, agg *tables.Aggregator, rec kafka.Record) error {
	if r.tracer == nil || rec.Headers[traceParentHeader] == "" {
		return r.process(ctx, agg, rec)
	}

	ctx = r.tracer.SetCarrierOnContext(ctx, rec.Headers)
	ctx, span := r.tracer.StartSpan(ctx, "audit.record")
	defer span.End()
	span.SetAttributes(map[string]interface{}{
		"partition": rec.Partition,
		"offset":    rec.Offset,
	})

	err := r.process(ctx, agg, rec)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

const traceParentHeader = "traceparent"

// process classifies and counts one record.
func (r *Runner) process(ctx context.Context, agg *tables.Aggregator, rec kafka.Record) error {
	key, err := r.records.DecodeRecord(ctx, rec.Key)
	if err != nil {
		return decodeFault("key", rec, err)
	}

	table := tables.TableNameFromKeySchema(key.FullName(), r.mode)
	if !r.filters.IncludesTable(table) {
		return nil
	}

	var value *avro.Record
	if !rec.IsTombstone() {
		value, err = r.records.DecodeRecord(ctx, rec.Value)
		if err != nil {
			return decodeFault("value", rec, err)
		}
		if !r.filters.IncludesSource(tables.SourceOf(value)) {
			return nil
		}
	}

	// Both sides are decoded before any counter moves, so a record that
	// aborts the run leaves the report untouched.
	keyValues, err := r.decoder.Decode(key.Schema(), key)
	if err != nil {
		return decodeFault("key", rec, err)
	}
	var values *avro.Map
	if value != nil {
		values, err = r.decoder.Decode(value.Schema(), value)
		if err != nil {
			return decodeFault("value", rec, err)
		}
	}

	agg.RecordMessage(table)
	r.metrics.message(table)

	if r.mode == tables.ModeChangeData {
		if id, ok := tables.IDFromDecodedKey(keyValues); ok {
			agg.RecordID(table, id)
		} else {
			r.logDebug(ctx, "Key without integer id", map[string]interface{}{
				"table":     table,
				"partition": rec.Partition,
				"offset":    rec.Offset,
			})
		}
	}

	if values == nil {
		if r.cfg.LogValues {
			r.logInfo(ctx, "Tombstone for key "+render(keyValues), map[string]interface{}{
				"table": table,
			})
		}
		return nil
	}

	if op, ok := tables.OperationFromDecodedValue(values, r.mode); ok {
		agg.RecordOperation(table, op)
		r.metrics.operation(table, op)
	}

	if r.cfg.LogValues {
		r.logInfo(ctx, render(values), map[string]interface{}{
			"table": table,
		})
		if r.mode == tables.ModeStructuredCapture {
			r.logCaptureHeaders(ctx, table, values)
		}
	}
	return nil
}

func decodeFault(part string, rec kafka.Record, err error) error {
	return fmt.Errorf("%w: %s of %s offset %d: %w", ErrDecodeFault, part, rec.TopicPartition(), rec.Offset, err)
}

func (r *Runner) logSummary(ctx context.Context, report Report) {
	r.logInfo(ctx, fmt.Sprintf("total records consumed=%d", report.Total), map[string]interface{}{
		"topic":  r.cfg.Topic,
		"tables": len(report.Tables),
	})
	for _, snapshot := range report.Tables {
		r.logInfo(ctx, fmt.Sprintf("%s: %s", snapshot.Table, snapshot), snapshot.Fields())
	}
}

func (r *Runner) startSpan(ctx context.Context, name string) (context.Context, tracer.Span) {
	if r.tracer == nil {
		return ctx, noopSpan{}
	}
	return r.tracer.StartSpan(ctx, name)
}

type noopSpan struct{}

func (noopSpan) End()                                 {}
func (noopSpan) SetAttributes(map[string]interface{}) {}
func (noopSpan) RecordError(error)                    {}
