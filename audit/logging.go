package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aalemi-dev/topic-audit/avro"
	"github.com/aalemi-dev/topic-audit/tables"
)

// captureHeaderFields maps the fields of a structured-capture header record
// to the log fields they are reported under, in print order.
var captureHeaderFields = []struct {
	field string
	key   string
}{
	{"operation", "operation"},
	{"transactionId", "transaction_id"},
	{"timestamp", "timestamp"},
	{"changeSequence", "change_sequence"},
	{"transactionEventCounter", "event_counter"},
	{"streamPosition", "stream_position"},
}

// logCaptureHeaders logs the nested capture header record of a
// structured-capture value, if it has one.
func (r *Runner) logCaptureHeaders(ctx context.Context, table string, values *avro.Map) {
	raw, ok := values.Get(tables.HeadersField)
	if !ok {
		return
	}
	headers, ok := raw.(*avro.Map)
	if !ok || headers == nil {
		return
	}

	fields := map[string]interface{}{"table": table}
	for _, f := range captureHeaderFields {
		v, _ := headers.Get(f.field)
		fields[f.key] = v
	}
	r.logInfo(ctx, "Table Record", fields)
}

// render formats decoded values as one JSON object in field order.
func render(values *avro.Map) string {
	if values == nil {
		return "null"
	}
	out, err := json.Marshal(values)
	if err != nil {
		return fmt.Sprint(values)
	}
	return string(out)
}

func (r *Runner) logDebug(ctx context.Context, msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.DebugWithContext(ctx, msg, nil, fields)
	}
}

func (r *Runner) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (r *Runner) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.WarnWithContext(ctx, msg, err, fields)
	}
}

func (r *Runner) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
