package observability

import "time"

// Observer receives a notification every time an infrastructure client
// (kafka, schema_registry) finishes an operation. Clients work without one.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes one completed operation.
type OperationContext struct {
	// Component is the reporting package: "kafka" or "schema_registry".
	Component string

	// Operation is what was done, e.g. "poll", "commit", "offsets_for_times",
	// "seek", "get_schema_by_id".
	Operation string

	// Resource is the primary target: a topic name or a registry subject.
	Resource string

	// SubResource narrows the resource, e.g. a partition number or schema id.
	SubResource string

	Duration time.Duration

	// Error is nil on success.
	Error error

	// Size is the number of records or bytes involved, when meaningful.
	Size int64

	Metadata map[string]interface{}
}

// Status returns "success" or "error" depending on ctx.Error.
func (ctx OperationContext) Status() string {
	if ctx.Error != nil {
		return "error"
	}
	return "success"
}
