package schema_registry

import (
	"time"

	"github.com/aalemi-dev/topic-audit/observability"
)

const (
	opGetSchemaByID   = "get_schema_by_id"
	opGetLatestSchema = "get_latest_schema"

	// idLookupResource is the resource of id lookups, which have no subject.
	idLookupResource = "registry"
)

// observe reports a registry call that began at start. Cache hits are
// reported too, with "cache_hit" set in metadata.
func (c *Client) observe(operation, resource, subResource string, start time.Time, err error, metadata map[string]interface{}) {
	if c == nil || c.observer == nil {
		return
	}

	c.observer.ObserveOperation(observability.OperationContext{
		Component:   "schema_registry",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    time.Since(start),
		Error:       err,
		Metadata:    metadata,
	})
}
