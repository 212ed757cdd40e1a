package schema_registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/aalemi-dev/topic-audit/observability"
)

// Registry is the read side of a Confluent Schema Registry.
type Registry interface {
	// GetSchemaByID returns the schema text registered under id. Texts are
// cached for the life of the client; non-Avro schemas are rejected with
// ErrUnsupportedSchemaType and not cached.
func (c *Client) GetSchemaByID(ctx context.Context, id int) (string, error) {
	start := time.Now()
	subResource := strconv.Itoa(id)

	if schema, ok := c.cachedSchema(id); ok {
		c.observe(opGetSchemaByID, idLookupResource, subResource, start, nil, map[string]interface{}{
			"cache_hit": true,
		})
		return schema, nil
	}

	var result struct {
		Schema     string `json:"schema"`
		SchemaType string `json:"schemaType"`
	}
	status, err := c.getJSON(ctx, fmt.Sprintf("/schemas/ids/%d", id), &result)
	if err == nil && !isAvro(result.SchemaType) {
		err = fmt.Errorf("%w: schema %d is %s", ErrUnsupportedSchemaType, id, result.SchemaType)
	}
	c.observe(opGetSchemaByID, idLookupResource, subResource, start, err, map[string]interface{}{
		"cache_hit":   false,
		"status_code": status,
	})
	if err != nil {
		c.logError(ctx, "Failed to fetch schema", err, map[string]interface{}{"schema_id": id})
		return "", err
	}

	c.storeSchema(id, result.Schema)
	return result.Schema, nil
}

// GetLatestSchema returns the latest version registered under subject. An
// Avro result also primes the id cache.
func (c *Client) GetLatestSchema(ctx context.Context, subject string) (*Metadata, error) {
	start := time.Now()

	var metadata Metadata
	status, err := c.getJSON(ctx, fmt.Sprintf("/subjects/%s/versions/latest", url.PathEscape(subject)), &metadata)
	if err != nil {
		c.observe(opGetLatestSchema, subject, "latest", start, err, map[string]interface{}{
			"status_code": status,
		})
		return nil, err
	}

	metadata.Subject = subject
	if isAvro(metadata.Type) {
		c.storeSchema(metadata.ID, metadata.Schema)
	}

	c.observe(opGetLatestSchema, subject, "latest", start, nil, map[string]interface{}{
		"schema_id":   metadata.ID,
		"version":     metadata.Version,
		"schema_type": metadata.Type,
	})
	return &metadata, nil
}

func (c *Client) cachedSchema(id int) (string, bool) {
	c.schemaCacheMutex.RLock()
	defer c.schemaCacheMutex.RUnlock()
	schema, ok := c.schemaCache[id]
	return schema, ok
}

func (c *Client) cachedSchemas() int {
	c.schemaCacheMutex.RLock()
	defer c.schemaCacheMutex.RUnlock()
	return len(c.schemaCache)
}

func (c *Client) storeSchema(id int, schema string) {
	c.schemaCacheMutex.Lock()
	c.schemaCache[id] = schema
	c.schemaCacheMutex.Unlock()
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+path, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", "application/vnd.schemaregistry.v1+json")

	resp, err := c.httpClient.Do(req) //nolint:gosec
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("%w: %s: %s", ErrSchemaNotFound, path, string(body))
	default:
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// isAvro reports whether a registry schemaType denotes Avro. The registry
// omits the field for Avro schemas.
func isAvro(schemaType string) bool {
	return schemaType == "" || schemaType == "AVRO"
}

// WithObserver sets the observer for this client and returns the client for method chaining.
//
// Example:
//
//	client := client.WithObserver(myObserver).WithLogger(myLogger)
func (c *Client) WithObserver(observer observability.Observer) *Client {
	c.observer = observer
	return c
}

// WithLogger sets the logger for this client and returns the client for method chaining.
func (c *Client) WithLogger(logger Logger) *Client {
	c.logger = logger
	return c
}

// logInfo logs an informational message if a logger is configured
func (c *Client) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

// logError logs an error message if a logger is configured
func (c *Client) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
