package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/aalemi-dev/topic-audit/schema_registry"
)

// SchemaSubjects returns the key and value subjects of topic under the
// topic name strategy.
func SchemaSubjects(topic string) []string {
	return []string{topic + "-key", topic + "-value"}
}

// LogTopicSchemas logs the latest registered key and value schema of topic.
// Subjects without a registered schema are logged and skipped; any other
// registry failure is returned.
func LogTopicSchemas(ctx context.Context, registry schema_registry.Registry, topic string, log Logger) error {
	for _, subject := range SchemaSubjects(topic) {
		metadata, err := registry.GetLatestSchema(ctx, subject)
		if errors.Is(err, schema_registry.ErrSchemaNotFound) {
			if log != nil {
				log.WarnWithContext(ctx, "No schema registered for subject", nil, map[string]interface{}{
					"subject": subject,
				})
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to fetch latest schema of %s: %w", subject, err)
		}

		if log != nil {
			log.InfoWithContext(ctx, "Latest schema", nil, map[string]interface{}{
				"subject": subject,
				"id":      metadata.ID,
				"version": metadata.Version,
				"schema":  metadata.Schema,
			})
		}
	}
	return nil
}
