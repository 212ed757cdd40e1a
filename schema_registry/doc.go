// Package schema_registry reads Avro schemas from a Confluent Schema Registry
// and decodes Confluent-framed Avro payloads into avro.Record values.
//
// # Wire format
//
// Every payload starts with a zero magic byte followed by the big-endian
// 4-byte schema ID; the Avro binary body follows:
//
//	id, body, err := schema_registry.DecodeSchemaID(data)
//
// # Decoding records
//
// AvroRecordDecoder fetches the writer schema once per ID, parses it into an
// *avro.Schema and compiles a goavro codec for it:
//
//	registry, err := schema_registry.NewClient(schema_registry.Config{URL: "http://localhost:8081"})
//	if err != nil {
//		return err
//	}
//	decoder := schema_registry.NewAvroRecordDecoder(registry)
//	record, err := decoder.DecodeRecord(ctx, msg.Key)
//
// # Subjects
//
// GetLatestSchema returns the newest version registered under a subject,
// for example "<topic>-key" or "<topic>-value".
//
// # Observability
//
// With an observability.Observer attached the client reports
// get_schema_by_id (with a cache_hit flag) and get_latest_schema.
package schema_registry
