package schema_registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/aalemi-dev/topic-audit/avro"
	"github.com/linkedin/goavro/v2"
)

// RecordDecoder turns Confluent-framed Avro bytes into a generic record.
type RecordDecoder interface {
	DecodeRecord(ctx context.Context, data []byte) (*avro.Record, error)
}

// AvroRecordDecoder reads records written with any schema registered under
// the ID in their wire header. One parsed schema and goavro codec is kept
// per schema ID.
//
// It is safe for concurrent use.
type AvroRecordDecoder struct {
	registry Registry

	mu     sync.RWMutex
	codecs map[int]*writerSchema
}

type writerSchema struct {
	schema *avro.Schema
	codec  *goavro.Codec
}

var _ RecordDecoder = (*AvroRecordDecoder)(nil)

// NewAvroRecordDecoder creates a decoder that resolves schemas through registry.
func NewAvroRecordDecoder(registry Registry) *AvroRecordDecoder {
	return &AvroRecordDecoder{
		registry: registry,
		codecs:   make(map[int]*writerSchema),
	}
}

// DecodeRecord decodes one framed payload. The writer schema must be a record.
func (d *AvroRecordDecoder) DecodeRecord(ctx context.Context, data []byte) (*avro.Record, error) {
	id, payload, err := DecodeSchemaID(data)
	if err != nil {
		return nil, err
	}

	ws, err := d.writerSchema(ctx, id)
	if err != nil {
		return nil, err
	}

	native, _, err := ws.codec.NativeFromBinary(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload with schema %d: %w", id, err)
	}

	record, err := avro.FromNative(ws.schema, native)
	if err != nil {
		return nil, fmt.Errorf("read record with schema %d: %w", id, err)
	}
	return record, nil
}

func (d *AvroRecordDecoder) writerSchema(ctx context.Context, id int) (*writerSchema, error) {
	d.mu.RLock()
	ws, ok := d.codecs[id]
	d.mu.RUnlock()
	if ok {
		return ws, nil
	}

	text, err := d.registry.GetSchemaByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch schema %d: %w", id, err)
	}

	schema, err := avro.ParseSchema(text)
	if err != nil {
		return nil, fmt.Errorf("parse schema %d: %w", id, err)
	}
	if schema.Kind != avro.KindRecord {
		return nil, fmt.Errorf("%w: schema %d is %s, not a record", avro.ErrInvalidSchema, id, schema.Kind)
	}

	codec, err := goavro.NewCodec(text)
	if err != nil {
		return nil, fmt.Errorf("compile schema %d: %w", id, err)
	}

	ws = &writerSchema{schema: schema, codec: codec}
	d.mu.Lock()
	d.codecs[id] = ws
	d.mu.Unlock()
	return ws, nil
}
