package schema_registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aalemi-dev/topic-audit/avro"
	"github.com/golang-sql/civil"
	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frame encodes native with schemaJSON behind the wire header of id.
func frame(t *testing.T, id int, schemaJSON string, native map[string]interface{}) []byte {
	t.Helper()

	codec, err := goavro.NewCodec(schemaJSON)
	require.NoError(t, err)

	out, err := codec.BinaryFromNative(EncodeSchemaID(id), native)
	require.NoError(t, err)
	return out
}

func TestAvroRecordDecoderDecodesFramedRecords(t *testing.T) {
	srv := newRegistryServer(t, map[int]string{1: keySchemaJSON, 2: valueSchemaJSON})
	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)
	decoder := NewAvroRecordDecoder(client)

	ctx := context.Background()

	key, err := decoder.DecodeRecord(ctx, frame(t, 1, keySchemaJSON, map[string]interface{}{"id": int64(7)}))
	require.NoError(t, err)
	assert.Equal(t, "com.guidewire.cda.cc_claim_key", key.FullName())
	assert.Equal(t, int64(7), key.Get("id"))

	value, err := decoder.DecodeRecord(ctx, frame(t, 2, valueSchemaJSON, map[string]interface{}{
		"id":                int64(7),
		"gwcbi___operation": goavro.Union("int", int32(4)),
		"sourceSystem":      nil,
		"reported":          time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, err)
	assert.Equal(t, int32(4), value.Get("gwcbi___operation"))
	assert.Nil(t, value.Get("sourceSystem"))

	decoded, err := avro.NewDecoder(time.UTC).Decode(value.Schema(), value)
	require.NoError(t, err)
	reported, ok := decoded.Get("reported")
	require.True(t, ok)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.January, Day: 31}, reported)

	// one registry lookup per schema id
	_, err = decoder.DecodeRecord(ctx, frame(t, 1, keySchemaJSON, map[string]interface{}{"id": int64(8)}))
	require.NoError(t, err)
	assert.Equal(t, int32(2), srv.idLookups.Load())
}

func TestAvroRecordDecoderErrors(t *testing.T) {
	srv := newRegistryServer(t, map[int]string{1: keySchemaJSON})
	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)
	decoder := NewAvroRecordDecoder(client)

	ctx := context.Background()

	t.Run("missing header", func(t *testing.T) {
		_, err := decoder.DecodeRecord(ctx, []byte{0x2})
		assert.ErrorIs(t, err, ErrInvalidWireFormat)
	})

	t.Run("unknown schema", func(t *testing.T) {
		_, err := decoder.DecodeRecord(ctx, append(EncodeSchemaID(77), 0x0))
		assert.ErrorIs(t, err, ErrSchemaNotFound)
	})

	t.Run("non record schema", func(t *testing.T) {
		_, err := decoder.DecodeRecord(ctx, append(EncodeSchemaID(4), 0x0))
		assert.ErrorIs(t, err, avro.ErrInvalidSchema)
	})

	t.Run("truncated body", func(t *testing.T) {
		_, err := decoder.DecodeRecord(ctx, EncodeSchemaID(1))
		assert.ErrorContains(t, err, "decode payload with schema 1")
	})
}

func TestAvroRecordDecoderConcurrentUse(t *testing.T) {
	srv := newRegistryServer(t, map[int]string{1: keySchemaJSON})
	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)
	decoder := NewAvroRecordDecoder(client)

	data := frame(t, 1, keySchemaJSON, map[string]interface{}{"id": int64(1)})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := decoder.DecodeRecord(context.Background(), data)
			assert.NoError(t, err)
			assert.Equal(t, int64(1), rec.Get("id"))
		}()
	}
	wg.Wait()
}
