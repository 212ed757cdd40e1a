package schema_registry

import (
	"encoding/binary"
	"fmt"
)

// EncodeSchemaID encodes a schema ID in the Confluent wire format
// Format: [magic_byte][schema_id]
// - magic_byte: 0x0 (1 byte)
// - schema_id: 4 bytes (big-endian)
func EncodeSchemaID(schemaID int) []byte {
	buf := make([]byte, 5)
	buf[0] = 0x0                                          // Magic byte
	binary.BigEndian.PutUint32(buf[1:], uint32(schemaID)) //nolint:gosec
	return buf
}

// DecodeSchemaID decodes a schema ID from the Confluent wire format
// Returns the schema ID and the remaining payload (after the 5-byte header)
func DecodeSchemaID(data []byte) (int, []byte, error) {
	if len(data) < 5 {
		return 0, nil, fmt.Errorf("%w: expected at least 5 bytes, got %d", ErrInvalidWireFormat, len(data))
	}

	if data[0] != 0x0 {
		return 0, nil, fmt.Errorf("%w: expected magic byte 0x0, got 0x%x", ErrInvalidWireFormat, data[0])
	}

	schemaID := int(binary.BigEndian.Uint32(data[1:5]))
	return schemaID, data[5:], nil
}
