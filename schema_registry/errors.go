package schema_registry

import "errors"

var (
	// ErrMissingURL is returned by NewClient without a registry URL
	ErrMissingURL = errors.New("schema registry URL is required")

	// ErrSchemaNotFound is returned when the registry answers 404
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrUnexpectedStatus is returned for any other non-200 answer
	ErrUnexpectedStatus = errors.New("unexpected schema registry status")

	// ErrInvalidWireFormat is returned for payloads without the Confluent header
	ErrInvalidWireFormat = errors.New("invalid wire format")

	// ErrUnsupportedSchemaType is returned for registered schemas that are not Avro
	ErrUnsupportedSchemaType = errors.New("unsupported schema type")
)
