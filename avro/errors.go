package avro

import "errors"

var (
	// ErrUnsupportedUnion is returned for unions that are not exactly one
	// null branch plus one value branch.
	ErrUnsupportedUnion = errors.New("avro: unsupported union")

	// ErrMalformedLogical is returned when a logical type value has the wrong
	// raw representation or is empty.
	ErrMalformedLogical = errors.New("avro: malformed logical value")

	// ErrUnexpectedValue is returned when a raw value does not match the
	// shape required by its schema, e.g. a non-record where a record is declared.
	ErrUnexpectedValue = errors.New("avro: unexpected value")

	// ErrInvalidSchema is returned by ParseSchema for schema text it cannot
	// interpret.
	ErrInvalidSchema = errors.New("avro: invalid schema")
)
