package avro

import (
	"fmt"
)

// Utf8 is the length-prefixed byte string representation some readers use
// for Avro strings. The decoder converts it to a Go string.
type Utf8 []byte

// String implements fmt.Stringer.
func (u Utf8) String() string {
	return string(u)
}

// Record is a generic Avro record: its schema plus raw field values.
// A Record is never mutated after construction.
type Record struct {
	schema *Schema
	values map[string]interface{}
}

// NewRecord builds a Record. Values are copied; fields missing from values
// read as nil.
func NewRecord(schema *Schema, values map[string]interface{}) *Record {
	copied := make(map[string]interface{}, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Record{schema: schema, values: copied}
}

// Schema returns the record's schema.
func (r *Record) Schema() *Schema {
	return r.schema
}

// FullName returns the full name of the record's schema.
func (r *Record) FullName() string {
	return r.schema.FullName
}

// Get returns the raw value of the named field, or nil.
func (r *Record) Get(name string) interface{} {
	return r.values[name]
}

// FromNative builds a Record from the native form produced by goavro for a
// record schema: a map of field name to value in which union values are
// wrapped as single-entry maps keyed by branch name. Nested records become
// *Record; all other values keep goavro's representation.
func FromNative(schema *Schema, native interface{}) (*Record, error) {
	if schema.Kind != KindRecord {
		return nil, fmt.Errorf("%w: %s schema is not a record", ErrUnexpectedValue, schema.Kind)
	}
	fields, ok := native.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: record %s from %T", ErrUnexpectedValue, schema.FullName, native)
	}

	values := make(map[string]interface{}, len(schema.Fields))
	for _, f := range schema.Fields {
		v, err := fromNative(f.Type, fields[f.Name])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", schema.FullName, f.Name, err)
		}
		values[f.Name] = v
	}
	return &Record{schema: schema, values: values}, nil
}

func fromNative(schema *Schema, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	switch schema.Kind {
	case KindUnion:
		wrapped, ok := v.(map[string]interface{})
		if !ok || len(wrapped) != 1 {
			return nil, fmt.Errorf("%w: union value %T", ErrUnexpectedValue, v)
		}
		for name, inner := range wrapped {
			branch := unionBranch(schema, name)
			if branch == nil {
				return nil, fmt.Errorf("%w: no union branch %q", ErrUnexpectedValue, name)
			}
			return fromNative(branch, inner)
		}
	case KindRecord:
		return FromNative(schema, v)
	}
	return v, nil
}

func unionBranch(schema *Schema, name string) *Schema {
	var nonNull []*Schema
	for _, branch := range schema.Branches {
		if branch.Name() == name {
			return branch
		}
		if !branch.isNull() {
			nonNull = append(nonNull, branch)
		}
	}
	if len(nonNull) == 1 {
		return nonNull[0]
	}
	return nil
}
