// Package avro models Avro schemas and generic records and decodes records
// into plain Go value trees.
//
// Schemas are a closed set of variants (primitive, union, record, logical)
// parsed from registry JSON with ParseSchema. Records are built from goavro's
// native output with FromNative. The Decoder then walks the schema and
// converts logical types into calendar and decimal values:
//
//	date              -> civil.Date
//	timestamp-millis  -> civil.DateTime
//	decimal           -> decimal.Decimal
//	nested record     -> *Map (ordered by schema field order)
//
// Only nullable unions (null plus one value branch) are supported; anything
// else fails with ErrUnsupportedUnion rather than being guessed at.
package avro
