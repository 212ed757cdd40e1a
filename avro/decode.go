package avro

import (
	"fmt"
	"math/big"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Map is a decoded record: field name to decoded value in schema field order.
type Map = orderedmap.OrderedMap[string, interface{}]

const secondsPerDay = 24 * 60 * 60

// Decoder converts generic records into plain value trees.
//
// Decoded values are nil, string, int32, int64, float32, float64, bool,
// []byte, civil.Date, civil.DateTime, decimal.Decimal, *Map for nested
// records, and goavro's own representation for enums, arrays, maps and fixed.
//
// A Decoder is immutable and safe for concurrent use.
type Decoder struct {
	location *time.Location
}

// NewDecoder returns a decoder that renders dates and timestamps in loc.
// A nil loc means time.Local.
func NewDecoder(loc *time.Location) *Decoder {
	if loc == nil {
		loc = time.Local
	}
	return &Decoder{location: loc}
}

// Decode decodes record with the default local-time decoder.
func Decode(schema *Schema, record *Record) (*Map, error) {
	return NewDecoder(nil).Decode(schema, record)
}

// Decode walks schema's fields in order and decodes the matching values of
// record. The first fault aborts the whole decode; no partial result is returned.
//
//	values, err := avro.NewDecoder(time.UTC).Decode(rec.Schema(), rec)
//	if err != nil {
//	    return err
//	}
//	id, _ := values.Get("id")
func (d *Decoder) Decode(schema *Schema, record *Record) (*Map, error) {
	if schema.Kind != KindRecord {
		return nil, fmt.Errorf("%w: cannot decode %s schema as a record", ErrUnexpectedValue, schema.Kind)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: nil record for %s", ErrUnexpectedValue, schema.FullName)
	}

	out := orderedmap.New[string, interface{}]()
	for _, f := range schema.Fields {
		v, err := d.decodeValue(f.Type, record.Get(f.Name))
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		out.Set(f.Name, v)
	}
	return out, nil
}

func (d *Decoder) decodeValue(schema *Schema, raw interface{}) (interface{}, error) {
	switch schema.Kind {
	case KindUnion:
		branch, err := schema.NonNullBranch()
		if err != nil {
			return nil, err
		}
		return d.decodeValue(branch, raw)

	case KindRecord:
		if raw == nil {
			return nil, nil
		}
		nested, ok := raw.(*Record)
		if !ok {
			return nil, fmt.Errorf("%w: record %s from %T", ErrUnexpectedValue, schema.FullName, raw)
		}
		return d.Decode(schema, nested)

	case KindLogical:
		if raw == nil {
			return nil, nil
		}
		return d.decodeLogical(schema, raw)

	case KindPrimitive:
		if raw == nil {
			return nil, nil
		}
		if u, ok := raw.(Utf8); ok && schema.Type == TypeString {
			return string(u), nil
		}
		return raw, nil
	}

	return nil, fmt.Errorf("%w: schema kind %s", ErrUnexpectedValue, schema.Kind)
}

func (d *Decoder) decodeLogical(schema *Schema, raw interface{}) (interface{}, error) {
	switch schema.Logical {
	case LogicalDate:
		return d.decodeDate(raw)
	case LogicalTimestampMillis:
		return d.decodeTimestampMillis(raw)
	case LogicalDecimal:
		return decodeDecimal(schema, raw)
	}
	return nil, fmt.Errorf("%w: logical type %q", ErrMalformedLogical, schema.Logical)
}

// decodeDate interprets the day count as the UTC midnight instant and takes
// its calendar date in the decoder's location.
func (d *Decoder) decodeDate(raw interface{}) (civil.Date, error) {
	switch v := raw.(type) {
	case int32:
		return civil.DateOf(time.Unix(int64(v)*secondsPerDay, 0).In(d.location)), nil
	case int64:
		return civil.DateOf(time.Unix(v*secondsPerDay, 0).In(d.location)), nil
	case int:
		return civil.DateOf(time.Unix(int64(v)*secondsPerDay, 0).In(d.location)), nil
	case time.Time:
		return civil.DateOf(v.In(d.location)), nil
	}
	return civil.Date{}, fmt.Errorf("%w: date from %T", ErrMalformedLogical, raw)
}

func (d *Decoder) decodeTimestampMillis(raw interface{}) (civil.DateTime, error) {
	switch v := raw.(type) {
	case int64:
		return civil.DateTimeOf(time.UnixMilli(v).In(d.location)), nil
	case int:
		return civil.DateTimeOf(time.UnixMilli(int64(v)).In(d.location)), nil
	case time.Time:
		return civil.DateTimeOf(v.In(d.location)), nil
	}
	return civil.DateTime{}, fmt.Errorf("%w: timestamp-millis from %T", ErrMalformedLogical, raw)
}

// decodeDecimal reads big-endian two's complement unscaled bytes, or the
// *big.Rat goavro produces, applying the declared scale.
func decodeDecimal(schema *Schema, raw interface{}) (decimal.Decimal, error) {
	exp := -int32(schema.Scale)

	switch v := raw.(type) {
	case []byte:
		if len(v) == 0 {
			return decimal.Decimal{}, fmt.Errorf("%w: empty decimal bytes", ErrMalformedLogical)
		}
		return decimal.NewFromBigInt(unscaledFromBytes(v), exp), nil
	case *big.Rat:
		if v == nil {
			return decimal.Decimal{}, fmt.Errorf("%w: nil decimal", ErrMalformedLogical)
		}
		scaled := new(big.Int).Mul(v.Num(), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(schema.Scale)), nil))
		return decimal.NewFromBigInt(scaled.Quo(scaled, v.Denom()), exp), nil
	}
	return decimal.Decimal{}, fmt.Errorf("%w: decimal from %T", ErrMalformedLogical, raw)
}

func unscaledFromBytes(b []byte) *big.Int {
	n := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(b))*8))
	}
	return n
}
