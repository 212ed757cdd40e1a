package avro

import "fmt"

// Kind is the closed set of schema variants the decoder dispatches on.
type Kind int

const (
	// KindPrimitive covers Avro primitives and the complex types whose values
	// pass through undecoded (enum, array, map, fixed).
	KindPrimitive Kind = iota
	KindUnion
	KindRecord
	KindLogical
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindUnion:
		return "union"
	case KindRecord:
		return "record"
	case KindLogical:
		return "logical"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Physical Avro type names.
const (
	TypeNull    = "null"
	TypeBoolean = "boolean"
	TypeInt     = "int"
	TypeLong    = "long"
	TypeFloat   = "float"
	TypeDouble  = "double"
	TypeBytes   = "bytes"
	TypeString  = "string"
	TypeRecord  = "record"
	TypeEnum    = "enum"
	TypeArray   = "array"
	TypeMap     = "map"
	TypeFixed   = "fixed"
)

// LogicalKind names the logical annotations the decoder converts.
type LogicalKind string

const (
	LogicalDate            LogicalKind = "date"
	LogicalDecimal         LogicalKind = "decimal"
	LogicalTimestampMillis LogicalKind = "timestamp-millis"
)

// Field is a named record field.
type Field struct {
	Name string
	Type *Schema
}

// Schema describes the shape of a value. Only the members relevant to Kind
// are set.
type Schema struct {
	Kind Kind

	// Type is the physical Avro type: a primitive name, "record", "enum",
	// "array", "map" or "fixed". Empty for unions.
	Type string

	// FullName is the namespace-qualified name of records, enums and fixed types.
	FullName string

	Fields   []Field
	Branches []*Schema

	Logical   LogicalKind
	Precision int
	Scale     int

	// Items is the element schema of an array or the value schema of a map.
	Items   *Schema
	Symbols []string
	Size    int
}

// Primitive returns a pass-through schema of the given physical type.
func Primitive(name string) *Schema {
	return &Schema{Kind: KindPrimitive, Type: name}
}

// Null is the null primitive.
func Null() *Schema {
	return Primitive(TypeNull)
}

// Union returns a union of the given branches in declaration order.
func Union(branches ...*Schema) *Schema {
	return &Schema{Kind: KindUnion, Branches: branches}
}

// Nullable returns the union ["null", s].
func Nullable(s *Schema) *Schema {
	return Union(Null(), s)
}

// RecordSchema returns a record schema with the given full name and fields.
func RecordSchema(fullName string, fields ...Field) *Schema {
	return &Schema{Kind: KindRecord, Type: TypeRecord, FullName: fullName, Fields: fields}
}

// Date returns the date logical type on int.
func Date() *Schema {
	return &Schema{Kind: KindLogical, Type: TypeInt, Logical: LogicalDate}
}

// TimestampMillis returns the timestamp-millis logical type on long.
func TimestampMillis() *Schema {
	return &Schema{Kind: KindLogical, Type: TypeLong, Logical: LogicalTimestampMillis}
}

// Decimal returns the decimal logical type on bytes.
func Decimal(precision, scale int) *Schema {
	return &Schema{Kind: KindLogical, Type: TypeBytes, Logical: LogicalDecimal, Precision: precision, Scale: scale}
}

// Field looks a record field up by name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// NonNullBranch resolves a nullable union to its value branch. The branches
// may appear in either order; any other union shape is ErrUnsupportedUnion.
func (s *Schema) NonNullBranch() (*Schema, error) {
	if s.Kind != KindUnion {
		return nil, fmt.Errorf("%w: %s is not a union", ErrUnexpectedValue, s.Kind)
	}
	if len(s.Branches) != 2 {
		return nil, fmt.Errorf("%w: %d branches", ErrUnsupportedUnion, len(s.Branches))
	}

	first, second := s.Branches[0], s.Branches[1]
	switch {
	case first.isNull() && !second.isNull():
		return second, nil
	case second.isNull() && !first.isNull():
		return first, nil
	default:
		return nil, fmt.Errorf("%w: expected exactly one null branch", ErrUnsupportedUnion)
	}
}

// Name is the label goavro uses for this schema inside a union value:
// the full name of named types, "type.logical" for logical types and the
// type name otherwise.
func (s *Schema) Name() string {
	switch {
	case s.FullName != "":
		return s.FullName
	case s.Kind == KindLogical:
		return s.Type + "." + string(s.Logical)
	default:
		return s.Type
	}
}

func (s *Schema) isNull() bool {
	return s.Kind == KindPrimitive && s.Type == TypeNull
}
