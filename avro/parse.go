package avro

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseSchema parses Avro schema JSON, as served by a schema registry, into a
// Schema. Named types (record, enum, fixed) are resolved by full name,
// including references to a record from inside its own fields.
func ParseSchema(text string) (*Schema, error) {
	var node interface{}
	if err := json.Unmarshal([]byte(text), &node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	p := &schemaParser{named: make(map[string]*Schema)}
	return p.parse(node, "")
}

// MustParseSchema is ParseSchema for schema literals known to be valid; it
// panics on error.
func MustParseSchema(text string) *Schema {
	s, err := ParseSchema(text)
	if err != nil {
		panic(err)
	}
	return s
}

type schemaParser struct {
	named map[string]*Schema
}

func (p *schemaParser) parse(node interface{}, namespace string) (*Schema, error) {
	switch n := node.(type) {
	case string:
		return p.parseName(n, namespace)
	case []interface{}:
		branches := make([]*Schema, 0, len(n))
		for _, branch := range n {
			s, err := p.parse(branch, namespace)
			if err != nil {
				return nil, err
			}
			branches = append(branches, s)
		}
		return Union(branches...), nil
	case map[string]interface{}:
		return p.parseObject(n, namespace)
	default:
		return nil, fmt.Errorf("%w: unexpected JSON %T", ErrInvalidSchema, node)
	}
}

func (p *schemaParser) parseName(name, namespace string) (*Schema, error) {
	if isPrimitive(name) {
		return Primitive(name), nil
	}
	if s, ok := p.named[qualify(name, namespace)]; ok {
		return s, nil
	}
	if s, ok := p.named[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidSchema, name)
}

func (p *schemaParser) parseObject(n map[string]interface{}, namespace string) (*Schema, error) {
	typ, ok := n["type"].(string)
	if !ok {
		// {"type": {...}} or {"type": [...]} wraps another schema.
		inner, present := n["type"]
		if !present {
			return nil, fmt.Errorf("%w: object without type", ErrInvalidSchema)
		}
		return p.parse(inner, namespace)
	}

	switch typ {
	case TypeRecord, "error":
		return p.parseRecord(n, namespace)
	case TypeEnum:
		s, err := p.declare(n, namespace, &Schema{Kind: KindPrimitive, Type: TypeEnum})
		if err != nil {
			return nil, err
		}
		for _, symbol := range asSlice(n["symbols"]) {
			if str, ok := symbol.(string); ok {
				s.Symbols = append(s.Symbols, str)
			}
		}
		return s, nil
	case TypeFixed:
		s, err := p.declare(n, namespace, &Schema{Kind: KindPrimitive, Type: TypeFixed})
		if err != nil {
			return nil, err
		}
		s.Size = asInt(n["size"])
		applyLogical(s, n)
		return s, nil
	case TypeArray, TypeMap:
		key := "items"
		if typ == TypeMap {
			key = "values"
		}
		items, err := p.parse(n[key], namespace)
		if err != nil {
			return nil, err
		}
		return &Schema{Kind: KindPrimitive, Type: typ, Items: items}, nil
	default:
		if !isPrimitive(typ) {
			return p.parseName(typ, namespace)
		}
		s := Primitive(typ)
		applyLogical(s, n)
		return s, nil
	}
}

func (p *schemaParser) parseRecord(n map[string]interface{}, namespace string) (*Schema, error) {
	s, err := p.declare(n, namespace, &Schema{Kind: KindRecord, Type: TypeRecord})
	if err != nil {
		return nil, err
	}

	fieldNamespace := namespaceOf(s.FullName)
	for _, raw := range asSlice(n["fields"]) {
		def, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: field of %s is not an object", ErrInvalidSchema, s.FullName)
		}
		name, _ := def["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("%w: unnamed field in %s", ErrInvalidSchema, s.FullName)
		}
		fieldType, err := p.parse(def["type"], fieldNamespace)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", s.FullName, name, err)
		}
		s.Fields = append(s.Fields, Field{Name: name, Type: fieldType})
	}
	return s, nil
}

// declare registers a named type before its body is parsed so recursive
// references resolve to the same *Schema.
func (p *schemaParser) declare(n map[string]interface{}, namespace string, s *Schema) (*Schema, error) {
	name, _ := n["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("%w: %s without name", ErrInvalidSchema, s.Type)
	}
	if ns, ok := n["namespace"].(string); ok && !strings.Contains(name, ".") {
		namespace = ns
	}
	s.FullName = qualify(name, namespace)
	p.named[s.FullName] = s
	return s, nil
}

// applyLogical turns s into a logical schema when its annotation is one the
// decoder converts and the physical type matches; other annotations are ignored.
func applyLogical(s *Schema, n map[string]interface{}) {
	logical, _ := n["logicalType"].(string)
	switch LogicalKind(logical) {
	case LogicalDate:
		if s.Type == TypeInt {
			s.Kind, s.Logical = KindLogical, LogicalDate
		}
	case LogicalTimestampMillis:
		if s.Type == TypeLong {
			s.Kind, s.Logical = KindLogical, LogicalTimestampMillis
		}
	case LogicalDecimal:
		if s.Type == TypeBytes || s.Type == TypeFixed {
			s.Kind, s.Logical = KindLogical, LogicalDecimal
			s.Precision = asInt(n["precision"])
			s.Scale = asInt(n["scale"])
		}
	}
}

func isPrimitive(name string) bool {
	switch name {
	case TypeNull, TypeBoolean, TypeInt, TypeLong, TypeFloat, TypeDouble, TypeBytes, TypeString:
		return true
	}
	return false
}

func qualify(name, namespace string) string {
	if strings.Contains(name, ".") || namespace == "" {
		return name
	}
	return namespace + "." + name
}

func namespaceOf(fullName string) string {
	if i := strings.LastIndex(fullName, "."); i >= 0 {
		return fullName[:i]
	}
	return ""
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func asInt(v interface{}) int {
	f, _ := v.(float64)
	return int(f)
}
