package tables

import (
	"fmt"
	"strings"

	"github.com/aalemi-dev/topic-audit/avro"
)

// Mode selects the key naming convention and whether operation codes are read.
type Mode int

const (
	// ModeStructuredCapture handles keys named "<namespace>.<table>.KeyRecord".
	ModeStructuredCapture Mode = iota

	// ModeChangeData handles keys named "<namespace>.<table>_key" and values
	// carrying an integer operation code.
	ModeChangeData
)

// ModeFor maps the change-data flag to a Mode.
func ModeFor(changeData bool) Mode {
	if changeData {
		return ModeChangeData
	}
	return ModeStructuredCapture
}

func (m Mode) String() string {
	if m == ModeChangeData {
		return "change-data"
	}
	return "structured-capture"
}

const (
	// DefaultTable is reported for keys that follow neither naming convention.
	DefaultTable = "default"

	ChangeDataKeySuffix        = "_key"
	StructuredCaptureKeySuffix = ".KeyRecord"

	// OperationField holds the change-data operation code.
	OperationField = "gwcbi___operation"

	// IDField is the primary key field of change-data keys.
	IDField = "id"

	// SourceSystemField names the producing system on value records.
	SourceSystemField = "sourceSystem"

	// HeadersField is the nested capture header record on structured-capture values.
	HeadersField = "headers"
)

// Operation is a change type.
type Operation int

const (
	OperationInitialLoad Operation = iota
	OperationDelete
	OperationInsert
	OperationUpdate
)

func (o Operation) String() string {
	switch o {
	case OperationInitialLoad:
		return "initial_load"
	case OperationDelete:
		return "delete"
	case OperationInsert:
		return "insert"
	case OperationUpdate:
		return "update"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// TableNameFromKeySchema derives the logical table from a key schema's full
// name: the mode's suffix is stripped and the last dot-separated segment
// is returned. Names without the suffix map to DefaultTable.
//
//	TableNameFromKeySchema("uat.raw.cda.bctl_cond_ext_key", ModeChangeData)            // "bctl_cond_ext"
//	TableNameFromKeySchema("com.x.queue.msg.TSTDTA.CINMAD.KeyRecord", ModeStructuredCapture) // "CINMAD"
//	TableNameFromKeySchema("unexpected.schema.name", ModeChangeData)                   // "default"
func TableNameFromKeySchema(fullName string, mode Mode) string {
	suffix := StructuredCaptureKeySuffix
	if mode == ModeChangeData {
		suffix = ChangeDataKeySuffix
	}

	if !strings.HasSuffix(fullName, suffix) {
		return DefaultTable
	}
	name := strings.TrimSuffix(fullName, suffix)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// operationCodes maps change-data operation codes to operations. Code 3 is
// not produced and, like any other code, is ignored.
var operationCodes = map[int64]Operation{
	0: OperationInitialLoad,
	1: OperationDelete,
	2: OperationInsert,
	4: OperationUpdate,
}

// OperationFromDecodedValue reads the operation of a decoded change-data
// value. It reports false in structured-capture mode, when the field is
// missing, null or not an integer, and for unknown codes.
func OperationFromDecodedValue(values *avro.Map, mode Mode) (Operation, bool) {
	if mode != ModeChangeData || values == nil {
		return 0, false
	}
	raw, ok := values.Get(OperationField)
	if !ok {
		return 0, false
	}
	code, ok := asInt64(raw)
	if !ok {
		return 0, false
	}
	op, ok := operationCodes[code]
	return op, ok
}

// IDFromDecodedKey reads the integer id of a decoded change-data key.
func IDFromDecodedKey(values *avro.Map) (int64, bool) {
	if values == nil {
		return 0, false
	}
	raw, ok := values.Get(IDField)
	if !ok {
		return 0, false
	}
	return asInt64(raw)
}

// SourceOf returns the raw sourceSystem of a value record. Absent and null
// sources report false.
func SourceOf(record *avro.Record) (string, bool) {
	if record == nil {
		return "", false
	}
	switch v := record.Get(SourceSystemField).(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case avro.Utf8:
		return string(v), true
	default:
		return fmt.Sprint(v), true
	}
}

func asInt64(raw interface{}) (int64, bool) {
	switch v := raw.(type) {
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}
