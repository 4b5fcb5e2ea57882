// Package types describes the native column types of a query result, the
// native value representations rows carry, and the fixed mapping from native
// types to Arrow columnar types.
package types

import "strings"

// TypeID is the tag of a native column type.
type TypeID int

const (
	// TypeUnknown is a type the source could not describe
	TypeUnknown TypeID = iota
	// TypeInt64 is a 64-bit signed integer
	TypeInt64
	// TypeBool is a boolean
	TypeBool
	// TypeFloat64 is a 64-bit IEEE float
	TypeFloat64
	// TypeDate is a calendar date without time of day
	TypeDate
	// TypeTimestamp is a date plus time of day with microsecond precision
	TypeTimestamp
	// TypeInterval is a signed time interval of months, days and microseconds
	TypeInterval
	// TypeString is UTF-8 text
	TypeString

	// TypeNode is a graph node value. Not exportable.
	TypeNode
	// TypeRel is a graph relationship value. Not exportable.
	TypeRel
	// TypeList is a variable-length list. Not exportable.
	TypeList
	// TypeStruct is a nested record. Not exportable.
	TypeStruct
)

var typeIDNames = map[TypeID]string{
	TypeUnknown:   "UNKNOWN",
	TypeInt64:     "INT64",
	TypeBool:      "BOOL",
	TypeFloat64:   "DOUBLE",
	TypeDate:      "DATE",
	TypeTimestamp: "TIMESTAMP",
	TypeInterval:  "INTERVAL",
	TypeString:    "STRING",
	TypeNode:      "NODE",
	TypeRel:       "REL",
	TypeList:      "LIST",
	TypeStruct:    "STRUCT",
}

func (id TypeID) String() string {
	if name, ok := typeIDNames[id]; ok {
		return name
	}
	return "UNKNOWN"
}

// TypeDescriptor describes the static type of one result column. It is known
// before any row is read and never changes for the lifetime of a result.
type TypeDescriptor struct {
	ID TypeID
	// SourceName is the type name reported by the producer, e.g. "INT8" or
	// "TIMESTAMP_NTZ". Informational only.
	SourceName string
}

var (
	Int64Type     = TypeDescriptor{ID: TypeInt64}
	BoolType      = TypeDescriptor{ID: TypeBool}
	Float64Type   = TypeDescriptor{ID: TypeFloat64}
	DateType      = TypeDescriptor{ID: TypeDate}
	TimestampType = TypeDescriptor{ID: TypeTimestamp}
	IntervalType  = TypeDescriptor{ID: TypeInterval}
	StringType    = TypeDescriptor{ID: TypeString}
	UnknownType   = TypeDescriptor{ID: TypeUnknown}
)

func (td TypeDescriptor) String() string {
	if td.SourceName != "" && !strings.EqualFold(td.SourceName, td.ID.String()) {
		return td.ID.String() + "(" + td.SourceName + ")"
	}
	return td.ID.String()
}

// typeAliases maps type names used by databases and configuration files to
// type IDs. Keys are upper case.
var typeAliases = map[string]TypeID{
	"INT64":         TypeInt64,
	"BIGINT":        TypeInt64,
	"INT":           TypeInt64,
	"INTEGER":       TypeInt64,
	"INT8":          TypeInt64,
	"INT4":          TypeInt64,
	"INT2":          TypeInt64,
	"SMALLINT":      TypeInt64,
	"TINYINT":       TypeInt64,
	"MEDIUMINT":     TypeInt64,
	"SERIAL":        TypeInt64,
	"BIGSERIAL":     TypeInt64,
	"BOOL":          TypeBool,
	"BOOLEAN":       TypeBool,
	"DOUBLE":        TypeFloat64,
	"FLOAT64":       TypeFloat64,
	"FLOAT":         TypeFloat64,
	"FLOAT4":        TypeFloat64,
	"FLOAT8":        TypeFloat64,
	"REAL":          TypeFloat64,
	"DATE":          TypeDate,
	"TIMESTAMP":     TypeTimestamp,
	"TIMESTAMPTZ":   TypeTimestamp,
	"DATETIME":      TypeTimestamp,
	"TIMESTAMP_NTZ": TypeTimestamp,
	"TIMESTAMP_LTZ": TypeTimestamp,
	"TIMESTAMP_TZ":  TypeTimestamp,
	"INTERVAL":      TypeInterval,
	"STRING":        TypeString,
	"TEXT":          TypeString,
	"VARCHAR":       TypeString,
	"CHAR":          TypeString,
	"BPCHAR":        TypeString,
	"NAME":          TypeString,
	"UUID":          TypeString,
	"NVARCHAR":      TypeString,
	"LONGTEXT":      TypeString,
	"MEDIUMTEXT":    TypeString,
	"TINYTEXT":      TypeString,
	"NODE":          TypeNode,
	"REL":           TypeRel,
	"LIST":          TypeList,
	"ARRAY":         TypeList,
	"STRUCT":        TypeStruct,
	"OBJECT":        TypeStruct,
}

// ParseTypeName resolves a database or configuration type name to a
// descriptor. Names are case-insensitive and any parenthesized length or
// precision suffix is ignored, so "varchar(255)" resolves to TypeString.
// Unrecognized names resolve to TypeUnknown with SourceName set.
func ParseTypeName(name string) TypeDescriptor {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	if idx := strings.IndexByte(normalized, '('); idx >= 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	id, ok := typeAliases[normalized]
	if !ok {
		id = TypeUnknown
	}
	return TypeDescriptor{ID: id, SourceName: name}
}
