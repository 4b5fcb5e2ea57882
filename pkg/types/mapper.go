package types

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/ajitpratap0/colexport/pkg/exporterrors"
)

// WidthKind describes how a column's values are laid out in memory.
type WidthKind int

const (
	// FixedWidth columns store one fixed-size slot per row
	FixedWidth WidthKind = iota
	// BitPacked columns store one bit per row
	BitPacked
	// VariableWidth columns store N+1 offsets plus a byte payload
	VariableWidth
)

func (k WidthKind) String() string {
	switch k {
	case FixedWidth:
		return "fixed"
	case BitPacked:
		return "bit-packed"
	case VariableWidth:
		return "variable"
	default:
		return "unknown"
	}
}

// WidthPolicy is the encoding rule of a target column.
type WidthPolicy struct {
	Kind WidthKind
	// ByteWidth is the slot size for FixedWidth columns, 0 otherwise.
	ByteWidth int
}

// Mapping is the columnar target of one native type.
type Mapping struct {
	Native TypeDescriptor
	Arrow  arrow.DataType
	Width  WidthPolicy
}

var (
	fixed8 = WidthPolicy{Kind: FixedWidth, ByteWidth: 8}
	fixed4 = WidthPolicy{Kind: FixedWidth, ByteWidth: 4}

	// Timestamps are zone-less; values are microseconds since the epoch in UTC.
	TimestampMicros = &arrow.TimestampType{Unit: arrow.Microsecond}
	// Intervals export as signed milliseconds.
	DurationMillis = &arrow.DurationType{Unit: arrow.Millisecond}
)

// MapType returns the Arrow type and width policy for a native column type.
// It is pure and fails with an ErrorTypeUnsupportedType error for any type
// without a columnar equivalent.
func MapType(desc TypeDescriptor) (Mapping, error) {
	m := Mapping{Native: desc}
	switch desc.ID {
	case TypeInt64:
		m.Arrow, m.Width = arrow.PrimitiveTypes.Int64, fixed8
	case TypeBool:
		m.Arrow, m.Width = arrow.FixedWidthTypes.Boolean, WidthPolicy{Kind: BitPacked}
	case TypeFloat64:
		m.Arrow, m.Width = arrow.PrimitiveTypes.Float64, fixed8
	case TypeDate:
		m.Arrow, m.Width = arrow.FixedWidthTypes.Date32, fixed4
	case TypeTimestamp:
		m.Arrow, m.Width = TimestampMicros, fixed8
	case TypeInterval:
		m.Arrow, m.Width = DurationMillis, fixed8
	case TypeString:
		m.Arrow, m.Width = arrow.BinaryTypes.String, WidthPolicy{Kind: VariableWidth}
	default:
		return Mapping{}, exporterrors.New(exporterrors.ErrorTypeUnsupportedType, "no columnar mapping for type").
			WithDetail("type", desc.String())
	}
	return m, nil
}
