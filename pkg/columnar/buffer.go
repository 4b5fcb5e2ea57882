package columnar

import (
	"math"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/ajitpratap0/colexport/pkg/types"
)

// Buffer is a sealed, immutable column of one batch.
type Buffer struct {
	desc types.TypeDescriptor
	arr  arrow.Array
}

// NewBuffer wraps an Arrow array. The buffer takes ownership of arr's
// reference.
func NewBuffer(desc types.TypeDescriptor, arr arrow.Array) *Buffer {
	return &Buffer{desc: desc, arr: arr}
}

// Type returns the Arrow type of the column.
func (b *Buffer) Type() arrow.DataType { return b.arr.DataType() }

// Descriptor returns the native type the column was built from.
func (b *Buffer) Descriptor() types.TypeDescriptor { return b.desc }

// Len returns the number of rows, nulls included.
func (b *Buffer) Len() int { return b.arr.Len() }

// NullN returns the number of null rows.
func (b *Buffer) NullN() int { return b.arr.NullN() }

// IsNull reports whether row i is null.
func (b *Buffer) IsNull(i int) bool { return b.arr.IsNull(i) }

// Value returns row i as a Go value, or nil for a null row.
func (b *Buffer) Value(i int) any { return ValueAt(b.arr, i) }

// ToList returns every row in order, nil marking null rows.
func (b *Buffer) ToList() []any {
	return AppendValues(make([]any, 0, b.arr.Len()), b.arr)
}

// Array returns the underlying Arrow array without retaining it.
func (b *Buffer) Array() arrow.Array { return b.arr }

// Release drops the buffer's reference to the Arrow array.
func (b *Buffer) Release() {
	if b.arr != nil {
		b.arr.Release()
		b.arr = nil
	}
}

// AppendValues appends every row of arr to dst as Go values.
func AppendValues(dst []any, arr arrow.Array) []any {
	for i := 0; i < arr.Len(); i++ {
		dst = append(dst, ValueAt(arr, i))
	}
	return dst
}

// ValueAt converts row i of an exported array to a Go value. Nulls are
// returned as nil and their placeholder slots are never read.
//
//	int64      -> int64
//	bool       -> bool
//	float64    -> float64
//	date32     -> types.Date
//	timestamp  -> time.Time (UTC)
//	duration   -> time.Duration, or arrow.Duration in the column's unit when
//	              the value is beyond time.Duration's range (about 292 years)
//	utf8       -> string
func ValueAt(arr arrow.Array, i int) any {
	if arr.IsNull(i) {
		return nil
	}

	switch a := arr.(type) {
	case *array.Int64:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.Float64:
		return a.Value(i)
	case *array.Date32:
		return types.Date(a.Value(i))
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit)
	case *array.Duration:
		unit := a.DataType().(*arrow.DurationType).Unit
		v := a.Value(i)
		if limit := int64(math.MaxInt64) / int64(unit.Multiplier()); int64(v) > limit || int64(v) < -limit {
			return v
		}
		return time.Duration(v) * unit.Multiplier()
	case *array.String:
		// Value aliases the array's payload; copy so the result outlives Release.
		return strings.Clone(a.Value(i))
	default:
		return a.ValueStr(i)
	}
}
