package columnar

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/colexport/pkg/exporterrors"
	"github.com/ajitpratap0/colexport/pkg/types"
)

// Builder accumulates one column of one batch.
type Builder struct {
	mapping  types.Mapping
	builder  array.Builder
	capacity int
	sealed   bool
}

// NewBuilder creates a builder for a column of the given native type with
// room for capacity rows.
func NewBuilder(mem memory.Allocator, desc types.TypeDescriptor, capacity int) (*Builder, error) {
	mapping, err := types.MapType(desc)
	if err != nil {
		return nil, err
	}
	return NewBuilderForMapping(mem, mapping, capacity)
}

// NewBuilderForMapping is NewBuilder for a type that was already mapped.
func NewBuilderForMapping(mem memory.Allocator, mapping types.Mapping, capacity int) (*Builder, error) {
	if capacity < 1 {
		return nil, exporterrors.New(exporterrors.ErrorTypeInvalidCapacity, "builder capacity must be positive").
			WithDetail("capacity", capacity)
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	b := array.NewBuilder(mem, mapping.Arrow)
	b.Reserve(capacity)

	return &Builder{
		mapping:  mapping,
		builder:  b,
		capacity: capacity,
	}, nil
}

// Append adds one row. A nil value appends a null.
func (b *Builder) Append(v any) error {
	if b.sealed {
		return exporterrors.New(exporterrors.ErrorTypeBuilderSealed, "append to sealed builder").
			WithDetail("type", b.mapping.Native.String())
	}
	if b.builder.Len() >= b.capacity {
		return exporterrors.New(exporterrors.ErrorTypeInternal, "builder capacity exceeded").
			WithDetail("capacity", b.capacity)
	}

	if v == nil {
		b.builder.AppendNull()
		return nil
	}

	ok := true
	switch bb := b.builder.(type) {
	case *array.Int64Builder:
		var x int64
		if x, ok = v.(int64); ok {
			bb.Append(x)
		}
	case *array.BooleanBuilder:
		var x bool
		if x, ok = v.(bool); ok {
			bb.Append(x)
		}
	case *array.Float64Builder:
		var x float64
		if x, ok = v.(float64); ok {
			bb.Append(x)
		}
	case *array.Date32Builder:
		var x types.Date
		if x, ok = v.(types.Date); ok {
			bb.Append(arrow.Date32(x))
		}
	case *array.TimestampBuilder:
		var x types.Timestamp
		if x, ok = v.(types.Timestamp); ok {
			bb.Append(arrow.Timestamp(x))
		}
	case *array.DurationBuilder:
		var x types.Interval
		if x, ok = v.(types.Interval); ok {
			ms, err := x.Milliseconds()
			if err != nil {
				return err
			}
			bb.Append(arrow.Duration(ms))
		}
	case *array.StringBuilder:
		var x string
		if x, ok = v.(string); ok {
			bb.Append(x)
		}
	default:
		return exporterrors.New(exporterrors.ErrorTypeInternal, "no append rule for builder").
			WithDetail("builder", fmt.Sprintf("%T", b.builder))
	}

	if !ok {
		return exporterrors.New(exporterrors.ErrorTypeData, "value does not match column type").
			WithDetail("type", b.mapping.Native.String()).
			WithDetail("value_type", fmt.Sprintf("%T", v))
	}
	return nil
}

// Len returns the number of rows appended so far.
func (b *Builder) Len() int {
	if b.sealed {
		return 0
	}
	return b.builder.Len()
}

// CapacityRemaining returns how many more rows can be appended.
func (b *Builder) CapacityRemaining() int {
	if b.sealed {
		return 0
	}
	return b.capacity - b.builder.Len()
}

// Mapping returns the columnar mapping of the column.
func (b *Builder) Mapping() types.Mapping {
	return b.mapping
}

// Seal freezes the accumulated rows into an immutable Buffer. The builder
// cannot be used afterwards.
func (b *Builder) Seal() (*Buffer, error) {
	if b.sealed {
		return nil, exporterrors.New(exporterrors.ErrorTypeBuilderSealed, "builder already sealed").
			WithDetail("type", b.mapping.Native.String())
	}
	b.sealed = true
	arr := b.builder.NewArray()
	b.builder.Release()
	return NewBuffer(b.mapping.Native, arr), nil
}

// Release discards an unsealed builder. It is a no-op after Seal.
func (b *Builder) Release() {
	if b.sealed {
		return
	}
	b.sealed = true
	b.builder.Release()
}
