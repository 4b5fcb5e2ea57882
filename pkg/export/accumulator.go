package export

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/ajitpratap0/colexport/pkg/cursor"
	"github.com/ajitpratap0/colexport/pkg/exporterrors"
	"github.com/ajitpratap0/colexport/pkg/metrics"
	"github.com/ajitpratap0/colexport/pkg/observability"
	"github.com/ajitpratap0/colexport/pkg/types"
)

// Accumulator concatenates batches of one schema into a Table.
type Accumulator struct {
	schema  *arrow.Schema
	descs   []types.TypeDescriptor
	batches []*Batch
	rows    int64
}

// NewAccumulator returns an accumulator for batches with the given schema.
func NewAccumulator(schema *arrow.Schema) *Accumulator {
	return &Accumulator{schema: schema}
}

// Append takes ownership of b. A batch whose schema differs from the
// accumulator's is an internal consistency fault; b is left with the caller.
func (acc *Accumulator) Append(b *Batch) error {
	if !acc.schema.Equal(b.Schema()) {
		return exporterrors.New(exporterrors.ErrorTypeInternal, "batch schema does not match table schema").
			WithDetail("expected", acc.schema.String()).
			WithDetail("actual", b.Schema().String()).
			WithDetail("batch", len(acc.batches))
	}
	if acc.descs == nil {
		acc.descs = b.Descriptors()
	}
	acc.batches = append(acc.batches, b)
	acc.rows += int64(b.NumRows())
	return nil
}

// NumRows returns the rows accumulated so far.
func (acc *Accumulator) NumRows() int64 { return acc.rows }

// Table hands the accumulated batches over to a Table. The accumulator is
// empty afterwards.
func (acc *Accumulator) Table() *Table {
	t := &Table{
		schema:  acc.schema,
		descs:   acc.descs,
		batches: acc.batches,
		rows:    acc.rows,
	}
	acc.batches = nil
	acc.descs = nil
	acc.rows = 0
	return t
}

// release frees batches appended so far.
func (acc *Accumulator) release() {
	for _, b := range acc.batches {
		b.Release()
	}
	acc.batches = nil
	acc.rows = 0
}

// Accumulate drains a into a Table. On error every batch read so far is
// released.
func Accumulate(ctx context.Context, a *Assembler) (*Table, error) {
	acc := NewAccumulator(a.Schema())
	for batch, err := range a.Batches(ctx) {
		if err != nil {
			acc.release()
			return nil, err
		}
		if err := acc.Append(batch); err != nil {
			batch.Release()
			acc.release()
			return nil, err
		}
	}
	return acc.Table(), nil
}

// ToTable exports every row of cur into one Table with batches of at most
// capacity rows.
func ToTable(ctx context.Context, cur cursor.ResultCursor, capacity int, opts ...Option) (t *Table, err error) {
	ctx, span := observability.StartSpan(ctx, "export.table")
	span.SetAttribute("export.capacity", capacity)
	defer func() {
		if t != nil {
			span.SetAttribute("export.rows", t.NumRows())
			span.SetAttribute("export.batches", t.NumBatches())
		}
		span.Finish(err)
	}()

	o := buildOptions(opts)
	span.SetAttribute("export.source", o.source)
	timer := metrics.NewTimer()
	defer func() { o.metrics.ObserveExport(o.source, timer.Stop(), err) }()

	a, err := NewAssembler(cur, capacity, opts...)
	if err != nil {
		return nil, err
	}
	return Accumulate(ctx, a)
}
