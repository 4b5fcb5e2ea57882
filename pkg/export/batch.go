package export

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/ajitpratap0/colexport/pkg/columnar"
	"github.com/ajitpratap0/colexport/pkg/types"
)

// Batch is one sealed group of columns sharing a row count. A Batch is
// immutable and owned by whoever received it; call Release when done.
type Batch struct {
	rec     arrow.Record
	columns []*columnar.Buffer
}

// newBatch takes ownership of buffers.
func newBatch(schema *arrow.Schema, buffers []*columnar.Buffer, rows int) *Batch {
	arrs := make([]arrow.Array, len(buffers))
	for i, buf := range buffers {
		arrs[i] = buf.Array()
	}
	return &Batch{
		rec:     array.NewRecord(schema, arrs, int64(rows)),
		columns: buffers,
	}
}

// NumRows returns the number of rows in the batch.
func (b *Batch) NumRows() int { return int(b.rec.NumRows()) }

// NumColumns returns the number of columns in the batch.
func (b *Batch) NumColumns() int { return len(b.columns) }

// Schema returns the Arrow schema shared by every batch of an export.
func (b *Batch) Schema() *arrow.Schema { return b.rec.Schema() }

// Column returns column i. The buffer is valid until the batch is released.
func (b *Batch) Column(i int) *columnar.Buffer { return b.columns[i] }

// Descriptors returns the native type of every column.
func (b *Batch) Descriptors() []types.TypeDescriptor {
	descs := make([]types.TypeDescriptor, len(b.columns))
	for i, col := range b.columns {
		descs[i] = col.Descriptor()
	}
	return descs
}

// Record returns the batch as an Arrow record without retaining it.
func (b *Batch) Record() arrow.Record { return b.rec }

// Release frees the batch's Arrow memory. It is safe to call more than once.
func (b *Batch) Release() {
	if b.rec == nil {
		return
	}
	b.rec.Release()
	b.rec = nil
	for _, col := range b.columns {
		col.Release()
	}
}
