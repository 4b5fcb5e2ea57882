package export

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/ajitpratap0/colexport/pkg/columnar"
	"github.com/ajitpratap0/colexport/pkg/types"
)

// Table is the ordered concatenation of the batches of one export. Columns
// read as single flat columns across batch boundaries.
type Table struct {
	schema  *arrow.Schema
	descs   []types.TypeDescriptor
	batches []*Batch
	rows    int64
	columns []*Column
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return t.schema.NumFields() }

// NumRows returns the total row count over all batches.
func (t *Table) NumRows() int64 { return t.rows }

// NumBatches returns the number of batches the table was built from.
func (t *Table) NumBatches() int { return len(t.batches) }

// Batch returns batch i. It stays owned by the table.
func (t *Table) Batch(i int) *Batch { return t.batches[i] }

// Schema returns the table schema.
func (t *Table) Schema() *arrow.Schema { return t.schema }

// Column returns column i spanning every batch.
func (t *Table) Column(i int) *Column {
	if t.columns == nil {
		t.columns = make([]*Column, t.schema.NumFields())
	}
	if t.columns[i] == nil {
		chunks := make([]arrow.Array, len(t.batches))
		for j, b := range t.batches {
			chunks[j] = b.Record().Column(i)
		}
		var desc types.TypeDescriptor
		if i < len(t.descs) {
			desc = t.descs[i]
		}
		t.columns[i] = &Column{
			desc:    desc,
			chunked: arrow.NewChunked(t.schema.Field(i).Type, chunks),
		}
	}
	return t.columns[i]
}

// ArrowTable returns the table as an arrow.Table. The caller must release it.
func (t *Table) ArrowTable() arrow.Table {
	recs := make([]arrow.Record, len(t.batches))
	for i, b := range t.batches {
		recs[i] = b.Record()
	}
	return array.NewTableFromRecords(t.schema, recs)
}

// Release frees every batch and column of the table.
func (t *Table) Release() {
	for _, c := range t.columns {
		if c != nil {
			c.chunked.Release()
		}
	}
	t.columns = nil
	for _, b := range t.batches {
		b.Release()
	}
	t.batches = nil
}

// Column is one table column, physically split into per-batch chunks.
type Column struct {
	desc    types.TypeDescriptor
	chunked *arrow.Chunked
}

// Type returns the Arrow type of the column.
func (c *Column) Type() arrow.DataType { return c.chunked.DataType() }

// Descriptor returns the native type the column was built from.
func (c *Column) Descriptor() types.TypeDescriptor { return c.desc }

// Len returns the total number of rows, nulls included.
func (c *Column) Len() int { return c.chunked.Len() }

// NullN returns the total number of null rows.
func (c *Column) NullN() int { return c.chunked.NullN() }

// Chunked returns the underlying chunked array without retaining it.
func (c *Column) Chunked() *arrow.Chunked { return c.chunked }

// ToList returns every row in original order, nil marking null rows.
func (c *Column) ToList() []any {
	out := make([]any, 0, c.chunked.Len())
	for _, chunk := range c.chunked.Chunks() {
		out = columnar.AppendValues(out, chunk)
	}
	return out
}
