package cursor

import (
	"github.com/ajitpratap0/colexport/pkg/exporterrors"
	"github.com/ajitpratap0/colexport/pkg/types"
)

// SliceCursor serves rows held in memory.
type SliceCursor struct {
	columns []ColumnSpec
	rows    []Row
	pos     int
}

// NewSliceCursor returns a cursor over rows with the given columns.
func NewSliceCursor(columns []ColumnSpec, rows []Row) *SliceCursor {
	return &SliceCursor{columns: columns, rows: rows}
}

func (c *SliceCursor) ColumnCount() int { return len(c.columns) }

func (c *SliceCursor) ColumnType(i int) types.TypeDescriptor { return c.columns[i].Type }

func (c *SliceCursor) ColumnName(i int) string { return c.columns[i].Name }

func (c *SliceCursor) HasNext() bool { return c.pos < len(c.rows) }

func (c *SliceCursor) Next() (Row, error) {
	if c.pos >= len(c.rows) {
		return nil, exporterrors.New(exporterrors.ErrorTypeInternal, "next called on exhausted cursor")
	}
	row := c.rows[c.pos]
	c.pos++
	return row, nil
}

// Reset rewinds the cursor to the first row.
func (c *SliceCursor) Reset() { c.pos = 0 }
