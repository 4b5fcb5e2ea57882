// Package cursor defines the row-at-a-time input boundary of the export
// engine and adapters that produce it from in-memory rows, database/sql
// result sets and newline-delimited JSON.
package cursor

import (
	"fmt"

	"github.com/ajitpratap0/colexport/pkg/types"
)

// Row is one result row: one value per column, nil for null. Values are
// int64, bool, float64, types.Date, types.Timestamp, types.Interval or string
// according to the column type.
type Row []any

// ResultCursor is a finished, ordered stream of typed rows. Column metadata
// is available before the first row is read and never changes.
//
// A cursor is single-pass and must be read from one goroutine at a time.
type ResultCursor interface {
	ColumnCount() int
	ColumnType(i int) types.TypeDescriptor
	HasNext() bool
	Next() (Row, error)
}

// ColumnNamer is implemented by cursors that know their column names.
type ColumnNamer interface {
	ColumnName(i int) string
}

// ErrReporter is implemented by cursors whose HasNext can stop early because
// of a read failure. Err returns that failure, or nil after a clean end.
type ErrReporter interface {
	Err() error
}

// ColumnSpec names and types one column.
type ColumnSpec struct {
	Name string
	Type types.TypeDescriptor
}

// ColumnName returns the name of column i, falling back to column_<i> when
// the cursor does not name its columns.
func ColumnName(c ResultCursor, i int) string {
	if n, ok := c.(ColumnNamer); ok {
		if name := n.ColumnName(i); name != "" {
			return name
		}
	}
	return fmt.Sprintf("column_%d", i)
}

// Specs returns the name and type of every column of c.
func Specs(c ResultCursor) []ColumnSpec {
	specs := make([]ColumnSpec, c.ColumnCount())
	for i := range specs {
		specs[i] = ColumnSpec{Name: ColumnName(c, i), Type: c.ColumnType(i)}
	}
	return specs
}
