// Package colexport converts finished query results into Arrow columnar data.
//
// A result arrives as a cursor: column metadata up front, then rows one at a
// time. colexport maps each column type to a fixed Arrow type, fills one
// column builder per column, and emits record batches of a bounded row
// capacity. Batches can be consumed one at a time, collected into a table,
// or written as Arrow IPC to a local file, S3 or Google Cloud Storage.
//
// # Type Mapping
//
//	INT64     -> int64
//	BOOL      -> bool
//	DOUBLE    -> float64
//	DATE      -> date32 (days since epoch)
//	TIMESTAMP -> timestamp[us], no zone
//	INTERVAL  -> duration[ms], months counted as 30 days
//	STRING    -> utf8
//
// Graph types (NODE, REL), nested types (LIST, STRUCT) and unknown types are
// rejected before any row is read.
//
// # Quick Start
//
// Export an in-memory result as a table:
//
//	import (
//	    "context"
//
//	    "github.com/ajitpratap0/colexport/pkg/cursor"
//	    "github.com/ajitpratap0/colexport/pkg/export"
//	    "github.com/ajitpratap0/colexport/pkg/types"
//	)
//
//	cur := cursor.NewSliceCursor(
//	    []cursor.ColumnSpec{
//	        {Name: "name", Type: types.StringType},
//	        {Name: "age", Type: types.Int64Type},
//	    },
//	    []cursor.Row{{"Alice", int64(35)}, {"Bob", nil}},
//	)
//
//	table, err := export.ToTable(context.Background(), cur, 1024)
//	if err != nil {
//	    return err
//	}
//	defer table.Release()
//
// Stream batches instead of collecting them:
//
//	asm, err := export.NewAssembler(cur, 1024)
//	if err != nil {
//	    return err
//	}
//	for batch, err := range asm.Batches(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    // use batch.Record()
//	    batch.Release()
//	}
//
// # Packages
//
//   - pkg/types: logical column types, temporal values and the Arrow mapping
//   - pkg/columnar: single-column builders and sealed buffers
//   - pkg/cursor: the cursor interface plus slice, database/sql and JSON lines cursors
//   - pkg/export: batch assembly and table accumulation
//   - pkg/formats/arrowipc: Arrow IPC stream and file encoding
//   - pkg/compression: whole-output compression
//   - pkg/sink: file, S3 and GCS destinations
//   - pkg/config, pkg/logger, pkg/metrics, pkg/observability: ambient services
//
// The colexport command in cmd/colexport wires these together.
package colexport
