// Package export turns a row cursor into a sequence of Arrow record batches
// and, on request, into one table.
//
// An Assembler pulls rows from a cursor.ResultCursor and fans each value out
// to one columnar.Builder per column. Every capacity rows, or when the cursor
// runs dry, the builders are sealed into a Batch. A cursor with no rows
// produces exactly one empty batch so the schema is always observable.
//
//	asm, err := export.NewAssembler(cur, 1024, export.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	for batch, err := range asm.Batches(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    consume(batch)
//	    batch.Release()
//	}
//
// An Assembler and its cursor must be used from one goroutine at a time.
package export

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"go.uber.org/zap"

	"github.com/ajitpratap0/colexport/pkg/columnar"
	"github.com/ajitpratap0/colexport/pkg/cursor"
	"github.com/ajitpratap0/colexport/pkg/exporterrors"
	"github.com/ajitpratap0/colexport/pkg/types"
)

// State is the lifecycle position of an Assembler.
type State int

const (
	StateIdle State = iota
	StateAssembling
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAssembling:
		return "assembling"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Assembler produces batches of at most Capacity rows from a cursor.
type Assembler struct {
	cur      cursor.ResultCursor
	capacity int
	schema   *arrow.Schema
	mappings []types.Mapping
	opts     options
	logger   *zap.Logger

	state   State
	batches int
	rows    int64
	started time.Time
}

// NewAssembler validates capacity and the column types of cur and builds the
// output schema. No rows are read.
func NewAssembler(cur cursor.ResultCursor, capacity int, opts ...Option) (*Assembler, error) {
	if capacity < 1 {
		return nil, exporterrors.New(exporterrors.ErrorTypeInvalidCapacity, "batch capacity must be positive").
			WithDetail("capacity", capacity)
	}

	o := buildOptions(opts)

	n := cur.ColumnCount()
	mappings := make([]types.Mapping, n)
	fields := make([]arrow.Field, n)
	for i := 0; i < n; i++ {
		name := cursor.ColumnName(cur, i)
		m, err := types.MapType(cur.ColumnType(i))
		if err != nil {
			return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeUnsupportedType, "column has no columnar mapping").
				WithDetail("column", name).
				WithDetail("index", i)
		}
		mappings[i] = m
		fields[i] = arrow.Field{Name: name, Type: m.Arrow, Nullable: true}
	}

	return &Assembler{
		cur:      cur,
		capacity: capacity,
		schema:   arrow.NewSchema(fields, nil),
		mappings: mappings,
		opts:     o,
		logger:   o.logger.With(zap.String("source", o.source), zap.Int("capacity", capacity)),
	}, nil
}

// Schema returns the schema every batch carries.
func (a *Assembler) Schema() *arrow.Schema { return a.schema }

// NumColumns returns the number of columns per batch.
func (a *Assembler) NumColumns() int { return len(a.mappings) }

// Capacity returns the maximum number of rows per batch.
func (a *Assembler) Capacity() int { return a.capacity }

// State returns the current lifecycle state.
func (a *Assembler) State() State { return a.state }

// HasNext reports whether Next will produce another batch.
func (a *Assembler) HasNext() bool { return a.state != StateDone }

// Next assembles the next batch. It returns an error wrapping
// exporterrors.ErrSequenceExhausted once the last batch was returned. Any
// other error ends the sequence.
func (a *Assembler) Next(ctx context.Context) (*Batch, error) {
	switch a.state {
	case StateDone:
		return nil, exporterrors.New(exporterrors.ErrorTypeSequenceExhausted, "batch sequence already finished").
			WithDetail("batches", a.batches)
	case StateIdle:
		a.state = StateAssembling
		a.started = time.Now()
		a.logger.Debug("export started", zap.Int("columns", len(a.mappings)))
	}

	builders, err := a.newBuilders()
	if err != nil {
		return nil, a.fail(err)
	}

	n, exhausted, err := a.fill(ctx, builders)
	if err != nil {
		releaseBuilders(builders)
		return nil, a.fail(err)
	}

	buffers := make([]*columnar.Buffer, len(builders))
	for i, b := range builders {
		buf, err := b.Seal()
		if err != nil {
			releaseBuffers(buffers[:i])
			releaseBuilders(builders[i:])
			return nil, a.fail(err)
		}
		buffers[i] = buf
	}

	batch := newBatch(a.schema, buffers, n)
	a.batches++
	a.rows += int64(n)
	a.opts.metrics.RecordBatch(a.opts.source, n)
	a.logger.Debug("batch emitted",
		zap.Int("batch", a.batches),
		zap.Int("rows", n))

	if exhausted {
		a.state = StateDone
		a.logger.Info("export finished",
			zap.Int("batches", a.batches),
			zap.Int64("rows", a.rows),
			zap.Duration("elapsed", time.Since(a.started)))
	}
	return batch, nil
}

// fill reads up to capacity rows into builders. exhausted is true when the
// cursor has no rows left after the last one read.
func (a *Assembler) fill(ctx context.Context, builders []*columnar.Builder) (n int, exhausted bool, err error) {
	for n < a.capacity {
		if err := ctx.Err(); err != nil {
			return n, false, err
		}
		more, err := a.more()
		if err != nil {
			return n, false, err
		}
		if !more {
			return n, true, nil
		}

		row, err := a.cur.Next()
		if err != nil {
			return n, false, exporterrors.Wrap(err, errorType(err, exporterrors.ErrorTypeConnection), "failed to read row").
				WithDetail("row", a.rows+int64(n))
		}
		if len(row) != len(builders) {
			return n, false, exporterrors.New(exporterrors.ErrorTypeData, "row width does not match column count").
				WithDetail("row", a.rows+int64(n)).
				WithDetail("width", len(row)).
				WithDetail("columns", len(builders))
		}
		for i, v := range row {
			if err := builders[i].Append(v); err != nil {
				return n, false, exporterrors.Wrap(err, errorType(err, exporterrors.ErrorTypeData), "failed to append value").
					WithDetail("row", a.rows+int64(n)).
					WithDetail("column", a.schema.Field(i).Name)
			}
		}
		n++
	}

	more, err := a.more()
	if err != nil {
		return n, false, err
	}
	return n, !more, nil
}

// more reports whether the cursor has another row, surfacing a read failure
// that ended it early.
func (a *Assembler) more() (bool, error) {
	if a.cur.HasNext() {
		return true, nil
	}
	if r, ok := a.cur.(cursor.ErrReporter); ok {
		if err := r.Err(); err != nil {
			return false, exporterrors.Wrap(err, errorType(err, exporterrors.ErrorTypeConnection), "cursor failed")
		}
	}
	return false, nil
}

func (a *Assembler) newBuilders() ([]*columnar.Builder, error) {
	builders := make([]*columnar.Builder, len(a.mappings))
	for i, m := range a.mappings {
		b, err := columnar.NewBuilderForMapping(a.opts.mem, m, a.capacity)
		if err != nil {
			releaseBuilders(builders[:i])
			return nil, err
		}
		builders[i] = b
	}
	return builders, nil
}

func (a *Assembler) fail(err error) error {
	a.state = StateDone
	a.logger.Error("export aborted",
		zap.Int("batches", a.batches),
		zap.Int64("rows", a.rows),
		zap.Error(err))
	return err
}

// Batches returns the remaining batches as a lazy sequence. Rows are only
// pulled while the loop runs; breaking out leaves the rest unread. The
// sequence ends after the first error.
func (a *Assembler) Batches(ctx context.Context) iter.Seq2[*Batch, error] {
	return func(yield func(*Batch, error) bool) {
		for a.HasNext() {
			batch, err := a.Next(ctx)
			if !yield(batch, err) || err != nil {
				return
			}
		}
	}
}

// errorType returns the type of the outermost structured error in err, or
// fallback for plain errors.
func errorType(err error, fallback exporterrors.ErrorType) exporterrors.ErrorType {
	var e *exporterrors.Error
	if errors.As(err, &e) {
		return e.Type
	}
	return fallback
}

func releaseBuilders(builders []*columnar.Builder) {
	for _, b := range builders {
		if b != nil {
			b.Release()
		}
	}
}

func releaseBuffers(buffers []*columnar.Buffer) {
	for _, b := range buffers {
		b.Release()
	}
}
