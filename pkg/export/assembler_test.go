package export

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/colexport/pkg/cursor"
	"github.com/ajitpratap0/colexport/pkg/exporterrors"
	"github.com/ajitpratap0/colexport/pkg/metrics"
	"github.com/ajitpratap0/colexport/pkg/types"
)

func checkedAllocator(t *testing.T) *memory.CheckedAllocator {
	t.Helper()
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { mem.AssertSize(t, 0) })
	return mem
}

func collect(t *testing.T, a *Assembler) []*Batch {
	t.Helper()
	var batches []*Batch
	for b, err := range a.Batches(context.Background()) {
		require.NoError(t, err)
		batches = append(batches, b)
	}
	return batches
}

func releaseAll(batches []*Batch) {
	for _, b := range batches {
		b.Release()
	}
}

func TestAssemblerPersonSingleBatch(t *testing.T) {
	mem := checkedAllocator(t)

	a, err := NewAssembler(personCursor(), 8,
		WithAllocator(mem), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, 7, a.NumColumns())
	assert.Equal(t, StateIdle, a.State())

	batches := collect(t, a)
	defer releaseAll(batches)

	require.Len(t, batches, 1)
	b := batches[0]
	assert.Equal(t, 8, b.NumRows())
	require.Equal(t, 7, b.NumColumns())

	wantTypes := []arrow.DataType{
		arrow.PrimitiveTypes.Int64,
		arrow.FixedWidthTypes.Boolean,
		arrow.PrimitiveTypes.Float64,
		arrow.FixedWidthTypes.Date32,
		&arrow.TimestampType{Unit: arrow.Microsecond},
		&arrow.DurationType{Unit: arrow.Millisecond},
		arrow.BinaryTypes.String,
	}
	for i := 0; i < b.NumColumns(); i++ {
		col := b.Column(i)
		assert.True(t, arrow.TypeEqual(wantTypes[i], col.Type()), "column %d is %s", i, col.Type())
		assert.Equal(t, 8, col.Len())
		assert.Equal(t, personWant[i], col.ToList(), "column %s", personColumns[i].Name)
	}

	assert.Equal(t, StateDone, a.State())
	assert.False(t, a.HasNext())
}

func TestAssemblerSmallCapacity(t *testing.T) {
	mem := checkedAllocator(t)

	a, err := NewAssembler(personCursor(), 4, WithAllocator(mem))
	require.NoError(t, err)

	batches := collect(t, a)
	defer releaseAll(batches)

	require.Len(t, batches, 2)
	for i := range personColumns {
		var got []any
		for _, b := range batches {
			assert.Equal(t, 4, b.NumRows())
			got = append(got, b.Column(i).ToList()...)
		}
		assert.Equal(t, personWant[i], got)
	}
}

func TestAssemblerBatchCounts(t *testing.T) {
	tests := []struct {
		rows     int
		capacity int
		want     []int
	}{
		{rows: 0, capacity: 3, want: []int{0}},
		{rows: 1, capacity: 1, want: []int{1}},
		{rows: 8, capacity: 3, want: []int{3, 3, 2}},
		{rows: 8, capacity: 8, want: []int{8}},
		{rows: 8, capacity: 100, want: []int{8}},
		{rows: 11, capacity: 5, want: []int{5, 5, 1}},
	}

	for _, tt := range tests {
		rows := make([]cursor.Row, tt.rows)
		for i := range rows {
			rows[i] = cursor.Row{int64(i)}
		}
		cur := cursor.NewSliceCursor([]cursor.ColumnSpec{{Name: "n", Type: types.Int64Type}}, rows)

		a, err := NewAssembler(cur, tt.capacity)
		require.NoError(t, err)

		var got []int
		var values []any
		for b, err := range a.Batches(context.Background()) {
			require.NoError(t, err)
			got = append(got, b.NumRows())
			values = append(values, b.Column(0).ToList()...)
			b.Release()
		}
		assert.Equal(t, tt.want, got, "rows=%d capacity=%d", tt.rows, tt.capacity)
		for i, v := range values {
			assert.Equal(t, int64(i), v)
		}
	}
}

func TestAssemblerEmptyResultKeepsSchema(t *testing.T) {
	mem := checkedAllocator(t)

	a, err := NewAssembler(cursor.NewSliceCursor(personColumns, nil), 4, WithAllocator(mem))
	require.NoError(t, err)

	b, err := a.Next(context.Background())
	require.NoError(t, err)
	defer b.Release()

	assert.Equal(t, 0, b.NumRows())
	assert.Equal(t, 7, b.NumColumns())
	assert.True(t, arrow.TypeEqual(arrow.FixedWidthTypes.Date32, b.Column(3).Type()))
	assert.Equal(t, "lastJobDuration", b.Schema().Field(5).Name)
	assert.Empty(t, b.Column(0).ToList())

	_, err = a.Next(context.Background())
	assert.True(t, errors.Is(err, exporterrors.ErrSequenceExhausted))
}

func TestAssemblerSequenceExhausted(t *testing.T) {
	a, err := NewAssembler(personCursor(), 8)
	require.NoError(t, err)

	b, err := a.Next(context.Background())
	require.NoError(t, err)
	b.Release()

	for i := 0; i < 2; i++ {
		_, err = a.Next(context.Background())
		assert.True(t, errors.Is(err, exporterrors.ErrSequenceExhausted))
		assert.False(t, exporterrors.IsFatal(err))
	}

	var n int
	for range a.Batches(context.Background()) {
		n++
	}
	assert.Zero(t, n)
}

func TestNewAssemblerInvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		_, err := NewAssembler(personCursor(), capacity)
		assert.True(t, errors.Is(err, exporterrors.ErrInvalidCapacity), "capacity %d", capacity)
	}
}

type countingCursor struct {
	*cursor.SliceCursor
	reads int
}

func (c *countingCursor) Next() (cursor.Row, error) {
	c.reads++
	return c.SliceCursor.Next()
}

func TestNewAssemblerUnsupportedTypeReadsNothing(t *testing.T) {
	cur := &countingCursor{SliceCursor: cursor.NewSliceCursor([]cursor.ColumnSpec{
		{Name: "id", Type: types.Int64Type},
		{Name: "a", Type: types.TypeDescriptor{ID: types.TypeNode, SourceName: "NODE"}},
	}, []cursor.Row{{int64(1), nil}})}

	_, err := NewAssembler(cur, 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, exporterrors.ErrUnsupportedType))
	assert.Contains(t, err.Error(), "column has no columnar mapping")
	assert.Zero(t, cur.reads)
}

func TestAssemblerEarlyBreak(t *testing.T) {
	cur := &countingCursor{SliceCursor: personCursor()}
	a, err := NewAssembler(cur, 2)
	require.NoError(t, err)

	for b, err := range a.Batches(context.Background()) {
		require.NoError(t, err)
		b.Release()
		break
	}
	assert.Equal(t, 2, cur.reads)
	assert.Equal(t, StateAssembling, a.State())
	assert.True(t, a.HasNext())

	b, err := a.Next(context.Background())
	require.NoError(t, err)
	defer b.Release()
	assert.Equal(t, []any{int64(45), int64(20)}, b.Column(0).ToList())
}

func TestAssemblerContextCancelled(t *testing.T) {
	a, err := NewAssembler(personCursor(), 4)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateDone, a.State())
}

func TestAssemblerValueMismatchAborts(t *testing.T) {
	mem := checkedAllocator(t)
	cur := cursor.NewSliceCursor([]cursor.ColumnSpec{
		{Name: "born", Type: types.DateType},
	}, []cursor.Row{
		{types.DateFromYMD(1900, 1, 1)},
		{types.TimestampFromParts(1900, 1, 1, 0, 0, 0, 0)},
	})

	a, err := NewAssembler(cur, 4, WithAllocator(mem))
	require.NoError(t, err)

	_, err = a.Next(context.Background())
	assert.True(t, errors.Is(err, exporterrors.ErrData))
	assert.False(t, a.HasNext())
}

func TestAssemblerRowWidthMismatch(t *testing.T) {
	cur := cursor.NewSliceCursor(mixedColumns, []cursor.Row{{"person", "Alice"}})
	a, err := NewAssembler(cur, 4)
	require.NoError(t, err)

	_, err = a.Next(context.Background())
	assert.True(t, errors.Is(err, exporterrors.ErrData))
}

type failingCursor struct {
	*cursor.SliceCursor
	err error
}

func (c *failingCursor) Err() error { return c.err }

func TestAssemblerSurfacesCursorError(t *testing.T) {
	cur := &failingCursor{
		SliceCursor: cursor.NewSliceCursor(mixedColumns, mixedRows()[:3]),
		err:         errors.New("connection reset"),
	}
	a, err := NewAssembler(cur, 2)
	require.NoError(t, err)

	b, err := a.Next(context.Background())
	require.NoError(t, err)
	b.Release()

	_, err = a.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.True(t, exporterrors.IsType(err, exporterrors.ErrorTypeConnection))
	assert.False(t, a.HasNext())
}

func TestAssemblerRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	a, err := NewAssembler(personCursor(), 3, WithMetrics(collector), WithSource("test"))
	require.NoError(t, err)
	releaseAll(collect(t, a))

	expected := `
# HELP colexport_batches_emitted_total Total number of sealed columnar batches
# TYPE colexport_batches_emitted_total counter
colexport_batches_emitted_total{source="test"} 3
# HELP colexport_rows_exported_total Total number of result rows exported into columnar batches
# TYPE colexport_rows_exported_total counter
colexport_rows_exported_total{source="test"} 8
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"colexport_batches_emitted_total", "colexport_rows_exported_total"))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "assembling", StateAssembling.String())
	assert.Equal(t, "done", StateDone.String())
}
