package export

import (
	"time"

	"github.com/ajitpratap0/colexport/pkg/cursor"
	"github.com/ajitpratap0/colexport/pkg/types"
)

const longName = "Hubert Blaine Wolfeschlegelsteinhausenbergerdorff"

var personColumns = []cursor.ColumnSpec{
	{Name: "age", Type: types.Int64Type},
	{Name: "isStudent", Type: types.BoolType},
	{Name: "eyeSight", Type: types.Float64Type},
	{Name: "birthdate", Type: types.DateType},
	{Name: "registerTime", Type: types.TimestampType},
	{Name: "lastJobDuration", Type: types.IntervalType},
	{Name: "fName", Type: types.StringType},
}

func hours(h int64) int64 { return h * types.MicrosPerHour }

func personRows() []cursor.Row {
	return []cursor.Row{
		{int64(35), true, 5.0, types.DateFromYMD(1900, 1, 1),
			types.TimestampFromParts(2011, 8, 20, 11, 25, 30, 0),
			types.Interval{Days: 99, Micros: 36334628000}, "Alice"},
		{int64(30), true, 5.1, types.DateFromYMD(1900, 1, 1),
			types.TimestampFromParts(2008, 11, 3, 15, 25, 30, 526),
			types.Interval{Months: 18, Days: 3, Micros: 4800 * types.MicrosPerSecond}, "Bob"},
		{int64(45), false, 5.0, types.DateFromYMD(1940, 6, 22),
			types.TimestampFromParts(1911, 8, 20, 2, 32, 21, 0),
			types.Interval{Micros: 125000}, "Carol"},
		{int64(20), false, 4.8, types.DateFromYMD(1950, 7, 23),
			types.TimestampFromParts(2031, 11, 30, 12, 25, 30, 0),
			types.Interval{Months: 18, Days: 1, Micros: hours(16) + 24000}, "Dan"},
		{int64(20), false, 4.7, types.DateFromYMD(1980, 10, 26),
			types.TimestampFromParts(1976, 12, 23, 11, 21, 42, 0),
			types.Interval{}, "Elizabeth"},
		{int64(25), true, 4.5, types.DateFromYMD(1980, 10, 26),
			types.TimestampFromParts(1972, 7, 31, 13, 22, 30, 678559),
			types.Interval{Months: 67, Days: 6, Micros: 68600 * types.MicrosPerSecond}, "Farooq"},
		{int64(40), false, 4.9, types.DateFromYMD(1980, 10, 26),
			types.TimestampFromParts(1976, 12, 23, 4, 41, 42, 0),
			types.Interval{Micros: 125000}, "Greg"},
		{int64(83), false, 4.9, types.DateFromYMD(1990, 11, 27),
			types.TimestampFromParts(2023, 2, 21, 13, 25, 30, 0),
			types.Interval{Months: 18, Days: 1, Micros: hours(16) + 24000}, longName},
	}
}

func personCursor() *cursor.SliceCursor {
	return cursor.NewSliceCursor(personColumns, personRows())
}

func day(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

// Expected ToList output of each person column.
var personWant = [][]any{
	{int64(35), int64(30), int64(45), int64(20), int64(20), int64(25), int64(40), int64(83)},
	{true, true, false, false, false, true, false, false},
	{5.0, 5.1, 5.0, 4.8, 4.7, 4.5, 4.9, 4.9},
	{
		types.DateFromYMD(1900, 1, 1), types.DateFromYMD(1900, 1, 1),
		types.DateFromYMD(1940, 6, 22), types.DateFromYMD(1950, 7, 23),
		types.DateFromYMD(1980, 10, 26), types.DateFromYMD(1980, 10, 26),
		types.DateFromYMD(1980, 10, 26), types.DateFromYMD(1990, 11, 27),
	},
	{
		time.Date(2011, 8, 20, 11, 25, 30, 0, time.UTC),
		time.Date(2008, 11, 3, 15, 25, 30, 526000, time.UTC),
		time.Date(1911, 8, 20, 2, 32, 21, 0, time.UTC),
		time.Date(2031, 11, 30, 12, 25, 30, 0, time.UTC),
		time.Date(1976, 12, 23, 11, 21, 42, 0, time.UTC),
		time.Date(1972, 7, 31, 13, 22, 30, 678559000, time.UTC),
		time.Date(1976, 12, 23, 4, 41, 42, 0, time.UTC),
		time.Date(2023, 2, 21, 13, 25, 30, 0, time.UTC),
	},
	{
		day(99) + 36334*time.Second + 628*time.Millisecond,
		day(543) + 4800*time.Second,
		125 * time.Millisecond,
		day(541) + 57600*time.Second + 24*time.Millisecond,
		time.Duration(0),
		day(2016) + 68600*time.Second,
		125 * time.Millisecond,
		day(541) + 57600*time.Second + 24*time.Millisecond,
	},
	{"Alice", "Bob", "Carol", "Dan", "Elizabeth", "Farooq", "Greg", longName},
}

var mixedColumns = []cursor.ColumnSpec{
	{Name: "label", Type: types.StringType},
	{Name: "fName", Type: types.StringType},
	{Name: "orgCode", Type: types.Int64Type},
}

func mixedRows() []cursor.Row {
	return []cursor.Row{
		{"person", "Alice", nil},
		{"organisation", nil, int64(325)},
		{"person", "Bob", nil},
		{"person", "Carol", nil},
		{"organisation", nil, int64(934)},
		{"person", "Dan", nil},
		{"organisation", nil, int64(824)},
		{"person", "Elizabeth", nil},
		{"person", "Farooq", nil},
		{"person", "Greg", nil},
		{"person", longName, nil},
	}
}

var mixedWant = [][]any{
	{"person", "organisation", "person", "person", "organisation", "person",
		"organisation", "person", "person", "person", "person"},
	{"Alice", nil, "Bob", "Carol", nil, "Dan", nil, "Elizabeth", "Farooq", "Greg", longName},
	{nil, int64(325), nil, nil, int64(934), nil, int64(824), nil, nil, nil, nil},
}
