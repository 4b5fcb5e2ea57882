package types

import (
	"errors"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/colexport/pkg/exporterrors"
)

func TestMapType(t *testing.T) {
	tests := []struct {
		desc  TypeDescriptor
		arrow arrow.DataType
		width WidthPolicy
	}{
		{Int64Type, arrow.PrimitiveTypes.Int64, WidthPolicy{Kind: FixedWidth, ByteWidth: 8}},
		{BoolType, arrow.FixedWidthTypes.Boolean, WidthPolicy{Kind: BitPacked}},
		{Float64Type, arrow.PrimitiveTypes.Float64, WidthPolicy{Kind: FixedWidth, ByteWidth: 8}},
		{DateType, arrow.FixedWidthTypes.Date32, WidthPolicy{Kind: FixedWidth, ByteWidth: 4}},
		{TimestampType, &arrow.TimestampType{Unit: arrow.Microsecond}, WidthPolicy{Kind: FixedWidth, ByteWidth: 8}},
		{IntervalType, &arrow.DurationType{Unit: arrow.Millisecond}, WidthPolicy{Kind: FixedWidth, ByteWidth: 8}},
		{StringType, arrow.BinaryTypes.String, WidthPolicy{Kind: VariableWidth}},
	}

	for _, tt := range tests {
		t.Run(tt.desc.String(), func(t *testing.T) {
			m, err := MapType(tt.desc)
			require.NoError(t, err)
			assert.True(t, arrow.TypeEqual(tt.arrow, m.Arrow), "got %s", m.Arrow)
			assert.Equal(t, tt.width, m.Width)
		})
	}
}

func TestMapTypeDateIsNotTimestamp(t *testing.T) {
	m, err := MapType(DateType)
	require.NoError(t, err)
	assert.Equal(t, arrow.DATE32, m.Arrow.ID())
	assert.NotEqual(t, arrow.TIMESTAMP, m.Arrow.ID())
}

func TestMapTypeUnsupported(t *testing.T) {
	for _, id := range []TypeID{TypeUnknown, TypeNode, TypeRel, TypeList, TypeStruct} {
		_, err := MapType(TypeDescriptor{ID: id})
		require.Error(t, err, id.String())
		assert.True(t, errors.Is(err, exporterrors.ErrUnsupportedType))
	}
}

func TestParseTypeName(t *testing.T) {
	assert.Equal(t, TypeInt64, ParseTypeName("bigint").ID)
	assert.Equal(t, TypeString, ParseTypeName("VARCHAR(255)").ID)
	assert.Equal(t, TypeTimestamp, ParseTypeName("timestamp_ntz").ID)
	assert.Equal(t, TypeFloat64, ParseTypeName("float8").ID)
	assert.Equal(t, TypeNode, ParseTypeName("node").ID)

	unknown := ParseTypeName("GEOMETRY")
	assert.Equal(t, TypeUnknown, unknown.ID)
	assert.Equal(t, "UNKNOWN(GEOMETRY)", unknown.String())
}

func TestDate(t *testing.T) {
	assert.Equal(t, Date(0), DateFromYMD(1970, 1, 1))
	assert.Equal(t, Date(-25567), DateFromYMD(1900, 1, 1))
	assert.Equal(t, "1940-06-22", DateFromYMD(1940, 6, 22).String())

	d, err := ParseDate("1990-11-27")
	require.NoError(t, err)
	assert.Equal(t, DateFromYMD(1990, 11, 27), d)

	_, err = ParseDate("1990-13-01")
	assert.True(t, errors.Is(err, exporterrors.ErrData))

	loc := time.FixedZone("east", 10*3600)
	assert.Equal(t, DateFromYMD(2020, 3, 2), DateFromTime(time.Date(2020, 3, 2, 1, 0, 0, 0, loc)))
}

func TestTimestamp(t *testing.T) {
	ts := TimestampFromParts(2008, 11, 3, 15, 25, 30, 526)
	assert.Equal(t, 526000, ts.Time().Nanosecond())

	parsed, err := ParseTimestamp("2008-11-03 15:25:30.000526")
	require.NoError(t, err)
	assert.Equal(t, ts, parsed)

	parsed, err = ParseTimestamp("1972-07-31T13:22:30.678559Z")
	require.NoError(t, err)
	assert.Equal(t, TimestampFromParts(1972, 7, 31, 13, 22, 30, 678559), parsed)

	parsed, err = ParseTimestamp("1911-08-20 02:32:21")
	require.NoError(t, err)
	assert.Equal(t, TimestampFromParts(1911, 8, 20, 2, 32, 21, 0), parsed)

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestIntervalMilliseconds(t *testing.T) {
	tests := []struct {
		name string
		iv   Interval
		ms   int64
	}{
		{"zero", Interval{}, 0},
		{"whole days", Interval{Days: 3}, 3 * 86_400_000},
		{"month is thirty days", Interval{Months: 1}, 30 * 86_400_000},
		{"truncates positive", Interval{Micros: 1999}, 1},
		{"truncates toward zero", Interval{Micros: -1500}, -1},
		{"mixed signs", Interval{Days: 1, Micros: -1}, 86_399_999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms, err := tt.iv.Milliseconds()
			require.NoError(t, err)
			assert.Equal(t, tt.ms, ms)

			d, err := tt.iv.Duration()
			require.NoError(t, err)
			assert.Equal(t, time.Duration(tt.ms)*time.Millisecond, d)
		})
	}
}

func TestIntervalLongSpans(t *testing.T) {
	// 300 years of 30-day months fits duration[ms] but not time.Duration.
	long := Interval{Months: 300 * 12}
	ms, err := long.Milliseconds()
	require.NoError(t, err)
	assert.Equal(t, int64(3600*30*86_400_000), ms)

	_, err = long.Duration()
	assert.True(t, errors.Is(err, exporterrors.ErrData))

	tests := []struct {
		name string
		iv   Interval
	}{
		{"months", Interval{Months: 1 << 30}},
		{"negative months", Interval{Months: -(1 << 30)}},
		{"days", Interval{Days: 1<<31 - 1}},
		{"micros push past max", Interval{Months: 3_000_000, Micros: 1 << 62}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.iv.TotalMicros()
			assert.True(t, errors.Is(err, exporterrors.ErrData), "got %v", err)
			_, err = tt.iv.Milliseconds()
			assert.True(t, errors.Is(err, exporterrors.ErrData), "got %v", err)
		})
	}
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in   string
		want Interval
	}{
		{"3 years 2 days 13 hours 2 minutes", Interval{Months: 36, Days: 2, Micros: 13*MicrosPerHour + 2*MicrosPerMinute}},
		{"99 days 10 hours 5 minutes 34.628 seconds", Interval{Days: 99, Micros: 10*MicrosPerHour + 5*MicrosPerMinute + 34_628_000}},
		{"125 ms", Interval{Micros: 125_000}},
		{"1 year 2 mons 3 days 04:05:06.789", Interval{Months: 14, Days: 3, Micros: 4*MicrosPerHour + 5*MicrosPerMinute + 6_789_000}},
		{"-00:00:01.5", Interval{Micros: -1_500_000}},
		{"2 weeks 48 us", Interval{Days: 14, Micros: 48}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInterval(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "3", "3 fortnights", "x days", "1:2:3:4"} {
		_, err := ParseInterval(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseIntervalOverflow(t *testing.T) {
	for _, in := range []string{
		"300000000 years",
		"2147483648 months",
		"-2147483649 mons",
		"2147483647 months 1 month",
		"400000000 weeks",
		"2147483648 days",
		"9223372036854775807 hours",
		"9223372036854775 seconds",
		"9223372036854 seconds 9223372036854 seconds",
		"2562047788015:00:00",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseInterval(in)
			assert.True(t, errors.Is(err, exporterrors.ErrData), "got %v", err)
		})
	}

	got, err := ParseInterval("178956970 years 7 months")
	require.NoError(t, err)
	assert.Equal(t, Interval{Months: 1<<31 - 1}, got)
}
