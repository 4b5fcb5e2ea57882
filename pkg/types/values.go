package types

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ajitpratap0/colexport/pkg/exporterrors"
)

const (
	// DaysPerMonth is the fixed month length used when an interval is
	// flattened to a duration.
	DaysPerMonth = 30

	MicrosPerMilli  int64 = 1000
	MicrosPerSecond int64 = 1000 * MicrosPerMilli
	MicrosPerMinute int64 = 60 * MicrosPerSecond
	MicrosPerHour   int64 = 60 * MicrosPerMinute
	MicrosPerDay    int64 = 24 * MicrosPerHour

	secondsPerDay = 86400
)

// Date is a calendar date stored as days since 1970-01-01.
type Date int32

// DateFromYMD builds a Date from a proleptic Gregorian year, month and day.
func DateFromYMD(year, month, day int) Date {
	return DateFromTime(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
}

// DateFromTime returns the calendar date of t in t's location.
func DateFromTime(t time.Time) Date {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Date(midnight.Unix() / secondsPerDay)
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

func (d Date) String() string {
	return d.Time().Format("2006-01-02")
}

// Timestamp is a point in time stored as microseconds since the Unix epoch, UTC.
type Timestamp int64

// TimestampFromTime truncates t to microsecond precision.
func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixMicro())
}

// TimestampFromParts builds a UTC timestamp from calendar fields.
func TimestampFromParts(year, month, day, hour, minute, second, micros int) Timestamp {
	t := time.Date(year, time.Month(month), day, hour, minute, second, micros*1000, time.UTC)
	return TimestampFromTime(t)
}

// Time returns the timestamp as a UTC time.Time.
func (ts Timestamp) Time() time.Time {
	return time.UnixMicro(int64(ts)).UTC()
}

func (ts Timestamp) String() string {
	return ts.Time().Format("2006-01-02 15:04:05.999999")
}

// Interval is a signed time span with separate month, day and microsecond
// components.
type Interval struct {
	Months int32
	Days   int32
	Micros int64
}

// IntervalFromDuration converts d into an interval carrying only microseconds.
func IntervalFromDuration(d time.Duration) Interval {
	return Interval{Micros: d.Microseconds()}
}

// TotalMicros flattens the interval using DaysPerMonth-day months. It fails
// with ErrorTypeData when the total does not fit in int64 microseconds.
func (iv Interval) TotalMicros() (int64, error) {
	months, ok1 := mulInt64(int64(iv.Months), DaysPerMonth*MicrosPerDay)
	days, ok2 := mulInt64(int64(iv.Days), MicrosPerDay)
	total, ok3 := addInt64(months, days)
	total, ok4 := addInt64(total, iv.Micros)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return 0, exporterrors.New(exporterrors.ErrorTypeData, "interval out of duration range").
			WithDetail("interval", iv.String())
	}
	return total, nil
}

// Milliseconds flattens the interval and truncates toward zero to whole
// milliseconds: 1999us is 1ms and -1500us is -1ms.
func (iv Interval) Milliseconds() (int64, error) {
	micros, err := iv.TotalMicros()
	if err != nil {
		return 0, err
	}
	return micros / MicrosPerMilli, nil
}

// Duration returns the millisecond-resolution duration the interval exports
// as. Intervals longer than time.Duration can hold (about 292 years) fail
// even though their millisecond value is exportable.
func (iv Interval) Duration() (time.Duration, error) {
	ms, err := iv.Milliseconds()
	if err != nil {
		return 0, err
	}
	d, ok := mulInt64(ms, int64(time.Millisecond))
	if !ok {
		return 0, exporterrors.New(exporterrors.ErrorTypeData, "interval exceeds time.Duration range").
			WithDetail("interval", iv.String())
	}
	return time.Duration(d), nil
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return c, true
}

func addInt64(a, b int64) (int64, bool) {
	c := a + b
	if (a > 0 && b > 0 && c < 0) || (a < 0 && b < 0 && c >= 0) {
		return 0, false
	}
	return c, true
}

// addInt32 adds n to *dst, failing when the result leaves the int32 range.
func addInt32(dst *int32, n int64) bool {
	sum := int64(*dst) + n
	if n > math.MaxInt32 || n < math.MinInt32 || sum > math.MaxInt32 || sum < math.MinInt32 {
		return false
	}
	*dst = int32(sum)
	return true
}

func (iv Interval) String() string {
	var parts []string
	if iv.Months != 0 {
		parts = append(parts, strconv.FormatInt(int64(iv.Months), 10)+" months")
	}
	if iv.Days != 0 {
		parts = append(parts, strconv.FormatInt(int64(iv.Days), 10)+" days")
	}
	if iv.Micros != 0 || len(parts) == 0 {
		parts = append(parts, strconv.FormatInt(iv.Micros, 10)+" micros")
	}
	return strings.Join(parts, " ")
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return 0, exporterrors.Wrap(err, exporterrors.ErrorTypeData, "invalid date").
			WithDetail("value", s)
	}
	return DateFromTime(t), nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses "YYYY-MM-DD HH:MM:SS[.ffffff]", RFC 3339 or a bare
// date. Zone-less input is taken as UTC; fractional digits beyond
// microseconds are truncated.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TimestampFromTime(t), nil
		}
	}
	return 0, exporterrors.New(exporterrors.ErrorTypeData, "invalid timestamp").
		WithDetail("value", s)
}

// ParseInterval parses interval text in either unit form
// ("3 years 2 days 13 hours 2 minutes", "1 mon 125 ms") or the clock form
// databases print ("1 year 2 mons 3 days -04:05:06.789"). Units may be
// singular, plural or abbreviated. Seconds accept a fractional part.
func ParseInterval(s string) (Interval, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return Interval{}, exporterrors.New(exporterrors.ErrorTypeData, "empty interval")
	}

	var iv Interval
	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		if strings.Contains(tok, ":") {
			micros, err := parseClock(tok)
			if err != nil {
				return Interval{}, err.WithDetail("value", s)
			}
			if err := addMicros(&iv, micros, 1); err != nil {
				return Interval{}, err.WithDetail("value", s)
			}
			continue
		}
		if i+1 >= len(fields) {
			return Interval{}, exporterrors.New(exporterrors.ErrorTypeData, "interval number without unit").
				WithDetail("value", s)
		}
		unit := fields[i+1]
		i++
		if err := applyIntervalUnit(&iv, tok, unit); err != nil {
			return Interval{}, err.WithDetail("value", s)
		}
	}
	return iv, nil
}

func applyIntervalUnit(iv *Interval, number, unit string) *exporterrors.Error {
	unit = strings.TrimSuffix(unit, ",")
	switch unit {
	case "second", "seconds", "sec", "secs", "s":
		micros, err := parseSeconds(number)
		if err != nil {
			return err
		}
		return addMicros(iv, micros, 1)
	}

	n, err := strconv.ParseInt(number, 10, 64)
	if err != nil {
		return exporterrors.Wrap(err, exporterrors.ErrorTypeData, "invalid interval number")
	}
	switch unit {
	case "year", "years", "yr", "yrs", "y":
		return addCount(&iv.Months, n, 12)
	case "month", "months", "mon", "mons":
		return addCount(&iv.Months, n, 1)
	case "week", "weeks", "w":
		return addCount(&iv.Days, n, 7)
	case "day", "days", "d":
		return addCount(&iv.Days, n, 1)
	case "hour", "hours", "hr", "hrs", "h":
		return addMicros(iv, n, MicrosPerHour)
	case "minute", "minutes", "min", "mins", "m":
		return addMicros(iv, n, MicrosPerMinute)
	case "millisecond", "milliseconds", "msec", "msecs", "ms":
		return addMicros(iv, n, MicrosPerMilli)
	case "microsecond", "microseconds", "usec", "usecs", "us":
		return addMicros(iv, n, 1)
	default:
		return exporterrors.New(exporterrors.ErrorTypeData, "unknown interval unit").
			WithDetail("unit", unit)
	}
}

func addCount(dst *int32, n, factor int64) *exporterrors.Error {
	v, ok := mulInt64(n, factor)
	if !ok || !addInt32(dst, v) {
		return exporterrors.New(exporterrors.ErrorTypeData, "interval count overflows int32").
			WithDetail("count", n)
	}
	return nil
}

func addMicros(iv *Interval, n, factor int64) *exporterrors.Error {
	v, ok := mulInt64(n, factor)
	if ok {
		v, ok = addInt64(iv.Micros, v)
	}
	if !ok {
		return exporterrors.New(exporterrors.ErrorTypeData, "interval microseconds overflow int64").
			WithDetail("count", n)
	}
	iv.Micros = v
	return nil
}

// parseClock parses [-]HH:MM[:SS[.ffffff]] into microseconds.
func parseClock(tok string) (int64, *exporterrors.Error) {
	sign := int64(1)
	if strings.HasPrefix(tok, "-") {
		sign = -1
		tok = tok[1:]
	} else {
		tok = strings.TrimPrefix(tok, "+")
	}

	parts := strings.Split(tok, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, exporterrors.New(exporterrors.ErrorTypeData, "invalid interval clock")
	}
	hours, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, exporterrors.Wrap(err, exporterrors.ErrorTypeData, "invalid interval hours")
	}
	minutes, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, exporterrors.Wrap(err, exporterrors.ErrorTypeData, "invalid interval minutes")
	}
	var clock Interval
	if perr := addMicros(&clock, hours, MicrosPerHour); perr != nil {
		return 0, perr
	}
	if perr := addMicros(&clock, minutes, MicrosPerMinute); perr != nil {
		return 0, perr
	}
	if len(parts) == 3 {
		seconds, perr := parseSeconds(parts[2])
		if perr != nil {
			return 0, perr
		}
		if perr := addMicros(&clock, seconds, 1); perr != nil {
			return 0, perr
		}
	}
	return sign * clock.Micros, nil
}

// parseSeconds parses [-]S[.ffffff] into microseconds without going through
// floating point. Digits beyond microseconds are truncated.
func parseSeconds(s string) (int64, *exporterrors.Error) {
	sign := int64(1)
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	seconds, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, exporterrors.Wrap(err, exporterrors.ErrorTypeData, "invalid interval seconds")
	}
	micros, ok := mulInt64(seconds, MicrosPerSecond)
	if !ok {
		return 0, exporterrors.New(exporterrors.ErrorTypeData, "interval seconds overflow int64")
	}
	if frac != "" {
		if len(frac) > 6 {
			frac = frac[:6]
		}
		frac += strings.Repeat("0", 6-len(frac))
		f, err := strconv.ParseUint(frac, 10, 64)
		if err != nil {
			return 0, exporterrors.Wrap(err, exporterrors.ErrorTypeData, "invalid interval fraction")
		}
		if micros, ok = addInt64(micros, int64(f)); !ok {
			return 0, exporterrors.New(exporterrors.ErrorTypeData, "interval seconds overflow int64")
		}
	}
	return sign * micros, nil
}
