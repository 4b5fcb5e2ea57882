package cursor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ajitpratap0/colexport/pkg/exporterrors"
	"github.com/ajitpratap0/colexport/pkg/types"
)

// Coerce converts a loosely typed value, as returned by a database driver or
// a decoder, into the native value for a column of type desc. nil stays nil.
func Coerce(desc types.TypeDescriptor, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}

	var (
		out any
		err error
	)
	switch desc.ID {
	case types.TypeInt64:
		out, err = toInt64(v)
	case types.TypeBool:
		out, err = toBool(v)
	case types.TypeFloat64:
		out, err = toFloat64(v)
	case types.TypeDate:
		out, err = toDate(v)
	case types.TypeTimestamp:
		out, err = toTimestamp(v)
	case types.TypeInterval:
		out, err = toInterval(v)
	case types.TypeString:
		out, err = toString(v)
	default:
		return nil, exporterrors.New(exporterrors.ErrorTypeUnsupportedType, "no native value for type").
			WithDetail("type", desc.String())
	}
	if err != nil {
		return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeData, "cannot convert value").
			WithDetail("type", desc.String()).
			WithDetail("value_type", fmt.Sprintf("%T", v))
	}
	return out, nil
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", x)
		}
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%v is not integral", x)
		}
		return int64(x), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(x), 10, 64)
	}
	return 0, fmt.Errorf("unexpected %T", v)
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "t", "true", "1", "y", "yes":
			return true, nil
		case "f", "false", "0", "n", "no":
			return false, nil
		}
		return false, fmt.Errorf("invalid boolean %q", x)
	}
	return false, fmt.Errorf("unexpected %T", v)
}

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	}
	return 0, fmt.Errorf("unexpected %T", v)
}

func toDate(v any) (types.Date, error) {
	switch x := v.(type) {
	case types.Date:
		return x, nil
	case time.Time:
		return types.DateFromTime(x), nil
	case string:
		return types.ParseDate(x)
	}
	return 0, fmt.Errorf("unexpected %T", v)
}

func toTimestamp(v any) (types.Timestamp, error) {
	switch x := v.(type) {
	case types.Timestamp:
		return x, nil
	case time.Time:
		return types.TimestampFromTime(x), nil
	case string:
		return types.ParseTimestamp(x)
	}
	return 0, fmt.Errorf("unexpected %T", v)
}

func toInterval(v any) (types.Interval, error) {
	switch x := v.(type) {
	case types.Interval:
		return x, nil
	case time.Duration:
		return types.IntervalFromDuration(x), nil
	case int64:
		// bare numbers are microseconds
		return types.Interval{Micros: x}, nil
	case string:
		return types.ParseInterval(x)
	}
	return types.Interval{}, fmt.Errorf("unexpected %T", v)
}

func toString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	}
	return "", fmt.Errorf("unexpected %T", v)
}
