package cursor

import (
	"bufio"
	"bytes"
	"io"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ajitpratap0/colexport/pkg/exporterrors"
	"github.com/ajitpratap0/colexport/pkg/types"
)

const maxLineSize = 16 * 1024 * 1024

var jsonNull = []byte("null")

// JSONLinesCursor reads newline-delimited JSON. Each line is either an
// array holding one element per column or an object keyed by column name, in
// which case missing keys are null and keys naming no column are ignored.
// Ignored keys are logged once each at debug level. Blank lines are skipped.
//
// Dates, timestamps and intervals are JSON strings in the forms accepted by
// types.ParseDate, types.ParseTimestamp and types.ParseInterval. Intervals may
// also be integer microseconds.
type JSONLinesCursor struct {
	columns []ColumnSpec
	index   map[string]int
	scanner *bufio.Scanner
	logger  *zap.Logger
	ignored map[string]struct{}

	line    []byte
	lineNo  int
	fetched bool
	more    bool
	err     error
}

// NewJSONLinesCursor returns a cursor reading rows of the given columns
// from r.
func NewJSONLinesCursor(r io.Reader, columns []ColumnSpec) *JSONLinesCursor {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	index := make(map[string]int, len(columns))
	for i, col := range columns {
		index[col.Name] = i
	}
	return &JSONLinesCursor{
		columns: columns,
		index:   index,
		scanner: scanner,
		logger:  zap.NewNop(),
		ignored: make(map[string]struct{}),
	}
}

// WithLogger sets the logger used to report ignored object keys.
func (c *JSONLinesCursor) WithLogger(logger *zap.Logger) *JSONLinesCursor {
	if logger != nil {
		c.logger = logger
	}
	return c
}

func (c *JSONLinesCursor) ColumnCount() int { return len(c.columns) }

func (c *JSONLinesCursor) ColumnType(i int) types.TypeDescriptor { return c.columns[i].Type }

func (c *JSONLinesCursor) ColumnName(i int) string { return c.columns[i].Name }

func (c *JSONLinesCursor) HasNext() bool {
	if c.fetched {
		return c.more
	}
	c.fetched = true
	c.more = false
	for c.scanner.Scan() {
		c.lineNo++
		line := bytes.TrimSpace(c.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		c.line = line
		c.more = true
		return true
	}
	if err := c.scanner.Err(); err != nil {
		c.err = exporterrors.Wrap(err, exporterrors.ErrorTypeFile, "failed to read JSON lines input").
			WithDetail("line", c.lineNo+1)
	}
	return false
}

func (c *JSONLinesCursor) Next() (Row, error) {
	if !c.HasNext() {
		if c.err != nil {
			return nil, c.err
		}
		return nil, exporterrors.New(exporterrors.ErrorTypeInternal, "next called on exhausted cursor")
	}
	c.fetched = false

	fields, err := c.split(c.line)
	if err != nil {
		return nil, err
	}

	row := make(Row, len(c.columns))
	for i, raw := range fields {
		v, err := decodeField(c.columns[i].Type, raw)
		if err != nil {
			return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeData, "failed to decode field").
				WithDetail("line", c.lineNo).
				WithDetail("column", c.columns[i].Name)
		}
		row[i] = v
	}
	return row, nil
}

// Err returns the read error that ended iteration, if any.
func (c *JSONLinesCursor) Err() error { return c.err }

// split returns one raw message per column; nil entries are null.
func (c *JSONLinesCursor) split(line []byte) ([]json.RawMessage, error) {
	fields := make([]json.RawMessage, len(c.columns))

	switch line[0] {
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(line, &arr); err != nil {
			return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeData, "invalid JSON array").
				WithDetail("line", c.lineNo)
		}
		if len(arr) != len(c.columns) {
			return nil, exporterrors.New(exporterrors.ErrorTypeData, "row width does not match column count").
				WithDetail("line", c.lineNo).
				WithDetail("width", len(arr)).
				WithDetail("columns", len(c.columns))
		}
		copy(fields, arr)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(line, &obj); err != nil {
			return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeData, "invalid JSON object").
				WithDetail("line", c.lineNo)
		}
		for name, raw := range obj {
			if i, ok := c.index[name]; ok {
				fields[i] = raw
				continue
			}
			if _, seen := c.ignored[name]; !seen {
				c.ignored[name] = struct{}{}
				c.logger.Debug("ignoring key with no matching column",
					zap.String("key", name),
					zap.Int("line", c.lineNo))
			}
		}
	default:
		return nil, exporterrors.New(exporterrors.ErrorTypeData, "line is neither a JSON array nor an object").
			WithDetail("line", c.lineNo)
	}
	return fields, nil
}

func decodeField(desc types.TypeDescriptor, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return nil, nil
	}

	switch desc.ID {
	case types.TypeInt64:
		var v int64
		err := json.Unmarshal(raw, &v)
		return v, err
	case types.TypeBool:
		var v bool
		err := json.Unmarshal(raw, &v)
		return v, err
	case types.TypeFloat64:
		var v float64
		err := json.Unmarshal(raw, &v)
		return v, err
	case types.TypeString:
		var v string
		err := json.Unmarshal(raw, &v)
		return v, err
	case types.TypeInterval:
		if raw[0] != '"' {
			var micros int64
			if err := json.Unmarshal(raw, &micros); err != nil {
				return nil, err
			}
			return Coerce(desc, micros)
		}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return Coerce(desc, s)
}
