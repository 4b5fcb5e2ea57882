package cursor

import (
	"database/sql"
	"reflect"
	"strings"
	"time"

	"github.com/ajitpratap0/colexport/pkg/exporterrors"
	"github.com/ajitpratap0/colexport/pkg/types"
)

// SQLCursor adapts a database/sql result set. It works with any registered
// driver; column types come from the driver's DatabaseTypeName.
type SQLCursor struct {
	rows    *sql.Rows
	names   []string
	descs   []types.TypeDescriptor
	scan    []any
	holders []any

	fetched bool
	more    bool
	err     error
}

// NewSQLCursor reads the column metadata of rows. The cursor owns rows and
// closes it on Close or when the result is exhausted.
func NewSQLCursor(rows *sql.Rows) (*SQLCursor, error) {
	cts, err := rows.ColumnTypes()
	if err != nil {
		return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeConnection, "failed to read column types")
	}

	c := &SQLCursor{
		rows:    rows,
		names:   make([]string, len(cts)),
		descs:   make([]types.TypeDescriptor, len(cts)),
		scan:    make([]any, len(cts)),
		holders: make([]any, len(cts)),
	}
	for i, ct := range cts {
		c.names[i] = ct.Name()
		c.descs[i] = describeColumn(ct)
		c.scan[i] = &c.holders[i]
	}
	return c, nil
}

func describeColumn(ct *sql.ColumnType) types.TypeDescriptor {
	var scale int64 = -1
	if _, s, ok := ct.DecimalSize(); ok {
		scale = s
	}
	return DescribeSQLType(ct.DatabaseTypeName(), scale, ct.ScanType())
}

// DescribeSQLType maps a driver type name to a TypeDescriptor. Exact numeric
// types become Int64 when their scale is known to be 0 and Float64
// otherwise. A negative scale means unknown. When the name is not recognized
// the scan type decides.
func DescribeSQLType(name string, scale int64, scanType reflect.Type) types.TypeDescriptor {
	base := baseTypeName(name)
	switch base {
	case "FIXED", "NUMBER", "DECIMAL", "NUMERIC", "NEWDECIMAL":
		if scale == 0 {
			return types.TypeDescriptor{ID: types.TypeInt64, SourceName: name}
		}
		return types.TypeDescriptor{ID: types.TypeFloat64, SourceName: name}
	case "TIMESTAMPTZ", "TIMESTAMP_TZ", "TIMESTAMP_LTZ", "TIMESTAMP_NTZ":
		return types.TypeDescriptor{ID: types.TypeTimestamp, SourceName: name}
	case "VARCHAR", "CHAR", "BPCHAR", "TEXT", "NAME", "UUID", "JSON", "JSONB",
		"TINYTEXT", "MEDIUMTEXT", "LONGTEXT", "ENUM":
		return types.TypeDescriptor{ID: types.TypeString, SourceName: name}
	}

	desc := types.ParseTypeName(base)
	desc.SourceName = name
	if desc.ID != types.TypeUnknown || scanType == nil {
		return desc
	}
	return describeScanType(name, scanType)
}

func baseTypeName(name string) string {
	base := strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	return strings.TrimPrefix(base, "UNSIGNED ")
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

func describeScanType(name string, t reflect.Type) types.TypeDescriptor {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	id := types.TypeUnknown
	switch {
	case t == timeType:
		id = types.TypeTimestamp
	case t == durationType:
		id = types.TypeInterval
	default:
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint8, reflect.Uint16, reflect.Uint32:
			id = types.TypeInt64
		case reflect.Bool:
			id = types.TypeBool
		case reflect.Float32, reflect.Float64:
			id = types.TypeFloat64
		case reflect.String:
			id = types.TypeString
		}
	}
	return types.TypeDescriptor{ID: id, SourceName: name}
}

func (c *SQLCursor) ColumnCount() int { return len(c.descs) }

func (c *SQLCursor) ColumnType(i int) types.TypeDescriptor { return c.descs[i] }

func (c *SQLCursor) ColumnName(i int) string { return c.names[i] }

// HasNext advances the underlying result set on first call after each Next.
// A false return after a driver failure is reported by Err.
func (c *SQLCursor) HasNext() bool {
	if !c.fetched {
		c.more = c.rows.Next()
		c.fetched = true
		if !c.more {
			c.err = c.rows.Err()
			_ = c.rows.Close()
		}
	}
	return c.more
}

// Next scans the current row and converts every value to its native form.
func (c *SQLCursor) Next() (Row, error) {
	if !c.HasNext() {
		if err := c.Err(); err != nil {
			return nil, err
		}
		return nil, exporterrors.New(exporterrors.ErrorTypeInternal, "next called on exhausted cursor")
	}
	c.fetched = false

	if err := c.rows.Scan(c.scan...); err != nil {
		return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeData, "failed to scan row")
	}

	row := make(Row, len(c.holders))
	for i, v := range c.holders {
		out, err := Coerce(c.descs[i], v)
		if err != nil {
			return nil, exporterrors.Wrap(err, exporterrors.ErrorTypeData, "failed to convert column").
				WithDetail("column", c.names[i])
		}
		row[i] = out
		c.holders[i] = nil
	}
	return row, nil
}

// Err returns the driver error that ended iteration, if any.
func (c *SQLCursor) Err() error {
	if c.err == nil {
		return nil
	}
	return exporterrors.Wrap(c.err, exporterrors.ErrorTypeConnection, "result set iteration failed")
}

// Close releases the result set.
func (c *SQLCursor) Close() error {
	return c.rows.Close()
}
