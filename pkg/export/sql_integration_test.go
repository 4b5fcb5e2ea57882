package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ajitpratap0/colexport/pkg/cursor"
	"github.com/ajitpratap0/colexport/pkg/testutil"
	"github.com/ajitpratap0/colexport/pkg/types"
)

type sqlExportSuite struct {
	testutil.DatabaseSuite

	query string
	want  map[string][]any
}

func (s *sqlExportSuite) TestQueryToTable() {
	rows := s.Query(s.query)
	cur, err := cursor.NewSQLCursor(rows)
	require.NoError(s.T(), err)
	defer cur.Close()

	mem := testutil.CheckedAllocator(s.T())
	table, err := ToTable(s.Context(), cur, 1,
		WithAllocator(mem),
		WithLogger(testutil.TestLogger(s.T())),
		WithSource(s.Driver),
	)
	require.NoError(s.T(), err)
	defer table.Release()

	s.Equal(int64(2), table.NumRows())
	s.Equal(2, table.NumBatches())
	for i, field := range table.Schema().Fields() {
		want, ok := s.want[field.Name]
		if !ok {
			continue
		}
		s.Equal(want, table.Column(i).ToList(), field.Name)
	}
}

func TestPostgresQueryExport(t *testing.T) {
	testutil.IntegrationTest(t)
	dsn := testutil.RequireEnv(t, "COLEXPORT_TEST_POSTGRES_DSN")

	suite.Run(t, &sqlExportSuite{
		DatabaseSuite: testutil.DatabaseSuite{Driver: "pgx", DSN: dsn},
		query: `SELECT * FROM (
			SELECT 1::int8 AS id, 'Alice'::text AS name, true AS active, 1.5::float8 AS score,
				DATE '2020-01-02' AS day, TIMESTAMP '2020-01-02 03:04:05.123456' AS seen,
				INTERVAL '1 day 02:00:00' AS wait
			UNION ALL
			SELECT 2, NULL, NULL, NULL, NULL, NULL, NULL
		) t ORDER BY id`,
		want: map[string][]any{
			"id":     {int64(1), int64(2)},
			"name":   {"Alice", nil},
			"active": {true, nil},
			"score":  {1.5, nil},
			"day":    {types.DateFromYMD(2020, 1, 2), nil},
			"seen":   {time.Date(2020, 1, 2, 3, 4, 5, 123456000, time.UTC), nil},
			"wait":   {26 * time.Hour, nil},
		},
	})
}

func TestMySQLQueryExport(t *testing.T) {
	testutil.IntegrationTest(t)
	dsn := testutil.RequireEnv(t, "COLEXPORT_TEST_MYSQL_DSN")

	suite.Run(t, &sqlExportSuite{
		DatabaseSuite: testutil.DatabaseSuite{Driver: "mysql", DSN: dsn},
		query: `SELECT * FROM (
			SELECT CAST(1 AS SIGNED) AS id, 'Alice' AS name, DATE '2020-01-02' AS day,
				TIMESTAMP '2020-01-02 03:04:05' AS seen
			UNION ALL
			SELECT 2, NULL, NULL, NULL
		) t ORDER BY id`,
		want: map[string][]any{
			"id":   {int64(1), int64(2)},
			"name": {"Alice", nil},
			"day":  {types.DateFromYMD(2020, 1, 2), nil},
			"seen": {time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), nil},
		},
	})
}
