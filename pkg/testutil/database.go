package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// DatabaseSuite provides a live database connection for integration tests.
// The driver must be registered by the test binary.
type DatabaseSuite struct {
	suite.Suite

	Driver string
	DSN    string

	DB        *sql.DB
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// SetupSuite runs before all tests in the suite
func (s *DatabaseSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	s.startTime = time.Now()

	db, err := sql.Open(s.Driver, s.DSN)
	require.NoError(s.T(), err)
	require.NoError(s.T(), db.PingContext(s.ctx), "database %s unreachable", s.Driver)
	s.DB = db

	s.T().Logf("Integration test suite connected using %s", s.Driver)
}

// TearDownSuite runs after all tests in the suite
func (s *DatabaseSuite) TearDownSuite() {
	if s.DB != nil {
		_ = s.DB.Close()
	}
	s.cancel()

	s.T().Logf("Integration test suite completed in %v", time.Since(s.startTime))
}

// Context returns the test context
func (s *DatabaseSuite) Context() context.Context {
	return s.ctx
}

// Query runs query and fails the test on error. The caller owns the rows.
func (s *DatabaseSuite) Query(query string, args ...any) *sql.Rows {
	rows, err := s.DB.QueryContext(s.ctx, query, args...)
	require.NoError(s.T(), err)
	return rows
}
