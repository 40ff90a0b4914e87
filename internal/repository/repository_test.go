package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "oracle"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownDriver))
}

func TestOptions_PostgresURL(t *testing.T) {
	opts := Options{
		Host:           "db",
		User:           "app",
		Password:       "secret",
		Database:       "inquiries",
		ConnectTimeout: 3 * time.Second,
	}
	assert.Equal(t, "postgres://app:secret@db:5432/inquiries?sslmode=disable&connect_timeout=3", opts.PostgresURL())

	opts.URL = "postgres://override/x"
	assert.Equal(t, "postgres://override/x", opts.PostgresURL())
}

func TestOptions_MySQLDSN(t *testing.T) {
	opts := Options{Host: "db", Port: 3307, User: "app", Password: "secret", Database: "inquiries"}

	cfg, err := mysql.ParseDSN(opts.MySQLDSN())
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.User)
	assert.Equal(t, "secret", cfg.Passwd)
	assert.Equal(t, "db:3307", cfg.Addr)
	assert.Equal(t, "inquiries", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.True(t, cfg.ClientFoundRows)
}

func TestOptions_MySQLDSN_URLOverride(t *testing.T) {
	opts := Options{Host: "ignored", URL: "app:pw@tcp(mysql:3306)/scratch"}

	cfg, err := mysql.ParseDSN(opts.MySQLDSN())
	require.NoError(t, err)
	assert.Equal(t, "mysql:3306", cfg.Addr)
	assert.Equal(t, "scratch", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.True(t, cfg.ClientFoundRows)
}

func TestOptions_SQLitePath(t *testing.T) {
	assert.Equal(t, ":memory:", Options{}.SQLitePath())
	assert.Equal(t, "inquiries.db", Options{Database: "inquiries"}.SQLitePath())
	assert.Equal(t, "/tmp/x.db", Options{Database: "inquiries", URL: "/tmp/x.db"}.SQLitePath())
}

func TestSchemaFor(t *testing.T) {
	for _, driver := range []string{DriverPostgres, DriverMySQL, DriverSQLite} {
		stmts := schemaFor(driver)
		require.NotEmpty(t, stmts, driver)
		assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE IF NOT EXISTS inquiries"), driver)
	}
	assert.Nil(t, schemaFor("oracle"))
}

func TestSchemaFor_EmailCheck(t *testing.T) {
	// Text exactly as the server receives it.
	for driver, want := range map[string]string{
		DriverPostgres: `CONSTRAINT chk_email CHECK (email ~ '^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,20}$')`,
		DriverMySQL:    `CONSTRAINT chk_email CHECK (email REGEXP '^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\\.[A-Za-z]{2,20}$')`,
		DriverSQLite:   `email LIKE '%_@_%._%'`,
	} {
		t.Run(driver, func(t *testing.T) {
			assert.Contains(t, schemaFor(driver)[0], want)
		})
	}
}

func TestSchemaFor_EmailPatternSemantics(t *testing.T) {
	// PostgreSQL reads the literal as is; MySQL first collapses "\\" to "\".
	pgPattern := extractPattern(t, schemaFor(DriverPostgres)[0], "email ~ '")
	mysqlPattern := strings.ReplaceAll(extractPattern(t, schemaFor(DriverMySQL)[0], "email REGEXP '"), `\\`, `\`)
	assert.Equal(t, pgPattern, mysqlPattern)

	re := regexp.MustCompile(pgPattern)
	for email, want := range map[string]bool{
		"a@b.com":         true,
		"first.last@x.io": true,
		"a@bcom":          false,
		"a@b.c":           false,
		"not-an-email":    false,
	} {
		assert.Equal(t, want, re.MatchString(email), email)
	}
}

func extractPattern(t *testing.T, ddl, prefix string) string {
	t.Helper()
	i := strings.Index(ddl, prefix)
	require.GreaterOrEqual(t, i, 0, "missing %q", prefix)
	rest := ddl[i+len(prefix):]
	j := strings.Index(rest, "'")
	require.GreaterOrEqual(t, j, 0)
	return rest[:j]
}

func TestIsConnectionError(t *testing.T) {
	for name, tc := range map[string]struct {
		err  error
		want bool
	}{
		"Nil":              {err: nil, want: false},
		"Plain":            {err: errors.New("syntax error"), want: false},
		"Canceled":         {err: context.Canceled, want: false},
		"Deadline":         {err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: false},
		"MySQLInvalidConn": {err: fmt.Errorf("exec: %w", mysql.ErrInvalidConn), want: true},
		"PgAdminShutdown":  {err: &pgconn.PgError{Code: pgerrcode.AdminShutdown}, want: true},
		"PgConnFailure":    {err: &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, want: true},
		"PgCheckViolation": {err: &pgconn.PgError{Code: pgerrcode.CheckViolation}, want: false},
		"NetOpError":       {err: &net.OpError{Op: "read", Err: errors.New("connection reset")}, want: true},
		"WrappedDial": {
			err: fmt.Errorf("failed to connect to `host=db user=app database=inquiries`: %w",
				&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}),
			want: true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsConnectionError(tc.err))
		})
	}
}
