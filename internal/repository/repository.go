package repository

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// Supported driver names.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Options describes how to reach the backing store.
type Options struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// URL overrides the individual fields: a PostgreSQL connection string,
	// a MySQL DSN or an SQLite file path / URI.
	URL string

	MaxConns       int
	ConnectTimeout time.Duration
}

// Open establishes a connection to the store described by opts and verifies
// it with a ping. It performs a single handshake; retries are the caller's job.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
	}

	switch opts.Driver {
	case DriverPostgres:
		pool, err := NewPool(ctx, opts.PostgresURL(), opts.MaxConns)
		if err != nil {
			return nil, err
		}
		return NewPgInquiryRepository(pool), nil

	case DriverMySQL:
		db, err := openSQL(ctx, DriverMySQL, opts.MySQLDSN(), opts.MaxConns)
		if err != nil {
			return nil, err
		}
		return NewSQLInquiryRepository(db, DriverMySQL), nil

	case DriverSQLite:
		// A single connection: every new connection to ":memory:" would see
		// its own empty database.
		db, err := openSQL(ctx, DriverSQLite, opts.SQLitePath(), 1)
		if err != nil {
			return nil, err
		}
		return NewSQLInquiryRepository(db, DriverSQLite), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

// NewPool は PostgreSQL 接続プールを生成する
func NewPool(ctx context.Context, connString string, maxConns int) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	cfg.ConnConfig.RuntimeParams["application_name"] = "inquirydesk"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func openSQL(ctx context.Context, driverName, dsn string, maxConns int) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// PostgresURL returns the connection string for the postgres driver.
func (o Options) PostgresURL() string {
	if o.URL != "" {
		return o.URL
	}

	port := o.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(o.Host, strconv.Itoa(port)),
		Path:     "/" + o.Database,
		RawQuery: "sslmode=disable",
	}
	if o.User != "" {
		u.User = url.UserPassword(o.User, o.Password)
	}
	if o.ConnectTimeout > 0 {
		u.RawQuery += "&connect_timeout=" + strconv.Itoa(int(o.ConnectTimeout.Seconds()))
	}
	return u.String()
}

// MySQLDSN returns the data source name for the mysql driver. A URL in DSN
// form overrides the individual fields; the options the repository relies on
// are forced either way.
func (o Options) MySQLDSN() string {
	if o.URL != "" {
		cfg, err := mysql.ParseDSN(o.URL)
		if err != nil {
			return o.URL
		}
		cfg.ParseTime = true
		cfg.ClientFoundRows = true
		return cfg.FormatDSN()
	}

	port := o.Port
	if port == 0 {
		port = 3306
	}

	cfg := mysql.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(o.Host, strconv.Itoa(port))
	cfg.DBName = o.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Timeout = o.ConnectTimeout
	// Report matched rows so that renaming to the same name still counts as success.
	cfg.ClientFoundRows = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// SQLitePath returns the database path for the sqlite driver.
func (o Options) SQLitePath() string {
	if o.URL != "" {
		return o.URL
	}
	if o.Database != "" {
		return o.Database + ".db"
	}
	return ":memory:"
}
