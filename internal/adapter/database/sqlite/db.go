package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"

	"hypertodo/internal/adapter/database/migrations"
)

const busyTimeoutMillis = 5000

type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
	dsn          string
}

type Options struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	// SQLLogLevel is a zerolog level name; empty disables sql logging.
	SQLLogLevel string
}

// IsMemory reports whether dsn points to a database that only lives inside a connection.
func IsMemory(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") ||
		strings.HasPrefix(dsn, "file::memory:") ||
		strings.Contains(dsn, "mode=memory")
}

func withBusyTimeout(dsn string) string {
	if strings.Contains(dsn, "_timeout") {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	return fmt.Sprintf("%s%s_busy_timeout=%d", dsn, sep, busyTimeoutMillis)
}

// NewDB opens the database through otelsql and the sql logger, then migrates it.
func NewDB(ctx context.Context, opts Options) (*DB, error) {
	if opts.DSN == "" {
		return nil, errors.New("sqlite dsn is empty")
	}

	dsn := withBusyTimeout(opts.DSN)

	traced, err := otelsql.Open("sqlite3", dsn,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("hypertodo"),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)

	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB := traced

	if opts.SQLLogLevel != "" {
		level, err := zerolog.ParseLevel(opts.SQLLogLevel)

		if err != nil {
			traced.Close()
			return nil, fmt.Errorf("invalid sql log level %q: %w", opts.SQLLogLevel, err)
		}

		logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Str("component", "sql").Logger()
		sqlDB = sqldblogger.OpenDriver(dsn, traced.Driver(), zerologadapter.New(logger),
			sqldblogger.WithMinimumLevel(toLoggerLevel(level)),
		)
		traced.Close()
	}

	configurePool(sqlDB, dsn, opts)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := RunMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	return &DB{
		DB:           sqlDB,
		QueryBuilder: &queryBuilder,
		dsn:          dsn,
	}, nil
}

// in-memory databases exist per connection, so the pool is pinned to one connection that never expires.
func configurePool(db *sql.DB, dsn string, opts Options) {
	if IsMemory(dsn) {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
		return
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}

	maxIdle := opts.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
}

func toLoggerLevel(level zerolog.Level) sqldblogger.Level {
	switch {
	case level <= zerolog.TraceLevel:
		return sqldblogger.LevelTrace
	case level == zerolog.DebugLevel:
		return sqldblogger.LevelDebug
	case level == zerolog.InfoLevel:
		return sqldblogger.LevelInfo
	default:
		return sqldblogger.LevelError
	}
}

// RunMigrations applies the embedded schema. The migrate instance is not closed
// because that would close db as well.
func RunMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})

	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	src, err := migrations.Source("sqlite")

	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)

	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
