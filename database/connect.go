// Package database persists templates, analytics snapshots and the response log with sqlx.
package database

import (
	"embed"
	"fmt"
	"strings"

	"github.com/Soypete/streambuddy/logging"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type DB struct {
	connections *sqlx.DB
	logger      *logging.Logger
}

// driverFor maps a DSN to the sql driver name, goose dialect and the DSN the driver expects.
// postgres:// and postgresql:// are Postgres; sqlite://path and file: are SQLite.
func driverFor(dsn string) (driver, dialect, source string, err error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", "postgres", dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", "sqlite3", strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "file:"):
		return "sqlite", "sqlite3", dsn, nil
	default:
		return "", "", "", fmt.Errorf("unsupported database url scheme")
	}
}

// New connects to dsn and runs the embedded migrations.
func New(dsn string, logger *logging.Logger) (*DB, error) {
	if logger == nil {
		logger = logging.Default()
	}

	driver, dialect, source, err := driverFor(dsn)
	if err != nil {
		return nil, err
	}

	logger.Info("connecting to database", "driver", driver)
	dbx, err := sqlx.Connect(driver, source)
	if err != nil {
		logger.Error("error connecting to database", "error", err.Error())
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if driver == "sqlite" {
		// sqlite allows a single writer
		dbx.SetMaxOpenConns(1)
	}

	logger.Debug("setting up migration system")
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect(dialect); err != nil {
		logger.Error("error setting dialect", "error", err.Error())
		return nil, fmt.Errorf("error setting dialect: %w", err)
	}

	logger.Info("running database migrations")
	if err := goose.Up(dbx.DB, "migrations"); err != nil {
		logger.Error("error running migrations", "error", err.Error())
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	logger.Debug("verifying database connection")
	if err := dbx.Ping(); err != nil {
		logger.Error("error pinging database", "error", err.Error())
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	logger.Info("database connection established successfully")
	return &DB{
		connections: dbx,
		logger:      logger,
	}, nil
}

func (d *DB) Close() {
	d.logger.Info("closing database connection")
	d.connections.Close()
}
