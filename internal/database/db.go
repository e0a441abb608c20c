// Package database provides database connection and management.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/sebasr/target-manager/internal/config"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	Driver string
}

// New creates a new database connection pool for the configured driver
func New(cfg *config.DatabaseConfig) (*DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = sql.Open("pgx", cfg.ConnectionString())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		db.SetMaxOpenConns(cfg.MaxConnections)
		db.SetMaxIdleConns(cfg.MaxIdleConnections)
		db.SetConnMaxLifetime(cfg.ConnectionMaxLifetime)
	case config.DriverSQLite:
		dsn := "file:" + cfg.ConnectionString() + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	default:
		return nil, fmt.Errorf("database driver %q has no SQL backend", cfg.Driver)
	}

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Driver: cfg.Driver}, nil
}

// Migrate creates the schema if it does not exist yet
func (db *DB) Migrate(ctx context.Context) error {
	// REAL is an 8-byte float in SQLite; Postgres needs DOUBLE PRECISION for the same range
	floatType := "DOUBLE PRECISION"
	if db.Driver == config.DriverSQLite {
		floatType = "REAL"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS targets (
			id          TEXT PRIMARY KEY,
			latitude    ` + floatType + ` NOT NULL CHECK (latitude BETWEEN -90 AND 90),
			longitude   ` + floatType + ` NOT NULL CHECK (longitude BETWEEN -180 AND 180),
			altitude    ` + floatType + ` NOT NULL,
			frequency   ` + floatType + ` NOT NULL CHECK (frequency > 0),
			speed       ` + floatType + ` NOT NULL CHECK (speed >= 0),
			bearing     ` + floatType + ` NOT NULL CHECK (bearing BETWEEN 0 AND 360),
			ip_address  TEXT NOT NULL,
			created_at  BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_targets_created_at ON targets(created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	return nil
}

// HealthCheck checks if the database is healthy
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
