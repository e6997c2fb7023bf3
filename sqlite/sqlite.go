// Package sqlite provides SQLite-based storage implementations for
// pricewatch services: competitors with crawl state, pricing schema
// history, and alert records.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Wait up to 5 seconds on lock contention instead of failing with
	// "database is locked".
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// WAL mode is much faster for writes and allows concurrent reads
	// during writes; it is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS competitors (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			pricing_url TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			failure_count INTEGER NOT NULL DEFAULT 0,
			last_failure_at TEXT,
			last_checked_at TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS pricing_schemas (
			id TEXT PRIMARY KEY,
			competitor_id TEXT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
			region TEXT NOT NULL DEFAULT 'global',
			plans TEXT NOT NULL,
			has_free_tier INTEGER NOT NULL DEFAULT 0,
			highlighted_plan TEXT NOT NULL DEFAULT '',
			currency TEXT NOT NULL DEFAULT '',
			source_url TEXT NOT NULL,
			raw_markdown TEXT NOT NULL DEFAULT '',
			captured_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_pricing_schemas_lookup
			ON pricing_schemas(competitor_id, region, captured_at DESC);

		CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			competitor_id TEXT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
			region TEXT NOT NULL DEFAULT 'global',
			diff_type TEXT NOT NULL,
			plan_name TEXT NOT NULL DEFAULT '',
			before_value TEXT NOT NULL DEFAULT '',
			after_value TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			severity TEXT NOT NULL,
			priority INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_alerts_competitor
			ON alerts(competitor_id, created_at DESC);
	`

	_, err := db.db.Exec(schema)
	return err
}
