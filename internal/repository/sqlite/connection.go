// Package sqlite is the embedded SQLite store used for local development
// and tests. It mirrors the postgres package's repository contracts.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	// registers the pure-Go "sqlite" driver
	_ "modernc.org/sqlite"

	"promptlab/internal/database"
	"promptlab/internal/domain/repositories"
)

// DBTX is implemented by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	DB     *sql.DB
	Tables *database.TableNames
	Logger *slog.Logger
}

// Open opens (creating if needed) the database file at path and applies
// the schema. Pragmas are passed in the DSN so every pooled connection gets them.
func Open(ctx context.Context, path string, tables *database.TableNames) (*sql.DB, error) {
	path = strings.TrimPrefix(path, "sqlite://")
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer; transactions hold the only connection, and repositories
	// reach it through the context.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := EnsureSchema(ctx, db, tables); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the tables if they do not exist
func EnsureSchema(ctx context.Context, db *sql.DB, tables *database.TableNames) error {
	for _, stmt := range database.SQLiteSchema(tables) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// GetExecutor returns the transaction stored in ctx, or db when there is none
func GetExecutor(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := repositories.TxFrom[*sql.Tx](ctx); ok {
		return tx
	}
	return db
}

// ToUnix converts a timestamp to the stored representation
func ToUnix(t time.Time) int64 {
	return t.UTC().UnixNano()
}

// FromUnix converts a stored timestamp back to time.Time
func FromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
