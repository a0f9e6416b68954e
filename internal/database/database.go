// Package database opens the ledger store. PostgreSQL is used in production
// and SQLite for local runs and tests; repositories write queries with `?`
// placeholders and call Rebind.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// Supported drivers.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// DB wraps a connection pool with the dialect it speaks.
type DB struct {
	*sql.DB
	Driver string
}

// Open connects to the database and verifies the connection.
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case Postgres:
		return NewPostgresConnection(dsn)
	case SQLite:
		return NewSQLiteConnection(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewPostgresConnection opens a pooled PostgreSQL connection.
func NewPostgresConnection(databaseURL string) (*DB, error) {
	db, err := sql.Open(Postgres, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Driver: Postgres}, nil
}

// NewSQLiteConnection opens a SQLite file, creating parent directories.
func NewSQLiteConnection(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(SQLite, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single connection serialises transactions
	// instead of failing them with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{DB: db, Driver: SQLite}, nil
}

// Rebind rewrites `?` placeholders to `$n` for PostgreSQL.
func (db *DB) Rebind(query string) string {
	if db.Driver != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// InTx runs fn inside a transaction, committing when it returns nil.
func (db *DB) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Placeholders returns n comma-separated `?` markers.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
