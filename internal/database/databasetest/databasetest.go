// Package databasetest provides throwaway SQLite databases for tests.
package databasetest

import (
	"context"
	"os"
	"testing"

	"github.com/fkhayef/splitledger/internal/database"
)

// New opens a migrated SQLite database in a temp file that is removed when
// the test finishes.
func New(t testing.TB) *database.DB {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "splitledger-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	db, err := database.Open(database.SQLite, tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		db.Close()
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(tmpFile.Name())
	})
	return db
}
