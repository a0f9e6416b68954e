package database

import (
	"context"
	"fmt"
	"strings"
)

// schema creates the ledger tables. Amount columns use the {{money}} type,
// which is TEXT on SQLite so decimals round-trip without float conversion.
// Timestamps are unix milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS friendships (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		friend_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at BIGINT NOT NULL,
		PRIMARY KEY (user_id, friend_id)
	)`,
	`CREATE TABLE IF NOT EXISTS groups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS group_members (
		group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		joined_at BIGINT NOT NULL,
		PRIMARY KEY (group_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		description TEXT NOT NULL,
		amount {{money}} NOT NULL,
		currency TEXT NOT NULL,
		category TEXT NOT NULL,
		created_by TEXT NOT NULL,
		paid_by TEXT NOT NULL,
		group_id TEXT,
		expense_date BIGINT NOT NULL,
		settled_at BIGINT,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL,
		version BIGINT NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS expense_splits (
		expense_id TEXT NOT NULL REFERENCES expenses(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		amount {{money}} NOT NULL,
		settled_at BIGINT,
		PRIMARY KEY (expense_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_friendships_user_id ON friendships(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_group_id ON expenses(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_paid_by ON expenses(paid_by)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_created_by ON expenses(created_by)`,
	`CREATE INDEX IF NOT EXISTS idx_expense_splits_user_id ON expense_splits(user_id)`,
}

// Migrate applies the schema. It is safe to run repeatedly.
func (db *DB) Migrate(ctx context.Context) error {
	money := "TEXT"
	if db.Driver == Postgres {
		money = "NUMERIC(14,2)"
	}

	for _, stmt := range schema {
		stmt = strings.ReplaceAll(stmt, "{{money}}", money)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
