package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/apperr"
	"github.com/fkhayef/splitledger/internal/database"
)

// maxMutateAttempts bounds optimistic retries when two writers race on the
// same expense.
const maxMutateAttempts = 3

// errStaleVersion signals that another writer bumped the version first.
var errStaleVersion = errors.New("stale expense version")

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const expenseColumns = `e.id, e.description, e.amount, e.currency, e.category, e.created_by, e.paid_by,
	e.group_id, e.expense_date, e.settled_at, e.created_at, e.updated_at, e.version`

// Repository handles expense and split data persistence
type Repository struct {
	db *database.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an expense and its splits, assigning an id
func (r *Repository) Create(ctx context.Context, e *Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.Version = 1

	return r.db.InTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, r.db.Rebind(`
			INSERT INTO expenses (id, description, amount, currency, category, created_by, paid_by,
				group_id, expense_date, settled_at, created_at, updated_at, version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			e.ID, e.Description, e.Amount, e.Currency, string(e.Category), e.CreatedBy, e.PaidBy,
			nullString(e.GroupID), database.Millis(e.Date), database.NullMillis(e.SettledAt),
			database.Millis(e.CreatedAt), database.Millis(e.UpdatedAt), e.Version,
		)
		if err != nil {
			return fmt.Errorf("failed to create expense: %w", err)
		}
		return r.insertSplits(ctx, tx, e)
	})
}

func (r *Repository) insertSplits(ctx context.Context, tx *sql.Tx, e *Expense) error {
	query := r.db.Rebind(`
		INSERT INTO expense_splits (expense_id, position, user_id, amount, settled_at)
		VALUES (?, ?, ?, ?, ?)`)
	for i, s := range e.SplitWith {
		if _, err := tx.ExecContext(ctx, query, e.ID, i, s.UserID, s.Amount, database.NullMillis(s.SettledAt)); err != nil {
			return fmt.Errorf("failed to create split: %w", err)
		}
	}
	return nil
}

// GetByID retrieves an expense with its splits; nil when absent
func (r *Repository) GetByID(ctx context.Context, id string) (*Expense, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *Repository) getByID(ctx context.Context, q queryer, id string) (*Expense, error) {
	row := q.QueryRowContext(ctx, r.db.Rebind(`SELECT `+expenseColumns+` FROM expenses e WHERE e.id = ?`), id)
	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := r.loadSplits(ctx, q, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Mutate applies fn to a fresh copy of the expense and persists the result
// atomically. If another writer commits first the whole read-modify-write is
// retried; after maxMutateAttempts it fails with ErrConflict. Errors from fn
// abort without writing.
func (r *Repository) Mutate(ctx context.Context, id string, fn func(*Expense) error) (*Expense, error) {
	for attempt := 0; attempt < maxMutateAttempts; attempt++ {
		var result *Expense
		err := r.db.InTx(ctx, func(tx *sql.Tx) error {
			e, err := r.getByID(ctx, tx, id)
			if err != nil {
				return err
			}
			if e == nil {
				return apperr.NotFound("expense")
			}
			if err := fn(e); err != nil {
				return err
			}
			if err := r.update(ctx, tx, e); err != nil {
				return err
			}
			result = e
			return nil
		})
		if errors.Is(err, errStaleVersion) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("%w: expense %s changed concurrently", apperr.ErrConflict, id)
}

func (r *Repository) update(ctx context.Context, tx *sql.Tx, e *Expense) error {
	result, err := tx.ExecContext(ctx, r.db.Rebind(`
		UPDATE expenses
		SET description = ?, amount = ?, currency = ?, category = ?, paid_by = ?, expense_date = ?,
			settled_at = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`),
		e.Description, e.Amount, e.Currency, string(e.Category), e.PaidBy, database.Millis(e.Date),
		database.NullMillis(e.SettledAt), database.Millis(e.UpdatedAt),
		e.ID, e.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errStaleVersion
	}
	e.Version++

	if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM expense_splits WHERE expense_id = ?`), e.ID); err != nil {
		return fmt.Errorf("failed to replace splits: %w", err)
	}
	return r.insertSplits(ctx, tx, e)
}

// Delete removes an expense and its splits
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.InTx(ctx, func(tx *sql.Tx) error {
		// Delete splits first (foreign key constraint)
		if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM expense_splits WHERE expense_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete splits: %w", err)
		}

		result, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM expenses WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return apperr.NotFound("expense")
		}
		return nil
	})
}

// ListInvolving returns every expense identity created, paid or takes part
// in, newest first
func (r *Repository) ListInvolving(ctx context.Context, identity string) ([]*Expense, error) {
	return r.list(ctx, `
		SELECT `+expenseColumns+` FROM expenses e
		WHERE e.created_by = ? OR e.paid_by = ?
			OR EXISTS (SELECT 1 FROM expense_splits s WHERE s.expense_id = e.id AND s.user_id = ?)
		ORDER BY e.expense_date DESC, e.created_at DESC`,
		identity, identity, identity)
}

// ListByGroup returns the expenses tagged with a group, newest first
func (r *Repository) ListByGroup(ctx context.Context, groupID string) ([]*Expense, error) {
	return r.list(ctx, `
		SELECT `+expenseColumns+` FROM expenses e
		WHERE e.group_id = ?
		ORDER BY e.expense_date DESC, e.created_at DESC`,
		groupID)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]*Expense, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []*Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	rows.Close()

	// Splits are loaded after the cursor is closed; SQLite runs on a single connection.
	for _, e := range expenses {
		if err := r.loadSplits(ctx, r.db, e); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

func (r *Repository) loadSplits(ctx context.Context, q queryer, e *Expense) error {
	rows, err := q.QueryContext(ctx, r.db.Rebind(`
		SELECT user_id, amount, settled_at
		FROM expense_splits
		WHERE expense_id = ?
		ORDER BY position`), e.ID)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	e.SplitWith = e.SplitWith[:0]
	for rows.Next() {
		var (
			s         SplitEntry
			settledAt sql.NullInt64
		)
		if err := rows.Scan(&s.UserID, &s.Amount, &settledAt); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		s.SettledAt = database.TimePtr(settledAt)
		s.Settled = s.SettledAt != nil
		e.SplitWith = append(e.SplitWith, s)
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*Expense, error) {
	var (
		e                          Expense
		category                   string
		groupID                    sql.NullString
		date, createdAt, updatedAt int64
		settledAt                  sql.NullInt64
	)
	if err := row.Scan(
		&e.ID,
		&e.Description,
		&e.Amount,
		&e.Currency,
		&category,
		&e.CreatedBy,
		&e.PaidBy,
		&groupID,
		&date,
		&settledAt,
		&createdAt,
		&updatedAt,
		&e.Version,
	); err != nil {
		return nil, err
	}

	e.Category = Category(category)
	if groupID.Valid {
		e.GroupID = &groupID.String
	}
	e.Date = database.FromMillis(date)
	e.SettledAt = database.TimePtr(settledAt)
	e.IsSettled = e.SettledAt != nil
	e.CreatedAt = database.FromMillis(createdAt)
	e.UpdatedAt = database.FromMillis(updatedAt)
	e.SplitWith = []SplitEntry{}
	return &e, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
