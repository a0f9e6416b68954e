package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/database"
)

// Repository handles user and friendship persistence
type Repository struct {
	db *database.DB
}

// NewRepository creates a new user repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user
func (r *Repository) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	user := &User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     req.Email,
		CreatedAt: database.Now(),
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO users (id, username, email, created_at)
		VALUES (?, ?, ?, ?)`),
		user.ID, user.Username, user.Email, database.Millis(user.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by their ID; nil when absent
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, `SELECT id, username, email, created_at FROM users WHERE id = ?`, id)
}

// GetByEmail retrieves a user by their email; nil when absent
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `SELECT id, username, email, created_at FROM users WHERE email = ?`, email)
}

func (r *Repository) getOne(ctx context.Context, query string, arg string) (*User, error) {
	var (
		user      User
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, r.db.Rebind(query), arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.CreatedAt = database.FromMillis(createdAt)
	return &user, nil
}

// AddFriendship records the relation in both directions atomically
func (r *Repository) AddFriendship(ctx context.Context, userID, friendID string) error {
	now := database.Millis(database.Now())
	query := r.db.Rebind(`INSERT INTO friendships (user_id, friend_id, created_at) VALUES (?, ?, ?)`)

	return r.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, userID, friendID, now); err != nil {
			return fmt.Errorf("failed to add friendship: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, friendID, userID, now); err != nil {
			return fmt.Errorf("failed to add friendship: %w", err)
		}
		return nil
	})
}

// AreFriends reports whether a friendship row exists from userID to friendID
func (r *Repository) AreFriends(ctx context.Context, userID, friendID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.db.Rebind(
		`SELECT COUNT(*) FROM friendships WHERE user_id = ? AND friend_id = ?`),
		userID, friendID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return n > 0, nil
}

// FriendIDs returns the identities userID is friends with
func (r *Repository) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(
		`SELECT friend_id FROM friendships WHERE user_id = ? ORDER BY friend_id`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListFriends returns the users userID is friends with, by username
func (r *Repository) ListFriends(ctx context.Context, userID string) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`
		SELECT u.id, u.username, u.email, u.created_at
		FROM friendships f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = ?
		ORDER BY u.username`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		var (
			u         User
			createdAt int64
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.CreatedAt = database.FromMillis(createdAt)
		users = append(users, &u)
	}
	return users, rows.Err()
}
