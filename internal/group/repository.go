package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/apperr"
	"github.com/fkhayef/splitledger/internal/database"
)

// Repository handles group data persistence
type Repository struct {
	db *database.DB
}

// NewRepository creates a new group repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a group and its initial members in one transaction
func (r *Repository) Create(ctx context.Context, g *Group) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}

	return r.db.InTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, r.db.Rebind(`
			INSERT INTO groups (id, name, description, created_by, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`),
			g.ID, g.Name, g.Description, g.CreatedBy, string(g.Status),
			database.Millis(g.CreatedAt), database.Millis(g.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}

		for _, m := range g.Members {
			if err := r.insertMember(ctx, tx, g.ID, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) insertMember(ctx context.Context, tx *sql.Tx, groupID string, m Member) error {
	_, err := tx.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO group_members (group_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)`),
		groupID, m.UserID, string(m.Role), database.Millis(m.JoinedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// GetByID retrieves a group with its members; nil when absent
func (r *Repository) GetByID(ctx context.Context, id string) (*Group, error) {
	var (
		g                    Group
		status               string
		createdAt, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, r.db.Rebind(`
		SELECT id, name, description, created_by, status, created_at, updated_at
		FROM groups
		WHERE id = ?`), id).Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.CreatedBy,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	g.Status = Status(status)
	g.CreatedAt = database.FromMillis(createdAt)
	g.UpdatedAt = database.FromMillis(updatedAt)

	members, err := r.GetMembers(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	g.Members = members
	return &g, nil
}

// GetMembers retrieves all members of a group in join order
func (r *Repository) GetMembers(ctx context.Context, groupID string) ([]Member, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`
		SELECT user_id, role, joined_at
		FROM group_members
		WHERE group_id = ?
		ORDER BY joined_at, user_id`), groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var (
			m        Member
			role     string
			joinedAt int64
		)
		if err := rows.Scan(&m.UserID, &role, &joinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.Role = MemberRole(role)
		m.JoinedAt = database.FromMillis(joinedAt)
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListByMember retrieves every group userID belongs to, newest first
func (r *Repository) ListByMember(ctx context.Context, userID string) ([]*Group, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`
		SELECT g.id
		FROM groups g
		JOIN group_members gm ON g.id = gm.group_id
		WHERE gm.user_id = ?
		ORDER BY g.created_at DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	rows.Close()

	groups := make([]*Group, 0, len(ids))
	for _, id := range ids {
		g, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if g != nil {
			groups = append(groups, g)
		}
	}
	return groups, nil
}

// Update persists name and description
func (r *Repository) Update(ctx context.Context, g *Group) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE groups SET name = ?, description = ?, updated_at = ? WHERE id = ?`),
		g.Name, g.Description, database.Millis(g.UpdatedAt), g.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperr.NotFound("group")
	}
	return nil
}

// SetStatus moves a group to a new lifecycle state
func (r *Repository) SetStatus(ctx context.Context, id string, status Status) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE groups SET status = ?, updated_at = ? WHERE id = ?`),
		string(status), database.Millis(database.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update group status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperr.NotFound("group")
	}
	return nil
}

// AddMember adds a user to a group
func (r *Repository) AddMember(ctx context.Context, groupID string, m Member) error {
	return r.db.InTx(ctx, func(tx *sql.Tx) error {
		return r.insertMember(ctx, tx, groupID, m)
	})
}

// RemoveMember removes a user from a group
func (r *Repository) RemoveMember(ctx context.Context, groupID, userID string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(
		`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`), groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperr.NotFound("member")
	}
	return nil
}
