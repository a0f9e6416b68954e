package group

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fkhayef/splitledger/internal/apperr"
	"github.com/fkhayef/splitledger/internal/membership"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500
)

// Status is the lifecycle state of a group
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// MemberRole represents the role of a group member
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

// Group represents a group in the system
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	Status      Status    `json:"status"`
	Members     []Member  `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member represents a user's membership in a group
type Member struct {
	UserID   string     `json:"user_id"`
	Role     MemberRole `json:"role"`
	JoinedAt time.Time  `json:"joined_at"`
}

// Identity implements membership.Identified.
func (m Member) Identity() string { return m.UserID }

// Roster returns the member set used by the split gate.
func (g *Group) Roster() *membership.Roster {
	return membership.NewRoster(g.Members)
}

// Member returns the membership record for userID.
func (g *Group) Member(userID string) (Member, bool) {
	for _, m := range g.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return Member{}, false
}

// IsMember reports whether userID belongs to the group.
func (g *Group) IsMember(userID string) bool {
	_, ok := g.Member(userID)
	return ok
}

// IsAdmin reports whether userID is an admin of the group.
func (g *Group) IsAdmin(userID string) bool {
	m, ok := g.Member(userID)
	return ok && m.Role == MemberRoleAdmin
}

// IsActive reports whether the group still accepts expenses.
func (g *Group) IsActive() bool {
	return g.Status == StatusActive
}

// MemberIDs lists member identities in join order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Invalid("name", "name is required")
	}
	if n := utf8.RuneCountInString(name); n > maxNameLength {
		return "", apperr.Mismatch("name", "name is too long",
			fmt.Sprintf("<= %d characters", maxNameLength), fmt.Sprintf("%d characters", n))
	}
	return name, nil
}

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if n := utf8.RuneCountInString(description); n > maxDescriptionLength {
		return "", apperr.Mismatch("description", "description is too long",
			fmt.Sprintf("<= %d characters", maxDescriptionLength), fmt.Sprintf("%d characters", n))
	}
	return description, nil
}
