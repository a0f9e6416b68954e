package group

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fkhayef/splitledger/internal/apperr"
	"github.com/fkhayef/splitledger/internal/database"
	"github.com/fkhayef/splitledger/internal/user"
)

// Common errors
var (
	ErrGroupNotFound       = apperr.NotFound("group")
	ErrMemberNotFound      = apperr.NotFound("member")
	ErrMemberAlreadyExists = fmt.Errorf("%w: user is already a member of this group", apperr.ErrConflict)
	ErrAlreadyArchived     = fmt.Errorf("%w: group is already archived", apperr.ErrConflict)
	ErrGroupArchived       = apperr.Forbidden("group is archived")
	ErrNotAdmin            = apperr.Forbidden("only group admins can perform this action")
	ErrCreatorRemoval      = apperr.Forbidden("the group creator cannot be removed")
	ErrNotMember           = &apperr.AuthError{Code: apperr.NotMember}
)

// UserFinder looks up users; it returns nil for unknown ids
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// Service handles group business logic
type Service struct {
	repo  *Repository
	users UserFinder
	log   logrus.FieldLogger
}

// NewService creates a new group service
func NewService(repo *Repository, users UserFinder, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, users: users, log: log}
}

// Create creates a new group with the creator as admin
func (s *Service) Create(ctx context.Context, actor string, req *CreateGroupRequest) (*Group, error) {
	name, err := validateName(req.Name)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(req.Description)
	if err != nil {
		return nil, err
	}

	now := database.Now()
	g := &Group{
		Name:        name,
		Description: description,
		CreatedBy:   actor,
		Status:      StatusActive,
		Members:     []Member{{UserID: actor, Role: MemberRoleAdmin, JoinedAt: now}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, id := range req.MemberIDs {
		id = strings.TrimSpace(id)
		if id == "" || g.IsMember(id) {
			continue
		}
		if err := s.requireUser(ctx, id); err != nil {
			return nil, err
		}
		g.Members = append(g.Members, Member{UserID: id, Role: MemberRoleMember, JoinedAt: now})
	}

	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"group_id": g.ID,
		"user_id":  actor,
		"members":  len(g.Members),
	}).Info("group created")
	return g, nil
}

func (s *Service) requireUser(ctx context.Context, id string) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return user.ErrUserNotFound
	}
	return nil
}

// load fetches a group and checks that actor belongs to it
func (s *Service) load(ctx context.Context, actor, id string) (*Group, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}
	if !g.IsMember(actor) {
		return nil, ErrNotMember
	}
	return g, nil
}

// Get retrieves a group the actor belongs to
func (s *Service) Get(ctx context.Context, actor, id string) (*Group, error) {
	return s.load(ctx, actor, id)
}

// List retrieves all groups the actor belongs to
func (s *Service) List(ctx context.Context, actor string) ([]*Group, error) {
	return s.repo.ListByMember(ctx, actor)
}

// Update changes name or description; any member may do this
func (s *Service) Update(ctx context.Context, actor, id string, req *UpdateGroupRequest) (*Group, error) {
	g, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !g.IsActive() {
		return nil, ErrGroupArchived
	}

	if req.Name != nil {
		if g.Name, err = validateName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if g.Description, err = validateDescription(*req.Description); err != nil {
			return nil, err
		}
	}
	g.UpdatedAt = database.Now()

	if err := s.repo.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Archive retires a group; only admins may do this
func (s *Service) Archive(ctx context.Context, actor, id string) error {
	g, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if !g.IsAdmin(actor) {
		return ErrNotAdmin
	}
	if !g.IsActive() {
		return ErrAlreadyArchived
	}

	if err := s.repo.SetStatus(ctx, id, StatusArchived); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"group_id": id, "user_id": actor}).Info("group archived")
	return nil
}

// AddMember adds a user to a group. Any member may add members; only admins
// may grant the admin role.
func (s *Service) AddMember(ctx context.Context, actor, id string, req *AddMemberRequest) (*Group, error) {
	g, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !g.IsActive() {
		return nil, ErrGroupArchived
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, apperr.Invalid("user_id", "user_id is required")
	}

	role := req.Role
	switch role {
	case "":
		role = MemberRoleMember
	case MemberRoleMember:
	case MemberRoleAdmin:
		if !g.IsAdmin(actor) {
			return nil, ErrNotAdmin
		}
	default:
		return nil, apperr.Mismatch("role", "unknown role", "admin|member", string(role))
	}

	if g.IsMember(userID) {
		return nil, ErrMemberAlreadyExists
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	m := Member{UserID: userID, Role: role, JoinedAt: database.Now()}
	if err := s.repo.AddMember(ctx, id, m); err != nil {
		return nil, err
	}
	g.Members = append(g.Members, m)

	s.log.WithFields(logrus.Fields{"group_id": id, "user_id": userID, "added_by": actor}).Info("member added")
	return g, nil
}

// RemoveMember removes a user from a group. Admins may remove anyone but the
// creator; any member may leave.
func (s *Service) RemoveMember(ctx context.Context, actor, id, userID string) error {
	g, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if !g.IsMember(userID) {
		return ErrMemberNotFound
	}
	if userID == g.CreatedBy {
		return ErrCreatorRemoval
	}
	if userID != actor && !g.IsAdmin(actor) {
		return ErrNotAdmin
	}

	if err := s.repo.RemoveMember(ctx, id, userID); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"group_id": id, "user_id": userID, "removed_by": actor}).Info("member removed")
	return nil
}
