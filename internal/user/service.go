package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fkhayef/splitledger/internal/apperr"
)

// Common errors
var (
	ErrUserNotFound      = apperr.NotFound("user")
	ErrEmailAlreadyInUse = fmt.Errorf("%w: email already in use", apperr.ErrConflict)
	ErrAlreadyFriends    = fmt.Errorf("%w: already friends", apperr.ErrConflict)
	ErrSelfFriend        = apperr.Invalid("friend_id", "cannot add yourself as a friend")
)

// Service handles user business logic
type Service struct {
	repo *Repository
	log  logrus.FieldLogger
}

// NewService creates a new user service with repository dependency injected
func NewService(repo *Repository, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, log: log}
}

// Create creates a new user
func (s *Service) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	// Check if email is already in use
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyInUse
	}

	user, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user created")
	return user, nil
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListFriends returns the actor's friends
func (s *Service) ListFriends(ctx context.Context, actor string) ([]*User, error) {
	return s.repo.ListFriends(ctx, actor)
}

// AddFriend befriends actor and friendID in both directions
func (s *Service) AddFriend(ctx context.Context, actor, friendID string) (*User, error) {
	friendID = strings.TrimSpace(friendID)
	if friendID == "" {
		return nil, apperr.Invalid("friend_id", "friend_id is required")
	}
	if friendID == actor {
		return nil, ErrSelfFriend
	}

	if _, err := s.GetByID(ctx, actor); err != nil {
		return nil, err
	}
	friend, err := s.GetByID(ctx, friendID)
	if err != nil {
		return nil, err
	}

	already, err := s.repo.AreFriends(ctx, actor, friendID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, ErrAlreadyFriends
	}

	if err := s.repo.AddFriendship(ctx, actor, friendID); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": actor, "friend_id": friendID}).Info("friendship added")
	return friend, nil
}
