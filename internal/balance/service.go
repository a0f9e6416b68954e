package balance

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fkhayef/splitledger/internal/apperr"
	"github.com/fkhayef/splitledger/internal/expense"
	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/user"
)

// ExpenseLister loads the expense sets balances are computed from
type ExpenseLister interface {
	ListInvolving(ctx context.Context, identity string) ([]*expense.Expense, error)
	ListByGroup(ctx context.Context, groupID string) ([]*expense.Expense, error)
}

// GroupFinder loads groups with their members; it returns nil for unknown ids
type GroupFinder interface {
	GetByID(ctx context.Context, id string) (*group.Group, error)
}

// UserFinder looks up users; it returns nil for unknown ids
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// Service answers balance queries. It only reads.
type Service struct {
	expenses ExpenseLister
	groups   GroupFinder
	users    UserFinder
	log      logrus.FieldLogger
}

// NewService creates a new balance service
func NewService(expenses ExpenseLister, groups GroupFinder, users UserFinder, log logrus.FieldLogger) *Service {
	return &Service{expenses: expenses, groups: groups, users: users, log: log}
}

// WithUser returns actor's net balance against otherID
func (s *Service) WithUser(ctx context.Context, actor, otherID string) (*NetBalance, error) {
	otherID = strings.TrimSpace(otherID)
	if otherID == "" {
		return nil, apperr.Invalid("userId", "user id is required")
	}

	other, err := s.users.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, user.ErrUserNotFound
	}

	expenses, err := s.expenses.ListInvolving(ctx, actor)
	if err != nil {
		return nil, err
	}

	return newNetBalance(other.ID, other.Username, PairwiseBalance(expenses, actor, other.ID)), nil
}

// All returns actor's non-zero balances against every counterparty, largest
// amounts owed to the actor first
func (s *Service) All(ctx context.Context, actor string) ([]*NetBalance, error) {
	expenses, err := s.expenses.ListInvolving(ctx, actor)
	if err != nil {
		return nil, err
	}

	balances := ByCounterparty(expenses, actor)
	result := make([]*NetBalance, 0, len(balances))
	for id, amount := range balances {
		var username string
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if u != nil {
			username = u.Username
		}
		result = append(result, newNetBalance(id, username, amount))
	}

	sort.Slice(result, func(i, j int) bool {
		if c := result[i].Amount.Cmp(result[j].Amount); c != 0 {
			return c > 0
		}
		return result[i].UserID < result[j].UserID
	})
	return result, nil
}

// ForGroup returns every member's position in a group; members only
func (s *Service) ForGroup(ctx context.Context, actor, groupID string) (*GroupBalanceResponse, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, group.ErrGroupNotFound
	}
	if !g.IsMember(actor) {
		return nil, group.ErrNotMember
	}

	expenses, err := s.expenses.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := GroupBalances(expenses, g.MemberIDs())
	s.log.WithFields(logrus.Fields{
		"group_id": groupID,
		"user_id":  actor,
		"expenses": len(expenses),
	}).Debug("group balances computed")

	return &GroupBalanceResponse{
		GroupID:   groupID,
		Balances:  balances,
		Transfers: SimplifyDebts(balances),
	}, nil
}
