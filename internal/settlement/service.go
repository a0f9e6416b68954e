package settlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fkhayef/splitledger/internal/apperr"
	"github.com/fkhayef/splitledger/internal/database"
	"github.com/fkhayef/splitledger/internal/expense"
	"github.com/fkhayef/splitledger/internal/metrics"
)

// Common errors
var (
	ErrShareNotFound  = apperr.NotFound("share")
	ErrNotAllowed     = apperr.Forbidden("only the participant or the payer can settle this share")
	ErrAlreadySettled = fmt.Errorf("%w: this share is already settled", apperr.ErrAlreadySettled)
)

// ExpenseMutator runs an atomic read-modify-write on one expense
type ExpenseMutator interface {
	Mutate(ctx context.Context, id string, fn func(*expense.Expense) error) (*expense.Expense, error)
}

// Service handles settlement business logic
type Service struct {
	expenses ExpenseMutator
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewService creates a new settlement service
func NewService(expenses ExpenseMutator, log logrus.FieldLogger) *Service {
	return &Service{expenses: expenses, log: log, now: database.Now}
}

// SettleSplit marks target's share of an expense as settled. A participant
// settles their own share; the payer may settle anyone's share once paid.
// Settling the last open share closes the expense. Two settlements racing on
// the same expense both land because each one re-reads the current shares.
func (s *Service) SettleSplit(ctx context.Context, actor, expenseID, target string) (r *Receipt, err error) {
	defer func() { metrics.ObserveError(err) }()

	target = strings.TrimSpace(target)
	if target == "" {
		target = actor
	}

	var closed bool
	e, err := s.expenses.Mutate(ctx, expenseID, func(e *expense.Expense) error {
		entry, ok := e.Entry(target)
		if !ok {
			return ErrShareNotFound
		}
		if actor != target && actor != e.PaidBy {
			return ErrNotAllowed
		}
		if entry.Settled {
			return ErrAlreadySettled
		}

		wasSettled := e.IsSettled
		e.SettleParticipant(target, s.now())
		closed = !wasSettled && e.IsSettled
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.SharesSettled.Inc()
	log := s.log.WithFields(logrus.Fields{
		"expense_id": expenseID,
		"user_id":    target,
		"settled_by": actor,
	})
	log.Info("share settled")
	if closed {
		metrics.ExpensesFullySettled.Inc()
		log.Info("expense fully settled")
	}

	return &Receipt{Expense: e, UserID: target, SettledBy: actor, FullySettled: closed}, nil
}
