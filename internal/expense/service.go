package expense

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fkhayef/splitledger/internal/apperr"
	"github.com/fkhayef/splitledger/internal/database"
	"github.com/fkhayef/splitledger/internal/expense/split"
	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/membership"
	"github.com/fkhayef/splitledger/internal/metrics"
)

// Common errors
var (
	ErrExpenseNotFound   = apperr.NotFound("expense")
	ErrNotCreatorOrPayer = apperr.Forbidden("only the creator or payer can modify this expense")
	ErrNotInvolved       = apperr.Forbidden("you are not involved in this expense")
	ErrExpenseSettled    = apperr.Forbidden("expense is fully settled")
)

// GroupFinder loads groups with their members; it returns nil for unknown ids
type GroupFinder interface {
	GetByID(ctx context.Context, id string) (*group.Group, error)
}

// FriendFinder loads a user's friend set
type FriendFinder interface {
	FriendIDs(ctx context.Context, userID string) ([]string, error)
}

// Service handles expense business logic
type Service struct {
	repo         *Repository
	groups       GroupFinder
	friends      FriendFinder
	splitFactory *split.Factory // Factory pattern for creating split strategies
	log          logrus.FieldLogger
	now          func() time.Time
}

// NewService creates a new expense service with dependencies injected
func NewService(repo *Repository, groups GroupFinder, friends FriendFinder, splitFactory *split.Factory, log logrus.FieldLogger) *Service {
	return &Service{
		repo:         repo,
		groups:       groups,
		friends:      friends,
		splitFactory: splitFactory,
		log:          log,
		now:          database.Now,
	}
}

// Create records a new expense. The participants are checked against the
// group roster (or the actor's friends), then split by the requested
// strategy, then validated as a whole.
func (s *Service) Create(ctx context.Context, actor string, req *CreateExpenseRequest) (e *Expense, err error) {
	defer func() { metrics.ObserveError(err) }()

	payer := strings.TrimSpace(req.PaidBy)
	if payer == "" {
		payer = actor
	}
	groupID := normalizeGroupID(req.GroupID)

	if err := s.authorize(ctx, actor, payer, participantIDs(req.SplitWith), groupID); err != nil {
		return nil, err
	}

	// Use FACTORY PATTERN to get the appropriate split strategy
	strategy, err := s.splitFactory.CreateFromString(req.SplitType)
	if err != nil {
		return nil, err
	}

	// Use STRATEGY PATTERN - calculate shares using the selected strategy
	shares, err := strategy.Calculate(req.Amount, req.SplitWith)
	if err != nil {
		return nil, err
	}

	e, err = New(Draft{
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Category:    req.Category,
		CreatedBy:   actor,
		PaidBy:      payer,
		Shares:      shares,
		GroupID:     groupID,
		Date:        req.Date,
	}, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	metrics.ExpensesCreated.WithLabelValues(string(e.Category)).Inc()
	s.log.WithFields(logrus.Fields{
		"expense_id": e.ID,
		"user_id":    actor,
		"paid_by":    e.PaidBy,
		"amount":     e.Amount.StringFixed(2),
		"split_type": strategy.Type(),
	}).Info("expense created")
	return e, nil
}

func normalizeGroupID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// authorize loads the eligibility sets and runs the split gate
func (s *Service) authorize(ctx context.Context, actor, payer string, participants []string, groupID *string) error {
	if groupID != nil {
		g, err := s.groups.GetByID(ctx, *groupID)
		if err != nil {
			return err
		}
		if g == nil {
			return group.ErrGroupNotFound
		}
		if !g.IsActive() {
			return group.ErrGroupArchived
		}
		return membership.AuthorizeSplit(actor, payer, participants, g.Roster(), nil)
	}

	friendIDs, err := s.friends.FriendIDs(ctx, actor)
	if err != nil {
		return err
	}
	return membership.AuthorizeSplit(actor, payer, participants, nil, membership.NewRoster(membership.IDs(friendIDs)))
}

// Get returns an expense visible to actor: creator, payer, participant or
// member of its group
func (s *Service) Get(ctx context.Context, actor, id string) (*Expense, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	if e.Involves(actor) {
		return e, nil
	}

	if e.GroupID != nil {
		g, err := s.groups.GetByID(ctx, *e.GroupID)
		if err != nil {
			return nil, err
		}
		if g != nil && g.IsMember(actor) {
			return e, nil
		}
	}
	return nil, ErrNotInvolved
}

// List returns every expense involving actor, or one group's expenses when
// groupID is set
func (s *Service) List(ctx context.Context, actor, groupID string) ([]*Expense, error) {
	if groupID != "" {
		return s.ListByGroup(ctx, actor, groupID)
	}
	return s.repo.ListInvolving(ctx, actor)
}

// ListByGroup returns a group's expenses; members only
func (s *Service) ListByGroup(ctx context.Context, actor, groupID string) ([]*Expense, error) {
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
	return s.repo.ListByGroup(ctx, groupID)
}

// Update patches an open expense. Only the creator or payer may update, and
// a new payer or split goes through the split gate again.
func (s *Service) Update(ctx context.Context, actor, id string, req *UpdateExpenseRequest) (e *Expense, err error) {
	defer func() { metrics.ObserveError(err) }()

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrExpenseNotFound
	}
	if !current.CanModify(actor) {
		return nil, ErrNotCreatorOrPayer
	}
	if current.IsSettled {
		return nil, ErrExpenseSettled
	}

	var strategy split.Strategy
	if len(req.SplitWith) > 0 {
		if strategy, err = s.splitFactory.CreateFromString(req.SplitType); err != nil {
			return nil, err
		}
	}

	if req.PaidBy != nil || strategy != nil {
		payer := current.PaidBy
		if req.PaidBy != nil {
			payer = strings.TrimSpace(*req.PaidBy)
		}
		participants := current.Participants()
		if strategy != nil {
			participants = participantIDs(req.SplitWith)
		}
		if err := s.authorize(ctx, actor, payer, participants, current.GroupID); err != nil {
			return nil, err
		}
	}

	e, err = s.repo.Mutate(ctx, id, func(e *Expense) error {
		if !e.CanModify(actor) {
			return ErrNotCreatorOrPayer
		}

		patch := Patch{
			Description: req.Description,
			Amount:      req.Amount,
			Currency:    req.Currency,
			Category:    req.Category,
			PaidBy:      req.PaidBy,
			Date:        req.Date,
		}
		if strategy != nil {
			total := e.Amount
			if req.Amount != nil {
				total = *req.Amount
			}
			shares, err := strategy.Calculate(total, req.SplitWith)
			if err != nil {
				return err
			}
			patch.Shares = shares
		}
		return e.ApplyPatch(patch, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"expense_id": id, "user_id": actor}).Info("expense updated")
	return e, nil
}

// Delete removes an expense; only the creator or payer may do this
func (s *Service) Delete(ctx context.Context, actor, id string) (err error) {
	defer func() { metrics.ObserveError(err) }()

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrExpenseNotFound
	}
	if !e.CanModify(actor) {
		return ErrNotCreatorOrPayer
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"expense_id": id, "user_id": actor}).Info("expense deleted")
	return nil
}
