package split

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/apperr"
	"github.com/fkhayef/splitledger/internal/money"
)

// SplitType defines how a total is divided among participants
type SplitType string

const (
	SplitTypeEqual      SplitType = "equal"
	SplitTypeCustom     SplitType = "custom"
	SplitTypePercentage SplitType = "percentage"
)

// SplitInput is one participant of a split request with optional values
type SplitInput struct {
	UserID     string           `json:"user_id"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`     // For custom split
	Percentage *decimal.Decimal `json:"percentage,omitempty"` // For percentage split
}

// Share is the amount allocated to one participant
type Share struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Calculate computes one share per participant, in input order
	Calculate(total decimal.Decimal, participants []SplitInput) ([]Share, error)

	// Type returns the type identifier for this strategy
	Type() SplitType
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewSplitStrategyFactory creates a new factory instance
func NewSplitStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy for splitType
func (f *Factory) Create(splitType SplitType) (Strategy, error) {
	switch splitType {
	case SplitTypeEqual:
		return &EqualStrategy{}, nil
	case SplitTypeCustom:
		return &CustomStrategy{}, nil
	case SplitTypePercentage:
		return &PercentageStrategy{}, nil
	default:
		return nil, apperr.Invalid("split_type", fmt.Sprintf("unknown split type %q", splitType))
	}
}

// CreateFromString creates a strategy from a request value; empty means custom
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	splitType = strings.ToLower(strings.TrimSpace(splitType))
	if splitType == "" {
		splitType = string(SplitTypeCustom)
	}
	return f.Create(SplitType(splitType))
}

// Reconcile checks that shares are non-negative whole cents and sum to total within
// money.Tolerance.
func Reconcile(total decimal.Decimal, shares []Share) error {
	sum := decimal.Zero
	for _, s := range shares {
		if s.Amount.IsNegative() {
			return apperr.Mismatch("splitWith", "split amounts cannot be negative", ">= 0", s.Amount.String())
		}
		if !money.IsCents(s.Amount) {
			return apperr.Mismatch("splitWith", "split amounts cannot be finer than a cent", "2 decimal places", s.Amount.String())
		}
		sum = sum.Add(s.Amount)
	}
	if !money.WithinTolerance(sum, total) {
		return apperr.Mismatch("splitWith", "split amounts must sum to the expense amount",
			total.StringFixed(2), sum.StringFixed(2))
	}
	return nil
}

var errNoParticipants = apperr.Invalid("participants", "at least one participant is required")
