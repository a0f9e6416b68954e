package split

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/apperr"
	"github.com/fkhayef/splitledger/internal/money"
)

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the expense based on specified percentages for each participant
// =============================================================================

var hundred = decimal.NewFromInt(100)

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() SplitType {
	return SplitTypePercentage
}

func (s *PercentageStrategy) validate(participants []SplitInput) error {
	if len(participants) == 0 {
		return errNoParticipants
	}

	totalPercentage := decimal.Zero
	for _, p := range participants {
		if p.Percentage == nil {
			return apperr.Invalid("splitWith", "percentage required for every participant")
		}
		if p.Percentage.IsNegative() || p.Percentage.GreaterThan(hundred) {
			return apperr.Mismatch("splitWith", "percentage out of range", "0-100", p.Percentage.String())
		}
		totalPercentage = totalPercentage.Add(*p.Percentage)
	}

	// Allow for small rounding errors (99.99 to 100.01)
	if !money.WithinTolerance(totalPercentage, hundred) {
		return apperr.Mismatch("splitWith", "percentages must sum to 100", "100", totalPercentage.String())
	}
	return nil
}

// Calculate converts percentages into cent amounts; the last participant
// absorbs rounding so the shares sum to total.
func (s *PercentageStrategy) Calculate(total decimal.Decimal, participants []SplitInput) ([]Share, error) {
	if err := s.validate(participants); err != nil {
		return nil, err
	}

	shares := make([]Share, len(participants))
	allocated := decimal.Zero
	for i, p := range participants {
		amount := money.Round(total.Mul(*p.Percentage).Div(hundred))
		allocated = allocated.Add(amount)
		shares[i] = Share{UserID: p.UserID, Amount: amount}
	}

	if diff := money.Round(total.Sub(allocated)); !diff.IsZero() {
		last := &shares[len(shares)-1]
		last.Amount = last.Amount.Add(diff)
	}

	if err := Reconcile(total, shares); err != nil {
		return nil, err
	}
	return shares, nil
}
