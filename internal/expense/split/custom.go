package split

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/apperr"
)

// =============================================================================
// CUSTOM SPLIT STRATEGY
// Each participant owes a caller-supplied amount (must sum to total)
// =============================================================================

// CustomStrategy implements the Strategy interface for explicit amounts
type CustomStrategy struct{}

// Type returns the split type identifier
func (s *CustomStrategy) Type() SplitType {
	return SplitTypeCustom
}

// Calculate validates the supplied amounts and returns them unchanged
func (s *CustomStrategy) Calculate(total decimal.Decimal, participants []SplitInput) ([]Share, error) {
	if len(participants) == 0 {
		return nil, errNoParticipants
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		if p.Amount == nil {
			return nil, apperr.Invalid("splitWith", "amount required for every participant")
		}
		shares[i] = Share{UserID: p.UserID, Amount: *p.Amount}
	}

	if err := Reconcile(total, shares); err != nil {
		return nil, err
	}
	return shares, nil
}
