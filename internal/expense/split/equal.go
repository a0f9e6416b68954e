package split

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/apperr"
	"github.com/fkhayef/splitledger/internal/money"
)

// =============================================================================
// EQUAL SPLIT STRATEGY
// Divides the expense equally among all participants, payer included
// =============================================================================

// EqualStrategy implements the Strategy interface for equal splits
type EqualStrategy struct{}

// Type returns the split type identifier
func (s *EqualStrategy) Type() SplitType {
	return SplitTypeEqual
}

// Calculate gives every participant total/count truncated to cents. The
// leftover cents go out one at a time to the first participants, so the
// shares sum to total exactly and differ by at most one cent.
func (s *EqualStrategy) Calculate(total decimal.Decimal, participants []SplitInput) ([]Share, error) {
	if len(participants) == 0 {
		return nil, errNoParticipants
	}
	if total.IsNegative() {
		return nil, apperr.Invalid("amount", "amount cannot be negative")
	}

	count := decimal.NewFromInt(int64(len(participants)))
	perPerson := total.Div(count).Truncate(2)
	leftover := money.Round(total.Sub(perPerson.Mul(count))).Shift(2).IntPart()

	shares := make([]Share, len(participants))
	for i, p := range participants {
		amount := perPerson
		if int64(i) < leftover {
			amount = amount.Add(money.MinAmount)
		}
		shares[i] = Share{UserID: p.UserID, Amount: amount}
	}

	return shares, nil
}
