package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/expense/split"
)

// CreateExpenseRequest represents the request to create an expense
type CreateExpenseRequest struct {
	Description string             `json:"description" example:"Dinner"`
	Amount      decimal.Decimal    `json:"amount" swaggertype:"number" example:"90.00"`
	Currency    string             `json:"currency,omitempty" example:"USD"`
	Category    string             `json:"category,omitempty" example:"food"`
	PaidBy      string             `json:"paid_by,omitempty"`
	GroupID     *string            `json:"group_id,omitempty"`
	Date        *time.Time         `json:"date,omitempty"`
	SplitType   string             `json:"split_type,omitempty" enums:"equal,custom,percentage"`
	SplitWith   []split.SplitInput `json:"split_with"`
}

// UpdateExpenseRequest represents the request to update an expense. A
// non-empty split_with replaces the current split.
type UpdateExpenseRequest struct {
	Description *string            `json:"description,omitempty"`
	Amount      *decimal.Decimal   `json:"amount,omitempty" swaggertype:"number"`
	Currency    *string            `json:"currency,omitempty"`
	Category    *string            `json:"category,omitempty"`
	PaidBy      *string            `json:"paid_by,omitempty"`
	Date        *time.Time         `json:"date,omitempty"`
	SplitType   string             `json:"split_type,omitempty" enums:"equal,custom,percentage"`
	SplitWith   []split.SplitInput `json:"split_with,omitempty"`
}

// participantIDs lists the identities named in a split request.
func participantIDs(inputs []split.SplitInput) []string {
	ids := make([]string, len(inputs))
	for i, in := range inputs {
		ids[i] = in.UserID
	}
	return ids
}
