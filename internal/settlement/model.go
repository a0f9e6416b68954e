package settlement

import "github.com/fkhayef/splitledger/internal/expense"

// Receipt is the outcome of settling one participant's share
type Receipt struct {
	Expense      *expense.Expense `json:"expense"`
	UserID       string           `json:"user_id"`                 // Whose share was settled
	SettledBy    string           `json:"settled_by"`              // The participant or the payer
	FullySettled bool             `json:"fully_settled,omitempty"` // This settlement closed the expense
}
