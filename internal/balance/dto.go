package balance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NetBalance is the caller's position against one other user.
// Positive = they owe you, negative = you owe them.
type NetBalance struct {
	UserID   string          `json:"user_id"`
	Username string          `json:"username,omitempty"`
	Amount   decimal.Decimal `json:"amount" swaggertype:"number"`
	Message  string          `json:"message"` // e.g. "John owes you 30.00"
}

// GroupBalanceResponse is every member's position in a group together with
// the transfers that would clear it.
type GroupBalanceResponse struct {
	GroupID   string                     `json:"group_id"`
	Balances  map[string]decimal.Decimal `json:"balances" swaggertype:"object,number"`
	Transfers []Transfer                 `json:"transfers"`
}

func newNetBalance(userID, username string, amount decimal.Decimal) *NetBalance {
	name := username
	if name == "" {
		name = userID
	}

	var message string
	switch {
	case amount.IsPositive():
		message = fmt.Sprintf("%s owes you %s", name, amount.StringFixed(2))
	case amount.IsNegative():
		message = fmt.Sprintf("You owe %s %s", name, amount.Neg().StringFixed(2))
	default:
		message = fmt.Sprintf("You and %s are settled up", name)
	}

	return &NetBalance{UserID: userID, Username: username, Amount: amount, Message: message}
}
