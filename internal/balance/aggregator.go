// Package balance derives who owes whom from a set of expenses. The
// aggregation functions are pure; Service loads the expense sets.
//
// Sign convention everywhere: a positive amount means the subject is owed
// money, a negative amount means the subject owes money.
//
// Settled shares are left out of every balance, pairwise and group alike.
// A share stops counting as soon as it is settled rather than staying on the
// books until the whole expense closes.
package balance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/expense"
	"github.com/fkhayef/splitledger/internal/money"
)

// PairwiseBalance returns subject's net balance against other across expenses.
func PairwiseBalance(expenses []*expense.Expense, subject, other string) decimal.Decimal {
	balance := decimal.Zero
	if subject == other {
		return balance
	}

	for _, e := range expenses {
		switch e.PaidBy {
		case subject:
			balance = balance.Add(outstanding(e, other))
		case other:
			balance = balance.Sub(outstanding(e, subject))
		}
	}
	return balance
}

// outstanding sums identity's unsettled entries in e.
func outstanding(e *expense.Expense, identity string) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range e.SplitWith {
		if s.UserID == identity && !s.Settled {
			sum = sum.Add(s.Amount)
		}
	}
	return sum
}

// ByCounterparty returns subject's non-zero net balance against every
// identity it shares an unsettled expense with. Each value equals
// PairwiseBalance(expenses, subject, counterparty).
func ByCounterparty(expenses []*expense.Expense, subject string) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		for _, s := range e.SplitWith {
			if s.Settled || s.UserID == e.PaidBy {
				continue
			}
			switch subject {
			case e.PaidBy:
				balances[s.UserID] = balances[s.UserID].Add(s.Amount)
			case s.UserID:
				balances[e.PaidBy] = balances[e.PaidBy].Sub(s.Amount)
			}
		}
	}

	for id, amount := range balances {
		if amount.IsZero() {
			delete(balances, id)
		}
	}
	return balances
}

// GroupBalances returns each member's net position over a group's expenses.
// Every unsettled share moves its amount from the participant to the payer,
// so the values sum to zero. Members always appear; identities that have
// left the group appear only while they still carry a balance.
func GroupBalances(expenses []*expense.Expense, members []string) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(members))
	for _, m := range members {
		balances[m] = decimal.Zero
	}

	for _, e := range expenses {
		for _, s := range e.SplitWith {
			if s.Settled || s.UserID == e.PaidBy {
				continue
			}
			balances[e.PaidBy] = balances[e.PaidBy].Add(s.Amount)
			balances[s.UserID] = balances[s.UserID].Sub(s.Amount)
		}
	}

	isMember := make(map[string]bool, len(members))
	for _, m := range members {
		isMember[m] = true
	}
	for id, amount := range balances {
		if !isMember[id] && amount.IsZero() {
			delete(balances, id)
		}
	}
	return balances
}

// Transfer is one suggested payment that reduces outstanding debt.
type Transfer struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type position struct {
	id     string
	amount decimal.Decimal
}

// SimplifyDebts turns a balance map into a short list of transfers that
// clears it. Largest debtors pay largest creditors first; ties break on
// identity so the result is deterministic.
func SimplifyDebts(balances map[string]decimal.Decimal) []Transfer {
	var creditors, debtors []position
	for id, amount := range balances {
		amount = money.Round(amount)
		switch {
		case amount.IsPositive():
			creditors = append(creditors, position{id, amount})
		case amount.IsNegative():
			debtors = append(debtors, position{id, amount.Neg()})
		}
	}
	byAmount := func(ps []position) {
		sort.Slice(ps, func(i, j int) bool {
			if c := ps[i].amount.Cmp(ps[j].amount); c != 0 {
				return c > 0
			}
			return ps[i].id < ps[j].id
		})
	}
	byAmount(creditors)
	byAmount(debtors)

	transfers := []Transfer{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		transfers = append(transfers, Transfer{From: debtors[i].id, To: creditors[j].id, Amount: amount})

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)
		if debtors[i].amount.IsZero() {
			i++
		}
		if creditors[j].amount.IsZero() {
			j++
		}
	}
	return transfers
}
