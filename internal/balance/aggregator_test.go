package balance

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/expense"
	"github.com/fkhayef/splitledger/internal/money"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// exp builds an expense paid by payer; pairs alternate identity and amount.
func exp(payer string, pairs ...string) *expense.Expense {
	e := &expense.Expense{PaidBy: payer, CreatedBy: payer}
	for i := 0; i+1 < len(pairs); i += 2 {
		e.SplitWith = append(e.SplitWith, expense.SplitEntry{UserID: pairs[i], Amount: d(pairs[i+1])})
		e.Amount = e.Amount.Add(d(pairs[i+1]))
	}
	return e
}

func TestPairwiseBalance(t *testing.T) {
	e := exp("A", "B", "50", "C", "50")
	expenses := []*expense.Expense{e}

	tests := []struct {
		subject, other string
		want           string
	}{
		{"A", "B", "50"},
		{"B", "A", "-50"},
		{"B", "C", "0"},
		{"A", "A", "0"},
	}
	for _, tt := range tests {
		if got := PairwiseBalance(expenses, tt.subject, tt.other); !got.Equal(d(tt.want)) {
			t.Errorf("PairwiseBalance(%s, %s) = %s, want %s", tt.subject, tt.other, got, tt.want)
		}
	}
}

func TestPairwiseBalanceNetsBothDirections(t *testing.T) {
	expenses := []*expense.Expense{
		exp("A", "A", "20", "B", "20"),
		exp("B", "A", "15", "B", "15"),
		exp("B", "A", "7.5"),
	}
	if got := PairwiseBalance(expenses, "A", "B"); !got.Equal(d("-2.5")) {
		t.Errorf("A vs B = %s, want -2.5", got)
	}

	// settled shares drop out
	expenses[1].SplitWith[0].Settled = true
	if got := PairwiseBalance(expenses, "A", "B"); !got.Equal(d("12.5")) {
		t.Errorf("A vs B after settlement = %s, want 12.5", got)
	}
}

func TestPairwiseAntisymmetry(t *testing.T) {
	expenses := []*expense.Expense{
		exp("A", "A", "33.34", "B", "33.33", "C", "33.33"),
		exp("B", "A", "10", "C", "5.55"),
		exp("C", "B", "12.01", "A", "0.99"),
		exp("A", "B", "1", "B", "2"),
	}
	ids := []string{"A", "B", "C", "D"}
	for _, x := range ids {
		for _, y := range ids {
			xy := PairwiseBalance(expenses, x, y)
			yx := PairwiseBalance(expenses, y, x)
			if !xy.Equal(yx.Neg()) {
				t.Errorf("PairwiseBalance(%s,%s) = %s but (%s,%s) = %s", x, y, xy, y, x, yx)
			}
		}
	}
}

func TestByCounterpartyMatchesPairwise(t *testing.T) {
	expenses := []*expense.Expense{
		exp("A", "A", "30", "B", "30", "C", "30"),
		exp("B", "A", "25", "B", "25"),
		exp("C", "A", "30"),
	}

	got := ByCounterparty(expenses, "A")
	if len(got) != 1 {
		t.Fatalf("ByCounterparty = %v, want only B (C nets to zero)", got)
	}
	for id, amount := range got {
		if want := PairwiseBalance(expenses, "A", id); !amount.Equal(want) {
			t.Errorf("counterparty %s = %s, pairwise = %s", id, amount, want)
		}
	}
	if !got["B"].Equal(d("5")) {
		t.Errorf("B = %s, want 5", got["B"])
	}
}

func TestGroupBalances(t *testing.T) {
	members := []string{"A", "B", "C"}
	expenses := []*expense.Expense{
		exp("A", "A", "40", "B", "40", "C", "40"),
		exp("B", "A", "30", "B", "30", "C", "30"),
	}

	got := GroupBalances(expenses, members)
	want := map[string]string{"A": "50", "B": "20", "C": "-70"}
	for id, w := range want {
		if !got[id].Equal(d(w)) {
			t.Errorf("balance[%s] = %s, want %s", id, got[id], w)
		}
	}
	assertConserved(t, got)
}

func TestGroupBalancesConservation(t *testing.T) {
	members := []string{"A", "B", "C", "D"}
	expenses := []*expense.Expense{
		exp("A", "A", "14.29", "B", "14.29", "C", "14.29", "D", "14.26"),
		exp("D", "B", "0.01", "C", "99.99"),
		exp("C", "A", "33.34", "B", "33.33", "C", "33.33"),
		// E left the group but still owes
		exp("B", "E", "12", "B", "3"),
	}
	expenses[2].SplitWith[1].Settled = true

	got := GroupBalances(expenses, members)
	assertConserved(t, got)
	if !got["E"].Equal(d("-12")) {
		t.Errorf("former member E = %s, want -12", got["E"])
	}
	if _, ok := got["D"]; !ok {
		t.Error("every member should appear")
	}
}

func TestSettlingShareChangesBalances(t *testing.T) {
	e := exp("A", "A", "30", "B", "30", "C", "30")
	expenses := []*expense.Expense{e}

	if got := PairwiseBalance(expenses, "A", "C"); !got.Equal(d("30")) {
		t.Fatalf("A vs C before settlement = %s, want 30", got)
	}

	e.SplitWith[2].Settled = true

	if got := PairwiseBalance(expenses, "A", "C"); !got.IsZero() {
		t.Errorf("A vs C after settlement = %s, want 0", got)
	}
	if got := PairwiseBalance(expenses, "A", "B"); !got.Equal(d("30")) {
		t.Errorf("A vs B = %s, want 30", got)
	}

	balances := GroupBalances(expenses, []string{"A", "B", "C"})
	for id, want := range map[string]string{"A": "30", "B": "-30", "C": "0"} {
		if !balances[id].Equal(d(want)) {
			t.Errorf("group balance[%s] = %s, want %s", id, balances[id], want)
		}
	}
}

func TestGroupBalancesEmpty(t *testing.T) {
	got := GroupBalances(nil, []string{"A", "B"})
	if len(got) != 2 || !got["A"].IsZero() || !got["B"].IsZero() {
		t.Errorf("GroupBalances(nil) = %v", got)
	}
}

func assertConserved(t *testing.T, balances map[string]decimal.Decimal) {
	t.Helper()
	sum := decimal.Zero
	for _, amount := range balances {
		sum = sum.Add(amount)
	}
	if !money.WithinTolerance(sum, decimal.Zero) {
		t.Errorf("balances sum to %s, want 0", sum)
	}
}

func TestSimplifyDebts(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"A": d("50"),
		"B": d("20"),
		"C": d("-70"),
		"D": decimal.Zero,
	}

	got := SimplifyDebts(balances)
	want := []Transfer{
		{From: "C", To: "A", Amount: d("50")},
		{From: "C", To: "B", Amount: d("20")},
	}
	if len(got) != len(want) {
		t.Fatalf("SimplifyDebts = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i].From != want[i].From || got[i].To != want[i].To || !got[i].Amount.Equal(want[i].Amount) {
			t.Errorf("transfer %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	// applying the transfers clears every balance
	for _, tr := range got {
		balances[tr.From] = balances[tr.From].Add(tr.Amount)
		balances[tr.To] = balances[tr.To].Sub(tr.Amount)
	}
	for id, amount := range balances {
		if !amount.IsZero() {
			t.Errorf("%s left with %s", id, amount)
		}
	}

	if got := SimplifyDebts(map[string]decimal.Decimal{}); got == nil || len(got) != 0 {
		t.Errorf("SimplifyDebts(empty) = %#v, want empty slice", got)
	}
}
