package split

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/apperr"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func people(ids ...string) []SplitInput {
	inputs := make([]SplitInput, len(ids))
	for i, id := range ids {
		inputs[i] = SplitInput{UserID: id}
	}
	return inputs
}

func sum(shares []Share) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}

func TestEqualStrategy(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		participants []string
		want         []string
		wantErr      bool
	}{
		{
			name:         "divides evenly",
			total:        "90.00",
			participants: []string{"alice", "bob", "carol"},
			want:         []string{"30", "30", "30"},
		},
		{
			name:         "leftover cent goes to first participant",
			total:        "100.00",
			participants: []string{"alice", "bob", "carol"},
			want:         []string{"33.34", "33.33", "33.33"},
		},
		{
			name:         "single participant takes everything",
			total:        "12.34",
			participants: []string{"alice"},
			want:         []string{"12.34"},
		},
		{
			name:         "many participants still reconcile",
			total:        "100.00",
			participants: []string{"a", "b", "c", "d", "e", "f", "g"},
			want:         []string{"14.29", "14.29", "14.29", "14.29", "14.28", "14.28", "14.28"},
		},
		{
			name:         "fewer cents than participants",
			total:        "0.05",
			participants: []string{"a", "b", "c", "d", "e", "f", "g"},
			want:         []string{"0.01", "0.01", "0.01", "0.01", "0.01", "0", "0"},
		},
		{
			name:         "no participants",
			total:        "10.00",
			participants: nil,
			wantErr:      true,
		},
	}

	strategy := &EqualStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := strategy.Calculate(dec(tt.total), people(tt.participants...))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Calculate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrValidation) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if len(shares) != len(tt.want) {
				t.Fatalf("got %d shares, want %d", len(shares), len(tt.want))
			}
			for i, s := range shares {
				if s.UserID != tt.participants[i] {
					t.Errorf("share %d user = %s, want %s", i, s.UserID, tt.participants[i])
				}
				if !s.Amount.Equal(dec(tt.want[i])) {
					t.Errorf("share %d amount = %s, want %s", i, s.Amount, tt.want[i])
				}
			}
			if !sum(shares).Equal(dec(tt.total)) {
				t.Errorf("shares sum to %s, want %s", sum(shares), tt.total)
			}
		})
	}
}

func TestEqualStrategyDistributesCents(t *testing.T) {
	tests := []struct {
		total string
		count int
	}{
		{"0.05", 7},
		{"1.00", 150},
		{"100.00", 7},
		{"0.02", 3},
		{"9999.99", 13},
	}

	strategy := &EqualStrategy{}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.total, tt.count), func(t *testing.T) {
			ids := make([]string, tt.count)
			for i := range ids {
				ids[i] = fmt.Sprintf("u%d", i)
			}

			shares, err := strategy.Calculate(dec(tt.total), people(ids...))
			if err != nil {
				t.Fatalf("Calculate() error = %v", err)
			}
			if err := Reconcile(dec(tt.total), shares); err != nil {
				t.Fatalf("Reconcile() error = %v", err)
			}
			if !sum(shares).Equal(dec(tt.total)) {
				t.Errorf("shares sum to %s, want %s", sum(shares), tt.total)
			}

			lo, hi := shares[0].Amount, shares[0].Amount
			for i, s := range shares {
				if s.Amount.IsNegative() {
					t.Errorf("share %d = %s is negative", i, s.Amount)
				}
				if i > 0 && s.Amount.GreaterThan(shares[i-1].Amount) {
					t.Errorf("share %d = %s exceeds share %d = %s", i, s.Amount, i-1, shares[i-1].Amount)
				}
				lo, hi = decimal.Min(lo, s.Amount), decimal.Max(hi, s.Amount)
			}
			if hi.Sub(lo).GreaterThan(dec("0.01")) {
				t.Errorf("shares range %s..%s, want at most one cent apart", lo, hi)
			}
		})
	}
}

func TestReconcileRejectsFractionalCents(t *testing.T) {
	shares := []Share{{UserID: "a", Amount: dec("3.335")}, {UserID: "b", Amount: dec("3.335")}, {UserID: "c", Amount: dec("3.33")}}
	err := Reconcile(dec("10.00"), shares)
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) || ve.Field != "splitWith" {
		t.Errorf("Reconcile() error = %v, want splitWith validation error", err)
	}
}

func TestCustomStrategy(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		amounts []string
		wantErr bool
	}{
		{"exact match", "100.00", []string{"40.00", "40.00", "20.00"}, false},
		{"drift within tolerance", "100.00", []string{"33.33", "33.33", "33.33"}, false},
		{"drift beyond tolerance", "100.00", []string{"40.00", "40.00", "19.00"}, true},
		{"negative amount", "100.00", []string{"120.00", "-20.00"}, true},
		{"zero share allowed", "50.00", []string{"50.00", "0"}, false},
	}

	strategy := &CustomStrategy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := make([]SplitInput, len(tt.amounts))
			for i, a := range tt.amounts {
				inputs[i] = SplitInput{UserID: string(rune('a' + i)), Amount: decPtr(a)}
			}

			shares, err := strategy.Calculate(dec(tt.total), inputs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Calculate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var ve *apperr.ValidationError
				if !errors.As(err, &ve) || ve.Field != "splitWith" {
					t.Errorf("expected splitWith validation error, got %v", err)
				}
				return
			}
			for i, s := range shares {
				if !s.Amount.Equal(dec(tt.amounts[i])) {
					t.Errorf("share %d = %s, want %s", i, s.Amount, tt.amounts[i])
				}
			}
		})
	}
}

func TestCustomStrategyRequiresAmounts(t *testing.T) {
	_, err := (&CustomStrategy{}).Calculate(dec("10"), people("alice"))
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestPercentageStrategy(t *testing.T) {
	inputs := []SplitInput{
		{UserID: "alice", Percentage: decPtr("50")},
		{UserID: "bob", Percentage: decPtr("25")},
		{UserID: "carol", Percentage: decPtr("25")},
	}
	shares, err := (&PercentageStrategy{}).Calculate(dec("80.00"), inputs)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	want := []string{"40", "20", "20"}
	for i, s := range shares {
		if !s.Amount.Equal(dec(want[i])) {
			t.Errorf("share %d = %s, want %s", i, s.Amount, want[i])
		}
	}

	thirds := []SplitInput{
		{UserID: "alice", Percentage: decPtr("33.33")},
		{UserID: "bob", Percentage: decPtr("33.33")},
		{UserID: "carol", Percentage: decPtr("33.34")},
	}
	shares, err = (&PercentageStrategy{}).Calculate(dec("10.00"), thirds)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if !sum(shares).Equal(dec("10.00")) {
		t.Errorf("shares sum to %s, want 10.00", sum(shares))
	}

	bad := []SplitInput{
		{UserID: "alice", Percentage: decPtr("60")},
		{UserID: "bob", Percentage: decPtr("30")},
	}
	if _, err := (&PercentageStrategy{}).Calculate(dec("10.00"), bad); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for 90%% total, got %v", err)
	}
}

func TestFactory(t *testing.T) {
	f := NewSplitStrategyFactory()
	for in, want := range map[string]SplitType{
		"equal":      SplitTypeEqual,
		"EQUAL":      SplitTypeEqual,
		"":           SplitTypeCustom,
		"custom":     SplitTypeCustom,
		"percentage": SplitTypePercentage,
	} {
		s, err := f.CreateFromString(in)
		if err != nil {
			t.Fatalf("CreateFromString(%q) failed: %v", in, err)
		}
		if s.Type() != want {
			t.Errorf("CreateFromString(%q).Type() = %s, want %s", in, s.Type(), want)
		}
	}

	if _, err := f.CreateFromString("shares"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for unknown type, got %v", err)
	}
}
