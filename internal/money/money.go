// Package money holds the numeric guards shared by the ledger: minimum
// amounts, the reconciliation tolerance and cent rounding.
package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultCurrency is used when an expense does not name one.
const DefaultCurrency = "USD"

var (
	// MinAmount is the smallest currency unit; expense totals must exceed it.
	MinAmount = decimal.New(1, -2)

	// Tolerance is the largest accepted drift between a total and its shares.
	Tolerance = decimal.New(1, -2)

	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Zero is the additive identity.
var Zero = decimal.Zero

// FromFloat converts a float amount, typically from tests or config.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Round rounds to cents.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// IsValidTotal reports whether d is an acceptable expense total.
func IsValidTotal(d decimal.Decimal) bool {
	return d.GreaterThan(MinAmount)
}

// IsCents reports whether d has no precision beyond the smallest currency unit.
func IsCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// WithinTolerance reports whether a and b differ by at most Tolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// Sum adds all amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// NormalizeCurrency trims and upper-cases a currency code, defaulting to USD.
func NormalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency
	}
	return code
}

// IsValidCurrency reports whether code is a 3-letter uppercase code.
func IsValidCurrency(code string) bool {
	return currencyPattern.MatchString(code)
}
