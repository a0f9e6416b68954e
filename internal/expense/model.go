package expense

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/apperr"
	"github.com/fkhayef/splitledger/internal/expense/split"
	"github.com/fkhayef/splitledger/internal/money"
)

// MaxDescriptionLength is measured in characters after trimming.
const MaxDescriptionLength = 200

// Category classifies an expense
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryUtilities     Category = "utilities"
	CategoryHealthcare    Category = "healthcare"
	CategoryTravel        Category = "travel"
	CategoryOther         Category = "other"
)

var categories = map[Category]bool{
	CategoryFood:          true,
	CategoryTransport:     true,
	CategoryEntertainment: true,
	CategoryShopping:      true,
	CategoryUtilities:     true,
	CategoryHealthcare:    true,
	CategoryTravel:        true,
	CategoryOther:         true,
}

// ParseCategory lower-cases s and checks it; empty means other.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return CategoryOther, nil
	}
	if !categories[c] {
		return "", apperr.Mismatch("category", "unknown category",
			"food|transport|entertainment|shopping|utilities|healthcare|travel|other", s)
	}
	return c, nil
}

// SplitEntry is one participant's share of an expense
type SplitEntry struct {
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Settled   bool            `json:"settled"`
	SettledAt *time.Time      `json:"settled_at,omitempty"`
}

// Expense represents a shared outlay
type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    Category        `json:"category"`
	CreatedBy   string          `json:"created_by"`
	PaidBy      string          `json:"paid_by"`
	SplitWith   []SplitEntry    `json:"split_with"`
	Date        time.Time       `json:"date"`
	GroupID     *string         `json:"group_id"`
	IsSettled   bool            `json:"is_settled"`
	SettledAt   *time.Time      `json:"settled_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int64           `json:"-"`
}

// Draft carries the caller-supplied fields of a new expense. Shares come
// from a split strategy.
type Draft struct {
	Description string
	Amount      decimal.Decimal
	Currency    string
	Category    string
	CreatedBy   string
	PaidBy      string
	Shares      []split.Share
	GroupID     *string
	Date        *time.Time
}

// New validates a draft and builds an unsettled expense. Membership
// eligibility is checked by the caller beforehand.
func New(d Draft, now time.Time) (*Expense, error) {
	if strings.TrimSpace(d.CreatedBy) == "" {
		return nil, apperr.Invalid("createdBy", "creator is required")
	}
	paidBy := strings.TrimSpace(d.PaidBy)
	if paidBy == "" {
		paidBy = d.CreatedBy
	}

	category, err := ParseCategory(d.Category)
	if err != nil {
		return nil, err
	}

	date := now
	if d.Date != nil {
		date = d.Date.UTC()
	}

	e := &Expense{
		Description: strings.TrimSpace(d.Description),
		Amount:      d.Amount,
		Currency:    money.NormalizeCurrency(d.Currency),
		Category:    category,
		CreatedBy:   d.CreatedBy,
		PaidBy:      paidBy,
		SplitWith:   entriesFrom(d.Shares),
		Date:        date,
		GroupID:     d.GroupID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := e.validate(); err != nil {
		return nil, err
	}
	if err := e.reconcile(); err != nil {
		return nil, err
	}
	return e, nil
}

func entriesFrom(shares []split.Share) []SplitEntry {
	entries := make([]SplitEntry, len(shares))
	for i, s := range shares {
		entries[i] = SplitEntry{UserID: strings.TrimSpace(s.UserID), Amount: s.Amount}
	}
	return entries
}

func (e *Expense) validate() error {
	if e.Description == "" {
		return apperr.Invalid("description", "description is required")
	}
	if n := utf8.RuneCountInString(e.Description); n > MaxDescriptionLength {
		return apperr.Mismatch("description", "description is too long",
			fmt.Sprintf("<= %d characters", MaxDescriptionLength), fmt.Sprintf("%d characters", n))
	}
	if !money.IsValidTotal(e.Amount) {
		return apperr.Mismatch("amount", "amount must be greater than 0.01", "> 0.01", e.Amount.String())
	}
	if !money.IsCents(e.Amount) {
		return apperr.Mismatch("amount", "amount cannot be finer than a cent", "2 decimal places", e.Amount.String())
	}
	if !money.IsValidCurrency(e.Currency) {
		return apperr.Mismatch("currency", "currency must be a 3-letter code", "^[A-Z]{3}$", e.Currency)
	}
	if !categories[e.Category] {
		return apperr.Mismatch("category", "unknown category", "known category", string(e.Category))
	}
	if e.PaidBy == "" {
		return apperr.Invalid("paidBy", "payer is required")
	}
	if len(e.SplitWith) == 0 {
		return apperr.Invalid("splitWith", "at least one participant is required")
	}
	for _, s := range e.SplitWith {
		if s.UserID == "" {
			return apperr.Invalid("splitWith", "participant id is required")
		}
	}
	return nil
}

// reconcile enforces that the shares add up to the amount.
func (e *Expense) reconcile() error {
	shares := make([]split.Share, len(e.SplitWith))
	for i, s := range e.SplitWith {
		shares[i] = split.Share{UserID: s.UserID, Amount: s.Amount}
	}
	return split.Reconcile(e.Amount, shares)
}

// Entry returns the first split entry for identity.
func (e *Expense) Entry(identity string) (*SplitEntry, bool) {
	for i := range e.SplitWith {
		if e.SplitWith[i].UserID == identity {
			return &e.SplitWith[i], true
		}
	}
	return nil, false
}

// Involves reports whether identity created, paid or participates.
func (e *Expense) Involves(identity string) bool {
	if e.CreatedBy == identity || e.PaidBy == identity {
		return true
	}
	_, ok := e.Entry(identity)
	return ok
}

// CanModify reports whether identity may update or delete the expense.
func (e *Expense) CanModify(identity string) bool {
	return e.CreatedBy == identity || e.PaidBy == identity
}

// Participants lists split identities in order.
func (e *Expense) Participants() []string {
	ids := make([]string, len(e.SplitWith))
	for i, s := range e.SplitWith {
		ids[i] = s.UserID
	}
	return ids
}

// SettleParticipant marks identity's share settled. It returns false and
// changes nothing when identity is not a participant or is already settled.
func (e *Expense) SettleParticipant(identity string, now time.Time) bool {
	entry, ok := e.Entry(identity)
	if !ok || entry.Settled {
		return false
	}

	at := now
	entry.Settled = true
	entry.SettledAt = &at
	e.recomputeSettled(now)
	e.UpdatedAt = now
	return true
}

func (e *Expense) recomputeSettled(now time.Time) {
	for _, s := range e.SplitWith {
		if !s.Settled {
			e.IsSettled = false
			return
		}
	}
	e.IsSettled = true
	if e.SettledAt == nil {
		at := now
		e.SettledAt = &at
	}
}

// Patch holds the fields an update replaces. Nil fields are left alone;
// a nil Shares keeps the current split.
type Patch struct {
	Description *string
	Amount      *decimal.Decimal
	Currency    *string
	Category    *string
	PaidBy      *string
	Date        *time.Time
	Shares      []split.Share
}

// ApplyPatch updates an open expense. On error the expense is unchanged.
func (e *Expense) ApplyPatch(p Patch, now time.Time) error {
	if e.IsSettled {
		return apperr.Forbidden("expense is fully settled")
	}

	next := *e
	if p.Description != nil {
		next.Description = strings.TrimSpace(*p.Description)
	}
	if p.Amount != nil {
		next.Amount = *p.Amount
	}
	if p.Currency != nil {
		next.Currency = money.NormalizeCurrency(*p.Currency)
	}
	if p.Category != nil {
		category, err := ParseCategory(*p.Category)
		if err != nil {
			return err
		}
		next.Category = category
	}
	if p.PaidBy != nil {
		next.PaidBy = strings.TrimSpace(*p.PaidBy)
	}
	if p.Date != nil {
		next.Date = p.Date.UTC()
	}
	if p.Shares != nil {
		next.SplitWith = entriesFrom(p.Shares)
	}

	if err := next.validate(); err != nil {
		return err
	}
	if p.Amount != nil || p.Shares != nil {
		if err := next.reconcile(); err != nil {
			return err
		}
	}

	next.recomputeSettled(now)
	next.UpdatedAt = now
	*e = next
	return nil
}
