package core

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category names. Order here is the categorizer's match order.
const (
	CategoryFood          = "Food & Dining"
	CategoryTransport     = "Transportation"
	CategoryShopping      = "Shopping"
	CategoryEntertainment = "Entertainment"
	CategoryBills         = "Bills & Utilities"
	CategoryHousing       = "Rent & Housing"
	CategoryHealthcare    = "Healthcare"
	CategoryEducation     = "Education"
	CategoryPersonalCare  = "Personal Care"
	CategoryMisc          = "Miscellaneous"
)

const (
	// DefaultCurrency is the working currency when neither the transaction
	// nor the configuration name one.
	DefaultCurrency = "INR"

	ModeManual   = "Cash"
	ModeImported = "Unknown"

	maxDescriptionLen = 200
)

type (
	// Date is a calendar date at UTC midnight. The zero value marks a date
	// that could not be parsed.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID               string
		Date             Date
		Description      string
		Amount           float64
		Currency         string
		OriginalAmount   *float64
		OriginalCurrency string
		Mode             string
		Category         string
		CreatedAt        time.Time
	}

	// Settings are the per-user budget and display preferences.
	Settings struct {
		Budget        float64
		BudgetEnabled bool
		Currency      string
		UpdatedAt     time.Time
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrDescriptionLong  = errors.New("description too long (max 200 characters)")
	ErrOriginalPair     = errors.New("original amount and original currency must be set together")
	ErrNotFound         = errors.New("not found")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// MonthKey returns the "YYYY-MM" grouping key, or "" for a zero date.
func (d Date) MonthKey() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01")
}

// DayKey returns the "YYYY-MM-DD" key, or "" for a zero date.
func (d Date) DayKey() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// String formats the date as ISO, empty for the zero date.
func (d Date) String() string {
	return d.DayKey()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty returns true if the date is zero
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	time.RFC3339,
}

// ParseDate tries the supported layouts in order. Slash dates are read
// day-first; month-first is only used when the day-first read is impossible.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return NewDate(t.Year(), int(t.Month()), t.Day()), true
		}
	}
	return Date{}, false
}

// TransactionOption customises a Transaction built by NewTransaction.
type TransactionOption func(*Transaction)

func WithID(id string) TransactionOption {
	return func(t *Transaction) { t.ID = id }
}

func WithMode(mode string) TransactionOption {
	return func(t *Transaction) { t.Mode = strings.TrimSpace(mode) }
}

func WithCurrency(code string) TransactionOption {
	return func(t *Transaction) { t.Currency = NormalizeCurrency(code) }
}

// WithOriginal records the amount as it appeared in its source currency.
func WithOriginal(amount float64, currency string) TransactionOption {
	return func(t *Transaction) {
		a := amount
		t.OriginalAmount = &a
		t.OriginalCurrency = NormalizeCurrency(currency)
	}
}

func WithCategory(category string) TransactionOption {
	return func(t *Transaction) { t.Category = category }
}

func WithCreatedAt(at time.Time) TransactionOption {
	return func(t *Transaction) { t.CreatedAt = at }
}

// NewTransaction builds a validated Transaction with a fresh ID.
func NewTransaction(date Date, description string, amount float64, opts ...TransactionOption) (Transaction, error) {
	t := Transaction{
		Date:        date,
		Description: strings.TrimSpace(description),
		Amount:      amount,
	}
	for _, opt := range opts {
		opt(&t)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Mode == "" {
		t.Mode = ModeManual
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > maxDescriptionLen {
		return ErrDescriptionLong
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return ErrInvalidAmount
	}
	if (t.OriginalAmount == nil) != (t.OriginalCurrency == "") {
		return ErrOriginalPair
	}
	if t.OriginalAmount != nil && (math.IsNaN(*t.OriginalAmount) || math.IsInf(*t.OriginalAmount, 0)) {
		return ErrInvalidAmount
	}
	return nil
}

// EffectiveAmount is the original amount when present and non-zero, else
// Amount. Non-finite values count as 0.
func (t Transaction) EffectiveAmount() float64 {
	v := t.Amount
	if t.hasOriginal() {
		v = *t.OriginalAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// EffectiveCurrency is the currency EffectiveAmount is expressed in.
func (t Transaction) EffectiveCurrency(fallback string) string {
	switch {
	case t.hasOriginal() && t.OriginalCurrency != "":
		return t.OriginalCurrency
	case t.Currency != "":
		return t.Currency
	case fallback != "":
		return fallback
	default:
		return DefaultCurrency
	}
}

// hasOriginal reports whether the original amount replaces Amount. A zero
// or NaN original falls back to Amount.
func (t Transaction) hasOriginal() bool {
	if t.OriginalAmount == nil {
		return false
	}
	v := *t.OriginalAmount
	return v != 0 && !math.IsNaN(v)
}

// CategoryOrMisc returns the category, or Miscellaneous when unset.
func (t Transaction) CategoryOrMisc() string {
	if strings.TrimSpace(t.Category) == "" {
		return CategoryMisc
	}
	return t.Category
}

// NormalizeCurrency upper-cases and trims an ISO code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// SortKey orders transactions newest first, zero dates last.
func (t Transaction) SortKey() time.Time {
	if t.Date.IsZero() {
		return time.Time{}
	}
	return t.Date.Time
}
