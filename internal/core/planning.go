package core

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Debt types.
const (
	DebtCreditCard   = "credit-card"
	DebtPersonalLoan = "personal-loan"
	DebtStudentLoan  = "student-loan"
	DebtMortgage     = "mortgage"
	DebtOther        = "other"
)

const monthLayout = "2006-01"

var DebtTypes = []string{DebtCreditCard, DebtPersonalLoan, DebtStudentLoan, DebtMortgage, DebtOther}

type (
	// IncomeEntry records what came in and went out during one month.
	IncomeEntry struct {
		ID           string
		Month        string // YYYY-MM
		Income       float64
		Expense      float64
		IncomeNotes  string
		ExpenseNotes string
		CreatedAt    time.Time
	}

	Debt struct {
		ID             string
		Name           string
		Type           string
		TotalAmount    float64
		CurrentBalance float64
		InterestRate   float64
		MinimumPayment float64
		DueDate        Date
		Notes          string
		CreatedAt      time.Time
		UpdatedAt      time.Time
	}
)

var (
	ErrInvalidMonthKey = errors.New("month must be formatted as YYYY-MM")
	ErrEmptyName       = errors.New("empty name")
	ErrNameLong        = errors.New("name too long (max 200 characters)")
	ErrNotesLong       = errors.New("notes too long (max 200 characters)")
	ErrDebtType        = errors.New("unknown debt type")
	ErrDebtBalance     = errors.New("current balance must be between 0 and the total amount")
)

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// NewIncomeEntry trims e, fills ID and CreatedAt when unset and validates.
func NewIncomeEntry(e IncomeEntry) (IncomeEntry, error) {
	e.Month = strings.TrimSpace(e.Month)
	e.IncomeNotes = strings.TrimSpace(e.IncomeNotes)
	e.ExpenseNotes = strings.TrimSpace(e.ExpenseNotes)
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if err := e.Validate(); err != nil {
		return IncomeEntry{}, err
	}
	e.Income, e.Expense = Round2(e.Income), Round2(e.Expense)
	return e, nil
}

func (e IncomeEntry) Validate() error {
	if _, err := time.Parse(monthLayout, e.Month); err != nil {
		return ErrInvalidMonthKey
	}
	if !finiteNonNegative(e.Income) || !finiteNonNegative(e.Expense) {
		return ErrInvalidAmount
	}
	if len(e.IncomeNotes) > maxDescriptionLen || len(e.ExpenseNotes) > maxDescriptionLen {
		return ErrNotesLong
	}
	return nil
}

// Savings is income less expense, negative when the month overspent.
func (e IncomeEntry) Savings() float64 {
	return e.Income - e.Expense
}

// NewDebt trims d, defaults its type to "other", fills ID and timestamps
// when unset and validates.
func NewDebt(d Debt) (Debt, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Notes = strings.TrimSpace(d.Notes)
	d.Type = strings.ToLower(strings.TrimSpace(d.Type))
	if d.Type == "" {
		d.Type = DebtOther
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.CreatedAt
	}
	if err := d.Validate(); err != nil {
		return Debt{}, err
	}
	return d, nil
}

func (d Debt) Validate() error {
	if d.Name == "" {
		return ErrEmptyName
	}
	if len(d.Name) > maxDescriptionLen {
		return ErrNameLong
	}
	if len(d.Notes) > maxDescriptionLen {
		return ErrNotesLong
	}
	if !isDebtType(d.Type) {
		return ErrDebtType
	}
	if !(d.TotalAmount > 0) || math.IsInf(d.TotalAmount, 0) {
		return ErrInvalidAmount
	}
	if !finiteNonNegative(d.InterestRate) || !finiteNonNegative(d.MinimumPayment) {
		return ErrInvalidAmount
	}
	if !finiteNonNegative(d.CurrentBalance) || d.CurrentBalance > d.TotalAmount {
		return ErrDebtBalance
	}
	return nil
}

// Paid is how much of the original amount has been repaid.
func (d Debt) Paid() float64 {
	return d.TotalAmount - d.CurrentBalance
}

func isDebtType(t string) bool {
	for _, known := range DebtTypes {
		if t == known {
			return true
		}
	}
	return false
}
