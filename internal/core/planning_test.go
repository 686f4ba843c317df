package core

import (
	"errors"
	"math"
	"testing"
)

func TestNewIncomeEntry(t *testing.T) {
	e, err := NewIncomeEntry(IncomeEntry{Month: " 2025-03 ", Income: 50000.456, Expense: 32000, IncomeNotes: "  salary "})
	if err != nil {
		t.Fatalf("NewIncomeEntry: %v", err)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatalf("ID and CreatedAt must be filled: %+v", e)
	}
	if e.Month != "2025-03" || e.IncomeNotes != "salary" {
		t.Fatalf("fields not trimmed: %+v", e)
	}
	if e.Income != 50000.46 {
		t.Fatalf("income not rounded: %v", e.Income)
	}
	if got := e.Savings(); math.Abs(got-18000.46) > 1e-9 {
		t.Fatalf("Savings = %v", got)
	}
}

func TestIncomeEntryValidate(t *testing.T) {
	long := make([]byte, maxDescriptionLen+1)
	for i := range long {
		long[i] = 'x'
	}
	tests := []struct {
		name string
		e    IncomeEntry
		want error
	}{
		{"bad month", IncomeEntry{Month: "March", Income: 1}, ErrInvalidMonthKey},
		{"month 13", IncomeEntry{Month: "2025-13", Income: 1}, ErrInvalidMonthKey},
		{"negative income", IncomeEntry{Month: "2025-01", Income: -1}, ErrInvalidAmount},
		{"NaN expense", IncomeEntry{Month: "2025-01", Expense: math.NaN()}, ErrInvalidAmount},
		{"long notes", IncomeEntry{Month: "2025-01", ExpenseNotes: string(long)}, ErrNotesLong},
		{"zero month is fine", IncomeEntry{Month: "2025-01"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.e.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewDebtDefaults(t *testing.T) {
	d, err := NewDebt(Debt{Name: " Visa ", TotalAmount: 1000, CurrentBalance: 400})
	if err != nil {
		t.Fatalf("NewDebt: %v", err)
	}
	if d.Type != DebtOther || d.Name != "Visa" {
		t.Fatalf("unexpected defaults: %+v", d)
	}
	if !d.UpdatedAt.Equal(d.CreatedAt) {
		t.Fatalf("UpdatedAt should start at CreatedAt")
	}
	if d.Paid() != 600 {
		t.Fatalf("Paid = %v", d.Paid())
	}
}

func TestDebtValidate(t *testing.T) {
	base := Debt{Name: "Car", Type: DebtPersonalLoan, TotalAmount: 500, CurrentBalance: 100}
	tests := []struct {
		name   string
		mutate func(*Debt)
		want   error
	}{
		{"valid", func(*Debt) {}, nil},
		{"paid off", func(d *Debt) { d.CurrentBalance = 0 }, nil},
		{"no name", func(d *Debt) { d.Name = "" }, ErrEmptyName},
		{"unknown type", func(d *Debt) { d.Type = "payday" }, ErrDebtType},
		{"zero total", func(d *Debt) { d.TotalAmount = 0; d.CurrentBalance = 0 }, ErrInvalidAmount},
		{"balance above total", func(d *Debt) { d.CurrentBalance = 501 }, ErrDebtBalance},
		{"negative balance", func(d *Debt) { d.CurrentBalance = -1 }, ErrDebtBalance},
		{"negative rate", func(d *Debt) { d.InterestRate = -2 }, ErrInvalidAmount},
		{"infinite payment", func(d *Debt) { d.MinimumPayment = math.Inf(1) }, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base
			tt.mutate(&d)
			if err := d.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}
