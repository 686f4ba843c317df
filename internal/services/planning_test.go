package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/analytics"
	"spendwise/internal/core"
)

func TestAddIncomeAndSummary(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	feb, err := svc.AddIncome(ctx, "alice", IncomeInput{Month: "2025-02", Income: ptr(40000.0), Expense: ptr(30000.0)})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, feb.CreatedAt)

	_, err = svc.AddIncome(ctx, "alice", IncomeInput{Month: "2025-01", Income: ptr(60000.0), Expense: ptr(30000.0), IncomeNotes: "bonus"})
	require.NoError(t, err)

	_, err = svc.UpdateBudget(ctx, "alice", BudgetUpdate{Currency: ptr("usd")})
	require.NoError(t, err)

	sum, err := svc.IncomeSummary(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sum.Months, 2)
	assert.Equal(t, "2025-01", sum.Months[0].Month)
	assert.Equal(t, 100000.0, sum.TotalIncome)
	assert.Equal(t, 40000.0, sum.NetSavings)
	assert.InDelta(t, 40.0, sum.SavingsRate, 1e-9)
	assert.Equal(t, "USD", sum.Currency)

	require.NoError(t, svc.DeleteIncome(ctx, "alice", feb.ID))
	assert.ErrorIs(t, svc.DeleteIncome(ctx, "alice", feb.ID), core.ErrNotFound)
	left, _ := store.ListIncome(ctx, "alice")
	assert.Len(t, left, 1)
}

func TestAddIncome_Invalid(t *testing.T) {
	svc, _ := newTestService(t)
	tests := []struct {
		name string
		in   IncomeInput
	}{
		{"missing income", IncomeInput{Month: "2025-01", Expense: ptr(1.0)}},
		{"missing expense", IncomeInput{Month: "2025-01", Income: ptr(1.0)}},
		{"bad month", IncomeInput{Month: "01-2025", Income: ptr(1.0), Expense: ptr(1.0)}},
		{"negative", IncomeInput{Month: "2025-01", Income: ptr(-1.0), Expense: ptr(1.0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddIncome(context.Background(), "u", tt.in)
			require.Error(t, err)
			assert.True(t, IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestDebtLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	card, err := svc.AddDebt(ctx, "alice", DebtInput{
		Name: "Visa", Type: "Credit-Card", TotalAmount: 1000, CurrentBalance: 900,
		InterestRate: 24, DueDate: "2025-11-05",
	})
	require.NoError(t, err)
	assert.Equal(t, core.DebtCreditCard, card.Type)
	assert.Equal(t, "2025-11-05", card.DueDate.DayKey())
	assert.Equal(t, fixedNow, card.CreatedAt)

	loan, err := svc.AddDebt(ctx, "alice", DebtInput{Name: "Loan", TotalAmount: 3000, CurrentBalance: 1500})
	require.NoError(t, err)
	assert.Equal(t, core.DebtOther, loan.Type)

	updated, err := svc.UpdateDebt(ctx, "alice", card.ID, DebtInput{Name: "Visa", Type: core.DebtCreditCard, TotalAmount: 1000, CurrentBalance: 200})
	require.NoError(t, err)
	assert.Equal(t, card.ID, updated.ID)
	assert.Equal(t, card.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.DueDate.IsEmpty(), "update replaces every field")

	sum, err := svc.DebtSummary(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sum.Debts, 2)
	assert.Equal(t, card.ID, sum.Debts[0].Debt.ID)
	assert.Equal(t, analytics.ProgressNearlyDone, sum.Debts[0].Level)
	assert.Equal(t, 1700.0, sum.TotalDebt)
	assert.Equal(t, 2300.0, sum.TotalPaid)
	assert.InDelta(t, 57.5, sum.OverallProgress, 1e-9)
	assert.Equal(t, "INR", sum.Currency)

	require.NoError(t, svc.DeleteDebt(ctx, "alice", loan.ID))
	assert.ErrorIs(t, svc.DeleteDebt(ctx, "alice", loan.ID), core.ErrNotFound)
}

func TestUpdateDebt_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateDebt(ctx, "alice", "missing", DebtInput{Name: "x", TotalAmount: 1})
	assert.ErrorIs(t, err, core.ErrNotFound)

	d, err := svc.AddDebt(ctx, "alice", DebtInput{Name: "Car", TotalAmount: 100, CurrentBalance: 50})
	require.NoError(t, err)

	_, err = svc.UpdateDebt(ctx, "bob", d.ID, DebtInput{Name: "Car", TotalAmount: 100})
	assert.ErrorIs(t, err, core.ErrNotFound, "debts are scoped to their user")

	_, err = svc.UpdateDebt(ctx, "alice", d.ID, DebtInput{Name: "Car", TotalAmount: 100, CurrentBalance: 150})
	assert.ErrorIs(t, err, core.ErrDebtBalance)
	assert.True(t, IsValidation(err))
}

func TestAddDebt_Invalid(t *testing.T) {
	svc, _ := newTestService(t)
	tests := []struct {
		name string
		in   DebtInput
	}{
		{"no name", DebtInput{TotalAmount: 100}},
		{"zero total", DebtInput{Name: "x"}},
		{"unknown type", DebtInput{Name: "x", Type: "payday", TotalAmount: 100}},
		{"bad due date", DebtInput{Name: "x", TotalAmount: 100, DueDate: "someday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddDebt(context.Background(), "u", tt.in)
			require.Error(t, err)
			assert.True(t, IsValidation(err), "expected validation error, got %v", err)
		})
	}
}
