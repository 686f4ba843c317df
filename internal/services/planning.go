package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"spendwise/internal/analytics"
	"spendwise/internal/core"
)

// IncomeInput is one month's income and expense. Both amounts are required.
type IncomeInput struct {
	Month        string   `json:"month"`
	Income       *float64 `json:"income"`
	Expense      *float64 `json:"expense"`
	IncomeNotes  string   `json:"incomeNotes"`
	ExpenseNotes string   `json:"expenseNotes"`
}

func (s *LedgerService) AddIncome(ctx context.Context, userID string, in IncomeInput) (core.IncomeEntry, error) {
	if in.Income == nil || in.Expense == nil {
		return core.IncomeEntry{}, fmt.Errorf("%w: income and expense are required", ErrValidation)
	}
	e, err := core.NewIncomeEntry(core.IncomeEntry{
		Month:        in.Month,
		Income:       *in.Income,
		Expense:      *in.Expense,
		IncomeNotes:  in.IncomeNotes,
		ExpenseNotes: in.ExpenseNotes,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return core.IncomeEntry{}, err
	}
	if err := s.store.AddIncome(ctx, userID, e); err != nil {
		return core.IncomeEntry{}, fmt.Errorf("store income entry: %w", err)
	}
	slog.InfoContext(ctx, "Income entry created",
		"user_id", userID,
		"id", e.ID,
		"month", e.Month,
		"income", e.Income,
		"expense", e.Expense)
	return e, nil
}

// IncomeSummary totals the user's entries in their display currency.
func (s *LedgerService) IncomeSummary(ctx context.Context, userID string) (analytics.IncomeSummary, error) {
	entries, err := s.store.ListIncome(ctx, userID)
	if err != nil {
		return analytics.IncomeSummary{}, fmt.Errorf("list income entries: %w", err)
	}
	return analytics.SummarizeIncome(entries, s.userCurrency(ctx, userID)), nil
}

// DeleteIncome returns core.ErrNotFound for unknown ids.
func (s *LedgerService) DeleteIncome(ctx context.Context, userID, id string) error {
	return s.store.DeleteIncome(ctx, userID, id)
}

// DebtInput describes a debt. DueDate is optional and accepts the same
// layouts as transaction dates.
type DebtInput struct {
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	TotalAmount    float64 `json:"totalAmount"`
	CurrentBalance float64 `json:"currentBalance"`
	InterestRate   float64 `json:"interestRate"`
	MinimumPayment float64 `json:"minimumPayment"`
	DueDate        string  `json:"dueDate"`
	Notes          string  `json:"notes"`
}

func (in DebtInput) debt() (core.Debt, error) {
	d := core.Debt{
		Name:           in.Name,
		Type:           in.Type,
		TotalAmount:    in.TotalAmount,
		CurrentBalance: in.CurrentBalance,
		InterestRate:   in.InterestRate,
		MinimumPayment: in.MinimumPayment,
		Notes:          in.Notes,
	}
	if v := strings.TrimSpace(in.DueDate); v != "" {
		due, ok := core.ParseDate(v)
		if !ok {
			return core.Debt{}, fmt.Errorf("%w: unrecognised due date %q", ErrValidation, v)
		}
		d.DueDate = due
	}
	return d, nil
}

func (s *LedgerService) AddDebt(ctx context.Context, userID string, in DebtInput) (core.Debt, error) {
	d, err := in.debt()
	if err != nil {
		return core.Debt{}, err
	}
	d.CreatedAt = s.now().UTC()
	if d, err = core.NewDebt(d); err != nil {
		return core.Debt{}, err
	}
	if err := s.store.SaveDebt(ctx, userID, d); err != nil {
		return core.Debt{}, fmt.Errorf("store debt: %w", err)
	}
	slog.InfoContext(ctx, "Debt created",
		"user_id", userID,
		"id", d.ID,
		"type", d.Type,
		"balance", d.CurrentBalance)
	return d, nil
}

// UpdateDebt replaces every field of the debt except its ID and creation
// time. It returns core.ErrNotFound for unknown ids.
func (s *LedgerService) UpdateDebt(ctx context.Context, userID, id string, in DebtInput) (core.Debt, error) {
	existing, err := s.store.GetDebt(ctx, userID, id)
	if err != nil {
		return core.Debt{}, err
	}
	d, err := in.debt()
	if err != nil {
		return core.Debt{}, err
	}
	d.ID = existing.ID
	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = s.now().UTC()
	if d, err = core.NewDebt(d); err != nil {
		return core.Debt{}, err
	}
	if err := s.store.SaveDebt(ctx, userID, d); err != nil {
		return core.Debt{}, fmt.Errorf("store debt: %w", err)
	}
	slog.InfoContext(ctx, "Debt updated", "user_id", userID, "id", d.ID, "balance", d.CurrentBalance)
	return d, nil
}

func (s *LedgerService) DebtSummary(ctx context.Context, userID string) (analytics.DebtSummary, error) {
	debts, err := s.store.ListDebts(ctx, userID)
	if err != nil {
		return analytics.DebtSummary{}, fmt.Errorf("list debts: %w", err)
	}
	return analytics.SummarizeDebts(debts, s.userCurrency(ctx, userID)), nil
}

// DeleteDebt returns core.ErrNotFound for unknown ids.
func (s *LedgerService) DeleteDebt(ctx context.Context, userID, id string) error {
	return s.store.DeleteDebt(ctx, userID, id)
}
