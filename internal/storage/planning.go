package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spendwise/internal/core"
)

func (r *SQLiteRepository) AddIncome(ctx context.Context, userID string, e core.IncomeEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	err := r.queries.InsertIncome(ctx, IncomeRow{
		ID:           e.ID,
		UserID:       userID,
		Month:        e.Month,
		Income:       e.Income,
		Expense:      e.Expense,
		IncomeNotes:  e.IncomeNotes,
		ExpenseNotes: e.ExpenseNotes,
		CreatedAt:    e.CreatedAt.UTC().Format(timeLayout),
	})
	if err != nil {
		return fmt.Errorf("insert income entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListIncome(ctx context.Context, userID string) ([]core.IncomeEntry, error) {
	rows, err := r.queries.ListIncome(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list income entries: %w", err)
	}
	out := make([]core.IncomeEntry, 0, len(rows))
	for _, row := range rows {
		created, _ := time.Parse(timeLayout, row.CreatedAt)
		out = append(out, core.IncomeEntry{
			ID:           row.ID,
			Month:        row.Month,
			Income:       row.Income,
			Expense:      row.Expense,
			IncomeNotes:  row.IncomeNotes,
			ExpenseNotes: row.ExpenseNotes,
			CreatedAt:    created,
		})
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, userID, id string) error {
	n, err := r.queries.DeleteIncome(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete income entry: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Income entry deleted", "user_id", userID, "id", id)
	return nil
}

// SaveDebt returns core.ErrNotFound when the ID belongs to another user.
func (r *SQLiteRepository) SaveDebt(ctx context.Context, userID string, d core.Debt) error {
	if err := d.Validate(); err != nil {
		return err
	}
	row := DebtRow{
		ID:             d.ID,
		UserID:         userID,
		Name:           d.Name,
		Type:           d.Type,
		TotalAmount:    d.TotalAmount,
		CurrentBalance: d.CurrentBalance,
		InterestRate:   d.InterestRate,
		MinimumPayment: d.MinimumPayment,
		Notes:          d.Notes,
		CreatedAt:      d.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:      d.UpdatedAt.UTC().Format(timeLayout),
	}
	if !d.DueDate.IsEmpty() {
		row.DueDate = d.DueDate.DayKey()
	}
	n, err := r.queries.UpsertDebt(ctx, row)
	if err != nil {
		return fmt.Errorf("save debt: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetDebt(ctx context.Context, userID, id string) (core.Debt, error) {
	row, err := r.queries.GetDebt(ctx, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Debt{}, core.ErrNotFound
	}
	if err != nil {
		return core.Debt{}, fmt.Errorf("get debt: %w", err)
	}
	return fromDebtRow(row), nil
}

func (r *SQLiteRepository) ListDebts(ctx context.Context, userID string) ([]core.Debt, error) {
	rows, err := r.queries.ListDebts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	out := make([]core.Debt, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromDebtRow(row))
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteDebt(ctx context.Context, userID, id string) error {
	n, err := r.queries.DeleteDebt(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Debt deleted", "user_id", userID, "id", id)
	return nil
}

func fromDebtRow(row DebtRow) core.Debt {
	d := core.Debt{
		ID:             row.ID,
		Name:           row.Name,
		Type:           row.Type,
		TotalAmount:    row.TotalAmount,
		CurrentBalance: row.CurrentBalance,
		InterestRate:   row.InterestRate,
		MinimumPayment: row.MinimumPayment,
		Notes:          row.Notes,
	}
	if due, ok := core.ParseDate(row.DueDate); ok {
		d.DueDate = due
	}
	d.CreatedAt, _ = time.Parse(timeLayout, row.CreatedAt)
	d.UpdatedAt, _ = time.Parse(timeLayout, row.UpdatedAt)
	return d
}
