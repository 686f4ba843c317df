package storage

import "context"

type (
	IncomeRow struct {
		ID           string
		UserID       string
		Month        string
		Income       float64
		Expense      float64
		IncomeNotes  string
		ExpenseNotes string
		CreatedAt    string
	}

	DebtRow struct {
		ID             string
		UserID         string
		Name           string
		Type           string
		TotalAmount    float64
		CurrentBalance float64
		InterestRate   float64
		MinimumPayment float64
		DueDate        string
		Notes          string
		CreatedAt      string
		UpdatedAt      string
	}
)

const insertIncome = `INSERT INTO income_entries (id, user_id, month, income, expense,
	income_notes, expense_notes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertIncome(ctx context.Context, r IncomeRow) error {
	_, err := q.db.ExecContext(ctx, insertIncome,
		r.ID, r.UserID, r.Month, r.Income, r.Expense, r.IncomeNotes, r.ExpenseNotes, r.CreatedAt)
	return err
}

const listIncome = `SELECT id, user_id, month, income, expense, income_notes, expense_notes, created_at
FROM income_entries WHERE user_id = ? ORDER BY seq`

func (q *Queries) ListIncome(ctx context.Context, userID string) ([]IncomeRow, error) {
	rows, err := q.db.QueryContext(ctx, listIncome, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []IncomeRow
	for rows.Next() {
		var r IncomeRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Month, &r.Income, &r.Expense,
			&r.IncomeNotes, &r.ExpenseNotes, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const deleteIncome = `DELETE FROM income_entries WHERE user_id = ? AND id = ?`

func (q *Queries) DeleteIncome(ctx context.Context, userID, id string) (int64, error) {
	return q.execCount(ctx, deleteIncome, userID, id)
}

const debtColumns = `id, user_id, name, type, total_amount, current_balance,
	interest_rate, minimum_payment, due_date, notes, created_at, updated_at`

// upsertDebt never moves a debt to another user.
const upsertDebt = `INSERT INTO debts (` + debtColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	name = excluded.name,
	type = excluded.type,
	total_amount = excluded.total_amount,
	current_balance = excluded.current_balance,
	interest_rate = excluded.interest_rate,
	minimum_payment = excluded.minimum_payment,
	due_date = excluded.due_date,
	notes = excluded.notes,
	updated_at = excluded.updated_at
WHERE debts.user_id = excluded.user_id`

func (q *Queries) UpsertDebt(ctx context.Context, r DebtRow) (int64, error) {
	return q.execCount(ctx, upsertDebt,
		r.ID, r.UserID, r.Name, r.Type, r.TotalAmount, r.CurrentBalance,
		r.InterestRate, r.MinimumPayment, r.DueDate, r.Notes, r.CreatedAt, r.UpdatedAt)
}

const getDebt = `SELECT ` + debtColumns + ` FROM debts WHERE user_id = ? AND id = ?`

func (q *Queries) GetDebt(ctx context.Context, userID, id string) (DebtRow, error) {
	var r DebtRow
	err := scanDebt(q.db.QueryRowContext(ctx, getDebt, userID, id), &r)
	return r, err
}

const listDebts = `SELECT ` + debtColumns + ` FROM debts WHERE user_id = ? ORDER BY seq`

func (q *Queries) ListDebts(ctx context.Context, userID string) ([]DebtRow, error) {
	rows, err := q.db.QueryContext(ctx, listDebts, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []DebtRow
	for rows.Next() {
		var r DebtRow
		if err := scanDebt(rows, &r); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const deleteDebt = `DELETE FROM debts WHERE user_id = ? AND id = ?`

func (q *Queries) DeleteDebt(ctx context.Context, userID, id string) (int64, error) {
	return q.execCount(ctx, deleteDebt, userID, id)
}

func (q *Queries) execCount(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanDebt(s scanner, r *DebtRow) error {
	return s.Scan(&r.ID, &r.UserID, &r.Name, &r.Type, &r.TotalAmount, &r.CurrentBalance,
		&r.InterestRate, &r.MinimumPayment, &r.DueDate, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
}
