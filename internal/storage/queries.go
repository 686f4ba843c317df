package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Row types mirror the table columns.
type (
	TransactionRow struct {
		ID               string
		UserID           string
		Date             string
		Description      string
		Amount           float64
		Currency         string
		OriginalAmount   sql.NullFloat64
		OriginalCurrency string
		Mode             string
		Category         string
		CreatedAt        string
	}

	SettingsRow struct {
		UserID        string
		Budget        float64
		BudgetEnabled bool
		Currency      string
		UpdatedAt     string
	}
)

const transactionColumns = `id, user_id, date, description, amount, currency,
	original_amount, original_currency, mode, category, created_at`

const insertTransaction = `INSERT INTO transactions (` + transactionColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertTransaction(ctx context.Context, r TransactionRow) error {
	_, err := q.db.ExecContext(ctx, insertTransaction,
		r.ID, r.UserID, r.Date, r.Description, r.Amount, r.Currency,
		r.OriginalAmount, r.OriginalCurrency, r.Mode, r.Category, r.CreatedAt)
	return err
}

const listTransactions = `SELECT ` + transactionColumns + `
FROM transactions WHERE user_id = ? ORDER BY seq`

func (q *Queries) ListTransactions(ctx context.Context, userID string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []TransactionRow
	for rows.Next() {
		var r TransactionRow
		if err := scanTransaction(rows, &r); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTransaction = `SELECT ` + transactionColumns + `
FROM transactions WHERE user_id = ? AND id = ?`

func (q *Queries) GetTransaction(ctx context.Context, userID, id string) (TransactionRow, error) {
	var r TransactionRow
	err := scanTransaction(q.db.QueryRowContext(ctx, getTransaction, userID, id), &r)
	return r, err
}

const deleteTransaction = `DELETE FROM transactions WHERE user_id = ? AND id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, userID, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, userID, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const clearTransactions = `DELETE FROM transactions WHERE user_id = ?`

func (q *Queries) ClearTransactions(ctx context.Context, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, clearTransactions, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listUsers = `SELECT DISTINCT user_id FROM transactions ORDER BY user_id`

func (q *Queries) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const getSettings = `SELECT user_id, budget, budget_enabled, currency, updated_at
FROM settings WHERE user_id = ?`

func (q *Queries) GetSettings(ctx context.Context, userID string) (SettingsRow, error) {
	var r SettingsRow
	err := q.db.QueryRowContext(ctx, getSettings, userID).
		Scan(&r.UserID, &r.Budget, &r.BudgetEnabled, &r.Currency, &r.UpdatedAt)
	return r, err
}

const upsertSettings = `INSERT INTO settings (user_id, budget, budget_enabled, currency, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET
	budget = excluded.budget,
	budget_enabled = excluded.budget_enabled,
	currency = excluded.currency,
	updated_at = excluded.updated_at`

func (q *Queries) UpsertSettings(ctx context.Context, r SettingsRow) error {
	_, err := q.db.ExecContext(ctx, upsertSettings, r.UserID, r.Budget, r.BudgetEnabled, r.Currency, r.UpdatedAt)
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(s scanner, r *TransactionRow) error {
	return s.Scan(&r.ID, &r.UserID, &r.Date, &r.Description, &r.Amount, &r.Currency,
		&r.OriginalAmount, &r.OriginalCurrency, &r.Mode, &r.Category, &r.CreatedAt)
}
