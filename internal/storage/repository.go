// Package storage persists transactions and settings in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spendwise/internal/core"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// AddMany inserts txns in one transaction; on error nothing is stored.
func (r *SQLiteRepository) AddMany(ctx context.Context, userID string, txns []core.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	for i, t := range txns {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	for _, t := range txns {
		if err := q.InsertTransaction(ctx, toRow(userID, t)); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Transactions saved to SQLite", "user_id", userID, "count", len(txns))
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return fromRow(row), nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, userID, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted", "user_id", userID, "id", id)
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, userID string) (int, error) {
	n, err := r.queries.ClearTransactions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clear transactions: %w", err)
	}
	slog.InfoContext(ctx, "Transactions cleared", "user_id", userID, "count", n)
	return int(n), nil
}

// Users lists the user IDs that own at least one transaction.
func (r *SQLiteRepository) Users(ctx context.Context) ([]string, error) {
	users, err := r.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *SQLiteRepository) Settings(ctx context.Context, userID string) (core.Settings, error) {
	row, err := r.queries.GetSettings(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Settings{}, nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	updated, _ := time.Parse(timeLayout, row.UpdatedAt)
	return core.Settings{
		Budget:        row.Budget,
		BudgetEnabled: row.BudgetEnabled,
		Currency:      row.Currency,
		UpdatedAt:     updated,
	}, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, userID string, s core.Settings) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	err := r.queries.UpsertSettings(ctx, SettingsRow{
		UserID:        userID,
		Budget:        s.Budget,
		BudgetEnabled: s.BudgetEnabled,
		Currency:      core.NormalizeCurrency(s.Currency),
		UpdatedAt:     s.UpdatedAt.UTC().Format(timeLayout),
	})
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func toRow(userID string, t core.Transaction) TransactionRow {
	row := TransactionRow{
		ID:               t.ID,
		UserID:           userID,
		Date:             t.Date.DayKey(),
		Description:      t.Description,
		Amount:           t.Amount,
		Currency:         t.Currency,
		OriginalCurrency: t.OriginalCurrency,
		Mode:             t.Mode,
		Category:         t.Category,
		CreatedAt:        t.CreatedAt.UTC().Format(timeLayout),
	}
	if t.OriginalAmount != nil {
		row.OriginalAmount = sql.NullFloat64{Float64: *t.OriginalAmount, Valid: true}
	}
	return row
}

func fromRow(row TransactionRow) core.Transaction {
	t := core.Transaction{
		ID:               row.ID,
		Description:      row.Description,
		Amount:           row.Amount,
		Currency:         row.Currency,
		OriginalCurrency: row.OriginalCurrency,
		Mode:             row.Mode,
		Category:         row.Category,
	}
	if d, ok := core.ParseDate(row.Date); ok {
		t.Date = d
	}
	if row.OriginalAmount.Valid {
		v := row.OriginalAmount.Float64
		t.OriginalAmount = &v
	}
	t.CreatedAt, _ = time.Parse(timeLayout, row.CreatedAt)
	return t
}
