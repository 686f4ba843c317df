// Package ports declares the outbound interfaces the ledger service depends on.
package ports

import (
	"context"
	"io"

	"spendwise/internal/core"
)

// Ports for outbound adapters. Every method is scoped to one user.
type (
	TransactionStore interface {
		AddMany(ctx context.Context, userID string, txns []core.Transaction) error
		// List returns the user's transactions in insertion order.
		List(ctx context.Context, userID string) ([]core.Transaction, error)
		// Get returns core.ErrNotFound when id is unknown.
		Get(ctx context.Context, userID, id string) (core.Transaction, error)
		// Delete returns core.ErrNotFound when id is unknown.
		Delete(ctx context.Context, userID, id string) error
		// Clear removes everything and returns how many were removed.
		Clear(ctx context.Context, userID string) (int, error)
	}

	SettingsStore interface {
		// Settings returns zero-value settings for unknown users.
		Settings(ctx context.Context, userID string) (core.Settings, error)
		SaveSettings(ctx context.Context, userID string, s core.Settings) error
	}

	// PlanningStore keeps monthly income entries and debts.
	PlanningStore interface {
		AddIncome(ctx context.Context, userID string, e core.IncomeEntry) error
		// ListIncome returns entries in insertion order.
		ListIncome(ctx context.Context, userID string) ([]core.IncomeEntry, error)
		// DeleteIncome returns core.ErrNotFound when id is unknown.
		DeleteIncome(ctx context.Context, userID, id string) error
		// SaveDebt inserts d or replaces the debt with the same ID.
		SaveDebt(ctx context.Context, userID string, d core.Debt) error
		// GetDebt returns core.ErrNotFound when id is unknown.
		GetDebt(ctx context.Context, userID, id string) (core.Debt, error)
		// ListDebts returns debts in creation order.
		ListDebts(ctx context.Context, userID string) ([]core.Debt, error)
		// DeleteDebt returns core.ErrNotFound when id is unknown.
		DeleteDebt(ctx context.Context, userID, id string) error
	}

	// Store is a full persistence backend.
	Store interface {
		TransactionStore
		SettingsStore
		PlanningStore
		Ping(ctx context.Context) error
		Close() error
	}

	// UserLister is implemented by stores that can enumerate their users.
	UserLister interface {
		Users(ctx context.Context) ([]string, error)
	}

	// EventPublisher announces transaction changes to downstream consumers.
	EventPublisher interface {
		PublishSync(ctx context.Context, userID, id string) error
		PublishDelete(ctx context.Context, userID, id string) error
		Close() error
	}

	// Exporter mirrors transactions into an external ledger.
	Exporter interface {
		Upsert(ctx context.Context, userID string, t core.Transaction) error
		Remove(ctx context.Context, userID, id string) error
	}

	// Archiver keeps a copy of raw uploads and returns where it put them.
	Archiver interface {
		Archive(ctx context.Context, userID, filename string, r io.Reader) (location string, err error)
	}

	// Advisor answers finance questions. spending is a plain-text summary of
	// the user's data the advisor may use for context.
	Advisor interface {
		Advise(ctx context.Context, question, spending string) (Advice, error)
	}

	Advice struct {
		Reply  string `json:"reply"`
		Source string `json:"source"`
	}
)
