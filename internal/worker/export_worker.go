// Package worker mirrors ledger changes into an external exporter.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/ports"
)

// ExportWorker applies transaction messages to an exporter. The store is the
// source of truth: a sync for a transaction that no longer exists becomes a
// removal.
type ExportWorker struct {
	store    ports.TransactionStore
	exporter ports.Exporter
}

func NewExportWorker(store ports.TransactionStore, exporter ports.Exporter) *ExportWorker {
	return &ExportWorker{store: store, exporter: exporter}
}

// HandleMessage is an amqp.Handler.
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionMessage) error {
	slog.InfoContext(ctx, "Processing transaction message",
		"type", msg.Type,
		"user_id", msg.UserID,
		"id", msg.ID)

	switch msg.Type {
	case amqp.TypeSync:
		return w.sync(ctx, msg.UserID, msg.ID)
	case amqp.TypeDelete:
		if err := w.exporter.Remove(ctx, msg.UserID, msg.ID); err != nil {
			return fmt.Errorf("remove exported transaction: %w", err)
		}
		return nil
	default:
		// MessageFromJSON rejects unknown types, so this is a programming error.
		slog.ErrorContext(ctx, "Unknown message type, dropping", "type", msg.Type)
		return nil
	}
}

func (w *ExportWorker) sync(ctx context.Context, userID, id string) error {
	t, err := w.store.Get(ctx, userID, id)
	if errors.Is(err, core.ErrNotFound) {
		slog.InfoContext(ctx, "Transaction gone before export, removing mirror", "user_id", userID, "id", id)
		if err := w.exporter.Remove(ctx, userID, id); err != nil {
			return fmt.Errorf("remove exported transaction: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from store: %w", err)
	}

	if err := w.exporter.Upsert(ctx, userID, t); err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}
	slog.InfoContext(ctx, "Exported transaction",
		"user_id", userID,
		"id", id,
		"description", t.Description,
		"amount", t.Amount)
	return nil
}

// Resync re-exports every stored transaction so the mirror recovers
// from messages lost while the worker was down. Per-transaction failures are
// logged and counted, not returned.
func (w *ExportWorker) Resync(ctx context.Context, users ports.UserLister) error {
	ids, err := users.Users(ctx)
	if err != nil {
		return fmt.Errorf("list users for resync: %w", err)
	}

	synced, failed := 0, 0
	for _, userID := range ids {
		txns, err := w.store.List(ctx, userID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to list transactions for resync", "user_id", userID, "error", err)
			failed++
			continue
		}
		for _, t := range txns {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := w.exporter.Upsert(ctx, userID, t); err != nil {
				slog.ErrorContext(ctx, "Failed to export during resync", "user_id", userID, "id", t.ID, "error", err)
				failed++
				continue
			}
			synced++
		}
	}

	slog.InfoContext(ctx, "Startup resync completed",
		"users", len(ids),
		"synced", synced,
		"errors", failed)
	return nil
}
