// Package memory is an in-process ledger mirror. The worker falls back to it
// when no spreadsheet is configured, which keeps the pipeline runnable
// locally.
package memory

import (
	"context"
	"sort"
	"sync"

	"spendwise/internal/core"
	"spendwise/internal/ports"
)

type Row struct {
	UserID      string
	Transaction core.Transaction
}

type Exporter struct {
	mu   sync.Mutex
	rows map[string]Row
}

var _ ports.Exporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{rows: make(map[string]Row)}
}

func (e *Exporter) Upsert(_ context.Context, userID string, t core.Transaction) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows[t.ID] = Row{UserID: userID, Transaction: t}
	return nil
}

// Remove ignores unknown ids.
func (e *Exporter) Remove(_ context.Context, _ string, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.rows, id)
	return nil
}

// Rows returns the mirrored rows ordered by transaction ID.
func (e *Exporter) Rows() []Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Row, 0, len(e.rows))
	for _, r := range e.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Transaction.ID < out[j].Transaction.ID })
	return out
}

func (e *Exporter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.rows)
}
