// Package memory is a process-local transaction store. Data is lost on
// restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"spendwise/internal/core"
)

type ledger struct {
	items    []core.Transaction
	settings core.Settings
	incomes  []core.IncomeEntry
	debts    []core.Debt
}

// Store keeps one ledger per user behind a single mutex.
type Store struct {
	mu    sync.Mutex
	users map[string]*ledger
}

func New() *Store {
	return &Store{users: make(map[string]*ledger)}
}

// ledger returns the user's ledger, creating it. Callers must hold mu.
func (s *Store) ledger(userID string) *ledger {
	l, ok := s.users[userID]
	if !ok {
		l = &ledger{}
		s.users[userID] = l
	}
	return l
}

// AddMany validates every transaction before storing any of them.
func (s *Store) AddMany(_ context.Context, userID string, txns []core.Transaction) error {
	for i, t := range txns {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.ledger(userID)
	l.items = append(l.items, txns...)
	return nil
}

// List returns a copy, so callers may aggregate without holding the lock.
func (s *Store) List(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.users[userID]
	if !ok {
		return []core.Transaction{}, nil
	}
	return append([]core.Transaction{}, l.items...), nil
}

func (s *Store) Get(_ context.Context, userID, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.users[userID]; ok {
		for _, t := range l.items {
			if t.ID == id {
				return t, nil
			}
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *Store) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	for i, t := range l.items {
		if t.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) Clear(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.users[userID]
	if !ok {
		return 0, nil
	}
	n := len(l.items)
	l.items = nil
	return n, nil
}

func (s *Store) Settings(_ context.Context, userID string) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.users[userID]; ok {
		return l.settings, nil
	}
	return core.Settings{}, nil
}

func (s *Store) SaveSettings(_ context.Context, userID string, settings core.Settings) error {
	settings.Currency = core.NormalizeCurrency(settings.Currency)
	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger(userID).settings = settings
	return nil
}

func (s *Store) AddIncome(_ context.Context, userID string, e core.IncomeEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.ledger(userID)
	l.incomes = append(l.incomes, e)
	return nil
}

func (s *Store) ListIncome(_ context.Context, userID string) ([]core.IncomeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.users[userID]
	if !ok {
		return []core.IncomeEntry{}, nil
	}
	return append([]core.IncomeEntry{}, l.incomes...), nil
}

func (s *Store) DeleteIncome(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.users[userID]; ok {
		for i, e := range l.incomes {
			if e.ID == id {
				l.incomes = append(l.incomes[:i], l.incomes[i+1:]...)
				return nil
			}
		}
	}
	return core.ErrNotFound
}

// SaveDebt replaces in place so an edited debt keeps its position.
func (s *Store) SaveDebt(_ context.Context, userID string, d core.Debt) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.ledger(userID)
	for i := range l.debts {
		if l.debts[i].ID == d.ID {
			l.debts[i] = d
			return nil
		}
	}
	l.debts = append(l.debts, d)
	return nil
}

func (s *Store) GetDebt(_ context.Context, userID, id string) (core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.users[userID]; ok {
		for _, d := range l.debts {
			if d.ID == id {
				return d, nil
			}
		}
	}
	return core.Debt{}, core.ErrNotFound
}

func (s *Store) ListDebts(_ context.Context, userID string) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.users[userID]
	if !ok {
		return []core.Debt{}, nil
	}
	return append([]core.Debt{}, l.debts...), nil
}

func (s *Store) DeleteDebt(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.users[userID]; ok {
		for i, d := range l.debts {
			if d.ID == id {
				l.debts = append(l.debts[:i], l.debts[i+1:]...)
				return nil
			}
		}
	}
	return core.ErrNotFound
}

// Users lists the user IDs with a ledger, sorted.
func (s *Store) Users(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.users))
	for id := range s.users {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// String implements fmt.Stringer.
func (s *Store) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("memory store (%d users)", len(s.users))
}
