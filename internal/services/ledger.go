// Package services orchestrates ledger operations across the store, the
// analytics engine and the optional integrations.
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/advisor"
	"spendwise/internal/analytics"
	"spendwise/internal/cache"
	"spendwise/internal/categorize"
	"spendwise/internal/core"
	"spendwise/internal/currency"
	"spendwise/internal/importer"
	"spendwise/internal/ports"
)

const (
	defaultTopN       = 5
	maxReportedErrors = 5
)

// LedgerService owns every mutation of a user's transactions. Optional
// collaborators failing never fail the request: the store is the source of
// truth.
type LedgerService struct {
	store       ports.Store
	publisher   ports.EventPublisher
	archiver    ports.Archiver
	advisor     ports.Advisor
	categorizer *categorize.Categorizer
	converter   *currency.Converter
	engine      *analytics.Engine
	dashboards  cache.Cache[Dashboard]

	// genMu orders cache writes against invalidation. generations counts
	// mutations per user.
	genMu       sync.Mutex
	generations map[string]uint64

	defaultCurrency string
	now             func() time.Time
}

type Option func(*LedgerService)

func WithPublisher(p ports.EventPublisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

func WithArchiver(a ports.Archiver) Option {
	return func(s *LedgerService) { s.archiver = a }
}

func WithAdvisor(a ports.Advisor) Option {
	return func(s *LedgerService) { s.advisor = a }
}

func WithCategorizer(c *categorize.Categorizer) Option {
	return func(s *LedgerService) { s.categorizer = c }
}

func WithConverter(c *currency.Converter) Option {
	return func(s *LedgerService) { s.converter = c }
}

func WithDashboardCache(c cache.Cache[Dashboard]) Option {
	return func(s *LedgerService) { s.dashboards = c }
}

func WithDefaultCurrency(code string) Option {
	return func(s *LedgerService) { s.defaultCurrency = core.NormalizeCurrency(code) }
}

func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func NewLedgerService(store ports.Store, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:           store,
		generations:     make(map[string]uint64),
		defaultCurrency: core.DefaultCurrency,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.categorizer == nil {
		s.categorizer = categorize.New(nil)
	}
	if s.advisor == nil {
		s.advisor = advisor.Fallback{}
	}
	if s.converter == nil {
		s.converter = currency.NewConverter(nil, nil)
	}
	if s.dashboards == nil {
		s.dashboards = cache.NewLRUCache[Dashboard](256, 5*time.Minute)
	}
	if s.defaultCurrency == "" {
		s.defaultCurrency = core.DefaultCurrency
	}
	s.engine = analytics.NewEngine(s.converter, s.defaultCurrency)
	return s
}

func (s *LedgerService) DefaultCurrency() string { return s.defaultCurrency }

func (s *LedgerService) Categorizer() *categorize.Categorizer { return s.categorizer }

func (s *LedgerService) Converter() *currency.Converter { return s.converter }

func (s *LedgerService) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	txns, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

// ManualEntry is a transaction typed in by the user. An empty Date means
// today.
type ManualEntry struct {
	Date             string   `json:"date"`
	Description      string   `json:"description"`
	Amount           float64  `json:"amount"`
	Mode             string   `json:"mode"`
	Currency         string   `json:"currency"`
	OriginalAmount   *float64 `json:"originalAmount,omitempty"`
	OriginalCurrency string   `json:"originalCurrency,omitempty"`
}

// AddManual validates, categorises and stores one entry.
func (s *LedgerService) AddManual(ctx context.Context, userID string, in ManualEntry) (core.Transaction, error) {
	if strings.TrimSpace(in.Description) == "" {
		return core.Transaction{}, fmt.Errorf("%w: missing required fields: date, description, amount", ErrValidation)
	}
	if !(in.Amount > 0) || math.IsInf(in.Amount, 0) {
		return core.Transaction{}, fmt.Errorf("%w: amount must be a positive number", ErrValidation)
	}

	date := s.today()
	if strings.TrimSpace(in.Date) != "" {
		d, ok := core.ParseDate(in.Date)
		if !ok {
			return core.Transaction{}, fmt.Errorf("%w: unrecognised date %q", ErrValidation, in.Date)
		}
		date = d
	}

	code := core.NormalizeCurrency(in.Currency)
	if code == "" {
		code = s.userCurrency(ctx, userID)
	}
	if !s.converter.Supported(code) {
		return core.Transaction{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}

	opts := []core.TransactionOption{
		core.WithCurrency(code),
		core.WithCategory(s.categorizer.Categorize(in.Description)),
		core.WithCreatedAt(s.now().UTC()),
	}
	if mode := strings.TrimSpace(in.Mode); mode != "" {
		opts = append(opts, core.WithMode(mode))
	}
	if in.OriginalAmount != nil || in.OriginalCurrency != "" {
		if in.OriginalAmount == nil || in.OriginalCurrency == "" {
			return core.Transaction{}, core.ErrOriginalPair
		}
		if v := *in.OriginalAmount; !(v > 0) || math.IsInf(v, 0) {
			return core.Transaction{}, fmt.Errorf("%w: original amount must be a positive number", ErrValidation)
		}
		if !s.converter.Supported(in.OriginalCurrency) {
			return core.Transaction{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, core.NormalizeCurrency(in.OriginalCurrency))
		}
		opts = append(opts, core.WithOriginal(*in.OriginalAmount, in.OriginalCurrency))
	}

	t, err := core.NewTransaction(date, in.Description, in.Amount, opts...)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.AddMany(ctx, userID, []core.Transaction{t}); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.invalidate(ctx, userID)
	s.publishSync(ctx, userID, t.ID)

	slog.InfoContext(ctx, "Manual transaction added",
		"user_id", userID,
		"id", t.ID,
		"category", t.Category,
		"amount", t.Amount)
	return t, nil
}

type ImportResult struct {
	Message         string   `json:"message"`
	Processed       int      `json:"processed"`
	Imported        int      `json:"newExpenses"`
	Errors          []string `json:"errors"`
	ErrorCount      int      `json:"errorCount"`
	Warnings        []string `json:"warnings"`
	ArchiveLocation string   `json:"archiveLocation,omitempty"`
}

// Import parses a CSV statement, stores the valid rows and archives the raw
// bytes. Row errors are reported, not returned.
func (s *LedgerService) Import(ctx context.Context, userID, filename string, r io.Reader) (ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read upload: %w", err)
	}

	parser := importer.NewCSVParser(s.categorizer, s.userCurrency(ctx, userID))
	parsed, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	if len(parsed.Transactions) > 0 {
		if err := s.store.AddMany(ctx, userID, parsed.Transactions); err != nil {
			return ImportResult{}, fmt.Errorf("save imported transactions: %w", err)
		}
		s.invalidate(ctx, userID)
		for _, t := range parsed.Transactions {
			s.publishSync(ctx, userID, t.ID)
		}
	}

	res := ImportResult{
		Message: fmt.Sprintf("Successfully processed %d expenses from %d lines",
			len(parsed.Transactions), parsed.Processed),
		Processed:  parsed.Processed,
		Imported:   len(parsed.Transactions),
		Errors:     parsed.FirstErrors(maxReportedErrors),
		ErrorCount: len(parsed.Errors),
		Warnings:   parsed.Warnings,
	}
	if res.Warnings == nil {
		res.Warnings = []string{}
	}

	if s.archiver != nil {
		loc, err := s.archiver.Archive(ctx, userID, filename, bytes.NewReader(data))
		if err != nil {
			slog.ErrorContext(ctx, "Failed to archive upload", "user_id", userID, "file", filename, "error", err)
			// Don't fail the request - transactions are saved
		}
		res.ArchiveLocation = loc
	}

	slog.InfoContext(ctx, "Statement imported",
		"user_id", userID,
		"file", filename,
		"processed", res.Processed,
		"imported", res.Imported,
		"errors", res.ErrorCount,
		"warnings", len(res.Warnings))
	return res, nil
}

// Delete returns core.ErrNotFound for unknown ids.
func (s *LedgerService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	s.publishDelete(ctx, userID, id)
	return nil
}

// Clear removes every transaction of userID and returns the count.
func (s *LedgerService) Clear(ctx context.Context, userID string) (int, error) {
	var ids []string
	if s.publisher != nil {
		txns, err := s.store.List(ctx, userID)
		if err != nil {
			return 0, fmt.Errorf("list transactions: %w", err)
		}
		for _, t := range txns {
			ids = append(ids, t.ID)
		}
	}

	n, err := s.store.Clear(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clear transactions: %w", err)
	}
	s.invalidate(ctx, userID)
	for _, id := range ids {
		s.publishDelete(ctx, userID, id)
	}
	return n, nil
}

func (s *LedgerService) today() core.Date {
	y, m, d := s.now().UTC().Date()
	return core.NewDate(y, int(m), d)
}

// userCurrency is the user's display currency, else the configured default.
// A settings lookup failure falls back to the default.
func (s *LedgerService) userCurrency(ctx context.Context, userID string) string {
	settings, err := s.store.Settings(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load settings, using default currency", "user_id", userID, "error", err)
		return s.defaultCurrency
	}
	if settings.Currency != "" && s.converter.Supported(settings.Currency) {
		return settings.Currency
	}
	return s.defaultCurrency
}

// invalidate must run after the store write it follows.
func (s *LedgerService) invalidate(ctx context.Context, userID string) {
	s.genMu.Lock()
	s.generations[userID]++
	n := s.dashboards.DeletePrefix(cachePrefix(userID))
	s.genMu.Unlock()
	if n > 0 {
		slog.DebugContext(ctx, "Dashboard cache invalidated", "user_id", userID, "entries", n)
	}
}

func (s *LedgerService) generation(userID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[userID]
}

// cacheDashboard stores d unless the user's data changed since gen was read.
func (s *LedgerService) cacheDashboard(userID, key string, gen uint64, d Dashboard) bool {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generations[userID] != gen {
		return false
	}
	s.dashboards.Set(key, d)
	return true
}

func (s *LedgerService) publishSync(ctx context.Context, userID, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSync(ctx, userID, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "user_id", userID, "id", id, "error", err)
		// Don't fail the request - transaction is saved locally
	}
}

func (s *LedgerService) publishDelete(ctx context.Context, userID, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishDelete(ctx, userID, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message", "user_id", userID, "id", id, "error", err)
		// Don't fail the request - transaction is deleted locally
	}
}

// Close releases the store and publisher.
func (s *LedgerService) Close() error {
	var errs []error
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}

// snapshot loads transactions and settings concurrently.
func (s *LedgerService) snapshot(ctx context.Context, userID string) ([]core.Transaction, core.Settings, error) {
	var (
		txns     []core.Transaction
		settings core.Settings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txns, err = s.store.List(gctx, userID)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		settings, err = s.store.Settings(gctx, userID)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, core.Settings{}, err
	}
	return txns, settings, nil
}
