package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/advisor"
	"spendwise/internal/analytics"
	"spendwise/internal/core"
	"spendwise/internal/ports"
	"spendwise/internal/storage/memory"
)

type event struct {
	kind, userID, id string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []event
	err    error
	closed bool
}

func (p *fakePublisher) PublishSync(_ context.Context, userID, id string) error {
	return p.record("sync", userID, id)
}

func (p *fakePublisher) PublishDelete(_ context.Context, userID, id string) error {
	return p.record("delete", userID, id)
}

func (p *fakePublisher) record(kind, userID, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event{kind, userID, id})
	return p.err
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func (p *fakePublisher) count(kind string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

type fakeArchiver struct {
	data []byte
	err  error
}

func (a *fakeArchiver) Archive(_ context.Context, userID, filename string, r io.Reader) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.data, _ = io.ReadAll(r)
	return "gs://bucket/uploads/" + userID + "/" + filename, nil
}

type recordingAdvisor struct {
	question, spending string
}

func (a *recordingAdvisor) Advise(_ context.Context, question, spending string) (ports.Advice, error) {
	a.question, a.spending = question, spending
	return ports.Advice{Reply: "ok", Source: "test"}, nil
}

var fixedNow = time.Date(2025, 10, 15, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*LedgerService, *memory.Store) {
	t.Helper()
	store := memory.New()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewLedgerService(store, opts...), store
}

func ptr[T any](v T) *T { return &v }

func TestAddManual(t *testing.T) {
	pub := &fakePublisher{}
	svc, store := newTestService(t, WithPublisher(pub))
	ctx := context.Background()

	tx, err := svc.AddManual(ctx, "alice", ManualEntry{
		Date:        "2025-10-01",
		Description: "Zomato dinner",
		Amount:      450,
	})
	require.NoError(t, err)

	assert.Equal(t, core.CategoryFood, tx.Category)
	assert.Equal(t, core.ModeManual, tx.Mode)
	assert.Equal(t, "INR", tx.Currency)
	assert.Equal(t, "2025-10-01", tx.Date.DayKey())

	stored, err := store.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, tx.ID, stored[0].ID)
	assert.Equal(t, []event{{"sync", "alice", tx.ID}}, pub.events)
}

func TestAddManual_Defaults(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	require.NoError(t, store.SaveSettings(ctx, "bob", core.Settings{Currency: "EUR"}))

	tx, err := svc.AddManual(ctx, "bob", ManualEntry{Description: "Uber", Amount: 12.5, Mode: "Card"})
	require.NoError(t, err)

	assert.Equal(t, "2025-10-15", tx.Date.DayKey())
	assert.Equal(t, "EUR", tx.Currency)
	assert.Equal(t, "Card", tx.Mode)
	assert.Equal(t, core.CategoryTransport, tx.Category)
}

func TestAddManual_Original(t *testing.T) {
	svc, _ := newTestService(t)

	tx, err := svc.AddManual(context.Background(), "u", ManualEntry{
		Description: "Hotel", Amount: 8300, OriginalAmount: ptr(100.0), OriginalCurrency: "usd",
	})
	require.NoError(t, err)
	require.NotNil(t, tx.OriginalAmount)
	assert.Equal(t, 100.0, *tx.OriginalAmount)
	assert.Equal(t, "USD", tx.OriginalCurrency)
}

func TestAddManual_Invalid(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		entry ManualEntry
		want  error
	}{
		{"missing description", ManualEntry{Amount: 10}, ErrValidation},
		{"zero amount", ManualEntry{Description: "x"}, ErrValidation},
		{"negative amount", ManualEntry{Description: "x", Amount: -5}, ErrValidation},
		{"bad date", ManualEntry{Description: "x", Amount: 5, Date: "someday"}, ErrValidation},
		{"unsupported currency", ManualEntry{Description: "x", Amount: 5, Currency: "XYZ"}, ErrUnsupportedCurrency},
		{"half original pair", ManualEntry{Description: "x", Amount: 5, OriginalCurrency: "USD"}, core.ErrOriginalPair},
		{"negative original amount", ManualEntry{Description: "Uber", Amount: 100, OriginalAmount: ptr(-500.0), OriginalCurrency: "INR"}, ErrValidation},
		{"zero original amount", ManualEntry{Description: "Uber", Amount: 100, OriginalAmount: ptr(0.0), OriginalCurrency: "INR"}, ErrValidation},
		{"long description", ManualEntry{Description: strings.Repeat("a", 201), Amount: 5}, core.ErrDescriptionLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddManual(ctx, "u", tt.entry)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsValidation(err))
		})
	}

	txns, err := store.List(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestAddManual_PublishFailureIsNotFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc, store := newTestService(t, WithPublisher(pub))
	ctx := context.Background()

	_, err := svc.AddManual(ctx, "u", ManualEntry{Description: "Rent", Amount: 1000})
	require.NoError(t, err)

	txns, _ := store.List(ctx, "u")
	assert.Len(t, txns, 1)
}

const upload = `Date,Description,Amount,Mode
2025-09-01,Swiggy order,300,UPI
2025-09-02,Electricity bill,1200,Card
2025-09-03,Oops,abc,Cash
`

func TestImport(t *testing.T) {
	pub := &fakePublisher{}
	arch := &fakeArchiver{}
	svc, store := newTestService(t, WithPublisher(pub), WithArchiver(arch))
	ctx := context.Background()

	res, err := svc.Import(ctx, "alice", "sept.csv", strings.NewReader(upload))
	require.NoError(t, err)

	assert.Equal(t, "Successfully processed 2 expenses from 3 lines", res.Message)
	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Equal(t, []string{"Line 3: Invalid amount 'abc'"}, res.Errors)
	assert.Equal(t, "gs://bucket/uploads/alice/sept.csv", res.ArchiveLocation)
	assert.Equal(t, upload, string(arch.data))
	assert.Equal(t, 2, pub.count("sync"))

	txns, _ := store.List(ctx, "alice")
	require.Len(t, txns, 2)
	assert.Equal(t, core.CategoryBills, txns[1].Category)
}

func TestImport_ErrorsTruncated(t *testing.T) {
	svc, _ := newTestService(t)

	var b strings.Builder
	for i := 0; i < 8; i++ {
		b.WriteString("2025-01-01,Thing,zero\n")
	}
	res, err := svc.Import(context.Background(), "u", "bad.csv", strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Len(t, res.Errors, 5)
	assert.Equal(t, 8, res.ErrorCount)
	assert.Zero(t, res.Imported)
}

func TestImport_ArchiveFailureIsNotFatal(t *testing.T) {
	svc, store := newTestService(t, WithArchiver(&fakeArchiver{err: errors.New("gcs down")}))
	ctx := context.Background()

	res, err := svc.Import(ctx, "u", "a.csv", strings.NewReader(upload))
	require.NoError(t, err)
	assert.Empty(t, res.ArchiveLocation)

	txns, _ := store.List(ctx, "u")
	assert.Len(t, txns, 2)
}

func TestImport_MalformedCSV(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Import(context.Background(), "u", "x.csv", strings.NewReader("2025-01-01,\"broken,10\n"))
	assert.ErrorIs(t, err, ErrInvalidCSV)
	assert.True(t, IsValidation(err))
}

func TestDeleteAndClear(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newTestService(t, WithPublisher(pub))
	ctx := context.Background()

	a, err := svc.AddManual(ctx, "u", ManualEntry{Description: "A", Amount: 1})
	require.NoError(t, err)
	_, err = svc.AddManual(ctx, "u", ManualEntry{Description: "B", Amount: 2})
	require.NoError(t, err)
	_, err = svc.AddManual(ctx, "u", ManualEntry{Description: "C", Amount: 3})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u", a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "u", a.ID), core.ErrNotFound)

	n, err := svc.Clear(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, pub.count("delete"))

	txns, _ := svc.List(ctx, "u")
	assert.Empty(t, txns)
}

func TestDashboard(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, "u", "s.csv", strings.NewReader(upload))
	require.NoError(t, err)
	require.NoError(t, store.SaveSettings(ctx, "u", core.Settings{Budget: 3000, BudgetEnabled: true}))

	d, err := svc.Dashboard(ctx, "u", "", 0)
	require.NoError(t, err)

	assert.Equal(t, "INR", d.Currency)
	assert.Equal(t, 2, d.TransactionCount)
	assert.Equal(t, "1500.00", d.Report.Insights.TotalSpending)
	assert.Equal(t, core.CategoryBills, d.Report.TopCategory())
	assert.Equal(t, 1500.0, d.Budget.Deducted)
	assert.Equal(t, 1500.0, d.Budget.Remaining)
	assert.Equal(t, analytics.BudgetHealthy, d.Budget.Level)

	usd, err := svc.Dashboard(ctx, "u", "usd", 1)
	require.NoError(t, err)
	assert.Equal(t, "USD", usd.Currency)
	assert.Len(t, usd.Report.TopCategories, 1)

	_, err = svc.Dashboard(ctx, "u", "XYZ", 0)
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)
}

func TestDashboard_CacheInvalidatedOnWrite(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Dashboard(ctx, "u", "", 0)
	require.NoError(t, err)
	assert.Zero(t, first.TransactionCount)

	_, err = svc.AddManual(ctx, "u", ManualEntry{Description: "Gym", Amount: 50})
	require.NoError(t, err)

	second, err := svc.Dashboard(ctx, "u", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, second.TransactionCount)
}

// pausingStore holds the first List call after it has read, until release
// is closed.
type pausingStore struct {
	*memory.Store
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (s *pausingStore) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	txns, err := s.Store.List(ctx, userID)
	s.once.Do(func() {
		close(s.read)
		<-s.release
	})
	return txns, err
}

func TestDashboard_WriteDuringComputeIsNotCached(t *testing.T) {
	store := &pausingStore{Store: memory.New(), read: make(chan struct{}), release: make(chan struct{})}
	svc := NewLedgerService(store, WithClock(func() time.Time { return fixedNow }))
	ctx := context.Background()

	done := make(chan Dashboard, 1)
	go func() {
		d, err := svc.Dashboard(ctx, "u", "", 0)
		assert.NoError(t, err)
		done <- d
	}()

	<-store.read
	_, err := svc.AddManual(ctx, "u", ManualEntry{Description: "Uber", Amount: 100})
	require.NoError(t, err)
	close(store.release)

	stale := <-done
	assert.Zero(t, stale.TransactionCount)

	fresh, err := svc.Dashboard(ctx, "u", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.TransactionCount)
	assert.Equal(t, "100.00", fresh.Report.Insights.TotalSpending)
}

func TestUpdateBudget(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddManual(ctx, "u", ManualEntry{Description: "Rent", Amount: 900})
	require.NoError(t, err)

	st, err := svc.UpdateBudget(ctx, "u", BudgetUpdate{Budget: ptr(1000.0), Enabled: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, 90.0, st.Percentage)
	assert.Equal(t, analytics.BudgetCritical, st.Level)
	assert.Equal(t, "INR", st.Currency)

	st, err = svc.UpdateBudget(ctx, "u", BudgetUpdate{Enabled: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, st.Budget)
	assert.Zero(t, st.Deducted)
	assert.Equal(t, analytics.BudgetHealthy, st.Level)

	saved, _ := store.Settings(ctx, "u")
	assert.Equal(t, fixedNow, saved.UpdatedAt)

	_, err = svc.UpdateBudget(ctx, "u", BudgetUpdate{Budget: ptr(-1.0)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpdateBudget(ctx, "u", BudgetUpdate{Currency: ptr("ABC")})
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)
}

func TestHeatmap(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddManual(ctx, "u", ManualEntry{Date: "2025-10-03", Description: "Coffee", Amount: 100})
	require.NoError(t, err)

	h, err := svc.Heatmap(ctx, "u", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2025, h.Year)
	assert.Equal(t, 10, h.Month)
	assert.Len(t, h.Days, 31)
	assert.Equal(t, 100.0, h.Total)

	_, err = svc.Heatmap(ctx, "u", 2025, 13)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConvert(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Convert(10, "usd", "usd")
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Rate)
	assert.Equal(t, 10.0, res.Result)
	assert.Equal(t, "USD", res.To)

	_, err = svc.Convert(10, "USD", "XYZ")
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)
	_, err = svc.Convert(10, "XYZ", "XYZ")
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)
}

func TestSplit(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Split(90, analytics.SplitEqual, []analytics.Participant{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	require.NoError(t, err)
	require.Len(t, res.Shares, 3)
	assert.Equal(t, 30.0, res.Shares[0].Amount)

	_, err = svc.Split(90, analytics.SplitAmount, []analytics.Participant{{Name: "a", Value: 10}})
	assert.True(t, IsValidation(err))
}

func TestChat(t *testing.T) {
	adv := &recordingAdvisor{}
	svc, _ := newTestService(t, WithAdvisor(adv))
	ctx := context.Background()

	_, err := svc.AddManual(ctx, "u", ManualEntry{Description: "Netflix", Amount: 199})
	require.NoError(t, err)

	reply, err := svc.Chat(ctx, "u", "How do I save money?")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Reply)
	assert.Equal(t, "How do I save money?", adv.question)
	assert.Contains(t, adv.spending, "Total spending: 199.00 INR across 1 transactions")
	assert.Contains(t, adv.spending, core.CategoryEntertainment)

	_, err = svc.Chat(ctx, "u", "   ")
	assert.ErrorIs(t, err, advisor.ErrEmptyQuestion)
}

func TestChat_DefaultsToFallback(t *testing.T) {
	svc, _ := newTestService(t)

	reply, err := svc.Chat(context.Background(), "u", "help me with my budget")
	require.NoError(t, err)
	assert.Equal(t, advisor.SourceFallback, reply.Source)
	assert.Contains(t, reply.Reply, "50/30/20")
}

func TestClose(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newTestService(t, WithPublisher(pub))
	require.NoError(t, svc.Close())
	assert.True(t, pub.closed)
}

func TestIsValidation(t *testing.T) {
	assert.False(t, IsValidation(errors.New("boom")))
	assert.False(t, IsValidation(core.ErrNotFound))
	assert.True(t, IsValidation(analytics.ErrSplitMethod))
}
