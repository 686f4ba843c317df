package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"spendwise/internal/advisor"
	"spendwise/internal/analytics"
	"spendwise/internal/core"
	"spendwise/internal/currency"
	"spendwise/internal/ports"
)

// Dashboard is the analytics bundle for one user in one target currency.
type Dashboard struct {
	Report           analytics.Report       `json:"analytics"`
	Budget           analytics.BudgetStatus `json:"budget"`
	Currency         string                 `json:"currency"`
	TransactionCount int                    `json:"transactionCount"`
}

func cachePrefix(userID string) string {
	return userID + "|"
}

func dashboardKey(userID, code string, topN int) string {
	return fmt.Sprintf("%s%s|%d", cachePrefix(userID), code, topN)
}

// Dashboard computes, or serves from cache, the user's analytics. An empty
// code selects the user's display currency; topN <= 0 selects the default.
func (s *LedgerService) Dashboard(ctx context.Context, userID, code string, topN int) (Dashboard, error) {
	if topN <= 0 {
		topN = defaultTopN
	}
	code = core.NormalizeCurrency(code)
	if code != "" && !s.converter.Supported(code) {
		return Dashboard{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}

	gen := s.generation(userID)
	txns, settings, err := s.snapshot(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	target := s.resolveTarget(code, settings)

	key := dashboardKey(userID, target, topN)
	if d, ok := s.dashboards.Get(key); ok {
		return d, nil
	}

	report := s.engine.Build(ctx, txns, target, topN)
	d := Dashboard{
		Report:           report,
		Budget:           s.budgetStatus(ctx, txns, settings),
		Currency:         target,
		TransactionCount: len(txns),
	}
	if !s.cacheDashboard(userID, key, gen, d) {
		slog.DebugContext(ctx, "Dashboard changed while computing, not cached", "user_id", userID)
	}
	return d, nil
}

func (s *LedgerService) resolveTarget(code string, settings core.Settings) string {
	if code != "" {
		return code
	}
	if settings.Currency != "" && s.converter.Supported(settings.Currency) {
		return core.NormalizeCurrency(settings.Currency)
	}
	return s.defaultCurrency
}

// budgetStatus measures total spending in the budget's currency.
func (s *LedgerService) budgetStatus(ctx context.Context, txns []core.Transaction, settings core.Settings) analytics.BudgetStatus {
	code := s.resolveTarget("", settings)
	settings.Currency = code
	return analytics.EvaluateBudget(settings, s.engine.CalculateTotal(ctx, txns, code))
}

func (s *LedgerService) Budget(ctx context.Context, userID string) (analytics.BudgetStatus, error) {
	txns, settings, err := s.snapshot(ctx, userID)
	if err != nil {
		return analytics.BudgetStatus{}, err
	}
	return s.budgetStatus(ctx, txns, settings), nil
}

// BudgetUpdate changes only the fields that are set.
type BudgetUpdate struct {
	Budget   *float64 `json:"budget"`
	Enabled  *bool    `json:"enabled"`
	Currency *string  `json:"currency"`
}

func (s *LedgerService) UpdateBudget(ctx context.Context, userID string, in BudgetUpdate) (analytics.BudgetStatus, error) {
	settings, err := s.store.Settings(ctx, userID)
	if err != nil {
		return analytics.BudgetStatus{}, fmt.Errorf("load settings: %w", err)
	}
	if in.Budget != nil {
		if *in.Budget < 0 {
			return analytics.BudgetStatus{}, fmt.Errorf("%w: budget must not be negative", ErrValidation)
		}
		settings.Budget = core.Round2(*in.Budget)
	}
	if in.Enabled != nil {
		settings.BudgetEnabled = *in.Enabled
	}
	if in.Currency != nil {
		code := core.NormalizeCurrency(*in.Currency)
		if !s.converter.Supported(code) {
			return analytics.BudgetStatus{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
		}
		settings.Currency = code
	}
	settings.UpdatedAt = s.now().UTC()

	if err := s.store.SaveSettings(ctx, userID, settings); err != nil {
		return analytics.BudgetStatus{}, fmt.Errorf("save settings: %w", err)
	}
	s.invalidate(ctx, userID)
	slog.InfoContext(ctx, "Budget updated",
		"user_id", userID,
		"budget", settings.Budget,
		"enabled", settings.BudgetEnabled,
		"currency", settings.Currency)
	return s.Budget(ctx, userID)
}

// Heatmap lays out one month; zero year or month mean the current one.
func (s *LedgerService) Heatmap(ctx context.Context, userID string, year, month int) (analytics.Heatmap, error) {
	if month < 0 || month > 12 {
		return analytics.Heatmap{}, fmt.Errorf("%w: month must be between 1 and 12", ErrValidation)
	}
	now := s.today()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = now.Month()
	}
	txns, err := s.List(ctx, userID)
	if err != nil {
		return analytics.Heatmap{}, err
	}
	return analytics.MonthHeatmap(txns, year, month), nil
}

type ConversionResult struct {
	Amount    float64 `json:"amount"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Rate      float64 `json:"rate"`
	Result    float64 `json:"result"`
	Formatted string  `json:"formatted"`
}

func (s *LedgerService) Convert(amount float64, from, to string) (ConversionResult, error) {
	from, to = core.NormalizeCurrency(from), core.NormalizeCurrency(to)
	rate, ok := s.converter.Rate(from, to)
	if !ok || !s.converter.Supported(from) || !s.converter.Supported(to) {
		return ConversionResult{}, fmt.Errorf("%w: %s to %s", ErrUnsupportedCurrency, from, to)
	}
	result := core.Round2(s.converter.Convert(amount, from, to))
	return ConversionResult{
		Amount:    amount,
		From:      from,
		To:        to,
		Rate:      rate,
		Result:    result,
		Formatted: currency.Format(result, to),
	}, nil
}

func (s *LedgerService) Split(total float64, method string, participants []analytics.Participant) (analytics.SplitResult, error) {
	return analytics.Split(total, method, participants)
}

// Chat answers a finance question with the user's spending as context.
func (s *LedgerService) Chat(ctx context.Context, userID, question string) (ports.Advice, error) {
	if strings.TrimSpace(question) == "" {
		return ports.Advice{}, advisor.ErrEmptyQuestion
	}
	summary := ""
	if d, err := s.Dashboard(ctx, userID, "", defaultTopN); err != nil {
		slog.WarnContext(ctx, "Failed to build spending summary", "user_id", userID, "error", err)
	} else {
		summary = spendingSummary(d)
	}
	return s.advisor.Advise(ctx, question, summary)
}

func spendingSummary(d Dashboard) string {
	if d.TransactionCount == 0 {
		return ""
	}
	in := d.Report.Insights
	var b strings.Builder
	fmt.Fprintf(&b, "Total spending: %s %s across %d transactions\n", in.TotalSpending, in.TotalCurrency, in.TransactionCount)
	fmt.Fprintf(&b, "Average transaction: %s %s\n", in.AverageTransaction, in.TotalCurrency)
	for _, c := range d.Report.TopCategories {
		fmt.Fprintf(&b, "- %s: %.2f\n", c.Category, c.Amount)
	}
	if in.MonthComparison.Message != "" {
		fmt.Fprintf(&b, "%s\n", in.MonthComparison.Message)
	}
	if d.Budget.Budget > 0 {
		fmt.Fprintf(&b, "Budget: %.2f %s, %.1f%% used\n", d.Budget.Budget, d.Budget.Currency, d.Budget.Percentage)
	}
	return b.String()
}
