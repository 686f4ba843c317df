package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"

	"spendwise/internal/core"
	"spendwise/internal/currency"
)

// Trend values of a MonthComparison.
const (
	TrendUp      = "up"
	TrendDown    = "down"
	TrendNeutral = "neutral"
)

// Insight record types.
const (
	InsightDominant  = "dominant"
	InsightFrequency = "frequency"
)

// highFrequencyThreshold is exclusive: a category needs more transactions
// than this to be reported.
const highFrequencyThreshold = 3

const notEnoughMonthsMessage = "Not enough data for month-over-month comparison"

// Converter is the subset of currency.Converter the engine needs.
type Converter interface {
	ConvertContext(ctx context.Context, amount float64, from, to string) float64
}

type (
	// MonthComparison compares the two latest months. When PercentageApplicable
	// is false the previous month had no spending and Percentage is 0.
	MonthComparison struct {
		Trend                string  `json:"trend"`
		Message              string  `json:"message"`
		Difference           float64 `json:"difference"`
		Percentage           float64 `json:"percentage"`
		PercentageApplicable bool    `json:"percentageApplicable"`
		CurrentMonth         string  `json:"currentMonth,omitempty"`
		PreviousMonth        string  `json:"previousMonth,omitempty"`
	}

	Insight struct {
		Type     string `json:"type"`
		Message  string `json:"message"`
		Category string `json:"category"`
	}

	// ExpenseStat describes one extremal transaction.
	ExpenseStat struct {
		Date        string `json:"date"`
		Amount      string `json:"amount"`
		Currency    string `json:"currency"`
		Description string `json:"description"`
	}

	// DailyStats holds per-transaction extremes. AverageDaily is always 0
	// because amounts may be in mixed currencies.
	DailyStats struct {
		AverageDaily      float64      `json:"averageDaily"`
		MaxExpense        *ExpenseStat `json:"maxExpense"`
		MinExpense        *ExpenseStat `json:"minExpense"`
		TotalTransactions int          `json:"totalTransactions"`
		Skipped           int          `json:"skipped"`
	}

	InsightsSummary struct {
		TotalSpending      string          `json:"totalSpending"`
		TotalCurrency      string          `json:"totalCurrency"`
		TransactionCount   int             `json:"transactionCount"`
		MonthComparison    MonthComparison `json:"monthComparison"`
		CategoryInsights   []Insight       `json:"categoryInsights"`
		DailyStats         DailyStats      `json:"dailyStats"`
		AverageTransaction string          `json:"averageTransaction"`
	}
)

// Engine derives insights. It holds no mutable state.
type Engine struct {
	converter       Converter
	defaultCurrency string
	symbol          string
}

// NewEngine returns an engine converting through conv. defaultCurrency is
// assumed for transactions with no currency and picks the message symbol.
func NewEngine(conv Converter, defaultCurrency string) *Engine {
	if conv == nil {
		conv = currency.NewConverter(nil, nil)
	}
	defaultCurrency = core.NormalizeCurrency(defaultCurrency)
	if defaultCurrency == "" {
		defaultCurrency = core.DefaultCurrency
	}
	return &Engine{
		converter:       conv,
		defaultCurrency: defaultCurrency,
		symbol:          currency.Symbol(defaultCurrency),
	}
}

// DefaultCurrency is the currency assumed when none is recorded.
func (e *Engine) DefaultCurrency() string {
	return e.defaultCurrency
}

// CalculateTotal converts every positive effective amount to target and sums.
func (e *Engine) CalculateTotal(ctx context.Context, txns []core.Transaction, target string) float64 {
	target = e.target(target)
	var total float64
	for _, t := range txns {
		amount := t.EffectiveAmount()
		if amount <= 0 {
			continue
		}
		total += e.converter.ConvertContext(ctx, amount, t.EffectiveCurrency(e.defaultCurrency), target)
	}
	return total
}

// CompareMonths compares the two latest months of monthly.
func (e *Engine) CompareMonths(monthly *Totals) MonthComparison {
	months := monthly.Keys()
	sort.Strings(months)
	if len(months) < 2 {
		return MonthComparison{Trend: TrendNeutral, Message: notEnoughMonthsMessage}
	}

	currentMonth := months[len(months)-1]
	previousMonth := months[len(months)-2]
	current, _ := monthly.Get(currentMonth)
	previous, _ := monthly.Get(previousMonth)
	difference := current - previous

	mc := MonthComparison{
		Trend:         TrendNeutral,
		Difference:    difference,
		CurrentMonth:  currentMonth,
		PreviousMonth: previousMonth,
	}

	// Monthly totals are never negative, so an empty previous month can only
	// be followed by more spending or none.
	if previous == 0 {
		if difference > 0 {
			mc.Trend = TrendUp
			mc.Message = fmt.Sprintf("New spending this month (%s%.2f increase over a month with no spending)", e.symbol, difference)
		} else {
			mc.Message = "Your spending remained the same as last month"
		}
		return mc
	}

	mc.Percentage = core.Round1(difference / previous * 100)
	mc.PercentageApplicable = true
	pct := strconv.FormatFloat(math.Abs(mc.Percentage), 'f', -1, 64)

	switch {
	case difference > 0:
		mc.Trend = TrendUp
		mc.Message = fmt.Sprintf("You spent %s%% more this month (%s%.2f increase)", pct, e.symbol, difference)
	case difference < 0:
		mc.Trend = TrendDown
		mc.Message = fmt.Sprintf("Great! You spent %s%% less this month (%s%.2f saved)", pct, e.symbol, math.Abs(difference))
	default:
		mc.Message = "Your spending remained the same as last month"
	}
	return mc
}

// AnalyzeCategorySpending reports the dominant category and, when its count
// exceeds the threshold, the most frequent one. The dominant percentage is
// taken against the unconverted sum of categoryTotals.
func (e *Engine) AnalyzeCategorySpending(categoryTotals *Totals, txns []core.Transaction) []Insight {
	insights := []Insight{}

	if top := TopCategories(categoryTotals, 1); len(top) == 1 {
		total := categoryTotals.Sum()
		var pct float64
		if total != 0 {
			pct = top[0].Amount / total * 100
		}
		insights = append(insights, Insight{
			Type:     InsightDominant,
			Category: top[0].Category,
			Message: fmt.Sprintf("%s is your biggest expense at %.1f%% of total spending (%s%.2f)",
				top[0].Category, pct, e.symbol, top[0].Amount),
		})
	}

	counts := NewTotals()
	for _, t := range txns {
		counts.Add(t.CategoryOrMisc(), 1)
	}
	if top := TopCategories(counts, 1); len(top) == 1 && top[0].Amount > highFrequencyThreshold {
		insights = append(insights, Insight{
			Type:     InsightFrequency,
			Category: top[0].Category,
			Message:  fmt.Sprintf("You made %d transactions in %s", int(top[0].Amount), top[0].Category),
		})
	}

	return insights
}

// DailyStats finds the largest and smallest single transactions. Rows with a
// zero date or non-positive amount are skipped; the first of equal amounts
// wins.
func (e *Engine) DailyStats(txns []core.Transaction) DailyStats {
	stats := DailyStats{TotalTransactions: len(txns)}

	var maxT, minT *core.Transaction
	for i := range txns {
		t := &txns[i]
		if t.Date.IsZero() {
			stats.Skipped++
			continue
		}
		amount := t.EffectiveAmount()
		if amount <= 0 {
			stats.Skipped++
			continue
		}
		if maxT == nil || amount > maxT.EffectiveAmount() {
			maxT = t
		}
		if minT == nil || amount < minT.EffectiveAmount() {
			minT = t
		}
	}

	stats.MaxExpense = e.stat(maxT)
	stats.MinExpense = e.stat(minT)
	return stats
}

func (e *Engine) stat(t *core.Transaction) *ExpenseStat {
	if t == nil {
		return nil
	}
	desc := t.Description
	if desc == "" {
		desc = "Expense"
	}
	return &ExpenseStat{
		Date:        t.Date.DayKey(),
		Amount:      fmt.Sprintf("%.2f", t.EffectiveAmount()),
		Currency:    t.EffectiveCurrency(e.defaultCurrency),
		Description: desc,
	}
}

// Generate composes every insight into one summary.
func (e *Engine) Generate(ctx context.Context, txns []core.Transaction, categoryTotals, monthlyTotals *Totals, target string) InsightsSummary {
	target = e.target(target)
	total := e.CalculateTotal(ctx, txns, target)

	avg := "0.00"
	if len(txns) > 0 {
		avg = fmt.Sprintf("%.2f", total/float64(len(txns)))
	}

	summary := InsightsSummary{
		TotalSpending:      fmt.Sprintf("%.2f", total),
		TotalCurrency:      target,
		TransactionCount:   len(txns),
		MonthComparison:    e.CompareMonths(monthlyTotals),
		CategoryInsights:   e.AnalyzeCategorySpending(categoryTotals, txns),
		DailyStats:         e.DailyStats(txns),
		AverageTransaction: avg,
	}
	if summary.DailyStats.Skipped > 0 {
		slog.WarnContext(ctx, "Transactions skipped from daily stats",
			"skipped", summary.DailyStats.Skipped, "total", len(txns))
	}
	return summary
}

func (e *Engine) target(code string) string {
	code = core.NormalizeCurrency(code)
	if code == "" {
		return e.defaultCurrency
	}
	return code
}
