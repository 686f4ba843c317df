// Package analytics aggregates categorised transactions into totals,
// rankings and human-readable insights.
//
// Every function here is pure: it reads the slice it is given and returns
// fresh values, so callers may run them concurrently on snapshots.
package analytics

import (
	"context"

	"spendwise/internal/core"
)

// Report bundles everything the dashboard needs for one snapshot.
type Report struct {
	CategoryTotals *Totals          `json:"categoryTotals"`
	MonthlyTotals  *Totals          `json:"monthlyTotals"`
	TopCategories  []CategoryAmount `json:"topCategories"`
	Insights       InsightsSummary  `json:"insights"`
	SkippedRows    int              `json:"skippedRows"`
}

// TopCategory returns the highest-spending category, or "" when empty.
func (r Report) TopCategory() string {
	if len(r.TopCategories) == 0 {
		return ""
	}
	return r.TopCategories[0].Category
}

// Build runs the full pipeline over txns: aggregate, rank, derive insights.
// Transactions must already be categorised.
func (e *Engine) Build(ctx context.Context, txns []core.Transaction, target string, topN int) Report {
	categoryTotals := GroupByCategory(txns)
	monthlyTotals, skipped := GroupByMonth(txns)
	return Report{
		CategoryTotals: categoryTotals,
		MonthlyTotals:  monthlyTotals,
		TopCategories:  TopCategories(categoryTotals, topN),
		Insights:       e.Generate(ctx, txns, categoryTotals, monthlyTotals, target),
		SkippedRows:    skipped,
	}
}

// Messages flattens the insights into display strings: the month comparison
// first, then each category insight.
func (r Report) Messages() []string {
	out := []string{}
	if r.Insights.MonthComparison.Message != "" {
		out = append(out, r.Insights.MonthComparison.Message)
	}
	for _, in := range r.Insights.CategoryInsights {
		out = append(out, in.Message)
	}
	return out
}
