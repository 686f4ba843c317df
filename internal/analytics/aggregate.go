package analytics

import (
	"log/slog"

	"spendwise/internal/core"
)

// GroupByCategory sums effective amounts per category. Uncategorised
// transactions count as Miscellaneous. Amounts are summed as-is, without
// currency conversion.
func GroupByCategory(txns []core.Transaction) *Totals {
	totals := NewTotals()
	for _, t := range txns {
		totals.Add(t.CategoryOrMisc(), t.EffectiveAmount())
	}
	return totals
}

// GroupByMonth sums effective amounts per "YYYY-MM". Transactions with an
// unparsable date are skipped and counted in the second return value.
func GroupByMonth(txns []core.Transaction) (*Totals, int) {
	totals := NewTotals()
	skipped := 0
	for _, t := range txns {
		key := t.Date.MonthKey()
		if key == "" {
			skipped++
			continue
		}
		totals.Add(key, t.EffectiveAmount())
	}
	if skipped > 0 {
		slog.Warn("Transactions without a valid date skipped from monthly totals", "skipped", skipped)
	}
	return totals, skipped
}
