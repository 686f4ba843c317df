package analytics

import "sort"

// DefaultTopN is used when a non-positive n is requested.
const DefaultTopN = 5

// CategoryAmount is one ranked category.
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// TopCategories returns up to n categories by descending amount. Ties keep
// the totals' insertion order.
func TopCategories(totals *Totals, n int) []CategoryAmount {
	if n <= 0 {
		n = DefaultTopN
	}
	entries := totals.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Amount > entries[j].Amount
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]CategoryAmount, len(entries))
	for i, e := range entries {
		out[i] = CategoryAmount{Category: e.Key, Amount: e.Amount}
	}
	return out
}
