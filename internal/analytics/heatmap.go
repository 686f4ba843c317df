package analytics

import (
	"time"

	"spendwise/internal/core"
)

type (
	HeatmapDay struct {
		Day       int     `json:"day"`
		Date      string  `json:"date"`
		Amount    float64 `json:"amount"`
		Intensity int     `json:"intensity"`
	}

	// Heatmap is one calendar month of daily totals. LeadingBlanks is the
	// weekday of the 1st (Sunday = 0), for calendar rendering.
	Heatmap struct {
		Year             int          `json:"year"`
		Month            int          `json:"month"`
		LeadingBlanks    int          `json:"leadingBlanks"`
		Days             []HeatmapDay `json:"days"`
		Total            float64      `json:"total"`
		Average          float64      `json:"average"`
		Highest          float64      `json:"highest"`
		HighestDate      string       `json:"highestDate"`
		DaysWithSpending int          `json:"daysWithSpending"`
	}
)

// DailyTotals sums effective amounts per "YYYY-MM-DD", skipping zero dates.
func DailyTotals(txns []core.Transaction) *Totals {
	totals := NewTotals()
	for _, t := range txns {
		if key := t.Date.DayKey(); key != "" {
			totals.Add(key, t.EffectiveAmount())
		}
	}
	return totals
}

// MonthHeatmap lays out one month of daily totals. Intensity (0..5) is
// relative to the largest daily total across all transactions, floored at 1
// so tiny datasets do not saturate.
func MonthHeatmap(txns []core.Transaction, year, month int) Heatmap {
	daily := DailyTotals(txns)

	maxDaily := 1.0
	for _, e := range daily.Entries() {
		if e.Amount > maxDaily {
			maxDaily = e.Amount
		}
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	hm := Heatmap{
		Year:          first.Year(),
		Month:         int(first.Month()),
		LeadingBlanks: int(first.Weekday()),
		Days:          make([]HeatmapDay, 0, daysInMonth),
	}
	for d := 1; d <= daysInMonth; d++ {
		key := first.AddDate(0, 0, d-1).Format("2006-01-02")
		amount, _ := daily.Get(key)
		hm.Days = append(hm.Days, HeatmapDay{
			Day:       d,
			Date:      key,
			Amount:    amount,
			Intensity: intensity(amount, maxDaily),
		})
		if _, spent := daily.Get(key); spent {
			hm.Total += amount
			hm.DaysWithSpending++
			if amount > hm.Highest {
				hm.Highest = amount
				hm.HighestDate = key
			}
		}
	}
	if hm.DaysWithSpending > 0 {
		hm.Average = hm.Total / float64(hm.DaysWithSpending)
	}
	return hm
}

func intensity(amount, max float64) int {
	if amount <= 0 {
		return 0
	}
	pct := amount / max * 100
	switch {
	case pct < 20:
		return 1
	case pct < 40:
		return 2
	case pct < 60:
		return 3
	case pct < 80:
		return 4
	default:
		return 5
	}
}
