package analytics

import "spendwise/internal/core"

// Budget levels, most severe first.
const (
	BudgetOver     = "over"
	BudgetCritical = "critical"
	BudgetWarning  = "warning"
	BudgetHealthy  = "healthy"
)

type BudgetStatus struct {
	Budget     float64 `json:"budget"`
	Enabled    bool    `json:"enabled"`
	Spent      float64 `json:"spent"`
	Deducted   float64 `json:"deducted"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
	Level      string  `json:"level"`
	Currency   string  `json:"currency"`
}

// EvaluateBudget measures spent against the user's budget. A disabled
// budget deducts nothing; a non-positive budget reports 0%.
func EvaluateBudget(settings core.Settings, spent float64) BudgetStatus {
	deducted := 0.0
	if settings.BudgetEnabled {
		deducted = spent
	}
	remaining := settings.Budget - deducted
	pct := 0.0
	if settings.Budget > 0 {
		pct = deducted / settings.Budget * 100
	}

	level := BudgetHealthy
	switch {
	case remaining < 0:
		level = BudgetOver
	case pct > 80:
		level = BudgetCritical
	case pct > 50:
		level = BudgetWarning
	}

	return BudgetStatus{
		Budget:     settings.Budget,
		Enabled:    settings.BudgetEnabled,
		Spent:      spent,
		Deducted:   deducted,
		Remaining:  remaining,
		Percentage: core.Round1(pct),
		Level:      level,
		Currency:   settings.Currency,
	}
}
