package analytics

import (
	"sort"

	"spendwise/internal/core"
)

// Debt progress levels, furthest along first.
const (
	ProgressNearlyDone = "nearly-done"
	ProgressHalfway    = "halfway"
	ProgressStarted    = "started"
	ProgressEarly      = "early"
)

type (
	MonthlyBalance struct {
		ID           string  `json:"id"`
		Month        string  `json:"month"`
		Income       float64 `json:"income"`
		Expense      float64 `json:"expense"`
		Savings      float64 `json:"savings"`
		SavingsRate  float64 `json:"savingsRate"`
		IncomeNotes  string  `json:"incomeNotes,omitempty"`
		ExpenseNotes string  `json:"expenseNotes,omitempty"`
	}

	IncomeSummary struct {
		Months       []MonthlyBalance `json:"months"`
		TotalIncome  float64          `json:"totalIncome"`
		TotalExpense float64          `json:"totalExpense"`
		NetSavings   float64          `json:"netSavings"`
		SavingsRate  float64          `json:"savingsRate"`
		Currency     string           `json:"currency"`
	}

	DebtProgress struct {
		Debt     core.Debt `json:"-"`
		Paid     float64   `json:"paid"`
		Progress float64   `json:"progress"`
		Level    string    `json:"level"`
	}

	DebtSummary struct {
		Debts           []DebtProgress `json:"-"`
		TotalDebt       float64        `json:"totalDebt"`
		TotalOriginal   float64        `json:"totalOriginal"`
		TotalPaid       float64        `json:"totalPaid"`
		OverallProgress float64        `json:"overallProgress"`
		Currency        string         `json:"currency"`
	}
)

// savingsRate is savings as a share of income; 0 without income.
func savingsRate(savings, income float64) float64 {
	if income <= 0 {
		return 0
	}
	return core.Round1(savings / income * 100)
}

// SummarizeIncome orders entries by month, keeping insertion order within
// a month, and totals them.
func SummarizeIncome(entries []core.IncomeEntry, currency string) IncomeSummary {
	sorted := append([]core.IncomeEntry{}, entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Month < sorted[j].Month })

	s := IncomeSummary{Months: make([]MonthlyBalance, 0, len(sorted)), Currency: currency}
	for _, e := range sorted {
		savings := e.Savings()
		s.Months = append(s.Months, MonthlyBalance{
			ID:           e.ID,
			Month:        e.Month,
			Income:       e.Income,
			Expense:      e.Expense,
			Savings:      core.Round2(savings),
			SavingsRate:  savingsRate(savings, e.Income),
			IncomeNotes:  e.IncomeNotes,
			ExpenseNotes: e.ExpenseNotes,
		})
		s.TotalIncome += e.Income
		s.TotalExpense += e.Expense
	}
	s.NetSavings = core.Round2(s.TotalIncome - s.TotalExpense)
	s.SavingsRate = savingsRate(s.TotalIncome-s.TotalExpense, s.TotalIncome)
	s.TotalIncome, s.TotalExpense = core.Round2(s.TotalIncome), core.Round2(s.TotalExpense)
	return s
}

func progressLevel(pct float64) string {
	switch {
	case pct >= 75:
		return ProgressNearlyDone
	case pct >= 50:
		return ProgressHalfway
	case pct >= 25:
		return ProgressStarted
	default:
		return ProgressEarly
	}
}

// SummarizeDebts measures repayment per debt and across all of them.
// Debts keep the order they were given in.
func SummarizeDebts(debts []core.Debt, currency string) DebtSummary {
	s := DebtSummary{Debts: make([]DebtProgress, 0, len(debts)), Currency: currency}
	for _, d := range debts {
		pct := 0.0
		if d.TotalAmount > 0 {
			pct = core.Round1(d.Paid() / d.TotalAmount * 100)
		}
		s.Debts = append(s.Debts, DebtProgress{
			Debt:     d,
			Paid:     core.Round2(d.Paid()),
			Progress: pct,
			Level:    progressLevel(pct),
		})
		s.TotalDebt += d.CurrentBalance
		s.TotalOriginal += d.TotalAmount
	}
	s.TotalPaid = s.TotalOriginal - s.TotalDebt
	if s.TotalOriginal > 0 {
		s.OverallProgress = core.Round1(s.TotalPaid / s.TotalOriginal * 100)
	}
	s.TotalDebt = core.Round2(s.TotalDebt)
	s.TotalOriginal = core.Round2(s.TotalOriginal)
	s.TotalPaid = core.Round2(s.TotalPaid)
	return s
}
