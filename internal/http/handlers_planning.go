package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"spendwise/internal/analytics"
	"spendwise/internal/core"
	"spendwise/internal/services"
)

type debtJSON struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	TotalAmount    float64 `json:"totalAmount"`
	CurrentBalance float64 `json:"currentBalance"`
	InterestRate   float64 `json:"interestRate"`
	MinimumPayment float64 `json:"minimumPayment"`
	DueDate        string  `json:"dueDate,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	Paid           float64 `json:"paid"`
	Progress       float64 `json:"progress"`
	Level          string  `json:"level"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

func toDebtJSON(p analytics.DebtProgress) debtJSON {
	d := p.Debt
	out := debtJSON{
		ID:             d.ID,
		Name:           d.Name,
		Type:           d.Type,
		TotalAmount:    d.TotalAmount,
		CurrentBalance: d.CurrentBalance,
		InterestRate:   d.InterestRate,
		MinimumPayment: d.MinimumPayment,
		Notes:          d.Notes,
		Paid:           p.Paid,
		Progress:       p.Progress,
		Level:          p.Level,
		CreatedAt:      d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      d.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if !d.DueDate.IsEmpty() {
		out.DueDate = d.DueDate.DayKey()
	}
	return out
}

// singleDebt measures one debt on its own for create and update replies.
func singleDebt(d core.Debt) debtJSON {
	return toDebtJSON(analytics.SummarizeDebts([]core.Debt{d}, "").Debts[0])
}

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	sum, err := s.ledger.IncomeSummary(r.Context(), userID(r))
	if err != nil {
		respondError(w, r, "Failed to list income", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"summary": sum,
	})
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var in services.IncomeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.Month = sanitizeInput(in.Month)
	in.IncomeNotes = sanitizeInput(in.IncomeNotes)
	in.ExpenseNotes = sanitizeInput(in.ExpenseNotes)

	user := userID(r)
	e, err := s.ledger.AddIncome(r.Context(), user, in)
	if err != nil {
		respondError(w, r, "Failed to add income", err)
		return
	}
	sum, err := s.ledger.IncomeSummary(r.Context(), user)
	if err != nil {
		respondError(w, r, "Failed to list income", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Income entry added successfully",
		"id":      e.ID,
		"summary": sum,
	})
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := s.ledger.DeleteIncome(r.Context(), userID(r), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Income entry not found")
			return
		}
		respondError(w, r, "Failed to delete income entry", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Income entry deleted",
		"id":      id,
	})
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	sum, err := s.ledger.DebtSummary(r.Context(), userID(r))
	if err != nil {
		respondError(w, r, "Failed to list debts", err)
		return
	}
	debts := make([]debtJSON, 0, len(sum.Debts))
	for _, p := range sum.Debts {
		debts = append(debts, toDebtJSON(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"debts":   debts,
		"summary": sum,
	})
}

func decodeDebt(w http.ResponseWriter, r *http.Request) (services.DebtInput, bool) {
	var in services.DebtInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return in, false
	}
	in.Name = sanitizeInput(in.Name)
	in.Type = sanitizeInput(in.Type)
	in.DueDate = sanitizeInput(in.DueDate)
	in.Notes = sanitizeInput(in.Notes)
	return in, true
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeDebt(w, r)
	if !ok {
		return
	}
	d, err := s.ledger.AddDebt(r.Context(), userID(r), in)
	if err != nil {
		respondError(w, r, "Failed to add debt", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Debt added successfully",
		"debt":    singleDebt(d),
	})
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeDebt(w, r)
	if !ok {
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	d, err := s.ledger.UpdateDebt(r.Context(), userID(r), id, in)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Debt not found")
			return
		}
		respondError(w, r, "Failed to update debt", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Debt updated",
		"debt":    singleDebt(d),
	})
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := s.ledger.DeleteDebt(r.Context(), userID(r), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Debt not found")
			return
		}
		respondError(w, r, "Failed to delete debt", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Debt deleted",
		"id":      id,
	})
}
