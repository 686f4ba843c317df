package http

import (
	"net/http"
	"strings"

	"spendwise/internal/analytics"
	"spendwise/internal/currency"
	"spendwise/internal/services"
)

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	top, err := queryInt(r, "top", analytics.DefaultTopN)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if top < 1 || top > 50 {
		writeError(w, http.StatusBadRequest, "top must be between 1 and 50")
		return
	}
	d, err := s.ledger.Dashboard(r.Context(), userID(r), r.URL.Query().Get("currency"), top)
	if err != nil {
		respondError(w, r, "Failed to build analytics", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"analytics": d,
		"messages":  d.Report.Messages(),
	})
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	month, err := queryInt(r, "month", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h, err := s.ledger.Heatmap(r.Context(), userID(r), year, month)
	if err != nil {
		respondError(w, r, "Failed to build heatmap", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "heatmap": h})
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.ledger.Budget(r.Context(), userID(r))
	if err != nil {
		respondError(w, r, "Failed to load budget", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "budget": b})
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var in services.BudgetUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := s.ledger.UpdateBudget(r.Context(), userID(r), in)
	if err != nil {
		respondError(w, r, "Failed to update budget", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Budget updated",
		"budget":  b,
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	amount, err := queryFloat(r, "amount")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if to == "" {
		to = s.ledger.DefaultCurrency()
	}
	if from == "" {
		writeError(w, http.StatusBadRequest, "missing from")
		return
	}
	res, err := s.ledger.Convert(amount, from, to)
	if err != nil {
		respondError(w, r, "Failed to convert", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "conversion": res})
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"default":    s.ledger.DefaultCurrency(),
		"currencies": currency.Catalog(),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"categories": s.ledger.Categorizer().Categories(),
	})
}

type splitRequest struct {
	Total        float64                 `json:"total"`
	Method       string                  `json:"method"`
	Participants []analytics.Participant `json:"participants"`
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	var in splitRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Method == "" {
		in.Method = analytics.SplitEqual
	}
	for i := range in.Participants {
		in.Participants[i].Name = sanitizeInput(in.Participants[i].Name)
		in.Participants[i].Email = sanitizeInput(in.Participants[i].Email)
	}
	res, err := s.ledger.Split(in.Total, strings.ToLower(in.Method), in.Participants)
	if err != nil {
		respondError(w, r, "Failed to split", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "split": res})
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r, cancel := withTimeout(r, requestTimeout)
	defer cancel()

	var in chatRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	advice, err := s.ledger.Chat(r.Context(), userID(r), sanitizeInput(in.Message))
	if err != nil {
		respondError(w, r, "Failed to answer", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"reply":   advice.Reply,
		"source":  advice.Source,
	})
}
