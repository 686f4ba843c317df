package http

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/services"
)

// expenseJSON is the wire form of a transaction.
type expenseJSON struct {
	ID               string   `json:"id"`
	Date             string   `json:"date"`
	Description      string   `json:"description"`
	Amount           float64  `json:"amount"`
	Currency         string   `json:"currency"`
	OriginalAmount   *float64 `json:"originalAmount,omitempty"`
	OriginalCurrency string   `json:"originalCurrency,omitempty"`
	Mode             string   `json:"mode"`
	Category         string   `json:"category"`
	CreatedAt        string   `json:"createdAt"`
}

func toExpenseJSON(t core.Transaction) expenseJSON {
	return expenseJSON{
		ID:               t.ID,
		Date:             t.Date.DayKey(),
		Description:      t.Description,
		Amount:           t.Amount,
		Currency:         t.Currency,
		OriginalAmount:   t.OriginalAmount,
		OriginalCurrency: t.OriginalCurrency,
		Mode:             t.Mode,
		Category:         t.Category,
		CreatedAt:        t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toExpensesJSON(txns []core.Transaction) []expenseJSON {
	out := make([]expenseJSON, 0, len(txns))
	for _, t := range txns {
		out = append(out, toExpenseJSON(t))
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady checks the store within a short timeout.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"store": "ok"}
	if s.ready != nil {
		if err := s.ready.Ping(ctx); err != nil {
			checks["store"] = fmt.Sprintf("failed: %v", err)
			status, code = "not_ready", http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"uptimeSeconds": int64(time.Since(s.startedAt).Seconds()),
		"requests":      s.tracer.GetMetrics(),
		"rateLimit":     s.rateLimiter.GetMetrics(),
		"security":      s.detector.GetMetrics(),
	})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	txns, err := s.ledger.List(r.Context(), user)
	if err != nil {
		respondError(w, r, "Failed to list expenses", err)
		return
	}
	d, err := s.ledger.Dashboard(r.Context(), user, r.URL.Query().Get("currency"), 0)
	if err != nil {
		respondError(w, r, "Failed to build analytics", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"expenses":      toExpensesJSON(txns),
		"totalExpenses": len(txns),
		"analytics":     d,
	})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in services.ManualEntry
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.Description = sanitizeInput(in.Description)
	in.Mode = sanitizeInput(in.Mode)

	user := userID(r)
	t, err := s.ledger.AddManual(r.Context(), user, in)
	if err != nil {
		respondError(w, r, "Failed to add expense", err)
		return
	}
	d, err := s.ledger.Dashboard(r.Context(), user, "", 0)
	if err != nil {
		respondError(w, r, "Failed to build analytics", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":       true,
		"message":       "Expense added successfully",
		"expense":       toExpenseJSON(t),
		"totalExpenses": d.TransactionCount,
		"analytics":     d,
	})
}

func (s *Server) handleClearExpenses(w http.ResponseWriter, r *http.Request) {
	n, err := s.ledger.Clear(r.Context(), userID(r))
	if err != nil {
		respondError(w, r, "Failed to clear expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       fmt.Sprintf("Cleared %d expenses", n),
		"cleared":       n,
		"totalExpenses": 0,
	})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := s.ledger.Delete(r.Context(), userID(r), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Expense not found")
			return
		}
		respondError(w, r, "Failed to delete expense", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Expense deleted",
		"id":      id,
	})
}

// handleUpload imports a multipart CSV statement from field "file".
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r, cancel := withTimeout(r, uploadTimeout)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, s.uploadMax+1<<10)
	if err := r.ParseMultipartForm(s.uploadMax); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds %d bytes", s.uploadMax))
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Size > s.uploadMax {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds %d bytes", s.uploadMax))
		return
	}
	if !isCSV(header.Filename, header.Header.Get("Content-Type")) {
		writeError(w, http.StatusBadRequest, "Only CSV files are allowed")
		return
	}

	user := userID(r)
	res, err := s.ledger.Import(r.Context(), user, filepath.Base(header.Filename), file)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusRequestTimeout, "Upload timeout")
			return
		}
		respondError(w, r, "Processing failed", err)
		return
	}

	txns, err := s.ledger.List(r.Context(), user)
	if err != nil {
		respondError(w, r, "Failed to list expenses", err)
		return
	}
	d, err := s.ledger.Dashboard(r.Context(), user, "", 0)
	if err != nil {
		respondError(w, r, "Failed to build analytics", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": res.Message,
		"data": map[string]any{
			"newExpenses":     res.Imported,
			"totalExpenses":   len(txns),
			"processedLines":  res.Processed,
			"analytics":       d,
			"errors":          nonNil(res.Errors),
			"errorCount":      res.ErrorCount,
			"warnings":        res.Warnings,
			"archiveLocation": res.ArchiveLocation,
		},
		"expenses": toExpensesJSON(txns),
	})
}

func isCSV(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/csv"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
