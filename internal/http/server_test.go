package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"spendwise/internal/log"
	"spendwise/internal/services"
	"spendwise/internal/storage/memory"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("database is locked") }

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = log.New(log.Config{Output: &bytes.Buffer{}})
	}
	srv := NewServer(":0", services.NewLedgerService(memory.New()), opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, Options{})

	for _, path := range []string{"/healthz", "/api/health", "/readyz", "/api/metrics"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
	if got := decode(t, do(t, srv, http.MethodGet, "/api/health", ""))["status"]; got != "ok" {
		t.Errorf("health status = %v", got)
	}

	rr := do(t, srv, http.MethodGet, "/healthz", "")
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("request id header missing")
	}
}

func TestReadyReportsStoreFailure(t *testing.T) {
	srv := newTestServer(t, Options{Ready: failingPinger{}})

	rr := do(t, srv, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rr.Code)
	}
	if decode(t, rr)["status"] != "not_ready" {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestExpenseLifecycle(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodPost, "/api/expenses",
		`{"date":"2025-10-01","description":"Zomato lunch","amount":250}`, HeaderUserID, "alice")
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := decode(t, rr)
	if body["message"] != "Expense added successfully" {
		t.Errorf("message = %v", body["message"])
	}
	exp := body["expense"].(map[string]any)
	if exp["category"] != "Food & Dining" || exp["mode"] != "Cash" || exp["date"] != "2025-10-01" {
		t.Errorf("expense = %v", exp)
	}
	id := exp["id"].(string)

	// Other users do not see alice's data
	rr = do(t, srv, http.MethodGet, "/api/expenses", "")
	if got := decode(t, rr)["totalExpenses"]; got != float64(0) {
		t.Errorf("default user totalExpenses = %v", got)
	}

	rr = do(t, srv, http.MethodGet, "/api/expenses", "", HeaderUserID, "alice")
	if got := decode(t, rr)["totalExpenses"]; got != float64(1) {
		t.Errorf("alice totalExpenses = %v", got)
	}

	rr = do(t, srv, http.MethodDelete, "/api/expenses/"+id, "", HeaderUserID, "alice")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status=%d", rr.Code)
	}
	rr = do(t, srv, http.MethodDelete, "/api/expenses/"+id, "", HeaderUserID, "alice")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d", rr.Code)
	}
	if decode(t, rr)["success"] != false {
		t.Error("error body must carry success=false")
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	srv := newTestServer(t, Options{})

	tests := []struct {
		name, body string
		contains   string
	}{
		{"empty body", "", "request body is empty"},
		{"bad json", "{", "invalid JSON body"},
		{"unknown field", `{"description":"x","amount":1,"price":2}`, "unknown field"},
		{"missing description", `{"amount":10}`, "missing required fields"},
		{"negative amount", `{"description":"x","amount":-1}`, "amount must be a positive number"},
		{"unsupported currency", `{"description":"x","amount":1,"currency":"XYZ"}`, "unsupported currency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/expenses", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}
			if msg, _ := decode(t, rr)["error"].(string); !strings.Contains(msg, tt.contains) {
				t.Errorf("error = %q, want it to contain %q", msg, tt.contains)
			}
		})
	}
}

func TestClearExpenses(t *testing.T) {
	srv := newTestServer(t, Options{})
	for _, d := range []string{"Uber", "Netflix"} {
		if rr := do(t, srv, http.MethodPost, "/api/expenses", `{"description":"`+d+`","amount":5}`); rr.Code != http.StatusCreated {
			t.Fatalf("create status=%d", rr.Code)
		}
	}

	rr := do(t, srv, http.MethodDelete, "/api/expenses", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if got := decode(t, rr)["message"]; got != "Cleared 2 expenses" {
		t.Errorf("message = %v", got)
	}
}

func uploadRequest(t *testing.T, filename, contentType, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	h["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	srv := newTestServer(t, Options{})
	csv := "Date,Description,Amount,Mode\n2025-09-01,Swiggy,300,UPI\n2025-09-02,Bad,abc,Cash\n"

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, uploadRequest(t, "sept.csv", "text/csv", csv))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := decode(t, rr)
	if body["message"] != "Successfully processed 1 expenses from 2 lines" {
		t.Errorf("message = %v", body["message"])
	}
	data := body["data"].(map[string]any)
	if data["newExpenses"] != float64(1) || data["totalExpenses"] != float64(1) {
		t.Errorf("data = %v", data)
	}
	if errs := data["errors"].([]any); len(errs) != 1 {
		t.Errorf("errors = %v", errs)
	}
	if exps := body["expenses"].([]any); len(exps) != 1 {
		t.Errorf("expenses = %v", exps)
	}
}

func TestUploadRejections(t *testing.T) {
	srv := newTestServer(t, Options{UploadMaxBytes: 64})

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, uploadRequest(t, "photo.png", "image/png", "not csv"))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("non-csv status=%d", rr.Code)
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, uploadRequest(t, "big.csv", "text/csv", strings.Repeat("2025-01-01,x,1\n", 20)))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized status=%d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("plain"))
	req.Header.Set("Content-Type", "text/plain")
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("non-multipart status=%d", rr.Code)
	}
}

func TestInsightsAndBudget(t *testing.T) {
	srv := newTestServer(t, Options{})
	do(t, srv, http.MethodPost, "/api/expenses", `{"date":"2025-10-02","description":"Electricity bill","amount":900}`)

	rr := do(t, srv, http.MethodGet, "/api/insights?currency=usd&top=3", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("insights status=%d body=%s", rr.Code, rr.Body.String())
	}
	a := decode(t, rr)["analytics"].(map[string]any)
	if a["currency"] != "USD" {
		t.Errorf("currency = %v", a["currency"])
	}

	for _, target := range []string{"/api/insights?top=abc", "/api/insights?top=0", "/api/insights?currency=XYZ"} {
		if rr := do(t, srv, http.MethodGet, target, ""); rr.Code != http.StatusBadRequest {
			t.Errorf("%s status=%d", target, rr.Code)
		}
	}

	rr = do(t, srv, http.MethodPut, "/api/budget", `{"budget":1000,"enabled":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("budget status=%d body=%s", rr.Code, rr.Body.String())
	}
	b := decode(t, rr)["budget"].(map[string]any)
	if b["level"] != "critical" || b["percentage"] != float64(90) {
		t.Errorf("budget = %v", b)
	}

	rr = do(t, srv, http.MethodGet, "/api/budget", "")
	if decode(t, rr)["budget"].(map[string]any)["budget"] != float64(1000) {
		t.Errorf("budget not persisted: %s", rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/api/heatmap?year=2025&month=10", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("heatmap status=%d", rr.Code)
	}
	h := decode(t, rr)["heatmap"].(map[string]any)
	if h["total"] != float64(900) || len(h["days"].([]any)) != 31 {
		t.Errorf("heatmap = %v", h)
	}
	if rr := do(t, srv, http.MethodGet, "/api/heatmap?month=13", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("bad month status=%d", rr.Code)
	}
}

func TestConvertAndCatalogues(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/api/convert?amount=10&from=USD&to=USD", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	conv := decode(t, rr)["conversion"].(map[string]any)
	if conv["result"] != float64(10) || conv["rate"] != float64(1) {
		t.Errorf("conversion = %v", conv)
	}

	for _, target := range []string{"/api/convert?from=USD", "/api/convert?amount=x&from=USD", "/api/convert?amount=1&from=USD&to=XYZ", "/api/convert?amount=NaN&from=USD"} {
		if rr := do(t, srv, http.MethodGet, target, ""); rr.Code != http.StatusBadRequest {
			t.Errorf("%s status=%d", target, rr.Code)
		}
	}

	body := decode(t, do(t, srv, http.MethodGet, "/api/currencies", ""))
	if body["default"] != "INR" || len(body["currencies"].([]any)) == 0 {
		t.Errorf("currencies = %v", body)
	}
	cats := decode(t, do(t, srv, http.MethodGet, "/api/categories", ""))["categories"].([]any)
	if len(cats) != 10 || cats[0] != "Food & Dining" {
		t.Errorf("categories = %v", cats)
	}
}

func TestSplitAndChat(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodPost, "/api/split", `{"total":100,"participants":[{"name":"a"},{"name":"b"}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("split status=%d body=%s", rr.Code, rr.Body.String())
	}
	shares := decode(t, rr)["split"].(map[string]any)["shares"].([]any)
	if len(shares) != 2 || shares[0].(map[string]any)["amount"] != float64(50) {
		t.Errorf("shares = %v", shares)
	}

	rr = do(t, srv, http.MethodPost, "/api/split", `{"total":100,"method":"amount","participants":[{"name":"a","value":10}]}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("mismatched split status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/api/chat", `{"message":"how should I invest?"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("chat status=%d", rr.Code)
	}
	if body := decode(t, rr); body["source"] != "fallback" || body["reply"] == "" {
		t.Errorf("chat = %v", body)
	}

	if rr := do(t, srv, http.MethodPost, "/api/chat", `{"message":"  "}`); rr.Code != http.StatusBadRequest {
		t.Errorf("empty chat status=%d", rr.Code)
	}
}

func TestRateLimitAppliesToWrites(t *testing.T) {
	srv := newTestServer(t, Options{RateLimitPerMinute: 2})

	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodPost, "/api/split", `{"total":10,"participants":[{"name":"a"}]}`); rr.Code != http.StatusOK {
			t.Fatalf("request %d status=%d", i+1, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodPost, "/api/split", `{"total":10,"participants":[{"name":"a"}]}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Error("Retry-After missing")
	}

	// Reads are not limited
	if rr := do(t, srv, http.MethodGet, "/api/currencies", ""); rr.Code != http.StatusOK {
		t.Errorf("read status=%d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, Options{})
	if rr := do(t, srv, http.MethodPatch, "/api/expenses", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status=%d", rr.Code)
	}
}

func TestRecoverer(t *testing.T) {
	h := recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rr.Code)
	}
	if decode(t, rr)["error"] != "Internal server error" {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := userID(req); got != "default" {
		t.Errorf("userID() = %q", got)
	}
	req.Header.Set(HeaderUserID, "  bob\x00 ")
	if got := userID(req); got != "bob" {
		t.Errorf("userID() = %q", got)
	}
	req.Header.Set(HeaderUserID, strings.Repeat("u", 300))
	if got := userID(req); len(got) != maxUserIDLen {
		t.Errorf("userID() length = %d", len(got))
	}
}
