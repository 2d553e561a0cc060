package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"kakeibo/internal/core"
	ledgermem "kakeibo/internal/ledger/memory"
	"kakeibo/internal/services"
)

func newTestServer(t *testing.T) (*Server, *ledgermem.Store) {
	t.Helper()
	store := ledgermem.New()
	recorder := services.NewRecorder(store, nil, nil)
	summarizer := services.NewSummarizer(store)
	return NewServer(":0", recorder, summarizer, nil), store
}

func postForm(t *testing.T, s *Server, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.rateLimiter.stop()

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}

func TestRecordEntrySuccess(t *testing.T) {
	s, store := newTestServer(t)
	defer s.rateLimiter.stop()

	rec := postForm(t, s, url.Values{
		"date":   {"2026-03-15"},
		"item":   {"Food"},
		"amount": {"1200"},
		"memo":   {"groceries"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body, _ := io.ReadAll(rec.Body)
	if got := string(body); got != "Food 1,200円 recorded." {
		t.Errorf("body = %q, want %q", got, "Food 1,200円 recorded.")
	}

	rows, err := store.ReadAllRows(context.Background())
	if err != nil {
		t.Fatalf("ReadAllRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("stored rows = %d, want 1", len(rows))
	}
	if !strings.HasPrefix(rows[0].Timestamp, "2026-03-15 ") {
		t.Errorf("stored timestamp = %q, want date 2026-03-15 with the recording clock", rows[0].Timestamp)
	}
}

func TestRecordEntryInvalidAmountStillOK(t *testing.T) {
	s, store := newTestServer(t)
	defer s.rateLimiter.stop()

	rec := postForm(t, s, url.Values{
		"date":   {"2026-03-15"},
		"item":   {"Food"},
		"amount": {"abc"},
	})

	// Failures travel inside the message, not the status code.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "could not record entry") {
		t.Errorf("body = %q, want a recording failure message", string(body))
	}

	rows, _ := store.ReadAllRows(context.Background())
	if len(rows) != 0 {
		t.Errorf("stored rows = %d, want 0", len(rows))
	}
}

func TestRecordEntryRejectsGet(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.rateLimiter.stop()

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	s, store := newTestServer(t)
	defer s.rateLimiter.stop()

	store.SeedRow(core.Row{Timestamp: "2026-03-01 09:00:00", Category: "Food", Amount: "1000"})
	store.SeedRow(core.Row{Timestamp: "2026-03-02 09:00:00", Category: "Food", Amount: "500"})
	store.SeedRow(core.Row{Timestamp: "2026-03-03 09:00:00", Category: "Income", Amount: "5000"})
	store.SeedRow(core.Row{Timestamp: "2026-04-01 09:00:00", Category: "Food", Amount: "999"})

	req := httptest.NewRequest(http.MethodGet, "/summary?year=2026&month=3", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp summaryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Year != 2026 || resp.Month != 3 {
		t.Errorf("period = %d-%d, want 2026-3", resp.Year, resp.Month)
	}
	if resp.TotalIncome != 5000 {
		t.Errorf("totalIncome = %v, want 5000", resp.TotalIncome)
	}
	if resp.TotalExpense != 1500 {
		t.Errorf("totalExpense = %v, want 1500", resp.TotalExpense)
	}
	if resp.NetBalance != 3500 {
		t.Errorf("netBalance = %v, want 3500", resp.NetBalance)
	}
	food, ok := resp.Breakdown["Food"]
	if !ok {
		t.Fatalf("breakdown missing Food: %v", resp.Breakdown)
	}
	if food.Amount != 1500 || food.Percentage != 100.0 {
		t.Errorf("Food share = %+v, want amount 1500 at 100.0%%", food)
	}
}

func TestSummaryRejectsBadPeriod(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.rateLimiter.stop()

	for _, target := range []string{
		"/summary?year=2026",
		"/summary?month=13&year=2026",
		"/summary?year=abc&month=3",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want %d", target, rec.Code, http.StatusBadRequest)
		}
		var resp errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Errorf("GET %s: decode error body: %v", target, err)
			continue
		}
		if resp.Error == "" {
			t.Errorf("GET %s: error body is empty", target)
		}
	}
}

func TestRateLimitOnPost(t *testing.T) {
	s, _ := newTestServer(t)
	defer s.rateLimiter.stop()

	values := url.Values{
		"date":   {"2026-03-15"},
		"item":   {"Food"},
		"amount": {"100"},
	}
	var lastCode int
	for i := 0; i < 61; i++ {
		rec := postForm(t, s, values)
		lastCode = rec.Code
	}
	if lastCode != http.StatusTooManyRequests {
		t.Errorf("61st POST status = %d, want %d", lastCode, http.StatusTooManyRequests)
	}
}
