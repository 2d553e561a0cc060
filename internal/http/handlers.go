package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"kakeibo/internal/log"
	"kakeibo/internal/services"
)

// handleRecordEntry accepts a form submission and replies with the recorder's
// prose message. The message is the whole contract: recording failures are
// reported inside it, not through the status code.
func (s *Server) handleRecordEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Parse form error",
			log.FieldError, err, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("could not read form data"))
		return
	}

	form := services.EntryForm{
		Date:   strings.TrimSpace(r.Form.Get("date")),
		Item:   strings.TrimSpace(r.Form.Get("item")),
		Amount: strings.TrimSpace(r.Form.Get("amount")),
		Memo:   r.Form.Get("memo"),
	}

	result := s.recorder.Record(r.Context(), form)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result.Message))
}

type categoryShareJSON struct {
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type summaryResponse struct {
	Year         int                          `json:"year"`
	Month        int                          `json:"month"`
	TotalIncome  float64                      `json:"totalIncome"`
	TotalExpense float64                      `json:"totalExpense"`
	NetBalance   float64                      `json:"netBalance"`
	Breakdown    map[string]categoryShareJSON `json:"breakdown"`
	Error        *string                      `json:"error"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleSummary serves the monthly aggregate as JSON. Without query
// parameters it covers the current month.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	year, month, err := parsePeriod(r.URL.Query().Get("year"), r.URL.Query().Get("month"))
	if err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	summary, err := s.summarizer.Summarize(r.Context(), year, month)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Summary failed",
			log.FieldError, err, log.FieldYear, year, log.FieldMonth, month)
		writeJSON(r.Context(), w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	resp := summaryResponse{
		Year:         summary.Year,
		Month:        summary.Month,
		TotalIncome:  summary.TotalIncome.Units(),
		TotalExpense: summary.TotalExpense.Units(),
		NetBalance:   summary.NetBalance().Units(),
		Breakdown:    make(map[string]categoryShareJSON, len(summary.Breakdown)),
	}
	for name, share := range summary.Breakdown {
		resp.Breakdown[name] = categoryShareJSON{
			Amount:     share.Amount.Units(),
			Percentage: share.Percentage,
		}
	}

	writeJSON(r.Context(), w, http.StatusOK, resp)
}

// parsePeriod turns optional year/month query values into a concrete period.
// Both absent means "current month" (zero values for the summarizer).
func parsePeriod(yearStr, monthStr string) (int, int, error) {
	if yearStr == "" && monthStr == "" {
		return 0, 0, nil
	}
	if yearStr == "" || monthStr == "" {
		return 0, 0, errInvalidPeriod
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1 {
		return 0, 0, errInvalidPeriod
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errInvalidPeriod
	}
	return year, month, nil
}

var errInvalidPeriod = errors.New("year and month must both be given as numbers, month between 1 and 12")

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed encoding JSON response", log.FieldError, err)
	}
}
