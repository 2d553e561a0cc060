// Package services wires the core ledger logic to the outbound ports:
// recording entries, summarizing months, and dispatching reports.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kakeibo/internal/core"
	"kakeibo/internal/ledger"
)

// Summarizer computes monthly summaries from a full scan of the record
// store. It holds no state between calls; every summary re-reads the store.
type Summarizer struct {
	store ledger.RowReader
}

func NewSummarizer(store ledger.RowReader) *Summarizer {
	return &Summarizer{store: store}
}

// Summarize aggregates the given calendar month. A zero year or month
// defaults to the current one at call time.
func (s *Summarizer) Summarize(ctx context.Context, year, month int) (core.MonthlySummary, error) {
	now := time.Now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return core.MonthlySummary{}, fmt.Errorf("invalid month: %d", month)
	}

	rows, err := s.store.ReadAllRows(ctx)
	if err != nil {
		return core.MonthlySummary{}, fmt.Errorf("read ledger rows: %w", err)
	}

	summary := core.SummarizeRows(rows, year, time.Month(month))
	slog.DebugContext(ctx, "Month summarized",
		"year", year,
		"month", month,
		"rows_scanned", len(rows),
		"total_income_cents", summary.TotalIncome.Cents,
		"total_expense_cents", summary.TotalExpense.Cents)
	return summary, nil
}
