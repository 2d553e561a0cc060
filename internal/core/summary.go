package core

import (
	"math"
	"strings"
	"time"
)

type (
	// CategoryShare is one expense category's slice of a month.
	CategoryShare struct {
		Amount     Money
		Percentage float64 // share of the month's total expense, one decimal
	}

	// MonthlySummary is the derived month view: income vs expense totals and
	// the per-category expense breakdown. It is rebuilt from a full scan on
	// every call and never persisted.
	MonthlySummary struct {
		Year         int
		Month        int // 1-12
		TotalIncome  Money
		TotalExpense Money
		Breakdown    map[string]CategoryShare
	}
)

// NetBalance is total income minus total expense; negative means deficit.
func (s MonthlySummary) NetBalance() Money {
	return Money{Cents: s.TotalIncome.Cents - s.TotalExpense.Cents}
}

// SummarizeRows folds raw store rows into the summary for one calendar month.
//
// Per row: rows that do not parse as entries are skipped silently, as are
// non-positive amounts and rows outside the target month. The reserved income
// label (exact match) accrues to TotalIncome; everything else to TotalExpense.
// Category names are trimmed before breakdown accumulation; entries whose
// trimmed category is empty count toward TotalExpense but get no breakdown
// line. The breakdown stays empty whenever TotalExpense is zero, so the
// percentage division never sees a zero denominator.
func SummarizeRows(rows []Row, year int, month time.Month) MonthlySummary {
	s := MonthlySummary{
		Year:      year,
		Month:     int(month),
		Breakdown: make(map[string]CategoryShare),
	}

	categoryTotals := make(map[string]int64)
	for _, row := range rows {
		e, err := ParseRow(row)
		if err != nil {
			continue
		}
		if e.Amount.Cents <= 0 {
			continue
		}
		if e.Timestamp.Year() != year || e.Timestamp.Month() != month {
			continue
		}

		if e.IsIncome() {
			s.TotalIncome.Cents += e.Amount.Cents
			continue
		}
		s.TotalExpense.Cents += e.Amount.Cents
		if name := strings.TrimSpace(e.Category); name != "" {
			categoryTotals[name] += e.Amount.Cents
		}
	}

	if s.TotalExpense.Cents > 0 {
		for name, cents := range categoryTotals {
			pct := float64(cents) / float64(s.TotalExpense.Cents) * 100
			s.Breakdown[name] = CategoryShare{
				Amount:     Money{Cents: cents},
				Percentage: math.Round(pct*10) / 10,
			}
		}
	}
	return s
}
