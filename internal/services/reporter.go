package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"kakeibo/internal/core"
	"kakeibo/internal/ledger"
	"kakeibo/internal/notify"
)

// reportEnabledKey gates the income-triggered report. Absent or any value
// other than the off-words below keeps reporting on, so a ledger without a
// settings sheet behaves like the setting does not exist.
const reportEnabledKey = "REPORT_ENABLED"

const reportSubject = "Income recorded - monthly balance report"

const noExpensesLine = "No expenses recorded this month."

// Reporter turns the current month's summary into a plain-text notification.
type Reporter struct {
	summaries *Summarizer
	notifier  notify.Notifier
	settings  ledger.SettingsReader // optional
	recipient string
	ledgerURL string // optional footer link to the spreadsheet
}

func NewReporter(summaries *Summarizer, notifier notify.Notifier, settings ledger.SettingsReader, recipient, ledgerURL string) *Reporter {
	return &Reporter{
		summaries: summaries,
		notifier:  notifier,
		settings:  settings,
		recipient: recipient,
		ledgerURL: ledgerURL,
	}
}

// SendMonthlyReport summarizes the current month (never a historical one) and
// dispatches exactly one notification. sent=false with a nil error means
// reporting is disabled via settings. On aggregation failure nothing is
// dispatched.
func (r *Reporter) SendMonthlyReport(ctx context.Context) (sent bool, err error) {
	if !r.enabled(ctx) {
		slog.InfoContext(ctx, "Monthly report disabled via settings", "key", reportEnabledKey)
		return false, nil
	}

	summary, err := r.summaries.Summarize(ctx, 0, 0)
	if err != nil {
		slog.ErrorContext(ctx, "Monthly report aggregation failed", "error", err)
		return false, fmt.Errorf("summarize current month: %w", err)
	}

	msg := notify.Message{
		Recipient: r.recipient,
		Subject:   reportSubject,
		Body:      buildReportBody(summary, r.ledgerURL),
	}
	if err := r.notifier.Send(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Monthly report dispatch failed", "error", err, "recipient", r.recipient)
		return false, fmt.Errorf("dispatch monthly report: %w", err)
	}

	slog.InfoContext(ctx, "Monthly report sent",
		"recipient", r.recipient,
		"year", summary.Year,
		"month", summary.Month)
	return true, nil
}

func (r *Reporter) enabled(ctx context.Context) bool {
	if r.settings == nil {
		return true
	}
	v, ok, err := r.settings.Lookup(ctx, reportEnabledKey)
	if err != nil {
		// A broken settings table must not block reporting.
		slog.WarnContext(ctx, "Settings lookup failed, reporting stays enabled",
			"key", reportEnabledKey, "error", err)
		return true
	}
	if !ok {
		return true
	}
	switch v {
	case "FALSE", "OFF", "NO", "0":
		return false
	}
	return true
}

// buildReportBody renders the notification text: totals, signed net balance
// labeled surplus or deficit, and one line per breakdown category.
func buildReportBody(s core.MonthlySummary, ledgerURL string) string {
	net := s.NetBalance()
	label := "(surplus)"
	if net.Cents < 0 {
		label = "(deficit)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "An income entry was recorded. Here is the balance for %d-%02d so far.\n\n", s.Year, s.Month)
	fmt.Fprintf(&b, "- Total income: %s円\n", s.TotalIncome.Format())
	fmt.Fprintf(&b, "- Total expense: %s円\n", s.TotalExpense.Format())
	fmt.Fprintf(&b, "- Net balance: %s円 %s\n", net.Format(), label)
	b.WriteString("\n---\nExpense breakdown by category:\n")
	b.WriteString(breakdownText(s.Breakdown))
	b.WriteString("\n---\n")
	if ledgerURL != "" {
		fmt.Fprintf(&b, "\nSee the full ledger:\n%s\n", ledgerURL)
	}
	return b.String()
}

func breakdownText(breakdown map[string]core.CategoryShare) string {
	if len(breakdown) == 0 {
		return noExpensesLine + "\n"
	}
	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		share := breakdown[name]
		fmt.Fprintf(&b, "%s: %s円 (%s%%)\n",
			name,
			share.Amount.Format(),
			strconv.FormatFloat(share.Percentage, 'f', 1, 64))
	}
	return b.String()
}
