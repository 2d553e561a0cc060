package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"kakeibo/internal/core"
	"kakeibo/internal/ledger"
)

// EntryForm is one inbound form submission.
type EntryForm struct {
	Date   string // calendar date, "2026-03-15"
	Item   string // category label, stored verbatim
	Amount string // decimal amount
	Memo   string
}

// RecordStatus classifies the outcome of a Record call. The recording and the
// post-income report are reported separately, so a failed report never claims
// the notification went out.
type RecordStatus string

const (
	StatusRecorded             RecordStatus = "recorded"
	StatusRecordedReportSent   RecordStatus = "recorded_report_sent"
	StatusRecordedReportFailed RecordStatus = "recorded_report_failed"
	StatusFailed               RecordStatus = "failed"
)

// RecordResult is the value every Record call returns; no error escapes.
type RecordResult struct {
	Status  RecordStatus
	Message string
}

// SyncPublisher announces a locally stored entry for asynchronous mirroring
// to the spreadsheet. The AMQP client implements it.
type SyncPublisher interface {
	PublishEntrySync(ctx context.Context, id int64) error
}

// Recorder validates and stores incoming form submissions, and triggers the
// monthly report when an income entry lands.
type Recorder struct {
	store     ledger.EntryAppender
	reporter  *Reporter     // optional
	publisher SyncPublisher // optional, set for the local-store backend
	now       func() time.Time
}

func NewRecorder(store ledger.EntryAppender, reporter *Reporter, publisher SyncPublisher) *Recorder {
	return &Recorder{
		store:     store,
		reporter:  reporter,
		publisher: publisher,
		now:       time.Now,
	}
}

// Record converts the form into a ledger row and appends it. The stored
// timestamp takes its date from the form and its time of day from the moment
// of recording. Failures come back as a descriptive result, never as an
// error.
func (r *Recorder) Record(ctx context.Context, form EntryForm) RecordResult {
	day, err := core.ParseEntryDate(form.Date)
	if err != nil {
		return RecordResult{StatusFailed, fmt.Sprintf("could not record entry: invalid date %q", form.Date)}
	}
	cents, err := core.ParseAmountToCents(form.Amount)
	if err != nil {
		return RecordResult{StatusFailed, fmt.Sprintf("could not record entry: invalid amount %q", form.Amount)}
	}

	e := core.Entry{
		Timestamp: core.ComposeTimestamp(day, r.now()),
		Category:  form.Item,
		Amount:    core.Money{Cents: cents},
		Note:      form.Memo,
	}
	if err := e.Validate(); err != nil {
		return RecordResult{StatusFailed, fmt.Sprintf("could not record entry: %v", err)}
	}

	ref, err := r.store.AppendEntry(ctx, e)
	if err != nil {
		slog.ErrorContext(ctx, "Entry append failed", "error", err, "category", e.Category)
		return RecordResult{StatusFailed, fmt.Sprintf("could not record entry: %v", err)}
	}
	slog.InfoContext(ctx, "Entry recorded",
		"ref", ref,
		"category", e.Category,
		"amount_cents", e.Amount.Cents)

	r.publishSync(ctx, ref)

	recorded := fmt.Sprintf("%s %s円 recorded.", e.Category, e.Amount.Format())
	if !e.IsIncome() || r.reporter == nil {
		return RecordResult{StatusRecorded, recorded}
	}

	sent, err := r.reporter.SendMonthlyReport(ctx)
	switch {
	case err != nil:
		return RecordResult{StatusRecordedReportFailed, recorded + " The monthly report could not be sent."}
	case !sent:
		return RecordResult{StatusRecorded, recorded}
	default:
		return RecordResult{StatusRecordedReportSent, recorded + " Monthly report sent."}
	}
}

// publishSync hands the entry to the sync queue when one is configured. A
// publish failure only loses the mirror copy, so it is logged and swallowed.
func (r *Recorder) publishSync(ctx context.Context, ref string) {
	if r.publisher == nil {
		return
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		// Non-numeric refs come from remote backends that need no mirroring.
		return
	}
	if err := r.publisher.PublishEntrySync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entry sync message", "id", id, "error", err)
	}
}
