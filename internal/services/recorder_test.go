package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"kakeibo/internal/core"
	ledgermem "kakeibo/internal/ledger/memory"
	notifymem "kakeibo/internal/notify/memory"
)

type failingAppender struct{ err error }

func (f failingAppender) AppendEntry(context.Context, core.Entry) (string, error) {
	return "", f.err
}

type capturingPublisher struct {
	ids []int64
	err error
}

func (p *capturingPublisher) PublishEntrySync(_ context.Context, id int64) error {
	if p.err != nil {
		return p.err
	}
	p.ids = append(p.ids, id)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRecordComposesTimestamp(t *testing.T) {
	store := ledgermem.New()
	rec := NewRecorder(store, nil, nil)
	rec.now = fixedClock(time.Date(2026, 3, 20, 14, 35, 7, 0, time.UTC))

	res := rec.Record(context.Background(), EntryForm{
		Date:   "2026-03-03",
		Item:   "Food",
		Amount: "1000",
		Memo:   "groceries",
	})
	if res.Status != StatusRecorded {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Message != "Food 1,000円 recorded." {
		t.Fatalf("unexpected message: %q", res.Message)
	}

	rows, _ := store.ReadAllRows(context.Background())
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	// Date from the form, time of day from the clock.
	if rows[0].Timestamp != "2026-03-03 14:35:07" {
		t.Fatalf("unexpected timestamp: %q", rows[0].Timestamp)
	}
	if rows[0].Note != "groceries" {
		t.Fatalf("unexpected note: %q", rows[0].Note)
	}
}

func TestRecordAcceptsNegativeAmount(t *testing.T) {
	store := ledgermem.New()
	rec := NewRecorder(store, nil, nil)

	res := rec.Record(context.Background(), EntryForm{Date: "2026-03-03", Item: "Food", Amount: "-100"})
	if res.Status != StatusRecorded {
		t.Fatalf("negative amounts go into storage: %+v", res)
	}
	rows, _ := store.ReadAllRows(context.Background())
	if rows[0].Amount != "-100" {
		t.Fatalf("unexpected stored amount: %q", rows[0].Amount)
	}
}

func TestRecordInvalidInput(t *testing.T) {
	rec := NewRecorder(ledgermem.New(), nil, nil)
	cases := []EntryForm{
		{Date: "not-a-date", Item: "Food", Amount: "100"},
		{Date: "2026-03-03", Item: "Food", Amount: "abc"},
		{Date: "2026-03-03", Item: "  ", Amount: "100"},
	}
	for i, form := range cases {
		res := rec.Record(context.Background(), form)
		if res.Status != StatusFailed {
			t.Fatalf("case %d expected failure, got %+v", i, res)
		}
		if !strings.Contains(res.Message, "could not record entry") {
			t.Fatalf("case %d unexpected message: %q", i, res.Message)
		}
	}
}

func TestRecordStoreFailure(t *testing.T) {
	rec := NewRecorder(failingAppender{err: errors.New("sheet missing")}, nil, nil)
	res := rec.Record(context.Background(), EntryForm{Date: "2026-03-03", Item: "Food", Amount: "100"})
	if res.Status != StatusFailed || !strings.Contains(res.Message, "sheet missing") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRecordIncomeTriggersReport(t *testing.T) {
	store := ledgermem.New()
	notifier := notifymem.New()
	rep := NewReporter(NewSummarizer(store), notifier, store, "me@example.com", "")
	rec := NewRecorder(store, rep, nil)

	today := time.Now().Format(core.EntryDateLayout)
	res := rec.Record(context.Background(), EntryForm{Date: today, Item: "Income", Amount: "5000"})
	if res.Status != StatusRecordedReportSent {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.Contains(res.Message, "Income 5,000円 recorded.") ||
		!strings.Contains(res.Message, "Monthly report sent.") {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	if len(notifier.Sent()) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.Sent()))
	}
}

func TestRecordLowercaseIncomeIsExpense(t *testing.T) {
	store := ledgermem.New()
	notifier := notifymem.New()
	rep := NewReporter(NewSummarizer(store), notifier, nil, "me@example.com", "")
	rec := NewRecorder(store, rep, nil)

	res := rec.Record(context.Background(), EntryForm{Date: "2026-03-03", Item: "income", Amount: "100"})
	if res.Status != StatusRecorded {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(notifier.Sent()) != 0 {
		t.Fatal("lowercase income must not trigger a report")
	}
}

func TestRecordIncomeReportFailure(t *testing.T) {
	store := ledgermem.New()
	notifier := notifymem.New()
	notifier.Fail = errors.New("mail down")
	rep := NewReporter(NewSummarizer(store), notifier, nil, "me@example.com", "")
	rec := NewRecorder(store, rep, nil)

	today := time.Now().Format(core.EntryDateLayout)
	res := rec.Record(context.Background(), EntryForm{Date: today, Item: "Income", Amount: "5000"})
	if res.Status != StatusRecordedReportFailed {
		t.Fatalf("unexpected result: %+v", res)
	}
	// The entry is recorded; the message must not claim the report went out.
	if !strings.Contains(res.Message, "could not be sent") {
		t.Fatalf("unexpected message: %q", res.Message)
	}
	rows, _ := store.ReadAllRows(context.Background())
	if len(rows) != 1 {
		t.Fatalf("entry must stay recorded, got %d rows", len(rows))
	}
}

func TestRecordIncomeReportDisabled(t *testing.T) {
	store := ledgermem.New()
	store.SetSetting("REPORT_ENABLED", "off")
	notifier := notifymem.New()
	rep := NewReporter(NewSummarizer(store), notifier, store, "me@example.com", "")
	rec := NewRecorder(store, rep, nil)

	today := time.Now().Format(core.EntryDateLayout)
	res := rec.Record(context.Background(), EntryForm{Date: today, Item: "Income", Amount: "5000"})
	if res.Status != StatusRecorded {
		t.Fatalf("unexpected result: %+v", res)
	}
	if strings.Contains(res.Message, "report") {
		t.Fatalf("message must not mention a report: %q", res.Message)
	}
	if len(notifier.Sent()) != 0 {
		t.Fatal("nothing should be dispatched when disabled")
	}
}

func TestRecordPublishesSyncForNumericRefs(t *testing.T) {
	pub := &capturingPublisher{}
	rec := NewRecorder(numericRefAppender{}, nil, pub)

	res := rec.Record(context.Background(), EntryForm{Date: "2026-03-03", Item: "Food", Amount: "100"})
	if res.Status != StatusRecorded {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(pub.ids) != 1 || pub.ids[0] != 42 {
		t.Fatalf("expected sync publish for id 42, got %v", pub.ids)
	}
}

func TestRecordPublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &capturingPublisher{err: errors.New("broker down")}
	rec := NewRecorder(numericRefAppender{}, nil, pub)

	res := rec.Record(context.Background(), EntryForm{Date: "2026-03-03", Item: "Food", Amount: "100"})
	if res.Status != StatusRecorded {
		t.Fatalf("publish failures must not fail the request: %+v", res)
	}
}

type numericRefAppender struct{}

func (numericRefAppender) AppendEntry(context.Context, core.Entry) (string, error) {
	return "42", nil
}
