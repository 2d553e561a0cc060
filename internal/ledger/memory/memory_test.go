package memory

import (
	"context"
	"testing"
	"time"

	"kakeibo/internal/core"
)

func TestStoreAppendAndRead(t *testing.T) {
	s := New()
	ref, err := s.AppendEntry(context.Background(), core.Entry{
		Timestamp: time.Date(2026, 3, 3, 9, 15, 0, 0, time.UTC),
		Category:  "Food",
		Amount:    core.Money{Cents: 100000},
		Note:      "lunch",
	})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	rows, err := s.ReadAllRows(context.Background())
	if err != nil || len(rows) != 1 {
		t.Fatalf("unexpected rows: %v err=%v", rows, err)
	}
	if rows[0].Timestamp != "2026-03-03 09:15:00" || rows[0].Amount != "1000" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}

	// Appended rows must parse back into entries.
	e, err := core.ParseRow(rows[0])
	if err != nil {
		t.Fatalf("row should round-trip: %v", err)
	}
	if e.Category != "Food" || e.Amount.Cents != 100000 || e.Note != "lunch" {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestStoreRejectsInvalidEntry(t *testing.T) {
	s := New()
	_, err := s.AppendEntry(context.Background(), core.Entry{Category: "Food"})
	if err == nil {
		t.Fatal("expected validation error for zero timestamp")
	}
}

func TestStoreSettings(t *testing.T) {
	s := New()
	if _, ok, err := s.Lookup(context.Background(), "REPORT_ENABLED"); ok || err != nil {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	s.SetSetting(" REPORT_ENABLED ", " false ")
	v, ok, err := s.Lookup(context.Background(), "REPORT_ENABLED")
	if err != nil || !ok || v != "FALSE" {
		t.Fatalf("expected FALSE, got %q ok=%v err=%v", v, ok, err)
	}
}
