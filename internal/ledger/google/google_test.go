package google

import (
	"context"
	"testing"
)

func TestRowsFromValues(t *testing.T) {
	values := [][]any{
		{"2026-03-03 09:15:00", "Food", "1000", "lunch"},
		{"2026-03-04 10:00:00", "  Food ", 500}, // short row, numeric cell
		{},
	}
	rows := rowsFromValues(values)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Note != "lunch" || rows[0].Amount != "1000" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
	// Cells stay verbatim; padding fills missing trailing columns.
	if rows[1].Category != "  Food " || rows[1].Amount != "500" || rows[1].Note != "" {
		t.Fatalf("unexpected row: %+v", rows[1])
	}
	if rows[2].Timestamp != "" {
		t.Fatalf("expected empty padded row, got %+v", rows[2])
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without spreadsheet ID")
	}
}
