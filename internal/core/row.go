package core

import (
	"errors"
	"strings"
	"time"
)

// Row is one raw record-store row before any interpretation: four string
// cells (timestamp, category, amount, note). The store is append-only and
// user-editable out of band, so any cell can hold garbage.
type Row struct {
	Timestamp string
	Category  string
	Amount    string
	Note      string
}

var ErrUnusableRow = errors.New("row is not a usable ledger entry")

// rowTimestampLayouts lists the formats adapters are known to produce.
var rowTimestampLayouts = []string{
	TimestampLayout,
	time.RFC3339,
	EntryDateLayout,
}

// ParseRow converts a raw row into a typed Entry. An error means the row is
// not a usable ledger entry (leftover header, manual edit, bad cell) and is
// skipped by aggregation rather than reported. Categories are kept verbatim;
// an empty category is still a countable entry, it just never reaches the
// breakdown.
func ParseRow(r Row) (Entry, error) {
	ts, err := parseRowTimestamp(r.Timestamp)
	if err != nil {
		return Entry{}, err
	}
	cents, err := ParseAmountToCents(r.Amount)
	if err != nil {
		return Entry{}, ErrUnusableRow
	}
	return Entry{
		Timestamp: ts,
		Category:  r.Category,
		Amount:    Money{Cents: cents},
		Note:      r.Note,
	}, nil
}

func parseRowTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrUnusableRow
	}
	for _, layout := range rowTimestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrUnusableRow
}
