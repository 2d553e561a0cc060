package core

import (
	"errors"
	"strings"
	"time"
)

// IncomeCategory is the reserved category label that routes an entry to
// income accounting. The match is exact: "income" or "INCOME" are ordinary
// expense categories.
const IncomeCategory = "Income"

// EntryDateLayout is the calendar-date format accepted from the form.
const EntryDateLayout = "2006-01-02"

// TimestampLayout is the format adapters use when writing timestamps to the
// record store.
const TimestampLayout = "2006-01-02 15:04:05"

type (
	// Entry is one ledger row: when it happened, what it was, how much, and
	// an optional note. Amounts are stored in minor units (see Money) and may
	// be non-positive in storage; aggregation ignores those.
	Entry struct {
		Timestamp time.Time
		Category  string
		Amount    Money
		Note      string
	}

	// Money is an amount in minor currency units to keep arithmetic exact.
	Money struct {
		Cents int64
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
)

func (e Entry) Validate() error {
	if e.Timestamp.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// IsIncome reports whether the entry carries the reserved income label.
func (e Entry) IsIncome() bool {
	return e.Category == IncomeCategory
}

// ParseEntryDate parses a date-only form value ("2026-03-15") as UTC midnight.
func ParseEntryDate(s string) (time.Time, error) {
	t, err := time.Parse(EntryDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ComposeTimestamp builds the stored timestamp for a new entry: calendar date
// from the submitted day, clock time from the moment of recording. Backdated
// entries keep the time of day they were entered, which preserves same-day
// ordering.
func ComposeTimestamp(day time.Time, now time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		now.Hour(), now.Minute(), now.Second(), 0, now.Location())
}
