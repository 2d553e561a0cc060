// Package memory is the in-memory record store used for tests and local
// development. It mirrors the sheet layout: raw string rows plus a two-column
// settings table.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"kakeibo/internal/core"
	"kakeibo/internal/ledger"
)

type Store struct {
	mu       sync.Mutex
	rows     []core.Row
	settings map[string]string
}

// Ensure interface conformance
var (
	_ ledger.EntryAppender  = (*Store)(nil)
	_ ledger.RowReader      = (*Store)(nil)
	_ ledger.SettingsReader = (*Store)(nil)
)

func New() *Store {
	return &Store{settings: make(map[string]string)}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (s *Store) AppendEntry(_ context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, core.Row{
		Timestamp: e.Timestamp.Format(core.TimestampLayout),
		Category:  e.Category,
		Amount:    e.Amount.DecimalString(),
		Note:      e.Note,
	})
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// SeedRow appends a raw row verbatim, malformed cells included. Tests use it
// to simulate out-of-band sheet edits.
func (s *Store) SeedRow(r core.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, r)
}

func (s *Store) ReadAllRows(_ context.Context) ([]core.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Row(nil), s.rows...), nil
}

// SetSetting stores a settings key/value pair.
func (s *Store) SetSetting(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[strings.TrimSpace(key)] = value
}

func (s *Store) Lookup(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.settings[strings.TrimSpace(key)]
	if !ok {
		return "", false, nil
	}
	return strings.ToUpper(strings.TrimSpace(v)), true, nil
}
