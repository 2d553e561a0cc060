// Package storage is the local SQLite record store. It implements the same
// ledger ports as the Google Sheets adapter, plus the pending-sync queries
// the mirror worker needs.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kakeibo/internal/core"
	"kakeibo/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

// Ensure interface conformance
var (
	_ ledger.EntryAppender  = (*SQLiteStore)(nil)
	_ ledger.RowReader      = (*SQLiteStore)(nil)
	_ ledger.SettingsReader = (*SQLiteStore)(nil)
)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single pooled connection serializes access
	// so parallel callers (the sync worker's sweep) queue instead of hitting
	// SQLITE_BUSY. The busy timeout covers the server and worker processes
	// sharing the same file.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// AppendEntry implements ledger.EntryAppender. The returned ref is the
// numeric row id, which the sync queue uses to mirror the entry later.
func (s *SQLiteStore) AppendEntry(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (recorded_at, category, amount_cents, note) VALUES (?, ?, ?, ?)`,
		e.Timestamp.Format(core.TimestampLayout), e.Category, e.Amount.Cents, e.Note)
	if err != nil {
		return "", fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("entry id: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", id,
		"category", e.Category,
		"amount_cents", e.Amount.Cents)
	return strconv.FormatInt(id, 10), nil
}

// ReadAllRows implements ledger.RowReader. Rows come back in insertion order,
// rendered to the same string shape the sheet adapter produces.
func (s *SQLiteStore) ReadAllRows(ctx context.Context) ([]core.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT recorded_at, category, amount_cents, note FROM entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	defer rows.Close()

	var out []core.Row
	for rows.Next() {
		var recordedAt, category, note string
		var cents int64
		if err := rows.Scan(&recordedAt, &category, &cents, &note); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, core.Row{
			Timestamp: recordedAt,
			Category:  category,
			Amount:    core.Money{Cents: cents}.DecimalString(),
			Note:      note,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}

// Lookup implements ledger.SettingsReader.
func (s *SQLiteStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE trim(key) = ?`, strings.TrimSpace(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select setting: %w", err)
	}
	return strings.ToUpper(strings.TrimSpace(value)), true, nil
}

// SetSetting inserts or replaces a settings key.
func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strings.TrimSpace(key), value)
	if err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}

// GetEntry retrieves a single entry by row id for the sync worker.
func (s *SQLiteStore) GetEntry(ctx context.Context, id int64) (core.Entry, error) {
	var recordedAt, category, note string
	var cents int64
	err := s.db.QueryRowContext(ctx,
		`SELECT recorded_at, category, amount_cents, note FROM entries WHERE id = ?`, id).
		Scan(&recordedAt, &category, &cents, &note)
	if err != nil {
		return core.Entry{}, fmt.Errorf("select entry %d: %w", id, err)
	}

	ts, err := time.Parse(core.TimestampLayout, recordedAt)
	if err != nil {
		return core.Entry{}, fmt.Errorf("parse recorded_at of entry %d: %w", id, err)
	}
	return core.Entry{
		Timestamp: ts,
		Category:  category,
		Amount:    core.Money{Cents: cents},
		Note:      note,
	}, nil
}

// ListPendingSync returns ids of entries not yet mirrored, oldest first.
func (s *SQLiteStore) ListPendingSync(ctx context.Context, limit int) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM entries WHERE synced = 0 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending entries: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkSynced marks an entry as successfully mirrored.
func (s *SQLiteStore) MarkSynced(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE entries SET synced = 1, sync_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	return nil
}

// MarkSyncError flags an entry whose mirror attempt failed; it stays pending.
func (s *SQLiteStore) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE entries SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	return nil
}
