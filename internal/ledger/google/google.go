package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"kakeibo/internal/core"
	"kakeibo/internal/ledger"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config identifies the spreadsheet and the two sheets this client touches.
type Config struct {
	SpreadsheetID string
	LedgerSheet   string // default "Ledger"
	SettingsSheet string // default "Settings"
}

// Client talks to the Google Sheets record store. The ledger sheet holds one
// header row followed by (timestamp, category, amount, note) rows; the
// settings sheet is a two-column key/value table.
type Client struct {
	svc *gsheet.Service
	cfg Config
}

// Ensure interface conformance
var (
	_ ledger.EntryAppender  = (*Client)(nil)
	_ ledger.RowReader      = (*Client)(nil)
	_ ledger.SettingsReader = (*Client)(nil)
)

// New creates a Sheets client. Credentials come from the environment:
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if cfg.LedgerSheet == "" {
		cfg.LedgerSheet = "Ledger"
	}
	if cfg.SettingsSheet == "" {
		cfg.SettingsSheet = "Settings"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, cfg: cfg}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendEntry appends one row after the current table.
func (c *Client) AppendEntry(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:D", c.cfg.LedgerSheet)
	vr := &gsheet.ValueRange{Values: [][]any{{
		e.Timestamp.Format(core.TimestampLayout),
		e.Category,
		e.Amount.DecimalString(),
		e.Note,
	}}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.cfg.SpreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.cfg.LedgerSheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Entry appended to sheet",
		"sheet", c.cfg.LedgerSheet, "ref", ref, "category", e.Category)
	return ref, nil
}

// ReadAllRows reads every data row past the single header row.
func (c *Client) ReadAllRows(ctx context.Context) ([]core.Row, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A2:D", c.cfg.LedgerSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.cfg.SpreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return rowsFromValues(resp.Values), nil
}

// Lookup scans the settings sheet for a trimmed-key exact match.
func (c *Client) Lookup(ctx context.Context, key string) (string, bool, error) {
	if c.svc == nil {
		return "", false, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:B", c.cfg.SettingsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.cfg.SpreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", rng, err)
	}

	want := strings.TrimSpace(key)
	for _, raw := range resp.Values {
		cols := toStrings(raw)
		if len(cols) < 2 {
			continue
		}
		if cols[0] == want {
			return strings.ToUpper(cols[1]), true, nil
		}
	}
	return "", false, nil
}

// rowsFromValues converts a Sheets values matrix into raw ledger rows,
// padding missing trailing cells. Cells are kept verbatim: no parsing and no
// trimming here, since the reserved income label matches exactly and the
// aggregator does its own trimming.
func rowsFromValues(values [][]any) []core.Row {
	rows := make([]core.Row, 0, len(values))
	for _, raw := range values {
		cols := make([]string, len(raw))
		for i, v := range raw {
			cols[i] = fmt.Sprint(v)
		}
		for len(cols) < 4 {
			cols = append(cols, "")
		}
		rows = append(rows, core.Row{
			Timestamp: cols[0],
			Category:  cols[1],
			Amount:    cols[2],
			Note:      cols[3],
		})
	}
	return rows
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
