package ledger

import (
	"context"

	"kakeibo/internal/core"
)

// Ports for outbound record-store adapters.
type (
	// EntryAppender appends one entry to the append-only tabular store.
	EntryAppender interface {
		AppendEntry(ctx context.Context, e core.Entry) (rowRef string, err error)
	}

	// RowReader returns every stored row beyond the header, raw. Aggregation
	// does its own parse-and-skip pass over the result.
	RowReader interface {
		ReadAllRows(ctx context.Context) ([]core.Row, error)
	}

	// SettingsReader looks a key up in the settings table. Keys are matched
	// after trimming, values come back trimmed and uppercased, and ok reports
	// whether the key exists. Lookups are never cached; every call re-reads
	// the store.
	SettingsReader interface {
		Lookup(ctx context.Context, key string) (value string, ok bool, err error)
	}
)
