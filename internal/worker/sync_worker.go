// Package worker mirrors locally recorded entries to the spreadsheet. It is
// driven by the AMQP sync queue, with a periodic sweep catching anything the
// queue missed.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"kakeibo/internal/amqp"
	"kakeibo/internal/ledger"
	"kakeibo/internal/storage"
)

// syncConcurrency bounds parallel sheet appends per sweep; the Sheets API
// throttles aggressively beyond a few concurrent writes.
const syncConcurrency = 4

type SyncWorker struct {
	local     *storage.SQLiteStore
	remote    ledger.EntryAppender
	batchSize int
}

func NewSyncWorker(local *storage.SQLiteStore, remote ledger.EntryAppender, batchSize int) *SyncWorker {
	return &SyncWorker{
		local:     local,
		remote:    remote,
		batchSize: batchSize,
	}
}

// HandleSyncMessage mirrors the single entry named by a queue message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing entry sync message", "id", msg.ID)
	return w.syncOne(ctx, msg.ID)
}

// ProcessPending sweeps entries the queue missed (crashes, broker downtime)
// and mirrors them with bounded parallelism.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	ids, err := w.local.ListPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending entries: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	slog.InfoContext(ctx, "Mirroring pending entries", "count", len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(syncConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := w.syncOne(ctx, id); err != nil {
				slog.ErrorContext(ctx, "Entry mirror failed", "id", id, "error", err)
				// Keep the sweep going; the entry stays pending.
			}
			return nil
		})
	}
	return g.Wait()
}

func (w *SyncWorker) syncOne(ctx context.Context, id int64) error {
	e, err := w.local.GetEntry(ctx, id)
	if err != nil {
		return fmt.Errorf("load entry %d: %w", id, err)
	}

	ref, err := w.remote.AppendEntry(ctx, e)
	if err != nil {
		if markErr := w.local.MarkSyncError(ctx, id); markErr != nil {
			slog.WarnContext(ctx, "Failed to flag sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append entry %d to sheet: %w", id, err)
	}

	if err := w.local.MarkSynced(ctx, id); err != nil {
		return fmt.Errorf("mark entry %d synced: %w", id, err)
	}
	slog.InfoContext(ctx, "Entry mirrored to sheet", "id", id, "ref", ref)
	return nil
}
