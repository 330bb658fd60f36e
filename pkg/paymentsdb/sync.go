package paymentsdb

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/types"
)

// Fetcher pulls payment records from the node. It returns records whose
// update Seq is strictly greater than since.Seq (all records when since is
// nil), ascending by update index, at most limit of them.
type Fetcher interface {
	FetchPayments(ctx context.Context, since *types.PaymentUpdatedIndex, limit int) ([]types.BasicPayment, error)
}

// FetcherFunc adapts a function to a Fetcher.
type FetcherFunc func(ctx context.Context, since *types.PaymentUpdatedIndex, limit int) ([]types.BasicPayment, error)

// FetchPayments calls f.
func (f FetcherFunc) FetchPayments(ctx context.Context, since *types.PaymentUpdatedIndex, limit int) ([]types.BasicPayment, error) {
	return f(ctx, since, limit)
}

// SyncSummary counts what a sync changed.
type SyncSummary struct {
	NumNew     int `json:"num_new"`
	NumUpdated int `json:"num_updated"`
}

// AnyChanges reports whether the sync touched any record.
func (s SyncSummary) AnyChanges() bool {
	return s.NumNew > 0 || s.NumUpdated > 0
}

func (s *SyncSummary) add(o SyncSummary) {
	s.NumNew += o.NumNew
	s.NumUpdated += o.NumUpdated
}

// Sync brings the store up to date with the node. Concurrent callers share
// one in-flight run and receive its summary. The run is not tied to any
// caller's cancellation; a caller whose ctx ends stops waiting, and the run
// goes on for the others until it finishes or the store is closed.
//
// Each page is committed atomically. On error the returned summary counts
// the pages committed before the failure.
func (db *DB) Sync(ctx context.Context, f Fetcher) (SyncSummary, error) {
	ch := db.flight.DoChan("sync", func() (any, error) {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		defer cancel()
		defer context.AfterFunc(db.lifetime, cancel)()
		return db.syncPages(runCtx, f)
	})

	select {
	case <-ctx.Done():
		return SyncSummary{}, lexeerr.WithCause(lexeerr.ErrSyncUnreachable, ctx.Err())
	case res := <-ch:
		summary, _ := res.Val.(SyncSummary)
		if res.Shared {
			db.logger.Debug("joined in-flight payment sync")
		}
		return summary, res.Err
	}
}

func (db *DB) syncPages(ctx context.Context, f Fetcher) (SyncSummary, error) {
	if err := db.beginSync(); err != nil {
		return SyncSummary{}, err
	}
	defer db.endSync()

	var total SyncSummary
	for page := 1; ; page++ {
		cursor := db.LatestUpdatedIndex()

		records, err := f.FetchPayments(ctx, cursor, db.pageSize)
		if err != nil {
			return total, fetchError(err)
		}
		if err := validatePage(records, cursor, db.pageSize); err != nil {
			db.logger.Warn("rejected payment page",
				zap.Int("page", page),
				zap.Stringer("cursor", cursorStringer{cursor}),
				zap.Error(err),
			)
			return total, err
		}
		if len(records) == 0 {
			break
		}

		applied, err := db.applyPage(records)
		if err != nil {
			return total, err
		}
		total.add(applied)

		db.logger.Debug("applied payment page",
			zap.Int("page", page),
			zap.Int("records", len(records)),
			zap.Int("new", applied.NumNew),
			zap.Int("updated", applied.NumUpdated),
		)

		if len(records) < db.pageSize {
			break
		}
	}
	return total, nil
}

func (db *DB) beginSync() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return lexeerr.ErrStoreClosed
	}
	db.localNotes = make(map[types.PaymentCreatedIndex]*string)
	return nil
}

func (db *DB) endSync() {
	db.mu.Lock()
	db.localNotes = nil
	db.mu.Unlock()
}

// fetchError keeps credential and sync errors as they are and reports
// everything else as an unreachable node.
func fetchError(err error) error {
	switch lexeerr.KindOf(err) {
	case lexeerr.KindCredential, lexeerr.KindSync:
		return err
	}
	return lexeerr.WithCause(lexeerr.ErrSyncUnreachable, err)
}

// validatePage checks a whole page before any of it is applied.
func validatePage(records []types.BasicPayment, cursor *types.PaymentUpdatedIndex, limit int) error {
	malformed := func(i int, reason string) error {
		return lexeerr.WithDetails(lexeerr.ErrMalformedBatch, map[string]string{
			"position": strconv.Itoa(i),
			"reason":   reason,
		})
	}

	if len(records) > limit {
		return malformed(limit, "page exceeds requested limit")
	}

	var prev uint64
	hasPrev := cursor != nil
	if hasPrev {
		prev = cursor.Seq
	}

	for i := range records {
		p := &records[i]
		if !p.UpdatedIndex.IsRemote() {
			return malformed(i, "remote record carries a local revision")
		}
		if hasPrev && p.UpdatedIndex.Seq <= prev {
			return malformed(i, "update seq not strictly ascending")
		}
		if err := p.Validate(); err != nil {
			return lexeerr.WithCause(lexeerr.ErrMalformedBatch, err)
		}
		prev = p.UpdatedIndex.Seq
		hasPrev = true
	}
	return nil
}

// applyPage persists a validated page in one transaction and then swaps it
// into memory. Notes written locally during the current sync win over the
// page's note.
func (db *DB) applyPage(records []types.BasicPayment) (SyncSummary, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	prepared := make([]*types.BasicPayment, len(records))
	for i := range records {
		p := records[i].Clone()
		if note, ok := db.localNotes[p.Index]; ok {
			p.Note = note
			p.UpdatedIndex.Local = 1
		}
		prepared[i] = p
	}

	if err := db.writeLocked(prepared); err != nil {
		return SyncSummary{}, err
	}

	var summary SyncSummary
	for _, p := range prepared {
		if db.ix.upsert(p) {
			summary.NumNew++
		} else {
			summary.NumUpdated++
		}
	}
	return summary, nil
}

type cursorStringer struct {
	idx *types.PaymentUpdatedIndex
}

func (c cursorStringer) String() string {
	if c.idx == nil {
		return "none"
	}
	return c.idx.String()
}
