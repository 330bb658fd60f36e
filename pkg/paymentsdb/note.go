package paymentsdb

import (
	"go.uber.org/zap"

	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/types"
)

// UpdatePaymentNote replaces the note of a stored payment and bumps its
// update index above every index in the store.
func (db *DB) UpdatePaymentNote(req types.UpdatePaymentNote) error {
	if err := req.Validate(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return lexeerr.ErrStoreClosed
	}

	current, ok := db.ix.byCreated[req.Index]
	if !ok {
		return lexeerr.WithDetails(lexeerr.ErrPaymentNotFound, map[string]string{
			"index": req.Index.String(),
		})
	}

	updated := current.Clone()
	updated.Note = cloneNote(req.Note)
	updated.UpdatedIndex = db.ix.nextLocal()

	if err := db.writeLocked([]*types.BasicPayment{updated}); err != nil {
		return err
	}
	db.ix.upsert(updated)

	if db.localNotes != nil {
		db.localNotes[req.Index] = cloneNote(req.Note)
	}

	db.logger.Debug("updated payment note",
		zap.Stringer("index", req.Index),
		zap.Stringer("updated_index", updated.UpdatedIndex),
	)
	return nil
}

func cloneNote(note *string) *string {
	if note == nil {
		return nil
	}
	v := *note
	return &v
}
