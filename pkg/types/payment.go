package types

import (
	"time"

	"github.com/shopspring/decimal"

	lexeerr "github.com/mrz1836/lexe/pkg/errors"
)

// MaxNoteLen is the longest note, in bytes, a payment may carry.
const MaxNoteLen = 512

// PaymentStatus is the lifecycle state of a payment record.
type PaymentStatus string

// Payment statuses. A finalized payment either completed or failed; see StatusMsg.
const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFinalized PaymentStatus = "finalized"
)

// Valid reports whether s is a known status.
func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusFinalized
}

// PaymentDirection tells whether funds moved in or out of the wallet.
type PaymentDirection string

// Payment directions.
const (
	PaymentDirectionInbound  PaymentDirection = "inbound"
	PaymentDirectionOutbound PaymentDirection = "outbound"
)

// Valid reports whether d is a known direction.
func (d PaymentDirection) Valid() bool {
	return d == PaymentDirectionInbound || d == PaymentDirectionOutbound
}

// PaymentKind is the protocol a payment used. Opaque to the store.
type PaymentKind string

// Common payment kinds.
const (
	PaymentKindInvoice     PaymentKind = "invoice"
	PaymentKindOffer       PaymentKind = "offer"
	PaymentKindSpontaneous PaymentKind = "spontaneous"
	PaymentKindOnchain     PaymentKind = "onchain"
)

// BasicPayment is the record kept in the local payments store.
type BasicPayment struct {
	Index        PaymentCreatedIndex `json:"index"`
	UpdatedIndex PaymentUpdatedIndex `json:"updated_index"`
	ID           string              `json:"id"`
	Kind         PaymentKind         `json:"kind"`
	Direction    PaymentDirection    `json:"direction"`
	Invoice      *string             `json:"invoice,omitempty"`
	Amount       *decimal.Decimal    `json:"amount,omitempty"`
	Fees         decimal.Decimal     `json:"fees"`
	Status       PaymentStatus       `json:"status"`
	StatusMsg    string              `json:"status_msg,omitempty"`
	Junk         bool                `json:"is_junk"`
	Note         *string             `json:"note,omitempty"`
	Description  *string             `json:"description,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	FinalizedAt  *time.Time          `json:"finalized_at,omitempty"`
}

// IsPending reports whether the payment is still in flight.
func (p *BasicPayment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// IsFinalized reports whether the payment reached a terminal state.
func (p *BasicPayment) IsFinalized() bool {
	return p.Status == PaymentStatusFinalized
}

// Clone returns a deep copy.
func (p *BasicPayment) Clone() *BasicPayment {
	if p == nil {
		return nil
	}
	c := *p
	if p.Invoice != nil {
		v := *p.Invoice
		c.Invoice = &v
	}
	if p.Amount != nil {
		v := *p.Amount
		c.Amount = &v
	}
	if p.Note != nil {
		v := *p.Note
		c.Note = &v
	}
	if p.Description != nil {
		v := *p.Description
		c.Description = &v
	}
	if p.FinalizedAt != nil {
		v := *p.FinalizedAt
		c.FinalizedAt = &v
	}
	return &c
}

// Validate checks the record invariants the store relies on.
func (p *BasicPayment) Validate() error {
	reason := ""
	switch {
	case !p.Status.Valid():
		reason = "unknown status"
	case !p.Direction.Valid():
		reason = "unknown direction"
	case p.UpdatedIndex.Seq < uint64(p.Index):
		reason = "updated index below created index"
	case p.Note != nil && len(*p.Note) > MaxNoteLen:
		reason = "note too long"
	case p.Amount != nil && ValidateAmount(*p.Amount) != nil:
		reason = "invalid amount"
	}
	if reason == "" {
		return nil
	}
	return lexeerr.WithDetails(lexeerr.ErrInvalidInput, map[string]string{
		"index":  p.Index.String(),
		"reason": reason,
	})
}

// SdkPayment is a payment as returned by a direct node lookup.
type SdkPayment struct {
	Index       PaymentCreatedIndex `json:"index"`
	ID          string              `json:"id"`
	Kind        PaymentKind         `json:"kind"`
	Direction   PaymentDirection    `json:"direction"`
	Invoice     *string             `json:"invoice,omitempty"`
	Txid        *string             `json:"txid,omitempty"`
	Amount      *decimal.Decimal    `json:"amount,omitempty"`
	Fees        decimal.Decimal     `json:"fees"`
	Status      PaymentStatus       `json:"status"`
	StatusMsg   string              `json:"status_msg,omitempty"`
	Note        *string             `json:"note,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	FinalizedAt *time.Time          `json:"finalized_at,omitempty"`
}

// UpdatePaymentNote replaces the note of the payment at Index.
// A nil Note clears it.
type UpdatePaymentNote struct {
	Index PaymentCreatedIndex `json:"index"`
	Note  *string             `json:"note,omitempty"`
}

// Validate checks the note length.
func (r UpdatePaymentNote) Validate() error {
	if r.Note != nil && len(*r.Note) > MaxNoteLen {
		return lexeerr.WithDetails(lexeerr.ErrInvalidInput, map[string]string{
			"field": "note",
			"max":   "512 bytes",
		})
	}
	return nil
}
