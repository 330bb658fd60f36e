// Package types defines the value types shared by the SDK packages: user
// identity, payment indices, payment records and the request/response
// shapes exchanged with the node.
package types

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	lexeerr "github.com/mrz1836/lexe/pkg/errors"
)

// UserPk is a user's ed25519 public key, the stable identity of a wallet.
type UserPk [32]byte

// ParseUserPk parses a 64-character hex user public key.
func ParseUserPk(s string) (UserPk, error) {
	var pk UserPk
	s = strings.TrimSpace(s)
	if len(s) != 2*len(pk) {
		return pk, lexeerr.WithDetails(lexeerr.ErrInvalidInput, map[string]string{
			"field": "user_pk",
			"want":  "64 hex chars",
		})
	}
	if _, err := hex.Decode(pk[:], []byte(s)); err != nil {
		return UserPk{}, lexeerr.WithCause(lexeerr.ErrInvalidInput, err)
	}
	return pk, nil
}

// String returns the lowercase hex encoding.
func (pk UserPk) String() string {
	return hex.EncodeToString(pk[:])
}

// IsZero reports whether pk is unset.
func (pk UserPk) IsZero() bool {
	return pk == UserPk{}
}

// MarshalText implements encoding.TextMarshaler.
func (pk UserPk) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (pk *UserPk) UnmarshalText(text []byte) error {
	parsed, err := ParseUserPk(string(text))
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

// PaymentCreatedIndex is assigned by the node once per payment and never
// reused. It is the primary key of the payments store.
type PaymentCreatedIndex uint64

// ParsePaymentCreatedIndex parses a decimal created index.
func ParsePaymentCreatedIndex(s string) (PaymentCreatedIndex, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, lexeerr.WithCause(lexeerr.ErrInvalidInput, err)
	}
	return PaymentCreatedIndex(v), nil
}

func (i PaymentCreatedIndex) String() string {
	return strconv.FormatUint(uint64(i), 10)
}

// PaymentUpdatedIndex orders every write to a payment record.
//
// Seq is assigned by the node and increases with every remote mutation.
// Local counts local revisions stacked on the highest Seq seen so far; the
// node never sends a non-zero Local.
type PaymentUpdatedIndex struct {
	Seq   uint64 `json:"seq"`
	Local uint32 `json:"local,omitempty"`
}

// Compare returns -1, 0 or 1 ordering i against o.
func (i PaymentUpdatedIndex) Compare(o PaymentUpdatedIndex) int {
	switch {
	case i.Seq < o.Seq:
		return -1
	case i.Seq > o.Seq:
		return 1
	case i.Local < o.Local:
		return -1
	case i.Local > o.Local:
		return 1
	default:
		return 0
	}
}

// Less reports whether i sorts before o.
func (i PaymentUpdatedIndex) Less(o PaymentUpdatedIndex) bool {
	return i.Compare(o) < 0
}

// IsRemote reports whether the index was assigned by the node.
func (i PaymentUpdatedIndex) IsRemote() bool {
	return i.Local == 0
}

func (i PaymentUpdatedIndex) String() string {
	if i.Local == 0 {
		return strconv.FormatUint(i.Seq, 10)
	}
	return fmt.Sprintf("%d.%d", i.Seq, i.Local)
}
