package types

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	lexeerr "github.com/mrz1836/lexe/pkg/errors"
)

// Amounts are denominated in satoshis with millisatoshi precision.
const amountDecimals = 3

// AmountFromSats returns a whole-satoshi amount.
func AmountFromSats(sats uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(sats), 0)
}

// ParseAmount parses a satoshi amount such as "1500" or "1500.250".
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, lexeerr.WithCause(lexeerr.ErrInvalidAmount, err)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount rejects negative amounts and sub-millisatoshi precision.
func ValidateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return lexeerr.WithDetails(lexeerr.ErrInvalidAmount, map[string]string{
			"amount": d.String(),
			"reason": "negative",
		})
	}
	if !d.Equal(d.Truncate(amountDecimals)) {
		return lexeerr.WithDetails(lexeerr.ErrInvalidAmount, map[string]string{
			"amount": d.String(),
			"reason": "more precise than 1 msat",
		})
	}
	return nil
}
