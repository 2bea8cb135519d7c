package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseMoney decodes a string-encoded numeric (as produced by JSON or a
// NUMERIC column in text form) into an exact decimal. Money must never be
// compared in its string form: "6.00" > "20000.00" lexicographically.
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// RoundMoney rounds half away from zero to cents. Payouts are never negative
// so this is round-half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
