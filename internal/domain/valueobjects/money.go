// Package valueobjects - Amount is the fixed-point money type used for all
// balance math. Amounts are carried as an int64 scaled by 10^4, matching the
// decimal(19,4) columns in the store, so arithmetic is exact and round-trips
// the database without loss. Floating point is never used.
package valueobjects

import (
	"errors"
	"fmt"
	"strings"
)

// Scale is the number of fractional digits an Amount carries.
const Scale = 4

const scaleFactor = 10_000 // 10^Scale

// Amount is a fixed-point monetary amount with 4 fractional digits.
// The zero value is a valid zero amount.
type Amount struct {
	units int64 // value * 10^4
}

// Amount parsing and arithmetic errors.
var (
	ErrInvalidAmount     = errors.New("invalid amount format")
	ErrNegativeAmount    = errors.New("amount cannot be negative")
	ErrTooManyDecimals   = errors.New("amount has more than 4 fractional digits")
	ErrAmountOverflow    = errors.New("amount overflows fixed-point range")
	ErrInsufficientFunds = errors.New("insufficient amount")
)

// ParseAmount parses a decimal string into a non-negative Amount.
// At most 4 fractional digits are accepted; "100", "100.5" and "100.5000"
// all parse, "100.00005" does not.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}
	if s[0] == '-' {
		return Amount{}, ErrNegativeAmount
	}
	if s[0] == '+' {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart = s[:dot]
		fracPart = s[dot+1:]
	}
	if intPart == "" && fracPart == "" {
		return Amount{}, ErrInvalidAmount
	}
	if len(fracPart) > Scale {
		return Amount{}, ErrTooManyDecimals
	}

	var units int64
	for _, r := range intPart {
		if r < '0' || r > '9' {
			return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		d := int64(r - '0')
		if units > (1<<63-1-d)/10 {
			return Amount{}, ErrAmountOverflow
		}
		units = units*10 + d
	}
	if units > (1<<63-1)/scaleFactor {
		return Amount{}, ErrAmountOverflow
	}
	units *= scaleFactor

	mult := int64(scaleFactor / 10)
	for _, r := range fracPart {
		if r < '0' || r > '9' {
			return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		units += int64(r-'0') * mult
		mult /= 10
	}

	return Amount{units: units}, nil
}

// AmountFromUnits builds an Amount from raw 10^-4 units, as stored in the
// database. Negative units are rejected.
func AmountFromUnits(units int64) (Amount, error) {
	if units < 0 {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{units: units}, nil
}

// ZeroAmount returns the zero amount.
func ZeroAmount() Amount {
	return Amount{}
}

// Units returns the raw scaled integer (value * 10^4).
func (a Amount) Units() int64 {
	return a.units
}

// Add returns a + b.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a.units + b.units
	if sum < a.units {
		return Amount{}, ErrAmountOverflow
	}
	return Amount{units: sum}, nil
}

// Sub returns a - b, or ErrInsufficientFunds when the result would be negative.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b.units > a.units {
		return Amount{}, ErrInsufficientFunds
	}
	return Amount{units: a.units - b.units}, nil
}

// Cmp compares two amounts: -1 if a < b, 0 if equal, 1 if a > b.
func (a Amount) Cmp(b Amount) int {
	switch {
	case a.units < b.units:
		return -1
	case a.units > b.units:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.units == 0
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a.units > 0
}

// GreaterThan reports a > b.
func (a Amount) GreaterThan(b Amount) bool {
	return a.units > b.units
}

// String renders the amount with the full 4 fractional digits, e.g. "100.5000".
func (a Amount) String() string {
	return a.format(Scale)
}

// Format2 renders the amount with 2 fractional digits for event payloads,
// e.g. "100.50". Sub-cent precision is truncated, never rounded up.
func (a Amount) Format2() string {
	return a.format(2)
}

func (a Amount) format(digits int) string {
	whole := a.units / scaleFactor
	frac := a.units % scaleFactor
	for i := 0; i < Scale-digits; i++ {
		frac /= 10
	}
	return fmt.Sprintf("%d.%0*d", whole, digits, frac)
}
