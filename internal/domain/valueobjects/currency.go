// Package valueobjects contains immutable value objects that represent domain
// concepts without identity. They are compared by value and validated on
// creation, so invalid money or currency can never enter the domain.
package valueobjects

import (
	"errors"
	"strings"
)

// Currency is an ISO 4217 currency code restricted to the set the ledger
// supports. The zero value is invalid; use NewCurrency.
type Currency struct {
	code string
}

// Supported currencies.
var (
	USD = Currency{code: "USD"}
	EUR = Currency{code: "EUR"}
	GBP = Currency{code: "GBP"}
)

var supportedCurrencies = map[string]Currency{
	"USD": USD,
	"EUR": EUR,
	"GBP": GBP,
}

// ErrInvalidCurrency is returned when a currency code is not supported.
var ErrInvalidCurrency = errors.New("invalid currency code")

// NewCurrency validates and normalizes a currency code.
func NewCurrency(code string) (Currency, error) {
	c, ok := supportedCurrencies[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Currency{}, ErrInvalidCurrency
	}
	return c, nil
}

// MustNewCurrency panics on an invalid code. For initialization and tests only.
func MustNewCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Code returns the three-letter currency code.
func (c Currency) Code() string {
	return c.code
}

// Equals compares two currencies by code.
func (c Currency) Equals(other Currency) bool {
	return c.code == other.code
}

// IsZero reports whether the currency was never set.
func (c Currency) IsZero() bool {
	return c.code == ""
}

func (c Currency) String() string {
	return c.code
}
