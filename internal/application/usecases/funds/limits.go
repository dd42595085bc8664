// Package funds is the money engine: the only code path that mutates wallet
// balances. Every mutation follows one pipeline: syntactic validation, rate
// gate, idempotency fast path, then a single database transaction that locks
// the wallet row(s), validates, applies the delta, and co-writes the journal
// and outbox entries.
package funds

import (
	"github.com/Haleralex/ledgerhub/internal/domain/errors"
	"github.com/Haleralex/ledgerhub/internal/domain/valueobjects"
)

// Limits carries the configured per-currency bounds: the largest single
// movement and the largest post-mutation wallet balance. A currency absent
// from a map is unbounded.
type Limits struct {
	MaxTransaction map[string]valueobjects.Amount
	MaxBalance     map[string]valueobjects.Amount
}

// checkTransactionLimit rejects movements above the per-currency bound.
func (l Limits) checkTransactionLimit(amount valueobjects.Amount, currency valueobjects.Currency) error {
	limit, ok := l.MaxTransaction[currency.Code()]
	if !ok {
		return nil
	}
	if amount.GreaterThan(limit) {
		return errors.New(errors.KindAmountExceedsLimit, "amount exceeds per-transaction limit").
			WithDetails(map[string]any{
				"amount": amount.String(),
				"limit":  limit.String(),
			})
	}
	return nil
}

// checkBalanceLimit rejects mutations that would push a wallet's balance
// above the per-currency bound.
func (l Limits) checkBalanceLimit(newBalance valueobjects.Amount, currency valueobjects.Currency) error {
	limit, ok := l.MaxBalance[currency.Code()]
	if !ok {
		return nil
	}
	if newBalance.GreaterThan(limit) {
		return errors.New(errors.KindBalanceExceedsLimit, "resulting balance exceeds wallet limit").
			WithDetails(map[string]any{
				"new_balance": newBalance.String(),
				"limit":       limit.String(),
			})
	}
	return nil
}
