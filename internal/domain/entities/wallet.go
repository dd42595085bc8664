// Package entities - Wallet owns the funds of one (user, currency) pair.
// The balance is only ever mutated by the money engine while the row is held
// under a write lock, so the entity itself enforces the business rules and
// leaves serialization to the store.
package entities

import (
	"time"

	"github.com/google/uuid"

	"github.com/Haleralex/ledgerhub/internal/domain/errors"
	"github.com/Haleralex/ledgerhub/internal/domain/valueobjects"
)

// MaxUserIDLength bounds the opaque caller-supplied user identifier.
const MaxUserIDLength = 255

// WalletStatus is the lifecycle state of a wallet.
type WalletStatus string

const (
	WalletStatusActive WalletStatus = "active"
	WalletStatusFrozen WalletStatus = "frozen"
	WalletStatusClosed WalletStatus = "closed" // terminal
)

// IsValid checks membership in the status set.
func (s WalletStatus) IsValid() bool {
	switch s {
	case WalletStatusActive, WalletStatusFrozen, WalletStatusClosed:
		return true
	default:
		return false
	}
}

// Wallet is the aggregate owning a user's balance in one currency.
// Invariants: balance >= 0 always; (userID, currency) unique across the
// system (enforced by the store); version increments on every mutation but
// is never consulted for concurrency control.
type Wallet struct {
	id        uuid.UUID
	userID    string
	balance   valueobjects.Amount
	currency  valueobjects.Currency
	status    WalletStatus
	createdAt time.Time
	updatedAt time.Time
	version   int64
}

// NewWallet creates an active wallet with a zero balance.
func NewWallet(userID string, currency valueobjects.Currency) (*Wallet, error) {
	if userID == "" {
		return nil, errors.Validation("user_id", "user id is required")
	}
	if len(userID) > MaxUserIDLength {
		return nil, errors.Validation("user_id", "user id exceeds 255 characters")
	}
	if currency.IsZero() {
		return nil, errors.Validation("currency", "currency is required")
	}

	now := time.Now().UTC()
	return &Wallet{
		id:        uuid.New(),
		userID:    userID,
		balance:   valueobjects.ZeroAmount(),
		currency:  currency,
		status:    WalletStatusActive,
		createdAt: now,
		updatedAt: now,
		version:   1,
	}, nil
}

// ReconstructWallet hydrates a Wallet from stored data. Used by the
// repository only; no validation beyond what the schema already guarantees.
func ReconstructWallet(
	id uuid.UUID,
	userID string,
	balance valueobjects.Amount,
	currency valueobjects.Currency,
	status WalletStatus,
	createdAt, updatedAt time.Time,
	version int64,
) *Wallet {
	return &Wallet{
		id:        id,
		userID:    userID,
		balance:   balance,
		currency:  currency,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
	}
}

func (w *Wallet) ID() uuid.UUID                   { return w.id }
func (w *Wallet) UserID() string                  { return w.userID }
func (w *Wallet) Balance() valueobjects.Amount    { return w.balance }
func (w *Wallet) Currency() valueobjects.Currency { return w.currency }
func (w *Wallet) Status() WalletStatus            { return w.status }
func (w *Wallet) CreatedAt() time.Time            { return w.createdAt }
func (w *Wallet) UpdatedAt() time.Time            { return w.updatedAt }
func (w *Wallet) Version() int64                  { return w.version }

// OwnedBy reports whether the wallet belongs to the given caller.
func (w *Wallet) OwnedBy(userID string) bool {
	return w.userID == userID
}

// CanMutate returns nil when the wallet accepts balance mutations.
// Frozen and closed wallets are read only.
func (w *Wallet) CanMutate() error {
	if w.status != WalletStatusActive {
		return errors.Newf(errors.KindInvalidState, "wallet %s is %s", w.id, w.status).
			WithDetails(map[string]any{"wallet_id": w.id.String(), "status": string(w.status)})
	}
	return nil
}

// Credit adds amount to the balance.
func (w *Wallet) Credit(amount valueobjects.Amount) error {
	if err := w.CanMutate(); err != nil {
		return err
	}
	newBalance, err := w.balance.Add(amount)
	if err != nil {
		return errors.Internal("credit overflow", err)
	}
	w.applyBalance(newBalance)
	return nil
}

// Debit subtracts amount from the balance, failing with insufficient_funds
// when the balance would go negative.
func (w *Wallet) Debit(amount valueobjects.Amount) error {
	if err := w.CanMutate(); err != nil {
		return err
	}
	newBalance, err := w.balance.Sub(amount)
	if err != nil {
		return errors.New(errors.KindInsufficientFunds, "insufficient funds").
			WithDetails(map[string]any{
				"requested": amount.String(),
				"available": w.balance.String(),
			})
	}
	w.applyBalance(newBalance)
	return nil
}

func (w *Wallet) applyBalance(b valueobjects.Amount) {
	w.balance = b
	w.version++
	w.updatedAt = time.Now().UTC()
}
