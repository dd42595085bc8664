// Package entities - JournalEntry is the immutable record of one balance
// movement on one wallet. A transfer produces two entries linked by a
// transfer_id in their metadata.
package entities

import (
	"time"

	"github.com/google/uuid"

	"github.com/Haleralex/ledgerhub/internal/domain/errors"
	"github.com/Haleralex/ledgerhub/internal/domain/valueobjects"
)

// EntryType classifies a balance movement. The sign of the movement is
// implied by the type; amounts are always strictly positive.
type EntryType string

const (
	EntryTypeDeposit        EntryType = "deposit"
	EntryTypeWithdrawal     EntryType = "withdrawal"
	EntryTypeTransferDebit  EntryType = "transfer_debit"
	EntryTypeTransferCredit EntryType = "transfer_credit"
)

// IsValid checks membership in the type set.
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeDeposit, EntryTypeWithdrawal, EntryTypeTransferDebit, EntryTypeTransferCredit:
		return true
	default:
		return false
	}
}

// IsTransferLeg reports whether the type is one half of a transfer.
func (t EntryType) IsTransferLeg() bool {
	return t == EntryTypeTransferDebit || t == EntryTypeTransferCredit
}

// IsCredit reports whether the type increases the primary wallet's balance.
func (t EntryType) IsCredit() bool {
	return t == EntryTypeDeposit || t == EntryTypeTransferCredit
}

// EntryStatus is the processing status of a journal entry.
type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "pending"
	EntryStatusCompleted EntryStatus = "completed"
	EntryStatusFailed    EntryStatus = "failed"
)

// MetadataKeyTransferID links the two legs of a transfer.
const MetadataKeyTransferID = "transfer_id"

// JournalEntry is append-only: once committed it is never mutated.
// Invariants: amount > 0; balanceAfter >= 0; balanceAfter = balanceBefore ±
// amount with the sign given by the type; transfer legs reference a
// counterpart wallet; idempotency keys are globally unique when present.
type JournalEntry struct {
	id              uuid.UUID
	walletID        uuid.UUID
	relatedWalletID *uuid.UUID
	entryType       EntryType
	amount          valueobjects.Amount
	currency        valueobjects.Currency
	balanceBefore   valueobjects.Amount
	balanceAfter    valueobjects.Amount
	status          EntryStatus
	idempotencyKey  *string
	metadata        map[string]string
	createdAt       time.Time
}

// NewJournalEntry creates a completed journal entry, validating the balance
// equation for the given type.
func NewJournalEntry(
	walletID uuid.UUID,
	relatedWalletID *uuid.UUID,
	entryType EntryType,
	amount valueobjects.Amount,
	currency valueobjects.Currency,
	balanceBefore, balanceAfter valueobjects.Amount,
	idempotencyKey *string,
	metadata map[string]string,
) (*JournalEntry, error) {
	if !entryType.IsValid() {
		return nil, errors.Validation("type", "unknown journal entry type")
	}
	if !amount.IsPositive() {
		return nil, errors.Validation("amount", "amount must be positive")
	}
	if entryType.IsTransferLeg() && relatedWalletID == nil {
		return nil, errors.Validation("related_wallet_id", "transfer legs require a counterpart wallet")
	}

	var (
		expected valueobjects.Amount
		err      error
	)
	if entryType.IsCredit() {
		expected, err = balanceBefore.Add(amount)
	} else {
		expected, err = balanceBefore.Sub(amount)
	}
	if err != nil || expected.Cmp(balanceAfter) != 0 {
		return nil, errors.Internal("journal balance equation violated", err)
	}

	if idempotencyKey != nil && *idempotencyKey == "" {
		idempotencyKey = nil
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	return &JournalEntry{
		id:              uuid.New(),
		walletID:        walletID,
		relatedWalletID: relatedWalletID,
		entryType:       entryType,
		amount:          amount,
		currency:        currency,
		balanceBefore:   balanceBefore,
		balanceAfter:    balanceAfter,
		status:          EntryStatusCompleted,
		idempotencyKey:  idempotencyKey,
		metadata:        metadata,
		createdAt:       time.Now().UTC(),
	}, nil
}

// ReconstructJournalEntry hydrates an entry from stored data.
func ReconstructJournalEntry(
	id, walletID uuid.UUID,
	relatedWalletID *uuid.UUID,
	entryType EntryType,
	amount valueobjects.Amount,
	currency valueobjects.Currency,
	balanceBefore, balanceAfter valueobjects.Amount,
	status EntryStatus,
	idempotencyKey *string,
	metadata map[string]string,
	createdAt time.Time,
) *JournalEntry {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &JournalEntry{
		id:              id,
		walletID:        walletID,
		relatedWalletID: relatedWalletID,
		entryType:       entryType,
		amount:          amount,
		currency:        currency,
		balanceBefore:   balanceBefore,
		balanceAfter:    balanceAfter,
		status:          status,
		idempotencyKey:  idempotencyKey,
		metadata:        metadata,
		createdAt:       createdAt,
	}
}

func (e *JournalEntry) ID() uuid.UUID                       { return e.id }
func (e *JournalEntry) WalletID() uuid.UUID                 { return e.walletID }
func (e *JournalEntry) RelatedWalletID() *uuid.UUID         { return e.relatedWalletID }
func (e *JournalEntry) Type() EntryType                     { return e.entryType }
func (e *JournalEntry) Amount() valueobjects.Amount         { return e.amount }
func (e *JournalEntry) Currency() valueobjects.Currency     { return e.currency }
func (e *JournalEntry) BalanceBefore() valueobjects.Amount  { return e.balanceBefore }
func (e *JournalEntry) BalanceAfter() valueobjects.Amount   { return e.balanceAfter }
func (e *JournalEntry) Status() EntryStatus                 { return e.status }
func (e *JournalEntry) IdempotencyKey() *string             { return e.idempotencyKey }
func (e *JournalEntry) CreatedAt() time.Time                { return e.createdAt }

// Metadata returns a copy of the metadata map.
func (e *JournalEntry) Metadata() map[string]string {
	out := make(map[string]string, len(e.metadata))
	for k, v := range e.metadata {
		out[k] = v
	}
	return out
}

// TransferID returns the transfer id linking the two legs of a transfer,
// or "" for non-transfer entries.
func (e *JournalEntry) TransferID() string {
	return e.metadata[MetadataKeyTransferID]
}
