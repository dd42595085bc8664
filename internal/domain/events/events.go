// Package events defines the payloads published to the event log. Events are
// immutable facts; each carries its type, an RFC3339 timestamp, and the
// correlation id of the request that produced it.
//
// Amounts in event payloads are decimal strings with 2 fractional digits
// (persisted rows keep 4).
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Haleralex/ledgerhub/internal/domain/entities"
)

// Event type names.
const (
	TypeWalletCreated         = "wallet.created"
	TypeFundsDeposited        = "funds.deposited"
	TypeFundsWithdrawn        = "funds.withdrawn"
	TypeFundsTransferDebited  = "funds.transfer.debited"
	TypeFundsTransferCredited = "funds.transfer.credited"
)

// Header is embedded in every event payload.
type Header struct {
	EventType     string `json:"event_type"`
	Timestamp     string `json:"timestamp"`
	CorrelationID string `json:"correlation_id"`
}

func newHeader(eventType, correlationID string) Header {
	return Header{
		EventType:     eventType,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		CorrelationID: correlationID,
	}
}

// WalletCreated announces a new wallet.
type WalletCreated struct {
	Header
	WalletID       string `json:"wallet_id"`
	UserID         string `json:"user_id"`
	Currency       string `json:"currency"`
	InitialBalance string `json:"initial_balance"`
}

// NewWalletCreated builds the wallet.created payload.
func NewWalletCreated(w *entities.Wallet, correlationID string) *WalletCreated {
	return &WalletCreated{
		Header:         newHeader(TypeWalletCreated, correlationID),
		WalletID:       w.ID().String(),
		UserID:         w.UserID(),
		Currency:       w.Currency().Code(),
		InitialBalance: w.Balance().Format2(),
	}
}

// FundsMovement is the payload for funds.deposited and funds.withdrawn.
// The aggregate id of the outbox entry is the journal entry id.
type FundsMovement struct {
	Header
	WalletID        string            `json:"wallet_id"`
	TransactionID   string            `json:"transaction_id"`
	Amount          string            `json:"amount"`
	Currency        string            `json:"currency"`
	PreviousBalance string            `json:"previous_balance"`
	NewBalance      string            `json:"new_balance"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// NewFundsMovement builds a deposit or withdrawal payload from its journal
// entry. eventType must be TypeFundsDeposited or TypeFundsWithdrawn.
func NewFundsMovement(eventType string, e *entities.JournalEntry, correlationID string) *FundsMovement {
	return &FundsMovement{
		Header:          newHeader(eventType, correlationID),
		WalletID:        e.WalletID().String(),
		TransactionID:   e.ID().String(),
		Amount:          e.Amount().Format2(),
		Currency:        e.Currency().Code(),
		PreviousBalance: e.BalanceBefore().Format2(),
		NewBalance:      e.BalanceAfter().Format2(),
		Metadata:        userMetadata(e),
	}
}

// TransferLeg is the payload for funds.transfer.debited and
// funds.transfer.credited. Balances are those of the wallet the leg pertains
// to; the aggregate id of both outbox entries is the transfer id.
type TransferLeg struct {
	Header
	SourceWalletID      string            `json:"source_wallet_id"`
	DestinationWalletID string            `json:"destination_wallet_id"`
	TransferID          string            `json:"transfer_id"`
	TransactionID       string            `json:"transaction_id"`
	Amount              string            `json:"amount"`
	Currency            string            `json:"currency"`
	PreviousBalance     string            `json:"previous_balance"`
	NewBalance          string            `json:"new_balance"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// NewTransferLeg builds one leg's payload from its journal entry.
func NewTransferLeg(eventType string, e *entities.JournalEntry, sourceID, destinationID uuid.UUID, correlationID string) *TransferLeg {
	return &TransferLeg{
		Header:              newHeader(eventType, correlationID),
		SourceWalletID:      sourceID.String(),
		DestinationWalletID: destinationID.String(),
		TransferID:          e.TransferID(),
		TransactionID:       e.ID().String(),
		Amount:              e.Amount().Format2(),
		Currency:            e.Currency().Code(),
		PreviousBalance:     e.BalanceBefore().Format2(),
		NewBalance:          e.BalanceAfter().Format2(),
		Metadata:            userMetadata(e),
	}
}

// Marshal serializes a payload for the outbox.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// userMetadata strips engine-internal keys from the journal metadata before
// it leaves on the wire.
func userMetadata(e *entities.JournalEntry) map[string]string {
	md := e.Metadata()
	delete(md, entities.MetadataKeyTransferID)
	if len(md) == 0 {
		return nil
	}
	return md
}
