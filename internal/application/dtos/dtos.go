// Package dtos carries the commands entering the use cases and the results
// leaving them. The HTTP adapter maps these to and from the wire; the core
// never sees wire shapes.
package dtos

import (
	"time"

	"github.com/Haleralex/ledgerhub/internal/domain/entities"
)

// CreateWalletCommand opens a wallet for the caller in one currency.
type CreateWalletCommand struct {
	UserID        string
	Currency      string
	CorrelationID string
}

// DepositCommand credits a wallet.
type DepositCommand struct {
	WalletID       string
	Amount         string // decimal string, <= 4 fractional digits
	UserID         string
	IdempotencyKey string
	CorrelationID  string
	Metadata       map[string]string
}

// WithdrawCommand debits a wallet.
type WithdrawCommand struct {
	WalletID       string
	Amount         string
	UserID         string
	IdempotencyKey string
	CorrelationID  string
	Metadata       map[string]string
}

// TransferCommand moves funds between two same-currency wallets.
type TransferCommand struct {
	SourceWalletID      string
	DestinationWalletID string
	Amount              string
	UserID              string
	IdempotencyKey      string
	CorrelationID       string
	Metadata            map[string]string
}

// HistoryQuery reads a wallet's journal, newest first.
type HistoryQuery struct {
	WalletID string
	UserID   string
	Type     string // optional entry type filter
	From     *time.Time
	To       *time.Time
	Page     int // 1-indexed
	PageSize int // 1..100
}

// BalanceQuery reads the current balance of an owned wallet.
type BalanceQuery struct {
	WalletID string
	UserID   string
}

// WalletDTO is the outward view of a wallet.
type WalletDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Balance   string    `json:"balance"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BalanceDTO is the outward view of a balance read.
type BalanceDTO struct {
	WalletID string    `json:"wallet_id"`
	Balance  string    `json:"balance"`
	Currency string    `json:"currency"`
	ReadAt   time.Time `json:"read_at"`
}

// JournalEntryDTO is the outward view of one journal entry.
type JournalEntryDTO struct {
	ID              string            `json:"id"`
	WalletID        string            `json:"wallet_id"`
	RelatedWalletID string            `json:"related_wallet_id,omitempty"`
	Type            string            `json:"type"`
	Amount          string            `json:"amount"`
	Currency        string            `json:"currency"`
	BalanceBefore   string            `json:"balance_before"`
	BalanceAfter    string            `json:"balance_after"`
	Status          string            `json:"status"`
	IdempotencyKey  string            `json:"idempotency_key,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// TransferDTO returns both legs of a transfer.
type TransferDTO struct {
	TransferID string           `json:"transfer_id"`
	Debit      *JournalEntryDTO `json:"debit"`
	Credit     *JournalEntryDTO `json:"credit"`
}

// HistoryPageDTO is one page of journal history.
type HistoryPageDTO struct {
	Items      []*JournalEntryDTO `json:"items"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalItems int64              `json:"total_items"`
	TotalPages int64              `json:"total_pages"`
}

// MapWallet converts a wallet entity.
func MapWallet(w *entities.Wallet) *WalletDTO {
	return &WalletDTO{
		ID:        w.ID().String(),
		UserID:    w.UserID(),
		Balance:   w.Balance().String(),
		Currency:  w.Currency().Code(),
		Status:    string(w.Status()),
		CreatedAt: w.CreatedAt(),
		UpdatedAt: w.UpdatedAt(),
	}
}

// MapJournalEntry converts a journal entry entity.
func MapJournalEntry(e *entities.JournalEntry) *JournalEntryDTO {
	dto := &JournalEntryDTO{
		ID:            e.ID().String(),
		WalletID:      e.WalletID().String(),
		Type:          string(e.Type()),
		Amount:        e.Amount().String(),
		Currency:      e.Currency().Code(),
		BalanceBefore: e.BalanceBefore().String(),
		BalanceAfter:  e.BalanceAfter().String(),
		Status:        string(e.Status()),
		Metadata:      e.Metadata(),
		CreatedAt:     e.CreatedAt(),
	}
	if related := e.RelatedWalletID(); related != nil {
		dto.RelatedWalletID = related.String()
	}
	if key := e.IdempotencyKey(); key != nil {
		dto.IdempotencyKey = *key
	}
	return dto
}
