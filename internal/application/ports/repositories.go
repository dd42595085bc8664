// Package ports defines the interfaces the application layer depends on.
// Infrastructure provides the implementations (PostgreSQL, Redis, NATS);
// tests provide mocks.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Haleralex/ledgerhub/internal/domain/entities"
)

// WalletRepository persists wallets and hands out pessimistic row locks.
// Lock methods must be called inside a UnitOfWork transaction; the lock is
// held until that transaction commits or rolls back.
type WalletRepository interface {
	// Create inserts a new wallet. A duplicate (user, currency) pair maps to
	// a conflict error.
	Create(ctx context.Context, wallet *entities.Wallet) error

	// FindByID loads a wallet without locking it.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)

	// LockByID loads a wallet under SELECT ... FOR UPDATE.
	LockByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)

	// LockPair locks two distinct wallets in ascending id order regardless of
	// argument order, keeping the global lock order total. Results are keyed
	// by wallet id.
	LockPair(ctx context.Context, a, b uuid.UUID) (map[uuid.UUID]*entities.Wallet, error)

	// UpdateBalance writes the mutated balance back, bumping version and
	// updated_at. The row must already be locked by the current transaction.
	UpdateBalance(ctx context.Context, wallet *entities.Wallet) error
}

// JournalFilter narrows a history read.
type JournalFilter struct {
	Type *entities.EntryType
	From *time.Time // inclusive
	To   *time.Time // exclusive
}

// JournalRepository persists immutable journal entries.
type JournalRepository interface {
	Insert(ctx context.Context, entry *entities.JournalEntry) error

	// FindByIdempotencyKey returns the committed entry carrying key, or a
	// not_found error. Safe to call outside any engine transaction.
	FindByIdempotencyKey(ctx context.Context, key string) (*entities.JournalEntry, error)

	// FindByTransferID returns both legs of a transfer by the transfer_id
	// stored in their metadata.
	FindByTransferID(ctx context.Context, transferID string) ([]*entities.JournalEntry, error)

	// ListByWallet reads a wallet's entries, filtered, newest first.
	ListByWallet(ctx context.Context, walletID uuid.UUID, filter JournalFilter, offset, limit int) ([]*entities.JournalEntry, error)

	// CountByWallet returns the total matching ListByWallet's filter.
	CountByWallet(ctx context.Context, walletID uuid.UUID, filter JournalFilter) (int64, error)
}

// OutboxRepository persists pending event publications. Append must run in
// the same transaction as the journal insert it belongs to; the relay is the
// only writer of the published flag.
type OutboxRepository interface {
	Append(ctx context.Context, entry *entities.OutboxEntry) error

	// FetchUnpublished returns up to limit unpublished entries in sequence
	// order.
	FetchUnpublished(ctx context.Context, limit int) ([]*entities.OutboxEntry, error)

	// MarkPublished flips published for the given sequences in one update.
	MarkPublished(ctx context.Context, seqs []int64) error
}

// EventLog is the append-only downstream stream the relay publishes to.
type EventLog interface {
	// Append writes one payload to the log and returns the log-assigned id.
	Append(ctx context.Context, payload []byte) (string, error)
	Close() error
}
