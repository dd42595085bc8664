package funds

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Haleralex/ledgerhub/internal/application/ports"
	"github.com/Haleralex/ledgerhub/internal/domain/entities"
	"github.com/Haleralex/ledgerhub/internal/domain/errors"
	"github.com/Haleralex/ledgerhub/internal/domain/valueobjects"
)

// Function-field mocks. A nil field means "not expected in this test"; the
// default behaviors below keep the happy path short to set up.

type mockWalletRepo struct {
	createFunc        func(ctx context.Context, w *entities.Wallet) error
	findByIDFunc      func(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)
	lockByIDFunc      func(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)
	lockPairFunc      func(ctx context.Context, a, b uuid.UUID) (map[uuid.UUID]*entities.Wallet, error)
	updateBalanceFunc func(ctx context.Context, w *entities.Wallet) error

	updated []*entities.Wallet
}

func (m *mockWalletRepo) Create(ctx context.Context, w *entities.Wallet) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, w)
	}
	return nil
}

func (m *mockWalletRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errors.Newf(errors.KindNotFound, "wallet %s not found", id)
}

func (m *mockWalletRepo) LockByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	if m.lockByIDFunc != nil {
		return m.lockByIDFunc(ctx, id)
	}
	return nil, errors.Newf(errors.KindNotFound, "wallet %s not found", id)
}

func (m *mockWalletRepo) LockPair(ctx context.Context, a, b uuid.UUID) (map[uuid.UUID]*entities.Wallet, error) {
	if m.lockPairFunc != nil {
		return m.lockPairFunc(ctx, a, b)
	}
	return map[uuid.UUID]*entities.Wallet{}, nil
}

func (m *mockWalletRepo) UpdateBalance(ctx context.Context, w *entities.Wallet) error {
	m.updated = append(m.updated, w)
	if m.updateBalanceFunc != nil {
		return m.updateBalanceFunc(ctx, w)
	}
	return nil
}

type mockJournalRepo struct {
	insertFunc               func(ctx context.Context, e *entities.JournalEntry) error
	findByIdempotencyKeyFunc func(ctx context.Context, key string) (*entities.JournalEntry, error)
	findByTransferIDFunc     func(ctx context.Context, transferID string) ([]*entities.JournalEntry, error)
	listByWalletFunc         func(ctx context.Context, walletID uuid.UUID, filter ports.JournalFilter, offset, limit int) ([]*entities.JournalEntry, error)
	countByWalletFunc        func(ctx context.Context, walletID uuid.UUID, filter ports.JournalFilter) (int64, error)

	inserted []*entities.JournalEntry
}

func (m *mockJournalRepo) Insert(ctx context.Context, e *entities.JournalEntry) error {
	m.inserted = append(m.inserted, e)
	if m.insertFunc != nil {
		return m.insertFunc(ctx, e)
	}
	return nil
}

func (m *mockJournalRepo) FindByIdempotencyKey(ctx context.Context, key string) (*entities.JournalEntry, error) {
	if m.findByIdempotencyKeyFunc != nil {
		return m.findByIdempotencyKeyFunc(ctx, key)
	}
	return nil, errors.Newf(errors.KindNotFound, "no entry for idempotency key %q", key)
}

func (m *mockJournalRepo) FindByTransferID(ctx context.Context, transferID string) ([]*entities.JournalEntry, error) {
	if m.findByTransferIDFunc != nil {
		return m.findByTransferIDFunc(ctx, transferID)
	}
	return nil, nil
}

func (m *mockJournalRepo) ListByWallet(ctx context.Context, walletID uuid.UUID, filter ports.JournalFilter, offset, limit int) ([]*entities.JournalEntry, error) {
	if m.listByWalletFunc != nil {
		return m.listByWalletFunc(ctx, walletID, filter, offset, limit)
	}
	return nil, nil
}

func (m *mockJournalRepo) CountByWallet(ctx context.Context, walletID uuid.UUID, filter ports.JournalFilter) (int64, error) {
	if m.countByWalletFunc != nil {
		return m.countByWalletFunc(ctx, walletID, filter)
	}
	return 0, nil
}

type mockOutboxRepo struct {
	appendFunc func(ctx context.Context, e *entities.OutboxEntry) error

	appended []*entities.OutboxEntry
}

func (m *mockOutboxRepo) Append(ctx context.Context, e *entities.OutboxEntry) error {
	m.appended = append(m.appended, e)
	if m.appendFunc != nil {
		return m.appendFunc(ctx, e)
	}
	return nil
}

func (m *mockOutboxRepo) FetchUnpublished(ctx context.Context, limit int) ([]*entities.OutboxEntry, error) {
	return nil, nil
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, seqs []int64) error {
	return nil
}

// mockUnitOfWork runs the closure directly; there is no real transaction to
// inject, so the inner context is the outer one.
type mockUnitOfWork struct {
	calls int
}

func (m *mockUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

// stubLimiter records the scopes consulted and answers from the decisions map
// (missing scope = allowed).
type stubLimiter struct {
	decisions map[ports.RateScope]ports.RateDecision
	consulted []ports.RateScope
}

func (s *stubLimiter) Allow(ctx context.Context, scope ports.RateScope, subject string) ports.RateDecision {
	s.consulted = append(s.consulted, scope)
	if d, ok := s.decisions[scope]; ok {
		return d
	}
	return ports.RateDecision{Allowed: true, Remaining: 1, ResetAt: time.Now().Add(time.Minute)}
}

func amt(t *testing.T, s string) valueobjects.Amount {
	t.Helper()
	a, err := valueobjects.ParseAmount(s)
	if err != nil {
		t.Fatalf("ParseAmount(%q): %v", s, err)
	}
	return a
}

func testWallet(t *testing.T, id uuid.UUID, userID, balance string, currency valueobjects.Currency) *entities.Wallet {
	t.Helper()
	now := time.Now().UTC()
	return entities.ReconstructWallet(id, userID, amt(t, balance), currency, entities.WalletStatusActive, now, now, 1)
}

func frozenWallet(t *testing.T, id uuid.UUID, userID, balance string, currency valueobjects.Currency) *entities.Wallet {
	t.Helper()
	now := time.Now().UTC()
	return entities.ReconstructWallet(id, userID, amt(t, balance), currency, entities.WalletStatusFrozen, now, now, 1)
}

func noLimits() Limits {
	return Limits{}
}

func assertKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := errors.KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s: %v", kind, got, err)
	}
}
