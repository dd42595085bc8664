package funds

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Haleralex/ledgerhub/internal/application/dtos"
	"github.com/Haleralex/ledgerhub/internal/application/ports"
	"github.com/Haleralex/ledgerhub/internal/domain/entities"
	"github.com/Haleralex/ledgerhub/internal/domain/errors"
	"github.com/Haleralex/ledgerhub/internal/domain/valueobjects"
)

func historyWallets(t *testing.T, walletID uuid.UUID, userID string) *mockWalletRepo {
	t.Helper()
	wallet := testWallet(t, walletID, userID, "100", valueobjects.USD)
	return &mockWalletRepo{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
			return wallet, nil
		},
	}
}

func TestHistory_Pagination(t *testing.T) {
	walletID := uuid.New()

	entry, err := entities.NewJournalEntry(
		walletID, nil,
		entities.EntryTypeDeposit,
		amt(t, "10"), valueobjects.USD,
		amt(t, "0"), amt(t, "10"),
		nil, nil,
	)
	if err != nil {
		t.Fatalf("NewJournalEntry: %v", err)
	}

	var gotOffset, gotLimit int
	journal := &mockJournalRepo{
		countByWalletFunc: func(ctx context.Context, id uuid.UUID, filter ports.JournalFilter) (int64, error) {
			return 45, nil
		},
		listByWalletFunc: func(ctx context.Context, id uuid.UUID, filter ports.JournalFilter, offset, limit int) ([]*entities.JournalEntry, error) {
			gotOffset, gotLimit = offset, limit
			return []*entities.JournalEntry{entry}, nil
		},
	}

	uc := NewHistoryUseCase(historyWallets(t, walletID, "user-1"), journal)
	page, err := uc.Execute(context.Background(), dtos.HistoryQuery{
		WalletID: walletID.String(),
		UserID:   "user-1",
		Page:     2,
		PageSize: 20,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if gotOffset != 20 || gotLimit != 20 {
		t.Errorf("offset/limit = %d/%d, want 20/20", gotOffset, gotLimit)
	}
	if page.TotalItems != 45 || page.TotalPages != 3 {
		t.Errorf("totals = %d items / %d pages, want 45/3", page.TotalItems, page.TotalPages)
	}
	if len(page.Items) != 1 || page.Items[0].ID != entry.ID().String() {
		t.Error("page should carry the mapped entries")
	}
}

func TestHistory_PagePastEnd(t *testing.T) {
	walletID := uuid.New()
	journal := &mockJournalRepo{
		countByWalletFunc: func(ctx context.Context, id uuid.UUID, filter ports.JournalFilter) (int64, error) {
			return 45, nil
		},
		listByWalletFunc: func(ctx context.Context, id uuid.UUID, filter ports.JournalFilter, offset, limit int) ([]*entities.JournalEntry, error) {
			t.Fatal("list must not run when the offset is past the end")
			return nil, nil
		},
	}

	uc := NewHistoryUseCase(historyWallets(t, walletID, "user-1"), journal)
	page, err := uc.Execute(context.Background(), dtos.HistoryQuery{
		WalletID: walletID.String(),
		UserID:   "user-1",
		Page:     5,
		PageSize: 20,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(page.Items) != 0 {
		t.Errorf("expected empty page, got %d items", len(page.Items))
	}
	if page.TotalItems != 45 {
		t.Errorf("totals still reported: got %d, want 45", page.TotalItems)
	}
}

func TestHistory_TypeFilter(t *testing.T) {
	walletID := uuid.New()
	var gotFilter ports.JournalFilter
	journal := &mockJournalRepo{
		countByWalletFunc: func(ctx context.Context, id uuid.UUID, filter ports.JournalFilter) (int64, error) {
			gotFilter = filter
			return 0, nil
		},
	}

	uc := NewHistoryUseCase(historyWallets(t, walletID, "user-1"), journal)
	from := time.Now().Add(-time.Hour)
	to := time.Now()
	_, err := uc.Execute(context.Background(), dtos.HistoryQuery{
		WalletID: walletID.String(),
		UserID:   "user-1",
		Type:     "withdrawal",
		From:     &from,
		To:       &to,
		Page:     1,
		PageSize: 20,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if gotFilter.Type == nil || *gotFilter.Type != entities.EntryTypeWithdrawal {
		t.Error("type filter not forwarded")
	}
	if gotFilter.From == nil || gotFilter.To == nil {
		t.Error("time window not forwarded")
	}
}

func TestHistory_InvalidInput(t *testing.T) {
	walletID := uuid.New()
	uc := NewHistoryUseCase(historyWallets(t, walletID, "user-1"), &mockJournalRepo{})

	now := time.Now()
	earlier := now.Add(-time.Hour)
	tests := []struct {
		name string
		q    dtos.HistoryQuery
	}{
		{"malformed wallet id", dtos.HistoryQuery{WalletID: "nope", UserID: "user-1", Page: 1, PageSize: 20}},
		{"zero page", dtos.HistoryQuery{WalletID: walletID.String(), UserID: "user-1", Page: 0, PageSize: 20}},
		{"oversized page", dtos.HistoryQuery{WalletID: walletID.String(), UserID: "user-1", Page: 1, PageSize: MaxHistoryPageSize + 1}},
		{"unknown type", dtos.HistoryQuery{WalletID: walletID.String(), UserID: "user-1", Type: "refund", Page: 1, PageSize: 20}},
		{"inverted window", dtos.HistoryQuery{WalletID: walletID.String(), UserID: "user-1", From: &now, To: &earlier, Page: 1, PageSize: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.q)
			assertKind(t, err, errors.KindValidation)
		})
	}
}

func TestHistory_Forbidden(t *testing.T) {
	walletID := uuid.New()
	uc := NewHistoryUseCase(historyWallets(t, walletID, "owner"), &mockJournalRepo{})

	_, err := uc.Execute(context.Background(), dtos.HistoryQuery{
		WalletID: walletID.String(),
		UserID:   "intruder",
		Page:     1,
		PageSize: 20,
	})
	assertKind(t, err, errors.KindForbidden)
}
