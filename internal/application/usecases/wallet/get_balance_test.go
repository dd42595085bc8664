package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Haleralex/ledgerhub/internal/application/dtos"
	"github.com/Haleralex/ledgerhub/internal/domain/entities"
	"github.com/Haleralex/ledgerhub/internal/domain/errors"
	"github.com/Haleralex/ledgerhub/internal/domain/valueobjects"
)

func reconstructed(t *testing.T, id uuid.UUID, userID, balance string) *entities.Wallet {
	t.Helper()
	a, err := valueobjects.ParseAmount(balance)
	if err != nil {
		t.Fatalf("ParseAmount(%q): %v", balance, err)
	}
	now := time.Now().UTC()
	return entities.ReconstructWallet(id, userID, a, valueobjects.USD, entities.WalletStatusActive, now, now, 1)
}

func TestGetBalance_Success(t *testing.T) {
	walletID := uuid.New()
	wallets := &mockWalletRepo{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
			return reconstructed(t, walletID, "user-1", "42.5"), nil
		},
	}
	uc := NewGetBalanceUseCase(wallets)

	result, err := uc.Execute(context.Background(), dtos.BalanceQuery{
		WalletID: walletID.String(),
		UserID:   "user-1",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Balance != "42.5000" {
		t.Errorf("balance = %s, want 42.5000", result.Balance)
	}
	if result.Currency != "USD" {
		t.Errorf("currency = %s, want USD", result.Currency)
	}
	if result.ReadAt.IsZero() {
		t.Error("read_at should be stamped")
	}
}

func TestGetBalance_MalformedID(t *testing.T) {
	uc := NewGetBalanceUseCase(&mockWalletRepo{})

	_, err := uc.Execute(context.Background(), dtos.BalanceQuery{WalletID: "nope", UserID: "user-1"})
	if !errors.Is(err, errors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetBalance_NotFound(t *testing.T) {
	uc := NewGetBalanceUseCase(&mockWalletRepo{})

	_, err := uc.Execute(context.Background(), dtos.BalanceQuery{WalletID: uuid.NewString(), UserID: "user-1"})
	if !errors.Is(err, errors.KindNotFound) {
		t.Fatalf("expected not_found error, got %v", err)
	}
}

func TestGetBalance_Forbidden(t *testing.T) {
	walletID := uuid.New()
	wallets := &mockWalletRepo{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
			return reconstructed(t, walletID, "owner", "10"), nil
		},
	}
	uc := NewGetBalanceUseCase(wallets)

	_, err := uc.Execute(context.Background(), dtos.BalanceQuery{
		WalletID: walletID.String(),
		UserID:   "intruder",
	})
	if !errors.Is(err, errors.KindForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}
