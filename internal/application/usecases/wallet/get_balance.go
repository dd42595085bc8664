package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Haleralex/ledgerhub/internal/application/dtos"
	"github.com/Haleralex/ledgerhub/internal/application/ports"
	"github.com/Haleralex/ledgerhub/internal/domain/errors"
)

// GetBalanceUseCase reads the current balance of an owned wallet. Reads take
// no lock; the value is a consistent snapshot as of the read.
type GetBalanceUseCase struct {
	wallets ports.WalletRepository
}

// NewGetBalanceUseCase creates the use case.
func NewGetBalanceUseCase(wallets ports.WalletRepository) *GetBalanceUseCase {
	return &GetBalanceUseCase{wallets: wallets}
}

// Execute returns the balance snapshot.
func (uc *GetBalanceUseCase) Execute(ctx context.Context, q dtos.BalanceQuery) (*dtos.BalanceDTO, error) {
	walletID, err := uuid.Parse(q.WalletID)
	if err != nil {
		return nil, errors.Validation("wallet_id", "must be a valid UUID")
	}

	w, err := uc.wallets.FindByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !w.OwnedBy(q.UserID) {
		return nil, errors.New(errors.KindForbidden, "wallet belongs to another user")
	}

	return &dtos.BalanceDTO{
		WalletID: w.ID().String(),
		Balance:  w.Balance().String(),
		Currency: w.Currency().Code(),
		ReadAt:   time.Now().UTC(),
	}, nil
}
