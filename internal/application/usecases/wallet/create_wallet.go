// Package wallet holds the wallet lifecycle use cases: opening wallets and
// reading balances. Balance mutation lives in the funds package.
package wallet

import (
	"context"

	"github.com/Haleralex/ledgerhub/internal/application/dtos"
	"github.com/Haleralex/ledgerhub/internal/application/ports"
	"github.com/Haleralex/ledgerhub/internal/domain/entities"
	"github.com/Haleralex/ledgerhub/internal/domain/errors"
	"github.com/Haleralex/ledgerhub/internal/domain/events"
	"github.com/Haleralex/ledgerhub/internal/domain/valueobjects"
)

// CreateWalletUseCase opens a wallet for the caller. One wallet per
// (user, currency) pair; a duplicate maps to a conflict.
type CreateWalletUseCase struct {
	wallets ports.WalletRepository
	outbox  ports.OutboxRepository
	uow     ports.UnitOfWork
}

// NewCreateWalletUseCase creates the use case.
func NewCreateWalletUseCase(wallets ports.WalletRepository, outbox ports.OutboxRepository, uow ports.UnitOfWork) *CreateWalletUseCase {
	return &CreateWalletUseCase{wallets: wallets, outbox: outbox, uow: uow}
}

// Execute opens the wallet and co-writes the wallet.created event.
func (uc *CreateWalletUseCase) Execute(ctx context.Context, cmd dtos.CreateWalletCommand) (*dtos.WalletDTO, error) {
	currency, err := valueobjects.NewCurrency(cmd.Currency)
	if err != nil {
		return nil, err
	}

	w, err := entities.NewWallet(cmd.UserID, currency)
	if err != nil {
		return nil, err
	}

	payload, err := events.Marshal(events.NewWalletCreated(w, cmd.CorrelationID))
	if err != nil {
		return nil, errors.Internal("failed to marshal event payload", err)
	}

	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		if err := uc.wallets.Create(txCtx, w); err != nil {
			return err
		}
		return uc.outbox.Append(txCtx, entities.NewOutboxEntry(events.TypeWalletCreated, w.ID(), payload))
	})
	if err != nil {
		return nil, err
	}
	return dtos.MapWallet(w), nil
}
