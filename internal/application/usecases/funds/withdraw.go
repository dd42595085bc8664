package funds

import (
	"context"

	"github.com/google/uuid"

	"github.com/Haleralex/ledgerhub/internal/application/dtos"
	"github.com/Haleralex/ledgerhub/internal/application/ports"
	"github.com/Haleralex/ledgerhub/internal/domain/entities"
	"github.com/Haleralex/ledgerhub/internal/domain/errors"
	"github.com/Haleralex/ledgerhub/internal/domain/events"
	"github.com/Haleralex/ledgerhub/internal/domain/valueobjects"
)

// WithdrawUseCase debits an owned wallet. The balance never goes negative:
// the entity rejects overdrafts and the store's check constraint backs it up.
type WithdrawUseCase struct {
	wallets ports.WalletRepository
	journal ports.JournalRepository
	outbox  ports.OutboxRepository
	uow     ports.UnitOfWork
	limiter ports.RateLimiter
	limits  Limits
}

// NewWithdrawUseCase creates the use case.
func NewWithdrawUseCase(
	wallets ports.WalletRepository,
	journal ports.JournalRepository,
	outbox ports.OutboxRepository,
	uow ports.UnitOfWork,
	limiter ports.RateLimiter,
	limits Limits,
) *WithdrawUseCase {
	return &WithdrawUseCase{
		wallets: wallets,
		journal: journal,
		outbox:  outbox,
		uow:     uow,
		limiter: limiter,
		limits:  limits,
	}
}

// Execute runs the withdrawal pipeline.
func (uc *WithdrawUseCase) Execute(ctx context.Context, cmd dtos.WithdrawCommand) (*dtos.JournalEntryDTO, error) {
	walletID, err := uuid.Parse(cmd.WalletID)
	if err != nil {
		return nil, errors.Validation("wallet_id", "must be a valid UUID")
	}
	amount, err := valueobjects.ParseAmount(cmd.Amount)
	if err != nil {
		return nil, errors.Wrap(errors.KindValidation, "invalid amount", err)
	}
	if !amount.IsPositive() {
		return nil, errors.Validation("amount", "must be positive")
	}

	if err := rateGate(ctx, uc.limiter, cmd.WalletID, cmd.UserID); err != nil {
		return nil, err
	}

	if cmd.IdempotencyKey != "" {
		prior, err := uc.journal.FindByIdempotencyKey(ctx, cmd.IdempotencyKey)
		if err == nil {
			return dtos.MapJournalEntry(prior), nil
		}
		if !errors.Is(err, errors.KindNotFound) {
			return nil, err
		}
	}

	var entry *entities.JournalEntry
	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		wallet, err := uc.wallets.LockByID(txCtx, walletID)
		if err != nil {
			return err
		}
		if !wallet.OwnedBy(cmd.UserID) {
			return errors.New(errors.KindForbidden, "wallet belongs to another user")
		}
		if err := uc.limits.checkTransactionLimit(amount, wallet.Currency()); err != nil {
			return err
		}

		before := wallet.Balance()
		if err := wallet.Debit(amount); err != nil {
			return err
		}

		key := cmd.IdempotencyKey
		entry, err = entities.NewJournalEntry(
			walletID, nil,
			entities.EntryTypeWithdrawal,
			amount, wallet.Currency(),
			before, wallet.Balance(),
			&key, cmd.Metadata,
		)
		if err != nil {
			return err
		}

		if err := uc.wallets.UpdateBalance(txCtx, wallet); err != nil {
			return err
		}
		if err := uc.journal.Insert(txCtx, entry); err != nil {
			return err
		}
		return appendMovementEvent(txCtx, uc.outbox, events.TypeFundsWithdrawn, entry, cmd.CorrelationID)
	})
	if err != nil {
		return nil, err
	}
	return dtos.MapJournalEntry(entry), nil
}
