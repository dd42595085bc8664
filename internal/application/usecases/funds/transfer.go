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

// TransferUseCase moves funds between two same-currency wallets atomically.
// Both rows are locked in ascending id order, so concurrent opposing
// transfers never deadlock. The two journal legs share a synthesized
// transfer id in their metadata; the idempotency key lives on the debit leg.
type TransferUseCase struct {
	wallets ports.WalletRepository
	journal ports.JournalRepository
	outbox  ports.OutboxRepository
	uow     ports.UnitOfWork
	limiter ports.RateLimiter
	limits  Limits
}

// NewTransferUseCase creates the use case.
func NewTransferUseCase(
	wallets ports.WalletRepository,
	journal ports.JournalRepository,
	outbox ports.OutboxRepository,
	uow ports.UnitOfWork,
	limiter ports.RateLimiter,
	limits Limits,
) *TransferUseCase {
	return &TransferUseCase{
		wallets: wallets,
		journal: journal,
		outbox:  outbox,
		uow:     uow,
		limiter: limiter,
		limits:  limits,
	}
}

// Execute runs the transfer pipeline. Replay with the same idempotency key
// returns the original pair of legs without moving funds again.
func (uc *TransferUseCase) Execute(ctx context.Context, cmd dtos.TransferCommand) (*dtos.TransferDTO, error) {
	sourceID, err := uuid.Parse(cmd.SourceWalletID)
	if err != nil {
		return nil, errors.Validation("source_wallet_id", "must be a valid UUID")
	}
	destinationID, err := uuid.Parse(cmd.DestinationWalletID)
	if err != nil {
		return nil, errors.Validation("destination_wallet_id", "must be a valid UUID")
	}
	if sourceID == destinationID {
		return nil, errors.New(errors.KindInvalidTransfer, "source and destination wallets must differ")
	}
	amount, err := valueobjects.ParseAmount(cmd.Amount)
	if err != nil {
		return nil, errors.Wrap(errors.KindValidation, "invalid amount", err)
	}
	if !amount.IsPositive() {
		return nil, errors.Validation("amount", "must be positive")
	}

	if err := rateGate(ctx, uc.limiter, cmd.SourceWalletID, cmd.UserID); err != nil {
		return nil, err
	}

	if cmd.IdempotencyKey != "" {
		prior, err := uc.journal.FindByIdempotencyKey(ctx, cmd.IdempotencyKey)
		if err == nil {
			return uc.replay(ctx, prior)
		}
		if !errors.Is(err, errors.KindNotFound) {
			return nil, err
		}
	}

	var debit, credit *entities.JournalEntry
	var transferID uuid.UUID
	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		locked, err := uc.wallets.LockPair(txCtx, sourceID, destinationID)
		if err != nil {
			return err
		}
		source, ok := locked[sourceID]
		if !ok {
			return errors.Newf(errors.KindNotFound, "source wallet %s not found", sourceID)
		}
		destination, ok := locked[destinationID]
		if !ok {
			return errors.Newf(errors.KindNotFound, "destination wallet %s not found", destinationID)
		}

		if !source.OwnedBy(cmd.UserID) {
			return errors.New(errors.KindForbidden, "source wallet belongs to another user")
		}
		if !source.Currency().Equals(destination.Currency()) {
			return errors.New(errors.KindCurrencyMismatch, "wallets hold different currencies").
				WithDetails(map[string]any{
					"source_currency":      source.Currency().Code(),
					"destination_currency": destination.Currency().Code(),
				})
		}
		if err := uc.limits.checkTransactionLimit(amount, source.Currency()); err != nil {
			return err
		}

		sourceBefore := source.Balance()
		if err := source.Debit(amount); err != nil {
			return err
		}
		destinationBefore := destination.Balance()
		if err := destination.Credit(amount); err != nil {
			return err
		}
		if err := uc.limits.checkBalanceLimit(destination.Balance(), destination.Currency()); err != nil {
			return err
		}

		transferID = uuid.New()
		key := cmd.IdempotencyKey

		debit, err = entities.NewJournalEntry(
			sourceID, &destinationID,
			entities.EntryTypeTransferDebit,
			amount, source.Currency(),
			sourceBefore, source.Balance(),
			&key, transferMetadata(cmd.Metadata, transferID),
		)
		if err != nil {
			return err
		}
		credit, err = entities.NewJournalEntry(
			destinationID, &sourceID,
			entities.EntryTypeTransferCredit,
			amount, destination.Currency(),
			destinationBefore, destination.Balance(),
			nil, transferMetadata(cmd.Metadata, transferID),
		)
		if err != nil {
			return err
		}

		if err := uc.wallets.UpdateBalance(txCtx, source); err != nil {
			return err
		}
		if err := uc.wallets.UpdateBalance(txCtx, destination); err != nil {
			return err
		}
		if err := uc.journal.Insert(txCtx, debit); err != nil {
			return err
		}
		if err := uc.journal.Insert(txCtx, credit); err != nil {
			return err
		}

		if err := appendTransferEvent(txCtx, uc.outbox, events.TypeFundsTransferDebited, debit, transferID, sourceID, destinationID, cmd.CorrelationID); err != nil {
			return err
		}
		return appendTransferEvent(txCtx, uc.outbox, events.TypeFundsTransferCredited, credit, transferID, sourceID, destinationID, cmd.CorrelationID)
	})
	if err != nil {
		return nil, err
	}

	return &dtos.TransferDTO{
		TransferID: transferID.String(),
		Debit:      dtos.MapJournalEntry(debit),
		Credit:     dtos.MapJournalEntry(credit),
	}, nil
}

// replay reassembles the transfer result from its committed debit leg.
func (uc *TransferUseCase) replay(ctx context.Context, debitLeg *entities.JournalEntry) (*dtos.TransferDTO, error) {
	transferID := debitLeg.TransferID()
	if transferID == "" {
		return nil, errors.New(errors.KindConflict, "idempotency key was used by a non-transfer operation")
	}
	legs, err := uc.journal.FindByTransferID(ctx, transferID)
	if err != nil {
		return nil, err
	}

	out := &dtos.TransferDTO{TransferID: transferID}
	for _, leg := range legs {
		switch leg.Type() {
		case entities.EntryTypeTransferDebit:
			out.Debit = dtos.MapJournalEntry(leg)
		case entities.EntryTypeTransferCredit:
			out.Credit = dtos.MapJournalEntry(leg)
		}
	}
	if out.Debit == nil || out.Credit == nil {
		return nil, errors.Newf(errors.KindInternal, "transfer %s has incomplete legs", transferID)
	}
	return out, nil
}

// transferMetadata copies the caller's metadata and stamps the transfer id.
func transferMetadata(md map[string]string, transferID uuid.UUID) map[string]string {
	out := make(map[string]string, len(md)+1)
	for k, v := range md {
		out[k] = v
	}
	out[entities.MetadataKeyTransferID] = transferID.String()
	return out
}

// appendTransferEvent co-writes one leg's event. Both legs share the transfer
// id as the outbox aggregate so downstream consumers can pair them.
func appendTransferEvent(ctx context.Context, outbox ports.OutboxRepository, eventType string, leg *entities.JournalEntry, transferID, sourceID, destinationID uuid.UUID, correlationID string) error {
	payload, err := events.Marshal(events.NewTransferLeg(eventType, leg, sourceID, destinationID, correlationID))
	if err != nil {
		return errors.Internal("failed to marshal event payload", err)
	}
	return outbox.Append(ctx, entities.NewOutboxEntry(eventType, transferID, payload))
}
