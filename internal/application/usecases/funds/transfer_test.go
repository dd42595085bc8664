package funds

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/Haleralex/ledgerhub/internal/application/dtos"
	"github.com/Haleralex/ledgerhub/internal/domain/entities"
	"github.com/Haleralex/ledgerhub/internal/domain/errors"
	"github.com/Haleralex/ledgerhub/internal/domain/events"
	"github.com/Haleralex/ledgerhub/internal/domain/valueobjects"
)

func pairRepo(source, destination *entities.Wallet) *mockWalletRepo {
	return &mockWalletRepo{
		lockPairFunc: func(ctx context.Context, a, b uuid.UUID) (map[uuid.UUID]*entities.Wallet, error) {
			return map[uuid.UUID]*entities.Wallet{
				source.ID():      source,
				destination.ID(): destination,
			}, nil
		},
	}
}

func TestTransfer_Success(t *testing.T) {
	sourceID := uuid.New()
	destinationID := uuid.New()
	source := testWallet(t, sourceID, "user-1", "1000", valueobjects.USD)
	destination := testWallet(t, destinationID, "user-2", "500", valueobjects.USD)

	wallets := pairRepo(source, destination)
	journal := &mockJournalRepo{}
	outbox := &mockOutboxRepo{}
	uc := NewTransferUseCase(wallets, journal, outbox, &mockUnitOfWork{}, nil, noLimits())

	result, err := uc.Execute(context.Background(), dtos.TransferCommand{
		SourceWalletID:      sourceID.String(),
		DestinationWalletID: destinationID.String(),
		Amount:              "250",
		UserID:              "user-1",
		IdempotencyKey:      "tr-1",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.TransferID == "" {
		t.Fatal("expected a transfer id")
	}
	if result.Debit == nil || result.Credit == nil {
		t.Fatal("expected both legs in the result")
	}

	// Funds are conserved.
	if source.Balance().Cmp(amt(t, "750")) != 0 {
		t.Errorf("source balance = %s, want 750.0000", source.Balance())
	}
	if destination.Balance().Cmp(amt(t, "750")) != 0 {
		t.Errorf("destination balance = %s, want 750.0000", destination.Balance())
	}

	if len(journal.inserted) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(journal.inserted))
	}
	debit, credit := journal.inserted[0], journal.inserted[1]
	if debit.Type() != entities.EntryTypeTransferDebit || credit.Type() != entities.EntryTypeTransferCredit {
		t.Fatalf("leg types = %s/%s", debit.Type(), credit.Type())
	}
	if debit.TransferID() != result.TransferID || credit.TransferID() != result.TransferID {
		t.Error("both legs must carry the shared transfer id")
	}
	if debit.IdempotencyKey() == nil || *debit.IdempotencyKey() != "tr-1" {
		t.Error("idempotency key belongs on the debit leg")
	}
	if credit.IdempotencyKey() != nil {
		t.Error("credit leg must not carry the idempotency key")
	}
	if debit.RelatedWalletID() == nil || *debit.RelatedWalletID() != destinationID {
		t.Error("debit leg must reference the destination wallet")
	}
	if credit.RelatedWalletID() == nil || *credit.RelatedWalletID() != sourceID {
		t.Error("credit leg must reference the source wallet")
	}

	if len(wallets.updated) != 2 {
		t.Errorf("expected 2 balance updates, got %d", len(wallets.updated))
	}
	if len(outbox.appended) != 2 {
		t.Fatalf("expected 2 outbox entries, got %d", len(outbox.appended))
	}
	if outbox.appended[0].EventType != events.TypeFundsTransferDebited ||
		outbox.appended[1].EventType != events.TypeFundsTransferCredited {
		t.Errorf("outbox event types = %s/%s", outbox.appended[0].EventType, outbox.appended[1].EventType)
	}
	for _, e := range outbox.appended {
		if e.AggregateID.String() != result.TransferID {
			t.Error("outbox aggregate must be the transfer id on both legs")
		}
	}
}

func TestTransfer_SelfTransfer(t *testing.T) {
	walletID := uuid.NewString()
	uow := &mockUnitOfWork{}
	uc := NewTransferUseCase(&mockWalletRepo{}, &mockJournalRepo{}, &mockOutboxRepo{}, uow, nil, noLimits())

	_, err := uc.Execute(context.Background(), dtos.TransferCommand{
		SourceWalletID:      walletID,
		DestinationWalletID: walletID,
		Amount:              "10",
		UserID:              "user-1",
	})
	assertKind(t, err, errors.KindInvalidTransfer)
	if uow.calls != 0 {
		t.Error("self-transfer must be rejected before the engine")
	}
}

func TestTransfer_CurrencyMismatch(t *testing.T) {
	sourceID := uuid.New()
	destinationID := uuid.New()
	source := testWallet(t, sourceID, "user-1", "1000", valueobjects.USD)
	destination := testWallet(t, destinationID, "user-2", "500", valueobjects.EUR)

	uc := NewTransferUseCase(pairRepo(source, destination), &mockJournalRepo{}, &mockOutboxRepo{}, &mockUnitOfWork{}, nil, noLimits())

	_, err := uc.Execute(context.Background(), dtos.TransferCommand{
		SourceWalletID:      sourceID.String(),
		DestinationWalletID: destinationID.String(),
		Amount:              "10",
		UserID:              "user-1",
	})
	assertKind(t, err, errors.KindCurrencyMismatch)

	details := errors.DetailsOf(err)
	if details["source_currency"] != "USD" || details["destination_currency"] != "EUR" {
		t.Errorf("details = %v, want both currency codes", details)
	}
	if source.Balance().Cmp(amt(t, "1000")) != 0 || destination.Balance().Cmp(amt(t, "500")) != 0 {
		t.Error("rejected transfer must not move funds")
	}
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	sourceID := uuid.New()
	destinationID := uuid.New()
	source := testWallet(t, sourceID, "user-1", "100", valueobjects.USD)
	destination := testWallet(t, destinationID, "user-2", "500", valueobjects.USD)

	journal := &mockJournalRepo{}
	uc := NewTransferUseCase(pairRepo(source, destination), journal, &mockOutboxRepo{}, &mockUnitOfWork{}, nil, noLimits())

	_, err := uc.Execute(context.Background(), dtos.TransferCommand{
		SourceWalletID:      sourceID.String(),
		DestinationWalletID: destinationID.String(),
		Amount:              "100.0001",
		UserID:              "user-1",
	})
	assertKind(t, err, errors.KindInsufficientFunds)
	if len(journal.inserted) != 0 {
		t.Error("failed transfer must not write journal entries")
	}
}

func TestTransfer_SourceNotOwned(t *testing.T) {
	sourceID := uuid.New()
	destinationID := uuid.New()
	source := testWallet(t, sourceID, "owner", "1000", valueobjects.USD)
	destination := testWallet(t, destinationID, "user-2", "500", valueobjects.USD)

	uc := NewTransferUseCase(pairRepo(source, destination), &mockJournalRepo{}, &mockOutboxRepo{}, &mockUnitOfWork{}, nil, noLimits())

	_, err := uc.Execute(context.Background(), dtos.TransferCommand{
		SourceWalletID:      sourceID.String(),
		DestinationWalletID: destinationID.String(),
		Amount:              "10",
		UserID:              "intruder",
	})
	assertKind(t, err, errors.KindForbidden)
}

func TestTransfer_DestinationNotFound(t *testing.T) {
	sourceID := uuid.New()
	destinationID := uuid.New()
	source := testWallet(t, sourceID, "user-1", "1000", valueobjects.USD)

	wallets := &mockWalletRepo{
		lockPairFunc: func(ctx context.Context, a, b uuid.UUID) (map[uuid.UUID]*entities.Wallet, error) {
			return map[uuid.UUID]*entities.Wallet{sourceID: source}, nil
		},
	}
	uc := NewTransferUseCase(wallets, &mockJournalRepo{}, &mockOutboxRepo{}, &mockUnitOfWork{}, nil, noLimits())

	_, err := uc.Execute(context.Background(), dtos.TransferCommand{
		SourceWalletID:      sourceID.String(),
		DestinationWalletID: destinationID.String(),
		Amount:              "10",
		UserID:              "user-1",
	})
	assertKind(t, err, errors.KindNotFound)
}

func TestTransfer_DestinationBalanceLimit(t *testing.T) {
	sourceID := uuid.New()
	destinationID := uuid.New()
	source := testWallet(t, sourceID, "user-1", "1000", valueobjects.GBP)
	destination := testWallet(t, destinationID, "user-2", "999995", valueobjects.GBP)

	limits := Limits{MaxBalance: map[string]valueobjects.Amount{"GBP": amt(t, "1000000")}}
	uc := NewTransferUseCase(pairRepo(source, destination), &mockJournalRepo{}, &mockOutboxRepo{}, &mockUnitOfWork{}, nil, limits)

	_, err := uc.Execute(context.Background(), dtos.TransferCommand{
		SourceWalletID:      sourceID.String(),
		DestinationWalletID: destinationID.String(),
		Amount:              "10",
		UserID:              "user-1",
	})
	assertKind(t, err, errors.KindBalanceExceedsLimit)
}

func TestTransfer_IdempotentReplay(t *testing.T) {
	sourceID := uuid.New()
	destinationID := uuid.New()
	transferID := uuid.NewString()
	key := "tr-replay"
	md := map[string]string{entities.MetadataKeyTransferID: transferID}

	debit, err := entities.NewJournalEntry(
		sourceID, &destinationID,
		entities.EntryTypeTransferDebit,
		amt(t, "250"), valueobjects.USD,
		amt(t, "1000"), amt(t, "750"),
		&key, md,
	)
	if err != nil {
		t.Fatalf("NewJournalEntry(debit): %v", err)
	}
	credit, err := entities.NewJournalEntry(
		destinationID, &sourceID,
		entities.EntryTypeTransferCredit,
		amt(t, "250"), valueobjects.USD,
		amt(t, "500"), amt(t, "750"),
		nil, md,
	)
	if err != nil {
		t.Fatalf("NewJournalEntry(credit): %v", err)
	}

	journal := &mockJournalRepo{
		findByIdempotencyKeyFunc: func(ctx context.Context, k string) (*entities.JournalEntry, error) {
			return debit, nil
		},
		findByTransferIDFunc: func(ctx context.Context, id string) ([]*entities.JournalEntry, error) {
			if id != transferID {
				t.Fatalf("transfer lookup id = %q, want %q", id, transferID)
			}
			return []*entities.JournalEntry{debit, credit}, nil
		},
	}
	uow := &mockUnitOfWork{}
	uc := NewTransferUseCase(&mockWalletRepo{}, journal, &mockOutboxRepo{}, uow, nil, noLimits())

	result, err := uc.Execute(context.Background(), dtos.TransferCommand{
		SourceWalletID:      sourceID.String(),
		DestinationWalletID: destinationID.String(),
		Amount:              "250",
		UserID:              "user-1",
		IdempotencyKey:      key,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.TransferID != transferID {
		t.Errorf("transfer id = %s, want %s", result.TransferID, transferID)
	}
	if result.Debit.ID != debit.ID().String() || result.Credit.ID != credit.ID().String() {
		t.Error("replay should return the original legs")
	}
	if uow.calls != 0 {
		t.Error("replay must not open a transaction")
	}
}

func TestTransfer_ReplayKeyFromNonTransfer(t *testing.T) {
	walletID := uuid.New()
	key := "used-by-deposit"
	deposit, err := entities.NewJournalEntry(
		walletID, nil,
		entities.EntryTypeDeposit,
		amt(t, "10"), valueobjects.USD,
		amt(t, "0"), amt(t, "10"),
		&key, nil,
	)
	if err != nil {
		t.Fatalf("NewJournalEntry: %v", err)
	}

	journal := &mockJournalRepo{
		findByIdempotencyKeyFunc: func(ctx context.Context, k string) (*entities.JournalEntry, error) {
			return deposit, nil
		},
	}
	uc := NewTransferUseCase(&mockWalletRepo{}, journal, &mockOutboxRepo{}, &mockUnitOfWork{}, nil, noLimits())

	_, err = uc.Execute(context.Background(), dtos.TransferCommand{
		SourceWalletID:      uuid.NewString(),
		DestinationWalletID: uuid.NewString(),
		Amount:              "10",
		UserID:              "user-1",
		IdempotencyKey:      key,
	})
	assertKind(t, err, errors.KindConflict)
}
