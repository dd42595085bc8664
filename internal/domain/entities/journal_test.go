package entities_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/Haleralex/ledgerhub/internal/domain/entities"
	"github.com/Haleralex/ledgerhub/internal/domain/errors"
	"github.com/Haleralex/ledgerhub/internal/domain/valueobjects"
)

func TestNewJournalEntry_Deposit(t *testing.T) {
	walletID := uuid.New()
	key := "dep-1"

	e, err := entities.NewJournalEntry(
		walletID, nil,
		entities.EntryTypeDeposit,
		mustAmount(t, "25"), valueobjects.USD,
		mustAmount(t, "100"), mustAmount(t, "125"),
		&key, map[string]string{"note": "bonus"},
	)
	if err != nil {
		t.Fatalf("NewJournalEntry: %v", err)
	}

	if e.Status() != entities.EntryStatusCompleted {
		t.Errorf("status = %s, want completed", e.Status())
	}
	if e.IdempotencyKey() == nil || *e.IdempotencyKey() != key {
		t.Error("idempotency key not carried")
	}
	if e.TransferID() != "" {
		t.Error("non-transfer entries have no transfer id")
	}
	if e.Metadata()["note"] != "bonus" {
		t.Error("metadata not carried")
	}
}

func TestNewJournalEntry_BalanceEquation(t *testing.T) {
	walletID := uuid.New()
	related := uuid.New()

	tests := []struct {
		name      string
		entryType entities.EntryType
		related   *uuid.UUID
		before    string
		after     string
		wantErr   bool
	}{
		{"deposit adds", entities.EntryTypeDeposit, nil, "100", "125", false},
		{"withdrawal subtracts", entities.EntryTypeWithdrawal, nil, "100", "75", false},
		{"transfer debit subtracts", entities.EntryTypeTransferDebit, &related, "100", "75", false},
		{"transfer credit adds", entities.EntryTypeTransferCredit, &related, "100", "125", false},
		{"deposit with wrong after", entities.EntryTypeDeposit, nil, "100", "124", true},
		{"withdrawal with wrong sign", entities.EntryTypeWithdrawal, nil, "100", "125", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := entities.NewJournalEntry(
				walletID, tt.related,
				tt.entryType,
				mustAmount(t, "25"), valueobjects.USD,
				mustAmount(t, tt.before), mustAmount(t, tt.after),
				nil, nil,
			)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewJournalEntry_Rejections(t *testing.T) {
	walletID := uuid.New()

	t.Run("zero amount", func(t *testing.T) {
		_, err := entities.NewJournalEntry(
			walletID, nil,
			entities.EntryTypeDeposit,
			valueobjects.ZeroAmount(), valueobjects.USD,
			mustAmount(t, "100"), mustAmount(t, "100"),
			nil, nil,
		)
		if !errors.Is(err, errors.KindValidation) {
			t.Errorf("error = %v, want validation", err)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := entities.NewJournalEntry(
			walletID, nil,
			entities.EntryType("refund"),
			mustAmount(t, "25"), valueobjects.USD,
			mustAmount(t, "100"), mustAmount(t, "75"),
			nil, nil,
		)
		if !errors.Is(err, errors.KindValidation) {
			t.Errorf("error = %v, want validation", err)
		}
	})

	t.Run("transfer leg without counterpart", func(t *testing.T) {
		_, err := entities.NewJournalEntry(
			walletID, nil,
			entities.EntryTypeTransferDebit,
			mustAmount(t, "25"), valueobjects.USD,
			mustAmount(t, "100"), mustAmount(t, "75"),
			nil, nil,
		)
		if !errors.Is(err, errors.KindValidation) {
			t.Errorf("error = %v, want validation", err)
		}
	})
}

func TestNewJournalEntry_EmptyKeyNormalizedToNil(t *testing.T) {
	empty := ""
	e, err := entities.NewJournalEntry(
		uuid.New(), nil,
		entities.EntryTypeDeposit,
		mustAmount(t, "25"), valueobjects.USD,
		mustAmount(t, "0"), mustAmount(t, "25"),
		&empty, nil,
	)
	if err != nil {
		t.Fatalf("NewJournalEntry: %v", err)
	}
	if e.IdempotencyKey() != nil {
		t.Error("empty idempotency key should normalize to nil")
	}
}

func TestJournalEntry_MetadataIsCopied(t *testing.T) {
	e, err := entities.NewJournalEntry(
		uuid.New(), nil,
		entities.EntryTypeDeposit,
		mustAmount(t, "25"), valueobjects.USD,
		mustAmount(t, "0"), mustAmount(t, "25"),
		nil, map[string]string{"k": "v"},
	)
	if err != nil {
		t.Fatalf("NewJournalEntry: %v", err)
	}

	md := e.Metadata()
	md["k"] = "tampered"
	if e.Metadata()["k"] != "v" {
		t.Error("Metadata() must return a copy")
	}
}

func TestJournalEntry_TransferID(t *testing.T) {
	related := uuid.New()
	transferID := uuid.NewString()

	e, err := entities.NewJournalEntry(
		uuid.New(), &related,
		entities.EntryTypeTransferDebit,
		mustAmount(t, "25"), valueobjects.USD,
		mustAmount(t, "100"), mustAmount(t, "75"),
		nil, map[string]string{entities.MetadataKeyTransferID: transferID},
	)
	if err != nil {
		t.Fatalf("NewJournalEntry: %v", err)
	}
	if e.TransferID() != transferID {
		t.Errorf("TransferID() = %s, want %s", e.TransferID(), transferID)
	}
}

func TestEntryType_Classification(t *testing.T) {
	if !entities.EntryTypeDeposit.IsCredit() || !entities.EntryTypeTransferCredit.IsCredit() {
		t.Error("deposit and transfer_credit are credits")
	}
	if entities.EntryTypeWithdrawal.IsCredit() || entities.EntryTypeTransferDebit.IsCredit() {
		t.Error("withdrawal and transfer_debit are debits")
	}
	if !entities.EntryTypeTransferDebit.IsTransferLeg() || !entities.EntryTypeTransferCredit.IsTransferLeg() {
		t.Error("transfer legs not recognized")
	}
	if entities.EntryTypeDeposit.IsTransferLeg() {
		t.Error("deposit is not a transfer leg")
	}
}
