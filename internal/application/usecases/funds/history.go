package funds

import (
	"context"

	"github.com/google/uuid"

	"github.com/Haleralex/ledgerhub/internal/application/dtos"
	"github.com/Haleralex/ledgerhub/internal/application/ports"
	"github.com/Haleralex/ledgerhub/internal/domain/entities"
	"github.com/Haleralex/ledgerhub/internal/domain/errors"
)

// MaxHistoryPageSize caps one page of journal history.
const MaxHistoryPageSize = 100

// HistoryUseCase reads an owned wallet's journal, newest first.
type HistoryUseCase struct {
	wallets ports.WalletRepository
	journal ports.JournalRepository
}

// NewHistoryUseCase creates the use case.
func NewHistoryUseCase(wallets ports.WalletRepository, journal ports.JournalRepository) *HistoryUseCase {
	return &HistoryUseCase{wallets: wallets, journal: journal}
}

// Execute returns one page of history. Reads take no locks and are not rate
// limited.
func (uc *HistoryUseCase) Execute(ctx context.Context, q dtos.HistoryQuery) (*dtos.HistoryPageDTO, error) {
	walletID, err := uuid.Parse(q.WalletID)
	if err != nil {
		return nil, errors.Validation("wallet_id", "must be a valid UUID")
	}
	if q.Page < 1 {
		return nil, errors.Validation("page", "must be >= 1")
	}
	if q.PageSize < 1 || q.PageSize > MaxHistoryPageSize {
		return nil, errors.Validation("page_size", "must be between 1 and 100")
	}
	if q.From != nil && q.To != nil && !q.From.Before(*q.To) {
		return nil, errors.Validation("from", "must be before to")
	}

	filter := ports.JournalFilter{From: q.From, To: q.To}
	if q.Type != "" {
		entryType := entities.EntryType(q.Type)
		if !entryType.IsValid() {
			return nil, errors.Validation("type", "unknown journal entry type")
		}
		filter.Type = &entryType
	}

	wallet, err := uc.wallets.FindByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !wallet.OwnedBy(q.UserID) {
		return nil, errors.New(errors.KindForbidden, "wallet belongs to another user")
	}

	total, err := uc.journal.CountByWallet(ctx, walletID, filter)
	if err != nil {
		return nil, err
	}

	offset := (q.Page - 1) * q.PageSize
	var items []*entities.JournalEntry
	if int64(offset) < total {
		items, err = uc.journal.ListByWallet(ctx, walletID, filter, offset, q.PageSize)
		if err != nil {
			return nil, err
		}
	}

	page := &dtos.HistoryPageDTO{
		Items:      make([]*dtos.JournalEntryDTO, 0, len(items)),
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalItems: total,
		TotalPages: (total + int64(q.PageSize) - 1) / int64(q.PageSize),
	}
	for _, e := range items {
		page.Items = append(page.Items, dtos.MapJournalEntry(e))
	}
	return page, nil
}
