package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Haleralex/ledgerhub/internal/application/ports"
	"github.com/Haleralex/ledgerhub/internal/domain/entities"
	domainerrors "github.com/Haleralex/ledgerhub/internal/domain/errors"
	"github.com/Haleralex/ledgerhub/internal/domain/valueobjects"
)

var _ ports.JournalRepository = (*JournalRepository)(nil)

// JournalRepository implements ports.JournalRepository. Entries are
// append-only; there is no update path. Metadata is stored as JSONB so the
// transfer_id lookup can use the metadata->>'transfer_id' expression index.
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates the repository.
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

const journalColumns = `id, wallet_id, related_wallet_id, type, amount_units, currency,
	balance_before_units, balance_after_units, status, idempotency_key, metadata, created_at`

// Insert appends one journal entry.
func (r *JournalRepository) Insert(ctx context.Context, e *entities.JournalEntry) error {
	q := querierFrom(ctx, r.pool)

	metadata, err := json.Marshal(e.Metadata())
	if err != nil {
		return domainerrors.Internal("failed to marshal journal metadata", err)
	}

	query := `
		INSERT INTO journal_entries (
			id, wallet_id, related_wallet_id, type, amount_units, currency,
			balance_before_units, balance_after_units, status, idempotency_key, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = q.Exec(ctx, query,
		e.ID(),
		e.WalletID(),
		e.RelatedWalletID(),
		string(e.Type()),
		e.Amount().Units(),
		e.Currency().Code(),
		e.BalanceBefore().Units(),
		e.BalanceAfter().Units(),
		string(e.Status()),
		e.IdempotencyKey(),
		metadata,
		e.CreatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "journal_entries_idempotency_key") {
			return domainerrors.New(domainerrors.KindConflict, "idempotency key already used")
		}
		if isForeignKeyViolation(err) {
			return domainerrors.New(domainerrors.KindNotFound, "wallet not found")
		}
		return domainerrors.Internal("failed to insert journal entry", err)
	}
	return nil
}

// FindByIdempotencyKey returns the entry carrying key.
func (r *JournalRepository) FindByIdempotencyKey(ctx context.Context, key string) (*entities.JournalEntry, error) {
	q := querierFrom(ctx, r.pool)
	row := q.QueryRow(ctx,
		`SELECT `+journalColumns+` FROM journal_entries WHERE idempotency_key = $1`, key)
	return scanJournalEntry(row)
}

// FindByTransferID returns both legs of a transfer via the transfer_id in
// their metadata, debit leg first.
func (r *JournalRepository) FindByTransferID(ctx context.Context, transferID string) ([]*entities.JournalEntry, error) {
	q := querierFrom(ctx, r.pool)

	rows, err := q.Query(ctx,
		`SELECT `+journalColumns+` FROM journal_entries
		 WHERE metadata->>'transfer_id' = $1
		 ORDER BY type = 'transfer_debit' DESC`, transferID)
	if err != nil {
		return nil, domainerrors.Internal("failed to query transfer legs", err)
	}
	defer rows.Close()

	return scanJournalEntries(rows)
}

// ListByWallet reads a filtered page of a wallet's journal, newest first.
func (r *JournalRepository) ListByWallet(ctx context.Context, walletID uuid.UUID, filter ports.JournalFilter, offset, limit int) ([]*entities.JournalEntry, error) {
	q := querierFrom(ctx, r.pool)

	query := `SELECT ` + journalColumns + ` FROM journal_entries WHERE wallet_id = $1`
	args := []any{walletID}
	query, args = applyJournalFilter(query, args, filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC OFFSET $%d LIMIT $%d", len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, domainerrors.Internal("failed to list journal entries", err)
	}
	defer rows.Close()

	return scanJournalEntries(rows)
}

// CountByWallet counts the entries ListByWallet would return unpaginated.
func (r *JournalRepository) CountByWallet(ctx context.Context, walletID uuid.UUID, filter ports.JournalFilter) (int64, error) {
	q := querierFrom(ctx, r.pool)

	query := `SELECT COUNT(*) FROM journal_entries WHERE wallet_id = $1`
	args := []any{walletID}
	query, args = applyJournalFilter(query, args, filter)

	var count int64
	if err := q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, domainerrors.Internal("failed to count journal entries", err)
	}
	return count, nil
}

// applyJournalFilter appends the optional type and half-open [from, to)
// date-range predicates.
func applyJournalFilter(query string, args []any, filter ports.JournalFilter) (string, []any) {
	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	return query, args
}

func scanJournalEntry(row pgx.Row) (*entities.JournalEntry, error) {
	var (
		id, walletID       uuid.UUID
		relatedWalletID    *uuid.UUID
		entryType, status  string
		amountUnits        int64
		currencyCode       string
		beforeUnits        int64
		afterUnits         int64
		idempotencyKey     *string
		metadataRaw        []byte
		createdAt          time.Time
	)

	err := row.Scan(&id, &walletID, &relatedWalletID, &entryType, &amountUnits, &currencyCode,
		&beforeUnits, &afterUnits, &status, &idempotencyKey, &metadataRaw, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainerrors.New(domainerrors.KindNotFound, "journal entry not found")
		}
		return nil, domainerrors.Internal("failed to scan journal entry", err)
	}

	currency, err := valueobjects.NewCurrency(currencyCode)
	if err != nil {
		return nil, domainerrors.Internal(fmt.Sprintf("invalid currency %q in database", currencyCode), err)
	}
	amount, err := valueobjects.AmountFromUnits(amountUnits)
	if err != nil {
		return nil, domainerrors.Internal("invalid amount in database", err)
	}
	before, err := valueobjects.AmountFromUnits(beforeUnits)
	if err != nil {
		return nil, domainerrors.Internal("invalid balance_before in database", err)
	}
	after, err := valueobjects.AmountFromUnits(afterUnits)
	if err != nil {
		return nil, domainerrors.Internal("invalid balance_after in database", err)
	}

	var metadata map[string]string
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &metadata); err != nil {
			return nil, domainerrors.Internal("failed to unmarshal journal metadata", err)
		}
	}

	return entities.ReconstructJournalEntry(
		id, walletID, relatedWalletID,
		entities.EntryType(entryType),
		amount, currency, before, after,
		entities.EntryStatus(status),
		idempotencyKey, metadata, createdAt,
	), nil
}

func scanJournalEntries(rows pgx.Rows) ([]*entities.JournalEntry, error) {
	var out []*entities.JournalEntry
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Internal("error iterating journal rows", err)
	}
	return out, nil
}
