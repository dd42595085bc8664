package postgres

import (
	"context"
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

var _ ports.WalletRepository = (*WalletRepository)(nil)

// WalletRepository implements ports.WalletRepository.
//
// Balances are stored as BIGINT in 10^-4 units, matching
// valueobjects.Amount. Row locks come from SELECT ... FOR UPDATE and live
// for the duration of the surrounding transaction.
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository creates the repository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

const walletColumns = `id, user_id, balance_units, currency, status, created_at, updated_at, version`

// Create inserts a new wallet row.
func (r *WalletRepository) Create(ctx context.Context, w *entities.Wallet) error {
	q := querierFrom(ctx, r.pool)

	query := `
		INSERT INTO wallets (id, user_id, balance_units, currency, status, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q.Exec(ctx, query,
		w.ID(),
		w.UserID(),
		w.Balance().Units(),
		w.Currency().Code(),
		string(w.Status()),
		w.CreatedAt(),
		w.UpdatedAt(),
		w.Version(),
	)
	if err != nil {
		if isUniqueViolation(err, "wallets_user_currency_key") {
			return domainerrors.Newf(domainerrors.KindConflict,
				"wallet for user %s in %s already exists", w.UserID(), w.Currency().Code()).
				WithDetails(map[string]any{
					"user_id":  w.UserID(),
					"currency": w.Currency().Code(),
				})
		}
		return domainerrors.Internal("failed to insert wallet", err)
	}
	return nil
}

// FindByID loads a wallet without locking.
func (r *WalletRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	q := querierFrom(ctx, r.pool)
	row := q.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id)
	return scanWallet(row)
}

// LockByID loads a wallet under a row write lock. Must run inside a
// UnitOfWork transaction.
func (r *WalletRepository) LockByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	if !hasTx(ctx) {
		return nil, domainerrors.Internal("LockByID requires a transaction", nil)
	}
	q := querierFrom(ctx, r.pool)
	row := q.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`, id)
	return scanWallet(row)
}

// LockPair locks two wallets in ascending id order. Sorting before the
// SELECT renders the global lock order total: concurrent A->B and B->A
// transfers take the same lock order and cannot deadlock.
func (r *WalletRepository) LockPair(ctx context.Context, a, b uuid.UUID) (map[uuid.UUID]*entities.Wallet, error) {
	if !hasTx(ctx) {
		return nil, domainerrors.Internal("LockPair requires a transaction", nil)
	}
	if a == b {
		return nil, domainerrors.New(domainerrors.KindInvalidTransfer, "cannot lock the same wallet twice")
	}

	first, second := a, b
	if second.String() < first.String() {
		first, second = second, first
	}

	q := querierFrom(ctx, r.pool)
	rows, err := q.Query(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE id = ANY($1) ORDER BY id FOR UPDATE`,
		[]uuid.UUID{first, second},
	)
	if err != nil {
		return nil, domainerrors.Internal("failed to lock wallet pair", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*entities.Wallet, 2)
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		out[w.ID()] = w
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Internal("error iterating wallet rows", err)
	}
	return out, nil
}

// UpdateBalance writes the mutated balance, status, version and updated_at
// back. The caller holds the row lock.
func (r *WalletRepository) UpdateBalance(ctx context.Context, w *entities.Wallet) error {
	q := querierFrom(ctx, r.pool)

	query := `
		UPDATE wallets
		SET balance_units = $2, status = $3, version = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		w.ID(),
		w.Balance().Units(),
		string(w.Status()),
		w.Version(),
		w.UpdatedAt(),
	)
	if err != nil {
		if isCheckViolation(err) {
			return domainerrors.New(domainerrors.KindInsufficientFunds, "balance would go negative")
		}
		return domainerrors.Internal("failed to update wallet balance", err)
	}
	if tag.RowsAffected() == 0 {
		return domainerrors.Newf(domainerrors.KindNotFound, "wallet %s not found", w.ID())
	}
	return nil
}

// scanWallet hydrates one wallet row.
func scanWallet(row pgx.Row) (*entities.Wallet, error) {
	var (
		id                   uuid.UUID
		userID               string
		balanceUnits         int64
		currencyCode, status string
		createdAt, updatedAt time.Time
		version              int64
	)

	err := row.Scan(&id, &userID, &balanceUnits, &currencyCode, &status, &createdAt, &updatedAt, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainerrors.New(domainerrors.KindNotFound, "wallet not found")
		}
		return nil, domainerrors.Internal("failed to scan wallet", err)
	}

	currency, err := valueobjects.NewCurrency(currencyCode)
	if err != nil {
		return nil, domainerrors.Internal(fmt.Sprintf("invalid currency %q in database", currencyCode), err)
	}
	balance, err := valueobjects.AmountFromUnits(balanceUnits)
	if err != nil {
		return nil, domainerrors.Internal("invalid balance in database", err)
	}

	return entities.ReconstructWallet(
		id, userID, balance, currency,
		entities.WalletStatus(status),
		createdAt, updatedAt, version,
	), nil
}
