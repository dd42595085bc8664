package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Haleralex/ledgerhub/internal/application/ports"
	"github.com/Haleralex/ledgerhub/internal/domain/entities"
	domainerrors "github.com/Haleralex/ledgerhub/internal/domain/errors"
)

var _ ports.OutboxRepository = (*OutboxRepository)(nil)

// OutboxRepository implements the transactional outbox. Append runs inside
// the money engine's transaction; the relay is the only caller of
// FetchUnpublished and MarkPublished. Rows are retained after publication
// for audit.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository creates the repository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// Append inserts an unpublished entry. The sequence is issued by the store
// inside the surrounding transaction, so within a wallet it follows journal
// commit order.
func (r *OutboxRepository) Append(ctx context.Context, e *entities.OutboxEntry) error {
	if !hasTx(ctx) {
		return domainerrors.Internal("outbox append requires a transaction", nil)
	}
	q := querierFrom(ctx, r.pool)

	query := `
		INSERT INTO outbox (event_type, aggregate_id, payload, published, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		RETURNING id
	`

	err := q.QueryRow(ctx, query, e.EventType, e.AggregateID, e.Payload, e.CreatedAt).Scan(&e.Seq)
	if err != nil {
		return domainerrors.Internal("failed to append outbox entry", err)
	}
	return nil
}

// FetchUnpublished returns the oldest unpublished entries in sequence order.
func (r *OutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]*entities.OutboxEntry, error) {
	q := querierFrom(ctx, r.pool)

	rows, err := q.Query(ctx, `
		SELECT id, event_type, aggregate_id, payload, published, published_at, created_at
		FROM outbox
		WHERE NOT published
		ORDER BY id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, domainerrors.Internal("failed to fetch unpublished outbox entries", err)
	}
	defer rows.Close()

	var out []*entities.OutboxEntry
	for rows.Next() {
		var e entities.OutboxEntry
		if err := rows.Scan(&e.Seq, &e.EventType, &e.AggregateID, &e.Payload, &e.Published, &e.PublishedAt, &e.CreatedAt); err != nil {
			return nil, domainerrors.Internal("failed to scan outbox entry", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Internal("error iterating outbox rows", err)
	}
	return out, nil
}

// MarkPublished flips the published flag for the given sequences in one
// bulk update. Already-published rows are left alone.
func (r *OutboxRepository) MarkPublished(ctx context.Context, seqs []int64) error {
	if len(seqs) == 0 {
		return nil
	}
	q := querierFrom(ctx, r.pool)

	_, err := q.Exec(ctx, `
		UPDATE outbox
		SET published = TRUE, published_at = $2
		WHERE id = ANY($1) AND NOT published
	`, seqs, time.Now().UTC())
	if err != nil {
		return domainerrors.Internal("failed to mark outbox entries published", err)
	}
	return nil
}
