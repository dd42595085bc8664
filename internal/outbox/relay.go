// Package outbox drains the transactional outbox into the event log.
//
// The relay polls for unpublished entries in sequence order and publishes
// them one by one. An entry is marked published only after the log
// acknowledges it, so delivery is at-least-once; consumers deduplicate by
// transaction id. A publish failure skips that entry and the rest of the
// batch still goes out, so one poison payload never starves the queue.
package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Haleralex/ledgerhub/internal/application/ports"
	"github.com/Haleralex/ledgerhub/internal/pkg/tracing"
)

var (
	publishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledgerhub_outbox_published_total",
		Help: "Outbox entries successfully published to the event log.",
	})
	publishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledgerhub_outbox_publish_failures_total",
		Help: "Outbox publish attempts that failed and will be retried.",
	})
)

// Relay is the background publisher. One instance runs per process; the
// MarkPublished guard makes concurrent relays safe, just wasteful.
type Relay struct {
	outbox   ports.OutboxRepository
	log      ports.EventLog
	logger   *slog.Logger
	tracer   trace.Tracer
	interval time.Duration
	batch    int
}

// NewRelay creates a relay polling every interval, up to batch entries per
// tick.
func NewRelay(outbox ports.OutboxRepository, log ports.EventLog, logger *slog.Logger, interval time.Duration, batch int) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &Relay{
		outbox:   outbox,
		log:      log,
		logger:   logger,
		tracer:   tracing.Tracer("outbox.relay"),
		interval: interval,
		batch:    batch,
	}
}

// Run polls until ctx is cancelled. It drains once immediately so restarts
// pick up backlog without waiting a full interval, then returns ctx.Err()
// on shutdown. In-flight batches finish at the next entry boundary.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.drain(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

// drain publishes one batch. Errors are logged and retried next tick.
func (r *Relay) drain(ctx context.Context) {
	entries, err := r.outbox.FetchUnpublished(ctx, r.batch)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to fetch outbox batch", slog.String("error", err.Error()))
		return
	}
	if len(entries) == 0 {
		return
	}

	ctx, span := r.tracer.Start(ctx, "outbox.drain",
		trace.WithAttributes(attribute.Int("outbox.batch_size", len(entries))))
	defer span.End()

	published := make([]int64, 0, len(entries))
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		seq, err := r.log.Append(ctx, e.Payload)
		if err != nil {
			// The entry stays unpublished and retries next tick; the rest
			// of the batch still publishes.
			publishFailures.Inc()
			r.logger.ErrorContext(ctx, "failed to publish outbox entry",
				slog.Int64("outbox_seq", e.Seq),
				slog.String("event_type", e.EventType),
				slog.String("error", err.Error()),
			)
			continue
		}
		published = append(published, e.Seq)
		r.logger.DebugContext(ctx, "published outbox entry",
			slog.Int64("outbox_seq", e.Seq),
			slog.String("event_type", e.EventType),
			slog.String("log_seq", seq),
		)
	}
	if len(published) == 0 {
		return
	}

	if err := r.outbox.MarkPublished(ctx, published); err != nil {
		// Entries will be re-published next tick; consumers dedupe.
		r.logger.ErrorContext(ctx, "failed to mark outbox entries published",
			slog.Int("count", len(published)),
			slog.String("error", err.Error()),
		)
		return
	}
	publishedTotal.Add(float64(len(published)))
}
