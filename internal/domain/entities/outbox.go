// Package entities - OutboxEntry is a pending event publication, co-written
// with its journal entry in the same database transaction and drained
// asynchronously by the relay. Rows are never deleted; published flips to
// true at most once.
package entities

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEntry carries one event payload awaiting publication to the event
// log. Seq is issued by the store inside the committing transaction, so seq
// order equals journal commit order within a wallet.
type OutboxEntry struct {
	Seq         int64
	EventType   string
	AggregateID uuid.UUID
	Payload     []byte
	Published   bool
	PublishedAt *time.Time
	CreatedAt   time.Time
}

// NewOutboxEntry builds an unpublished entry; Seq is assigned on insert.
func NewOutboxEntry(eventType string, aggregateID uuid.UUID, payload []byte) *OutboxEntry {
	return &OutboxEntry{
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		CreatedAt:   time.Now().UTC(),
	}
}
