// Package ports - EventPublisher and the transactional outbox contract.
//
// Pattern: Publisher/Subscriber (Observer at the infrastructure boundary) +
// Transactional Outbox.
package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/wallethub/walletcore/internal/domain/events"
)

// EventPublisher publishes domain events to the message broker. Command
// handlers never call this directly — they call OutboxRepository.Save in
// the same unit of work as the business change; C8's pump is the only
// caller of EventPublisher.
type EventPublisher interface {
	// Publish delivers one record. At-least-once: consumers must be
	// idempotent by eventId.
	Publish(ctx context.Context, record OutboxRecord) error
}

// OutboxRecord is one row of the outbox table (C5), the unit C8 reads,
// publishes, and marks processed.
type OutboxRecord struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   uuid.UUID
	EventType     string
	EventVersion  int
	Payload       json.RawMessage
	CreatedAt     time.Time
	ProcessedAt   *time.Time
}

// OutboxRepository is the Transactional Outbox pattern's persistence
// contract. It solves "how do we guarantee an event publishes if and only
// if the business transaction that produced it committed?":
//
//  1. The same DB transaction that mutates the wallet/transaction rows also
//     inserts into outbox_events (Save).
//  2. A separate process (C8) polls unpublished rows and publishes them.
//  3. Each successful publish conditionally marks the row processed.
//
// This gives at-least-once delivery with per-aggregate ordering.
type OutboxRepository interface {
	// Save inserts event as an outbox row. Must run in the same unit of
	// work as the business mutation it records.
	Save(ctx context.Context, event events.DomainEvent) error

	// ClaimUnprocessed returns up to limit unprocessed rows ordered by
	// (created_at, id), using a locking read (FOR UPDATE SKIP LOCKED) so
	// multiple publisher processes can poll concurrently without
	// double-claiming the same row.
	ClaimUnprocessed(ctx context.Context, limit int) ([]OutboxRecord, error)

	// MarkProcessed conditionally marks id processed; a caller whose claim
	// has since been taken by another publisher observes no rows affected
	// and should treat that as a no-op, not an error.
	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error
}
