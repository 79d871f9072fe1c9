// Package postgres - OutboxRepository implements the Transactional Outbox
// pattern (C5/C8):
//
//  1. The same DB transaction that mutates wallet/transaction rows also
//     inserts the domain event here (Save).
//  2. The publisher process (C8) polls unprocessed rows with a locking
//     read so multiple instances can run concurrently (ClaimUnprocessed).
//  3. Each successful publish conditionally marks the row processed
//     (MarkProcessed).
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wallethub/walletcore/internal/application/ports"
	"github.com/wallethub/walletcore/internal/domain/events"
)

var _ ports.OutboxRepository = (*OutboxRepository)(nil)

type OutboxRepository struct {
	pool *pgxpool.Pool
}

func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

func (r *OutboxRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func aggregateTypeFor(eventType string) string {
	switch eventType {
	case events.EventTypeWalletCreated:
		return "Wallet"
	default:
		return "Transaction"
	}
}

// Save inserts event as an unprocessed outbox row. Must run in the same
// unit of work as the business mutation it records.
func (r *OutboxRepository) Save(ctx context.Context, event events.DomainEvent) error {
	q := r.getQuerier(ctx)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	query := `
		INSERT INTO outbox_events (
			id, aggregate_type, aggregate_id, event_type, event_version,
			payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = q.Exec(ctx, query,
		uuid.New(),
		aggregateTypeFor(event.EventType()),
		event.AggregateID(),
		event.EventType(),
		event.EventVersion(),
		payload,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save event to outbox: %w", err)
	}

	return nil
}

// ClaimUnprocessed returns up to limit unprocessed rows ordered by
// (created_at, id), using FOR UPDATE SKIP LOCKED so concurrent publisher
// instances never double-claim the same row.
func (r *OutboxRepository) ClaimUnprocessed(ctx context.Context, limit int) ([]ports.OutboxRecord, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, aggregate_type, aggregate_id, event_type, event_version,
			   payload, created_at, processed_at
		FROM outbox_events
		WHERE processed_at IS NULL
		ORDER BY created_at ASC, id ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim outbox rows: %w", err)
	}
	defer rows.Close()

	var records []ports.OutboxRecord
	for rows.Next() {
		var rec ports.OutboxRecord
		if err := rows.Scan(
			&rec.ID, &rec.AggregateType, &rec.AggregateID, &rec.EventType,
			&rec.EventVersion, &rec.Payload, &rec.CreatedAt, &rec.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox rows: %w", err)
	}

	return records, nil
}

// MarkProcessed conditionally marks id processed. Zero rows affected means
// another publisher instance already claimed and processed it — a no-op,
// not an error.
func (r *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error {
	q := r.getQuerier(ctx)

	query := `
		UPDATE outbox_events
		SET processed_at = $2
		WHERE id = $1 AND processed_at IS NULL
	`

	_, err := q.Exec(ctx, query, id, processedAt)
	if err != nil {
		return fmt.Errorf("failed to mark outbox row processed: %w", err)
	}

	return nil
}
