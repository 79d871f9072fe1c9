package postgresread

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wallethub/walletcore/internal/application/ports"
)

var _ ports.ProcessedEventStore = (*ProcessedEventStore)(nil)

// ProcessedEventStore backs the projector's idempotency guard (P6) with a
// dedup table on the read store: one row per applied outbox event id.
type ProcessedEventStore struct {
	pool *pgxpool.Pool
}

func NewProcessedEventStore(pool *pgxpool.Pool) *ProcessedEventStore {
	return &ProcessedEventStore{pool: pool}
}

// MarkProcessed attempts to insert eventID. ON CONFLICT DO NOTHING makes the
// claim atomic: only the first caller for a given id sees RowsAffected==1.
func (s *ProcessedEventStore) MarkProcessed(ctx context.Context, eventID uuid.UUID) (bool, error) {
	result, err := s.pool.Exec(ctx, `
		INSERT INTO processed_events (event_id, processed_at)
		VALUES ($1, now())
		ON CONFLICT (event_id) DO NOTHING
	`, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to record processed event %s: %w", eventID, err)
	}
	return result.RowsAffected() == 1, nil
}
