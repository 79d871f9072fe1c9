// Package projector implements C9: it applies WALLET_CREATED,
// FUNDS_DEPOSITED, FUNDS_WITHDRAWN, and FUNDS_TRANSFERRED onto the read
// store's wallet projection, the wallet cache (C4), and the
// transaction_history ledger C10's GetHistoricalBalance reads from.
//
// Every Apply is idempotent per event id via ProcessedEventStore — at
// least one delivery (NATS, or a direct inline call) may replay the same
// event, and re-applying it must be a no-op.
package projector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/wallethub/walletcore/internal/application/ports"
	"github.com/wallethub/walletcore/internal/domain/entities"
	"github.com/wallethub/walletcore/internal/domain/events"
)

// Projector applies outbox events onto the read store.
type Projector struct {
	readModel ports.ReadModelRepository
	history   ports.TransactionHistoryRepository
	processed ports.ProcessedEventStore
	cache     ports.WalletCache // optional; nil disables cache invalidation
	metrics   *Metrics          // optional; nil disables lag recording
	logger    *slog.Logger
}

func New(readModel ports.ReadModelRepository, history ports.TransactionHistoryRepository, processed ports.ProcessedEventStore, cache ports.WalletCache, logger *slog.Logger) *Projector {
	return &Projector{readModel: readModel, history: history, processed: processed, cache: cache, logger: logger}
}

// WithMetrics attaches the projection-lag gauge, returning the same
// Projector for chaining at construction time.
func (p *Projector) WithMetrics(metrics *Metrics) *Projector {
	p.metrics = metrics
	return p
}

// Apply applies one outbox record. Safe to call more than once per event id.
func (p *Projector) Apply(ctx context.Context, record ports.OutboxRecord) error {
	claimed, err := p.processed.MarkProcessed(ctx, record.ID)
	if err != nil {
		return fmt.Errorf("failed to check processed state for event %s: %w", record.ID, err)
	}
	if !claimed {
		p.logger.Debug("skipping already-processed event", slog.String("eventId", record.ID.String()))
		return nil
	}

	if p.metrics != nil {
		p.metrics.RecordLag(record.EventType, record.CreatedAt)
	}

	switch record.EventType {
	case events.EventTypeWalletCreated:
		return p.applyWalletCreated(ctx, record.Payload)
	case events.EventTypeFundsDeposited:
		return p.applyFundsDeposited(ctx, record.Payload)
	case events.EventTypeFundsWithdrawn:
		return p.applyFundsWithdrawn(ctx, record.Payload)
	case events.EventTypeFundsTransferred:
		return p.applyFundsTransferred(ctx, record.Payload)
	default:
		p.logger.Warn("unknown event type, skipping", slog.String("eventType", record.EventType))
		return nil
	}
}

func (p *Projector) applyWalletCreated(ctx context.Context, payload json.RawMessage) error {
	var e events.WalletCreatedV1
	if err := json.Unmarshal(payload, &e); err != nil {
		return fmt.Errorf("failed to decode WalletCreatedV1: %w", err)
	}

	if err := p.readModel.UpsertWallet(ctx, ports.ReadWallet{
		ID:        e.WalletID,
		UserID:    e.UserID,
		Status:    entities.WalletStatusActive,
		Balance:   "0.0000",
		Version:   1,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.CreatedAt,
	}); err != nil {
		return fmt.Errorf("failed to upsert read-store wallet %s: %w", e.WalletID, err)
	}

	// Genesis row so BalanceAsOf(t) for any t >= creation but before the
	// first transaction resolves to 0 instead of NOT_FOUND. Keyed by the
	// nil UUID, which no real transaction can ever collide with.
	if err := p.history.Append(ctx, ports.TransactionHistoryEntry{
		WalletID:      e.WalletID,
		TransactionID: uuid.Nil,
		BalanceAfter:  "0.0000",
		RecordedAt:    e.CreatedAt,
	}); err != nil {
		return fmt.Errorf("failed to append genesis transaction history for wallet %s: %w", e.WalletID, err)
	}

	return nil
}

func (p *Projector) applyFundsDeposited(ctx context.Context, payload json.RawMessage) error {
	var e events.FundsDepositedV1
	if err := json.Unmarshal(payload, &e); err != nil {
		return fmt.Errorf("failed to decode FundsDepositedV1: %w", err)
	}
	return p.applyBalanceChange(ctx, e.WalletID, e.TransactionID, e.BalanceAfter, e.OccurredAt)
}

func (p *Projector) applyFundsWithdrawn(ctx context.Context, payload json.RawMessage) error {
	var e events.FundsWithdrawnV1
	if err := json.Unmarshal(payload, &e); err != nil {
		return fmt.Errorf("failed to decode FundsWithdrawnV1: %w", err)
	}
	return p.applyBalanceChange(ctx, e.WalletID, e.TransactionID, e.BalanceAfter, e.OccurredAt)
}

func (p *Projector) applyFundsTransferred(ctx context.Context, payload json.RawMessage) error {
	var e events.FundsTransferredV1
	if err := json.Unmarshal(payload, &e); err != nil {
		return fmt.Errorf("failed to decode FundsTransferredV1: %w", err)
	}

	if err := p.applyBalanceChange(ctx, e.WalletID, e.TransactionID, e.SourceBalanceAfter, e.OccurredAt); err != nil {
		return fmt.Errorf("failed to apply source-side transfer effect: %w", err)
	}
	if err := p.applyBalanceChange(ctx, e.DestinationWalletID, e.TransactionID, e.DestBalanceAfter, e.OccurredAt); err != nil {
		return fmt.Errorf("failed to apply destination-side transfer effect: %w", err)
	}
	return nil
}

// applyBalanceChange updates the read-store wallet row, appends a
// transaction_history entry, and invalidates any cached copy.
func (p *Projector) applyBalanceChange(ctx context.Context, walletID, transactionID uuid.UUID, balanceAfter string, occurredAt time.Time) error {
	if err := p.readModel.UpdateBalance(ctx, walletID, balanceAfter, 0, occurredAt); err != nil {
		return fmt.Errorf("failed to update read-store balance for wallet %s: %w", walletID, err)
	}

	if err := p.history.Append(ctx, ports.TransactionHistoryEntry{
		WalletID:      walletID,
		TransactionID: transactionID,
		BalanceAfter:  balanceAfter,
		RecordedAt:    occurredAt,
	}); err != nil {
		return fmt.Errorf("failed to append transaction history for wallet %s: %w", walletID, err)
	}

	if p.cache != nil {
		p.cache.Invalidate(ctx, walletID)
	}

	return nil
}

// durableConsumerName is shared by every projector replica: JetStream's
// queue-group semantics hand each message to exactly one replica within
// the group, so multiple replicas can run without double-processing a
// subject, relying on ProcessedEventStore only for redelivery after a
// crash.
const durableConsumerName = "walletcore-projector"

// Subscribe wires the projector to NATS in "nats" deployment mode, using a
// JetStream durable queue-group consumer across every subject this service
// publishes, so horizontally-scaled projector replicas share the stream.
func (p *Projector) Subscribe(conn *nats.Conn) (*nats.Subscription, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	sub, err := js.QueueSubscribe("walletcore.events.>", durableConsumerName, func(msg *nats.Msg) {
		var record ports.OutboxRecord
		if err := json.Unmarshal(msg.Data, &record); err != nil {
			p.logger.Error("failed to decode outbox record from NATS message", slog.Any("error", err))
			return
		}
		if err := p.Apply(context.Background(), record); err != nil {
			p.logger.Error("failed to apply projected event",
				slog.String("eventId", record.ID.String()),
				slog.String("eventType", record.EventType),
				slog.Any("error", err))
			return
		}
		if err := msg.Ack(); err != nil {
			p.logger.Warn("failed to ack projected event", slog.String("eventId", record.ID.String()), slog.Any("error", err))
		}
	}, nats.Durable(durableConsumerName), nats.ManualAck())
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to event subjects: %w", err)
	}
	return sub, nil
}
