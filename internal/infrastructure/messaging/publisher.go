// Package messaging implements C8: a NATS-backed ports.EventPublisher and
// the ticker-driven pump that drains the outbox through it.
//
// Grounded on the outbox-worker shape common across the corpus
// (time.NewTicker + select on a stop channel, claim-then-mark-processed),
// adapted to the teacher's claim/mark split already present in
// OutboxRepository (FOR UPDATE SKIP LOCKED lets multiple publisher
// processes race safely).
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wallethub/walletcore/internal/application/ports"
)

var tracer = otel.Tracer("github.com/wallethub/walletcore/internal/infrastructure/messaging")

// subjectPrefix namespaces every published subject under this service.
const subjectPrefix = "walletcore.events"

// NATSEventPublisher is the ports.EventPublisher adapter for NATS. Every
// event for the same aggregate is published to the same subject, keyed by
// aggregateId, so a single NATS consumer observes them in order.
type NATSEventPublisher struct {
	conn *nats.Conn
}

var _ ports.EventPublisher = (*NATSEventPublisher)(nil)

func NewNATSEventPublisher(conn *nats.Conn) *NATSEventPublisher {
	return &NATSEventPublisher{conn: conn}
}

func subjectFor(aggregateType string, aggregateID fmt.Stringer) string {
	return fmt.Sprintf("%s.%s.%s", subjectPrefix, aggregateType, aggregateID)
}

// Publish delivers one outbox record to NATS. The wire format is the whole
// record, JSON-encoded — not just its Payload — so a subscriber (the
// projector, in C9's "nats" deployment mode) can recover the outbox row id
// to dedup against processed_events. The Nats-Msg-Id header carries the
// same id for broker-side dedup where JetStream is configured with a
// duplicate window.
func (p *NATSEventPublisher) Publish(ctx context.Context, record ports.OutboxRecord) error {
	subject := subjectFor(record.AggregateType, record.AggregateID)

	_, span := tracer.Start(ctx, "NATSEventPublisher.Publish",
		trace.WithAttributes(
			attribute.String("messaging.destination", subject),
			attribute.String("messaging.system", "nats"),
		),
	)
	defer span.End()

	data, err := json.Marshal(record)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to encode outbox record %s: %w", record.ID, err)
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{"Nats-Msg-Id": []string{record.ID.String()}},
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Pump is the background process that drains OutboxRepository through an
// EventPublisher on a fixed interval — spec.md §4.3's "single logical pump
// per process" (multiple processes may run Pump concurrently; the
// repository's FOR UPDATE SKIP LOCKED claim keeps them from double-sending).
type Pump struct {
	outboxRepo ports.OutboxRepository
	publisher  ports.EventPublisher
	logger     *slog.Logger
	metrics    *PumpMetrics // optional; nil disables metric recording

	interval  time.Duration
	batchSize int

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPump wires a Pump with the given interval and batchSize, used as-is
// (the config defaults of 5s and 100 follow spec.md §4.3).
func NewPump(outboxRepo ports.OutboxRepository, publisher ports.EventPublisher, interval time.Duration, batchSize int, logger *slog.Logger) *Pump {
	return &Pump{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		logger:     logger,
		interval:   interval,
		batchSize:  batchSize,
		stopCh:     make(chan struct{}),
	}
}

// WithMetrics attaches Prometheus counters, returning the same Pump for
// chaining at construction time.
func (p *Pump) WithMetrics(metrics *PumpMetrics) *Pump {
	p.metrics = metrics
	return p
}

// Start launches the background pump goroutine, polling every interval.
func (p *Pump) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.logger.Info("outbox pump started", slog.Duration("interval", p.interval), slog.Int("batchSize", p.batchSize))

		for {
			select {
			case <-p.stopCh:
				p.logger.Info("outbox pump stopping")
				return
			case <-ticker.C:
				if err := p.Drain(context.Background()); err != nil {
					p.logger.Warn("outbox pump cycle failed", slog.Any("error", err))
				}
			}
		}
	}()
}

// Stop signals the pump to exit and waits for its current tick to finish.
func (p *Pump) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()
}

// Drain claims up to batchSize unprocessed outbox rows, publishes each via
// the wired EventPublisher, and marks it processed. A publish failure for
// one record doesn't block the rest of the batch — it's left unprocessed
// for the next tick, relying on at-least-once delivery and the
// projector's idempotent dedup (processed_events).
func (p *Pump) Drain(ctx context.Context) error {
	records, err := p.outboxRepo.ClaimUnprocessed(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to claim unprocessed outbox records: %w", err)
	}

	for _, record := range records {
		if err := p.publisher.Publish(ctx, record); err != nil {
			if p.metrics != nil {
				p.metrics.RecordFailure(record.AggregateType)
			}
			p.logger.Warn("failed to publish outbox record",
				slog.String("outboxId", record.ID.String()),
				slog.Any("error", err))
			continue
		}
		if p.metrics != nil {
			p.metrics.RecordPublished(record.AggregateType)
		}

		if err := p.outboxRepo.MarkProcessed(ctx, record.ID, time.Now()); err != nil {
			p.logger.Warn("failed to mark outbox record processed",
				slog.String("outboxId", record.ID.String()),
				slog.Any("error", err))
		}
	}

	return nil
}
