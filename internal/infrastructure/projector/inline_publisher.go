package projector

import (
	"context"

	"github.com/wallethub/walletcore/internal/application/ports"
)

var _ ports.EventPublisher = (*InlinePublisher)(nil)

// InlinePublisher is the ports.EventPublisher adapter for Projector.Mode ==
// "inline": the pump applies each outbox record to the read store directly,
// in the same process, instead of round-tripping through NATS. Suitable for
// single-instance deployments where a broker is unnecessary operational
// overhead.
type InlinePublisher struct {
	projector *Projector
}

func NewInlinePublisher(projector *Projector) *InlinePublisher {
	return &InlinePublisher{projector: projector}
}

func (p *InlinePublisher) Publish(ctx context.Context, record ports.OutboxRecord) error {
	return p.projector.Apply(ctx, record)
}
