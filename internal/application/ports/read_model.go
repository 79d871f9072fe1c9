// Package ports - the projector's (C9) write-side contract against the
// read store.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wallethub/walletcore/internal/domain/entities"
)

// ReadWallet is the read store's denormalized wallet projection. Unlike
// entities.Wallet, it carries no optimistic-lock enforcement — the
// projector is the read store's only writer, applying events strictly in
// per-aggregate order, so last-write-wins is sufficient.
type ReadWallet struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Status    entities.WalletStatus
	Balance   string // decimal string at valueobjects.Scale
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReadModelRepository is the projector's write-side contract against the
// read store.
type ReadModelRepository interface {
	// UpsertWallet inserts or overwrites the wallet row keyed by ID.
	UpsertWallet(ctx context.Context, wallet ReadWallet) error

	// UpdateBalance applies a balance/version change to an existing wallet
	// row. Returns errors.ErrWalletNotFound if the row doesn't exist yet —
	// that indicates WALLET_CREATED hasn't been projected, a strictly
	// earlier event for the same aggregate, and the caller should not
	// silently skip it.
	UpdateBalance(ctx context.Context, walletID uuid.UUID, balance string, version int64, updatedAt time.Time) error
}

// ProcessedEventStore is the projector's idempotency guard (P6): each
// outbox event id is applied to the read store at most once, even though
// delivery is at-least-once.
type ProcessedEventStore interface {
	// MarkProcessed attempts to claim eventID. claimed is true only for the
	// first caller to successfully insert the id — a duplicate delivery
	// observes claimed=false and the caller should skip re-applying.
	MarkProcessed(ctx context.Context, eventID uuid.UUID) (claimed bool, err error)
}
