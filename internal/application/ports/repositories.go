// Package ports defines the interfaces the application layer depends on.
// Infrastructure implements them — Postgres today, anything else tomorrow.
//
// Pattern: Repository Pattern + Ports & Adapters (Hexagonal Architecture)
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wallethub/walletcore/internal/domain/entities"
)

// WalletRepository is the write-store contract for the Wallet aggregate.
type WalletRepository interface {
	WalletReader

	// Save persists a wallet. An insert when Version()==0 on first save,
	// otherwise a conditional update guarded by the stored version —
	// implementations must return a *errors.ConcurrencyError when the
	// guard doesn't match any row (I2's optimistic-lock enforcement).
	Save(ctx context.Context, wallet *entities.Wallet) error

	// FindByUserID returns every wallet owned by userID.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error)
}

// WalletFilter narrows a List query.
type WalletFilter struct {
	UserID *uuid.UUID
	Status *entities.WalletStatus
}

// WalletReader is the read-side subset of WalletRepository: everything
// GetWalletUseCase and ListWalletsUseCase need, and nothing a read-replica
// repository (which never accepts writes — the projector is its only
// writer, through ReadModelRepository) would have to fake to satisfy.
// WalletRepository embeds it, so any write-store implementation already
// qualifies as a WalletReader too.
type WalletReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)
	List(ctx context.Context, filter WalletFilter, offset, limit int) ([]*entities.Wallet, error)
}

// TransactionRepository is the write-store contract for the Transaction
// ledger.
type TransactionRepository interface {
	// Save persists a transaction. Implementations must enforce the unique
	// (walletId, referenceId) constraint (I4) and surface a conflict as
	// errors.ErrDuplicateReference when the stored amount/type differ from
	// the attempted replay.
	Save(ctx context.Context, tx *entities.Transaction) error

	FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)

	// FindByWalletAndReference backs the idempotency check every command
	// handler performs before doing any work (§4.1's replay rule).
	FindByWalletAndReference(ctx context.Context, walletID uuid.UUID, referenceID string) (*entities.Transaction, error)

	FindByWalletID(ctx context.Context, walletID uuid.UUID, offset, limit int) ([]*entities.Transaction, error)

	List(ctx context.Context, filter TransactionFilter, offset, limit int) ([]*entities.Transaction, error)
}

// TransactionFilter narrows a List query.
type TransactionFilter struct {
	WalletID *uuid.UUID
	Type     *entities.TransactionType
	Status   *entities.TransactionStatus
}

// TransactionHistoryEntry is one row of the append-only balance ledger read
// side (C10's GetHistoricalBalance leans on it).
type TransactionHistoryEntry struct {
	WalletID      uuid.UUID
	TransactionID uuid.UUID
	BalanceAfter  string // decimal string at valueobjects.Scale
	RecordedAt    time.Time
}

// TransactionHistoryRepository is the read-store contract for historical
// balance lookups.
type TransactionHistoryRepository interface {
	// Append records the wallet's balance immediately after applying one
	// transaction. Called by the projector (C9), idempotent per
	// transaction id.
	Append(ctx context.Context, entry TransactionHistoryEntry) error

	// BalanceAsOf returns the most recent entry at or before asOf, or
	// errors.ErrEntityNotFound if the wallet had no history yet at asOf.
	BalanceAsOf(ctx context.Context, walletID uuid.UUID, asOf time.Time) (TransactionHistoryEntry, error)
}
