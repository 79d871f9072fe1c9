package postgresread

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wallethub/walletcore/internal/application/ports"
	domainErrors "github.com/wallethub/walletcore/internal/domain/errors"
	"github.com/wallethub/walletcore/internal/domain/valueobjects"
)

var _ ports.TransactionHistoryRepository = (*TransactionHistoryRepository)(nil)

// TransactionHistoryRepository is the append-only balance ledger
// GetHistoricalBalance (C10) reads: one row per transaction applied to a
// wallet, carrying the balance immediately after.
type TransactionHistoryRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionHistoryRepository(pool *pgxpool.Pool) *TransactionHistoryRepository {
	return &TransactionHistoryRepository{pool: pool}
}

// Append records entry, ignoring a replayed (wallet_id, transaction_id)
// pair — the projector may retry the same event more than once before
// ProcessedEventStore's claim lands.
func (r *TransactionHistoryRepository) Append(ctx context.Context, entry ports.TransactionHistoryEntry) error {
	money, err := valueobjects.NewMoney(entry.BalanceAfter)
	if err != nil {
		return fmt.Errorf("invalid balanceAfter %q: %w", entry.BalanceAfter, err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO transaction_history (wallet_id, transaction_id, balance_after, recorded_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wallet_id, transaction_id) DO NOTHING
	`, entry.WalletID, entry.TransactionID, money.ScaledInt(), entry.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to append transaction history: %w", err)
	}
	return nil
}

// BalanceAsOf returns the latest entry at or before asOf for walletID.
func (r *TransactionHistoryRepository) BalanceAsOf(ctx context.Context, walletID uuid.UUID, asOf time.Time) (ports.TransactionHistoryEntry, error) {
	var (
		transactionID uuid.UUID
		balanceScaled int64
		recordedAt    time.Time
	)

	err := r.pool.QueryRow(ctx, `
		SELECT transaction_id, balance_after, recorded_at
		FROM transaction_history
		WHERE wallet_id = $1 AND recorded_at <= $2
		ORDER BY recorded_at DESC, transaction_id DESC
		LIMIT 1
	`, walletID, asOf).Scan(&transactionID, &balanceScaled, &recordedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ports.TransactionHistoryEntry{}, domainErrors.ErrEntityNotFound
		}
		return ports.TransactionHistoryEntry{}, fmt.Errorf("failed to query historical balance: %w", err)
	}

	return ports.TransactionHistoryEntry{
		WalletID:      walletID,
		TransactionID: transactionID,
		BalanceAfter:  valueobjects.NewMoneyFromScaledInt(balanceScaled).String(),
		RecordedAt:    recordedAt,
	}, nil
}
