// Package postgresread - the wallet projection table the projector
// maintains and GetWallet/ListWallets read.
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
	"github.com/wallethub/walletcore/internal/domain/entities"
	domainErrors "github.com/wallethub/walletcore/internal/domain/errors"
	"github.com/wallethub/walletcore/internal/domain/valueobjects"
)

var _ ports.ReadModelRepository = (*WalletReadRepository)(nil)

// WalletReadRepository is the projector's only writer into the read
// store's wallets table, and the reader used to answer queries that don't
// need write-store strong consistency.
type WalletReadRepository struct {
	pool *pgxpool.Pool
}

func NewWalletReadRepository(pool *pgxpool.Pool) *WalletReadRepository {
	return &WalletReadRepository{pool: pool}
}

// UpsertWallet inserts or fully overwrites the wallet row keyed by ID. The
// projector only ever calls this for WALLET_CREATED, so a conflict target
// on id is sufficient — a replayed create is a no-op update to identical
// values.
func (r *WalletReadRepository) UpsertWallet(ctx context.Context, wallet ports.ReadWallet) error {
	money, err := valueobjects.NewMoney(wallet.Balance)
	if err != nil {
		return fmt.Errorf("invalid balance %q: %w", wallet.Balance, err)
	}

	query := `
		INSERT INTO wallets (id, user_id, status, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			balance = EXCLUDED.balance,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.pool.Exec(ctx, query,
		wallet.ID,
		wallet.UserID,
		string(wallet.Status),
		money.ScaledInt(),
		wallet.Version,
		wallet.CreatedAt,
		wallet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert read-store wallet: %w", err)
	}
	return nil
}

// UpdateBalance applies a balance change to an already-projected wallet.
func (r *WalletReadRepository) UpdateBalance(ctx context.Context, walletID uuid.UUID, balance string, version int64, updatedAt time.Time) error {
	money, err := valueobjects.NewMoney(balance)
	if err != nil {
		return fmt.Errorf("invalid balance %q: %w", balance, err)
	}

	query := `
		UPDATE wallets SET balance = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, walletID, money.ScaledInt(), updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update read-store balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domainErrors.ErrWalletNotFound
	}
	return nil
}

// FindByID serves read-path wallet lookups directly from the projection,
// bypassing the write store entirely.
func (r *WalletReadRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	query := `
		SELECT id, user_id, status, balance, version, created_at, updated_at
		FROM wallets
		WHERE id = $1
	`
	return r.scanWallet(r.pool.QueryRow(ctx, query, id))
}

// FindByUserID returns every projected wallet owned by userID.
func (r *WalletReadRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	query := `
		SELECT id, user_id, status, balance, version, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find read-store wallets by user: %w", err)
	}
	defer rows.Close()
	return r.scanWallets(rows)
}

// List serves the paginated wallet browse endpoint from the projection.
func (r *WalletReadRepository) List(ctx context.Context, filter ports.WalletFilter, offset, limit int) ([]*entities.Wallet, error) {
	query := `
		SELECT id, user_id, status, balance, version, created_at, updated_at
		FROM wallets
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", argNum)
		args = append(args, *filter.UserID)
		argNum++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(*filter.Status))
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC OFFSET $%d LIMIT $%d", argNum, argNum+1)
	args = append(args, offset, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list read-store wallets: %w", err)
	}
	defer rows.Close()
	return r.scanWallets(rows)
}

func (r *WalletReadRepository) scanWallet(row pgx.Row) (*entities.Wallet, error) {
	var (
		id, userID    uuid.UUID
		statusStr     string
		balanceScaled int64
		version       int64
		createdAt     time.Time
		updatedAt     time.Time
	)

	if err := row.Scan(&id, &userID, &statusStr, &balanceScaled, &version, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to scan read-store wallet: %w", err)
	}

	return entities.ReconstructWallet(
		id, userID,
		entities.WalletStatus(statusStr),
		valueobjects.NewMoneyFromScaledInt(balanceScaled),
		version, createdAt, updatedAt,
	), nil
}

func (r *WalletReadRepository) scanWallets(rows pgx.Rows) ([]*entities.Wallet, error) {
	var wallets []*entities.Wallet
	for rows.Next() {
		var (
			id, userID    uuid.UUID
			statusStr     string
			balanceScaled int64
			version       int64
			createdAt     time.Time
			updatedAt     time.Time
		)
		if err := rows.Scan(&id, &userID, &statusStr, &balanceScaled, &version, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan read-store wallet row: %w", err)
		}
		wallets = append(wallets, entities.ReconstructWallet(
			id, userID,
			entities.WalletStatus(statusStr),
			valueobjects.NewMoneyFromScaledInt(balanceScaled),
			version, createdAt, updatedAt,
		))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating read-store wallet rows: %w", err)
	}
	return wallets, nil
}
