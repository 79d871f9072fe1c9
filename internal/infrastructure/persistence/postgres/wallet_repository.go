// Package postgres - WalletRepository implementation with optimistic locking.
package postgres

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

var _ ports.WalletRepository = (*WalletRepository)(nil)

// WalletRepository implements ports.WalletRepository against the write
// store. Balance is stored as BIGINT scaled by 10^valueobjects.Scale;
// optimistic locking is enforced through the balance_version column.
type WalletRepository struct {
	pool *pgxpool.Pool
}

func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

func (r *WalletRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Save inserts a brand-new wallet (version 0) or conditionally updates an
// existing one, guarded by the previously-observed version (I2).
func (r *WalletRepository) Save(ctx context.Context, wallet *entities.Wallet) error {
	q := r.getQuerier(ctx)

	if wallet.Version() == 0 {
		return r.insert(ctx, q, wallet)
	}
	return r.update(ctx, q, wallet)
}

func (r *WalletRepository) insert(ctx context.Context, q querier, wallet *entities.Wallet) error {
	query := `
		INSERT INTO wallets (id, user_id, status, balance, balance_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.Exec(ctx, query,
		wallet.ID(),
		wallet.UserID(),
		string(wallet.Status()),
		wallet.Balance().ScaledInt(),
		wallet.Version(),
		wallet.CreatedAt(),
		wallet.UpdatedAt(),
	)

	if err != nil {
		if isUniqueViolation(err, "") {
			return domainErrors.NewDomainError(
				domainErrors.KindValidation,
				"WALLET_ALREADY_EXISTS",
				"wallet already exists",
				err,
			)
		}
		return fmt.Errorf("failed to insert wallet: %w", err)
	}

	return nil
}

// update applies the conditional, optimistic-locked write. wallet.Version()
// already reflects the post-mutation value the caller wants to persist, so
// the WHERE guard checks against version-1.
func (r *WalletRepository) update(ctx context.Context, q querier, wallet *entities.Wallet) error {
	query := `
		UPDATE wallets SET
			status = $2,
			balance = $3,
			balance_version = $4,
			updated_at = $5
		WHERE id = $1 AND balance_version = $6
	`

	expectedVersion := wallet.Version() - 1

	result, err := q.Exec(ctx, query,
		wallet.ID(),
		string(wallet.Status()),
		wallet.Balance().ScaledInt(),
		wallet.Version(),
		wallet.UpdatedAt(),
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domainErrors.NewConcurrencyError(
			"Wallet",
			wallet.ID().String(),
			fmt.Sprintf("wallet was modified by another transaction (expected version: %d)", expectedVersion),
		)
	}

	return nil
}

func (r *WalletRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, user_id, status, balance, balance_version, created_at, updated_at
		FROM wallets
		WHERE id = $1
	`

	return r.scanWallet(q.QueryRow(ctx, query, id))
}

func (r *WalletRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, user_id, status, balance, balance_version, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find wallets by user: %w", err)
	}
	defer rows.Close()

	return r.scanWallets(rows)
}

func (r *WalletRepository) List(ctx context.Context, filter ports.WalletFilter, offset, limit int) ([]*entities.Wallet, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, user_id, status, balance, balance_version, created_at, updated_at
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

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	return r.scanWallets(rows)
}

func (r *WalletRepository) scanWallet(row pgx.Row) (*entities.Wallet, error) {
	var (
		id, userID     uuid.UUID
		statusStr      string
		balanceScaled  int64
		version        int64
		createdAt      time.Time
		updatedAt      time.Time
	)

	err := row.Scan(&id, &userID, &statusStr, &balanceScaled, &version, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to scan wallet: %w", err)
	}

	wallet := entities.ReconstructWallet(
		id,
		userID,
		entities.WalletStatus(statusStr),
		valueobjects.NewMoneyFromScaledInt(balanceScaled),
		version,
		createdAt,
		updatedAt,
	)

	return wallet, nil
}

func (r *WalletRepository) scanWallets(rows pgx.Rows) ([]*entities.Wallet, error) {
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
			return nil, fmt.Errorf("failed to scan wallet row: %w", err)
		}

		wallets = append(wallets, entities.ReconstructWallet(
			id,
			userID,
			entities.WalletStatus(statusStr),
			valueobjects.NewMoneyFromScaledInt(balanceScaled),
			version,
			createdAt,
			updatedAt,
		))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet rows: %w", err)
	}

	return wallets, nil
}
