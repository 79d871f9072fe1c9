// Package postgres - TransactionRepository implementation.
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

var _ ports.TransactionRepository = (*TransactionRepository)(nil)

// TransactionRepository implements ports.TransactionRepository. The
// write-store ledger is append-only: rows are inserted once and later
// transitioned PENDING -> COMPLETED|FAILED in place, never re-inserted.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func (r *TransactionRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Save inserts a new transaction or updates its status/failure_reason on an
// existing one. The unique (wallet_id, reference_id) constraint enforces I4.
func (r *TransactionRepository) Save(ctx context.Context, tx *entities.Transaction) error {
	q := r.getQuerier(ctx)

	query := `
		INSERT INTO transactions (
			id, wallet_id, destination_wallet_id, reference_id,
			transaction_type, status, amount, description,
			failure_reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			failure_reason = EXCLUDED.failure_reason
	`

	var failureReason *string
	if tx.FailureReason() != "" {
		fr := tx.FailureReason()
		failureReason = &fr
	}

	_, err := q.Exec(ctx, query,
		tx.ID(),
		tx.WalletID(),
		tx.DestinationWalletID(),
		tx.ReferenceID(),
		string(tx.Type()),
		string(tx.Status()),
		tx.Amount().ScaledInt(),
		tx.Description(),
		failureReason,
		tx.CreatedAt(),
	)

	if err != nil {
		if isUniqueViolation(err, "transactions_wallet_reference_unique") {
			return domainErrors.ErrDuplicateReference
		}
		if isForeignKeyViolation(err) {
			return domainErrors.ErrWalletNotFound
		}
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, wallet_id, destination_wallet_id, reference_id,
			   transaction_type, status, amount, description,
			   failure_reason, created_at
		FROM transactions
		WHERE id = $1
	`

	return r.scanTransaction(q.QueryRow(ctx, query, id))
}

// FindByWalletAndReference backs the idempotency replay check (§4.1): every
// command handler looks this up before doing any work.
func (r *TransactionRepository) FindByWalletAndReference(ctx context.Context, walletID uuid.UUID, referenceID string) (*entities.Transaction, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, wallet_id, destination_wallet_id, reference_id,
			   transaction_type, status, amount, description,
			   failure_reason, created_at
		FROM transactions
		WHERE wallet_id = $1 AND reference_id = $2
	`

	tx, err := r.scanTransaction(q.QueryRow(ctx, query, walletID, referenceID))
	if err != nil {
		if domainErrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	return tx, nil
}

func (r *TransactionRepository) FindByWalletID(ctx context.Context, walletID uuid.UUID, offset, limit int) ([]*entities.Transaction, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, wallet_id, destination_wallet_id, reference_id,
			   transaction_type, status, amount, description,
			   failure_reason, created_at
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`

	rows, err := q.Query(ctx, query, walletID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find transactions by wallet: %w", err)
	}
	defer rows.Close()

	return r.scanTransactions(rows)
}

func (r *TransactionRepository) List(ctx context.Context, filter ports.TransactionFilter, offset, limit int) ([]*entities.Transaction, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT id, wallet_id, destination_wallet_id, reference_id,
			   transaction_type, status, amount, description,
			   failure_reason, created_at
		FROM transactions
		WHERE 1=1
	`

	args := []interface{}{}
	argNum := 1

	if filter.WalletID != nil {
		query += fmt.Sprintf(" AND wallet_id = $%d", argNum)
		args = append(args, *filter.WalletID)
		argNum++
	}

	if filter.Type != nil {
		query += fmt.Sprintf(" AND transaction_type = $%d", argNum)
		args = append(args, string(*filter.Type))
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
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	return r.scanTransactions(rows)
}

func (r *TransactionRepository) scanTransaction(row pgx.Row) (*entities.Transaction, error) {
	var (
		id, walletID         uuid.UUID
		destinationWalletID  *uuid.UUID
		referenceID          string
		txTypeStr, statusStr string
		amountScaled         int64
		description          string
		failureReason        *string
		createdAt            time.Time
	)

	err := row.Scan(
		&id, &walletID, &destinationWalletID, &referenceID,
		&txTypeStr, &statusStr, &amountScaled, &description,
		&failureReason, &createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	fr := ""
	if failureReason != nil {
		fr = *failureReason
	}

	tx := entities.ReconstructTransaction(
		id,
		walletID,
		destinationWalletID,
		referenceID,
		entities.TransactionType(txTypeStr),
		entities.TransactionStatus(statusStr),
		valueobjects.NewMoneyFromScaledInt(amountScaled),
		description,
		fr,
		createdAt,
	)

	return tx, nil
}

func (r *TransactionRepository) scanTransactions(rows pgx.Rows) ([]*entities.Transaction, error) {
	var transactions []*entities.Transaction

	for rows.Next() {
		var (
			id, walletID         uuid.UUID
			destinationWalletID  *uuid.UUID
			referenceID          string
			txTypeStr, statusStr string
			amountScaled         int64
			description          string
			failureReason        *string
			createdAt            time.Time
		)

		err := rows.Scan(
			&id, &walletID, &destinationWalletID, &referenceID,
			&txTypeStr, &statusStr, &amountScaled, &description,
			&failureReason, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}

		fr := ""
		if failureReason != nil {
			fr = *failureReason
		}

		transactions = append(transactions, entities.ReconstructTransaction(
			id,
			walletID,
			destinationWalletID,
			referenceID,
			entities.TransactionType(txTypeStr),
			entities.TransactionStatus(statusStr),
			valueobjects.NewMoneyFromScaledInt(amountScaled),
			description,
			fr,
			createdAt,
		))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}
