// Package postgresread - integration tests against a real PostgreSQL
// instance via testcontainers.
//
// Run with:
//
//	go test ./internal/infrastructure/persistence/postgresread/...
//
// Requires Docker running locally.
package postgresread

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/wallethub/walletcore/internal/application/ports"
	"github.com/wallethub/walletcore/internal/domain/entities"
	domainErrors "github.com/wallethub/walletcore/internal/domain/errors"
)

func setupReadTestDB(t *testing.T) *pgxpool.Pool {
	ctx := context.Background()
	migrationsPath := filepath.Join("..", "..", "..", "..", "migrations", "read")

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_wallets.up.sql"),
			filepath.Join(migrationsPath, "002_create_transaction_history.up.sql"),
			filepath.Join(migrationsPath, "003_create_processed_events.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx))
	return pool
}

func TestWalletReadRepository_Integration_UpsertThenFind(t *testing.T) {
	pool := setupReadTestDB(t)
	repo := NewWalletReadRepository(pool)
	ctx := context.Background()

	walletID, userID := uuid.New(), uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, repo.UpsertWallet(ctx, ports.ReadWallet{
		ID: walletID, UserID: userID, Status: entities.WalletStatusActive,
		Balance: "0.0000", Version: 1, CreatedAt: now, UpdatedAt: now,
	}))

	loaded, err := repo.FindByID(ctx, walletID)
	require.NoError(t, err)
	assert.Equal(t, walletID, loaded.ID())
	assert.True(t, loaded.Balance().IsZero())

	require.NoError(t, repo.UpdateBalance(ctx, walletID, "42.5000", 2, now.Add(time.Second)))
	loaded, err = repo.FindByID(ctx, walletID)
	require.NoError(t, err)
	assert.Equal(t, "42.5000", loaded.Balance().String())
}

func TestWalletReadRepository_Integration_UpdateBalance_MissingWallet(t *testing.T) {
	pool := setupReadTestDB(t)
	repo := NewWalletReadRepository(pool)

	err := repo.UpdateBalance(context.Background(), uuid.New(), "1.0000", 1, time.Now())
	assert.ErrorIs(t, err, domainErrors.ErrWalletNotFound)
}

func TestProcessedEventStore_Integration_MarkProcessed_ClaimsOnce(t *testing.T) {
	pool := setupReadTestDB(t)
	store := NewProcessedEventStore(pool)
	ctx := context.Background()
	eventID := uuid.New()

	claimed, err := store.MarkProcessed(ctx, eventID)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.MarkProcessed(ctx, eventID)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestTransactionHistoryRepository_Integration_AppendAndBalanceAsOf(t *testing.T) {
	pool := setupReadTestDB(t)
	repo := NewTransactionHistoryRepository(pool)
	ctx := context.Background()

	walletID := uuid.New()
	older := ports.TransactionHistoryEntry{
		WalletID: walletID, TransactionID: uuid.New(),
		BalanceAfter: "10.0000", RecordedAt: time.Now().Add(-time.Hour),
	}
	newer := ports.TransactionHistoryEntry{
		WalletID: walletID, TransactionID: uuid.New(),
		BalanceAfter: "30.0000", RecordedAt: time.Now(),
	}
	require.NoError(t, repo.Append(ctx, older))
	require.NoError(t, repo.Append(ctx, newer))

	entry, err := repo.BalanceAsOf(ctx, walletID, time.Now().Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "10.0000", entry.BalanceAfter)

	entry, err = repo.BalanceAsOf(ctx, walletID, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "30.0000", entry.BalanceAfter)

	_, err = repo.BalanceAsOf(ctx, uuid.New(), time.Now())
	assert.ErrorIs(t, err, domainErrors.ErrEntityNotFound)
}
