//go:build integration

// Package postgres - integration tests against an already-running
// PostgreSQL instance (migrations applied out of band).
//
// Run with:
//   go test -tags=integration ./internal/infrastructure/persistence/postgres/...
//
// Environment:
//   TEST_DB_HOST (default: localhost)
//   TEST_DB_PORT (default: 5432)
//   TEST_DB_NAME (default: walletcore_test)
//   TEST_DB_USER (default: postgres)
//   TEST_DB_PASSWORD (default: postgres)
package postgres

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wallethub/walletcore/internal/domain/entities"
	domainErrors "github.com/wallethub/walletcore/internal/domain/errors"
	"github.com/wallethub/walletcore/internal/domain/valueobjects"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	cfg := getTestConfig()

	pool, err := NewConnectionPool(ctx, cfg)
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	testPool = pool

	code := m.Run()

	pool.Close()
	os.Exit(code)
}

func getTestConfig() Config {
	cfg := DefaultConfig()

	if host := os.Getenv("TEST_DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("TEST_DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if name := os.Getenv("TEST_DB_NAME"); name != "" {
		cfg.Database = name
	} else {
		cfg.Database = "walletcore_test"
	}
	if user := os.Getenv("TEST_DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("TEST_DB_PASSWORD"); password != "" {
		cfg.Password = password
	}

	return cfg
}

func cleanupWallets(t *testing.T, ctx context.Context) {
	if _, err := testPool.Exec(ctx, "DELETE FROM outbox_events"); err != nil {
		t.Logf("warning: failed to cleanup outbox_events: %v", err)
	}
	if _, err := testPool.Exec(ctx, "DELETE FROM transactions"); err != nil {
		t.Logf("warning: failed to cleanup transactions: %v", err)
	}
	if _, err := testPool.Exec(ctx, "DELETE FROM wallets"); err != nil {
		t.Fatalf("failed to cleanup wallets: %v", err)
	}
}

func mustAmount(t *testing.T, amount string) valueobjects.Money {
	t.Helper()
	m, err := valueobjects.NewMoney(amount)
	if err != nil {
		t.Fatalf("failed to build amount %q: %v", amount, err)
	}
	return m
}

// ============================================
// WalletRepository
// ============================================

func TestWalletRepository_Save_Success(t *testing.T) {
	ctx := context.Background()
	cleanupWallets(t, ctx)

	walletRepo := NewWalletRepository(testPool)

	wallet := entities.NewWallet(uuid.New())
	if err := walletRepo.Save(ctx, wallet); err != nil {
		t.Fatalf("failed to save wallet: %v", err)
	}

	loaded, err := walletRepo.FindByID(ctx, wallet.ID())
	if err != nil {
		t.Fatalf("failed to load wallet: %v", err)
	}

	if loaded.UserID() != wallet.UserID() {
		t.Errorf("expected user id %s, got %s", wallet.UserID(), loaded.UserID())
	}
	if !loaded.Balance().IsZero() {
		t.Errorf("expected zero balance, got %s", loaded.Balance().String())
	}
}

func TestWalletRepository_OptimisticLocking(t *testing.T) {
	ctx := context.Background()
	cleanupWallets(t, ctx)

	walletRepo := NewWalletRepository(testPool)

	wallet := entities.NewWallet(uuid.New())
	if err := walletRepo.Save(ctx, wallet); err != nil {
		t.Fatalf("failed to save wallet: %v", err)
	}

	wallet1, _ := walletRepo.FindByID(ctx, wallet.ID())
	wallet2, _ := walletRepo.FindByID(ctx, wallet.ID())

	amount := mustAmount(t, "100.00")
	wallet1.Credit(amount)
	if err := walletRepo.Save(ctx, wallet1); err != nil {
		t.Fatalf("first save should succeed: %v", err)
	}

	wallet2.Credit(amount)
	err := walletRepo.Save(ctx, wallet2)
	if err == nil {
		t.Fatal("second save should fail due to optimistic locking")
	}
	if !domainErrors.IsConcurrencyError(err) {
		t.Errorf("expected ConcurrencyError, got %T: %v", err, err)
	}
}

func TestWalletRepository_FindByUserID(t *testing.T) {
	ctx := context.Background()
	cleanupWallets(t, ctx)

	walletRepo := NewWalletRepository(testPool)
	userID := uuid.New()

	wallet := entities.NewWallet(userID)
	if err := walletRepo.Save(ctx, wallet); err != nil {
		t.Fatalf("failed to save wallet: %v", err)
	}

	found, err := walletRepo.FindByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("failed to find wallets: %v", err)
	}
	if len(found) != 1 || found[0].ID() != wallet.ID() {
		t.Errorf("expected exactly the one seeded wallet, got %d results", len(found))
	}
}

// ============================================
// UnitOfWork
// ============================================

func TestUnitOfWork_Execute_Commit(t *testing.T) {
	ctx := context.Background()
	cleanupWallets(t, ctx)

	uow := NewUnitOfWork(testPool)
	walletRepo := NewWalletRepository(testPool)

	wallet := entities.NewWallet(uuid.New())

	err := uow.Execute(ctx, func(txCtx context.Context) error {
		return walletRepo.Save(txCtx, wallet)
	})
	if err != nil {
		t.Fatalf("uow execution failed: %v", err)
	}

	if _, err := walletRepo.FindByID(ctx, wallet.ID()); err != nil {
		t.Errorf("wallet should exist after commit: %v", err)
	}
}

func TestUnitOfWork_Execute_Rollback(t *testing.T) {
	ctx := context.Background()
	cleanupWallets(t, ctx)

	uow := NewUnitOfWork(testPool)
	walletRepo := NewWalletRepository(testPool)

	wallet := entities.NewWallet(uuid.New())

	err := uow.Execute(ctx, func(txCtx context.Context) error {
		if err := walletRepo.Save(txCtx, wallet); err != nil {
			return err
		}
		return domainErrors.NewBusinessRuleViolation("TEST_ERROR", "intentional error", nil)
	})
	if err == nil {
		t.Fatal("expected error from uow")
	}

	if _, err := walletRepo.FindByID(ctx, wallet.ID()); err == nil {
		t.Error("wallet should not exist after rollback")
	}
}
