package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/wallethub/walletcore/internal/application/dtos"
	"github.com/wallethub/walletcore/internal/domain/entities"
	domainErrors "github.com/wallethub/walletcore/internal/domain/errors"
	"github.com/wallethub/walletcore/internal/domain/valueobjects"
)

func TestDepositUseCase_Success(t *testing.T) {
	ctx := context.Background()
	w := entities.NewWallet(uuid.New())

	walletRepo := &mockWalletRepo{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
			return w, nil
		},
	}
	txRepo := &mockTransactionRepo{}
	outboxRepo := &mockOutboxRepo{}

	useCase := NewDepositUseCase(walletRepo, txRepo, outboxRepo, &mockUoW{})

	result, err := useCase.Execute(ctx, dtos.DepositCommand{
		WalletID:    w.ID().String(),
		Amount:      "50.00",
		ReferenceID: "ref-1",
	})

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Status != string(entities.TransactionStatusCompleted) {
		t.Errorf("expected COMPLETED, got %s", result.Status)
	}
	if w.Balance().String() != "50.0000" {
		t.Errorf("expected balance 50.0000, got %s", w.Balance().String())
	}
	if w.Version() != 1 {
		t.Errorf("expected version 1 after one credit, got %d", w.Version())
	}
	if len(txRepo.savedTransactions) != 1 {
		t.Fatalf("expected 1 saved transaction, got %d", len(txRepo.savedTransactions))
	}
	if len(outboxRepo.savedEvents) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(outboxRepo.savedEvents))
	}
}

func TestDepositUseCase_IdempotentReplaySameAmount(t *testing.T) {
	ctx := context.Background()
	walletID := uuid.New()
	amount, _ := valueobjects.NewAmount("25.00")

	existing, err := entities.NewTransaction(walletID, nil, "ref-1", entities.TransactionTypeDeposit, amount, "")
	if err != nil {
		t.Fatalf("failed to build fixture transaction: %v", err)
	}
	if err := existing.MarkCompleted(); err != nil {
		t.Fatalf("failed to mark fixture completed: %v", err)
	}

	txRepo := &mockTransactionRepo{
		findByWalletAndReferenceFunc: func(ctx context.Context, id uuid.UUID, ref string) (*entities.Transaction, error) {
			return existing, nil
		},
	}
	walletRepo := &mockWalletRepo{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
			t.Fatal("should not load the wallet on an idempotent replay")
			return nil, nil
		},
	}

	useCase := NewDepositUseCase(walletRepo, txRepo, &mockOutboxRepo{}, &mockUoW{})

	result, err := useCase.Execute(ctx, dtos.DepositCommand{
		WalletID:    walletID.String(),
		Amount:      "25.00",
		ReferenceID: "ref-1",
	})

	if err != nil {
		t.Fatalf("expected no error on idempotent replay, got: %v", err)
	}
	if result.ID != existing.ID().String() {
		t.Errorf("expected the original transaction to be returned, got a different id")
	}
}

func TestDepositUseCase_IdempotentReplayDifferentAmount(t *testing.T) {
	ctx := context.Background()
	walletID := uuid.New()
	amount, _ := valueobjects.NewAmount("25.00")

	existing, _ := entities.NewTransaction(walletID, nil, "ref-1", entities.TransactionTypeDeposit, amount, "")

	txRepo := &mockTransactionRepo{
		findByWalletAndReferenceFunc: func(ctx context.Context, id uuid.UUID, ref string) (*entities.Transaction, error) {
			return existing, nil
		},
	}

	useCase := NewDepositUseCase(&mockWalletRepo{}, txRepo, &mockOutboxRepo{}, &mockUoW{})

	_, err := useCase.Execute(ctx, dtos.DepositCommand{
		WalletID:    walletID.String(),
		Amount:      "99.00",
		ReferenceID: "ref-1",
	})

	if !errors.Is(err, domainErrors.ErrDuplicateReference) {
		t.Errorf("expected ErrDuplicateReference, got: %v", err)
	}
}

func TestDepositUseCase_WalletNotActive(t *testing.T) {
	ctx := context.Background()
	w := entities.NewWallet(uuid.New())
	if err := w.Freeze(); err != nil {
		t.Fatalf("failed to freeze fixture wallet: %v", err)
	}

	walletRepo := &mockWalletRepo{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
			return w, nil
		},
	}
	txRepo := &mockTransactionRepo{}

	useCase := NewDepositUseCase(walletRepo, txRepo, &mockOutboxRepo{}, &mockUoW{})

	_, err := useCase.Execute(ctx, dtos.DepositCommand{
		WalletID:    w.ID().String(),
		Amount:      "10.00",
		ReferenceID: "ref-2",
	})

	if !errors.Is(err, domainErrors.ErrWalletNotActive) {
		t.Errorf("expected ErrWalletNotActive, got: %v", err)
	}
	if len(txRepo.savedTransactions) != 1 {
		t.Fatalf("expected the failed transaction to still be recorded, got %d", len(txRepo.savedTransactions))
	}
	if txRepo.savedTransactions[0].Status() != entities.TransactionStatusFailed {
		t.Errorf("expected FAILED status, got %s", txRepo.savedTransactions[0].Status())
	}
}

func TestDepositUseCase_WalletNotFound(t *testing.T) {
	ctx := context.Background()

	useCase := NewDepositUseCase(&mockWalletRepo{}, &mockTransactionRepo{}, &mockOutboxRepo{}, &mockUoW{})

	_, err := useCase.Execute(ctx, dtos.DepositCommand{
		WalletID:    uuid.New().String(),
		Amount:      "10.00",
		ReferenceID: "ref-3",
	})

	if !domainErrors.IsNotFound(err) {
		t.Errorf("expected a not-found error, got: %v", err)
	}
}

func TestDepositUseCase_InvalidWalletID(t *testing.T) {
	ctx := context.Background()
	useCase := NewDepositUseCase(&mockWalletRepo{}, &mockTransactionRepo{}, &mockOutboxRepo{}, &mockUoW{})

	_, err := useCase.Execute(ctx, dtos.DepositCommand{
		WalletID:    "not-a-uuid",
		Amount:      "10.00",
		ReferenceID: "ref-4",
	})

	if !domainErrors.IsValidationError(err) {
		t.Errorf("expected ValidationError, got: %v", err)
	}
}

func TestDepositUseCase_SaveErrorDoesNotPublishEvent(t *testing.T) {
	ctx := context.Background()
	w := entities.NewWallet(uuid.New())

	walletRepo := &mockWalletRepo{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
			return w, nil
		},
		saveFunc: func(ctx context.Context, wallet *entities.Wallet) error {
			return errors.New("db unavailable")
		},
	}
	outboxRepo := &mockOutboxRepo{}

	useCase := NewDepositUseCase(walletRepo, &mockTransactionRepo{}, outboxRepo, &mockUoW{})

	_, err := useCase.Execute(ctx, dtos.DepositCommand{
		WalletID:    w.ID().String(),
		Amount:      "10.00",
		ReferenceID: "ref-5",
	})

	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if len(outboxRepo.savedEvents) != 0 {
		t.Error("expected no outbox event when the wallet save fails")
	}
}
