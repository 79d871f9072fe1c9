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

func walletWithBalance(t *testing.T, amount string) *entities.Wallet {
	t.Helper()
	w := entities.NewWallet(uuid.New())
	money, err := valueobjects.NewAmount(amount)
	if err != nil {
		t.Fatalf("failed to build fixture amount: %v", err)
	}
	if err := w.Credit(money); err != nil {
		t.Fatalf("failed to seed fixture balance: %v", err)
	}
	return w
}

func TestWithdrawUseCase_Success(t *testing.T) {
	ctx := context.Background()
	w := walletWithBalance(t, "100.00")
	startVersion := w.Version()

	walletRepo := &mockWalletRepo{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
			return w, nil
		},
	}

	useCase := NewWithdrawUseCase(walletRepo, &mockTransactionRepo{}, &mockOutboxRepo{}, &mockUoW{})

	result, err := useCase.Execute(ctx, dtos.WithdrawCommand{
		WalletID:    w.ID().String(),
		Amount:      "30.00",
		ReferenceID: "ref-1",
	})

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Status != string(entities.TransactionStatusCompleted) {
		t.Errorf("expected COMPLETED, got %s", result.Status)
	}
	if w.Balance().String() != "70.0000" {
		t.Errorf("expected balance 70.0000, got %s", w.Balance().String())
	}
	if w.Version() != startVersion+1 {
		t.Errorf("expected version to advance by 1, got %d -> %d", startVersion, w.Version())
	}
}

func TestWithdrawUseCase_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	w := walletWithBalance(t, "10.00")

	walletRepo := &mockWalletRepo{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
			return w, nil
		},
	}
	txRepo := &mockTransactionRepo{}

	useCase := NewWithdrawUseCase(walletRepo, txRepo, &mockOutboxRepo{}, &mockUoW{})

	_, err := useCase.Execute(ctx, dtos.WithdrawCommand{
		WalletID:    w.ID().String(),
		Amount:      "50.00",
		ReferenceID: "ref-2",
	})

	if !errors.Is(err, domainErrors.ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got: %v", err)
	}
	if w.Balance().String() != "10.0000" {
		t.Errorf("expected balance unchanged at 10.0000, got %s", w.Balance().String())
	}
	if len(txRepo.savedTransactions) != 1 || txRepo.savedTransactions[0].Status() != entities.TransactionStatusFailed {
		t.Error("expected a FAILED transaction to be recorded")
	}
}

func TestWithdrawUseCase_WalletNotActive(t *testing.T) {
	ctx := context.Background()
	w := walletWithBalance(t, "10.00")
	if err := w.Freeze(); err != nil {
		t.Fatalf("failed to freeze fixture wallet: %v", err)
	}

	walletRepo := &mockWalletRepo{
		findByIDFunc: func(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
			return w, nil
		},
	}

	useCase := NewWithdrawUseCase(walletRepo, &mockTransactionRepo{}, &mockOutboxRepo{}, &mockUoW{})

	_, err := useCase.Execute(ctx, dtos.WithdrawCommand{
		WalletID:    w.ID().String(),
		Amount:      "5.00",
		ReferenceID: "ref-3",
	})

	if !errors.Is(err, domainErrors.ErrWalletNotActive) {
		t.Errorf("expected ErrWalletNotActive, got: %v", err)
	}
}

func TestWithdrawUseCase_IdempotentReplaySameAmount(t *testing.T) {
	ctx := context.Background()
	walletID := uuid.New()
	amount, _ := valueobjects.NewAmount("15.00")

	existing, _ := entities.NewTransaction(walletID, nil, "ref-1", entities.TransactionTypeWithdrawal, amount, "")
	if err := existing.MarkCompleted(); err != nil {
		t.Fatalf("failed to mark fixture completed: %v", err)
	}

	txRepo := &mockTransactionRepo{
		findByWalletAndReferenceFunc: func(ctx context.Context, id uuid.UUID, ref string) (*entities.Transaction, error) {
			return existing, nil
		},
	}

	useCase := NewWithdrawUseCase(&mockWalletRepo{}, txRepo, &mockOutboxRepo{}, &mockUoW{})

	result, err := useCase.Execute(ctx, dtos.WithdrawCommand{
		WalletID:    walletID.String(),
		Amount:      "15.00",
		ReferenceID: "ref-1",
	})

	if err != nil {
		t.Fatalf("expected no error on idempotent replay, got: %v", err)
	}
	if result.ID != existing.ID().String() {
		t.Error("expected the original transaction to be returned")
	}
}
