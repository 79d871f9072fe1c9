package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wallethub/walletcore/internal/application/dtos"
	"github.com/wallethub/walletcore/internal/application/ports"
	"github.com/wallethub/walletcore/internal/domain/entities"
	"github.com/wallethub/walletcore/internal/domain/errors"
	"github.com/wallethub/walletcore/internal/domain/events"
	"github.com/wallethub/walletcore/internal/domain/valueobjects"
)

// WithdrawUseCase debits a wallet. Same idempotency contract as Deposit.
type WithdrawUseCase struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	outboxRepo ports.OutboxRepository
	uow        ports.UnitOfWork
}

func NewWithdrawUseCase(walletRepo ports.WalletRepository, txRepo ports.TransactionRepository, outboxRepo ports.OutboxRepository, uow ports.UnitOfWork) *WithdrawUseCase {
	return &WithdrawUseCase{walletRepo: walletRepo, txRepo: txRepo, outboxRepo: outboxRepo, uow: uow}
}

func (uc *WithdrawUseCase) Execute(ctx context.Context, cmd dtos.WithdrawCommand) (*dtos.TransactionDTO, error) {
	walletID, err := uuid.Parse(cmd.WalletID)
	if err != nil {
		return nil, errors.ValidationError{Field: "walletId", Message: "walletId must be a valid UUID"}
	}

	amount, err := valueobjects.NewAmount(cmd.Amount)
	if err != nil {
		return nil, errors.ValidationError{Field: "amount", Message: err.Error()}
	}

	var result *dtos.TransactionDTO

	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		if existing, err := uc.txRepo.FindByWalletAndReference(txCtx, walletID, cmd.ReferenceID); err != nil {
			return fmt.Errorf("failed to check idempotency: %w", err)
		} else if existing != nil {
			if existing.Amount().Equals(amount) {
				dto := dtos.ToTransactionDTO(existing)
				result = &dto
				return nil
			}
			return errors.ErrDuplicateReference
		}

		w, err := uc.walletRepo.FindByID(txCtx, walletID)
		if err != nil {
			return err
		}

		tx, err := entities.NewTransaction(walletID, nil, cmd.ReferenceID, entities.TransactionTypeWithdrawal, amount, cmd.Description)
		if err != nil {
			return err
		}

		if err := w.Debit(amount); err != nil {
			if failErr := tx.MarkFailed(err.Error()); failErr != nil {
				return failErr
			}
			if saveErr := uc.txRepo.Save(txCtx, tx); saveErr != nil {
				return saveErr
			}
			return err
		}

		if err := tx.MarkCompleted(); err != nil {
			return err
		}

		if err := uc.walletRepo.Save(txCtx, w); err != nil {
			return fmt.Errorf("failed to save wallet: %w", err)
		}
		if err := uc.txRepo.Save(txCtx, tx); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}

		event := events.NewFundsWithdrawnV1(w.ID(), tx.ID(), amount.String(), w.Balance().String(), cmd.ReferenceID, time.Now())
		if err := uc.outboxRepo.Save(txCtx, event); err != nil {
			return fmt.Errorf("failed to record wallet.funds_withdrawn event: %w", err)
		}

		dto := dtos.ToTransactionDTO(tx)
		result = &dto
		return nil
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}
