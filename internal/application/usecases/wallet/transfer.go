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

// TransferUseCase moves funds between two wallets in one unit of work.
//
// Deadlock avoidance: the two wallets are always loaded and conditionally
// updated in ascending id order, regardless of which is the source and
// which is the destination, so two concurrent transfers between the same
// pair of wallets in opposite directions can never lock in reverse order.
type TransferUseCase struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	outboxRepo ports.OutboxRepository
	uow        ports.UnitOfWork
}

func NewTransferUseCase(walletRepo ports.WalletRepository, txRepo ports.TransactionRepository, outboxRepo ports.OutboxRepository, uow ports.UnitOfWork) *TransferUseCase {
	return &TransferUseCase{walletRepo: walletRepo, txRepo: txRepo, outboxRepo: outboxRepo, uow: uow}
}

func (uc *TransferUseCase) Execute(ctx context.Context, cmd dtos.TransferCommand) (*dtos.TransactionDTO, error) {
	sourceID, err := uuid.Parse(cmd.SourceWalletID)
	if err != nil {
		return nil, errors.ValidationError{Field: "sourceWalletId", Message: "sourceWalletId must be a valid UUID"}
	}

	destID, err := uuid.Parse(cmd.DestinationWalletID)
	if err != nil {
		return nil, errors.ValidationError{Field: "destinationWalletId", Message: "destinationWalletId must be a valid UUID"}
	}

	if sourceID == destID {
		return nil, errors.NewBusinessRuleViolation("SELF_TRANSFER", "cannot transfer to the same wallet", nil)
	}

	amount, err := valueobjects.NewAmount(cmd.Amount)
	if err != nil {
		return nil, errors.ValidationError{Field: "amount", Message: err.Error()}
	}

	var result *dtos.TransactionDTO

	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		if existing, err := uc.txRepo.FindByWalletAndReference(txCtx, sourceID, cmd.ReferenceID); err != nil {
			return fmt.Errorf("failed to check idempotency: %w", err)
		} else if existing != nil {
			if existing.Amount().Equals(amount) {
				dto := dtos.ToTransactionDTO(existing)
				result = &dto
				return nil
			}
			return errors.ErrDuplicateReference
		}

		// ascending-id order for both the load and the eventual conditional
		// update, so two opposing-direction transfers never deadlock.
		firstID, secondID := sourceID, destID
		if secondID.String() < firstID.String() {
			firstID, secondID = secondID, firstID
		}

		first, err := uc.walletRepo.FindByID(txCtx, firstID)
		if err != nil {
			return err
		}
		second, err := uc.walletRepo.FindByID(txCtx, secondID)
		if err != nil {
			return err
		}

		var source, dest *entities.Wallet
		if firstID == sourceID {
			source, dest = first, second
		} else {
			source, dest = second, first
		}

		tx, err := entities.NewTransaction(sourceID, &destID, cmd.ReferenceID, entities.TransactionTypeTransfer, amount, cmd.Description)
		if err != nil {
			return err
		}

		if err := source.Debit(amount); err != nil {
			if failErr := tx.MarkFailed(err.Error()); failErr != nil {
				return failErr
			}
			if saveErr := uc.txRepo.Save(txCtx, tx); saveErr != nil {
				return saveErr
			}
			return err
		}
		if err := dest.Credit(amount); err != nil {
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

		// Persist in the same ascending-id order the loads used.
		if firstID == sourceID {
			if err := uc.walletRepo.Save(txCtx, source); err != nil {
				return fmt.Errorf("failed to save source wallet: %w", err)
			}
			if err := uc.walletRepo.Save(txCtx, dest); err != nil {
				return fmt.Errorf("failed to save destination wallet: %w", err)
			}
		} else {
			if err := uc.walletRepo.Save(txCtx, dest); err != nil {
				return fmt.Errorf("failed to save destination wallet: %w", err)
			}
			if err := uc.walletRepo.Save(txCtx, source); err != nil {
				return fmt.Errorf("failed to save source wallet: %w", err)
			}
		}

		if err := uc.txRepo.Save(txCtx, tx); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}

		event := events.NewFundsTransferredV1(
			source.ID(), dest.ID(), tx.ID(),
			amount.String(), source.Balance().String(), dest.Balance().String(),
			cmd.ReferenceID, time.Now(),
		)
		if err := uc.outboxRepo.Save(txCtx, event); err != nil {
			return fmt.Errorf("failed to record wallet.funds_transferred event: %w", err)
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
