// Package wallet holds the command and query handlers for the Wallet
// aggregate: one struct per operation, each exposing Execute(ctx, ...).
package wallet

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/wallethub/walletcore/internal/application/dtos"
	"github.com/wallethub/walletcore/internal/application/ports"
	"github.com/wallethub/walletcore/internal/domain/entities"
	"github.com/wallethub/walletcore/internal/domain/errors"
	"github.com/wallethub/walletcore/internal/domain/events"

	"context"
)

// CreateWalletUseCase opens a new, zero-balance, ACTIVE wallet for a user.
type CreateWalletUseCase struct {
	walletRepo ports.WalletRepository
	outboxRepo ports.OutboxRepository
	uow        ports.UnitOfWork
}

func NewCreateWalletUseCase(walletRepo ports.WalletRepository, outboxRepo ports.OutboxRepository, uow ports.UnitOfWork) *CreateWalletUseCase {
	return &CreateWalletUseCase{walletRepo: walletRepo, outboxRepo: outboxRepo, uow: uow}
}

func (uc *CreateWalletUseCase) Execute(ctx context.Context, cmd dtos.CreateWalletCommand) (*dtos.WalletDTO, error) {
	userID, err := uuid.Parse(cmd.UserID)
	if err != nil {
		return nil, errors.ValidationError{Field: "userId", Message: "userId must be a valid UUID"}
	}

	var result *dtos.WalletDTO

	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		w := entities.NewWallet(userID)

		if err := uc.walletRepo.Save(txCtx, w); err != nil {
			return fmt.Errorf("failed to save wallet: %w", err)
		}

		event := events.NewWalletCreatedV1(w.ID(), w.UserID(), w.CreatedAt())
		if err := uc.outboxRepo.Save(txCtx, event); err != nil {
			return fmt.Errorf("failed to record wallet.created event: %w", err)
		}

		dto := dtos.ToWalletDTO(w)
		result = &dto
		return nil
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}
