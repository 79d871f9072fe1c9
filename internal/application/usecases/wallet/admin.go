// Package wallet - admin status-transition use cases (§4.7): Freeze,
// Unfreeze, and Close. Authn/authz for who may call these is out of scope
// here; the HTTP boundary is responsible for gating the routes.
package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/wallethub/walletcore/internal/application/dtos"
	"github.com/wallethub/walletcore/internal/application/ports"
	"github.com/wallethub/walletcore/internal/domain/entities"
	"github.com/wallethub/walletcore/internal/domain/errors"
)

// FreezeWalletUseCase transitions a wallet ACTIVE -> FROZEN, blocking
// further debits/credits until unfrozen.
type FreezeWalletUseCase struct {
	walletRepo ports.WalletRepository
	uow        ports.UnitOfWork
}

func NewFreezeWalletUseCase(walletRepo ports.WalletRepository, uow ports.UnitOfWork) *FreezeWalletUseCase {
	return &FreezeWalletUseCase{walletRepo: walletRepo, uow: uow}
}

func (uc *FreezeWalletUseCase) Execute(ctx context.Context, cmd dtos.FreezeWalletCommand) (*dtos.WalletDTO, error) {
	return applyWalletTransition(ctx, uc.walletRepo, uc.uow, cmd.WalletID, (*entities.Wallet).Freeze)
}

// UnfreezeWalletUseCase transitions a wallet FROZEN -> ACTIVE.
type UnfreezeWalletUseCase struct {
	walletRepo ports.WalletRepository
	uow        ports.UnitOfWork
}

func NewUnfreezeWalletUseCase(walletRepo ports.WalletRepository, uow ports.UnitOfWork) *UnfreezeWalletUseCase {
	return &UnfreezeWalletUseCase{walletRepo: walletRepo, uow: uow}
}

func (uc *UnfreezeWalletUseCase) Execute(ctx context.Context, cmd dtos.UnfreezeWalletCommand) (*dtos.WalletDTO, error) {
	return applyWalletTransition(ctx, uc.walletRepo, uc.uow, cmd.WalletID, (*entities.Wallet).Unfreeze)
}

// CloseWalletUseCase transitions a wallet to CLOSED. Rejected with a
// BusinessRuleViolation unless the wallet's balance is exactly zero.
type CloseWalletUseCase struct {
	walletRepo ports.WalletRepository
	uow        ports.UnitOfWork
}

func NewCloseWalletUseCase(walletRepo ports.WalletRepository, uow ports.UnitOfWork) *CloseWalletUseCase {
	return &CloseWalletUseCase{walletRepo: walletRepo, uow: uow}
}

func (uc *CloseWalletUseCase) Execute(ctx context.Context, cmd dtos.CloseWalletCommand) (*dtos.WalletDTO, error) {
	return applyWalletTransition(ctx, uc.walletRepo, uc.uow, cmd.WalletID, (*entities.Wallet).Close)
}

// applyWalletTransition loads a wallet, applies a status-transition method,
// and persists the result inside one unit of work. Shared by Freeze,
// Unfreeze, and Close since all three share this load/mutate/save shape.
func applyWalletTransition(
	ctx context.Context,
	walletRepo ports.WalletRepository,
	uow ports.UnitOfWork,
	rawWalletID string,
	transition func(*entities.Wallet) error,
) (*dtos.WalletDTO, error) {
	walletID, err := uuid.Parse(rawWalletID)
	if err != nil {
		return nil, errors.ValidationError{Field: "walletId", Message: "walletId must be a valid UUID"}
	}

	var result *dtos.WalletDTO

	err = uow.Execute(ctx, func(txCtx context.Context) error {
		w, err := walletRepo.FindByID(txCtx, walletID)
		if err != nil {
			return err
		}

		if err := transition(w); err != nil {
			return err
		}

		if err := walletRepo.Save(txCtx, w); err != nil {
			return fmt.Errorf("failed to save wallet: %w", err)
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
