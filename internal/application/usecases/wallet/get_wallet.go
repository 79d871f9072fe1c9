package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/wallethub/walletcore/internal/application/dtos"
	"github.com/wallethub/walletcore/internal/application/ports"
	"github.com/wallethub/walletcore/internal/domain/entities"
	"github.com/wallethub/walletcore/internal/domain/errors"
)

// GetWalletUseCase resolves a wallet by id, checking the cache first, then
// the read store, then falling back to the write store (§4.6).
type GetWalletUseCase struct {
	cache     ports.WalletCache
	readRepo  ports.WalletReader
	writeRepo ports.WalletRepository
}

// NewGetWalletUseCase wires the three-tier lookup. readRepo and writeRepo
// may be the same repository when no read replica is configured.
func NewGetWalletUseCase(cache ports.WalletCache, readRepo ports.WalletReader, writeRepo ports.WalletRepository) *GetWalletUseCase {
	return &GetWalletUseCase{cache: cache, readRepo: readRepo, writeRepo: writeRepo}
}

func (uc *GetWalletUseCase) Execute(ctx context.Context, query dtos.GetWalletQuery) (*dtos.WalletDTO, error) {
	walletID, err := uuid.Parse(query.WalletID)
	if err != nil {
		return nil, errors.ValidationError{Field: "walletId", Message: "walletId must be a valid UUID"}
	}

	if uc.cache != nil {
		if dto, ok := uc.cache.Get(ctx, walletID); ok {
			return dto, nil
		}
	}

	w, err := uc.readRepo.FindByID(ctx, walletID)
	if err != nil {
		if !errors.IsNotFound(err) {
			return nil, err
		}
		w, err = uc.writeRepo.FindByID(ctx, walletID)
		if err != nil {
			return nil, err
		}
	}

	dto := dtos.ToWalletDTO(w)

	if uc.cache != nil {
		uc.cache.Set(ctx, &dto)
	}

	return &dto, nil
}

// ListWalletsUseCase lists wallets for a user or filter, served from the
// read store.
type ListWalletsUseCase struct {
	readRepo ports.WalletReader
}

func NewListWalletsUseCase(readRepo ports.WalletReader) *ListWalletsUseCase {
	return &ListWalletsUseCase{readRepo: readRepo}
}

func (uc *ListWalletsUseCase) Execute(ctx context.Context, query dtos.ListWalletsQuery) (*dtos.WalletListDTO, error) {
	filter := ports.WalletFilter{}

	if query.UserID != nil {
		userID, err := uuid.Parse(*query.UserID)
		if err != nil {
			return nil, errors.ValidationError{Field: "userId", Message: "userId must be a valid UUID"}
		}
		filter.UserID = &userID
	}

	if query.Status != nil {
		status := entities.WalletStatus(*query.Status)
		filter.Status = &status
	}

	wallets, err := uc.readRepo.List(ctx, filter, query.Offset, query.Limit)
	if err != nil {
		return nil, err
	}

	return &dtos.WalletListDTO{
		Wallets: dtos.ToWalletDTOList(wallets),
		Offset:  query.Offset,
		Limit:   query.Limit,
	}, nil
}
