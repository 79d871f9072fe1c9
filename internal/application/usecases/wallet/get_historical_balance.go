package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/wallethub/walletcore/internal/application/dtos"
	"github.com/wallethub/walletcore/internal/application/ports"
	"github.com/wallethub/walletcore/internal/domain/errors"
)

// GetHistoricalBalanceUseCase answers "what was this wallet's balance at
// time T?" from the append-only transaction_history ledger the projector
// maintains. If the wallet had no recorded history at or before asOf, the
// query returns errors.ErrEntityNotFound rather than an implicit zero.
type GetHistoricalBalanceUseCase struct {
	historyRepo ports.TransactionHistoryRepository
}

func NewGetHistoricalBalanceUseCase(historyRepo ports.TransactionHistoryRepository) *GetHistoricalBalanceUseCase {
	return &GetHistoricalBalanceUseCase{historyRepo: historyRepo}
}

func (uc *GetHistoricalBalanceUseCase) Execute(ctx context.Context, query dtos.GetHistoricalBalanceQuery) (*dtos.HistoricalBalanceDTO, error) {
	walletID, err := uuid.Parse(query.WalletID)
	if err != nil {
		return nil, errors.ValidationError{Field: "walletId", Message: "walletId must be a valid UUID"}
	}

	entry, err := uc.historyRepo.BalanceAsOf(ctx, walletID, query.AsOf)
	if err != nil {
		return nil, err
	}

	return &dtos.HistoricalBalanceDTO{
		WalletID: entry.WalletID.String(),
		Balance:  entry.BalanceAfter,
		AsOf:     query.AsOf,
	}, nil
}
