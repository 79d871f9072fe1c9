package transaction

import (
	"context"

	"github.com/google/uuid"

	"github.com/wallethub/walletcore/internal/application/dtos"
	"github.com/wallethub/walletcore/internal/application/ports"
	"github.com/wallethub/walletcore/internal/domain/entities"
	"github.com/wallethub/walletcore/internal/domain/errors"
)

// ListTransactionsUseCase lists ledger entries matching an optional wallet,
// type, and status filter, with pagination.
type ListTransactionsUseCase struct {
	txRepo ports.TransactionRepository
}

func NewListTransactionsUseCase(txRepo ports.TransactionRepository) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{txRepo: txRepo}
}

func (uc *ListTransactionsUseCase) Execute(ctx context.Context, query dtos.ListTransactionsQuery) (*dtos.TransactionListDTO, error) {
	filter := ports.TransactionFilter{}

	if query.WalletID != nil {
		walletID, err := uuid.Parse(*query.WalletID)
		if err != nil {
			return nil, errors.ValidationError{Field: "walletId", Message: "walletId must be a valid UUID"}
		}
		filter.WalletID = &walletID
	}

	if query.Type != nil {
		t := entities.TransactionType(*query.Type)
		filter.Type = &t
	}

	if query.Status != nil {
		s := entities.TransactionStatus(*query.Status)
		filter.Status = &s
	}

	txs, err := uc.txRepo.List(ctx, filter, query.Offset, query.Limit)
	if err != nil {
		return nil, err
	}

	return &dtos.TransactionListDTO{
		Transactions: dtos.ToTransactionDTOList(txs),
		Offset:       query.Offset,
		Limit:        query.Limit,
	}, nil
}
