// Package transaction holds the query-side use cases for the transaction
// ledger. There is no command side here — transactions are only ever
// created as a side effect of a wallet command; see the wallet package.
package transaction

import (
	"context"

	"github.com/google/uuid"

	"github.com/wallethub/walletcore/internal/application/dtos"
	"github.com/wallethub/walletcore/internal/application/ports"
	"github.com/wallethub/walletcore/internal/domain/errors"
)

// GetTransactionUseCase fetches a single ledger entry by id.
type GetTransactionUseCase struct {
	txRepo ports.TransactionRepository
}

func NewGetTransactionUseCase(txRepo ports.TransactionRepository) *GetTransactionUseCase {
	return &GetTransactionUseCase{txRepo: txRepo}
}

func (uc *GetTransactionUseCase) Execute(ctx context.Context, query dtos.GetTransactionQuery) (*dtos.TransactionDTO, error) {
	id, err := uuid.Parse(query.TransactionID)
	if err != nil {
		return nil, errors.ValidationError{Field: "transactionId", Message: "transactionId must be a valid UUID"}
	}

	tx, err := uc.txRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := dtos.ToTransactionDTO(tx)
	return &dto, nil
}
