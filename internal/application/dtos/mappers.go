// Package dtos - mappers convert domain entities into API DTOs. Kept
// separate from the entities themselves so the wire format can evolve
// without touching domain invariants.
package dtos

import (
	"github.com/wallethub/walletcore/internal/domain/entities"
)

// ToWalletDTO converts a domain Wallet into its API representation.
func ToWalletDTO(wallet *entities.Wallet) WalletDTO {
	return WalletDTO{
		ID:        wallet.ID().String(),
		UserID:    wallet.UserID().String(),
		Status:    string(wallet.Status()),
		Balance:   wallet.Balance().String(),
		Version:   wallet.Version(),
		CreatedAt: wallet.CreatedAt(),
		UpdatedAt: wallet.UpdatedAt(),
	}
}

// ToWalletDTOList converts a slice of wallets.
func ToWalletDTOList(wallets []*entities.Wallet) []WalletDTO {
	result := make([]WalletDTO, len(wallets))
	for i, wallet := range wallets {
		result[i] = ToWalletDTO(wallet)
	}
	return result
}

// ToTransactionDTO converts a domain Transaction into its API representation.
func ToTransactionDTO(tx *entities.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:            tx.ID().String(),
		WalletID:      tx.WalletID().String(),
		ReferenceID:   tx.ReferenceID(),
		Type:          string(tx.Type()),
		Status:        string(tx.Status()),
		Amount:        tx.Amount().String(),
		Description:   tx.Description(),
		FailureReason: tx.FailureReason(),
		CreatedAt:     tx.CreatedAt(),
	}

	if destWalletID := tx.DestinationWalletID(); destWalletID != nil {
		destStr := destWalletID.String()
		dto.DestinationWalletID = &destStr
	}

	return dto
}

// ToTransactionDTOList converts a slice of transactions.
func ToTransactionDTOList(transactions []*entities.Transaction) []TransactionDTO {
	result := make([]TransactionDTO, len(transactions))
	for i, tx := range transactions {
		result[i] = ToTransactionDTO(tx)
	}
	return result
}
