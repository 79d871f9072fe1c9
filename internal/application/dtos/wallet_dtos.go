// Package dtos - Wallet DTOs for commands, queries, and API responses.
package dtos

import "time"

// ============================================
// Commands
// ============================================

// CreateWalletCommand creates a wallet for a user.
type CreateWalletCommand struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// DepositCommand credits a wallet.
type DepositCommand struct {
	WalletID    string `json:"walletId" validate:"required,uuid"`
	Amount      string `json:"amount" validate:"required"`
	ReferenceID string `json:"referenceId" validate:"required"`
	Description string `json:"description,omitempty"`
}

// WithdrawCommand debits a wallet.
type WithdrawCommand struct {
	WalletID    string `json:"walletId" validate:"required,uuid"`
	Amount      string `json:"amount" validate:"required"`
	ReferenceID string `json:"referenceId" validate:"required"`
	Description string `json:"description,omitempty"`
}

// TransferCommand moves funds between two wallets.
type TransferCommand struct {
	SourceWalletID      string `json:"sourceWalletId" validate:"required,uuid"`
	DestinationWalletID string `json:"destinationWalletId" validate:"required,uuid"`
	Amount              string `json:"amount" validate:"required"`
	ReferenceID         string `json:"referenceId" validate:"required"`
	Description         string `json:"description,omitempty"`
}

// FreezeWalletCommand transitions a wallet ACTIVE -> FROZEN.
type FreezeWalletCommand struct {
	WalletID string `json:"walletId" validate:"required,uuid"`
}

// UnfreezeWalletCommand transitions a wallet FROZEN -> ACTIVE.
type UnfreezeWalletCommand struct {
	WalletID string `json:"walletId" validate:"required,uuid"`
}

// CloseWalletCommand transitions a wallet to CLOSED. Requires a zero balance.
type CloseWalletCommand struct {
	WalletID string `json:"walletId" validate:"required,uuid"`
}

// ============================================
// Queries
// ============================================

// GetWalletQuery fetches a wallet by id.
type GetWalletQuery struct {
	WalletID string `json:"walletId" validate:"required,uuid"`
}

// GetHistoricalBalanceQuery fetches the wallet's balance as of a point in time.
type GetHistoricalBalanceQuery struct {
	WalletID string    `json:"walletId" validate:"required,uuid"`
	AsOf     time.Time `json:"asOf" validate:"required"`
}

// ListWalletsQuery lists wallets with optional filtering and pagination.
type ListWalletsQuery struct {
	UserID *string `json:"userId,omitempty" validate:"omitempty,uuid"`
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE FROZEN CLOSED"`
	Offset int     `json:"offset" validate:"min=0"`
	Limit  int     `json:"limit" validate:"min=1,max=100"`
}

// ============================================
// Responses
// ============================================

// WalletDTO is the API representation of a wallet.
type WalletDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Status    string    `json:"status"`
	Balance   string    `json:"balance"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WalletListDTO is a paginated list of wallets.
type WalletListDTO struct {
	Wallets []WalletDTO `json:"wallets"`
	Offset  int         `json:"offset"`
	Limit   int         `json:"limit"`
}

// HistoricalBalanceDTO is the result of a point-in-time balance lookup.
type HistoricalBalanceDTO struct {
	WalletID string    `json:"walletId"`
	Balance  string    `json:"balance"`
	AsOf     time.Time `json:"asOf"`
}
