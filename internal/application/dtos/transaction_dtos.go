// Package dtos - Transaction DTOs for queries and API responses. Every
// transaction is created as a side effect of a wallet command (Deposit,
// Withdraw, Transfer) — there is no standalone CreateTransaction command.
package dtos

import "time"

// ============================================
// Queries
// ============================================

// GetTransactionQuery fetches a transaction by id.
type GetTransactionQuery struct {
	TransactionID string `json:"transactionId" validate:"required,uuid"`
}

// ListTransactionsQuery lists transactions with optional filtering and
// pagination.
type ListTransactionsQuery struct {
	WalletID *string `json:"walletId,omitempty" validate:"omitempty,uuid"`
	Type     *string `json:"type,omitempty" validate:"omitempty,oneof=DEPOSIT WITHDRAWAL TRANSFER"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=PENDING COMPLETED FAILED"`
	Offset   int     `json:"offset" validate:"min=0"`
	Limit    int     `json:"limit" validate:"min=1,max=100"`
}

// ============================================
// Responses
// ============================================

// TransactionDTO is the API representation of a ledger entry.
type TransactionDTO struct {
	ID                  string    `json:"id"`
	WalletID            string    `json:"walletId"`
	DestinationWalletID *string   `json:"destinationWalletId,omitempty"`
	ReferenceID         string    `json:"referenceId"`
	Type                string    `json:"type"`
	Status              string    `json:"status"`
	Amount              string    `json:"amount"`
	Description         string    `json:"description,omitempty"`
	FailureReason       string    `json:"failureReason,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

// TransactionListDTO is a paginated list of transactions.
type TransactionListDTO struct {
	Transactions []TransactionDTO `json:"transactions"`
	Offset       int              `json:"offset"`
	Limit        int              `json:"limit"`
}
