// Package handlers - Transaction HTTP handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wallethub/walletcore/internal/adapters/http/common"
	"github.com/wallethub/walletcore/internal/application/dtos"
)

// ============================================
// Use Case Interfaces
// ============================================

// GetTransactionUseCase fetches a single ledger entry.
type GetTransactionUseCase interface {
	Execute(ctx context.Context, query dtos.GetTransactionQuery) (*dtos.TransactionDTO, error)
}

// ListTransactionsUseCase lists ledger entries with filtering and pagination.
type ListTransactionsUseCase interface {
	Execute(ctx context.Context, query dtos.ListTransactionsQuery) (*dtos.TransactionListDTO, error)
}

// ============================================
// Transaction Handler
// ============================================

// TransactionHandler serves the transaction query endpoints. There is no
// command side here — transactions are only ever created as a side effect
// of a wallet command (Deposit, Withdraw, Transfer).
type TransactionHandler struct {
	getTransaction   GetTransactionUseCase
	listTransactions ListTransactionsUseCase
}

func NewTransactionHandler(getTransaction GetTransactionUseCase, listTransactions ListTransactionsUseCase) *TransactionHandler {
	return &TransactionHandler{getTransaction: getTransaction, listTransactions: listTransactions}
}

// ============================================
// Request DTOs
// ============================================

// TransactionIDParam is the transaction id path parameter.
type TransactionIDParam struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ListTransactionsParams filters the transaction list.
type ListTransactionsParams struct {
	WalletID string `form:"walletId" binding:"omitempty,uuid"`
	Type     string `form:"type" binding:"omitempty,oneof=DEPOSIT WITHDRAWAL TRANSFER"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING COMPLETED FAILED"`
}

// ============================================
// HTTP Handlers
// ============================================

// GetTransaction returns a transaction by id.
//
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	var params TransactionIDParam
	if !BindURI(c, &params) {
		return
	}

	result, err := h.getTransaction.Execute(c.Request.Context(), dtos.GetTransactionQuery{TransactionID: params.ID})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// ListTransactions lists transactions with optional filters.
//
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	pagination := ParsePagination(c)

	var filters ListTransactionsParams
	if !BindQuery(c, &filters) {
		return
	}

	query := dtos.ListTransactionsQuery{Offset: pagination.Offset(), Limit: pagination.PerPage}
	if filters.WalletID != "" {
		query.WalletID = &filters.WalletID
	}
	if filters.Type != "" {
		query.Type = &filters.Type
	}
	if filters.Status != "" {
		query.Status = &filters.Status
	}

	h.listAndRespond(c, pagination, query)
}

// GetWalletTransactions returns transactions for a specific wallet.
//
// @Router /api/v1/wallets/{id}/transactions [get]
func (h *TransactionHandler) GetWalletTransactions(c *gin.Context) {
	var wallet WalletIDParam
	if !BindURI(c, &wallet) {
		return
	}

	pagination := ParsePagination(c)

	var filters ListTransactionsParams
	if !BindQuery(c, &filters) {
		return
	}

	query := dtos.ListTransactionsQuery{WalletID: &wallet.ID, Offset: pagination.Offset(), Limit: pagination.PerPage}
	if filters.Type != "" {
		query.Type = &filters.Type
	}
	if filters.Status != "" {
		query.Status = &filters.Status
	}

	h.listAndRespond(c, pagination, query)
}

func (h *TransactionHandler) listAndRespond(c *gin.Context, pagination PaginationParams, query dtos.ListTransactionsQuery) {
	result, err := h.listTransactions.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	meta := BuildMeta(pagination, len(result.Transactions)+query.Offset)
	common.SuccessWithMeta(c, http.StatusOK, result, meta)
}

// RegisterRoutes registers the transaction query routes.
//
// Routes:
// - GET /transactions      - List transactions
// - GET /transactions/:id  - Get transaction by id
func (h *TransactionHandler) RegisterRoutes(router *gin.RouterGroup) {
	transactions := router.Group("/transactions")
	{
		transactions.GET("", h.ListTransactions)
		transactions.GET("/:id", h.GetTransaction)
	}
}

// RegisterWalletTransactionsRoute registers GET /wallets/:id/transactions
// onto an already-built wallet route group.
func (h *TransactionHandler) RegisterWalletTransactionsRoute(walletRoutes *gin.RouterGroup) {
	walletRoutes.GET("/:id/transactions", h.GetWalletTransactions)
}
