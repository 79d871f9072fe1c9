// Package handlers - Wallet HTTP handlers.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wallethub/walletcore/internal/adapters/http/common"
	"github.com/wallethub/walletcore/internal/adapters/http/middleware"
	"github.com/wallethub/walletcore/internal/application/dtos"
)

// recordTransactionMetric reports a completed transaction to the business
// metrics. Parse failures on the decimal amount just skip the observation —
// the counter still increments.
func recordTransactionMetric(tx *dtos.TransactionDTO) {
	amount, _ := strconv.ParseFloat(tx.Amount, 64)
	middleware.RecordTransaction(tx.Type, tx.Status, amount)
}

// ============================================
// Use Case Interfaces
// ============================================

// CreateWalletUseCase opens a new wallet for a user.
type CreateWalletUseCase interface {
	Execute(ctx context.Context, cmd dtos.CreateWalletCommand) (*dtos.WalletDTO, error)
}

// DepositUseCase credits a wallet.
type DepositUseCase interface {
	Execute(ctx context.Context, cmd dtos.DepositCommand) (*dtos.TransactionDTO, error)
}

// WithdrawUseCase debits a wallet.
type WithdrawUseCase interface {
	Execute(ctx context.Context, cmd dtos.WithdrawCommand) (*dtos.TransactionDTO, error)
}

// TransferUseCase moves funds between two wallets.
type TransferUseCase interface {
	Execute(ctx context.Context, cmd dtos.TransferCommand) (*dtos.TransactionDTO, error)
}

// GetWalletUseCase resolves a single wallet.
type GetWalletUseCase interface {
	Execute(ctx context.Context, query dtos.GetWalletQuery) (*dtos.WalletDTO, error)
}

// ListWalletsUseCase lists wallets with filtering and pagination.
type ListWalletsUseCase interface {
	Execute(ctx context.Context, query dtos.ListWalletsQuery) (*dtos.WalletListDTO, error)
}

// GetHistoricalBalanceUseCase answers what a wallet's balance was at a
// point in time.
type GetHistoricalBalanceUseCase interface {
	Execute(ctx context.Context, query dtos.GetHistoricalBalanceQuery) (*dtos.HistoricalBalanceDTO, error)
}

// FreezeWalletUseCase transitions a wallet ACTIVE -> FROZEN.
type FreezeWalletUseCase interface {
	Execute(ctx context.Context, cmd dtos.FreezeWalletCommand) (*dtos.WalletDTO, error)
}

// UnfreezeWalletUseCase transitions a wallet FROZEN -> ACTIVE.
type UnfreezeWalletUseCase interface {
	Execute(ctx context.Context, cmd dtos.UnfreezeWalletCommand) (*dtos.WalletDTO, error)
}

// CloseWalletUseCase transitions a wallet to CLOSED.
type CloseWalletUseCase interface {
	Execute(ctx context.Context, cmd dtos.CloseWalletCommand) (*dtos.WalletDTO, error)
}

// DegradationChecker reports whether an operation+wallet pair has recently
// exhausted its optimistic-lock retry budget often enough to fast-fail
// further requests rather than make the caller pay for another doomed
// retry cycle. Satisfied by *resilience.Retrier.
type DegradationChecker interface {
	IsHot(operation, walletID string) bool
}

// ============================================
// Wallet Handler
// ============================================

// WalletHandler serves the wallet command and query endpoints.
type WalletHandler struct {
	createWallet      CreateWalletUseCase
	deposit           DepositUseCase
	withdraw          WithdrawUseCase
	transfer          TransferUseCase
	getWallet         GetWalletUseCase
	listWallets       ListWalletsUseCase
	historicalBalance GetHistoricalBalanceUseCase
	freeze            FreezeWalletUseCase
	unfreeze          UnfreezeWalletUseCase
	close             CloseWalletUseCase
	degradation       DegradationChecker
}

func NewWalletHandler(
	createWallet CreateWalletUseCase,
	deposit DepositUseCase,
	withdraw WithdrawUseCase,
	transfer TransferUseCase,
	getWallet GetWalletUseCase,
	listWallets ListWalletsUseCase,
	historicalBalance GetHistoricalBalanceUseCase,
	freeze FreezeWalletUseCase,
	unfreeze UnfreezeWalletUseCase,
	closeUC CloseWalletUseCase,
	degradation DegradationChecker,
) *WalletHandler {
	return &WalletHandler{
		createWallet:      createWallet,
		deposit:           deposit,
		withdraw:          withdraw,
		transfer:          transfer,
		getWallet:         getWallet,
		listWallets:       listWallets,
		historicalBalance: historicalBalance,
		freeze:            freeze,
		unfreeze:          unfreeze,
		close:             closeUC,
		degradation:       degradation,
	}
}

// ============================================
// Request DTOs
// ============================================

// CreateWalletRequest opens a new wallet.
type CreateWalletRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
}

// DepositRequest credits a wallet.
type DepositRequest struct {
	Amount      string `json:"amount" binding:"required,money_amount"`
	ReferenceID string `json:"referenceId" binding:"required"`
	Description string `json:"description,omitempty"`
}

// WithdrawRequest debits a wallet.
type WithdrawRequest struct {
	Amount      string `json:"amount" binding:"required,money_amount"`
	ReferenceID string `json:"referenceId" binding:"required"`
	Description string `json:"description,omitempty"`
}

// TransferRequest moves funds from the path wallet to another.
type TransferRequest struct {
	DestinationWalletID string `json:"destinationWalletId" binding:"required,uuid"`
	Amount              string `json:"amount" binding:"required,money_amount"`
	ReferenceID         string `json:"referenceId" binding:"required"`
	Description         string `json:"description,omitempty"`
}

// WalletIDParam is the wallet id path parameter.
type WalletIDParam struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ListWalletsParams filters the wallet list.
type ListWalletsParams struct {
	UserID string `form:"userId" binding:"omitempty,uuid"`
	Status string `form:"status" binding:"omitempty,oneof=ACTIVE FROZEN CLOSED"`
}

// HistoricalBalanceParams selects the point-in-time balance query.
type HistoricalBalanceParams struct {
	AsOf string `form:"at" binding:"required"`
}

// ============================================
// HTTP Handlers
// ============================================

// CreateWallet opens a new wallet.
//
// @Router /api/v1/wallets [post]
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	var req CreateWalletRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.createWallet.Execute(c.Request.Context(), dtos.CreateWalletCommand{UserID: req.UserID})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusCreated, result)
}

// GetWallet returns a wallet by id.
//
// @Router /api/v1/wallets/{id} [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	var params WalletIDParam
	if !BindURI(c, &params) {
		return
	}

	result, err := h.getWallet.Execute(c.Request.Context(), dtos.GetWalletQuery{WalletID: params.ID})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// ListWallets lists wallets with optional filters.
//
// @Router /api/v1/wallets [get]
func (h *WalletHandler) ListWallets(c *gin.Context) {
	pagination := ParsePagination(c)

	var filters ListWalletsParams
	if !BindQuery(c, &filters) {
		return
	}

	query := dtos.ListWalletsQuery{Offset: pagination.Offset(), Limit: pagination.PerPage}
	if filters.UserID != "" {
		query.UserID = &filters.UserID
	}
	if filters.Status != "" {
		query.Status = &filters.Status
	}

	result, err := h.listWallets.Execute(c.Request.Context(), query)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	meta := BuildMeta(pagination, len(result.Wallets)+query.Offset)
	common.SuccessWithMeta(c, http.StatusOK, result, meta)
}

// Deposit credits the path wallet.
//
// @Router /api/v1/wallets/{id}/deposit [post]
func (h *WalletHandler) Deposit(c *gin.Context) {
	var params WalletIDParam
	if !BindURI(c, &params) {
		return
	}

	var req DepositRequest
	if !BindJSON(c, &req) {
		return
	}

	if h.degradation != nil && h.degradation.IsHot("deposit", params.ID) {
		common.DegradedResponse(c, params.ID)
		return
	}

	cmd := dtos.DepositCommand{
		WalletID:    params.ID,
		Amount:      req.Amount,
		ReferenceID: req.ReferenceID,
		Description: req.Description,
	}

	result, err := h.deposit.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	recordTransactionMetric(result)

	common.Success(c, http.StatusOK, result)
}

// Withdraw debits the path wallet.
//
// @Router /api/v1/wallets/{id}/withdraw [post]
func (h *WalletHandler) Withdraw(c *gin.Context) {
	var params WalletIDParam
	if !BindURI(c, &params) {
		return
	}

	var req WithdrawRequest
	if !BindJSON(c, &req) {
		return
	}

	if h.degradation != nil && h.degradation.IsHot("withdraw", params.ID) {
		common.DegradedResponse(c, params.ID)
		return
	}

	cmd := dtos.WithdrawCommand{
		WalletID:    params.ID,
		Amount:      req.Amount,
		ReferenceID: req.ReferenceID,
		Description: req.Description,
	}

	result, err := h.withdraw.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	recordTransactionMetric(result)

	common.Success(c, http.StatusOK, result)
}

// Transfer moves funds from the path wallet to another.
//
// @Router /api/v1/wallets/{id}/transfer [post]
func (h *WalletHandler) Transfer(c *gin.Context) {
	var params WalletIDParam
	if !BindURI(c, &params) {
		return
	}

	var req TransferRequest
	if !BindJSON(c, &req) {
		return
	}

	if h.degradation != nil && h.degradation.IsHot("transfer", params.ID) {
		common.DegradedResponse(c, params.ID)
		return
	}

	cmd := dtos.TransferCommand{
		SourceWalletID:      params.ID,
		DestinationWalletID: req.DestinationWalletID,
		Amount:              req.Amount,
		ReferenceID:         req.ReferenceID,
		Description:         req.Description,
	}

	result, err := h.transfer.Execute(c.Request.Context(), cmd)
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}
	recordTransactionMetric(result)

	common.Success(c, http.StatusOK, result)
}

// GetHistoricalBalance returns the wallet's balance as of a point in time.
//
// @Router /api/v1/wallets/{id}/balance [get]
func (h *WalletHandler) GetHistoricalBalance(c *gin.Context) {
	var params WalletIDParam
	if !BindURI(c, &params) {
		return
	}

	var q HistoricalBalanceParams
	if !BindQuery(c, &q) {
		return
	}

	asOf, err := time.Parse(time.RFC3339, q.AsOf)
	if err != nil {
		common.ValidationErrorResponse(c, []common.FieldError{
			{Field: "at", Message: "must be an RFC3339 timestamp", Code: "invalid"},
		})
		return
	}

	result, err := h.historicalBalance.Execute(c.Request.Context(), dtos.GetHistoricalBalanceQuery{
		WalletID: params.ID,
		AsOf:     asOf,
	})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// Freeze transitions the path wallet to FROZEN.
//
// @Router /admin/wallets/{id}/freeze [post]
func (h *WalletHandler) Freeze(c *gin.Context) {
	var params WalletIDParam
	if !BindURI(c, &params) {
		return
	}

	result, err := h.freeze.Execute(c.Request.Context(), dtos.FreezeWalletCommand{WalletID: params.ID})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// Unfreeze transitions the path wallet back to ACTIVE.
//
// @Router /admin/wallets/{id}/unfreeze [post]
func (h *WalletHandler) Unfreeze(c *gin.Context) {
	var params WalletIDParam
	if !BindURI(c, &params) {
		return
	}

	result, err := h.unfreeze.Execute(c.Request.Context(), dtos.UnfreezeWalletCommand{WalletID: params.ID})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// Close transitions the path wallet to CLOSED. Requires a zero balance.
//
// @Router /admin/wallets/{id}/close [post]
func (h *WalletHandler) Close(c *gin.Context) {
	var params WalletIDParam
	if !BindURI(c, &params) {
		return
	}

	result, err := h.close.Execute(c.Request.Context(), dtos.CloseWalletCommand{WalletID: params.ID})
	if err != nil {
		common.HandleDomainError(c, err)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// RegisterRoutes registers the public wallet routes.
//
// Routes:
// - POST   /wallets                - Create wallet
// - GET    /wallets                - List wallets
// - GET    /wallets/:id            - Get wallet by id
// - POST   /wallets/:id/deposit    - Credit wallet
// - POST   /wallets/:id/withdraw   - Debit wallet
// - POST   /wallets/:id/transfer   - Transfer funds
// - GET    /wallets/:id/balance    - Historical balance (?at=RFC3339)
func (h *WalletHandler) RegisterRoutes(router *gin.RouterGroup, financialOpsRateLimit gin.HandlerFunc) {
	wallets := router.Group("/wallets")
	{
		wallets.POST("", h.CreateWallet)
		wallets.GET("", h.ListWallets)
		wallets.GET("/:id", h.GetWallet)
		wallets.GET("/:id/balance", h.GetHistoricalBalance)
		wallets.POST("/:id/deposit", financialOpsRateLimit, h.Deposit)
		wallets.POST("/:id/withdraw", financialOpsRateLimit, h.Withdraw)
		wallets.POST("/:id/transfer", financialOpsRateLimit, h.Transfer)
	}
}

// RegisterAdminRoutes registers the admin status-transition routes.
//
// Routes:
// - POST /admin/wallets/:id/freeze
// - POST /admin/wallets/:id/unfreeze
// - POST /admin/wallets/:id/close
func (h *WalletHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	wallets := router.Group("/wallets")
	{
		wallets.POST("/:id/freeze", h.Freeze)
		wallets.POST("/:id/unfreeze", h.Unfreeze)
		wallets.POST("/:id/close", h.Close)
	}
}
