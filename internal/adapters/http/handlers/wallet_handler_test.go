package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallethub/walletcore/internal/application/dtos"
	domerrors "github.com/wallethub/walletcore/internal/domain/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
	SetupValidator()
}

// ============================================
// Mock Use Cases
// ============================================

type mockCreateWalletUseCase struct {
	fn func(ctx context.Context, cmd dtos.CreateWalletCommand) (*dtos.WalletDTO, error)
}

func (m *mockCreateWalletUseCase) Execute(ctx context.Context, cmd dtos.CreateWalletCommand) (*dtos.WalletDTO, error) {
	return m.fn(ctx, cmd)
}

type mockDepositUseCase struct {
	fn func(ctx context.Context, cmd dtos.DepositCommand) (*dtos.TransactionDTO, error)
}

func (m *mockDepositUseCase) Execute(ctx context.Context, cmd dtos.DepositCommand) (*dtos.TransactionDTO, error) {
	return m.fn(ctx, cmd)
}

type mockWithdrawUseCase struct {
	fn func(ctx context.Context, cmd dtos.WithdrawCommand) (*dtos.TransactionDTO, error)
}

func (m *mockWithdrawUseCase) Execute(ctx context.Context, cmd dtos.WithdrawCommand) (*dtos.TransactionDTO, error) {
	return m.fn(ctx, cmd)
}

type mockTransferUseCase struct {
	fn func(ctx context.Context, cmd dtos.TransferCommand) (*dtos.TransactionDTO, error)
}

func (m *mockTransferUseCase) Execute(ctx context.Context, cmd dtos.TransferCommand) (*dtos.TransactionDTO, error) {
	return m.fn(ctx, cmd)
}

type mockGetWalletUseCase struct {
	fn func(ctx context.Context, query dtos.GetWalletQuery) (*dtos.WalletDTO, error)
}

func (m *mockGetWalletUseCase) Execute(ctx context.Context, query dtos.GetWalletQuery) (*dtos.WalletDTO, error) {
	return m.fn(ctx, query)
}

type mockListWalletsUseCase struct {
	fn func(ctx context.Context, query dtos.ListWalletsQuery) (*dtos.WalletListDTO, error)
}

func (m *mockListWalletsUseCase) Execute(ctx context.Context, query dtos.ListWalletsQuery) (*dtos.WalletListDTO, error) {
	return m.fn(ctx, query)
}

type mockHistoricalBalanceUseCase struct {
	fn func(ctx context.Context, query dtos.GetHistoricalBalanceQuery) (*dtos.HistoricalBalanceDTO, error)
}

func (m *mockHistoricalBalanceUseCase) Execute(ctx context.Context, query dtos.GetHistoricalBalanceQuery) (*dtos.HistoricalBalanceDTO, error) {
	return m.fn(ctx, query)
}

type mockFreezeUseCase struct {
	fn func(ctx context.Context, cmd dtos.FreezeWalletCommand) (*dtos.WalletDTO, error)
}

func (m *mockFreezeUseCase) Execute(ctx context.Context, cmd dtos.FreezeWalletCommand) (*dtos.WalletDTO, error) {
	return m.fn(ctx, cmd)
}

type mockUnfreezeUseCase struct {
	fn func(ctx context.Context, cmd dtos.UnfreezeWalletCommand) (*dtos.WalletDTO, error)
}

func (m *mockUnfreezeUseCase) Execute(ctx context.Context, cmd dtos.UnfreezeWalletCommand) (*dtos.WalletDTO, error) {
	return m.fn(ctx, cmd)
}

type mockCloseUseCase struct {
	fn func(ctx context.Context, cmd dtos.CloseWalletCommand) (*dtos.WalletDTO, error)
}

func (m *mockCloseUseCase) Execute(ctx context.Context, cmd dtos.CloseWalletCommand) (*dtos.WalletDTO, error) {
	return m.fn(ctx, cmd)
}

// ============================================
// Test Helpers
// ============================================

func newTestWalletHandler() (*WalletHandler, *gin.Engine) {
	h := &WalletHandler{}
	router := gin.New()
	group := router.Group("/api/v1")
	h.RegisterRoutes(group, func(c *gin.Context) { c.Next() })
	admin := router.Group("/admin")
	h.RegisterAdminRoutes(admin)
	return h, router
}

func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ============================================
// Tests
// ============================================

func TestWalletHandler_CreateWallet_Success(t *testing.T) {
	h, router := newTestWalletHandler()
	userID := uuid.New().String()
	h.createWallet = &mockCreateWalletUseCase{fn: func(ctx context.Context, cmd dtos.CreateWalletCommand) (*dtos.WalletDTO, error) {
		assert.Equal(t, userID, cmd.UserID)
		return &dtos.WalletDTO{ID: uuid.New().String(), UserID: userID, Status: "ACTIVE", Balance: "0.0000"}, nil
	}}

	w := performRequest(router, http.MethodPost, "/api/v1/wallets", CreateWalletRequest{UserID: userID})

	require.Equal(t, http.StatusCreated, w.Code)
}

func TestWalletHandler_CreateWallet_InvalidUserID(t *testing.T) {
	h, router := newTestWalletHandler()
	h.createWallet = &mockCreateWalletUseCase{fn: func(ctx context.Context, cmd dtos.CreateWalletCommand) (*dtos.WalletDTO, error) {
		t.Fatal("use case must not be called for invalid input")
		return nil, nil
	}}

	w := performRequest(router, http.MethodPost, "/api/v1/wallets", CreateWalletRequest{UserID: "not-a-uuid"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletHandler_GetWallet_NotFound(t *testing.T) {
	h, router := newTestWalletHandler()
	h.getWallet = &mockGetWalletUseCase{fn: func(ctx context.Context, query dtos.GetWalletQuery) (*dtos.WalletDTO, error) {
		return nil, domerrors.ErrWalletNotFound
	}}

	w := performRequest(router, http.MethodGet, "/api/v1/wallets/"+uuid.New().String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWalletHandler_Deposit_Success(t *testing.T) {
	h, router := newTestWalletHandler()
	walletID := uuid.New().String()
	h.deposit = &mockDepositUseCase{fn: func(ctx context.Context, cmd dtos.DepositCommand) (*dtos.TransactionDTO, error) {
		assert.Equal(t, walletID, cmd.WalletID)
		assert.Equal(t, "100.0000", cmd.Amount)
		return &dtos.TransactionDTO{ID: uuid.New().String(), WalletID: walletID, Type: "DEPOSIT", Status: "COMPLETED", Amount: cmd.Amount}, nil
	}}

	req := DepositRequest{Amount: "100.0000", ReferenceID: uuid.New().String()}
	w := performRequest(router, http.MethodPost, "/api/v1/wallets/"+walletID+"/deposit", req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestWalletHandler_Deposit_DuplicateReferenceDifferentAmount(t *testing.T) {
	h, router := newTestWalletHandler()
	walletID := uuid.New().String()
	h.deposit = &mockDepositUseCase{fn: func(ctx context.Context, cmd dtos.DepositCommand) (*dtos.TransactionDTO, error) {
		return nil, domerrors.ErrDuplicateReference
	}}

	req := DepositRequest{Amount: "100.0000", ReferenceID: "ref-1"}
	w := performRequest(router, http.MethodPost, "/api/v1/wallets/"+walletID+"/deposit", req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestWalletHandler_Withdraw_InsufficientFunds(t *testing.T) {
	h, router := newTestWalletHandler()
	walletID := uuid.New().String()
	h.withdraw = &mockWithdrawUseCase{fn: func(ctx context.Context, cmd dtos.WithdrawCommand) (*dtos.TransactionDTO, error) {
		return nil, domerrors.ErrInsufficientBalance
	}}

	req := WithdrawRequest{Amount: "100.0000", ReferenceID: uuid.New().String()}
	w := performRequest(router, http.MethodPost, "/api/v1/wallets/"+walletID+"/withdraw", req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestWalletHandler_Transfer_Success(t *testing.T) {
	h, router := newTestWalletHandler()
	sourceID := uuid.New().String()
	destID := uuid.New().String()
	h.transfer = &mockTransferUseCase{fn: func(ctx context.Context, cmd dtos.TransferCommand) (*dtos.TransactionDTO, error) {
		assert.Equal(t, sourceID, cmd.SourceWalletID)
		assert.Equal(t, destID, cmd.DestinationWalletID)
		return &dtos.TransactionDTO{ID: uuid.New().String(), WalletID: sourceID, Type: "TRANSFER", Status: "COMPLETED"}, nil
	}}

	req := TransferRequest{DestinationWalletID: destID, Amount: "50.0000", ReferenceID: uuid.New().String()}
	w := performRequest(router, http.MethodPost, "/api/v1/wallets/"+sourceID+"/transfer", req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestWalletHandler_Transfer_InvalidDestination(t *testing.T) {
	h, router := newTestWalletHandler()
	sourceID := uuid.New().String()
	h.transfer = &mockTransferUseCase{fn: func(ctx context.Context, cmd dtos.TransferCommand) (*dtos.TransactionDTO, error) {
		t.Fatal("use case must not be called for an invalid destination id")
		return nil, nil
	}}

	req := TransferRequest{DestinationWalletID: "not-a-uuid", Amount: "50.0000", ReferenceID: uuid.New().String()}
	w := performRequest(router, http.MethodPost, "/api/v1/wallets/"+sourceID+"/transfer", req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletHandler_GetHistoricalBalance_Success(t *testing.T) {
	h, router := newTestWalletHandler()
	walletID := uuid.New().String()
	h.historicalBalance = &mockHistoricalBalanceUseCase{fn: func(ctx context.Context, query dtos.GetHistoricalBalanceQuery) (*dtos.HistoricalBalanceDTO, error) {
		assert.Equal(t, walletID, query.WalletID)
		return &dtos.HistoricalBalanceDTO{WalletID: walletID, Balance: "25.0000", AsOf: query.AsOf}, nil
	}}

	at := time.Now().UTC().Format(time.RFC3339)
	w := performRequest(router, http.MethodGet, "/api/v1/wallets/"+walletID+"/balance?at="+at, nil)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestWalletHandler_GetHistoricalBalance_InvalidTimestamp(t *testing.T) {
	h, router := newTestWalletHandler()
	walletID := uuid.New().String()
	h.historicalBalance = &mockHistoricalBalanceUseCase{fn: func(ctx context.Context, query dtos.GetHistoricalBalanceQuery) (*dtos.HistoricalBalanceDTO, error) {
		t.Fatal("use case must not be called for an invalid timestamp")
		return nil, nil
	}}

	w := performRequest(router, http.MethodGet, "/api/v1/wallets/"+walletID+"/balance?at=not-a-time", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletHandler_Freeze_Success(t *testing.T) {
	h, router := newTestWalletHandler()
	walletID := uuid.New().String()
	h.freeze = &mockFreezeUseCase{fn: func(ctx context.Context, cmd dtos.FreezeWalletCommand) (*dtos.WalletDTO, error) {
		assert.Equal(t, walletID, cmd.WalletID)
		return &dtos.WalletDTO{ID: walletID, Status: "FROZEN"}, nil
	}}

	w := performRequest(router, http.MethodPost, "/admin/wallets/"+walletID+"/freeze", nil)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestWalletHandler_Unfreeze_Success(t *testing.T) {
	h, router := newTestWalletHandler()
	walletID := uuid.New().String()
	h.unfreeze = &mockUnfreezeUseCase{fn: func(ctx context.Context, cmd dtos.UnfreezeWalletCommand) (*dtos.WalletDTO, error) {
		assert.Equal(t, walletID, cmd.WalletID)
		return &dtos.WalletDTO{ID: walletID, Status: "ACTIVE"}, nil
	}}

	w := performRequest(router, http.MethodPost, "/admin/wallets/"+walletID+"/unfreeze", nil)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestWalletHandler_Close_NonZeroBalanceRejected(t *testing.T) {
	h, router := newTestWalletHandler()
	walletID := uuid.New().String()
	h.close = &mockCloseUseCase{fn: func(ctx context.Context, cmd dtos.CloseWalletCommand) (*dtos.WalletDTO, error) {
		return nil, domerrors.NewBusinessRuleViolation("NONZERO_BALANCE", "wallet balance must be zero to close", nil)
	}}

	w := performRequest(router, http.MethodPost, "/admin/wallets/"+walletID+"/close", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestWalletHandler_ListWallets_Success(t *testing.T) {
	h, router := newTestWalletHandler()
	h.listWallets = &mockListWalletsUseCase{fn: func(ctx context.Context, query dtos.ListWalletsQuery) (*dtos.WalletListDTO, error) {
		return &dtos.WalletListDTO{Wallets: []dtos.WalletDTO{{ID: uuid.New().String()}}, Offset: query.Offset, Limit: query.Limit}, nil
	}}

	w := performRequest(router, http.MethodGet, "/api/v1/wallets?page=1&per_page=20", nil)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestWalletHandler_ListWallets_FiltersByUserAndStatus(t *testing.T) {
	h, router := newTestWalletHandler()
	userID := uuid.New().String()
	h.listWallets = &mockListWalletsUseCase{fn: func(ctx context.Context, query dtos.ListWalletsQuery) (*dtos.WalletListDTO, error) {
		require.NotNil(t, query.UserID)
		assert.Equal(t, userID, *query.UserID)
		require.NotNil(t, query.Status)
		assert.Equal(t, "ACTIVE", *query.Status)
		return &dtos.WalletListDTO{Wallets: []dtos.WalletDTO{}, Offset: query.Offset, Limit: query.Limit}, nil
	}}

	w := performRequest(router, http.MethodGet, "/api/v1/wallets?userId="+userID+"&status=ACTIVE", nil)

	require.Equal(t, http.StatusOK, w.Code)
}
