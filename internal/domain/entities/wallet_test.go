package entities_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallethub/walletcore/internal/domain/entities"
	"github.com/wallethub/walletcore/internal/domain/errors"
	"github.com/wallethub/walletcore/internal/domain/valueobjects"
)

func TestNewWallet_StartsActiveWithZeroBalance(t *testing.T) {
	userID := uuid.New()
	w := entities.NewWallet(userID)

	assert.Equal(t, userID, w.UserID())
	assert.Equal(t, entities.WalletStatusActive, w.Status())
	assert.True(t, w.Balance().IsZero())
	assert.Equal(t, int64(0), w.Version())
}

func TestWallet_CreditIncrementsVersionByOne(t *testing.T) {
	w := entities.NewWallet(uuid.New())
	amount, _ := valueobjects.NewMoney("10.00")

	require.NoError(t, w.Credit(amount))
	assert.Equal(t, int64(1), w.Version())
	assert.Equal(t, "10.0000", w.Balance().String())

	require.NoError(t, w.Credit(amount))
	assert.Equal(t, int64(2), w.Version())
}

func TestWallet_DebitRejectsInsufficientBalance(t *testing.T) {
	w := entities.NewWallet(uuid.New())
	amount, _ := valueobjects.NewMoney("10.00")

	err := w.Debit(amount)
	assert.ErrorIs(t, err, errors.ErrInsufficientBalance)
	assert.Equal(t, int64(0), w.Version())
}

func TestWallet_DebitNeverGoesNegative(t *testing.T) {
	w := entities.NewWallet(uuid.New())
	ten, _ := valueobjects.NewMoney("10.00")
	require.NoError(t, w.Credit(ten))

	eleven, _ := valueobjects.NewMoney("11.00")
	err := w.Debit(eleven)
	assert.ErrorIs(t, err, errors.ErrInsufficientBalance)
	assert.True(t, w.Balance().GreaterThanOrEqual(valueobjects.Zero()))
}

func TestWallet_FrozenWalletRejectsDebitAndCredit(t *testing.T) {
	w := entities.NewWallet(uuid.New())
	require.NoError(t, w.Freeze())

	amount, _ := valueobjects.NewMoney("1.00")
	assert.ErrorIs(t, w.Debit(amount), errors.ErrWalletNotActive)
	assert.ErrorIs(t, w.Credit(amount), errors.ErrWalletNotActive)
}

func TestWallet_CloseRequiresZeroBalance(t *testing.T) {
	w := entities.NewWallet(uuid.New())
	amount, _ := valueobjects.NewMoney("1.00")
	require.NoError(t, w.Credit(amount))

	err := w.Close()
	assert.True(t, errors.IsBusinessRuleViolation(err))

	require.NoError(t, w.Debit(amount))
	require.NoError(t, w.Close())
	assert.Equal(t, entities.WalletStatusClosed, w.Status())
}

func TestWallet_UnfreezeRequiresFrozenStatus(t *testing.T) {
	w := entities.NewWallet(uuid.New())
	err := w.Unfreeze()
	assert.True(t, errors.IsBusinessRuleViolation(err))

	require.NoError(t, w.Freeze())
	require.NoError(t, w.Unfreeze())
	assert.Equal(t, entities.WalletStatusActive, w.Status())
}
