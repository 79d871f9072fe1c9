package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallethub/walletcore/internal/domain/events"
)

func TestWalletCreatedV1(t *testing.T) {
	walletID, userID := uuid.New(), uuid.New()
	now := time.Now()

	e := events.NewWalletCreatedV1(walletID, userID, now)

	assert.Equal(t, events.EventTypeWalletCreated, e.EventType())
	assert.Equal(t, 1, e.EventVersion())
	assert.Equal(t, walletID, e.AggregateID())
}

func TestFundsDepositedV1_RoundTripsThroughJSON(t *testing.T) {
	walletID, txID := uuid.New(), uuid.New()
	now := time.Now().UTC().Truncate(time.Second)

	e := events.NewFundsDepositedV1(walletID, txID, "10.0000", "20.0000", "ref-1", now)

	payload, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded events.FundsDepositedV1
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, e.WalletID, decoded.WalletID)
	assert.Equal(t, e.Amount, decoded.Amount)
	assert.Equal(t, e.BalanceAfter, decoded.BalanceAfter)
	assert.True(t, e.OccurredAt.Equal(decoded.OccurredAt))
}

func TestFundsTransferredV1_AggregateIDIsSourceWallet(t *testing.T) {
	source, dest, txID := uuid.New(), uuid.New(), uuid.New()

	e := events.NewFundsTransferredV1(source, dest, txID, "5.0000", "5.0000", "15.0000", "ref-2", time.Now())

	assert.Equal(t, source, e.AggregateID())
	assert.Equal(t, dest, e.DestinationWalletID)
	assert.Equal(t, events.EventTypeFundsTransferred, e.EventType())
}
