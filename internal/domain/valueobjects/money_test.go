// Package valueobjects_test - domain layer tests have no external dependencies.
package valueobjects_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallethub/walletcore/internal/domain/valueobjects"
)

func TestNewMoney_Success(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{"whole amount", "100"},
		{"fractional amount", "100.50"},
		{"zero", "0"},
		{"four decimals", "0.0001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := valueobjects.NewMoney(tt.amount)
			require.NoError(t, err)
		})
	}
}

func TestNewMoney_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{"negative", "-10.00"},
		{"scientific notation", "1e10"},
		{"garbage", "abc"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := valueobjects.NewMoney(tt.amount)
			require.Error(t, err)
		})
	}
}

func TestNewMoney_RoundsHalfEvenAtScale(t *testing.T) {
	m, err := valueobjects.NewMoney("1.00005")
	require.NoError(t, err)
	assert.Equal(t, "1.0000", m.String())

	m2, err := valueobjects.NewMoney("1.00015")
	require.NoError(t, err)
	assert.Equal(t, "1.0002", m2.String())
}

func TestNewAmount_EnforcesBounds(t *testing.T) {
	_, err := valueobjects.NewAmount("0.00")
	assert.ErrorIs(t, err, valueobjects.ErrAmountTooSmall)

	_, err = valueobjects.NewAmount("1000000.01")
	assert.ErrorIs(t, err, valueobjects.ErrAmountTooLarge)

	m, err := valueobjects.NewAmount("1000000.00")
	require.NoError(t, err)
	assert.Equal(t, "1000000.0000", m.String())

	m, err = valueobjects.NewAmount("0.01")
	require.NoError(t, err)
	assert.Equal(t, "0.0100", m.String())
}

func TestMoney_Add(t *testing.T) {
	a, _ := valueobjects.NewMoney("10.25")
	b, _ := valueobjects.NewMoney("5.75")
	sum := a.Add(b)
	assert.Equal(t, "16.0000", sum.String())
}

func TestMoney_Subtract(t *testing.T) {
	a, _ := valueobjects.NewMoney("10.00")
	b, _ := valueobjects.NewMoney("3.00")

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "7.0000", diff.String())

	_, err = b.Subtract(a)
	assert.ErrorIs(t, err, valueobjects.ErrInsufficientAmount)
}

func TestMoney_ScaledIntRoundTrip(t *testing.T) {
	m, err := valueobjects.NewMoney("1234.5678")
	require.NoError(t, err)

	scaled := m.ScaledInt()
	assert.Equal(t, int64(12345678), scaled)

	reconstructed := valueobjects.NewMoneyFromScaledInt(scaled)
	assert.True(t, m.Equals(reconstructed))
}

func TestMoney_Comparisons(t *testing.T) {
	a, _ := valueobjects.NewMoney("10.00")
	b, _ := valueobjects.NewMoney("5.00")

	assert.True(t, a.GreaterThanOrEqual(b))
	assert.True(t, b.LessThan(a))
	assert.False(t, a.Equals(b))
	assert.True(t, valueobjects.Zero().IsZero())
	assert.True(t, a.IsPositive())
}
