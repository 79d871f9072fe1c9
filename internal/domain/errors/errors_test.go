package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors(t *testing.T) {
	tests := []error{
		ErrEntityNotFound,
		ErrWalletNotFound,
		ErrWalletNotActive,
		ErrInsufficientBalance,
		ErrInvalidTransactionType,
		ErrTransactionAlreadyProcessed,
		ErrDuplicateReference,
		ErrOptimisticLockExhausted,
		ErrTransientFailureExhausted,
	}

	for _, err := range tests {
		assert.NotEmpty(t, err.Error())
	}
}

func TestKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindWalletNotFound, http.StatusNotFound},
		{KindWalletNotActive, http.StatusConflict},
		{KindInsufficientFunds, http.StatusConflict},
		{KindDuplicateReference, http.StatusConflict},
		{KindOptimisticLockExhausted, http.StatusServiceUnavailable},
		{KindTransientFailureExhausted, http.StatusServiceUnavailable},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.HTTPStatus())
	}
}

func TestDomainError_ErrorAndUnwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	domainErr := NewDomainError(KindInsufficientFunds, "INSUFFICIENT_FUNDS", "not enough funds", underlying)

	assert.Contains(t, domainErr.Error(), "INSUFFICIENT_FUNDS")
	assert.Contains(t, domainErr.Error(), "not enough funds")
	assert.Contains(t, domainErr.Error(), "underlying error")
	assert.Equal(t, underlying, domainErr.Unwrap())
	assert.Equal(t, KindInsufficientFunds, domainErr.Kind())
}

func TestValidationError(t *testing.T) {
	valErr := ValidationError{Field: "amount", Message: "must be positive"}
	assert.Contains(t, valErr.Error(), "amount")
	assert.Equal(t, KindValidation, valErr.Kind())
	assert.True(t, IsValidationError(valErr))
}

func TestValidationErrors_Add(t *testing.T) {
	var errs ValidationErrors
	errs.Add("amount", "required")
	errs.Add("referenceId", "required")

	assert.Len(t, errs, 2)
	assert.True(t, errs.HasErrors())
	assert.Contains(t, errs.Error(), "2 error")
}

func TestBusinessRuleViolation(t *testing.T) {
	brv := NewBusinessRuleViolation("CANNOT_CLOSE_NON_ZERO_WALLET", "non-zero balance", map[string]interface{}{"balance": "10.0000"})
	assert.True(t, IsBusinessRuleViolation(brv))
	assert.Contains(t, brv.Error(), "CANNOT_CLOSE_NON_ZERO_WALLET")
}

func TestConcurrencyError(t *testing.T) {
	ce := NewConcurrencyError("Wallet", "wallet-123", "version mismatch")
	assert.True(t, IsConcurrencyError(ce))
	assert.Equal(t, KindOptimisticLockExhausted, ce.Kind())
}

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"wallet not found", ErrWalletNotFound, KindWalletNotFound},
		{"entity not found", ErrEntityNotFound, KindWalletNotFound},
		{"wallet not active", ErrWalletNotActive, KindWalletNotActive},
		{"insufficient balance", ErrInsufficientBalance, KindInsufficientFunds},
		{"duplicate reference", ErrDuplicateReference, KindDuplicateReference},
		{"optimistic lock exhausted", ErrOptimisticLockExhausted, KindOptimisticLockExhausted},
		{"transient exhausted", ErrTransientFailureExhausted, KindTransientFailureExhausted},
		{"concurrency error", NewConcurrencyError("Wallet", "1", "x"), KindOptimisticLockExhausted},
		{"validation error", ValidationError{Field: "a", Message: "b"}, KindValidation},
		{"unknown", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyKind(tt.err))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrEntityNotFound))
	assert.True(t, IsNotFound(ErrWalletNotFound))
	assert.False(t, IsNotFound(errors.New("other")))
	assert.False(t, IsNotFound(nil))
}
