// Package entities - Transaction is the ledger record of one wallet operation.
package entities

import (
	"time"

	"github.com/google/uuid"

	"github.com/wallethub/walletcore/internal/domain/errors"
	"github.com/wallethub/walletcore/internal/domain/valueobjects"
)

// TransactionType is the kind of operation a Transaction records.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
)

// IsValid reports whether t is one of the three defined transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer:
		return true
	default:
		return false
	}
}

// TransactionStatus is the lifecycle state of a Transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// IsFinal reports whether s is terminal.
func (s TransactionStatus) IsFinal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// Transaction is the immutable-once-completed ledger row produced by a
// command handler.
//
// Invariants enforced by callers (repository + command handlers), not by
// this type alone:
//   - (I4) (walletId, referenceId) is unique
//   - (I5) a COMPLETED transaction is immutable
//   - (I6) a TRANSFER has exactly one row describing both legs
type Transaction struct {
	id                  uuid.UUID
	walletID            uuid.UUID
	destinationWalletID *uuid.UUID
	referenceID         string
	transactionType     TransactionType
	status              TransactionStatus
	amount              valueobjects.Money
	description         string
	failureReason       string
	createdAt           time.Time
}

// NewTransaction creates a PENDING transaction ready to be completed or
// failed in the same unit of work before it is ever persisted as PENDING.
func NewTransaction(
	walletID uuid.UUID,
	destinationWalletID *uuid.UUID,
	referenceID string,
	transactionType TransactionType,
	amount valueobjects.Money,
	description string,
) (*Transaction, error) {
	if referenceID == "" {
		return nil, errors.ValidationError{Field: "referenceId", Message: "referenceId is required"}
	}
	if !transactionType.IsValid() {
		return nil, errors.ErrInvalidTransactionType
	}
	if !amount.IsPositive() {
		return nil, errors.NewBusinessRuleViolation(
			"INVALID_AMOUNT",
			"transaction amount must be positive",
			map[string]interface{}{"amount": amount.String()},
		)
	}
	if transactionType == TransactionTypeTransfer && destinationWalletID == nil {
		return nil, errors.ValidationError{Field: "destinationWalletId", Message: "destinationWalletId is required for transfers"}
	}
	if transactionType != TransactionTypeTransfer && destinationWalletID != nil {
		return nil, errors.ValidationError{Field: "destinationWalletId", Message: "destinationWalletId only applies to transfers"}
	}

	return &Transaction{
		id:                  uuid.New(),
		walletID:            walletID,
		destinationWalletID: destinationWalletID,
		referenceID:         referenceID,
		transactionType:     transactionType,
		status:              TransactionStatusPending,
		amount:              amount,
		description:         description,
		createdAt:           time.Now(),
	}, nil
}

// ReconstructTransaction hydrates a Transaction from stored data.
func ReconstructTransaction(
	id, walletID uuid.UUID,
	destinationWalletID *uuid.UUID,
	referenceID string,
	transactionType TransactionType,
	status TransactionStatus,
	amount valueobjects.Money,
	description string,
	failureReason string,
	createdAt time.Time,
) *Transaction {
	return &Transaction{
		id:                  id,
		walletID:            walletID,
		destinationWalletID: destinationWalletID,
		referenceID:         referenceID,
		transactionType:     transactionType,
		status:              status,
		amount:              amount,
		description:         description,
		failureReason:       failureReason,
		createdAt:           createdAt,
	}
}

func (t *Transaction) ID() uuid.UUID                     { return t.id }
func (t *Transaction) WalletID() uuid.UUID                { return t.walletID }
func (t *Transaction) DestinationWalletID() *uuid.UUID    { return t.destinationWalletID }
func (t *Transaction) ReferenceID() string                { return t.referenceID }
func (t *Transaction) Type() TransactionType               { return t.transactionType }
func (t *Transaction) Status() TransactionStatus           { return t.status }
func (t *Transaction) Amount() valueobjects.Money           { return t.amount }
func (t *Transaction) Description() string                 { return t.description }
func (t *Transaction) FailureReason() string                { return t.failureReason }
func (t *Transaction) CreatedAt() time.Time                 { return t.createdAt }

// IsFinal reports whether the transaction reached a terminal state.
func (t *Transaction) IsFinal() bool { return t.status.IsFinal() }

// MarkCompleted transitions PENDING -> COMPLETED. Once COMPLETED a
// transaction is immutable (I5); this call must happen exactly once inside
// the same unit of work that mutated the wallet(s).
func (t *Transaction) MarkCompleted() error {
	if t.status != TransactionStatusPending {
		return errors.ErrTransactionAlreadyProcessed
	}
	t.status = TransactionStatusCompleted
	return nil
}

// MarkFailed transitions PENDING -> FAILED with a reason.
func (t *Transaction) MarkFailed(reason string) error {
	if t.status != TransactionStatusPending {
		return errors.ErrTransactionAlreadyProcessed
	}
	t.status = TransactionStatusFailed
	t.failureReason = reason
	return nil
}
