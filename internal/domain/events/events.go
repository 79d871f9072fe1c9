// Package events defines the domain events persisted to the outbox and
// published to downstream consumers. Events are immutable facts, additively
// versioned so old consumers keep working against new producers: unknown
// JSON fields are ignored on decode, and a breaking change gets a new
// EventType/Version pair rather than mutating an existing one.
package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the common shape every event payload satisfies.
type DomainEvent interface {
	EventType() string
	EventVersion() int
	AggregateID() uuid.UUID
}

// Event type constants. The outbox's aggregate_type/event_type columns use
// these verbatim, and C8 derives the NATS publish subject from them.
const (
	EventTypeWalletCreated      = "wallet.created"
	EventTypeFundsDeposited     = "wallet.funds_deposited"
	EventTypeFundsWithdrawn     = "wallet.funds_withdrawn"
	EventTypeFundsTransferred   = "wallet.funds_transferred"
)

// WalletCreatedV1 is raised once, when a wallet is first created.
type WalletCreatedV1 struct {
	Version   int       `json:"version"`
	WalletID  uuid.UUID `json:"walletId"`
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewWalletCreatedV1(walletID, userID uuid.UUID, createdAt time.Time) *WalletCreatedV1 {
	return &WalletCreatedV1{Version: 1, WalletID: walletID, UserID: userID, CreatedAt: createdAt}
}

func (e *WalletCreatedV1) EventType() string      { return EventTypeWalletCreated }
func (e *WalletCreatedV1) EventVersion() int      { return e.Version }
func (e *WalletCreatedV1) AggregateID() uuid.UUID { return e.WalletID }

// FundsDepositedV1 is raised when a deposit commits.
type FundsDepositedV1 struct {
	Version       int       `json:"version"`
	WalletID      uuid.UUID `json:"walletId"`
	TransactionID uuid.UUID `json:"transactionId"`
	Amount        string    `json:"amount"`
	BalanceAfter  string    `json:"balanceAfter"`
	ReferenceID   string    `json:"referenceId"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func NewFundsDepositedV1(walletID, transactionID uuid.UUID, amount, balanceAfter, referenceID string, occurredAt time.Time) *FundsDepositedV1 {
	return &FundsDepositedV1{
		Version:       1,
		WalletID:      walletID,
		TransactionID: transactionID,
		Amount:        amount,
		BalanceAfter:  balanceAfter,
		ReferenceID:   referenceID,
		OccurredAt:    occurredAt,
	}
}

func (e *FundsDepositedV1) EventType() string      { return EventTypeFundsDeposited }
func (e *FundsDepositedV1) EventVersion() int      { return e.Version }
func (e *FundsDepositedV1) AggregateID() uuid.UUID { return e.WalletID }

// FundsWithdrawnV1 is raised when a withdrawal commits.
type FundsWithdrawnV1 struct {
	Version       int       `json:"version"`
	WalletID      uuid.UUID `json:"walletId"`
	TransactionID uuid.UUID `json:"transactionId"`
	Amount        string    `json:"amount"`
	BalanceAfter  string    `json:"balanceAfter"`
	ReferenceID   string    `json:"referenceId"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func NewFundsWithdrawnV1(walletID, transactionID uuid.UUID, amount, balanceAfter, referenceID string, occurredAt time.Time) *FundsWithdrawnV1 {
	return &FundsWithdrawnV1{
		Version:       1,
		WalletID:      walletID,
		TransactionID: transactionID,
		Amount:        amount,
		BalanceAfter:  balanceAfter,
		ReferenceID:   referenceID,
		OccurredAt:    occurredAt,
	}
}

func (e *FundsWithdrawnV1) EventType() string      { return EventTypeFundsWithdrawn }
func (e *FundsWithdrawnV1) EventVersion() int      { return e.Version }
func (e *FundsWithdrawnV1) AggregateID() uuid.UUID { return e.WalletID }

// FundsTransferredV1 is raised once per transfer, from the source wallet's
// aggregate perspective; the projector applies the symmetric debit/credit.
type FundsTransferredV1 struct {
	Version             int       `json:"version"`
	WalletID            uuid.UUID `json:"walletId"`
	DestinationWalletID uuid.UUID `json:"destinationWalletId"`
	TransactionID       uuid.UUID `json:"transactionId"`
	Amount              string    `json:"amount"`
	SourceBalanceAfter  string    `json:"sourceBalanceAfter"`
	DestBalanceAfter    string    `json:"destBalanceAfter"`
	ReferenceID         string    `json:"referenceId"`
	OccurredAt          time.Time `json:"occurredAt"`
}

func NewFundsTransferredV1(walletID, destinationWalletID, transactionID uuid.UUID, amount, sourceBalanceAfter, destBalanceAfter, referenceID string, occurredAt time.Time) *FundsTransferredV1 {
	return &FundsTransferredV1{
		Version:             1,
		WalletID:            walletID,
		DestinationWalletID: destinationWalletID,
		TransactionID:       transactionID,
		Amount:              amount,
		SourceBalanceAfter:  sourceBalanceAfter,
		DestBalanceAfter:    destBalanceAfter,
		ReferenceID:         referenceID,
		OccurredAt:          occurredAt,
	}
}

func (e *FundsTransferredV1) EventType() string      { return EventTypeFundsTransferred }
func (e *FundsTransferredV1) EventVersion() int      { return e.Version }
func (e *FundsTransferredV1) AggregateID() uuid.UUID { return e.WalletID }
