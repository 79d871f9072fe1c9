// Package entities - Wallet is the core aggregate for per-user balances.
// It enforces the invariants around balance, status and optimistic version.
package entities

import (
	"time"

	"github.com/google/uuid"

	"github.com/wallethub/walletcore/internal/domain/errors"
	"github.com/wallethub/walletcore/internal/domain/valueobjects"
)

// WalletStatus is the operational status of a wallet.
type WalletStatus string

const (
	WalletStatusActive WalletStatus = "ACTIVE" // normal operations allowed
	WalletStatusFrozen WalletStatus = "FROZEN" // temporarily disabled, admin path only
	WalletStatusClosed WalletStatus = "CLOSED" // permanently closed, never deleted
)

// IsValid reports whether s is one of the three defined statuses.
func (s WalletStatus) IsValid() bool {
	switch s {
	case WalletStatusActive, WalletStatusFrozen, WalletStatusClosed:
		return true
	default:
		return false
	}
}

// Wallet is the aggregate root owning a user's balance and its optimistic
// concurrency version.
//
// Invariants enforced here:
//   - (I1) balance never goes negative on a non-admin path
//   - (I2) version increments by exactly 1 on every successful mutation
//   - (I3) a wallet, once created, is never deleted — Close is terminal, not
//     a row removal
type Wallet struct {
	id        uuid.UUID
	userID    uuid.UUID
	status    WalletStatus
	balance   valueobjects.Money
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewWallet creates a new ACTIVE wallet with a zero balance for userID.
func NewWallet(userID uuid.UUID) *Wallet {
	now := time.Now()
	return &Wallet{
		id:        uuid.New(),
		userID:    userID,
		status:    WalletStatusActive,
		balance:   valueobjects.Zero(),
		version:   0,
		createdAt: now,
		updatedAt: now,
	}
}

// ReconstructWallet hydrates a Wallet from stored data. Used by repositories.
func ReconstructWallet(
	id, userID uuid.UUID,
	status WalletStatus,
	balance valueobjects.Money,
	version int64,
	createdAt, updatedAt time.Time,
) *Wallet {
	return &Wallet{
		id:        id,
		userID:    userID,
		status:    status,
		balance:   balance,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (w *Wallet) ID() uuid.UUID           { return w.id }
func (w *Wallet) UserID() uuid.UUID       { return w.userID }
func (w *Wallet) Status() WalletStatus    { return w.status }
func (w *Wallet) Balance() valueobjects.Money { return w.balance }
func (w *Wallet) Version() int64          { return w.version }
func (w *Wallet) CreatedAt() time.Time    { return w.createdAt }
func (w *Wallet) UpdatedAt() time.Time    { return w.updatedAt }

// IsActive reports whether the wallet accepts ordinary operations.
func (w *Wallet) IsActive() bool {
	return w.status == WalletStatusActive
}

// CanDebit reports whether a withdrawal/transfer-out may be applied.
func (w *Wallet) CanDebit() error {
	if w.status != WalletStatusActive {
		return errors.ErrWalletNotActive
	}
	return nil
}

// CanCredit reports whether a deposit/transfer-in may be applied.
func (w *Wallet) CanCredit() error {
	if w.status != WalletStatusActive {
		return errors.ErrWalletNotActive
	}
	return nil
}

// HasSufficientBalance reports whether the wallet can afford amount.
func (w *Wallet) HasSufficientBalance(amount valueobjects.Money) bool {
	return w.balance.GreaterThanOrEqual(amount)
}

// Credit adds funds and advances the optimistic version by exactly one (I2).
func (w *Wallet) Credit(amount valueobjects.Money) error {
	if err := w.CanCredit(); err != nil {
		return err
	}

	w.balance = w.balance.Add(amount)
	w.version++
	w.updatedAt = time.Now()
	return nil
}

// Debit subtracts funds, enforcing (I1): balance must stay non-negative.
func (w *Wallet) Debit(amount valueobjects.Money) error {
	if err := w.CanDebit(); err != nil {
		return err
	}
	if !w.HasSufficientBalance(amount) {
		return errors.ErrInsufficientBalance
	}

	newBalance, err := w.balance.Subtract(amount)
	if err != nil {
		return err
	}

	w.balance = newBalance
	w.version++
	w.updatedAt = time.Now()
	return nil
}

// Freeze transitions an active wallet to FROZEN. Admin-only path.
func (w *Wallet) Freeze() error {
	if w.status == WalletStatusClosed {
		return errors.NewBusinessRuleViolation(
			"CANNOT_FREEZE_CLOSED_WALLET",
			"cannot freeze a closed wallet",
			nil,
		)
	}
	w.status = WalletStatusFrozen
	w.version++
	w.updatedAt = time.Now()
	return nil
}

// Unfreeze transitions a FROZEN wallet back to ACTIVE.
func (w *Wallet) Unfreeze() error {
	if w.status != WalletStatusFrozen {
		return errors.NewBusinessRuleViolation(
			"WALLET_NOT_FROZEN",
			"can only unfreeze a frozen wallet",
			nil,
		)
	}
	w.status = WalletStatusActive
	w.version++
	w.updatedAt = time.Now()
	return nil
}

// Close permanently closes the wallet. Admin-only; requires a zero balance.
func (w *Wallet) Close() error {
	if w.status == WalletStatusClosed {
		return nil
	}
	if !w.balance.IsZero() {
		return errors.NewBusinessRuleViolation(
			"CANNOT_CLOSE_NON_ZERO_WALLET",
			"cannot close wallet with non-zero balance",
			map[string]interface{}{"balance": w.balance.String()},
		)
	}
	w.status = WalletStatusClosed
	w.version++
	w.updatedAt = time.Now()
	return nil
}
