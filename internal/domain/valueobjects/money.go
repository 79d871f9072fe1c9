// Package valueobjects - Money is the critical value object in the wallet ledger.
//
// SOLID Principles:
// - SRP: Money knows how to be Money (arithmetic, comparison, validation)
// - LSP: All Money instances follow the same contract
package valueobjects

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
)

// Scale is the fixed number of fractional digits every wallet balance and
// transaction amount is stored and compared at. Chosen to satisfy the
// "scale >= 4" requirement on Wallet.balance.
const Scale = 4

// Money represents a fixed-precision decimal monetary amount.
// Uses big.Rat internally so arithmetic never drifts like float64 would,
// then rounds half-even to Scale on construction and after Add/Subtract.
//
// Value Object Pattern:
// - Immutable: all operations return new Money instances
// - Self-validating: cannot construct an invalid Money
type Money struct {
	amount *big.Rat
}

var (
	ErrNegativeAmount     = errors.New("amount cannot be negative")
	ErrInsufficientAmount = errors.New("insufficient amount")
	ErrInvalidAmount      = errors.New("invalid amount format")
	ErrAmountTooSmall     = errors.New("amount below minimum")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum")
)

// decimalPattern rejects scientific notation and anything that isn't a
// plain signed decimal, per the "scientific notation rejected" edge case.
var decimalPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// MinAmount and MaxAmount bound a single operation's amount.
var (
	MinAmount = big.NewRat(1, 100)       // 0.01
	MaxAmount = big.NewRat(1000000, 1)   // 1,000,000.00
)

// NewMoney parses a decimal string into Money, rejecting malformed input,
// negative amounts and scientific notation. Does not enforce the
// operation-level min/max bounds — callers that accept client input use
// NewAmount for that.
func NewMoney(amountStr string) (Money, error) {
	if !decimalPattern.MatchString(amountStr) {
		return Money{}, fmt.Errorf("%w: %s", ErrInvalidAmount, amountStr)
	}

	amount := new(big.Rat)
	if _, ok := amount.SetString(amountStr); !ok {
		return Money{}, fmt.Errorf("%w: %s", ErrInvalidAmount, amountStr)
	}

	if amount.Sign() < 0 {
		return Money{}, ErrNegativeAmount
	}

	return Money{amount: roundHalfEven(amount, Scale)}, nil
}

// NewAmount parses and validates a client-supplied operation amount against
// the [MinAmount, MaxAmount] bounds from the external interface contract.
func NewAmount(amountStr string) (Money, error) {
	m, err := NewMoney(amountStr)
	if err != nil {
		return Money{}, err
	}
	if m.amount.Cmp(MinAmount) < 0 {
		return Money{}, fmt.Errorf("%w: %s", ErrAmountTooSmall, amountStr)
	}
	if m.amount.Cmp(MaxAmount) > 0 {
		return Money{}, fmt.Errorf("%w: %s", ErrAmountTooLarge, amountStr)
	}
	return m, nil
}

// NewMoneyFromScaledInt reconstructs Money from the integer stored in
// Postgres (amount * 10^Scale) — the preferred on-disk representation.
func NewMoneyFromScaledInt(scaled int64) Money {
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(Scale), nil)
	return Money{amount: new(big.Rat).SetFrac(big.NewInt(scaled), divisor)}
}

// Zero returns a zero Money value.
func Zero() Money {
	return Money{amount: big.NewRat(0, 1)}
}

// Amount returns a defensive copy of the underlying rational.
func (m Money) Amount() *big.Rat {
	return new(big.Rat).Set(m.amount)
}

// String renders the amount at fixed Scale, e.g. "100.5000".
func (m Money) String() string {
	return m.amount.FloatString(Scale)
}

// ScaledInt returns amount * 10^Scale as an int64, the column format used by
// the write and read stores.
func (m Money) ScaledInt() int64 {
	multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(Scale), nil)
	scaled := new(big.Rat).Mul(m.amount, new(big.Rat).SetInt(multiplier))
	return scaled.Num().Int64() / scaled.Denom().Int64()
}

// Add returns the sum as a new Money.
func (m Money) Add(other Money) Money {
	return Money{amount: roundHalfEven(new(big.Rat).Add(m.amount, other.amount), Scale)}
}

// Subtract returns the difference. Returns ErrInsufficientAmount if the
// result would be negative — callers that want to allow transient negative
// intermediate values should compare with GreaterThanOrEqual first.
func (m Money) Subtract(other Money) (Money, error) {
	diff := new(big.Rat).Sub(m.amount, other.amount)
	if diff.Sign() < 0 {
		return Money{}, ErrInsufficientAmount
	}
	return Money{amount: roundHalfEven(diff, Scale)}, nil
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount.Sign() == 0 }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.amount.Sign() > 0 }

// GreaterThanOrEqual reports whether m >= other.
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.amount.Cmp(other.amount) >= 0
}

// LessThan reports whether m < other.
func (m Money) LessThan(other Money) bool {
	return m.amount.Cmp(other.amount) < 0
}

// Equals reports whether two amounts are numerically equal.
func (m Money) Equals(other Money) bool {
	return m.amount.Cmp(other.amount) == 0
}

// roundHalfEven rounds r to scale fractional digits using banker's rounding,
// matching the "rounded half-even before storage" tie-break rule.
func roundHalfEven(r *big.Rat, scale int) *big.Rat {
	multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(multiplier))

	num := scaled.Num()
	denom := scaled.Denom()

	quotient, remainder := new(big.Int).QuoRem(num, denom, new(big.Int))
	twiceRemainder := new(big.Int).Mul(remainder, big.NewInt(2))
	absTwiceRemainder := new(big.Int).Abs(twiceRemainder)
	absDenom := new(big.Int).Abs(denom)

	cmp := absTwiceRemainder.Cmp(absDenom)
	if cmp > 0 || (cmp == 0 && quotient.Bit(0) == 1) {
		if num.Sign() >= 0 {
			quotient.Add(quotient, big.NewInt(1))
		} else {
			quotient.Sub(quotient, big.NewInt(1))
		}
	}

	return new(big.Rat).SetFrac(quotient, multiplier)
}
