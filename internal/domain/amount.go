package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// NativeUnit is the ledger's native currency symbol.
	NativeUnit = "HBAR"

	// HbarDecimals is the number of fractional digits representable on the
	// ledger (1 tinybar = 10^-8 HBAR).
	HbarDecimals = 8

	// MaxAmountHbar is the total HBAR supply; no single transfer can exceed it.
	MaxAmountHbar = "50000000000"
)

var maxAmount = decimal.RequireFromString(MaxAmountHbar)

// Amount is a strictly positive HBAR quantity with at most tinybar precision.
type Amount struct {
	value decimal.Decimal
}

// NewAmount validates d and wraps it.
func NewAmount(d decimal.Decimal) (Amount, error) {
	if d.LessThanOrEqual(decimal.Zero) {
		return Amount{}, ErrInvalidAmount
	}

	if !d.Equal(d.Truncate(HbarDecimals)) {
		return Amount{}, fmt.Errorf("%w: at most %d decimal places", ErrAmountPrecision, HbarDecimals)
	}

	if d.GreaterThan(maxAmount) {
		return Amount{}, fmt.Errorf("%w: maximum is %s %s", ErrAmountTooLarge, MaxAmountHbar, NativeUnit)
	}

	return Amount{value: d}, nil
}

// ParseAmount parses a decimal literal such as "5.5" or "1e2".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q is not a number", ErrAmountNotNumeric, s)
	}
	return NewAmount(d)
}

// MustParseAmount is ParseAmount for constants and tests.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Decimal returns the HBAR value.
func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

// Tinybars returns the exact value in tinybars.
func (a Amount) Tinybars() int64 {
	return a.value.Shift(HbarDecimals).IntPart()
}

// IsZero reports whether a is the unset Amount.
func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

func (a Amount) String() string {
	return a.value.String()
}

// Balance is an account balance as reported by the ledger. Unlike Amount it
// may be zero.
type Balance struct {
	Tinybars int64
}

// Hbar returns the balance in HBAR.
func (b Balance) Hbar() decimal.Decimal {
	return decimal.New(b.Tinybars, -HbarDecimals)
}

func (b Balance) String() string {
	return b.Hbar().String() + " " + NativeUnit
}
