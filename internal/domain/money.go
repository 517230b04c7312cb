package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point monetary value: an integer amount in minor units
// (cents) plus the currency and precision it is denominated in. Arithmetic
// never rounds; all rounding happens upstream before entries are recorded.
type Money struct {
	Currency  string
	Amount    int64
	Precision int32
}

// NewMoney creates a Money value from minor units.
func NewMoney(amount int64, currency string, precision int32) Money {
	return Money{Amount: amount, Currency: currency, Precision: precision}
}

// Zero returns the zero amount in the given currency.
func Zero(currency string, precision int32) Money {
	return Money{Currency: currency, Precision: precision}
}

// SameUnit reports whether two values share currency and precision.
// The Money zero value is unit-less and compatible with everything.
func (m Money) SameUnit(o Money) bool {
	if m.Currency == "" || o.Currency == "" {
		return true
	}

	return m.Currency == o.Currency && m.Precision == o.Precision
}

// Add returns m + o. Mixing currencies or precisions is a programming
// error and fails with ErrCurrencyMismatch rather than truncating.
// The unit-less zero value acts as the identity element.
func (m Money) Add(o Money) (Money, error) {
	if !m.SameUnit(o) {
		return Money{}, fmt.Errorf("%w: %s/%d + %s/%d",
			ErrCurrencyMismatch, m.Currency, m.Precision, o.Currency, o.Precision)
	}

	out := m
	if out.Currency == "" {
		out.Currency = o.Currency
		out.Precision = o.Precision
	}

	out.Amount += o.Amount

	return out, nil
}

// Sub returns m - o.
func (m Money) Sub(o Money) (Money, error) {
	return m.Add(o.Neg())
}

// Neg returns the value with its sign flipped.
func (m Money) Neg() Money {
	m.Amount = -m.Amount
	return m
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// Decimal returns the value in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -m.Precision)
}

func (m Money) String() string {
	if m.Currency == "" {
		return m.Decimal().String()
	}

	return m.Decimal().String() + " " + m.Currency
}
