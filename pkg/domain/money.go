package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	dErrors "storefront/pkg/domain-errors"
)

// MaxMoney is the largest representable amount in minor units.
const MaxMoney = 10_000_000

// Money is an amount of currency in integer minor units (yen).
//
// Invariants:
//   - 0 <= amount <= MaxMoney
//   - arithmetic never clamps: out-of-range results fail loudly
type Money struct {
	amount int64
}

// NewMoney validates and returns a Money value.
func NewMoney(amount int64) (Money, error) {
	if amount < 0 {
		return Money{}, dErrors.New(dErrors.CodeValidation, "amount cannot be negative")
	}
	if amount > MaxMoney {
		return Money{}, dErrors.Newf(dErrors.CodeValidation, "amount cannot exceed %d", int64(MaxMoney))
	}
	return Money{amount: amount}, nil
}

// Amount returns the value in minor units.
func (m Money) Amount() int64 {
	return m.amount
}

// Equals compares two amounts by value.
func (m Money) Equals(other Money) bool {
	return m.amount == other.amount
}

// LessThan reports whether m is strictly below other.
func (m Money) LessThan(other Money) bool {
	return m.amount < other.amount
}

// GreaterThan reports whether m is strictly above other.
func (m Money) GreaterThan(other Money) bool {
	return m.amount > other.amount
}

// Add returns the sum, failing when the result exceeds MaxMoney.
func (m Money) Add(other Money) (Money, error) {
	return NewMoney(m.amount + other.amount)
}

// Sub returns the difference, failing when the result would be negative.
func (m Money) Sub(other Money) (Money, error) {
	if other.amount > m.amount {
		return Money{}, dErrors.New(dErrors.CodeValidation, "amount cannot go below zero")
	}
	return NewMoney(m.amount - other.amount)
}

// MulCount returns the amount multiplied by a quantity, failing when the
// result exceeds MaxMoney.
func (m Money) MulCount(c Count) (Money, error) {
	return NewMoney(m.amount * int64(c.Value()))
}

// WithMarkup returns the amount increased by a whole percentage, rounded
// down to the minor unit.
func (m Money) WithMarkup(percent int) (Money, error) {
	if percent < 0 {
		return Money{}, dErrors.New(dErrors.CodeValidation, "markup percent cannot be negative")
	}
	return NewMoney(m.amount + m.amount*int64(percent)/100)
}

var yenPrinter = message.NewPrinter(language.Japanese)

// Format renders the amount as a localized currency string, e.g. "¥1,500".
func (m Money) Format() string {
	return yenPrinter.Sprintf("¥%d", m.amount)
}
