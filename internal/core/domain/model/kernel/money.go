package kernel

import (
	"fmt"

	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Currency is the single settlement currency of the pipeline.
const Currency = "SGD"

// Money is a non-negative SGD amount held at cent precision.
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney is a valid zero amount.
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// NewMoney rounds to cents and rejects negative amounts.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errs.NewValueIsOutOfRangeError("amount", amount.String(), "0", "unbounded")
	}
	return Money{amount: amount.Round(2)}, nil
}

// MoneyFromString parses a decimal string such as "4.50".
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%q is not a decimal amount", s))
	}
	return NewMoney(d)
}

// MustMoney is MoneyFromString for static tables; it panics on bad input.
func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Times multiplies by a non-negative count.
func (m Money) Times(n int) Money {
	if n < 0 {
		n = 0
	}
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(n)))}
}

// Decimal exposes the amount for persistence and wire formats.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsEqual(other Money) bool {
	return m.amount.Equal(other.amount)
}

// GreaterThan reports m > other.
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// WithinTolerance reports |m - other| <= tolerance.
func (m Money) WithinTolerance(other, tolerance Money) bool {
	return m.amount.Sub(other.amount).Abs().LessThanOrEqual(tolerance.amount)
}

// String formats with exactly two decimals, e.g. "4.50".
func (m Money) String() string {
	return m.amount.StringFixed(2)
}
