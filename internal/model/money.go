package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept for stored amounts.
const MoneyScale = 2

// PercentScale is the number of fractional digits kept for ratios before scaling to a percentage.
const PercentScale = 4

var (
	// ErrInvalidAmount indicates an amount that could not be parsed.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrAmountPrecision indicates an amount with more than two fractional digits.
	ErrAmountPrecision = errors.New("amount has more than two decimal places")
	// ErrAmountRange indicates an amount too large to store as integer cents.
	ErrAmountRange = errors.New("amount out of range")

	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// Money is a fixed-point monetary amount with two fractional digits.
// The zero value is 0.00.
type Money struct {
	amount decimal.Decimal
}

// Zero returns a zero amount.
func Zero() Money {
	return Money{}
}

// MoneyFromCents builds an amount from integer minor units.
func MoneyFromCents(cents int64) Money {
	return Money{amount: decimal.New(cents, -MoneyScale)}
}

// MoneyFromDecimal rounds d half-up to two fractional digits.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{amount: d.Round(MoneyScale)}
}

// ParseMoney parses a decimal string such as "12.50".
// Inputs with more than two fractional digits are rejected rather than rounded.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.Exponent() < -MoneyScale && !d.Equal(d.Round(MoneyScale)) {
		return Money{}, fmt.Errorf("%w: %q", ErrAmountPrecision, s)
	}
	m := Money{amount: d.Round(MoneyScale)}
	if !m.Storable() {
		return Money{}, fmt.Errorf("%w: %q", ErrAmountRange, s)
	}
	return m, nil
}

// MustParseMoney is ParseMoney for literals; it panics on error.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Storable reports whether m fits in int64 minor units.
func (m Money) Storable() bool {
	cents := m.amount.Shift(MoneyScale).Round(0)
	return cents.Cmp(maxCents) <= 0 && cents.Cmp(minCents) >= 0
}

// Cents returns the amount in integer minor units. It is only meaningful
// when m is Storable.
func (m Money) Cents() int64 {
	return m.amount.Shift(MoneyScale).Round(0).IntPart()
}

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{amount: m.amount.Add(o.amount)}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{amount: m.amount.Sub(o.amount)}
}

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative reports whether m < 0.
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// IsZero reports whether m == 0.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Cmp compares m and o.
func (m Money) Cmp(o Money) int {
	return m.amount.Cmp(o.amount)
}

// Equal reports whether m and o hold the same value.
func (m Money) Equal(o Money) bool {
	return m.amount.Equal(o.amount)
}

// DivRound divides m by an integer count, rounding half-up to two fractional digits.
func (m Money) DivRound(n int64) Money {
	return Money{amount: m.amount.DivRound(decimal.NewFromInt(n), MoneyScale)}
}

// String formats the amount with exactly two fractional digits.
func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale)
}

// MarshalJSON encodes the amount as a decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts both quoted and bare decimal numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Percentage returns part/whole as a percentage. The ratio is rounded half-up
// to four fractional digits before scaling, so 125/500 yields 25.0.
// A non-positive whole yields 0.
func Percentage(part, whole Money) float64 {
	if !whole.IsPositive() {
		return 0
	}
	ratio := part.amount.DivRound(whole.amount, PercentScale)
	return ratio.Mul(hundred).InexactFloat64()
}

// PercentageChange returns (current-previous)/previous as a percentage using
// the same rounding as Percentage. previous must be positive.
func PercentageChange(current, previous Money) float64 {
	if !previous.IsPositive() {
		return 0
	}
	ratio := current.amount.Sub(previous.amount).DivRound(previous.amount, PercentScale)
	return ratio.Mul(hundred).InexactFloat64()
}
