package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency represents a currency code (ISO 4217)
type Currency string

// NGN is the only currency the storefront prices in
const NGN Currency = "NGN"

// NairaSymbol prefixes every formatted amount
const NairaSymbol = "₦"

var nairaPrinter = message.NewPrinter(language.English)

// Money is a value object for Naira amounts. Storefront prices carry no minor
// unit, so the amount is kept as whole Naira; decimal is used for the
// percentage math in between.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates Money from whole Naira
func NewMoney(amount int64) Money {
	return Money{amount: decimal.NewFromInt(amount), currency: NGN}
}

// NewMoneyFromDecimal creates Money from an arbitrary decimal, rounding to
// whole Naira
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{amount: amount.Round(0), currency: NGN}
}

// Zero returns zero Naira
func Zero() Money {
	return NewMoney(0)
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency
func (m Money) Currency() Currency {
	if m.currency == "" {
		return NGN
	}
	return m.currency
}

// Int64 returns the amount as whole Naira
func (m Money) Int64() int64 {
	return m.amount.IntPart()
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Add adds two Money values
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount), currency: NGN}
}

// MultiplyByInt multiplies by an integer factor, e.g. a quantity
func (m Money) MultiplyByInt(factor int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(factor)), currency: NGN}
}

// Percent returns rate of m rounded half away from zero to whole Naira.
// rate is a fraction: 0.1 is ten percent.
func (m Money) Percent(rate decimal.Decimal) Money {
	return NewMoneyFromDecimal(m.amount.Mul(rate))
}

// Equals reports whether two amounts are equal
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// String implements fmt.Stringer
func (m Money) String() string {
	return FormatNaira(m.Int64())
}

// MarshalJSON encodes the amount as a bare integer
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%d", m.Int64())), nil
}

// FormatNaira renders an amount the way the storefront displays prices:
// the Naira sign, thousands separators and no decimals.
func FormatNaira(amount int64) string {
	sign, magnitude := "", uint64(amount)
	if amount < 0 {
		sign, magnitude = "-", -magnitude
	}
	return sign + NairaSymbol + nairaPrinter.Sprintf("%d", magnitude)
}
