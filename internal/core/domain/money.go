package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Money is a decimal amount in a currency.
type Money struct {
	Number       decimal.Decimal `json:"number"`
	CurrencyCode string          `json:"currency_code"`
}

// NewMoney parses a decimal string such as "25.99".
func NewMoney(number, currency string) (Money, error) {
	d, err := decimal.NewFromString(number)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", number, err)
	}
	return Money{Number: d, CurrencyCode: currency}, nil
}

// MoneyFromMinorUnits converts processor minor units (amount/100).
func MoneyFromMinorUnits(amount int64, currency string) Money {
	return Money{Number: decimal.New(amount, -2), CurrencyCode: currency}
}

// MinorUnits converts to processor minor units, rounding half away from zero.
func (m Money) MinorUnits() int64 {
	return m.Number.Mul(hundred).Round(0).IntPart()
}

// Equal compares amount and currency.
func (m Money) Equal(other Money) bool {
	return m.CurrencyCode == other.CurrencyCode && m.Number.Equal(other.Number)
}

func (m Money) String() string {
	return m.Number.StringFixed(2) + " " + m.CurrencyCode
}
