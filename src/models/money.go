package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point currency amount stored as NUMERIC(12,2).
// It serializes as a string with exactly two decimals ("12.50").
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Decimal: d}, nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.StringFixed(2))
}
