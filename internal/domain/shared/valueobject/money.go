package valueobject

import (
	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	NGN Currency = "NGN" // Nigerian Naira (default)
	USD Currency = "USD" // US Dollar
	GHS Currency = "GHS" // Ghanaian Cedi
	KES Currency = "KES" // Kenyan Shilling
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = NGN

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount (e.g. naira) into minor units (kobo).
// Fractions of a minor unit are rounded half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits converts minor units back into a major-unit amount
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(hundred)
}

// RoundMoney rounds an amount to two decimal places
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// IsValid reports whether the currency code is one the gateways accept
func (c Currency) IsValid() bool {
	switch c {
	case NGN, USD, GHS, KES:
		return true
	}
	return false
}

// String returns the currency code
func (c Currency) String() string {
	return string(c)
}
