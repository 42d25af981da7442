package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// The backend reads and writes prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultCurrencySuffix is appended to every formatted amount.
const DefaultCurrencySuffix = "₺"

// FormatMoney renders an amount with two decimals and the currency suffix,
// e.g. "25.50 ₺".
func FormatMoney(amount decimal.Decimal, suffix string) string {
	if suffix == "" {
		return amount.StringFixed(2)
	}
	return amount.StringFixed(2) + " " + suffix
}
