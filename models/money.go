package models

import "github.com/shopspring/decimal"

func init() {
	// The scheduling board reads amounts as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Money parses a fixed amount such as "20.00"; it panics on malformed input
// and is meant for constants and fixtures.
func Money(amount string) decimal.Decimal {
	return decimal.RequireFromString(amount)
}
