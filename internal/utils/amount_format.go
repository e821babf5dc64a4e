package utils

import "github.com/shopspring/decimal"

// FormatMinorUnits renders an integer minor-unit amount as a decimal string
// with the given precision.
// Example: amount 12345 with precision 2 returns "123.45"
// Example: amount -30 with precision 2 returns "-0.30"
// Example: amount 500 with precision 0 returns "500"
func FormatMinorUnits(amount int64, precision int) string {
	return decimal.New(amount, -int32(precision)).StringFixed(int32(precision))
}
