// internal/domain/money.go
package domain

import "github.com/shopspring/decimal"

// AmountScale is the number of fractional digits stored for money, NUMERIC(20, 4) in DB.
const AmountScale = 4

// maxAmount is the first magnitude NUMERIC(20, 4) cannot hold.
var maxAmount = decimal.New(1, 16)

// ValidAmount reports whether d is stored exactly: at most four fractional digits
// and an absolute value below 10^16.
func ValidAmount(d decimal.Decimal) bool {
	return d.Truncate(AmountScale).Equal(d) && d.Abs().LessThan(maxAmount)
}
