// internal/domain/balance_entry.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceEntryType defines how a balance mutation was applied.
type BalanceEntryType string

const (
	BalanceEntryTypeSet             BalanceEntryType = "SET"
	BalanceEntryTypeAdjust          BalanceEntryType = "ADJUST"
	BalanceEntryTypePayment         BalanceEntryType = "PAYMENT"          // One side of a payment
	BalanceEntryTypePaymentReversal BalanceEntryType = "PAYMENT_REVERSAL" // One side of a deleted payment
)

// BalanceEntry is an audit record of one balance mutation.
type BalanceEntry struct {
	ID           int64            `db:"id" json:"id"`
	UserID       string           `db:"user_id" json:"user_id"`
	Type         BalanceEntryType `db:"type" json:"type"`
	Amount       decimal.Decimal  `db:"amount" json:"amount"`               // Value set, or delta applied
	BalanceAfter decimal.Decimal  `db:"balance_after" json:"balance_after"` // Balance once the mutation committed
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}

// NewBalanceEntry creates a new BalanceEntry instance.
func NewBalanceEntry(userID string, entryType BalanceEntryType, amount, balanceAfter decimal.Decimal) *BalanceEntry {
	return &BalanceEntry{
		UserID:       userID,
		Type:         entryType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		CreatedAt:    time.Now().UTC(),
	}
}
