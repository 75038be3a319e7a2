// internal/domain/payment.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment settles a debt: Amount leaves the debtor's balance and reaches the debtee's.
type Payment struct {
	ID        int64           `db:"id" json:"id"`                 // Primary key, BIGSERIAL in DB
	Name      string          `db:"name" json:"name"`             // Free text label
	Amount    decimal.Decimal `db:"amount" json:"amount"`         // Always positive
	DebtorID  string          `db:"debtor_id" json:"debtor_id"`   // Pays; balance goes down
	DebteeID  string          `db:"debtee_id" json:"debtee_id"`   // Is paid; balance goes up
	GroupID   *int64          `db:"group_id" json:"group_id"`     // Cleared when the group is deleted
	CreatedAt time.Time       `db:"created_at" json:"created_at"` // Timestamp of creation
}

// NewPayment creates a new Payment instance.
func NewPayment(name string, amount decimal.Decimal, debtorID, debteeID string, groupID *int64) *Payment {
	return &Payment{
		Name:      name,
		Amount:    amount,
		DebtorID:  debtorID,
		DebteeID:  debteeID,
		GroupID:   groupID,
		CreatedAt: time.Now().UTC(),
	}
}

// PaymentFilter narrows a payment listing. Empty fields are not filtered on.
type PaymentFilter struct {
	DebtorID string
	DebteeID string
	GroupID  *int64
}
