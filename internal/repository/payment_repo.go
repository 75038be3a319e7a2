// internal/repository/payment_repo.go
package repository

import (
	"context"

	"fairsplit/internal/domain"
)

// PaymentRepository defines the interface for payment records. Balances are moved
// by the service; this repository only stores the payment rows.
type PaymentRepository interface {
	// CreatePayment inserts the payment and fills in its ID.
	CreatePayment(ctx context.Context, q DBExecutor, payment *domain.Payment) error
	GetPaymentByID(ctx context.Context, q DBExecutor, id int64) (*domain.Payment, error)
	// ListPayments returns payments matching filter, newest first.
	ListPayments(ctx context.Context, q DBExecutor, filter domain.PaymentFilter) ([]domain.Payment, error)
	// DeletePayment removes the row and returns it. A missing row yields util.ErrPaymentNotFound,
	// so of two concurrent deletes only one sees the payment.
	DeletePayment(ctx context.Context, q DBExecutor, id int64) (*domain.Payment, error)
}
