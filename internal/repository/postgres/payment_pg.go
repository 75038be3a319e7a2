// internal/repository/postgres/payment_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fairsplit/internal/domain"
	"fairsplit/internal/repository"
	"fairsplit/internal/util"
)

const paymentColumns = `id, name, amount, debtor_id, debtee_id, group_id, created_at`

// PaymentRepository implements repository.PaymentRepository for PostgreSQL.
type PaymentRepository struct{}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository() repository.PaymentRepository {
	return &PaymentRepository{}
}

// CreatePayment inserts a new payment using the provided DBExecutor.
func (r *PaymentRepository) CreatePayment(ctx context.Context, q repository.DBExecutor, p *domain.Payment) error {
	query := `INSERT INTO payments (name, amount, debtor_id, debtee_id, group_id, created_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		p.Name,
		p.Amount,
		p.DebtorID,
		p.DebteeID,
		p.GroupID,
		p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("payment from %s to %s: %w", p.DebtorID, p.DebteeID, util.ErrNotFound)
		}
		return wrapErr(err, "failed to create payment")
	}
	return nil
}

// GetPaymentByID retrieves a payment by its ID.
func (r *PaymentRepository) GetPaymentByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Payment, error) {
	var p domain.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	if err := q.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrPaymentNotFound
		}
		return nil, wrapErr(err, "failed to get payment %d", id)
	}
	return &p, nil
}

// ListPayments retrieves payments matching the filter, newest first.
func (r *PaymentRepository) ListPayments(ctx context.Context, q repository.DBExecutor, filter domain.PaymentFilter) ([]domain.Payment, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.DebtorID != "" {
		args = append(args, filter.DebtorID)
		conds = append(conds, fmt.Sprintf("debtor_id = $%d", len(args)))
	}
	if filter.DebteeID != "" {
		args = append(args, filter.DebteeID)
		conds = append(conds, fmt.Sprintf("debtee_id = $%d", len(args)))
	}
	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		conds = append(conds, fmt.Sprintf("group_id = $%d", len(args)))
	}

	query := `SELECT ` + paymentColumns + ` FROM payments`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	payments := []domain.Payment{}
	if err := q.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, wrapErr(err, "failed to list payments")
	}
	return payments, nil
}

// DeletePayment removes the payment row and returns what it held.
func (r *PaymentRepository) DeletePayment(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Payment, error) {
	var p domain.Payment
	query := `DELETE FROM payments WHERE id = $1 RETURNING ` + paymentColumns
	if err := q.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrPaymentNotFound
		}
		return nil, wrapErr(err, "failed to delete payment %d", id)
	}
	return &p, nil
}
