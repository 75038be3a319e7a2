// internal/service/payment_service.go
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fairsplit/internal/domain"
	"fairsplit/internal/metrics"
	"fairsplit/internal/repository"
	"fairsplit/internal/util"
)

// PaymentRequest carries the fields of a new payment.
type PaymentRequest struct {
	Name     string
	Amount   decimal.Decimal
	DebtorID string
	DebteeID string
	GroupID  *int64 // Optional; both parties must be members
}

// PaymentService defines settle-up payments between two users' balances.
type PaymentService interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (*domain.Payment, error)
	GetPayment(ctx context.Context, id int64) (*domain.Payment, error)
	ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error)
	// DeletePayment reverses the payment's balance moves and removes it.
	// actorID must be the debtor or the debtee.
	DeletePayment(ctx context.Context, id int64, actorID string) error
}

// paymentService implements the PaymentService interface.
type paymentService struct {
	tx          Transactor
	dbExecutor  repository.DBExecutor
	userRepo    repository.UserRepository
	groupRepo   repository.GroupRepository
	memberRepo  repository.MembershipRepository
	paymentRepo repository.PaymentRepository
	entryRepo   repository.BalanceEntryRepository
	metrics     *metrics.Metrics
}

// NewPaymentService creates a new instance of PaymentService. m may be nil.
func NewPaymentService(
	tx Transactor,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	memberRepo repository.MembershipRepository,
	paymentRepo repository.PaymentRepository,
	entryRepo repository.BalanceEntryRepository,
	m *metrics.Metrics,
) PaymentService {
	return &paymentService{
		tx:          tx,
		dbExecutor:  dbExecutor,
		userRepo:    userRepo,
		groupRepo:   groupRepo,
		memberRepo:  memberRepo,
		paymentRepo: paymentRepo,
		entryRepo:   entryRepo,
		metrics:     m,
	}
}

// CreatePayment moves req.Amount from the debtor to the debtee and records the
// payment. Both balance updates, their audit entries and the payment row commit
// together or not at all. Balances may go negative.
func (s *paymentService) CreatePayment(ctx context.Context, req PaymentRequest) (*domain.Payment, error) {
	start := time.Now()
	if domain.BlankName(req.Name) {
		return nil, fmt.Errorf("create payment: name is required: %w", util.ErrInvalidInput)
	}
	if !req.Amount.IsPositive() || !domain.ValidAmount(req.Amount) {
		return nil, fmt.Errorf("create payment: amount %s must be positive with at most %d decimal places: %w",
			req.Amount, domain.AmountScale, util.ErrInvalidInput)
	}
	if req.DebtorID == "" || req.DebteeID == "" {
		return nil, fmt.Errorf("create payment: debtor and debtee are required: %w", util.ErrInvalidInput)
	}
	if req.DebtorID == req.DebteeID {
		return nil, fmt.Errorf("create payment: debtor and debtee must differ: %w", util.ErrInvalidInput)
	}

	payment := domain.NewPayment(req.Name, req.Amount, req.DebtorID, req.DebteeID, req.GroupID)
	err := s.tx.WithTransaction(ctx, func(q repository.DBExecutor) error {
		if err := s.lockUsers(ctx, q, payment.DebtorID, payment.DebteeID); err != nil {
			return err
		}
		if payment.GroupID != nil {
			if err := s.checkMembers(ctx, q, *payment.GroupID, payment.DebtorID, payment.DebteeID); err != nil {
				return err
			}
		}
		if err := s.move(ctx, q, domain.BalanceEntryTypePayment, payment.DebtorID, payment.DebteeID, payment.Amount); err != nil {
			return err
		}
		if err := s.paymentRepo.CreatePayment(ctx, q, payment); err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		return nil
	})
	s.metrics.ObserveOperation("create_payment", start, err)
	if err != nil {
		return nil, fmt.Errorf("create payment from %s to %s: %w", req.DebtorID, req.DebteeID, err)
	}

	s.metrics.IncrementPaymentChange("created")
	s.metrics.IncrementBalanceMutation(string(domain.BalanceEntryTypePayment))
	return payment, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	payment, err := readWithRetry(ctx, func() (*domain.Payment, error) {
		return s.paymentRepo.GetPaymentByID(ctx, s.dbExecutor, id)
	})
	if err != nil {
		return nil, fmt.Errorf("get payment %d: %w", id, err)
	}
	return payment, nil
}

// ListPayments returns the payments matching filter, newest first.
func (s *paymentService) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error) {
	payments, err := readWithRetry(ctx, func() ([]domain.Payment, error) {
		return s.paymentRepo.ListPayments(ctx, s.dbExecutor, filter)
	})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func (s *paymentService) DeletePayment(ctx context.Context, id int64, actorID string) error {
	start := time.Now()
	err := s.tx.WithTransaction(ctx, func(q repository.DBExecutor) error {
		// The delete claims the row: a concurrent delete of the same payment
		// finds nothing and cannot reverse it twice.
		payment, err := s.paymentRepo.DeletePayment(ctx, q, id)
		if err != nil {
			return err
		}
		if actorID != payment.DebtorID && actorID != payment.DebteeID {
			return fmt.Errorf("user %s is not a party: %w", actorID, util.ErrForbidden)
		}
		if err := s.lockUsers(ctx, q, payment.DebtorID, payment.DebteeID); err != nil {
			return err
		}
		return s.move(ctx, q, domain.BalanceEntryTypePaymentReversal, payment.DebteeID, payment.DebtorID, payment.Amount)
	})
	s.metrics.ObserveOperation("delete_payment", start, err)
	if err != nil {
		return fmt.Errorf("delete payment %d: %w", id, err)
	}

	s.metrics.IncrementPaymentChange("reversed")
	s.metrics.IncrementBalanceMutation(string(domain.BalanceEntryTypePaymentReversal))
	return nil
}

// lockUsers takes the row locks of both parties in id order, so payments running
// in opposite directions between the same pair cannot deadlock.
func (s *paymentService) lockUsers(ctx context.Context, q repository.DBExecutor, ids ...string) error {
	ordered := append([]string(nil), ids...)
	sort.Strings(ordered)
	for _, id := range ordered {
		if _, err := s.userRepo.LockActiveUser(ctx, q, id); err != nil {
			return fmt.Errorf("lock user %s: %w", id, err)
		}
	}
	return nil
}

func (s *paymentService) checkMembers(ctx context.Context, q repository.DBExecutor, groupID int64, userIDs ...string) error {
	if _, err := s.groupRepo.GetGroupByID(ctx, q, groupID); err != nil {
		return err
	}
	for _, userID := range userIDs {
		ok, err := s.memberRepo.MembershipExists(ctx, q, groupID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user %s in group %d: %w", userID, groupID, util.ErrNotMember)
		}
	}
	return nil
}

// move debits from and credits to by amount, recording one audit entry per side.
func (s *paymentService) move(ctx context.Context, q repository.DBExecutor, entryType domain.BalanceEntryType, from, to string, amount decimal.Decimal) error {
	legs := []struct {
		userID string
		delta  decimal.Decimal
	}{
		{from, amount.Neg()},
		{to, amount},
	}
	for _, leg := range legs {
		updated, err := s.userRepo.AddUserAmount(ctx, q, leg.userID, leg.delta)
		if err != nil {
			return fmt.Errorf("update balance of user %s: %w", leg.userID, err)
		}
		entry := domain.NewBalanceEntry(leg.userID, entryType, leg.delta, updated.Amount)
		if err := s.entryRepo.CreateBalanceEntry(ctx, q, entry); err != nil {
			return fmt.Errorf("record balance entry: %w", err)
		}
	}
	return nil
}
