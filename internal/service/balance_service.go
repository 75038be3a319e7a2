// internal/service/balance_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fairsplit/internal/domain"
	"fairsplit/internal/metrics"
	"fairsplit/internal/repository"
	"fairsplit/internal/util"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// BalanceService defines the balance ledger: the signed amount held by each user.
type BalanceService interface {
	GetBalance(ctx context.Context, userID string) (*domain.User, error)
	SetBalance(ctx context.Context, userID string, amount decimal.Decimal) (*domain.User, error)
	AddToBalance(ctx context.Context, userID string, delta decimal.Decimal) (*domain.User, error)
	GetBalanceHistory(ctx context.Context, userID string, limit, offset int) ([]domain.BalanceEntry, int64, error)
}

// balanceService implements the BalanceService interface.
type balanceService struct {
	tx         Transactor
	dbExecutor repository.DBExecutor
	users      UserDirectory
	userRepo   repository.UserRepository
	entryRepo  repository.BalanceEntryRepository
	metrics    *metrics.Metrics
}

// NewBalanceService creates a new instance of BalanceService. m may be nil.
func NewBalanceService(
	tx Transactor,
	dbExecutor repository.DBExecutor,
	users UserDirectory,
	userRepo repository.UserRepository,
	entryRepo repository.BalanceEntryRepository,
	m *metrics.Metrics,
) BalanceService {
	return &balanceService{
		tx:         tx,
		dbExecutor: dbExecutor,
		users:      users,
		userRepo:   userRepo,
		entryRepo:  entryRepo,
		metrics:    m,
	}
}

func (s *balanceService) GetBalance(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return user, nil
}

// SetBalance overwrites the user's amount. Negative values are valid.
func (s *balanceService) SetBalance(ctx context.Context, userID string, amount decimal.Decimal) (*domain.User, error) {
	return s.mutate(ctx, "set_balance", userID, domain.BalanceEntryTypeSet, amount,
		func(q repository.DBExecutor) (*domain.User, error) {
			return s.userRepo.SetUserAmount(ctx, q, userID, amount)
		})
}

// AddToBalance adds delta to the user's amount. The addition happens inside the
// store as a single update, so concurrent calls for one user accumulate instead of
// overwriting each other.
func (s *balanceService) AddToBalance(ctx context.Context, userID string, delta decimal.Decimal) (*domain.User, error) {
	return s.mutate(ctx, "add_to_balance", userID, domain.BalanceEntryTypeAdjust, delta,
		func(q repository.DBExecutor) (*domain.User, error) {
			return s.userRepo.AddUserAmount(ctx, q, userID, delta)
		})
}

// mutate applies write and records the matching audit entry in the same transaction.
func (s *balanceService) mutate(
	ctx context.Context,
	op string,
	userID string,
	entryType domain.BalanceEntryType,
	amount decimal.Decimal,
	write func(q repository.DBExecutor) (*domain.User, error),
) (*domain.User, error) {
	start := time.Now()
	if userID == "" {
		return nil, fmt.Errorf("%s: %w", op, util.ErrUserNotFound)
	}
	if !domain.ValidAmount(amount) {
		return nil, fmt.Errorf("%s: amount %s needs at most %d decimal places and a magnitude below 10^16: %w",
			op, amount, domain.AmountScale, util.ErrInvalidInput)
	}

	var user *domain.User
	err := s.tx.WithTransaction(ctx, func(q repository.DBExecutor) error {
		updated, err := write(q)
		if err != nil {
			return err
		}
		entry := domain.NewBalanceEntry(userID, entryType, amount, updated.Amount)
		if err := s.entryRepo.CreateBalanceEntry(ctx, q, entry); err != nil {
			return fmt.Errorf("record balance entry: %w", err)
		}
		user = updated
		return nil
	})
	s.metrics.ObserveOperation(op, start, err)
	if err != nil {
		return nil, fmt.Errorf("%s for user %s: %w", op, userID, err)
	}

	s.metrics.IncrementBalanceMutation(string(entryType))
	return user, nil
}

// NormalizeHistoryPage returns the page GetBalanceHistory actually serves for the
// requested limit and offset.
func NormalizeHistoryPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// GetBalanceHistory returns a page of the user's balance mutations, newest first,
// with the total number of entries.
func (s *balanceService) GetBalanceHistory(ctx context.Context, userID string, limit, offset int) ([]domain.BalanceEntry, int64, error) {
	if _, err := s.users.GetActive(ctx, userID); err != nil {
		return nil, 0, fmt.Errorf("get balance history: %w", err)
	}

	limit, offset = NormalizeHistoryPage(limit, offset)

	type page struct {
		entries []domain.BalanceEntry
		total   int64
	}
	p, err := readWithRetry(ctx, func() (page, error) {
		entries, total, err := s.entryRepo.GetBalanceEntriesByUserID(ctx, s.dbExecutor, userID, limit, offset)
		return page{entries: entries, total: total}, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("get balance history for user %s: %w", userID, err)
	}
	return p.entries, p.total, nil
}
