// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"

	"fairsplit/internal/domain"
	"fairsplit/internal/repository"
	"fairsplit/pkg/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockTxController is a mock implementation of db.TxController.
// It also implements repository.DBExecutor by embedding MockDBExecutor.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// newMockTxManager builds a TxManager whose lifecycle runs against tx.
func newMockTxManager(tx *MockTxController) *db.TxManager {
	return db.NewTxManagerWithFuncs(
		nil,
		func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			return tx, nil
		},
		func(c db.TxController) error {
			return tx.Commit()
		},
		func(c db.TxController) {
			_ = tx.Rollback()
		},
	)
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetActiveUserByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetActiveUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	args := m.Called(ctx, q, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) LockActiveUser(ctx context.Context, q repository.DBExecutor, id string) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) SetUserAmount(ctx context.Context, q repository.DBExecutor, id string, amount decimal.Decimal) (*domain.User, error) {
	args := m.Called(ctx, q, id, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) AddUserAmount(ctx context.Context, q repository.DBExecutor, id string, delta decimal.Decimal) (*domain.User, error) {
	args := m.Called(ctx, q, id, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockGroupRepository is a mock implementation of repository.GroupRepository.
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) CreateGroup(ctx context.Context, q repository.DBExecutor, group *domain.Group) error {
	args := m.Called(ctx, q, group)
	return args.Error(0)
}

func (m *MockGroupRepository) GetGroupByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Group, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupRepository) GetGroupForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Group, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupRepository) ListGroups(ctx context.Context, q repository.DBExecutor, filter repository.GroupFilter) ([]domain.Group, error) {
	args := m.Called(ctx, q, filter)
	return args.Get(0).([]domain.Group), args.Error(1)
}

func (m *MockGroupRepository) ListGroupsForUser(ctx context.Context, q repository.DBExecutor, userID string) ([]domain.Group, error) {
	args := m.Called(ctx, q, userID)
	return args.Get(0).([]domain.Group), args.Error(1)
}

func (m *MockGroupRepository) UpdateGroup(ctx context.Context, q repository.DBExecutor, id int64, update domain.GroupUpdate) (*domain.Group, error) {
	args := m.Called(ctx, q, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupRepository) DeleteGroup(ctx context.Context, q repository.DBExecutor, id int64) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

// MockMembershipRepository is a mock implementation of repository.MembershipRepository.
type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) AddMembership(ctx context.Context, q repository.DBExecutor, membership *domain.Membership) error {
	args := m.Called(ctx, q, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) MembershipExists(ctx context.Context, q repository.DBExecutor, groupID int64, userID string) (bool, error) {
	args := m.Called(ctx, q, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipRepository) RemoveMembership(ctx context.Context, q repository.DBExecutor, groupID int64, userID string) (bool, error) {
	args := m.Called(ctx, q, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipRepository) DeleteMembershipsByGroup(ctx context.Context, q repository.DBExecutor, groupID int64) (int64, error) {
	args := m.Called(ctx, q, groupID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMembershipRepository) ListMembers(ctx context.Context, q repository.DBExecutor, groupID int64) ([]domain.Member, error) {
	args := m.Called(ctx, q, groupID)
	return args.Get(0).([]domain.Member), args.Error(1)
}

// MockBalanceEntryRepository is a mock implementation of repository.BalanceEntryRepository.
type MockBalanceEntryRepository struct {
	mock.Mock
}

func (m *MockBalanceEntryRepository) CreateBalanceEntry(ctx context.Context, q repository.DBExecutor, entry *domain.BalanceEntry) error {
	args := m.Called(ctx, q, entry)
	return args.Error(0)
}

func (m *MockBalanceEntryRepository) GetBalanceEntriesByUserID(ctx context.Context, q repository.DBExecutor, userID string, limit, offset int) ([]domain.BalanceEntry, int64, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	return args.Get(0).([]domain.BalanceEntry), args.Get(1).(int64), args.Error(2)
}

// MockPaymentRepository is a mock implementation of repository.PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) CreatePayment(ctx context.Context, q repository.DBExecutor, payment *domain.Payment) error {
	args := m.Called(ctx, q, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetPaymentByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Payment, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPayments(ctx context.Context, q repository.DBExecutor, filter domain.PaymentFilter) ([]domain.Payment, error) {
	args := m.Called(ctx, q, filter)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) DeletePayment(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Payment, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
