//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"fairsplit/internal/domain"
	"fairsplit/internal/repository"
	"fairsplit/internal/repository/postgres"
	"fairsplit/internal/testutil/containers"
	"fairsplit/internal/util"
	"fairsplit/pkg/db"
)

type PostgresRepositorySuite struct {
	suite.Suite
	postgres    *containers.PostgresContainer
	tx          *db.TxManager
	users       repository.UserRepository
	groups      repository.GroupRepository
	memberships repository.MembershipRepository
	entries     repository.BalanceEntryRepository
	payments    repository.PaymentRepository
}

func TestPostgresRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresRepositorySuite))
}

func (s *PostgresRepositorySuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.tx = db.NewTxManager(s.postgres.DB)
	s.users = postgres.NewUserRepository()
	s.groups = postgres.NewGroupRepository()
	s.memberships = postgres.NewMembershipRepository()
	s.entries = postgres.NewBalanceEntryRepository()
	s.payments = postgres.NewPaymentRepository()
}

func (s *PostgresRepositorySuite) SetupTest() {
	// Truncate in dependency order
	err := s.postgres.TruncateTables(context.Background(), "payments", "balance_entries", "group_users", "groups", "users")
	s.Require().NoError(err)
}

func (s *PostgresRepositorySuite) createUser(username string) *domain.User {
	user := domain.NewUser(uuid.NewString(), username, nil)
	s.Require().NoError(s.users.CreateUser(context.Background(), s.postgres.DB, user))
	return user
}

func (s *PostgresRepositorySuite) createGroup(name string) *domain.Group {
	group := domain.NewGroup(name, true)
	s.Require().NoError(s.groups.CreateGroup(context.Background(), s.postgres.DB, group))
	return group
}

// TestConcurrentAddMembership verifies that the primary key admits exactly one
// membership row when many callers race on the same pair.
func (s *PostgresRepositorySuite) TestConcurrentAddMembership() {
	ctx := context.Background()
	user := s.createUser("racer")
	group := s.createGroup("Race")
	const goroutines = 30

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var duplicateCount atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.memberships.AddMembership(ctx, s.postgres.DB, domain.NewMembership(group.ID, user.ID))
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, util.ErrDuplicateEntry):
				duplicateCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), duplicateCount.Load())

	members, err := s.memberships.ListMembers(ctx, s.postgres.DB, group.ID)
	s.Require().NoError(err)
	s.Len(members, 1)
}

func (s *PostgresRepositorySuite) TestAddMembershipUnknownRows() {
	ctx := context.Background()
	user := s.createUser("orphan")

	err := s.memberships.AddMembership(ctx, s.postgres.DB, domain.NewMembership(999, user.ID))
	s.ErrorIs(err, util.ErrNotFound)
	s.NotErrorIs(err, util.ErrStoreUnavailable)
}

func (s *PostgresRepositorySuite) TestConcurrentAddUserAmount() {
	ctx := context.Background()
	user := s.createUser("ledger")
	const goroutines = 100

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.users.AddUserAmount(ctx, s.postgres.DB, user.ID, decimal.RequireFromString("0.10"))
			s.NoError(err)
		}()
	}
	wg.Wait()

	got, err := s.users.GetActiveUserByID(ctx, s.postgres.DB, user.ID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(10).Equal(got.Amount), got.Amount.String())
}

func (s *PostgresRepositorySuite) TestBalanceWritesSkipInactiveUsers() {
	ctx := context.Background()
	user := s.createUser("ghost")
	_, err := s.postgres.DB.ExecContext(ctx, `UPDATE users SET is_active = FALSE WHERE id = $1`, user.ID)
	s.Require().NoError(err)

	_, err = s.users.SetUserAmount(ctx, s.postgres.DB, user.ID, decimal.NewFromInt(5))
	s.ErrorIs(err, util.ErrUserNotFound)
	_, err = s.users.AddUserAmount(ctx, s.postgres.DB, user.ID, decimal.NewFromInt(5))
	s.ErrorIs(err, util.ErrUserNotFound)
	_, err = s.users.GetActiveUserByID(ctx, s.postgres.DB, user.ID)
	s.ErrorIs(err, util.ErrUserNotFound)
}

func (s *PostgresRepositorySuite) TestUsernameReusableAfterSoftDelete() {
	ctx := context.Background()
	first := s.createUser("reused")

	dup := domain.NewUser(uuid.NewString(), "reused", nil)
	s.ErrorIs(s.users.CreateUser(ctx, s.postgres.DB, dup), util.ErrDuplicateEntry)

	_, err := s.postgres.DB.ExecContext(ctx, `UPDATE users SET is_active = FALSE WHERE id = $1`, first.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.users.CreateUser(ctx, s.postgres.DB, dup))

	got, err := s.users.GetActiveUserByUsername(ctx, s.postgres.DB, "reused")
	s.Require().NoError(err)
	s.Equal(dup.ID, got.ID)
}

func (s *PostgresRepositorySuite) TestListMembersOrdering() {
	ctx := context.Background()
	group := s.createGroup("Ordered")
	base := time.Now().UTC().Add(-time.Hour)

	var want []string
	for i, name := range []string{"alpha", "bravo", "charlie"} {
		user := s.createUser(name)
		m := domain.NewMembership(group.ID, user.ID)
		m.JoinedAt = base.Add(time.Duration(i) * time.Minute)
		s.Require().NoError(s.memberships.AddMembership(ctx, s.postgres.DB, m))
		want = append(want, user.ID)
	}

	members, err := s.memberships.ListMembers(ctx, s.postgres.DB, group.ID)
	s.Require().NoError(err)
	var got []string
	for _, m := range members {
		got = append(got, m.ID)
	}
	s.Equal(want, got)

	removed, err := s.memberships.RemoveMembership(ctx, s.postgres.DB, group.ID, want[1])
	s.Require().NoError(err)
	s.True(removed)
	removed, err = s.memberships.RemoveMembership(ctx, s.postgres.DB, group.ID, want[1])
	s.Require().NoError(err)
	s.False(removed)
}

func (s *PostgresRepositorySuite) TestUpdateGroupPartial() {
	ctx := context.Background()
	group := s.createGroup("Before")
	inactive := false

	updated, err := s.groups.UpdateGroup(ctx, s.postgres.DB, group.ID, domain.GroupUpdate{IsActive: &inactive})
	s.Require().NoError(err)
	s.Equal("Before", updated.Name)
	s.False(updated.IsActive)
	s.False(updated.UpdatedAt.Before(group.UpdatedAt))

	name := "After"
	updated, err = s.groups.UpdateGroup(ctx, s.postgres.DB, group.ID, domain.GroupUpdate{Name: &name})
	s.Require().NoError(err)
	s.Equal("After", updated.Name)
	s.False(updated.IsActive)

	_, err = s.groups.UpdateGroup(ctx, s.postgres.DB, group.ID+1000, domain.GroupUpdate{Name: &name})
	s.ErrorIs(err, util.ErrGroupNotFound)
}

func (s *PostgresRepositorySuite) TestListGroupsFilters() {
	ctx := context.Background()
	first := s.createGroup("Trip")
	second := s.createGroup("Trip")
	inactive := false
	_, err := s.groups.UpdateGroup(ctx, s.postgres.DB, second.ID, domain.GroupUpdate{IsActive: &inactive})
	s.Require().NoError(err)
	s.createGroup("Rent")

	name := "Trip"
	trips, err := s.groups.ListGroups(ctx, s.postgres.DB, repository.GroupFilter{Name: &name})
	s.Require().NoError(err)
	s.Len(trips, 2)

	active := true
	activeTrips, err := s.groups.ListGroups(ctx, s.postgres.DB, repository.GroupFilter{Name: &name, IsActive: &active})
	s.Require().NoError(err)
	s.Require().Len(activeTrips, 1)
	s.Equal(first.ID, activeTrips[0].ID)
}

func (s *PostgresRepositorySuite) TestTransactionRollsBack() {
	ctx := context.Background()
	user := s.createUser("rollback")
	boom := errors.New("boom")

	err := s.tx.WithTransaction(ctx, func(q db.Executor) error {
		if _, err := s.users.AddUserAmount(ctx, q, user.ID, decimal.NewFromInt(40)); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	got, err := s.users.GetActiveUserByID(ctx, s.postgres.DB, user.ID)
	s.Require().NoError(err)
	s.True(got.Amount.IsZero(), got.Amount.String())
}

func (s *PostgresRepositorySuite) TestBalanceEntriesPaging() {
	ctx := context.Background()
	user := s.createUser("history")
	for i := 1; i <= 5; i++ {
		entry := domain.NewBalanceEntry(user.ID, domain.BalanceEntryTypeAdjust, decimal.NewFromInt(1), decimal.NewFromInt(int64(i)))
		entry.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		s.Require().NoError(s.entries.CreateBalanceEntry(ctx, s.postgres.DB, entry))
	}

	page, total, err := s.entries.GetBalanceEntriesByUserID(ctx, s.postgres.DB, user.ID, 2, 1)
	s.Require().NoError(err)
	s.Equal(int64(5), total)
	s.Require().Len(page, 2)
	s.True(decimal.NewFromInt(4).Equal(page[0].BalanceAfter))
	s.True(decimal.NewFromInt(3).Equal(page[1].BalanceAfter))
}

func (s *PostgresRepositorySuite) TestAmountOutOfRange() {
	ctx := context.Background()
	user := s.createUser("overflow")

	_, err := s.users.SetUserAmount(ctx, s.postgres.DB, user.ID, decimal.RequireFromString("9999999999999999.9999"))
	s.Require().NoError(err)

	_, err = s.users.AddUserAmount(ctx, s.postgres.DB, user.ID, decimal.NewFromInt(1))
	s.ErrorIs(err, util.ErrInvalidInput)
	s.NotErrorIs(err, util.ErrStoreUnavailable)
}

func (s *PostgresRepositorySuite) TestPaymentRows() {
	ctx := context.Background()
	debtor := s.createUser("payer")
	debtee := s.createUser("payee")
	group := s.createGroup("Flat")

	first := domain.NewPayment("Rent", decimal.RequireFromString("300.5"), debtor.ID, debtee.ID, &group.ID)
	s.Require().NoError(s.payments.CreatePayment(ctx, s.postgres.DB, first))
	s.NotZero(first.ID)
	second := domain.NewPayment("Power", decimal.NewFromInt(40), debtee.ID, debtor.ID, nil)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	s.Require().NoError(s.payments.CreatePayment(ctx, s.postgres.DB, second))

	got, err := s.payments.GetPaymentByID(ctx, s.postgres.DB, first.ID)
	s.Require().NoError(err)
	s.Equal("Rent", got.Name)
	s.True(decimal.RequireFromString("300.5").Equal(got.Amount))
	s.Require().NotNil(got.GroupID)
	s.Equal(group.ID, *got.GroupID)

	all, err := s.payments.ListPayments(ctx, s.postgres.DB, domain.PaymentFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(second.ID, all[0].ID)

	byDebtor, err := s.payments.ListPayments(ctx, s.postgres.DB, domain.PaymentFilter{DebtorID: debtor.ID})
	s.Require().NoError(err)
	s.Require().Len(byDebtor, 1)
	s.Equal(first.ID, byDebtor[0].ID)

	inGroup, err := s.payments.ListPayments(ctx, s.postgres.DB, domain.PaymentFilter{GroupID: &group.ID})
	s.Require().NoError(err)
	s.Len(inGroup, 1)

	// Deleting the group keeps the payment and clears its group.
	s.Require().NoError(s.groups.DeleteGroup(ctx, s.postgres.DB, group.ID))
	got, err = s.payments.GetPaymentByID(ctx, s.postgres.DB, first.ID)
	s.Require().NoError(err)
	s.Nil(got.GroupID)

	deleted, err := s.payments.DeletePayment(ctx, s.postgres.DB, first.ID)
	s.Require().NoError(err)
	s.Equal(debtor.ID, deleted.DebtorID)
	_, err = s.payments.DeletePayment(ctx, s.postgres.DB, first.ID)
	s.ErrorIs(err, util.ErrPaymentNotFound)
	_, err = s.payments.GetPaymentByID(ctx, s.postgres.DB, first.ID)
	s.ErrorIs(err, util.ErrNotFound)

	orphan := domain.NewPayment("Ghost", decimal.NewFromInt(1), debtor.ID, "missing", nil)
	s.ErrorIs(s.payments.CreatePayment(ctx, s.postgres.DB, orphan), util.ErrNotFound)
}

// TestLockActiveUserBlocksWriters verifies that a locked user row holds back a
// second transaction until the first one commits.
func (s *PostgresRepositorySuite) TestLockActiveUserBlocksWriters() {
	ctx := context.Background()
	user := s.createUser("locked")
	locked := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := s.tx.WithTransaction(ctx, func(q db.Executor) error {
			if _, err := s.users.LockActiveUser(ctx, q, user.ID); err != nil {
				return err
			}
			close(locked)
			<-release
			_, err := s.users.AddUserAmount(ctx, q, user.ID, decimal.NewFromInt(1))
			return err
		})
		s.NoError(err)
	}()

	<-locked
	var waited atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := s.users.SetUserAmount(ctx, s.postgres.DB, user.ID, decimal.NewFromInt(10))
		s.NoError(err)
		waited.Store(true)
	}()

	time.Sleep(200 * time.Millisecond)
	s.False(waited.Load(), "write went through a held row lock")
	close(release)
	wg.Wait()
	<-done

	got, err := s.users.GetActiveUserByID(ctx, s.postgres.DB, user.ID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(10).Equal(got.Amount), got.Amount.String())

	_, err = s.users.LockActiveUser(ctx, s.postgres.DB, "missing")
	s.ErrorIs(err, util.ErrUserNotFound)
	_, err = s.groups.GetGroupForUpdate(ctx, s.postgres.DB, 999)
	s.ErrorIs(err, util.ErrGroupNotFound)
}
