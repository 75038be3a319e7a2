package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairsplit/internal/domain"
	"fairsplit/internal/repository"
	"fairsplit/internal/util"
)

func TestWithTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	user := domain.NewUser("u1", "ann", nil)
	require.NoError(t, s.CreateUser(ctx, nil, user))

	boom := errors.New("boom")
	err := s.WithTransaction(ctx, func(q repository.DBExecutor) error {
		if _, err := s.AddUserAmount(ctx, q, user.ID, decimal.NewFromInt(10)); err != nil {
			return err
		}
		group := domain.NewGroup("Trip", true)
		if err := s.CreateGroup(ctx, q, group); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetActiveUserByID(ctx, nil, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.IsZero())

	groups, err := s.ListGroups(ctx, nil, repository.GroupFilter{})
	require.NoError(t, err)
	assert.Empty(t, groups)

	// Group IDs are not consumed by a rolled back transaction.
	group := domain.NewGroup("Rent", true)
	require.NoError(t, s.CreateGroup(ctx, nil, group))
	assert.Equal(t, int64(1), group.ID)
}

func TestWithTransactionCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewStore().WithTransaction(ctx, func(repository.DBExecutor) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestAddMembershipKeys(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.CreateUser(ctx, nil, domain.NewUser("u1", "ann", nil)))
	group := domain.NewGroup("Trip", true)
	require.NoError(t, s.CreateGroup(ctx, nil, group))

	require.NoError(t, s.AddMembership(ctx, nil, domain.NewMembership(group.ID, "u1")))
	assert.ErrorIs(t, s.AddMembership(ctx, nil, domain.NewMembership(group.ID, "u1")), util.ErrDuplicateEntry)
	assert.ErrorIs(t, s.AddMembership(ctx, nil, domain.NewMembership(group.ID, "nobody")), util.ErrNotFound)
	assert.ErrorIs(t, s.AddMembership(ctx, nil, domain.NewMembership(group.ID+1, "u1")), util.ErrNotFound)

	// The group cannot go while memberships reference it.
	assert.Error(t, s.DeleteGroup(ctx, nil, group.ID))
	removed, err := s.DeleteMembershipsByGroup(ctx, nil, group.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.NoError(t, s.DeleteGroup(ctx, nil, group.ID))
}

func TestDeactivatedUserIsHidden(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.CreateUser(ctx, nil, domain.NewUser("u1", "ann", nil)))
	s.DeactivateUser("u1")

	_, err := s.GetActiveUserByID(ctx, nil, "u1")
	assert.ErrorIs(t, err, util.ErrUserNotFound)
	_, err = s.AddUserAmount(ctx, nil, "u1", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, util.ErrUserNotFound)
	assert.NoError(t, s.CreateUser(ctx, nil, domain.NewUser("u2", "ann", nil)))
}
