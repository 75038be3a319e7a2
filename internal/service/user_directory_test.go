// internal/service/user_directory_test.go
package service

import (
	"context"
	"testing"

	"fairsplit/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserDirectory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	t.Run("Exists", func(t *testing.T) {
		ok, err := env.users.Exists(ctx, alice.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = env.users.Exists(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("GetActiveByUsername", func(t *testing.T) {
		user, err := env.users.GetActiveByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, user.ID)

		_, err = env.users.GetActiveByUsername(ctx, "Alice")
		assert.ErrorIs(t, err, util.ErrNotFound)
	})

	// A soft-deleted username can be registered again under a new id.
	t.Run("UsernameReusableAfterSoftDelete", func(t *testing.T) {
		old := env.createUser(t, "recycled")
		env.store.DeactivateUser(old.ID)

		ok, err := env.users.Exists(ctx, old.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		fresh := env.createUser(t, "recycled")
		user, err := env.users.GetActiveByUsername(ctx, "recycled")
		require.NoError(t, err)
		assert.Equal(t, fresh.ID, user.ID)
		assert.NotEqual(t, old.ID, user.ID)
	})
}

func TestUserDirectoryShortCircuits(t *testing.T) {
	ctx := context.Background()
	mockUsers := new(MockUserRepository)
	directory := NewUserDirectory(nil, mockUsers)

	_, err := directory.GetActive(ctx, "")
	assert.ErrorIs(t, err, util.ErrNotFound)

	for _, name := range []string{"ab", "has space", "waytoolongusername_abc", "dash-name"} {
		_, err := directory.GetActiveByUsername(ctx, name)
		assert.ErrorIs(t, err, util.ErrNotFound)
	}

	mockUsers.AssertNotCalled(t, "GetActiveUserByID", mock.Anything, mock.Anything, mock.Anything)
	mockUsers.AssertNotCalled(t, "GetActiveUserByUsername", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserDirectoryPropagatesStoreErrors(t *testing.T) {
	ctx := context.Background()
	mockUsers := new(MockUserRepository)
	directory := NewUserDirectory(nil, mockUsers)

	mockUsers.On("GetActiveUserByID", ctx, mock.Anything, "u-1").Return(nil, util.ErrStoreUnavailable).Twice()

	ok, err := directory.Exists(ctx, "u-1")
	assert.ErrorIs(t, err, util.ErrStoreUnavailable)
	assert.False(t, ok)
	mockUsers.AssertExpectations(t)
}
