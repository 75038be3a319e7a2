// internal/service/user_directory.go
package service

import (
	"context"
	"fmt"

	"fairsplit/internal/domain"
	"fairsplit/internal/repository"
	"fairsplit/internal/util"
)

// UserDirectory is the read-only view of users that the registry and the ledger
// depend on. Only active users are visible.
type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
	GetActive(ctx context.Context, userID string) (*domain.User, error)
	GetActiveByUsername(ctx context.Context, username string) (*domain.User, error)
}

type userDirectory struct {
	dbExecutor repository.DBExecutor
	userRepo   repository.UserRepository
}

// NewUserDirectory creates a UserDirectory reading through dbExecutor.
func NewUserDirectory(dbExecutor repository.DBExecutor, userRepo repository.UserRepository) UserDirectory {
	return &userDirectory{
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
	}
}

// Exists reports whether an active user with the given ID exists.
func (d *userDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	_, err := d.GetActive(ctx, userID)
	if err == nil {
		return true, nil
	}
	if util.IsError(err, util.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (d *userDirectory) GetActive(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, util.ErrUserNotFound
	}
	user, err := readWithRetry(ctx, func() (*domain.User, error) {
		return d.userRepo.GetActiveUserByID(ctx, d.dbExecutor, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("get active user %s: %w", userID, err)
	}
	return user, nil
}

// GetActiveByUsername looks a user up by username. Names that could never have
// been registered are reported as not found without querying the store.
func (d *userDirectory) GetActiveByUsername(ctx context.Context, username string) (*domain.User, error) {
	if !domain.ValidUsername(username) {
		return nil, util.ErrUserNotFound
	}
	user, err := readWithRetry(ctx, func() (*domain.User, error) {
		return d.userRepo.GetActiveUserByUsername(ctx, d.dbExecutor, username)
	})
	if err != nil {
		return nil, fmt.Errorf("get active user by username '%s': %w", username, err)
	}
	return user, nil
}
