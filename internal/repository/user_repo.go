// internal/repository/user_repo.go
package repository

import (
	"context"

	"fairsplit/internal/domain"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data operations.
// Lookups and balance writes only ever see active users.
type UserRepository interface {
	// CreateUser adds a new user to the database using the provided DBExecutor.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetActiveUserByID retrieves an active user by ID.
	GetActiveUserByID(ctx context.Context, q DBExecutor, id string) (*domain.User, error)
	// GetActiveUserByUsername retrieves an active user by username.
	GetActiveUserByUsername(ctx context.Context, q DBExecutor, username string) (*domain.User, error)
	// LockActiveUser reads an active user and holds its row lock until the
	// surrounding transaction ends.
	LockActiveUser(ctx context.Context, q DBExecutor, id string) (*domain.User, error)
	// SetUserAmount overwrites the balance and returns the updated row.
	SetUserAmount(ctx context.Context, q DBExecutor, id string, amount decimal.Decimal) (*domain.User, error)
	// AddUserAmount adds delta to the balance in a single statement and returns the updated row.
	AddUserAmount(ctx context.Context, q DBExecutor, id string, delta decimal.Decimal) (*domain.User, error)
}
