// internal/repository/postgres/user_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fairsplit/internal/domain"
	"fairsplit/internal/repository"
	"fairsplit/internal/util"

	"github.com/shopspring/decimal"
)

const userColumns = `id, username, fullname, amount, is_active, created_at, updated_at`

// UserRepository implements repository.UserRepository for PostgreSQL.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository.
func NewUserRepository() repository.UserRepository {
	return &UserRepository{}
}

// CreateUser inserts a new user into the database using the provided DBExecutor.
func (r *UserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	query := `INSERT INTO users (id, username, fullname, amount, is_active, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := q.ExecContext(ctx, query,
		user.ID, user.Username, user.Fullname, user.Amount, user.IsActive, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return util.ErrDuplicateEntry
		}
		return wrapErr(err, "failed to create user")
	}
	return nil
}

// GetActiveUserByID retrieves an active user by their ID using the provided DBExecutor.
func (r *UserRepository) GetActiveUserByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active`
	if err := q.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrUserNotFound
		}
		return nil, wrapErr(err, "failed to get user by ID %s", id)
	}
	return &user, nil
}

// GetActiveUserByUsername retrieves an active user by their username using the provided DBExecutor.
func (r *UserRepository) GetActiveUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND is_active`
	if err := q.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrUserNotFound
		}
		return nil, wrapErr(err, "failed to get user by username '%s'", username)
	}
	return &user, nil
}

// LockActiveUser reads an active user with SELECT ... FOR UPDATE.
func (r *UserRepository) LockActiveUser(ctx context.Context, q repository.DBExecutor, id string) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active FOR UPDATE`
	if err := q.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrUserNotFound
		}
		return nil, wrapErr(err, "failed to lock user %s", id)
	}
	return &user, nil
}

// SetUserAmount overwrites the balance of an active user.
func (r *UserRepository) SetUserAmount(ctx context.Context, q repository.DBExecutor, id string, amount decimal.Decimal) (*domain.User, error) {
	var user domain.User
	query := `UPDATE users SET amount = $1, updated_at = $2
              WHERE id = $3 AND is_active
              RETURNING ` + userColumns
	if err := q.GetContext(ctx, &user, query, amount, time.Now().UTC(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrUserNotFound
		}
		if isNumericOutOfRange(err) {
			return nil, fmt.Errorf("balance for user %s out of range: %w", id, util.ErrInvalidInput)
		}
		return nil, wrapErr(err, "failed to set balance for user %s", id)
	}
	return &user, nil
}

// AddUserAmount adds delta to the balance of an active user. The addition happens
// inside the UPDATE, which holds the row lock until the surrounding transaction
// ends, so concurrent calls accumulate instead of overwriting each other.
func (r *UserRepository) AddUserAmount(ctx context.Context, q repository.DBExecutor, id string, delta decimal.Decimal) (*domain.User, error) {
	var user domain.User
	query := `UPDATE users SET amount = amount + $1, updated_at = $2
              WHERE id = $3 AND is_active
              RETURNING ` + userColumns
	if err := q.GetContext(ctx, &user, query, delta, time.Now().UTC(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrUserNotFound
		}
		if isNumericOutOfRange(err) {
			return nil, fmt.Errorf("balance for user %s out of range: %w", id, util.ErrInvalidInput)
		}
		return nil, wrapErr(err, "failed to add to balance for user %s", id)
	}
	return &user, nil
}
