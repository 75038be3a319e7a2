// internal/util/errors.go
package util

import (
	"errors"
	"fmt"

	"fairsplit/pkg/db"
)

// Common application-specific errors.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input provided")
	ErrAlreadyMember    = errors.New("user is already a member of this group")
	ErrNotMember        = errors.New("user is not a member of this group")
	ErrCreationFailed   = errors.New("creation failed")
	ErrStoreUnavailable = db.ErrUnavailable
	ErrDuplicateEntry   = errors.New("duplicate entry")
	ErrForbidden        = errors.New("forbidden")

	ErrGroupNotFound   = fmt.Errorf("group not found: %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user not found: %w", ErrNotFound)
	ErrPaymentNotFound = fmt.Errorf("payment not found: %w", ErrNotFound)
)

// IsError reports whether any error in err's chain matches target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
