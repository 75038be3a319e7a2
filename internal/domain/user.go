// internal/domain/user.go
package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// User represents a member of the expense-splitting system.
// Identity and profile fields are owned by registration; only Amount and UpdatedAt
// are ever written by the balance ledger.
type User struct {
	ID        string          `db:"id" json:"id"`                 // Assigned by the identity provider
	Username  string          `db:"username" json:"username"`     // Unique among active users
	Fullname  *string         `db:"fullname" json:"fullname"`     // Optional display name
	Amount    decimal.Decimal `db:"amount" json:"amount"`         // Signed balance, NUMERIC(20, 4) in DB
	IsActive  bool            `db:"is_active" json:"is_active"`   // false marks a soft-deleted user
	CreatedAt time.Time       `db:"created_at" json:"created_at"` // Timestamp of creation
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"` // Timestamp of last update
}

// NewUser creates a new active User with a zero balance.
func NewUser(id, username string, fullname *string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        id,
		Username:  username,
		Fullname:  fullname,
		Amount:    decimal.Zero,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidUsername reports whether s is 3-20 characters of letters, digits or underscore.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}
