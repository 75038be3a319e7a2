// internal/domain/group.go
package domain

import (
	"strings"
	"time"
)

// Group is a set of users sharing expenses.
type Group struct {
	ID        int64     `db:"id" json:"id"`                 // Primary key, BIGSERIAL in DB
	Name      string    `db:"name" json:"name"`             // Free text, not unique
	IsActive  bool      `db:"is_active" json:"is_active"`   // Live vs archived
	CreatedAt time.Time `db:"created_at" json:"created_at"` // Timestamp of creation
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"` // Timestamp of last update
}

// NewGroup creates a new Group instance.
func NewGroup(name string, isActive bool) *Group {
	now := time.Now().UTC()
	return &Group{
		Name:      name,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GroupUpdate carries the optional fields of a partial group update.
type GroupUpdate struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Empty reports whether no field was supplied.
func (u GroupUpdate) Empty() bool {
	return u.Name == nil && u.IsActive == nil
}

// BlankName reports whether s is empty once surrounding whitespace is removed.
func BlankName(s string) bool {
	return strings.TrimSpace(s) == ""
}
