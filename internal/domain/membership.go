// internal/domain/membership.go
package domain

import "time"

// Membership records that a user belongs to a group.
// (GroupID, UserID) is unique.
type Membership struct {
	GroupID  int64     `db:"group_id" json:"group_id"`
	UserID   string    `db:"user_id" json:"user_id"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

// NewMembership creates a membership joined now.
func NewMembership(groupID int64, userID string) *Membership {
	return &Membership{
		GroupID:  groupID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}
}

// Member is a membership joined to the user projection exposed with a group.
type Member struct {
	ID       string    `db:"id" json:"id"`
	Username string    `db:"username" json:"username"`
	Fullname *string   `db:"fullname" json:"fullname"`
	IsActive bool      `db:"is_active" json:"is_active"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

// GroupWithMembers is a group snapshot together with its roster, oldest member first.
type GroupWithMembers struct {
	Group
	Users []Member `json:"users"`
}
