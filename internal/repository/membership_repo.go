// internal/repository/membership_repo.go
package repository

import (
	"context"

	"fairsplit/internal/domain"
)

// MembershipRepository defines the interface for group roster operations.
type MembershipRepository interface {
	// AddMembership inserts the row. A duplicate (group, user) pair yields util.ErrDuplicateEntry.
	AddMembership(ctx context.Context, q DBExecutor, membership *domain.Membership) error
	MembershipExists(ctx context.Context, q DBExecutor, groupID int64, userID string) (bool, error)
	// RemoveMembership deletes the row and reports whether one existed.
	RemoveMembership(ctx context.Context, q DBExecutor, groupID int64, userID string) (bool, error)
	// DeleteMembershipsByGroup removes the whole roster of a group.
	DeleteMembershipsByGroup(ctx context.Context, q DBExecutor, groupID int64) (int64, error)
	// ListMembers returns the roster joined to user projections, oldest member first.
	ListMembers(ctx context.Context, q DBExecutor, groupID int64) ([]domain.Member, error)
}
