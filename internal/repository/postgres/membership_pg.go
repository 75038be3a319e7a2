// internal/repository/postgres/membership_pg.go
package postgres

import (
	"context"
	"fmt"

	"fairsplit/internal/domain"
	"fairsplit/internal/repository"
	"fairsplit/internal/util"
)

// MembershipRepository implements repository.MembershipRepository for PostgreSQL.
type MembershipRepository struct{}

// NewMembershipRepository creates a new MembershipRepository.
func NewMembershipRepository() repository.MembershipRepository {
	return &MembershipRepository{}
}

// AddMembership inserts a (group, user) row. The primary key is the authoritative
// guard against duplicates; its violation is reported as util.ErrDuplicateEntry.
func (r *MembershipRepository) AddMembership(ctx context.Context, q repository.DBExecutor, m *domain.Membership) error {
	query := `INSERT INTO group_users (group_id, user_id, joined_at) VALUES ($1, $2, $3)`
	if _, err := q.ExecContext(ctx, query, m.GroupID, m.UserID, m.JoinedAt); err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("group %d, user %s: %w", m.GroupID, m.UserID, util.ErrDuplicateEntry)
		case isForeignKeyViolation(err):
			return fmt.Errorf("group %d, user %s: %w", m.GroupID, m.UserID, util.ErrNotFound)
		}
		return wrapErr(err, "failed to add user %s to group %d", m.UserID, m.GroupID)
	}
	return nil
}

// MembershipExists reports whether the user holds a membership in the group.
func (r *MembershipRepository) MembershipExists(ctx context.Context, q repository.DBExecutor, groupID int64, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM group_users WHERE group_id = $1 AND user_id = $2)`
	if err := q.GetContext(ctx, &exists, query, groupID, userID); err != nil {
		return false, wrapErr(err, "failed to check membership of user %s in group %d", userID, groupID)
	}
	return exists, nil
}

// RemoveMembership deletes a (group, user) row and reports whether one was removed.
func (r *MembershipRepository) RemoveMembership(ctx context.Context, q repository.DBExecutor, groupID int64, userID string) (bool, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM group_users WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return false, wrapErr(err, "failed to remove user %s from group %d", userID, groupID)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, wrapErr(err, "failed to get rows affected after removing user %s from group %d", userID, groupID)
	}
	return rowsAffected > 0, nil
}

// DeleteMembershipsByGroup removes every membership of a group.
func (r *MembershipRepository) DeleteMembershipsByGroup(ctx context.Context, q repository.DBExecutor, groupID int64) (int64, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM group_users WHERE group_id = $1`, groupID)
	if err != nil {
		return 0, wrapErr(err, "failed to delete memberships of group %d", groupID)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, wrapErr(err, "failed to get rows affected after deleting memberships of group %d", groupID)
	}
	return rowsAffected, nil
}

// ListMembers returns the group roster joined to user projections, oldest member first.
func (r *MembershipRepository) ListMembers(ctx context.Context, q repository.DBExecutor, groupID int64) ([]domain.Member, error) {
	query := `
		SELECT u.id, u.username, u.fullname, u.is_active, gu.joined_at
		FROM group_users gu
		JOIN users u ON u.id = gu.user_id
		WHERE gu.group_id = $1
		ORDER BY gu.joined_at ASC, u.id ASC`
	members := []domain.Member{}
	if err := q.SelectContext(ctx, &members, query, groupID); err != nil {
		return nil, wrapErr(err, "failed to list members of group %d", groupID)
	}
	return members, nil
}
