// internal/repository/postgres/group_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fairsplit/internal/domain"
	"fairsplit/internal/repository"
	"fairsplit/internal/util"
)

const groupColumns = `id, name, is_active, created_at, updated_at`

// GroupRepository implements repository.GroupRepository for PostgreSQL.
type GroupRepository struct{}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository() repository.GroupRepository {
	return &GroupRepository{}
}

// CreateGroup inserts a new group into the database using the provided DBExecutor.
func (r *GroupRepository) CreateGroup(ctx context.Context, q repository.DBExecutor, group *domain.Group) error {
	query := `INSERT INTO groups (name, is_active, created_at, updated_at)
              VALUES ($1, $2, $3, $4) RETURNING id`
	err := q.QueryRowContext(ctx, query, group.Name, group.IsActive, group.CreatedAt, group.UpdatedAt).Scan(&group.ID)
	if err != nil {
		return wrapErr(err, "failed to create group")
	}
	return nil
}

// GetGroupByID retrieves a group by its ID using the provided DBExecutor.
func (r *GroupRepository) GetGroupByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Group, error) {
	var group domain.Group
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`
	if err := q.GetContext(ctx, &group, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrGroupNotFound
		}
		return nil, wrapErr(err, "failed to get group by ID %d", id)
	}
	return &group, nil
}

// GetGroupForUpdate reads a group with SELECT ... FOR UPDATE. Inserts into
// group_users take a KEY SHARE lock on the group row, so they wait for the holder.
func (r *GroupRepository) GetGroupForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Group, error) {
	var group domain.Group
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1 FOR UPDATE`
	if err := q.GetContext(ctx, &group, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrGroupNotFound
		}
		return nil, wrapErr(err, "failed to lock group %d", id)
	}
	return &group, nil
}

// ListGroups retrieves groups matching the filter, newest first.
func (r *GroupRepository) ListGroups(ctx context.Context, q repository.DBExecutor, filter repository.GroupFilter) ([]domain.Group, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if filter.Name != nil {
		args = append(args, *filter.Name)
		conds = append(conds, fmt.Sprintf("name = $%d", len(args)))
	}

	query := `SELECT ` + groupColumns + ` FROM groups`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	groups := []domain.Group{}
	if err := q.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, wrapErr(err, "failed to list groups")
	}
	return groups, nil
}

// ListGroupsForUser retrieves the groups a user is a member of, newest first.
func (r *GroupRepository) ListGroupsForUser(ctx context.Context, q repository.DBExecutor, userID string) ([]domain.Group, error) {
	query := `
		SELECT g.id, g.name, g.is_active, g.created_at, g.updated_at
		FROM groups g
		JOIN group_users gu ON gu.group_id = g.id
		WHERE gu.user_id = $1
		ORDER BY g.created_at DESC, g.id DESC`
	groups := []domain.Group{}
	if err := q.SelectContext(ctx, &groups, query, userID); err != nil {
		return nil, wrapErr(err, "failed to list groups for user %s", userID)
	}
	return groups, nil
}

// UpdateGroup applies the supplied fields of update and stamps updated_at.
func (r *GroupRepository) UpdateGroup(ctx context.Context, q repository.DBExecutor, id int64, update domain.GroupUpdate) (*domain.Group, error) {
	var (
		sets []string
		args []interface{}
	)
	if update.Name != nil {
		args = append(args, *update.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if update.IsActive != nil {
		args = append(args, *update.IsActive)
		sets = append(sets, fmt.Sprintf("is_active = $%d", len(args)))
	}
	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE groups SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), groupColumns)

	var group domain.Group
	if err := q.GetContext(ctx, &group, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrGroupNotFound
		}
		return nil, wrapErr(err, "failed to update group %d", id)
	}
	return &group, nil
}

// DeleteGroup removes the group row. Deleting a missing group is a no-op.
func (r *GroupRepository) DeleteGroup(ctx context.Context, q repository.DBExecutor, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id); err != nil {
		return wrapErr(err, "failed to delete group %d", id)
	}
	return nil
}
