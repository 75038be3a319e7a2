// internal/repository/group_repo.go
package repository

import (
	"context"

	"fairsplit/internal/domain"
)

// GroupFilter narrows a group listing. Nil fields are not filtered on.
type GroupFilter struct {
	IsActive *bool
	Name     *string
}

// GroupRepository defines the interface for group data operations.
type GroupRepository interface {
	// CreateGroup inserts the group and fills in its ID.
	CreateGroup(ctx context.Context, q DBExecutor, group *domain.Group) error
	GetGroupByID(ctx context.Context, q DBExecutor, id int64) (*domain.Group, error)
	// GetGroupForUpdate reads the group and holds its row lock until the
	// surrounding transaction ends.
	GetGroupForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Group, error)
	// ListGroups returns groups matching filter, newest first.
	ListGroups(ctx context.Context, q DBExecutor, filter GroupFilter) ([]domain.Group, error)
	// ListGroupsForUser returns the groups userID belongs to, newest first.
	ListGroupsForUser(ctx context.Context, q DBExecutor, userID string) ([]domain.Group, error)
	// UpdateGroup applies the supplied fields and stamps updated_at.
	UpdateGroup(ctx context.Context, q DBExecutor, id int64, update domain.GroupUpdate) (*domain.Group, error)
	// DeleteGroup removes the group row; a missing row is not an error.
	DeleteGroup(ctx context.Context, q DBExecutor, id int64) error
}
