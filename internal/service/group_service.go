// internal/service/group_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"fairsplit/internal/domain"
	"fairsplit/internal/metrics"
	"fairsplit/internal/repository"
	"fairsplit/internal/util"
)

// GroupService defines the group registry: groups and their membership roster.
type GroupService interface {
	ListGroups(ctx context.Context) ([]domain.Group, error)
	ListGroupsByStatus(ctx context.Context, isActive bool) ([]domain.Group, error)
	FindGroupsByName(ctx context.Context, name string) ([]domain.Group, error)
	GetGroup(ctx context.Context, id int64) (*domain.Group, error)
	GetGroupWithMembers(ctx context.Context, id int64) (*domain.GroupWithMembers, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]domain.Group, error)
	CreateGroup(ctx context.Context, name string, isActive bool, creatorUserID string) (*domain.Group, error)
	UpdateGroup(ctx context.Context, id int64, update domain.GroupUpdate) (*domain.Group, error)
	DeleteGroup(ctx context.Context, id int64) error
	AddUserToGroup(ctx context.Context, groupID int64, userID string) (*domain.Group, error)
	RemoveUserFromGroup(ctx context.Context, groupID int64, userID string) (*domain.Group, error)
}

// groupService implements the GroupService interface.
type groupService struct {
	tx         Transactor            // For atomic multi-step writes
	dbExecutor repository.DBExecutor // For non-transactional reads
	users      UserDirectory
	groupRepo  repository.GroupRepository
	memberRepo repository.MembershipRepository
	metrics    *metrics.Metrics
}

// NewGroupService creates a new instance of GroupService. m may be nil.
func NewGroupService(
	tx Transactor,
	dbExecutor repository.DBExecutor,
	users UserDirectory,
	groupRepo repository.GroupRepository,
	memberRepo repository.MembershipRepository,
	m *metrics.Metrics,
) GroupService {
	return &groupService{
		tx:         tx,
		dbExecutor: dbExecutor,
		users:      users,
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		metrics:    m,
	}
}

// ListGroups returns every group, newest first.
func (s *groupService) ListGroups(ctx context.Context) ([]domain.Group, error) {
	return s.listGroups(ctx, "list groups", repository.GroupFilter{})
}

// ListGroupsByStatus returns the active or the archived groups, newest first.
func (s *groupService) ListGroupsByStatus(ctx context.Context, isActive bool) ([]domain.Group, error) {
	return s.listGroups(ctx, "list groups by status", repository.GroupFilter{IsActive: &isActive})
}

// FindGroupsByName returns the groups with exactly this name, newest first.
func (s *groupService) FindGroupsByName(ctx context.Context, name string) ([]domain.Group, error) {
	return s.listGroups(ctx, "find groups by name", repository.GroupFilter{Name: &name})
}

func (s *groupService) listGroups(ctx context.Context, op string, filter repository.GroupFilter) ([]domain.Group, error) {
	groups, err := readWithRetry(ctx, func() ([]domain.Group, error) {
		return s.groupRepo.ListGroups(ctx, s.dbExecutor, filter)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return groups, nil
}

func (s *groupService) GetGroup(ctx context.Context, id int64) (*domain.Group, error) {
	group, err := readWithRetry(ctx, func() (*domain.Group, error) {
		return s.groupRepo.GetGroupByID(ctx, s.dbExecutor, id)
	})
	if err != nil {
		return nil, fmt.Errorf("get group %d: %w", id, err)
	}
	return group, nil
}

// GetGroupWithMembers reads the group and its roster from one transaction so the
// two halves of the snapshot agree.
func (s *groupService) GetGroupWithMembers(ctx context.Context, id int64) (*domain.GroupWithMembers, error) {
	read := func() (*domain.GroupWithMembers, error) {
		var result *domain.GroupWithMembers
		err := s.tx.WithTransaction(ctx, func(q repository.DBExecutor) error {
			group, err := s.groupRepo.GetGroupByID(ctx, q, id)
			if err != nil {
				return err
			}
			members, err := s.memberRepo.ListMembers(ctx, q, id)
			if err != nil {
				return err
			}
			result = &domain.GroupWithMembers{Group: *group, Users: members}
			return nil
		})
		return result, err
	}

	result, err := readWithRetry(ctx, read)
	if err != nil {
		return nil, fmt.Errorf("get group %d with members: %w", id, err)
	}
	return result, nil
}

// ListGroupsForUser returns the groups the user belongs to, newest first.
func (s *groupService) ListGroupsForUser(ctx context.Context, userID string) ([]domain.Group, error) {
	groups, err := readWithRetry(ctx, func() ([]domain.Group, error) {
		return s.groupRepo.ListGroupsForUser(ctx, s.dbExecutor, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("list groups for user %s: %w", userID, err)
	}
	return groups, nil
}

// CreateGroup creates a group with its creator as the first member. Both rows are
// written in one transaction; if either write fails nothing is kept and
// util.ErrCreationFailed is returned.
func (s *groupService) CreateGroup(ctx context.Context, name string, isActive bool, creatorUserID string) (*domain.Group, error) {
	start := time.Now()
	if domain.BlankName(name) {
		return nil, fmt.Errorf("create group: name is required: %w", util.ErrInvalidInput)
	}

	if _, err := s.users.GetActive(ctx, creatorUserID); err != nil {
		return nil, fmt.Errorf("create group: creator: %w", err)
	}

	group := domain.NewGroup(name, isActive)
	err := s.tx.WithTransaction(ctx, func(q repository.DBExecutor) error {
		if err := s.groupRepo.CreateGroup(ctx, q, group); err != nil {
			return err
		}
		if err := s.memberRepo.AddMembership(ctx, q, domain.NewMembership(group.ID, creatorUserID)); err != nil {
			return fmt.Errorf("add creator %s: %w", creatorUserID, err)
		}
		return nil
	})
	s.metrics.ObserveOperation("create_group", start, err)
	if err != nil {
		return nil, fmt.Errorf("create group: %w: %w", util.ErrCreationFailed, err)
	}

	s.metrics.IncrementGroupsCreated()
	return group, nil
}

// UpdateGroup applies the supplied fields only.
func (s *groupService) UpdateGroup(ctx context.Context, id int64, update domain.GroupUpdate) (*domain.Group, error) {
	start := time.Now()
	if update.Empty() {
		return nil, fmt.Errorf("update group %d: no fields supplied: %w", id, util.ErrInvalidInput)
	}
	if update.Name != nil && domain.BlankName(*update.Name) {
		return nil, fmt.Errorf("update group %d: name is required: %w", id, util.ErrInvalidInput)
	}

	var group *domain.Group
	err := s.tx.WithTransaction(ctx, func(q repository.DBExecutor) error {
		updated, err := s.groupRepo.UpdateGroup(ctx, q, id, update)
		if err != nil {
			return err
		}
		group = updated
		return nil
	})
	s.metrics.ObserveOperation("update_group", start, err)
	if err != nil {
		return nil, fmt.Errorf("update group %d: %w", id, err)
	}
	return group, nil
}

// DeleteGroup removes the group's memberships and then the group, atomically.
// Deleting an unknown group succeeds. The group row is locked first, so a
// concurrent AddUserToGroup either commits before the roster is cleared or
// finds the group gone.
func (s *groupService) DeleteGroup(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.tx.WithTransaction(ctx, func(q repository.DBExecutor) error {
		if _, err := s.groupRepo.GetGroupForUpdate(ctx, q, id); err != nil {
			if util.IsError(err, util.ErrGroupNotFound) {
				return nil
			}
			return err
		}
		if _, err := s.memberRepo.DeleteMembershipsByGroup(ctx, q, id); err != nil {
			return err
		}
		return s.groupRepo.DeleteGroup(ctx, q, id)
	})
	s.metrics.ObserveOperation("delete_group", start, err)
	if err != nil {
		return fmt.Errorf("delete group %d: %w", id, err)
	}
	s.metrics.IncrementGroupsDeleted()
	return nil
}

// AddUserToGroup adds userID to the group's roster and returns the refreshed group.
// The membership primary key is the final arbiter: when two callers race past the
// existence check, the loser's insert fails and is reported as util.ErrAlreadyMember.
func (s *groupService) AddUserToGroup(ctx context.Context, groupID int64, userID string) (*domain.Group, error) {
	start := time.Now()
	if _, err := s.users.GetActive(ctx, userID); err != nil {
		return nil, fmt.Errorf("add user to group %d: %w", groupID, err)
	}

	var group *domain.Group
	err := s.tx.WithTransaction(ctx, func(q repository.DBExecutor) error {
		if _, err := s.groupRepo.GetGroupByID(ctx, q, groupID); err != nil {
			return err
		}

		exists, err := s.memberRepo.MembershipExists(ctx, q, groupID, userID)
		if err != nil {
			return err
		}
		if exists {
			return util.ErrAlreadyMember
		}

		if err := s.memberRepo.AddMembership(ctx, q, domain.NewMembership(groupID, userID)); err != nil {
			if util.IsError(err, util.ErrDuplicateEntry) {
				return util.ErrAlreadyMember
			}
			return err
		}

		refreshed, err := s.groupRepo.GetGroupByID(ctx, q, groupID)
		if err != nil {
			return err
		}
		group = refreshed
		return nil
	})
	s.metrics.ObserveOperation("add_user_to_group", start, err)
	if err != nil {
		return nil, fmt.Errorf("add user %s to group %d: %w", userID, groupID, err)
	}

	s.metrics.IncrementMembershipChange("added")
	return group, nil
}

// RemoveUserFromGroup deletes the user's membership and returns the refreshed group.
func (s *groupService) RemoveUserFromGroup(ctx context.Context, groupID int64, userID string) (*domain.Group, error) {
	start := time.Now()
	var group *domain.Group
	err := s.tx.WithTransaction(ctx, func(q repository.DBExecutor) error {
		if _, err := s.groupRepo.GetGroupByID(ctx, q, groupID); err != nil {
			return err
		}

		removed, err := s.memberRepo.RemoveMembership(ctx, q, groupID, userID)
		if err != nil {
			return err
		}
		if !removed {
			return util.ErrNotMember
		}

		refreshed, err := s.groupRepo.GetGroupByID(ctx, q, groupID)
		if err != nil {
			return err
		}
		group = refreshed
		return nil
	})
	s.metrics.ObserveOperation("remove_user_from_group", start, err)
	if err != nil {
		return nil, fmt.Errorf("remove user %s from group %d: %w", userID, groupID, err)
	}

	s.metrics.IncrementMembershipChange("removed")
	return group, nil
}
