// internal/repository/memory/store.go
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fairsplit/internal/domain"
	"fairsplit/internal/repository"
	"fairsplit/internal/util"
)

type memberKey struct {
	groupID int64
	userID  string
}

// Store is an in-memory stand-in for the relational store. It implements every
// repository interface plus a WithTransaction scope, so services can run against
// it unchanged. Transactions are serialized and roll back on error by restoring a
// snapshot taken when the transaction began.
type Store struct {
	txMu sync.Mutex

	mu          sync.RWMutex
	users       map[string]domain.User
	groups      map[int64]domain.Group
	memberships map[memberKey]domain.Membership
	entries     []domain.BalanceEntry
	payments    map[int64]domain.Payment
	nextGroupID int64
	nextEntryID int64
	nextPayID   int64
}

var (
	_ repository.UserRepository         = (*Store)(nil)
	_ repository.GroupRepository        = (*Store)(nil)
	_ repository.MembershipRepository   = (*Store)(nil)
	_ repository.BalanceEntryRepository = (*Store)(nil)
	_ repository.PaymentRepository      = (*Store)(nil)
)

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		groups:      make(map[int64]domain.Group),
		memberships: make(map[memberKey]domain.Membership),
		payments:    make(map[int64]domain.Payment),
	}
}

type snapshot struct {
	users       map[string]domain.User
	groups      map[int64]domain.Group
	memberships map[memberKey]domain.Membership
	entries     []domain.BalanceEntry
	payments    map[int64]domain.Payment
	nextGroupID int64
	nextEntryID int64
	nextPayID   int64
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		users:       make(map[string]domain.User, len(s.users)),
		groups:      make(map[int64]domain.Group, len(s.groups)),
		memberships: make(map[memberKey]domain.Membership, len(s.memberships)),
		entries:     append([]domain.BalanceEntry(nil), s.entries...),
		payments:    make(map[int64]domain.Payment, len(s.payments)),
		nextGroupID: s.nextGroupID,
		nextEntryID: s.nextEntryID,
		nextPayID:   s.nextPayID,
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.groups {
		snap.groups[k] = v
	}
	for k, v := range s.memberships {
		snap.memberships[k] = v
	}
	for k, v := range s.payments {
		snap.payments[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.groups = snap.groups
	s.memberships = snap.memberships
	s.entries = snap.entries
	s.payments = snap.payments
	s.nextGroupID = snap.nextGroupID
	s.nextEntryID = snap.nextEntryID
	s.nextPayID = snap.nextPayID
}

// WithTransaction runs fn while holding the store's transaction lock. The executor
// handed to fn is nil: Store methods ignore it.
func (s *Store) WithTransaction(ctx context.Context, fn func(q repository.DBExecutor) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	committed := false
	defer func() {
		if !committed {
			s.restore(snap)
		}
	}()

	if err := fn(nil); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// CreateUser adds a user. Usernames must be unique among active users.
func (s *Store) CreateUser(_ context.Context, _ repository.DBExecutor, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return util.ErrDuplicateEntry
	}
	if user.IsActive {
		for _, u := range s.users {
			if u.IsActive && u.Username == user.Username {
				return util.ErrDuplicateEntry
			}
		}
	}
	s.users[user.ID] = *user
	return nil
}

// DeactivateUser soft-deletes a user.
func (s *Store) DeactivateUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.IsActive = false
		u.UpdatedAt = time.Now().UTC()
		s.users[id] = u
	}
}

func (s *Store) GetActiveUserByID(_ context.Context, _ repository.DBExecutor, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok || !u.IsActive {
		return nil, util.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) GetActiveUserByUsername(_ context.Context, _ repository.DBExecutor, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.IsActive && u.Username == username {
			return &u, nil
		}
	}
	return nil, util.ErrUserNotFound
}

// LockActiveUser is GetActiveUserByID: transactions are already serialized.
func (s *Store) LockActiveUser(ctx context.Context, q repository.DBExecutor, id string) (*domain.User, error) {
	return s.GetActiveUserByID(ctx, q, id)
}

func (s *Store) SetUserAmount(_ context.Context, _ repository.DBExecutor, id string, amount decimal.Decimal) (*domain.User, error) {
	return s.updateAmount(id, func(decimal.Decimal) decimal.Decimal { return amount })
}

func (s *Store) AddUserAmount(_ context.Context, _ repository.DBExecutor, id string, delta decimal.Decimal) (*domain.User, error) {
	return s.updateAmount(id, func(cur decimal.Decimal) decimal.Decimal { return cur.Add(delta) })
}

func (s *Store) updateAmount(id string, next func(decimal.Decimal) decimal.Decimal) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || !u.IsActive {
		return nil, util.ErrUserNotFound
	}
	amount := next(u.Amount)
	if !domain.ValidAmount(amount) {
		return nil, fmt.Errorf("balance for user %s out of range: %w", id, util.ErrInvalidInput)
	}
	u.Amount = amount
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return &u, nil
}

func (s *Store) CreateGroup(_ context.Context, _ repository.DBExecutor, group *domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGroupID++
	group.ID = s.nextGroupID
	s.groups[group.ID] = *group
	return nil
}

func (s *Store) GetGroupByID(_ context.Context, _ repository.DBExecutor, id int64) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, util.ErrGroupNotFound
	}
	return &g, nil
}

// GetGroupForUpdate is GetGroupByID: transactions are already serialized.
func (s *Store) GetGroupForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Group, error) {
	return s.GetGroupByID(ctx, q, id)
}

func (s *Store) ListGroups(_ context.Context, _ repository.DBExecutor, filter repository.GroupFilter) ([]domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := []domain.Group{}
	for _, g := range s.groups {
		if filter.IsActive != nil && g.IsActive != *filter.IsActive {
			continue
		}
		if filter.Name != nil && g.Name != *filter.Name {
			continue
		}
		groups = append(groups, g)
	}
	sortNewestFirst(groups)
	return groups, nil
}

func (s *Store) ListGroupsForUser(_ context.Context, _ repository.DBExecutor, userID string) ([]domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := []domain.Group{}
	for k := range s.memberships {
		if k.userID != userID {
			continue
		}
		if g, ok := s.groups[k.groupID]; ok {
			groups = append(groups, g)
		}
	}
	sortNewestFirst(groups)
	return groups, nil
}

func (s *Store) UpdateGroup(_ context.Context, _ repository.DBExecutor, id int64, update domain.GroupUpdate) (*domain.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, util.ErrGroupNotFound
	}
	if update.Name != nil {
		g.Name = *update.Name
	}
	if update.IsActive != nil {
		g.IsActive = *update.IsActive
	}
	g.UpdatedAt = time.Now().UTC()
	s.groups[id] = g
	return &g, nil
}

func (s *Store) DeleteGroup(_ context.Context, _ repository.DBExecutor, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.memberships {
		if k.groupID == id {
			return fmt.Errorf("delete group %d: memberships still reference it", id)
		}
	}
	delete(s.groups, id)
	for pid, p := range s.payments {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
			s.payments[pid] = p
		}
	}
	return nil
}

// AddMembership mirrors the composite primary key and the foreign keys of group_users.
func (s *Store) AddMembership(_ context.Context, _ repository.DBExecutor, m *domain.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[m.GroupID]; !ok {
		return fmt.Errorf("group %d, user %s: %w", m.GroupID, m.UserID, util.ErrNotFound)
	}
	if _, ok := s.users[m.UserID]; !ok {
		return fmt.Errorf("group %d, user %s: %w", m.GroupID, m.UserID, util.ErrNotFound)
	}
	key := memberKey{groupID: m.GroupID, userID: m.UserID}
	if _, ok := s.memberships[key]; ok {
		return fmt.Errorf("group %d, user %s: %w", m.GroupID, m.UserID, util.ErrDuplicateEntry)
	}
	s.memberships[key] = *m
	return nil
}

func (s *Store) MembershipExists(_ context.Context, _ repository.DBExecutor, groupID int64, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.memberships[memberKey{groupID: groupID, userID: userID}]
	return ok, nil
}

func (s *Store) RemoveMembership(_ context.Context, _ repository.DBExecutor, groupID int64, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memberKey{groupID: groupID, userID: userID}
	if _, ok := s.memberships[key]; !ok {
		return false, nil
	}
	delete(s.memberships, key)
	return true, nil
}

func (s *Store) DeleteMembershipsByGroup(_ context.Context, _ repository.DBExecutor, groupID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k := range s.memberships {
		if k.groupID == groupID {
			delete(s.memberships, k)
			n++
		}
	}
	return n, nil
}

func (s *Store) ListMembers(_ context.Context, _ repository.DBExecutor, groupID int64) ([]domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := []domain.Member{}
	for k, m := range s.memberships {
		if k.groupID != groupID {
			continue
		}
		u := s.users[k.userID]
		members = append(members, domain.Member{
			ID:       u.ID,
			Username: u.Username,
			Fullname: u.Fullname,
			IsActive: u.IsActive,
			JoinedAt: m.JoinedAt,
		})
	}
	sort.Slice(members, func(i, j int) bool {
		if !members[i].JoinedAt.Equal(members[j].JoinedAt) {
			return members[i].JoinedAt.Before(members[j].JoinedAt)
		}
		return members[i].ID < members[j].ID
	})
	return members, nil
}

func (s *Store) CreateBalanceEntry(_ context.Context, _ repository.DBExecutor, entry *domain.BalanceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEntryID++
	entry.ID = s.nextEntryID
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *Store) GetBalanceEntriesByUserID(_ context.Context, _ repository.DBExecutor, userID string, limit, offset int) ([]domain.BalanceEntry, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []domain.BalanceEntry
	// entries are appended in commit order, so walking backwards yields newest first
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].UserID == userID {
			all = append(all, s.entries[i])
		}
	}
	total := int64(len(all))
	page := []domain.BalanceEntry{}
	for i := offset; i < len(all) && len(page) < limit; i++ {
		page = append(page, all[i])
	}
	return page, total, nil
}

// CreatePayment mirrors the foreign keys of payments.
func (s *Store) CreatePayment(_ context.Context, _ repository.DBExecutor, p *domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, debtorOK := s.users[p.DebtorID]
	_, debteeOK := s.users[p.DebteeID]
	if !debtorOK || !debteeOK {
		return fmt.Errorf("payment from %s to %s: %w", p.DebtorID, p.DebteeID, util.ErrNotFound)
	}
	if p.GroupID != nil {
		if _, ok := s.groups[*p.GroupID]; !ok {
			return fmt.Errorf("payment in group %d: %w", *p.GroupID, util.ErrNotFound)
		}
	}
	s.nextPayID++
	p.ID = s.nextPayID
	s.payments[p.ID] = *p
	return nil
}

func (s *Store) GetPaymentByID(_ context.Context, _ repository.DBExecutor, id int64) (*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, util.ErrPaymentNotFound
	}
	return &p, nil
}

func (s *Store) ListPayments(_ context.Context, _ repository.DBExecutor, filter domain.PaymentFilter) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payments := []domain.Payment{}
	for _, p := range s.payments {
		if filter.DebtorID != "" && p.DebtorID != filter.DebtorID {
			continue
		}
		if filter.DebteeID != "" && p.DebteeID != filter.DebteeID {
			continue
		}
		if filter.GroupID != nil && (p.GroupID == nil || *p.GroupID != *filter.GroupID) {
			continue
		}
		payments = append(payments, p)
	}
	sort.Slice(payments, func(i, j int) bool {
		if !payments[i].CreatedAt.Equal(payments[j].CreatedAt) {
			return payments[i].CreatedAt.After(payments[j].CreatedAt)
		}
		return payments[i].ID > payments[j].ID
	})
	return payments, nil
}

func (s *Store) DeletePayment(_ context.Context, _ repository.DBExecutor, id int64) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, util.ErrPaymentNotFound
	}
	delete(s.payments, id)
	return &p, nil
}

func sortNewestFirst(groups []domain.Group) {
	sort.Slice(groups, func(i, j int) bool {
		if !groups[i].CreatedAt.Equal(groups[j].CreatedAt) {
			return groups[i].CreatedAt.After(groups[j].CreatedAt)
		}
		return groups[i].ID > groups[j].ID
	})
}
