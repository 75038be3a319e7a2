// internal/repository/postgres/balance_entry_pg.go
package postgres

import (
	"context"

	"fairsplit/internal/domain"
	"fairsplit/internal/repository"
)

// BalanceEntryRepository implements repository.BalanceEntryRepository for PostgreSQL.
type BalanceEntryRepository struct{}

// NewBalanceEntryRepository creates a new BalanceEntryRepository.
func NewBalanceEntryRepository() repository.BalanceEntryRepository {
	return &BalanceEntryRepository{}
}

// CreateBalanceEntry inserts a new audit entry using the provided DBExecutor.
func (r *BalanceEntryRepository) CreateBalanceEntry(ctx context.Context, q repository.DBExecutor, entry *domain.BalanceEntry) error {
	query := `INSERT INTO balance_entries (user_id, type, amount, balance_after, created_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		entry.UserID,
		entry.Type,
		entry.Amount,
		entry.BalanceAfter,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return wrapErr(err, "failed to create balance entry")
	}
	return nil
}

// GetBalanceEntriesByUserID retrieves a paginated list of entries for a user.
// It performs two queries: one for the data and one for the total count.
func (r *BalanceEntryRepository) GetBalanceEntriesByUserID(ctx context.Context, q repository.DBExecutor, userID string, limit, offset int) ([]domain.BalanceEntry, int64, error) {
	entries := []domain.BalanceEntry{}

	query := `
		SELECT id, user_id, type, amount, balance_after, created_at
		FROM balance_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &entries, query, userID, limit, offset); err != nil {
		return nil, 0, wrapErr(err, "failed to fetch balance entries for user %s", userID)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM balance_entries WHERE user_id = $1`
	if err := q.GetContext(ctx, &totalCount, countQuery, userID); err != nil {
		return nil, 0, wrapErr(err, "failed to count balance entries for user %s", userID)
	}

	return entries, totalCount, nil
}
