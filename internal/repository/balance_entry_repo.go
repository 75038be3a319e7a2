// internal/repository/balance_entry_repo.go
package repository

import (
	"context"

	"fairsplit/internal/domain"
)

// BalanceEntryRepository defines the interface for the balance audit trail.
type BalanceEntryRepository interface {
	// CreateBalanceEntry adds a new entry using the provided DBExecutor.
	CreateBalanceEntry(ctx context.Context, q DBExecutor, entry *domain.BalanceEntry) error
	// GetBalanceEntriesByUserID returns a page of entries, newest first, and the total count.
	GetBalanceEntriesByUserID(ctx context.Context, q DBExecutor, userID string, limit, offset int) ([]domain.BalanceEntry, int64, error)
}
