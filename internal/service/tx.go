// internal/service/tx.go
package service

import (
	"context"

	"fairsplit/internal/repository"
)

// Transactor runs fn inside one atomic unit of work against the store: either
// every write made through q commits, or none does.
// *db.TxManager and *memory.Store implement it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(q repository.DBExecutor) error) error
}
