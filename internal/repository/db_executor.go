// internal/repository/db_executor.go
package repository

import "fairsplit/pkg/db"

// DBExecutor defines the common database operations needed by repositories.
// Both *sqlx.DB and *sqlx.Tx implement these methods, so repositories can
// operate on either a direct DB connection or a transaction.
type DBExecutor = db.Executor
