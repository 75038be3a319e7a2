// pkg/db/transaction_manager.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// Executor defines the common database operations needed by repositories.
// Both *sqlx.DB and *sqlx.Tx implement these methods.
type Executor interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TxController defines methods for controlling a database transaction.
// *sqlx.Tx implicitly implements this interface.
type TxController interface {
	Commit() error
	Rollback() error
}

// DBTxBeginner defines the interface for beginning transactions.
// *sqlx.DB implements this.
type DBTxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// BeginTxFunc, CommitTxFunc and RollbackTxFunc allow the transaction lifecycle to be swapped in tests.
type (
	BeginTxFunc    func(ctx context.Context, dbConn DBTxBeginner) (TxController, error)
	CommitTxFunc   func(tx TxController) error
	RollbackTxFunc func(tx TxController)
)

// BeginTx starts a new database transaction.
// It returns a TxController interface, which *sqlx.Tx implements.
func BeginTx(ctx context.Context, dbConn DBTxBeginner) (TxController, error) {
	tx, err := dbConn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return tx, nil // *sqlx.Tx implicitly implements TxController
}

// CommitTx commits the transaction.
func CommitTx(tx TxController) error {
	return tx.Commit()
}

// RollbackTx rolls back the transaction. It is meant to be deferred, so a
// transaction that was already committed is not reported.
func RollbackTx(tx TxController) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.Default().Warn("rollback failed", "error", err)
	}
}

// TxManager runs a function inside a single database transaction.
type TxManager struct {
	dbConn     DBTxBeginner
	beginTx    BeginTxFunc
	commitTx   CommitTxFunc
	rollbackTx RollbackTxFunc
}

// NewTxManager builds a TxManager over the real transaction helpers.
func NewTxManager(dbConn DBTxBeginner) *TxManager {
	return NewTxManagerWithFuncs(dbConn, BeginTx, CommitTx, RollbackTx)
}

// NewTxManagerWithFuncs builds a TxManager with injected lifecycle functions.
func NewTxManagerWithFuncs(dbConn DBTxBeginner, begin BeginTxFunc, commit CommitTxFunc, rollback RollbackTxFunc) *TxManager {
	return &TxManager{
		dbConn:     dbConn,
		beginTx:    begin,
		commitTx:   commit,
		rollbackTx: rollback,
	}
}

// WithTransaction begins a transaction, hands it to fn as an Executor and commits
// when fn returns nil. Any error from fn, a panic, or a cancelled context rolls
// everything back, so callers never observe partial writes.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(q Executor) error) error {
	tx, err := m.beginTx(ctx, m.dbConn)
	if err != nil {
		return WrapErr(err, "begin transaction")
	}
	defer m.rollbackTx(tx)

	q, ok := tx.(Executor)
	if !ok {
		return fmt.Errorf("transaction controller does not implement Executor")
	}

	if err := fn(q); err != nil {
		return err
	}

	if err := m.commitTx(tx); err != nil {
		return WrapErr(err, "commit transaction")
	}
	return nil
}
