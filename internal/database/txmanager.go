// Package database provides database connection management and utilities.
package database

import (
	"context"
	"database/sql"
	"fmt"
)

// txKey is a context key type for storing database transactions.
type txKey struct{}

// Querier is the query surface shared by *sql.DB and *sql.Tx. Repositories
// accept whatever GetTx hands them and never care which one it is.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager runs a function within a database transaction carried on the
// context, so use cases stay free of *sql.Tx plumbing.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type sqliteTxManager struct {
	db *sql.DB
}

// NewTxManager creates a TxManager for the given database.
func NewTxManager(db *sql.DB) TxManager {
	return &sqliteTxManager{db: db}
}

// WithTx runs fn inside a transaction, committing on nil and rolling back on
// error. If the context already carries a transaction, fn joins it instead of
// opening another one: SQLite runs with a single connection, so a nested
// BeginTx would block on itself.
func (m *sqliteTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTx returns the transaction carried by ctx, or the plain connection when
// no transaction is in flight.
func GetTx(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}
