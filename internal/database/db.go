// Package database is the storage seam of the service. Repositories, seeders
// and the schema runner depend on these interfaces; internal/database/postgres
// implements them on pgxpool.
package database

import (
	"context"
	"database/sql"
)

// Querier is the statement surface shared by a pool and a transaction.
// Exec reports the number of affected rows, which the level migration counts
// as changed records.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
}

// DB is a connection pool. SQLDB exposes the same pool as *sql.DB for the
// versioned schema runner.
type DB interface {
	Querier

	Ping(ctx context.Context) error
	Close() error

	Begin(ctx context.Context) (Tx, error)

	SQLDB() *sql.DB
}

// Tx is one transaction. Callers defer Rollback and ignore its error once
// Commit has run.
type Tx interface {
	Querier

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Rows interface {
	Close()
	Next() bool
	Scan(dest ...any) error
	Err() error
}

type Row interface {
	Scan(dest ...any) error
}
