package store

import (
	"context"
	"database/sql"
)

// DBTX is the common query surface of *sql.DB and *sql.Tx. Stores are
// built against it so the same implementation serves standalone calls
// and the transactional variants produced by WithTx. Booking and
// settlement rely on the latter.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
