package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Store functions take a Querier so the import reconciler can run them
// inside its transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Sentinel errors mapped to HTTP statuses at the API boundary.
var (
	// ErrNotFound marks a referenced entity that is absent or not owned
	// by the caller.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a duplicate name or code where uniqueness is
	// required.
	ErrConflict = errors.New("already exists")

	// ErrLastAdmin guards the invariant that at least one active admin
	// must exist at all times.
	ErrLastAdmin = errors.New("cannot delete the last admin")

	// ErrLockerNotEmpty is returned when deleting lockers that still hold
	// items without an explicit relocation decision.
	ErrLockerNotEmpty = errors.New("locker still contains items")
)

// isUniqueViolation reports whether err is a SQLite unique constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
