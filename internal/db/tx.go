package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrTxTimeout is returned when a transaction exceeds its time ceiling.
// The whole transaction is rolled back; callers may retry.
var ErrTxTimeout = errors.New("transaction timed out")

// InTransaction runs fn inside a single transaction with a hard deadline.
// The transaction is rolled back if fn returns an error or the deadline
// passes, and committed only when fn succeeds in time.
func InTransaction(ctx context.Context, db *sql.DB, timeout time.Duration, fn func(ctx context.Context, tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrTxTimeout, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrTxTimeout, err)
		}
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
