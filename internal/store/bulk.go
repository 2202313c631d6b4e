package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Locker delete modes for lockers that still contain items.
const (
	// LockerDeleteMove relocates contained items to a surviving locker
	// before deleting the source lockers.
	LockerDeleteMove = "move"
	// LockerDeleteCascade deletes the lockers together with their items.
	LockerDeleteCascade = "delete"
)

// placeholders builds a "?, ?, ?" list for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// countOwned returns how many of the given ids exist in table and belong
// to userID.
func countOwned(ctx context.Context, q Querier, table string, userID int64, ids []int64) (int, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE id IN (`+placeholders(len(ids))+`) AND user_id = ?`,
		append(int64Args(ids), userID)...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("checking %s ownership: %w", table, err)
	}
	return count, nil
}

// BulkDeleteItems deletes the given items in one transaction. All ids must
// belong to userID; if any does not, nothing is deleted and ErrNotFound is
// returned.
func BulkDeleteItems(ctx context.Context, db *sql.DB, userID int64, ids []int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("no item ids given")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	count, err := countOwned(ctx, tx, "items", userID, ids)
	if err != nil {
		return err
	}
	if count != len(ids) {
		return fmt.Errorf("bulk delete: %d of %d items: %w", len(ids)-count, len(ids), ErrNotFound)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM items WHERE id IN (`+placeholders(len(ids))+`) AND user_id = ?`,
		append(int64Args(ids), userID)...,
	)
	if err != nil {
		return fmt.Errorf("bulk deleting items: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing bulk delete: %w", err)
	}
	return nil
}

// checkMoveRefs verifies the given category and locker exist and belong
// to userID. Zero ids are skipped. The role is used in error messages
// ("source", "destination").
func checkMoveRefs(ctx context.Context, q Querier, role string, userID, categoryID, lockerID int64) error {
	if categoryID > 0 {
		category, err := GetCategory(ctx, q, categoryID)
		if err != nil {
			return err
		}
		if category == nil || category.UserID != userID {
			return fmt.Errorf("%s category %d: %w", role, categoryID, ErrNotFound)
		}
	}
	if lockerID > 0 {
		locker, err := GetLocker(ctx, q, lockerID)
		if err != nil {
			return err
		}
		if locker == nil || locker.UserID != userID {
			return fmt.Errorf("%s locker %d: %w", role, lockerID, ErrNotFound)
		}
	}
	return nil
}

// moveSets builds the SET clause for an item move.
func moveSets(categoryID, lockerID int64) (string, []any) {
	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	var args []any
	if categoryID > 0 {
		sets = append(sets, "category_id = ?")
		args = append(args, categoryID)
	}
	if lockerID > 0 {
		sets = append(sets, "locker_id = ?")
		args = append(args, lockerID)
	}
	return strings.Join(sets, ", "), args
}

// BulkMoveItems moves the given items to a new category and/or locker in
// one pass. A zero destination id leaves that reference unchanged. The
// destinations must belong to userID, as must every item.
func BulkMoveItems(ctx context.Context, db *sql.DB, userID int64, ids []int64, categoryID, lockerID int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("no item ids given")
	}
	if categoryID == 0 && lockerID == 0 {
		return fmt.Errorf("no destination given")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkMoveRefs(ctx, tx, "destination", userID, categoryID, lockerID); err != nil {
		return err
	}

	count, err := countOwned(ctx, tx, "items", userID, ids)
	if err != nil {
		return err
	}
	if count != len(ids) {
		return fmt.Errorf("bulk move: %d of %d items: %w", len(ids)-count, len(ids), ErrNotFound)
	}

	sets, setArgs := moveSets(categoryID, lockerID)
	query := `UPDATE items SET ` + sets +
		` WHERE id IN (` + placeholders(len(ids)) + `) AND user_id = ?`
	_, err = tx.ExecContext(ctx, query, append(setArgs, append(int64Args(ids), userID)...)...)
	if err != nil {
		return fmt.Errorf("bulk moving items: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing bulk move: %w", err)
	}
	return nil
}

// BulkMoveItemsFrom moves every item matching the source category and/or
// locker to a new category and/or locker. Zero source ids are skipped as
// filters, but at least one must be given. Sources and destinations must
// belong to userID. Returns the number of items moved.
func BulkMoveItemsFrom(ctx context.Context, db *sql.DB, userID, sourceCategoryID, sourceLockerID, categoryID, lockerID int64) (int, error) {
	if sourceCategoryID == 0 && sourceLockerID == 0 {
		return 0, fmt.Errorf("no source given")
	}
	if categoryID == 0 && lockerID == 0 {
		return 0, fmt.Errorf("no destination given")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkMoveRefs(ctx, tx, "source", userID, sourceCategoryID, sourceLockerID); err != nil {
		return 0, err
	}
	if err := checkMoveRefs(ctx, tx, "destination", userID, categoryID, lockerID); err != nil {
		return 0, err
	}

	sets, args := moveSets(categoryID, lockerID)
	query := `UPDATE items SET ` + sets + ` WHERE user_id = ?`
	args = append(args, userID)
	if sourceCategoryID > 0 {
		query += ` AND category_id = ?`
		args = append(args, sourceCategoryID)
	}
	if sourceLockerID > 0 {
		query += ` AND locker_id = ?`
		args = append(args, sourceLockerID)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk moving items: %w", err)
	}
	moved, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bulk moving items: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing bulk move: %w", err)
	}
	return int(moved), nil
}

// BulkDeleteLockers deletes the given lockers in one transaction. All ids
// must belong to userID. Lockers that still contain items require an
// explicit mode: LockerDeleteMove relocates their items to targetLockerID
// first, LockerDeleteCascade deletes the items with them. Without a mode,
// non-empty lockers make the whole operation fail with ErrLockerNotEmpty.
// Empty lockers never need a mode.
func BulkDeleteLockers(ctx context.Context, db *sql.DB, userID int64, ids []int64, mode string, targetLockerID int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("no locker ids given")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	count, err := countOwned(ctx, tx, "lockers", userID, ids)
	if err != nil {
		return err
	}
	if count != len(ids) {
		return fmt.Errorf("bulk delete: %d of %d lockers: %w", len(ids)-count, len(ids), ErrNotFound)
	}

	idArgs := int64Args(ids)
	var contained int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE locker_id IN (`+placeholders(len(ids))+`)`,
		idArgs...,
	).Scan(&contained)
	if err != nil {
		return fmt.Errorf("counting contained items: %w", err)
	}

	if contained > 0 {
		switch mode {
		case LockerDeleteMove:
			if targetLockerID == 0 {
				return fmt.Errorf("move mode requires a target locker")
			}
			for _, id := range ids {
				if id == targetLockerID {
					return fmt.Errorf("target locker %d is among the lockers being deleted", targetLockerID)
				}
			}
			target, err := GetLocker(ctx, tx, targetLockerID)
			if err != nil {
				return err
			}
			if target == nil || target.UserID != userID {
				return fmt.Errorf("target locker %d: %w", targetLockerID, ErrNotFound)
			}

			_, err = tx.ExecContext(ctx,
				`UPDATE items SET locker_id = ?, updated_at = CURRENT_TIMESTAMP
				 WHERE locker_id IN (`+placeholders(len(ids))+`)`,
				append([]any{targetLockerID}, idArgs...)...,
			)
			if err != nil {
				return fmt.Errorf("relocating items: %w", err)
			}
		case LockerDeleteCascade:
			_, err = tx.ExecContext(ctx,
				`DELETE FROM items WHERE locker_id IN (`+placeholders(len(ids))+`)`,
				idArgs...,
			)
			if err != nil {
				return fmt.Errorf("cascade deleting items: %w", err)
			}
		default:
			return fmt.Errorf("%d items in selected lockers: %w", contained, ErrLockerNotEmpty)
		}
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM lockers WHERE id IN (`+placeholders(len(ids))+`) AND user_id = ?`,
		append(idArgs, userID)...,
	)
	if err != nil {
		return fmt.Errorf("bulk deleting lockers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing bulk delete: %w", err)
	}
	return nil
}
