package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/omarica/internal/model"
)

// itemColumns is the shared select list for item queries with joined
// category and locker fields.
const itemColumns = `i.id, i.user_id, i.category_id, i.locker_id, i.name, i.quantity, i.description,
	i.created_at, i.updated_at, c.name AS category_name, l.code AS locker_code, l.name AS locker_name`

// CreateItem creates a new item. The category and locker must belong to
// the same user as the item.
func CreateItem(ctx context.Context, q Querier, userID, categoryID, lockerID int64, name string, quantity int, description string) (*model.Item, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative")
	}

	if err := checkItemRefs(ctx, q, userID, categoryID, lockerID); err != nil {
		return nil, err
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO items (user_id, category_id, locker_id, name, quantity, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, categoryID, lockerID, name, quantity, description,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, q, id)
}

// checkItemRefs verifies a category and locker exist and belong to userID.
func checkItemRefs(ctx context.Context, q Querier, userID, categoryID, lockerID int64) error {
	category, err := GetCategory(ctx, q, categoryID)
	if err != nil {
		return err
	}
	if category == nil || category.UserID != userID {
		return fmt.Errorf("category %d: %w", categoryID, ErrNotFound)
	}

	locker, err := GetLocker(ctx, q, lockerID)
	if err != nil {
		return err
	}
	if locker == nil || locker.UserID != userID {
		return fmt.Errorf("locker %d: %w", lockerID, ErrNotFound)
	}
	return nil
}

// GetItem returns an item by ID with joined category and locker fields.
func GetItem(ctx context.Context, q Querier, id int64) (*model.Item, error) {
	item := &model.Item{}
	var description sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items i
		 JOIN categories c ON c.id = i.category_id
		 JOIN lockers l ON l.id = i.locker_id
		 WHERE i.id = ?`, id,
	).Scan(&item.ID, &item.UserID, &item.CategoryID, &item.LockerID, &item.Name, &item.Quantity,
		&description, &item.CreatedAt, &item.UpdatedAt, &item.CategoryName, &item.LockerCode, &item.LockerName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item.Description = description.String
	return item, nil
}

// FindItem looks up a user's item by its logical identity:
// name, category and locker.
func FindItem(ctx context.Context, q Querier, userID, categoryID, lockerID int64, name string) (*model.Item, error) {
	item := &model.Item{}
	var description sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items i
		 JOIN categories c ON c.id = i.category_id
		 JOIN lockers l ON l.id = i.locker_id
		 WHERE i.user_id = ? AND i.category_id = ? AND i.locker_id = ? AND i.name = ?`,
		userID, categoryID, lockerID, name,
	).Scan(&item.ID, &item.UserID, &item.CategoryID, &item.LockerID, &item.Name, &item.Quantity,
		&description, &item.CreatedAt, &item.UpdatedAt, &item.CategoryName, &item.LockerCode, &item.LockerName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding item: %w", err)
	}
	item.Description = description.String
	return item, nil
}

// ItemFilter narrows ListItems results. Zero values mean no filtering.
type ItemFilter struct {
	CategoryID int64
	LockerID   int64
	Search     string
}

// ListItems returns a user's items, optionally filtered by category,
// locker, and a name/description substring search.
func ListItems(ctx context.Context, q Querier, userID int64, filter ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + `
	          FROM items i
	          JOIN categories c ON c.id = i.category_id
	          JOIN lockers l ON l.id = i.locker_id
	          WHERE i.user_id = ?`
	args := []any{userID}

	if filter.CategoryID > 0 {
		query += ` AND i.category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if filter.LockerID > 0 {
		query += ` AND i.locker_id = ?`
		args = append(args, filter.LockerID)
	}
	if filter.Search != "" {
		query += ` AND (i.name LIKE ? OR i.description LIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	query += ` ORDER BY i.name`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		var item model.Item
		var description sql.NullString
		if err := rows.Scan(&item.ID, &item.UserID, &item.CategoryID, &item.LockerID, &item.Name, &item.Quantity,
			&description, &item.CreatedAt, &item.UpdatedAt, &item.CategoryName, &item.LockerCode, &item.LockerName); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.Description = description.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItem updates an item's fields. The new category and locker must
// belong to the item's user.
func UpdateItem(ctx context.Context, q Querier, id, userID, categoryID, lockerID int64, name string, quantity int, description string) error {
	if quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}

	if err := checkItemRefs(ctx, q, userID, categoryID, lockerID); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx,
		`UPDATE items SET category_id = ?, locker_id = ?, name = ?, quantity = ?, description = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		categoryID, lockerID, name, quantity, description, id, userID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("updating item %d: %w", id, ErrNotFound)
	}
	return nil
}

// AddItemQuantity increases an item's quantity and optionally replaces its
// description when the incoming one is non-empty.
func AddItemQuantity(ctx context.Context, q Querier, id int64, delta int, description string) error {
	var err error
	if description != "" {
		_, err = q.ExecContext(ctx,
			`UPDATE items SET quantity = quantity + ?, description = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`, delta, description, id,
		)
	} else {
		_, err = q.ExecContext(ctx,
			`UPDATE items SET quantity = quantity + ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`, delta, id,
		)
	}
	if err != nil {
		return fmt.Errorf("adding item quantity: %w", err)
	}
	return nil
}

// DeleteItem deletes an item.
func DeleteItem(ctx context.Context, q Querier, id, userID int64) error {
	result, err := q.ExecContext(ctx,
		`DELETE FROM items WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting item %d: %w", id, ErrNotFound)
	}
	return nil
}
