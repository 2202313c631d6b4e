package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/omarica/internal/model"
)

// CreateCategory creates a new category. Names are unique per user,
// compared case-insensitively.
func CreateCategory(ctx context.Context, q Querier, userID int64, name, description string) (*model.Category, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, description) VALUES (?, ?, ?)`,
		userID, name, description,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating category %q: %w", name, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting category id: %w", err)
	}

	return GetCategory(ctx, q, id)
}

// GetCategory returns a category by ID.
func GetCategory(ctx context.Context, q Querier, id int64) (*model.Category, error) {
	c := &model.Category{}
	var description sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, created_at FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.UserID, &c.Name, &description, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	c.Description = description.String
	return c, nil
}

// GetCategoryByName returns a user's category by name. The name column is
// COLLATE NOCASE, so the match is case-insensitive.
func GetCategoryByName(ctx context.Context, q Querier, userID int64, name string) (*model.Category, error) {
	c := &model.Category{}
	var description sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, created_at
		 FROM categories WHERE user_id = ? AND name = ?`, userID, name,
	).Scan(&c.ID, &c.UserID, &c.Name, &description, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting category by name: %w", err)
	}
	c.Description = description.String
	return c, nil
}

// ListCategories returns all categories of a user with their item counts.
func ListCategories(ctx context.Context, q Querier, userID int64) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT c.id, c.user_id, c.name, c.description, c.created_at,
		        COUNT(i.id) AS item_count
		 FROM categories c
		 LEFT JOIN items i ON i.category_id = c.id
		 WHERE c.user_id = ?
		 GROUP BY c.id
		 ORDER BY c.name`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		var description sql.NullString
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &description, &c.CreatedAt, &c.ItemCount); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		c.Description = description.String
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory updates a category's name and description.
func UpdateCategory(ctx context.Context, q Querier, id, userID int64, name, description string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ? WHERE id = ? AND user_id = ?`,
		name, description, id, userID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("renaming category to %q: %w", name, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("updating category %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteCategory deletes a category. Categories that still have items
// cannot be deleted.
func DeleteCategory(ctx context.Context, q Querier, id, userID int64) error {
	var items int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE category_id = ?`, id,
	).Scan(&items)
	if err != nil {
		return fmt.Errorf("counting category items: %w", err)
	}
	if items > 0 {
		return fmt.Errorf("deleting category %d: %w", id, ErrConflict)
	}

	result, err := q.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting category %d: %w", id, ErrNotFound)
	}
	return nil
}
