package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/omarica/internal/model"
)

// CreateUser creates a new user.
func CreateUser(ctx context.Context, q Querier, username, passwordHash, displayName, role string) (*model.User, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, display_name, role) VALUES (?, ?, ?, ?)`,
		username, passwordHash, displayName, role,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating user %q: %w", username, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, q, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, q Querier, id int64) (*model.User, error) {
	u := &model.User{}
	var displayName, pictureMime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, username, password_hash, display_name, role, picture_mime, created_at, deleted_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &displayName, &u.Role, &pictureMime, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	u.DisplayName = displayName.String
	u.PictureMime = pictureMime.String
	return u, nil
}

// GetUserByUsername returns a user by username (including soft-deleted for auth checks).
func GetUserByUsername(ctx context.Context, q Querier, username string) (*model.User, error) {
	u := &model.User{}
	var displayName, pictureMime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, username, password_hash, display_name, role, picture_mime, created_at, deleted_at
		 FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &displayName, &u.Role, &pictureMime, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	u.DisplayName = displayName.String
	u.PictureMime = pictureMime.String
	return u, nil
}

// ListUsers returns all non-deleted users.
func ListUsers(ctx context.Context, q Querier) ([]model.User, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, username, password_hash, display_name, role, picture_mime, created_at, deleted_at
		 FROM users WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var displayName, pictureMime sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &displayName, &u.Role, &pictureMime, &u.CreatedAt, &u.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.DisplayName = displayName.String
		u.PictureMime = pictureMime.String
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser updates a user's display name and role.
func UpdateUser(ctx context.Context, q Querier, id int64, displayName, role string) error {
	// Demoting the last admin would leave the system without one.
	if role != model.RoleAdmin {
		u, err := GetUser(ctx, q, id)
		if err != nil {
			return err
		}
		if u != nil && u.Role == model.RoleAdmin {
			admins, err := CountAdmins(ctx, q)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}
	}

	_, err := q.ExecContext(ctx,
		`UPDATE users SET display_name = ?, role = ? WHERE id = ? AND deleted_at IS NULL`,
		displayName, role, id,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, q Querier, id int64, passwordHash string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// CountAdmins returns the number of active admin users.
func CountAdmins(ctx context.Context, q Querier) (int, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = ? AND deleted_at IS NULL`, model.RoleAdmin,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return count, nil
}

// DeleteUser soft-deletes a user. Deleting the last remaining admin is
// refused so the system never ends up without one.
func DeleteUser(ctx context.Context, q Querier, id int64) error {
	u, err := GetUser(ctx, q, id)
	if err != nil {
		return err
	}
	if u == nil || u.DeletedAt != nil {
		return fmt.Errorf("deleting user %d: %w", id, ErrNotFound)
	}

	if u.Role == model.RoleAdmin {
		admins, err := CountAdmins(ctx, q)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	_, err = q.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// SetUserPicture stores a user's profile picture.
func SetUserPicture(ctx context.Context, q Querier, id int64, picture []byte, mime string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE users SET picture = ?, picture_mime = ? WHERE id = ? AND deleted_at IS NULL`,
		picture, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting user picture: %w", err)
	}
	return nil
}

// GetUserPicture returns a user's profile picture data and MIME type.
func GetUserPicture(ctx context.Context, q Querier, id int64) ([]byte, string, error) {
	var picture []byte
	var mime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT picture, picture_mime FROM users WHERE id = ?`, id,
	).Scan(&picture, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting user picture: %w", err)
	}
	return picture, mime.String, nil
}
