package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"

	"github.com/erazemk/omarica/internal/model"
)

// RandomCode produces a random locker code: one uppercase letter followed
// by three digits.
func RandomCode() (string, error) {
	letter, err := rand.Int(rand.Reader, big.NewInt(26))
	if err != nil {
		return "", fmt.Errorf("generating code letter: %w", err)
	}
	number, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return "", fmt.Errorf("generating code number: %w", err)
	}
	return fmt.Sprintf("%c%03d", 'A'+byte(letter.Int64()), number.Int64()), nil
}

// CodeInUse reports whether any locker of any user holds the given code.
// Codes are a global namespace, not per-user.
func CodeInUse(ctx context.Context, q Querier, code string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lockers WHERE code = ?`, code,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking code %q: %w", code, err)
	}
	return count > 0, nil
}

// GenerateCode produces a locker code that is unused at the moment of
// generation. Collisions are rare at expected data volumes, so there is no
// retry cap here; concurrent creations racing on the same code are caught
// by the UNIQUE constraint on insert.
func GenerateCode(ctx context.Context, q Querier) (string, error) {
	for {
		code, err := RandomCode()
		if err != nil {
			return "", err
		}
		used, err := CodeInUse(ctx, q, code)
		if err != nil {
			return "", err
		}
		if !used {
			return code, nil
		}
	}
}

// CreateLocker creates a new locker with the given code and QR image.
func CreateLocker(ctx context.Context, q Querier, userID int64, code, name, description, qrKey string, qrPNG []byte) (*model.Locker, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO lockers (user_id, code, name, description, qr_key, qr_png) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, code, name, description, qrKey, qrPNG,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating locker %q: %w", code, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("creating locker: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting locker id: %w", err)
	}

	return GetLocker(ctx, q, id)
}

// GetLocker returns a locker by ID.
func GetLocker(ctx context.Context, q Querier, id int64) (*model.Locker, error) {
	l := &model.Locker{}
	var description sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, user_id, code, name, description, qr_key, created_at, updated_at
		 FROM lockers WHERE id = ?`, id,
	).Scan(&l.ID, &l.UserID, &l.Code, &l.Name, &description, &l.QRKey, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting locker: %w", err)
	}
	l.Description = description.String
	l.QRCodeURL = model.QRCodePath(l.QRKey)
	return l, nil
}

// GetLockerByCode returns a locker by its code, regardless of owner.
func GetLockerByCode(ctx context.Context, q Querier, code string) (*model.Locker, error) {
	l := &model.Locker{}
	var description sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, user_id, code, name, description, qr_key, created_at, updated_at
		 FROM lockers WHERE code = ?`, code,
	).Scan(&l.ID, &l.UserID, &l.Code, &l.Name, &description, &l.QRKey, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting locker by code: %w", err)
	}
	l.Description = description.String
	l.QRCodeURL = model.QRCodePath(l.QRKey)
	return l, nil
}

// ListLockers returns all lockers of a user with their item counts.
func ListLockers(ctx context.Context, q Querier, userID int64) ([]model.Locker, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT l.id, l.user_id, l.code, l.name, l.description, l.qr_key, l.created_at, l.updated_at,
		        COUNT(i.id) AS item_count
		 FROM lockers l
		 LEFT JOIN items i ON i.locker_id = l.id
		 WHERE l.user_id = ?
		 GROUP BY l.id
		 ORDER BY l.code`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing lockers: %w", err)
	}
	defer rows.Close()

	var lockers []model.Locker
	for rows.Next() {
		var l model.Locker
		var description sql.NullString
		if err := rows.Scan(&l.ID, &l.UserID, &l.Code, &l.Name, &description, &l.QRKey, &l.CreatedAt, &l.UpdatedAt, &l.ItemCount); err != nil {
			return nil, fmt.Errorf("scanning locker: %w", err)
		}
		l.Description = description.String
		l.QRCodeURL = model.QRCodePath(l.QRKey)
		lockers = append(lockers, l)
	}
	return lockers, rows.Err()
}

// UpdateLocker updates a locker's name and description. The code is
// immutable after creation.
func UpdateLocker(ctx context.Context, q Querier, id, userID int64, name, description string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE lockers SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		name, description, id, userID,
	)
	if err != nil {
		return fmt.Errorf("updating locker: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("updating locker %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetQRImage returns the QR PNG stored under the given key.
func GetQRImage(ctx context.Context, q Querier, key string) ([]byte, error) {
	var png []byte
	err := q.QueryRowContext(ctx,
		`SELECT qr_png FROM lockers WHERE qr_key = ?`, key,
	).Scan(&png)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting QR image: %w", err)
	}
	return png, nil
}
