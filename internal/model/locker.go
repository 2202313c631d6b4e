package model

import (
	"regexp"
	"time"
)

// Locker represents a physical storage unit identified by a unique code.
// The code is immutable after creation and globally unique across users.
type Locker struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	QRKey       string    `json:"-"`
	QRCodeURL   string    `json:"qr_code_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	ItemCount int `json:"item_count,omitempty"`
}

// codePattern is the locker code contract: one uppercase letter plus
// exactly three digits.
var codePattern = regexp.MustCompile(`^[A-Z][0-9]{3}$`)

// ValidCode reports whether code matches the locker code format.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// QRCodePath returns the serving path for the QR image stored under key.
func QRCodePath(key string) string {
	return "/api/qr/" + key
}
