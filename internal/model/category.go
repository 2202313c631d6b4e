package model

import "time"

// Category is a user-defined grouping label for items. Names are unique
// per owning user, compared case-insensitively.
type Category struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// Joined fields (not always populated).
	ItemCount int `json:"item_count,omitempty"`
}
