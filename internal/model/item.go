package model

import "time"

// Item is an inventory record with a quantity, belonging to exactly one
// category and one locker owned by the same user.
type Item struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	CategoryID  int64     `json:"category_id"`
	LockerID    int64     `json:"locker_id"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	CategoryName string `json:"category_name,omitempty"`
	LockerCode   string `json:"locker_code,omitempty"`
	LockerName   string `json:"locker_name,omitempty"`
}
