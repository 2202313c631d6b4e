package model

import "time"

// ExportVersion tags export documents so future format changes stay
// detectable on import.
const ExportVersion = "2.0"

// ExportDocument is the portable JSON representation of a user's lockers,
// categories and items. It is id-free: items reference their category and
// locker by name and code so the document can be re-imported into a
// different account or database without id collisions.
type ExportDocument struct {
	Version    string       `json:"version"`
	ExportDate time.Time    `json:"exportDate"`
	ExportedBy int64        `json:"exportedBy"`
	Data       ExchangeData `json:"data"`
}

// ExchangeData carries the entity arrays of an export document. The same
// shape is accepted by the import endpoint.
type ExchangeData struct {
	Lockers    []LockerRecord   `json:"lockers,omitempty"`
	Categories []CategoryRecord `json:"categories,omitempty"`
	Items      []ItemRecord     `json:"items,omitempty"`
}

// LockerRecord is a locker as it appears in an exchange document.
type LockerRecord struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	QRCodeURL   string `json:"qrCodeUrl,omitempty"`
}

// CategoryRecord is a category as it appears in an exchange document.
type CategoryRecord struct {
	Name string `json:"name"`
}

// ItemRecord is an item as it appears in an exchange document, denormalized
// to its category name and locker code.
type ItemRecord struct {
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	Description  string `json:"description,omitempty"`
	CategoryName string `json:"categoryName"`
	LockerCode   string `json:"lockerCode"`
}

// ImportSummary reports what an import did, including the mapping from
// original locker codes to the codes they received when a collision forced
// regeneration.
type ImportSummary struct {
	CategoriesCreated int               `json:"categoriesCreated"`
	LockersCreated    int               `json:"lockersCreated"`
	ItemsCreated      int               `json:"itemsCreated"`
	ItemsUpdated      int               `json:"itemsUpdated"`
	ItemsSkipped      int               `json:"itemsSkipped"`
	CodeChanges       map[string]string `json:"codeChanges"`
}
