package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: QR images were originally addressed by locker code, which
	// leaked codes in image URLs. Backfill random keys on rows from before
	// the qr_key column and enforce uniqueness.
	`UPDATE lockers SET qr_key = lower(hex(randomblob(16))) WHERE qr_key = ''`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_lockers_qr_key ON lockers(qr_key)`,
}

// Migrate runs the database schema migrations.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
