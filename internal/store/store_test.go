package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/omarica/internal/model"
)

// createTestUser inserts a user for tests that need an owner row.
func createTestUser(t *testing.T, database *sql.DB, username string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, username, "hash", "", model.RoleUser)
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return u
}

// createTestLocker inserts a locker with a placeholder QR image.
func createTestLocker(t *testing.T, database *sql.DB, userID int64, code, name string) *model.Locker {
	t.Helper()
	l, err := CreateLocker(context.Background(), database, userID, code, name, "", "qr-"+code, []byte("png"))
	if err != nil {
		t.Fatalf("creating test locker: %v", err)
	}
	return l
}

func createTestCategory(t *testing.T, database *sql.DB, userID int64, name string) *model.Category {
	t.Helper()
	c, err := CreateCategory(context.Background(), database, userID, name, "")
	if err != nil {
		t.Fatalf("creating test category: %v", err)
	}
	return c
}
