package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/omarica/internal/db"
)

func TestCategoryNameCaseInsensitive(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "alice")
	category := createTestCategory(t, database, user.ID, "Electronics")

	_, err := CreateCategory(ctx, database, user.ID, "ELECTRONICS", "")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for case-variant duplicate, got %v", err)
	}

	got, err := GetCategoryByName(ctx, database, user.ID, "electronics")
	if err != nil {
		t.Fatalf("GetCategoryByName: %v", err)
	}
	if got == nil || got.ID != category.ID {
		t.Error("expected case-insensitive lookup to find the category")
	}
}

func TestCategoryNamesPerUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, database, "alice")
	bob := createTestUser(t, database, "bob")
	createTestCategory(t, database, alice.ID, "Tools")

	// Another user may reuse the name.
	if _, err := CreateCategory(ctx, database, bob.ID, "Tools", ""); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	got, _ := GetCategoryByName(ctx, database, alice.ID, "Tools")
	if got == nil || got.UserID != alice.ID {
		t.Error("expected lookup scoped to the owning user")
	}
}

func TestDeleteCategoryWithItemsRefused(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "alice")
	category := createTestCategory(t, database, user.ID, "Electronics")
	locker := createTestLocker(t, database, user.ID, "A001", "Shelf")
	CreateItem(ctx, database, user.ID, category.ID, locker.ID, "Cable", 1, "")

	if err := DeleteCategory(ctx, database, category.ID, user.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	empty := createTestCategory(t, database, user.ID, "Empty")
	if err := DeleteCategory(ctx, database, empty.ID, user.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	if err := DeleteCategory(ctx, database, empty.ID, user.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestListCategoriesItemCounts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "alice")
	electronics := createTestCategory(t, database, user.ID, "Electronics")
	createTestCategory(t, database, user.ID, "Tools")
	locker := createTestLocker(t, database, user.ID, "A001", "Shelf")
	CreateItem(ctx, database, user.ID, electronics.ID, locker.ID, "Cable", 3, "")

	categories, err := ListCategories(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Name != "Electronics" || categories[0].ItemCount != 1 {
		t.Errorf("expected Electronics with 1 item, got %q with %d", categories[0].Name, categories[0].ItemCount)
	}
}
