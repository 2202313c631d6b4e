package exchange

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/erazemk/omarica/internal/db"
	"github.com/erazemk/omarica/internal/model"
	"github.com/erazemk/omarica/internal/store"
)

func newTestUser(t *testing.T, database *sql.DB) *model.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), database, "alice", "hash", "", model.RoleUser)
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return u
}

func TestImportCreatesEverything(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, database)

	data := model.ExchangeData{
		Lockers:    []model.LockerRecord{{Code: "A001", Name: "Shelf 1"}},
		Categories: []model.CategoryRecord{{Name: "Electronics"}},
		Items: []model.ItemRecord{
			{Name: "Cable", Quantity: 3, Description: "USB-C", CategoryName: "Electronics", LockerCode: "A001"},
		},
	}

	summary, err := Import(ctx, database, user.ID, data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.LockersCreated != 1 || summary.CategoriesCreated != 1 || summary.ItemsCreated != 1 {
		t.Errorf("expected 1/1/1 created, got %d/%d/%d",
			summary.LockersCreated, summary.CategoriesCreated, summary.ItemsCreated)
	}
	if len(summary.CodeChanges) != 0 {
		t.Errorf("expected no code changes, got %v", summary.CodeChanges)
	}

	locker, _ := store.GetLockerByCode(ctx, database, "A001")
	if locker == nil || locker.UserID != user.ID {
		t.Fatal("expected imported locker under A001")
	}
	png, _ := store.GetQRImage(ctx, database, locker.QRKey)
	if len(png) == 0 {
		t.Error("expected a QR image for the imported locker")
	}

	items, _ := store.ListItems(ctx, database, user.ID, store.ItemFilter{})
	if len(items) != 1 || items[0].Quantity != 3 {
		t.Fatalf("expected 1 item with quantity 3, got %v", items)
	}
}

func TestImportCodeCollisionGetsNewCode(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, database)

	// Occupy A001 before the import.
	if _, err := store.CreateLocker(ctx, database, user.ID, "A001", "Existing", "", "qr-existing", []byte("png")); err != nil {
		t.Fatalf("creating existing locker: %v", err)
	}

	data := model.ExchangeData{
		Lockers: []model.LockerRecord{{Code: "A001", Name: "Imported"}},
	}
	summary, err := Import(ctx, database, user.ID, data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	newCode, ok := summary.CodeChanges["A001"]
	if !ok || len(summary.CodeChanges) != 1 {
		t.Fatalf("expected exactly one code change for A001, got %v", summary.CodeChanges)
	}
	if newCode == "A001" {
		t.Fatal("expected a different code")
	}

	imported, _ := store.GetLockerByCode(ctx, database, newCode)
	if imported == nil || imported.Name != "Imported" {
		t.Errorf("expected imported locker under %q", newCode)
	}
	existing, _ := store.GetLockerByCode(ctx, database, "A001")
	if existing == nil || existing.Name != "Existing" {
		t.Error("expected existing locker untouched")
	}
}

func TestImportInDocumentCodeDuplicates(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, database)

	data := model.ExchangeData{
		Lockers: []model.LockerRecord{
			{Code: "A001", Name: "First"},
			{Code: "A001", Name: "Second"},
		},
	}
	summary, err := Import(ctx, database, user.ID, data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.LockersCreated != 2 {
		t.Errorf("expected 2 lockers created, got %d", summary.LockersCreated)
	}

	lockers, _ := store.ListLockers(ctx, database, user.ID)
	if len(lockers) != 2 {
		t.Fatalf("expected 2 lockers, got %d", len(lockers))
	}
	if lockers[0].Code == lockers[1].Code {
		t.Error("expected distinct codes for duplicated document codes")
	}
}

func TestImportReusesCategoriesByName(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, database)

	existing, _ := store.CreateCategory(ctx, database, user.ID, "Electronics", "")

	data := model.ExchangeData{
		Lockers:    []model.LockerRecord{{Code: "A001", Name: "Shelf"}},
		Categories: []model.CategoryRecord{{Name: "ELECTRONICS"}, {Name: "Tools"}},
		Items: []model.ItemRecord{
			{Name: "Cable", Quantity: 2, CategoryName: "electronics", LockerCode: "A001"},
		},
	}
	summary, err := Import(ctx, database, user.ID, data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.CategoriesCreated != 1 {
		t.Errorf("expected only Tools created, got %d", summary.CategoriesCreated)
	}

	items, _ := store.ListItems(ctx, database, user.ID, store.ItemFilter{})
	if len(items) != 1 || items[0].CategoryID != existing.ID {
		t.Errorf("expected item attached to existing category %d, got %v", existing.ID, items)
	}
}

func TestImportKeepsNonASCIICaseVariantsDistinct(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, database)

	// NOCASE folds ASCII only, so these are two different categories.
	data := model.ExchangeData{
		Lockers:    []model.LockerRecord{{Code: "A001", Name: "Shelf"}},
		Categories: []model.CategoryRecord{{Name: "Électronique"}, {Name: "éLECTRONIQUE"}},
		Items: []model.ItemRecord{
			{Name: "Cable", Quantity: 1, CategoryName: "Électronique", LockerCode: "A001"},
			{Name: "Mouse", Quantity: 1, CategoryName: "éLECTRONIQUE", LockerCode: "A001"},
		},
	}
	summary, err := Import(ctx, database, user.ID, data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.CategoriesCreated != 2 {
		t.Fatalf("expected 2 categories created, got %d", summary.CategoriesCreated)
	}

	upper, _ := store.GetCategoryByName(ctx, database, user.ID, "Électronique")
	lower, _ := store.GetCategoryByName(ctx, database, user.ID, "éLECTRONIQUE")
	if upper == nil || lower == nil || upper.ID == lower.ID {
		t.Fatal("expected two distinct category rows")
	}

	items, _ := store.ListItems(ctx, database, user.ID, store.ItemFilter{CategoryID: upper.ID})
	if len(items) != 1 || items[0].Name != "Cable" {
		t.Errorf("expected Cable under the first category, got %v", items)
	}
	items, _ = store.ListItems(ctx, database, user.ID, store.ItemFilter{CategoryID: lower.ID})
	if len(items) != 1 || items[0].Name != "Mouse" {
		t.Errorf("expected Mouse under the second category, got %v", items)
	}
}

func TestImportRejectsMalformedData(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, database)

	data := model.ExchangeData{
		Lockers:    []model.LockerRecord{{Code: "A001", Name: "Shelf"}},
		Categories: []model.CategoryRecord{{Name: "Electronics"}},
		Items: []model.ItemRecord{
			{Name: "Cable", Quantity: -3, CategoryName: "Electronics", LockerCode: "A001"},
		},
	}
	_, err := Import(ctx, database, user.ID, data)
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData for negative quantity, got %v", err)
	}

	// The document is rejected before anything is written.
	lockers, _ := store.ListLockers(ctx, database, user.ID)
	if len(lockers) != 0 {
		t.Errorf("expected no lockers after rejected import, got %d", len(lockers))
	}

	data.Items[0].Quantity = 3
	data.Items[0].Name = ""
	if _, err := Import(ctx, database, user.ID, data); !errors.Is(err, ErrInvalidData) {
		t.Errorf("expected ErrInvalidData for empty item name, got %v", err)
	}

	data.Items[0].Name = "Cable"
	data.Lockers[0].Name = ""
	if _, err := Import(ctx, database, user.ID, data); !errors.Is(err, ErrInvalidData) {
		t.Errorf("expected ErrInvalidData for empty locker name, got %v", err)
	}
}

func TestImportSkipsUnresolvableItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, database)

	data := model.ExchangeData{
		Lockers:    []model.LockerRecord{{Code: "A001", Name: "Shelf"}},
		Categories: []model.CategoryRecord{{Name: "Electronics"}},
		Items: []model.ItemRecord{
			{Name: "Cable", Quantity: 1, CategoryName: "Electronics", LockerCode: "A001"},
			{Name: "Ghost", Quantity: 1, CategoryName: "Missing", LockerCode: "A001"},
			{Name: "Orphan", Quantity: 1, CategoryName: "Electronics", LockerCode: "Z999"},
		},
	}
	summary, err := Import(ctx, database, user.ID, data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.ItemsCreated != 1 || summary.ItemsSkipped != 2 {
		t.Errorf("expected 1 created and 2 skipped, got %d/%d", summary.ItemsCreated, summary.ItemsSkipped)
	}

	items, _ := store.ListItems(ctx, database, user.ID, store.ItemFilter{})
	if len(items) != 1 || items[0].Name != "Cable" {
		t.Errorf("expected only Cable imported, got %v", items)
	}
}

func TestImportMergesItemQuantities(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, database)

	// Two records with the same logical identity: the first creates the
	// item, the second merges into it.
	data := model.ExchangeData{
		Lockers:    []model.LockerRecord{{Code: "A001", Name: "Shelf"}},
		Categories: []model.CategoryRecord{{Name: "Electronics"}},
		Items: []model.ItemRecord{
			{Name: "Cable", Quantity: 3, Description: "first", CategoryName: "Electronics", LockerCode: "A001"},
			{Name: "Cable", Quantity: 2, Description: "", CategoryName: "Electronics", LockerCode: "A001"},
		},
	}
	summary, err := Import(ctx, database, user.ID, data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.ItemsCreated != 1 || summary.ItemsUpdated != 1 {
		t.Errorf("expected 1 created and 1 updated, got %d/%d", summary.ItemsCreated, summary.ItemsUpdated)
	}

	items, _ := store.ListItems(ctx, database, user.ID, store.ItemFilter{})
	if len(items) != 1 {
		t.Fatalf("expected a single merged item, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Errorf("expected merged quantity 5, got %d", items[0].Quantity)
	}
	// An empty incoming description never clears an existing one.
	if items[0].Description != "first" {
		t.Errorf("expected description preserved, got %q", items[0].Description)
	}
}

func TestExportAll(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, database)

	category, _ := store.CreateCategory(ctx, database, user.ID, "Electronics", "")
	locker, _ := store.CreateLocker(ctx, database, user.ID, "A001", "Shelf 1", "", "qr-a001", []byte("png"))
	store.CreateItem(ctx, database, user.ID, category.ID, locker.ID, "Cable", 3, "USB-C")

	doc, err := Export(ctx, database, user.ID, Selection{Lockers: true, Categories: true, Items: true})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if doc.Version != model.ExportVersion {
		t.Errorf("expected version %q, got %q", model.ExportVersion, doc.Version)
	}
	if doc.ExportedBy != user.ID {
		t.Errorf("expected exportedBy %d, got %d", user.ID, doc.ExportedBy)
	}
	if len(doc.Data.Lockers) != 1 || doc.Data.Lockers[0].Code != "A001" {
		t.Errorf("expected locker A001, got %v", doc.Data.Lockers)
	}
	if len(doc.Data.Categories) != 1 || doc.Data.Categories[0].Name != "Electronics" {
		t.Errorf("expected Electronics category, got %v", doc.Data.Categories)
	}
	if len(doc.Data.Items) != 1 || doc.Data.Items[0].LockerCode != "A001" || doc.Data.Items[0].CategoryName != "Electronics" {
		t.Errorf("expected Cable referencing A001/Electronics, got %v", doc.Data.Items)
	}
}

func TestExportItemsWidensToReferencedSets(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, database)

	used, _ := store.CreateCategory(ctx, database, user.ID, "Electronics", "")
	store.CreateCategory(ctx, database, user.ID, "Unused", "")
	usedLocker, _ := store.CreateLocker(ctx, database, user.ID, "A001", "Shelf 1", "", "qr-a001", []byte("png"))
	store.CreateLocker(ctx, database, user.ID, "B002", "Shelf 2", "", "qr-b002", []byte("png"))
	store.CreateItem(ctx, database, user.ID, used.ID, usedLocker.ID, "Cable", 3, "")

	// Items selected alone still pull in their lockers and categories.
	doc, err := Export(ctx, database, user.ID, Selection{Items: true})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(doc.Data.Lockers) != 1 || doc.Data.Lockers[0].Code != "A001" {
		t.Errorf("expected only referenced locker A001, got %v", doc.Data.Lockers)
	}
	if len(doc.Data.Categories) != 1 || doc.Data.Categories[0].Name != "Electronics" {
		t.Errorf("expected only referenced category, got %v", doc.Data.Categories)
	}
}

func TestExportLockersOnly(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, database)

	store.CreateLocker(ctx, database, user.ID, "A001", "Shelf", "", "qr-a001", []byte("png"))
	store.CreateCategory(ctx, database, user.ID, "Electronics", "")

	doc, err := Export(ctx, database, user.ID, Selection{Lockers: true})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(doc.Data.Lockers) != 1 {
		t.Errorf("expected 1 locker, got %d", len(doc.Data.Lockers))
	}
	if len(doc.Data.Categories) != 0 || len(doc.Data.Items) != 0 {
		t.Error("expected no categories or items without their flags")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := newTestUser(t, database)

	category, _ := store.CreateCategory(ctx, database, user.ID, "Electronics", "")
	locker, _ := store.CreateLocker(ctx, database, user.ID, "A001", "Shelf 1", "", "qr-a001", []byte("png"))
	store.CreateItem(ctx, database, user.ID, category.ID, locker.ID, "Cable", 3, "")

	doc, err := Export(ctx, database, user.ID, Selection{Lockers: true, Categories: true, Items: true})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	// Re-importing into the same account duplicates the locker under a new
	// code, reuses the category, and creates the item in the new locker.
	summary, err := Import(ctx, database, user.ID, doc.Data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.CategoriesCreated != 0 {
		t.Errorf("expected category reused, got %d created", summary.CategoriesCreated)
	}
	if summary.LockersCreated != 1 {
		t.Errorf("expected 1 locker created, got %d", summary.LockersCreated)
	}
	newCode := summary.CodeChanges["A001"]
	if newCode == "" {
		t.Fatalf("expected a code change for A001, got %v", summary.CodeChanges)
	}

	lockers, _ := store.ListLockers(ctx, database, user.ID)
	if len(lockers) != 2 {
		t.Fatalf("expected 2 lockers after round trip, got %d", len(lockers))
	}
	duplicated, _ := store.GetLockerByCode(ctx, database, newCode)
	if duplicated == nil || duplicated.Name != "Shelf 1" {
		t.Error("expected duplicated locker to keep its name")
	}

	items, _ := store.ListItems(ctx, database, user.ID, store.ItemFilter{})
	if len(items) != 2 {
		t.Fatalf("expected 2 item rows after round trip, got %d", len(items))
	}
	var total int
	for _, item := range items {
		if item.Name != "Cable" {
			t.Errorf("unexpected item %q", item.Name)
		}
		total += item.Quantity
	}
	if total != 6 {
		t.Errorf("expected total quantity 6, got %d", total)
	}
}
