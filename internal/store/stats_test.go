package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/omarica/internal/db"
)

func TestGetStatsTotals(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	user := createTestUser(t, database, "alice")
	category := createTestCategory(t, database, user.ID, "Electronics")
	l1 := createTestLocker(t, database, user.ID, "A001", "Shelf 1")
	createTestLocker(t, database, user.ID, "B002", "Shelf 2")
	old, _ := CreateItem(ctx, database, user.ID, category.ID, l1.ID, "Cable", 3, "")
	CreateItem(ctx, database, user.ID, category.ID, l1.ID, "Mouse", 2, "")

	// Backdate one item so the "yesterday" figures differ from "now".
	yesterday := now.AddDate(0, 0, -1).UTC().Format(sqliteTime)
	if _, err := database.ExecContext(ctx,
		`UPDATE items SET created_at = ? WHERE id = ?`, yesterday, old.ID); err != nil {
		t.Fatalf("backdating item: %v", err)
	}

	stats, err := GetStats(ctx, database, user.ID, now)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}

	if stats.TotalNow != 2 {
		t.Errorf("expected 2 lockers now, got %d", stats.TotalNow)
	}
	if stats.TotalYesterday != 0 {
		t.Errorf("expected 0 lockers yesterday, got %d", stats.TotalYesterday)
	}
	if stats.TotalItemsNow != 5 {
		t.Errorf("expected item quantity 5 now, got %d", stats.TotalItemsNow)
	}
	if stats.TotalItemsYesterday != 3 {
		t.Errorf("expected item quantity 3 yesterday, got %d", stats.TotalItemsYesterday)
	}
	if stats.TotalCategoriesNow != 1 || stats.TotalCategoriesYesterday != 0 {
		t.Errorf("expected 1/0 categories, got %d/%d", stats.TotalCategoriesNow, stats.TotalCategoriesYesterday)
	}
}

func TestGetStatsMonthlyBuckets(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	user := createTestUser(t, database, "alice")
	category := createTestCategory(t, database, user.ID, "Electronics")
	locker := createTestLocker(t, database, user.ID, "A001", "Shelf")
	CreateItem(ctx, database, user.ID, category.ID, locker.ID, "Cable", 4, "")

	stats, err := GetStats(ctx, database, user.ID, now)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}

	if len(stats.ItemsMonthly) != 12 {
		t.Fatalf("expected 12 monthly buckets, got %d", len(stats.ItemsMonthly))
	}
	if stats.ItemsMonthly[0].Name != "Jan" || stats.ItemsMonthly[11].Name != "Dec" {
		t.Errorf("expected Jan..Dec bucket names, got %q..%q",
			stats.ItemsMonthly[0].Name, stats.ItemsMonthly[11].Name)
	}

	// CURRENT_TIMESTAMP writes UTC, so bucket by the UTC month.
	month := int(now.UTC().Month())
	if stats.ItemsMonthly[month-1].Value != 4 {
		t.Errorf("expected 4 in current month bucket, got %d", stats.ItemsMonthly[month-1].Value)
	}
	var total int
	for _, b := range stats.ItemsMonthly {
		total += b.Value
	}
	if total != 4 {
		t.Errorf("expected monthly totals to sum to 4, got %d", total)
	}
}

func TestGetStatsLockerDistribution(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "alice")
	category := createTestCategory(t, database, user.ID, "Electronics")
	l1 := createTestLocker(t, database, user.ID, "A001", "Shelf 1")
	createTestLocker(t, database, user.ID, "B002", "Shelf 2")
	CreateItem(ctx, database, user.ID, category.ID, l1.ID, "Cable", 3, "")
	CreateItem(ctx, database, user.ID, category.ID, l1.ID, "Mouse", 2, "")

	stats, err := GetStats(ctx, database, user.ID, time.Now())
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}

	if len(stats.LockerDistribution) != 2 {
		t.Fatalf("expected 2 lockers in distribution, got %d", len(stats.LockerDistribution))
	}
	first := stats.LockerDistribution[0]
	if first.Label != "A001 Shelf 1" || first.Value != 5 {
		t.Errorf("expected 'A001 Shelf 1' with 5, got %q with %d", first.Label, first.Value)
	}
	if stats.LockerDistribution[1].Value != 0 {
		t.Errorf("expected empty locker with 0, got %d", stats.LockerDistribution[1].Value)
	}
}
