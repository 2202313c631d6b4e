// Package exchange implements the portable export/import pipeline: it
// turns a user's lockers, categories and items into an id-free JSON
// document and merges such documents back into an account, reconciling
// code and name collisions along the way.
package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/erazemk/omarica/internal/model"
	"github.com/erazemk/omarica/internal/store"
)

// Selection says which entity classes an export should include.
type Selection struct {
	Lockers    bool
	Categories bool
	Items      bool
}

// Export assembles an export document for a user.
//
// When items are selected, the locker and category arrays are widened to
// exactly the set referenced by the exported items, regardless of the
// other flags, so every item's categoryName and lockerCode resolves inside
// the document itself. Without items, lockers and categories are exported
// in full as requested.
func Export(ctx context.Context, q store.Querier, userID int64, sel Selection) (*model.ExportDocument, error) {
	doc := &model.ExportDocument{
		Version:    model.ExportVersion,
		ExportDate: time.Now().UTC(),
		ExportedBy: userID,
	}

	if sel.Items {
		items, err := store.ListItems(ctx, q, userID, store.ItemFilter{})
		if err != nil {
			return nil, fmt.Errorf("exporting items: %w", err)
		}

		lockerIDs := make(map[int64]bool)
		categoryIDs := make(map[int64]bool)
		for _, item := range items {
			lockerIDs[item.LockerID] = true
			categoryIDs[item.CategoryID] = true
			doc.Data.Items = append(doc.Data.Items, model.ItemRecord{
				Name:         item.Name,
				Quantity:     item.Quantity,
				Description:  item.Description,
				CategoryName: item.CategoryName,
				LockerCode:   item.LockerCode,
			})
		}

		lockers, categories, err := referencedSets(ctx, q, userID, lockerIDs, categoryIDs)
		if err != nil {
			return nil, err
		}
		doc.Data.Lockers = lockers
		doc.Data.Categories = categories
		return doc, nil
	}

	if sel.Lockers {
		lockers, err := store.ListLockers(ctx, q, userID)
		if err != nil {
			return nil, fmt.Errorf("exporting lockers: %w", err)
		}
		for _, l := range lockers {
			doc.Data.Lockers = append(doc.Data.Lockers, lockerRecord(l))
		}
	}

	if sel.Categories {
		categories, err := store.ListCategories(ctx, q, userID)
		if err != nil {
			return nil, fmt.Errorf("exporting categories: %w", err)
		}
		for _, c := range categories {
			doc.Data.Categories = append(doc.Data.Categories, model.CategoryRecord{Name: c.Name})
		}
	}

	return doc, nil
}

// referencedSets returns records for exactly the lockers and categories
// referenced by exported items.
func referencedSets(ctx context.Context, q store.Querier, userID int64, lockerIDs, categoryIDs map[int64]bool) ([]model.LockerRecord, []model.CategoryRecord, error) {
	var lockerRecords []model.LockerRecord
	lockers, err := store.ListLockers(ctx, q, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("exporting referenced lockers: %w", err)
	}
	for _, l := range lockers {
		if lockerIDs[l.ID] {
			lockerRecords = append(lockerRecords, lockerRecord(l))
		}
	}

	var categoryRecords []model.CategoryRecord
	categories, err := store.ListCategories(ctx, q, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("exporting referenced categories: %w", err)
	}
	for _, c := range categories {
		if categoryIDs[c.ID] {
			categoryRecords = append(categoryRecords, model.CategoryRecord{Name: c.Name})
		}
	}

	return lockerRecords, categoryRecords, nil
}

func lockerRecord(l model.Locker) model.LockerRecord {
	return model.LockerRecord{
		Code:        l.Code,
		Name:        l.Name,
		Description: l.Description,
		QRCodeURL:   l.QRCodeURL,
	}
}
