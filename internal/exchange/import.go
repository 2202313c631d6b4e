package exchange

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/omarica/internal/db"
	"github.com/erazemk/omarica/internal/model"
	"github.com/erazemk/omarica/internal/qr"
	"github.com/erazemk/omarica/internal/store"
)

// codeRetryCap bounds code regeneration attempts during import before the
// timestamp fallback kicks in.
const codeRetryCap = 1000

// TxTimeout is the ceiling on the transactional merge phase. An import
// that exceeds it is rolled back completely and may be retried.
const TxTimeout = 15 * time.Second

// ErrQREncoding marks an import aborted because a QR image could not be
// generated. It always fires before any database write.
var ErrQREncoding = errors.New("qr encoding failed")

// ErrInvalidData marks an import rejected because the document itself is
// malformed. It always fires before any database write.
var ErrInvalidData = errors.New("invalid import data")

// preparedLocker is an incoming locker after pre-transaction
// reconciliation: its effective code and pre-generated QR image.
type preparedLocker struct {
	record model.LockerRecord
	code   string
	qrKey  string
	qrPNG  []byte
}

// Import merges an export document's data into the target user's account.
//
// Phase 1 runs outside any transaction: every incoming locker gets an
// effective code (kept when globally unused, regenerated otherwise) and a
// QR image, so no lock is held during image generation. Phase 2 merges
// everything in a single transaction bounded by TxTimeout: categories are
// reused by name or created, lockers are always created anew (codes are
// locker identity; same-named lockers are never merged), and items are
// quantity-merged into existing rows with the same name, category and
// locker. Items whose category or locker cannot be resolved inside the
// document are skipped and counted, not failed.
func Import(ctx context.Context, database *sql.DB, userID int64, data model.ExchangeData) (*model.ImportSummary, error) {
	if err := validateData(data); err != nil {
		return nil, err
	}

	prepared, codeChanges, err := prepareLockers(ctx, database, data.Lockers)
	if err != nil {
		return nil, err
	}

	summary := &model.ImportSummary{CodeChanges: codeChanges}

	err = db.InTransaction(ctx, database, TxTimeout, func(ctx context.Context, tx *sql.Tx) error {
		categoryIDs, err := mergeCategories(ctx, tx, userID, data.Categories, summary)
		if err != nil {
			return err
		}

		lockerIDs, err := createLockers(ctx, tx, userID, prepared, summary)
		if err != nil {
			return err
		}

		return mergeItems(ctx, tx, userID, data.Items, categoryIDs, lockerIDs, summary)
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// validateData rejects malformed documents before anything is written.
func validateData(data model.ExchangeData) error {
	for _, rec := range data.Lockers {
		if rec.Name == "" {
			return fmt.Errorf("%w: locker with empty name", ErrInvalidData)
		}
	}
	for _, rec := range data.Items {
		if rec.Name == "" {
			return fmt.Errorf("%w: item with empty name", ErrInvalidData)
		}
		if rec.Quantity < 0 {
			return fmt.Errorf("%w: item %q has negative quantity %d", ErrInvalidData, rec.Name, rec.Quantity)
		}
	}
	return nil
}

// prepareLockers resolves effective codes and renders QR images for every
// incoming locker. Returns the prepared lockers and the original-to-new
// code mapping for lockers whose code had to change.
func prepareLockers(ctx context.Context, q store.Querier, lockers []model.LockerRecord) ([]preparedLocker, map[string]string, error) {
	prepared := make([]preparedLocker, 0, len(lockers))
	codeChanges := make(map[string]string)

	// Codes picked for earlier lockers in the same document are not in the
	// store yet, so track them separately.
	reserved := make(map[string]bool)

	for _, rec := range lockers {
		code, err := effectiveCode(ctx, q, rec.Code, reserved)
		if err != nil {
			return nil, nil, err
		}
		reserved[code] = true
		if code != rec.Code && rec.Code != "" {
			codeChanges[rec.Code] = code
		}

		png, err := qr.Encode(code)
		if err != nil {
			return nil, nil, fmt.Errorf("%w for locker %q: %v", ErrQREncoding, rec.Name, err)
		}

		prepared = append(prepared, preparedLocker{
			record: rec,
			code:   code,
			qrKey:  uuid.NewString(),
			qrPNG:  png,
		})
	}

	return prepared, codeChanges, nil
}

// effectiveCode keeps the incoming code when it is well-formed and unused
// anywhere, otherwise regenerates up to codeRetryCap times and finally
// falls back to a timestamp-derived code (not guaranteed unique, an
// accepted limitation).
func effectiveCode(ctx context.Context, q store.Querier, code string, reserved map[string]bool) (string, error) {
	if model.ValidCode(code) && !reserved[code] {
		used, err := store.CodeInUse(ctx, q, code)
		if err != nil {
			return "", err
		}
		if !used {
			return code, nil
		}
	}

	for i := 0; i < codeRetryCap; i++ {
		candidate, err := store.RandomCode()
		if err != nil {
			return "", err
		}
		if reserved[candidate] {
			continue
		}
		used, err := store.CodeInUse(ctx, q, candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}

	return fallbackCode()
}

// fallbackCode builds a code from a random letter and the low-order four
// decimal digits of the current timestamp.
func fallbackCode() (string, error) {
	letter, err := rand.Int(rand.Reader, big.NewInt(26))
	if err != nil {
		return "", fmt.Errorf("generating fallback code: %w", err)
	}
	return fmt.Sprintf("%c%04d", 'A'+byte(letter.Int64()), time.Now().UnixMilli()%10000), nil
}

// mergeCategories reuses the target user's categories by name and creates
// the rest. Returns a name-to-id map for item resolution.
func mergeCategories(ctx context.Context, tx *sql.Tx, userID int64, categories []model.CategoryRecord, summary *model.ImportSummary) (map[string]int64, error) {
	ids := make(map[string]int64, len(categories))

	for _, rec := range categories {
		if rec.Name == "" {
			continue
		}

		existing, err := store.GetCategoryByName(ctx, tx, userID, rec.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			ids[categoryKey(rec.Name)] = existing.ID
			continue
		}

		created, err := store.CreateCategory(ctx, tx, userID, rec.Name, "")
		if err != nil {
			return nil, err
		}
		ids[categoryKey(rec.Name)] = created.ID
		summary.CategoriesCreated++
	}

	return ids, nil
}

// createLockers inserts a new locker row for every prepared locker.
// Incoming lockers are never merged into existing ones, even when a
// same-named locker exists: codes are the identity key, names are not.
// Returns an original-code-to-id map for item resolution.
func createLockers(ctx context.Context, tx *sql.Tx, userID int64, prepared []preparedLocker, summary *model.ImportSummary) (map[string]int64, error) {
	ids := make(map[string]int64, len(prepared))

	for _, p := range prepared {
		locker, err := store.CreateLocker(ctx, tx, userID, p.code, p.record.Name, p.record.Description, p.qrKey, p.qrPNG)
		if err != nil {
			return nil, err
		}
		// Items reference lockers by the code from the document, so key
		// by the original code when one was present.
		key := p.record.Code
		if key == "" {
			key = p.code
		}
		ids[key] = locker.ID
		summary.LockersCreated++
	}

	return ids, nil
}

// mergeItems resolves each incoming item through the document's own
// category and locker maps, merging quantities into existing rows with the
// same logical identity and creating the rest. Unresolvable items are
// skipped and counted.
func mergeItems(ctx context.Context, tx *sql.Tx, userID int64, items []model.ItemRecord, categoryIDs, lockerIDs map[string]int64, summary *model.ImportSummary) error {
	for _, rec := range items {
		categoryID, haveCategory := categoryIDs[categoryKey(rec.CategoryName)]
		lockerID, haveLocker := lockerIDs[rec.LockerCode]
		if !haveCategory || !haveLocker {
			summary.ItemsSkipped++
			continue
		}

		existing, err := store.FindItem(ctx, tx, userID, categoryID, lockerID, rec.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := store.AddItemQuantity(ctx, tx, existing.ID, rec.Quantity, rec.Description); err != nil {
				return err
			}
			summary.ItemsUpdated++
			continue
		}

		if _, err := store.CreateItem(ctx, tx, userID, categoryID, lockerID, rec.Name, rec.Quantity, rec.Description); err != nil {
			return err
		}
		summary.ItemsCreated++
	}

	return nil
}

// categoryKey normalizes category names for map lookups the same way the
// database compares them: COLLATE NOCASE folds ASCII letters only, so
// names differing in non-ASCII case stay distinct here too.
func categoryKey(name string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, name)
}
