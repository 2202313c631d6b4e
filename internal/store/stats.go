package store

import (
	"context"
	"fmt"
	"time"

	"github.com/erazemk/omarica/internal/model"
)

// sqliteTime is the format CURRENT_TIMESTAMP writes into DATETIME columns.
const sqliteTime = "2006-01-02 15:04:05"

var monthNames = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// GetStats computes the dashboard aggregation for a user as of now:
// current totals, totals excluding records created today, monthly item
// quantities for now's calendar year, and per-locker quantity distribution.
func GetStats(ctx context.Context, q Querier, userID int64, now time.Time) (*model.Stats, error) {
	stats := &model.Stats{}

	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		UTC().Format(sqliteTime)

	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(CASE WHEN created_at < ? THEN 1 END)
		 FROM lockers WHERE user_id = ?`, startOfToday, userID,
	).Scan(&stats.TotalNow, &stats.TotalYesterday)
	if err != nil {
		return nil, fmt.Errorf("counting lockers: %w", err)
	}

	err = q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0),
		        COALESCE(SUM(CASE WHEN created_at < ? THEN quantity END), 0)
		 FROM items WHERE user_id = ?`, startOfToday, userID,
	).Scan(&stats.TotalItemsNow, &stats.TotalItemsYesterday)
	if err != nil {
		return nil, fmt.Errorf("summing item quantities: %w", err)
	}

	err = q.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(CASE WHEN created_at < ? THEN 1 END)
		 FROM categories WHERE user_id = ?`, startOfToday, userID,
	).Scan(&stats.TotalCategoriesNow, &stats.TotalCategoriesYesterday)
	if err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}

	monthly, err := itemsMonthly(ctx, q, userID, now.Year())
	if err != nil {
		return nil, err
	}
	stats.ItemsMonthly = monthly

	distribution, err := lockerDistribution(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	stats.LockerDistribution = distribution

	return stats, nil
}

// itemsMonthly sums item quantities by creation month within year. Always
// returns twelve buckets, January through December.
func itemsMonthly(ctx context.Context, q Querier, userID int64, year int) ([]model.MonthlyBucket, error) {
	buckets := make([]model.MonthlyBucket, 12)
	for i := range buckets {
		buckets[i].Name = monthNames[i]
	}

	rows, err := q.QueryContext(ctx,
		`SELECT CAST(strftime('%m', created_at) AS INTEGER), COALESCE(SUM(quantity), 0)
		 FROM items
		 WHERE user_id = ? AND strftime('%Y', created_at) = ?
		 GROUP BY 1`, userID, fmt.Sprintf("%04d", year),
	)
	if err != nil {
		return nil, fmt.Errorf("summing monthly items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var month, total int
		if err := rows.Scan(&month, &total); err != nil {
			return nil, fmt.Errorf("scanning monthly bucket: %w", err)
		}
		if month >= 1 && month <= 12 {
			buckets[month-1].Value = total
		}
	}
	return buckets, rows.Err()
}

// lockerDistribution sums item quantities per locker across all of a
// user's lockers, including empty ones.
func lockerDistribution(ctx context.Context, q Querier, userID int64) ([]model.LockerUsage, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT l.id, l.code, l.name, COALESCE(SUM(i.quantity), 0)
		 FROM lockers l
		 LEFT JOIN items i ON i.locker_id = l.id
		 WHERE l.user_id = ?
		 GROUP BY l.id
		 ORDER BY l.code`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("summing locker distribution: %w", err)
	}
	defer rows.Close()

	var usage []model.LockerUsage
	for rows.Next() {
		var u model.LockerUsage
		if err := rows.Scan(&u.LockerID, &u.Code, &u.Name, &u.Value); err != nil {
			return nil, fmt.Errorf("scanning locker usage: %w", err)
		}
		u.Label = u.Code + " " + u.Name
		usage = append(usage, u)
	}
	return usage, rows.Err()
}
