package model

// Stats is the dashboard aggregation: current totals, totals as of the
// start of today (records created today excluded), monthly item-quantity
// buckets for the current year, and per-locker quantity distribution.
type Stats struct {
	TotalNow                 int             `json:"totalNow"`
	TotalYesterday           int             `json:"totalYesterday"`
	TotalItemsNow            int             `json:"totalItemsNow"`
	TotalItemsYesterday      int             `json:"totalItemsYesterday"`
	TotalCategoriesNow       int             `json:"totalCategoriesNow"`
	TotalCategoriesYesterday int             `json:"totalCategoriesYesterday"`
	ItemsMonthly             []MonthlyBucket `json:"itemsMonthly"`
	LockerDistribution       []LockerUsage   `json:"lockerDistribution"`
}

// MonthlyBucket is one month's summed item quantity.
type MonthlyBucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// LockerUsage is the summed item quantity held by one locker.
type LockerUsage struct {
	LockerID int64  `json:"lockerId"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Label    string `json:"label"`
	Value    int    `json:"value"`
}
