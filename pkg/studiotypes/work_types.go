package studiotypes

import "time"

// WorkBucket is the category a work item belongs to.
type WorkBucket string

// Work buckets understood by the studio backend.
const (
	BucketBrandAssets  WorkBucket = "brand_assets"
	BucketListings     WorkBucket = "listings"
	BucketTransactions WorkBucket = "transactions"
)

// Valid reports whether the bucket is one the backend understands.
func (b WorkBucket) Valid() bool {
	switch b {
	case BucketBrandAssets, BucketListings, BucketTransactions:
		return true
	}
	return false
}

// WorkItem is a saved piece of seller work. Timestamps are backend-reported
// ISO strings; they may be empty for items the backend never stamped.
type WorkItem struct {
	Bucket    WorkBucket `json:"bucket"`
	ID        string     `json:"work_id"`
	Label     string     `json:"label"`
	Subtitle  string     `json:"subtitle,omitempty"`
	CreatedAt string     `json:"created_at,omitempty"`
	UpdatedAt string     `json:"updated_at,omitempty"`
}

// Key returns the identity of a work item: the same id in different buckets
// is a different item.
func (w WorkItem) Key() string {
	return string(w.Bucket) + "/" + w.ID
}

// RecentWorkEntry is a work item as held in the recency cache, with the local
// time it was last attached or created.
type RecentWorkEntry struct {
	WorkItem
	LastUsed time.Time `json:"last_used"`
}

// ActivityTime returns the entry's most recent activity: the backend's
// updated_at, else created_at, else the local last-used time.
func (e RecentWorkEntry) ActivityTime() time.Time {
	if ts, ok := parseISOTime(e.UpdatedAt); ok {
		return ts
	}
	if ts, ok := parseISOTime(e.CreatedAt); ok {
		return ts
	}
	return e.LastUsed
}

func parseISOTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
