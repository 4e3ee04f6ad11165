package studiotypes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkBucket_Valid(t *testing.T) {
	assert.True(t, BucketBrandAssets.Valid())
	assert.True(t, BucketListings.Valid())
	assert.True(t, BucketTransactions.Valid())
	assert.False(t, WorkBucket("sculptures").Valid())
	assert.False(t, WorkBucket("").Valid())
}

func TestWorkItem_Key(t *testing.T) {
	listing := WorkItem{Bucket: BucketListings, ID: "42"}
	asset := WorkItem{Bucket: BucketBrandAssets, ID: "42"}

	assert.Equal(t, "listings/42", listing.Key())
	assert.NotEqual(t, listing.Key(), asset.Key(), "same id in different buckets is a different item")
}

func TestRecentWorkEntry_ActivityTime(t *testing.T) {
	lastUsed := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		entry    RecentWorkEntry
		expected time.Time
	}{
		{
			name: "updated_at wins",
			entry: RecentWorkEntry{
				WorkItem: WorkItem{CreatedAt: "2025-06-01T09:00:00Z", UpdatedAt: "2025-06-01T10:00:00Z"},
				LastUsed: lastUsed,
			},
			expected: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "created_at when no updated_at",
			entry: RecentWorkEntry{
				WorkItem: WorkItem{CreatedAt: "2025-06-01T09:00:00Z"},
				LastUsed: lastUsed,
			},
			expected: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "last used when backend never stamped",
			entry:    RecentWorkEntry{WorkItem: WorkItem{}, LastUsed: lastUsed},
			expected: lastUsed,
		},
		{
			name: "malformed timestamps fall through",
			entry: RecentWorkEntry{
				WorkItem: WorkItem{CreatedAt: "yesterday", UpdatedAt: "not a time"},
				LastUsed: lastUsed,
			},
			expected: lastUsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.entry.ActivityTime().Equal(tt.expected))
		})
	}
}
