package context

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"studioshell/pkg/studiotypes"
)

func listingItem(id, label string) studiotypes.WorkItem {
	return studiotypes.WorkItem{Bucket: studiotypes.BucketListings, ID: id, Label: label}
}

func TestNewRecencyCache(t *testing.T) {
	tests := []struct {
		name        string
		maxSize     int
		expectedMax int
	}{
		{
			name:        "positive max size",
			maxSize:     25,
			expectedMax: 25,
		},
		{
			name:        "zero max size uses default",
			maxSize:     0,
			expectedMax: DefaultRecentWorksCap,
		},
		{
			name:        "negative max size uses default",
			maxSize:     -1,
			expectedMax: DefaultRecentWorksCap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewRecencyCache(tt.maxSize)

			assert.NotNil(t, cache)
			assert.Equal(t, tt.expectedMax, cache.Cap())
			assert.Equal(t, 0, cache.Len())
		})
	}
}

func TestRecencyCache_PromoteOrdersMostRecentFirst(t *testing.T) {
	cache := NewRecencyCache(10)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cache.Promote(listingItem("a", "Alpha"), base)
	cache.Promote(listingItem("b", "Beta"), base.Add(time.Second))
	cache.Promote(listingItem("c", "Gamma"), base.Add(2*time.Second))

	entries := cache.Entries()
	assert.Len(t, entries, 3)
	assert.Equal(t, "c", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)
	assert.Equal(t, "a", entries[2].ID)

	// Re-promoting moves an entry back to the front without duplicating it.
	cache.Promote(listingItem("a", "Alpha"), base.Add(3*time.Second))
	entries = cache.Entries()
	assert.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].ID)
}

func TestRecencyCache_DeduplicatesByBucketAndID(t *testing.T) {
	cache := NewRecencyCache(10)
	now := time.Now()

	// Same id in different buckets is two distinct entries.
	cache.Promote(studiotypes.WorkItem{Bucket: studiotypes.BucketListings, ID: "42", Label: "Listing"}, now)
	cache.Promote(studiotypes.WorkItem{Bucket: studiotypes.BucketBrandAssets, ID: "42", Label: "Logo"}, now)
	assert.Equal(t, 2, cache.Len())

	// Same (bucket, id) collapses to one.
	cache.Promote(studiotypes.WorkItem{Bucket: studiotypes.BucketListings, ID: "42", Label: "Listing"}, now)
	assert.Equal(t, 2, cache.Len())
}

func TestRecencyCache_PromoteReplacesStaleFields(t *testing.T) {
	cache := NewRecencyCache(10)
	now := time.Now()

	cache.Promote(listingItem("a", "Old label"), now)
	cache.Promote(listingItem("a", "New label"), now.Add(time.Second))

	entry, found := cache.Get("listings/a")
	assert.True(t, found)
	assert.Equal(t, "New label", entry.Label)
	assert.Equal(t, 1, cache.Len())
}

func TestRecencyCache_EvictsOldestAtCapacity(t *testing.T) {
	cache := NewRecencyCache(3)
	base := time.Now()

	for i := 0; i < 5; i++ {
		cache.Promote(listingItem(fmt.Sprintf("item-%d", i), "Item"), base.Add(time.Duration(i)*time.Second))
	}

	assert.Equal(t, 3, cache.Len())

	_, found := cache.Get("listings/item-0")
	assert.False(t, found, "oldest entry should be evicted")
	_, found = cache.Get("listings/item-1")
	assert.False(t, found)
	_, found = cache.Get("listings/item-4")
	assert.True(t, found)
}

func TestRecencyCache_ResizeEvictsDownToNewCap(t *testing.T) {
	cache := NewRecencyCache(10)
	base := time.Now()

	for i := 0; i < 6; i++ {
		cache.Promote(listingItem(fmt.Sprintf("item-%d", i), "Item"), base.Add(time.Duration(i)*time.Second))
	}

	cache.Resize(2)
	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, 2, cache.Cap())

	entries := cache.Entries()
	assert.Equal(t, "item-5", entries[0].ID)
	assert.Equal(t, "item-4", entries[1].ID)
}

func TestRecencyCache_Clear(t *testing.T) {
	cache := NewRecencyCache(5)
	cache.Promote(listingItem("a", "Alpha"), time.Now())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
	assert.Empty(t, cache.Entries())
}
