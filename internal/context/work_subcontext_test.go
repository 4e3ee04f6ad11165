package context

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"studioshell/pkg/studiotypes"
)

func TestSetActiveWork_ReplacesWholesale(t *testing.T) {
	ctx := NewTestContext()

	_, attached := ctx.ActiveWork()
	assert.False(t, attached)

	ctx.SetActiveWork(studiotypes.WorkItem{Bucket: studiotypes.BucketListings, ID: "w1", Label: "First"})
	ctx.SetActiveWork(studiotypes.WorkItem{Bucket: studiotypes.BucketBrandAssets, ID: "w2", Label: "Second"})

	item, attached := ctx.ActiveWork()
	assert.True(t, attached)
	assert.Equal(t, "w2", item.ID)
	assert.Equal(t, studiotypes.BucketBrandAssets, item.Bucket)
	assert.Equal(t, "Second", item.Label)
}

func TestClearActiveWork_KeepsRecencyCache(t *testing.T) {
	ctx := NewTestContext()
	item := studiotypes.WorkItem{Bucket: studiotypes.BucketListings, ID: "w1", Label: "Listing"}

	ctx.SetActiveWork(item)
	ctx.PromoteRecentWork(item)
	ctx.ClearActiveWork()

	_, attached := ctx.ActiveWork()
	assert.False(t, attached)
	assert.Equal(t, 1, ctx.RecentWorkCount())
}

func TestAuthToken_ExpiryIsEnforced(t *testing.T) {
	ctx := NewTestContext()

	_, ok := ctx.AuthToken()
	assert.False(t, ok)

	ctx.SetAuthToken("live-token", time.Now().Add(time.Hour))
	token, ok := ctx.AuthToken()
	assert.True(t, ok)
	assert.Equal(t, "live-token", token)

	ctx.SetAuthToken("expired-token", time.Now().Add(-time.Minute))
	_, ok = ctx.AuthToken()
	assert.False(t, ok)

	// Zero expiry means no expiry.
	ctx.SetAuthToken("eternal-token", time.Time{})
	_, ok = ctx.AuthToken()
	assert.True(t, ok)

	ctx.ClearAuthToken()
	_, ok = ctx.AuthToken()
	assert.False(t, ok)
}

func TestIdentityUser(t *testing.T) {
	ctx := NewTestContext()

	assert.Equal(t, "", ctx.IdentityUser())
	ctx.SetIdentityUser("seller-123")
	assert.Equal(t, "seller-123", ctx.IdentityUser())
}

func TestPromoteRecentWork_MRUOrder(t *testing.T) {
	ctx := NewTestContext()

	a := studiotypes.WorkItem{Bucket: studiotypes.BucketListings, ID: "a", Label: "Alpha"}
	b := studiotypes.WorkItem{Bucket: studiotypes.BucketListings, ID: "b", Label: "Beta"}

	ctx.PromoteRecentWork(a)
	ctx.PromoteRecentWork(b)
	ctx.PromoteRecentWork(a)

	entries := ctx.RecentWorks()
	assert.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, "b", entries[1].ID)
}
