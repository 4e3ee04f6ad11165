// Package context provides work context operations for StudioShell.
// This file implements the active work slot and its recency cache: at most one
// work item is attached to the session, and every attach or create promotes the
// item into a bounded MRU cache.
package context

import (
	"time"

	"studioshell/internal/testutils"
	"studioshell/pkg/studiotypes"
)

// ActiveWork returns the currently attached work item, if any.
func (c *StudioContext) ActiveWork() (studiotypes.WorkItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.activeWork == nil {
		return studiotypes.WorkItem{}, false
	}
	return *c.activeWork, true
}

// SetActiveWork attaches item as the session's work context, replacing any
// prior item atomically. No consumer ever observes two attached items.
func (c *StudioContext) SetActiveWork(item studiotypes.WorkItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeWork = &item
}

// ClearActiveWork detaches the current work item. The recency cache keeps its
// entry.
func (c *StudioContext) ClearActiveWork() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeWork = nil
}

// PromoteRecentWork moves item to the front of the recency cache, inserting it
// if absent. Entries deduplicate by (bucket, id); a promote with a changed
// label replaces the stale entry.
func (c *StudioContext) PromoteRecentWork(item studiotypes.WorkItem) {
	now := testutils.GetCurrentTime(c)
	c.recent.Promote(item, now)
}

// PromoteRecentWorkAt is PromoteRecentWork with an explicit last-used time.
func (c *StudioContext) PromoteRecentWorkAt(item studiotypes.WorkItem, lastUsed time.Time) {
	c.recent.Promote(item, lastUsed)
}

// RecentWorks returns the cached work entries in most-recently-used order.
func (c *StudioContext) RecentWorks() []studiotypes.RecentWorkEntry {
	return c.recent.Entries()
}

// RecentWorkCount returns the number of cached work entries.
func (c *StudioContext) RecentWorkCount() int {
	return c.recent.Len()
}

// SetRecentWorksCap resizes the recency cache bound.
func (c *StudioContext) SetRecentWorksCap(n int) {
	c.recent.Resize(n)
}

// AuthToken returns the minted bearer token when one is present and unexpired.
func (c *StudioContext) AuthToken() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == "" {
		return "", false
	}
	if !c.tokenExpiry.IsZero() && !time.Now().Before(c.tokenExpiry) {
		return "", false
	}
	return c.token, true
}

// SetAuthToken caches a minted token and its expiry in volatile memory.
func (c *StudioContext) SetAuthToken(token string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.tokenExpiry = expiresAt
}

// ClearAuthToken drops the cached token.
func (c *StudioContext) ClearAuthToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.tokenExpiry = time.Time{}
}

// IdentityUser returns the user identifier accepted from the host handshake.
func (c *StudioContext) IdentityUser() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identityUser
}

// SetIdentityUser records the accepted user identifier.
func (c *StudioContext) SetIdentityUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identityUser = userID
}
