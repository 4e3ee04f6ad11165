// Package services provides work item operations for StudioShell.
package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"studioshell/internal/logger"
	"studioshell/pkg/studiotypes"
)

// ErrNotSignedIn is the guard error for operations that need a minted token.
// Guarded operations refuse before issuing any HTTP call.
var ErrNotSignedIn = errors.New("not signed in")

// User-facing toast messages for work operations.
const (
	ToastNotSignedIn    = "Not signed in yet — connect your studio account to save work."
	ToastNotAvailable   = "Saving work is not available right now."
	ToastWorkDetached   = "Work detached. Your conversation keeps going without it."
	workBrowserPageSize = 10
)

// WorkService implements create/attach/switch/detach for the session's work
// context and the client-side work browser listing over the recency cache.
type WorkService struct {
	initialized bool
	ctx         studiotypes.Context

	// Visible cap for the work browser list. "Load more" only ever grows it.
	visibleMu  sync.Mutex
	visibleCap int

	// api is resolved from the registry; tests may set it directly.
	api *APIClientService
}

// NewWorkService creates a new WorkService instance.
func NewWorkService() *WorkService {
	return &WorkService{visibleCap: workBrowserPageSize}
}

// Name returns the service name "work" for registration.
func (w *WorkService) Name() string {
	return "work"
}

// Initialize sets up the WorkService for operation.
func (w *WorkService) Initialize(ctx studiotypes.Context) error {
	w.ctx = ctx
	w.initialized = true
	return nil
}

// Create persists a new work item through the backend, attaches it, and
// promotes it into the recency cache. Without a token or a configured
// endpoint it refuses up front: no credentials, no call.
func (w *WorkService) Create(bucket studiotypes.WorkBucket, label string, payload map[string]any) (*studiotypes.WorkItem, error) {
	if !w.initialized {
		return nil, fmt.Errorf("work service not initialized")
	}
	if !bucket.Valid() {
		return nil, fmt.Errorf("unknown work bucket '%s'", bucket)
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, fmt.Errorf("work label cannot be empty")
	}

	if _, ok := w.ctx.AuthToken(); !ok {
		return nil, ErrNotSignedIn
	}

	api, err := w.apiClient()
	if err != nil {
		return nil, err
	}
	if _, ok := api.BaseURL(); !ok {
		return nil, ErrEndpointUnavailable
	}

	result, err := api.SendJSON("/myworks", map[string]any{
		"bucket":  bucket,
		"label":   label,
		"payload": payload,
	})
	if err != nil {
		return nil, err
	}

	created := result.Field("data.work")
	item := studiotypes.WorkItem{
		Bucket:    bucket,
		ID:        created.Get("work_id").String(),
		Label:     label,
		CreatedAt: created.Get("created_at").String(),
		UpdatedAt: created.Get("updated_at").String(),
	}
	if reported := created.Get("label").String(); reported != "" {
		item.Label = reported
	}
	if reported := created.Get("bucket").String(); reported != "" {
		item.Bucket = studiotypes.WorkBucket(reported)
	}
	if item.ID == "" {
		return nil, fmt.Errorf("backend returned no work id")
	}

	w.ctx.SetActiveWork(item)
	w.ctx.PromoteRecentWork(item)
	logger.Debug("Work created", "bucket", item.Bucket, "id", item.ID)
	return &item, nil
}

// Attach replaces the session's active work with item unconditionally; there
// is never a merge with a prior item. The item is promoted in the cache.
func (w *WorkService) Attach(item studiotypes.WorkItem) error {
	if !w.initialized {
		return fmt.Errorf("work service not initialized")
	}
	if !item.Bucket.Valid() {
		return fmt.Errorf("unknown work bucket '%s'", item.Bucket)
	}
	if item.ID == "" {
		return fmt.Errorf("work item has no id")
	}

	w.ctx.SetActiveWork(item)
	w.ctx.PromoteRecentWork(item)
	return nil
}

// Switch changes the active work to item. Semantically identical to Attach:
// always a full replacement.
func (w *WorkService) Switch(item studiotypes.WorkItem) error {
	return w.Attach(item)
}

// Detach clears the active work. The recency cache is untouched.
func (w *WorkService) Detach() {
	if !w.initialized {
		return
	}
	w.ctx.ClearActiveWork()
}

// List filters the recency cache by a case-insensitive substring match over
// label, subtitle, and bucket, then sorts descending by most recent activity.
// Purely client-side: no network calls.
func (w *WorkService) List(query string) []studiotypes.RecentWorkEntry {
	if !w.initialized {
		return nil
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	entries := w.ctx.RecentWorks()

	matched := make([]studiotypes.RecentWorkEntry, 0, len(entries))
	for _, entry := range entries {
		if needle == "" || matchesWorkQuery(entry, needle) {
			matched = append(matched, entry)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].ActivityTime().After(matched[j].ActivityTime())
	})
	return matched
}

// VisibleList is List limited to the work browser's current visible cap.
func (w *WorkService) VisibleList(query string) []studiotypes.RecentWorkEntry {
	matched := w.List(query)

	w.visibleMu.Lock()
	limit := w.visibleCap
	w.visibleMu.Unlock()

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

// GrowVisible raises the visible cap by one page and returns the new cap.
// The cap never shrinks and never resets during a session.
func (w *WorkService) GrowVisible() int {
	w.visibleMu.Lock()
	defer w.visibleMu.Unlock()
	w.visibleCap += workBrowserPageSize
	return w.visibleCap
}

// VisibleCap returns the current visible cap.
func (w *WorkService) VisibleCap() int {
	w.visibleMu.Lock()
	defer w.visibleMu.Unlock()
	return w.visibleCap
}

func matchesWorkQuery(entry studiotypes.RecentWorkEntry, needle string) bool {
	return strings.Contains(strings.ToLower(entry.Label), needle) ||
		strings.Contains(strings.ToLower(entry.Subtitle), needle) ||
		strings.Contains(strings.ToLower(string(entry.Bucket)), needle)
}

func (w *WorkService) apiClient() (*APIClientService, error) {
	if w.api != nil {
		return w.api, nil
	}
	svc, err := GetGlobalRegistry().GetService("api_client")
	if err != nil {
		return nil, err
	}
	api, ok := svc.(*APIClientService)
	if !ok {
		return nil, ErrEndpointUnavailable
	}
	return api, nil
}
