// Package context provides the session-scoped state object for StudioShell.
// StudioContext is the single holder of all mutable session state: conversation
// history, the attached work item, the recency cache, identity token state, the
// configuration map, and the tool catalog. Services receive it by reference and
// never mutate shared state anywhere else.
package context

import (
	"sync"
	"time"

	"studioshell/pkg/studiotypes"
)

// Compile-time check that StudioContext satisfies the shared context interface.
var _ studiotypes.Context = (*StudioContext)(nil)

// StudioContext implements studiotypes.Context. All methods are safe for use
// from interleaved shell input handlers and background identity delivery.
type StudioContext struct {
	mu       sync.RWMutex
	testMode bool

	// Conversation history (bounded, FIFO eviction)
	history       []studiotypes.Turn
	historyCap    int
	historyWindow int

	// At most one attached work item per session
	activeWork *studiotypes.WorkItem
	recent     *RecencyCache

	// Volatile identity state; never written to durable storage
	token        string
	tokenExpiry  time.Time
	identityUser string

	// Configuration map (defaults < config .env < local .env < process env)
	config map[string]string

	// Tool catalog
	tools      map[string]studiotypes.ToolConfig
	toolOrder  []string
	activeTool string
}

// New creates a StudioContext with default limits and an empty state.
func New() *StudioContext {
	return &StudioContext{
		history:       make([]studiotypes.Turn, 0),
		historyCap:    DefaultHistoryCap,
		historyWindow: DefaultHistoryWindow,
		recent:        NewRecencyCache(DefaultRecentWorksCap),
		config:        make(map[string]string),
		tools:         make(map[string]studiotypes.ToolConfig),
	}
}

// NewTestContext creates a StudioContext in test mode with the default tool
// catalog loaded. Intended for service tests.
func NewTestContext() *StudioContext {
	ctx := New()
	ctx.SetTestMode(true)
	_ = ctx.LoadToolCatalog("")
	return ctx
}

// SetTestMode enables or disables deterministic test behavior.
func (c *StudioContext) SetTestMode(testMode bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.testMode = testMode
}

// IsTestMode reports whether the context runs in deterministic test mode.
func (c *StudioContext) IsTestMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.testMode
}
