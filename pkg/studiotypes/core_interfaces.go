// Package studiotypes provides shared types and interfaces used across
// StudioShell components. It has no dependencies on internal packages,
// making it safe for import by any component.
package studiotypes

import "time"

// Context represents the session state interface that services operate on.
// The concrete implementation lives in internal/context; services depend only
// on this interface.
type Context interface {
	// Conversation history
	AppendTurn(role, content string) Turn
	TurnHistory() []Turn
	HistoryForTransmission() []Turn
	RecentTurnTail(n int) []Turn
	ClearHistory()

	// Work attachment and recency
	ActiveWork() (WorkItem, bool)
	SetActiveWork(item WorkItem)
	ClearActiveWork()
	PromoteRecentWork(item WorkItem)
	RecentWorks() []RecentWorkEntry
	RecentWorkCount() int

	// Identity state (volatile, never persisted)
	AuthToken() (string, bool)
	SetAuthToken(token string, expiresAt time.Time)
	ClearAuthToken()
	IdentityUser() string
	SetIdentityUser(userID string)

	// Configuration
	GetConfigValue(key string) (string, bool)
	SetConfigValue(key, value string)

	// Tool catalog
	ActiveTool() ToolConfig
	SetActiveTool(id string) error
	ToolConfig(id string) (ToolConfig, bool)

	// Test mode controls deterministic ID and time generation
	IsTestMode() bool
	SetTestMode(testMode bool)
}

// Service represents a stateless component that operates on the shared
// session context.
type Service interface {
	// Name returns the unique identifier for this service.
	Name() string

	// Initialize sets up the service with the session context.
	Initialize(ctx Context) error
}
