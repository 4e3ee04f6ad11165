// Package services provides the conversation coordinator for StudioShell.
package services

import (
	"fmt"
	"sync/atomic"

	"studioshell/internal/logger"
	"studioshell/pkg/studiotypes"
)

// ConversationService orchestrates tool exchanges with the Studio backend:
// append the user turn, transmit the recent history window, append the reply.
// A single-flight guard drops (never queues) sends issued while one is in
// flight, so double submissions cannot duplicate a request.
type ConversationService struct {
	initialized bool
	ctx         studiotypes.Context

	// sending covers exactly one in-flight exchange. idle -> sending -> idle;
	// no retry, no cancellation.
	sending atomic.Bool

	// api is resolved from the registry; tests may set it directly.
	api *APIClientService
}

// NewConversationService creates a new ConversationService instance.
func NewConversationService() *ConversationService {
	return &ConversationService{}
}

// Name returns the service name "conversation" for registration.
func (c *ConversationService) Name() string {
	return "conversation"
}

// Initialize sets up the ConversationService for operation.
func (c *ConversationService) Initialize(ctx studiotypes.Context) error {
	c.ctx = ctx
	c.initialized = true
	return nil
}

// IsSending reports whether an exchange is in flight.
func (c *ConversationService) IsSending() bool {
	return c.sending.Load()
}

// Send performs one tool exchange. The returned sent flag is false when the
// call was dropped by the single-flight guard; dropped calls are a no-op, not
// an error. On success the user turn and any non-empty reply are both in
// history. On failure the error carries a display-ready message and history
// holds only the user turn.
func (c *ConversationService) Send(message string, extra map[string]any) (string, bool, error) {
	if !c.initialized {
		return "", false, fmt.Errorf("conversation service not initialized")
	}
	if message == "" {
		return "", false, nil
	}

	// Single-flight: a send already in progress makes this call a no-op.
	if !c.sending.CompareAndSwap(false, true) {
		logger.Debug("Send dropped, exchange already in flight")
		return "", false, nil
	}
	defer c.sending.Store(false)

	api, err := c.apiClient()
	if err != nil {
		return "", true, err
	}

	tool := c.ctx.ActiveTool()

	// The transmitted history excludes the message being sent; the user turn
	// append still precedes the network call.
	history := studiotypes.WireHistory(c.ctx.HistoryForTransmission())
	c.ctx.AppendTurn(studiotypes.RoleUser, message)

	payload := map[string]any{
		"tool":    tool.ID,
		"message": message,
		"history": history,
		"prefs":   tool.Prefs,
	}
	if work, ok := c.ctx.ActiveWork(); ok {
		payload["active_work"] = work
	}
	for key, value := range extra {
		payload[key] = value
	}

	result, err := api.SendJSON("/", payload)
	if err != nil {
		// History is not polluted with a failed attempt's non-existent reply.
		logger.Debug("Exchange failed", "tool", tool.ID, "error", err)
		return "", true, err
	}

	reply := result.Reply()
	if reply != "" {
		c.ctx.AppendTurn(studiotypes.RoleAssistant, reply)
	}
	return reply, true, nil
}

// Reset clears the conversation history and returns the coordinator to its
// initial empty state. Active work is unaffected.
func (c *ConversationService) Reset() {
	if !c.initialized {
		return
	}
	c.ctx.ClearHistory()
}

func (c *ConversationService) apiClient() (*APIClientService, error) {
	if c.api != nil {
		return c.api, nil
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
