// Package services provides feedback capture and submission for StudioShell.
package services

import (
	"fmt"

	studioctx "studioshell/internal/context"
	"studioshell/internal/logger"
	"studioshell/internal/testutils"
	"studioshell/pkg/studiotypes"
)

// feedbackTurnTail is how many recent turns a snapshot carries.
const feedbackTurnTail = 4

// FeedbackService captures context snapshots around assistant replies and
// submits them to the backend. Submission is fire-and-forget from the shell's
// point of view; the modal shows saving/saved/error status text.
type FeedbackService struct {
	initialized bool
	ctx         studiotypes.Context

	// api is resolved from the registry; tests may set it directly.
	api *APIClientService
}

// NewFeedbackService creates a new FeedbackService instance.
func NewFeedbackService() *FeedbackService {
	return &FeedbackService{}
}

// Name returns the service name "feedback" for registration.
func (f *FeedbackService) Name() string {
	return "feedback"
}

// Initialize sets up the FeedbackService for operation.
func (f *FeedbackService) Initialize(ctx studiotypes.Context) error {
	f.ctx = ctx
	f.initialized = true
	return nil
}

// CaptureSnapshot freezes the context surrounding the latest assistant reply:
// the active tool, the last user and assistant texts, and a short tail of
// recent turns. The snapshot is immutable once captured.
func (f *FeedbackService) CaptureSnapshot() (studiotypes.FeedbackSnapshot, error) {
	if !f.initialized {
		return studiotypes.FeedbackSnapshot{}, fmt.Errorf("feedback service not initialized")
	}

	tool := f.ctx.ActiveTool()
	snapshot := studiotypes.FeedbackSnapshot{
		Tool:        tool.ID,
		ToolTitle:   tool.Title,
		RecentTurns: studiotypes.WireHistory(f.ctx.RecentTurnTail(feedbackTurnTail)),
		CreatedAt:   testutils.FormatISOTime(testutils.GetCurrentTime(f.ctx)),
	}

	if sc, ok := f.ctx.(*studioctx.StudioContext); ok {
		if last, found := sc.LastTurnOfRole(studiotypes.RoleUser); found {
			snapshot.LastUserMessage = last.Content
		}
		if last, found := sc.LastTurnOfRole(studiotypes.RoleAssistant); found {
			snapshot.LastAssistantText = last.Content
		}
	}

	if source, ok := f.ctx.GetConfigValue(studioctx.ConfigKeySourceURL); ok {
		snapshot.SourceURL = source
	}
	return snapshot, nil
}

// Submit sends a captured snapshot with a reason code and an optional note.
// The reason defaults to "other"; the note is clamped to its bound.
func (f *FeedbackService) Submit(snapshot studiotypes.FeedbackSnapshot, reason studiotypes.FeedbackReason, note string) error {
	if !f.initialized {
		return fmt.Errorf("feedback service not initialized")
	}

	if reason == "" {
		reason = studiotypes.ReasonOther
	}
	if runes := []rune(note); len(runes) > studiotypes.MaxFeedbackNoteLength {
		note = string(runes[:studiotypes.MaxFeedbackNoteLength])
	}

	api, err := f.apiClient()
	if err != nil {
		return err
	}

	_, err = api.SendJSON("/give-feedback", map[string]any{
		"kind":     "user_feedback",
		"reason":   reason,
		"note":     note,
		"snapshot": snapshot,
	})
	if err != nil {
		return err
	}

	logger.Debug("Feedback submitted", "tool", snapshot.Tool, "reason", reason)
	return nil
}

func (f *FeedbackService) apiClient() (*APIClientService, error) {
	if f.api != nil {
		return f.api, nil
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
