package studiotypes

// FeedbackReason is the coded reason attached to a feedback submission.
type FeedbackReason string

// Feedback reason codes.
const (
	ReasonInaccurate FeedbackReason = "inaccurate"
	ReasonUnhelpful  FeedbackReason = "unhelpful"
	ReasonTooGeneric FeedbackReason = "too_generic"
	ReasonOther      FeedbackReason = "other"
)

// MaxFeedbackNoteLength bounds the free-text note on a feedback submission.
const MaxFeedbackNoteLength = 500

// FeedbackSnapshot freezes the context surrounding an assistant reply at the
// moment feedback capture begins. Later conversation activity never mutates
// a captured snapshot.
type FeedbackSnapshot struct {
	Tool              string     `json:"tool"`
	ToolTitle         string     `json:"tool_title"`
	LastUserMessage   string     `json:"last_user_message,omitempty"`
	LastAssistantText string     `json:"last_assistant_text,omitempty"`
	RecentTurns       []WireTurn `json:"recent_turns"`
	CreatedAt         string     `json:"created_at"`
	SourceURL         string     `json:"source_url,omitempty"`
}
