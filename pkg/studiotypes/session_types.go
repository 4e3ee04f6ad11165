package studiotypes

import "time"

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one conversation entry as held in session state.
type Turn struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// WireTurn is the transmission shape of a turn: role and content only.
// Local identifiers and timestamps never leave the client.
type WireTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Wire converts a turn to its transmission shape.
func (t Turn) Wire() WireTurn {
	return WireTurn{Role: t.Role, Content: t.Content}
}

// WireHistory converts turns to their transmission shape. The result is
// non-nil even for empty input so the payload serializes as [] rather than
// null.
func WireHistory(turns []Turn) []WireTurn {
	wire := make([]WireTurn, 0, len(turns))
	for _, turn := range turns {
		wire = append(wire, turn.Wire())
	}
	return wire
}

// ToolConfig describes one studio tool surface: its identifier, display
// title, and the preference fields forwarded with every exchange.
type ToolConfig struct {
	ID    string         `yaml:"id" json:"id"`
	Title string         `yaml:"title" json:"title"`
	Prefs map[string]any `yaml:"prefs" json:"prefs,omitempty"`
}
