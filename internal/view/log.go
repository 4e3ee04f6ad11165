// Package view provides the message log for StudioShell.
// The log mirrors the conversation as a region subtree. Feedback affordances
// on assistant entries are maintained by a reconciliation pass against the
// actual rendered tree: an in-memory flag alone cannot be trusted, because an
// outside re-render can remove the affordance while leaving a flag set.
package view

import (
	"fmt"
	"strings"

	"studioshell/pkg/studiotypes"
)

// Region identifier prefixes within the message log subtree.
const (
	entryIDPrefix    = "entry:"
	bubbleIDPrefix   = "bubble:"
	feedbackIDPrefix = "feedback:"
)

// MessageLog is the rendered conversation: one entry region per turn, each
// holding a bubble region with the text. Assistant entries carry exactly
// one feedback affordance region beneath the bubble.
type MessageLog struct {
	root    *Region
	roles   map[string]string
	counter int
}

// NewMessageLog creates an empty message log.
func NewMessageLog() *MessageLog {
	return &MessageLog{
		root:  NewRegion("message-log"),
		roles: make(map[string]string),
	}
}

// Root returns the log's root region.
func (l *MessageLog) Root() *Region {
	return l.root
}

// Append adds a new entry for a turn and returns its region. Assistant
// entries receive their feedback affordance on the next Reconcile.
func (l *MessageLog) Append(role, content string) *Region {
	l.counter++
	id := fmt.Sprintf("%d", l.counter)

	entry := NewRegion(entryIDPrefix + id)
	bubble := NewRegion(bubbleIDPrefix + id)
	bubble.SetContent(content)
	_ = entry.AppendChild(bubble)
	_ = l.root.AppendChild(entry)

	l.roles[entry.ID()] = role
	return entry
}

// Role returns the role recorded for an entry region.
func (l *MessageLog) Role(entryID string) string {
	return l.roles[entryID]
}

// Entries returns the entry regions in order.
func (l *MessageLog) Entries() []*Region {
	return l.root.Children()
}

// EntryCount returns the number of entries.
func (l *MessageLog) EntryCount() int {
	return l.root.ChildCount()
}

// LastAssistantContent returns the content of the most recent assistant
// entry.
func (l *MessageLog) LastAssistantContent() (string, bool) {
	entries := l.root.Children()
	for i := len(entries) - 1; i >= 0; i-- {
		if l.roles[entries[i].ID()] != studiotypes.RoleAssistant {
			continue
		}
		for _, child := range entries[i].Children() {
			if strings.HasPrefix(child.ID(), bubbleIDPrefix) {
				return child.Content(), true
			}
		}
	}
	return "", false
}

// Reconcile ensures every assistant entry carries exactly one feedback
// affordance region positioned after its bubble. Presence is verified by
// scanning the tree itself, so affordances removed by outside mutation are
// recreated and duplicates are collapsed.
func (l *MessageLog) Reconcile() {
	for _, entry := range l.root.Children() {
		if l.roles[entry.ID()] != studiotypes.RoleAssistant {
			continue
		}

		id := strings.TrimPrefix(entry.ID(), entryIDPrefix)
		var seen int
		for _, child := range entry.Children() {
			if !strings.HasPrefix(child.ID(), feedbackIDPrefix) {
				continue
			}
			seen++
			if seen > 1 {
				_ = entry.RemoveChild(child)
			}
		}
		if seen == 0 {
			affordance := NewRegion(feedbackIDPrefix + id)
			affordance.SetContent("Give feedback on this reply")
			_ = entry.AppendChild(affordance)
		}
	}
}

// FeedbackAffordance returns an entry's feedback region, if present.
func (l *MessageLog) FeedbackAffordance(entryID string) (*Region, bool) {
	entry := l.root.Find(entryID)
	if entry == nil {
		return nil, false
	}
	for _, child := range entry.Children() {
		if strings.HasPrefix(child.ID(), feedbackIDPrefix) {
			return child, true
		}
	}
	return nil, false
}

// Clear removes all entries and role records.
func (l *MessageLog) Clear() {
	for _, child := range l.root.Children() {
		_ = l.root.RemoveChild(child)
	}
	l.roles = make(map[string]string)
	l.counter = 0
}
