package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studioshell/pkg/studiotypes"
)

func TestMessageLog_AppendAndRoles(t *testing.T) {
	log := NewMessageLog()

	user := log.Append(studiotypes.RoleUser, "hello")
	reply := log.Append(studiotypes.RoleAssistant, "hi there")

	assert.Equal(t, 2, log.EntryCount())
	assert.Equal(t, studiotypes.RoleUser, log.Role(user.ID()))
	assert.Equal(t, studiotypes.RoleAssistant, log.Role(reply.ID()))

	content, ok := log.LastAssistantContent()
	assert.True(t, ok)
	assert.Equal(t, "hi there", content)
}

func TestMessageLog_LastAssistantContentSkipsUserEntries(t *testing.T) {
	log := NewMessageLog()

	_, ok := log.LastAssistantContent()
	assert.False(t, ok)

	log.Append(studiotypes.RoleAssistant, "first reply")
	log.Append(studiotypes.RoleUser, "a later question")

	content, ok := log.LastAssistantContent()
	assert.True(t, ok)
	assert.Equal(t, "first reply", content)
}

func TestMessageLog_ReconcileAddsExactlyOneAffordance(t *testing.T) {
	log := NewMessageLog()
	log.Append(studiotypes.RoleUser, "question")
	reply := log.Append(studiotypes.RoleAssistant, "answer")

	log.Reconcile()

	affordance, ok := log.FeedbackAffordance(reply.ID())
	require.True(t, ok)
	assert.Equal(t, "Give feedback on this reply", affordance.Content())

	// Reconcile is idempotent.
	log.Reconcile()
	log.Reconcile()
	assert.Equal(t, 1, countFeedbackRegions(reply))

	// User entries never get one.
	userEntry := log.Entries()[0]
	assert.Equal(t, 0, countFeedbackRegions(userEntry))
}

func TestMessageLog_ReconcileRecreatesExternallyRemovedAffordance(t *testing.T) {
	log := NewMessageLog()
	reply := log.Append(studiotypes.RoleAssistant, "answer")
	log.Reconcile()

	// An outside re-render wipes the affordance.
	affordance, ok := log.FeedbackAffordance(reply.ID())
	require.True(t, ok)
	require.NoError(t, reply.RemoveChild(affordance))

	log.Reconcile()

	_, ok = log.FeedbackAffordance(reply.ID())
	assert.True(t, ok, "missing affordance must be recreated from the tree scan")
	assert.Equal(t, 1, countFeedbackRegions(reply))
}

func TestMessageLog_ReconcileCollapsesDuplicates(t *testing.T) {
	log := NewMessageLog()
	reply := log.Append(studiotypes.RoleAssistant, "answer")
	log.Reconcile()

	// An outside mutation duplicates the affordance.
	duplicate := NewRegion("feedback:1")
	duplicate.SetContent("Give feedback on this reply")
	require.NoError(t, reply.AppendChild(duplicate))
	require.Equal(t, 2, countFeedbackRegions(reply))

	log.Reconcile()

	assert.Equal(t, 1, countFeedbackRegions(reply))
}

func TestMessageLog_Clear(t *testing.T) {
	log := NewMessageLog()
	log.Append(studiotypes.RoleUser, "hello")
	log.Append(studiotypes.RoleAssistant, "hi")
	log.Reconcile()

	log.Clear()

	assert.Equal(t, 0, log.EntryCount())
	_, ok := log.LastAssistantContent()
	assert.False(t, ok)

	// Counter resets, so new entries reuse low identifiers cleanly.
	entry := log.Append(studiotypes.RoleUser, "fresh start")
	assert.Equal(t, "entry:1", entry.ID())
}

func countFeedbackRegions(entry *Region) int {
	var n int
	for _, child := range entry.Children() {
		if strings.HasPrefix(child.ID(), feedbackIDPrefix) {
			n++
		}
	}
	return n
}
