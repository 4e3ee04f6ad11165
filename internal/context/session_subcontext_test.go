package context

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"studioshell/internal/testutils"
	"studioshell/pkg/studiotypes"
)

func TestAppendTurn_AssignsDeterministicIDsInTestMode(t *testing.T) {
	testutils.ResetTestCounters()
	ctx := NewTestContext()

	first := ctx.AppendTurn(studiotypes.RoleUser, "hello")
	second := ctx.AppendTurn(studiotypes.RoleAssistant, "hi there")

	assert.Equal(t, "00000001-0000-4000-8000-000000000001", first.ID)
	assert.Equal(t, "00000002-0000-4000-8000-000000000002", second.ID)
	assert.True(t, second.Timestamp.After(first.Timestamp))
}

func TestAppendTurn_EvictsOldestBeyondCap(t *testing.T) {
	ctx := NewTestContext()
	ctx.SetHistoryLimits(3, 3)

	for i := 0; i < 5; i++ {
		ctx.AppendTurn(studiotypes.RoleUser, fmt.Sprintf("message %d", i))
	}

	history := ctx.TurnHistory()
	assert.Len(t, history, 3)
	assert.Equal(t, "message 2", history[0].Content)
	assert.Equal(t, "message 4", history[2].Content)
}

func TestHistoryForTransmission_ReturnsRecentWindowInOrder(t *testing.T) {
	ctx := NewTestContext()
	ctx.SetHistoryLimits(30, 2)

	ctx.AppendTurn(studiotypes.RoleUser, "one")
	ctx.AppendTurn(studiotypes.RoleAssistant, "two")
	ctx.AppendTurn(studiotypes.RoleUser, "three")

	window := ctx.HistoryForTransmission()
	assert.Len(t, window, 2)
	assert.Equal(t, "two", window[0].Content)
	assert.Equal(t, "three", window[1].Content)
}

func TestHistoryForTransmission_EmptyOnlyWhenNoTurns(t *testing.T) {
	ctx := NewTestContext()

	assert.Empty(t, ctx.HistoryForTransmission())
	assert.NotNil(t, ctx.HistoryForTransmission())

	ctx.AppendTurn(studiotypes.RoleUser, "hello")
	assert.NotEmpty(t, ctx.HistoryForTransmission())
}

func TestRecentTurnTail(t *testing.T) {
	ctx := NewTestContext()
	for i := 0; i < 6; i++ {
		ctx.AppendTurn(studiotypes.RoleUser, fmt.Sprintf("message %d", i))
	}

	tail := ctx.RecentTurnTail(4)
	assert.Len(t, tail, 4)
	assert.Equal(t, "message 2", tail[0].Content)
	assert.Equal(t, "message 5", tail[3].Content)

	// Asking for more than exists returns everything.
	assert.Len(t, ctx.RecentTurnTail(100), 6)
	assert.Empty(t, ctx.RecentTurnTail(0))
}

func TestLastTurnOfRole(t *testing.T) {
	ctx := NewTestContext()
	ctx.AppendTurn(studiotypes.RoleUser, "question one")
	ctx.AppendTurn(studiotypes.RoleAssistant, "answer one")
	ctx.AppendTurn(studiotypes.RoleUser, "question two")

	last, found := ctx.LastTurnOfRole(studiotypes.RoleUser)
	assert.True(t, found)
	assert.Equal(t, "question two", last.Content)

	last, found = ctx.LastTurnOfRole(studiotypes.RoleAssistant)
	assert.True(t, found)
	assert.Equal(t, "answer one", last.Content)

	ctx.ClearHistory()
	_, found = ctx.LastTurnOfRole(studiotypes.RoleUser)
	assert.False(t, found)
}

func TestClearHistory_LeavesActiveWorkAlone(t *testing.T) {
	ctx := NewTestContext()
	ctx.AppendTurn(studiotypes.RoleUser, "hello")
	ctx.SetActiveWork(studiotypes.WorkItem{Bucket: studiotypes.BucketListings, ID: "w1", Label: "Listing"})

	ctx.ClearHistory()

	assert.Empty(t, ctx.TurnHistory())
	_, attached := ctx.ActiveWork()
	assert.True(t, attached)
}

func TestSetHistoryLimits_WindowNeverExceedsCap(t *testing.T) {
	ctx := NewTestContext()

	ctx.SetHistoryLimits(5, 20)
	retained, window := ctx.HistoryLimits()
	assert.Equal(t, 5, retained)
	assert.Equal(t, 5, window)

	// Shrinking the cap trims existing history from the front.
	for i := 0; i < 5; i++ {
		ctx.AppendTurn(studiotypes.RoleUser, fmt.Sprintf("message %d", i))
	}
	ctx.SetHistoryLimits(2, 2)
	history := ctx.TurnHistory()
	assert.Len(t, history, 2)
	assert.Equal(t, "message 3", history[0].Content)
}
