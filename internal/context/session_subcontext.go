// Package context provides conversation history operations for StudioShell.
// This file implements the history side of StudioContext: bounded append with
// FIFO eviction and the transmission window used for backend payloads.
package context

import (
	"studioshell/internal/testutils"
	"studioshell/pkg/studiotypes"
)

// AppendTurn appends a turn to the conversation history. When the retained
// length would exceed the cap, the oldest entries are dropped first; eviction
// never removes from the middle or end.
func (c *StudioContext) AppendTurn(role, content string) studiotypes.Turn {
	// Generate outside the lock: the deterministic helpers read test mode.
	turn := studiotypes.Turn{
		ID:        testutils.GenerateUUID(c),
		Role:      role,
		Content:   content,
		Timestamp: testutils.GetCurrentTime(c),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.history = append(c.history, turn)
	if c.historyCap > 0 && len(c.history) > c.historyCap {
		overflow := len(c.history) - c.historyCap
		c.history = append(c.history[:0:0], c.history[overflow:]...)
	}
	return turn
}

// TurnHistory returns a copy of the full retained history in order.
func (c *StudioContext) TurnHistory() []studiotypes.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]studiotypes.Turn(nil), c.history...)
}

// HistoryForTransmission returns the most recent turns up to the transmission
// window, preserving order. The result is empty if and only if no turns exist.
func (c *StudioContext) HistoryForTransmission() []studiotypes.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tailLocked(c.historyWindow)
}

// RecentTurnTail returns the most recent n turns, preserving order.
func (c *StudioContext) RecentTurnTail(n int) []studiotypes.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tailLocked(n)
}

func (c *StudioContext) tailLocked(n int) []studiotypes.Turn {
	if n <= 0 || len(c.history) == 0 {
		return []studiotypes.Turn{}
	}
	if n > len(c.history) {
		n = len(c.history)
	}
	return append([]studiotypes.Turn(nil), c.history[len(c.history)-n:]...)
}

// LastTurnOfRole returns the most recent turn with the given role.
func (c *StudioContext) LastTurnOfRole(role string) (studiotypes.Turn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := len(c.history) - 1; i >= 0; i-- {
		if c.history[i].Role == role {
			return c.history[i], true
		}
	}
	return studiotypes.Turn{}, false
}

// ClearHistory removes all retained turns. Active work is unaffected.
func (c *StudioContext) ClearHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = c.history[:0]
}

// SetHistoryLimits configures the retained cap and the transmission window.
// The window never exceeds the cap.
func (c *StudioContext) SetHistoryLimits(retained, window int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if retained > 0 {
		c.historyCap = retained
		if len(c.history) > c.historyCap {
			overflow := len(c.history) - c.historyCap
			c.history = append(c.history[:0:0], c.history[overflow:]...)
		}
	}
	if window > 0 {
		c.historyWindow = window
	}
	if c.historyWindow > c.historyCap {
		c.historyWindow = c.historyCap
	}
}

// HistoryLimits returns the retained cap and transmission window.
func (c *StudioContext) HistoryLimits() (retained, window int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.historyCap, c.historyWindow
}
