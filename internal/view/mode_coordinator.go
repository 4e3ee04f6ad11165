// Package view provides the tool / work-browser mode coordinator.
// Switching modes hides one root wholesale, relocates the shared context
// control (and its adjacent status indicator) between headers, and restores
// scroll and focus when returning. A single boolean-equivalent mode flag is
// the source of truth; repeated enters or exits are safe no-ops.
package view

import (
	"sync"

	"github.com/charmbracelet/log"

	"studioshell/internal/logger"
	"studioshell/pkg/studiotypes"
)

// Layout names the fixed regions the coordinator manipulates.
type Layout struct {
	ToolRoot        *Region
	BrowserRoot     *Region
	BrowserHeader   *Region
	Control         *Region
	StatusIndicator *Region
}

// EscapeOutcome reports what an Escape press did.
type EscapeOutcome int

// Escape outcomes.
const (
	EscapeIgnored EscapeOutcome = iota
	EscapeClosedModal
	EscapeExitedBrowser
)

// ModeCoordinator switches the page between the tool surface and the work
// browser. A failed region manipulation must never prevent the mode change
// itself from completing.
type ModeCoordinator struct {
	mu     sync.Mutex
	mode   studiotypes.ViewMode
	layout Layout

	controlAnchor *Anchor
	statusAnchor  *Anchor

	scroll      int
	focus       string
	savedScroll int
	savedFocus  string

	// modals open within the work browser, innermost last
	modals []string

	// pending holds deferred restoration steps, run after the region tree
	// has settled (the shell flushes them after rendering).
	pending []func()

	logger *log.Logger
}

// NewModeCoordinator creates a coordinator starting in tool mode.
func NewModeCoordinator(layout Layout) *ModeCoordinator {
	coordinator := &ModeCoordinator{
		mode:   studiotypes.ViewModeTool,
		layout: layout,
		logger: logger.NewStyledLogger("ModeCoordinator"),
	}
	if layout.BrowserRoot != nil {
		layout.BrowserRoot.SetVisible(false)
	}
	return coordinator
}

// Mode returns the active view mode.
func (m *ModeCoordinator) Mode() studiotypes.ViewMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Enter switches to work-browser mode. A no-op when already there.
func (m *ModeCoordinator) Enter() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode == studiotypes.ViewModeWorkBrowser {
		return
	}

	m.savedScroll = m.scroll
	m.savedFocus = m.focus

	if m.layout.ToolRoot != nil {
		// The whole tool surface hides at once, never field-by-field.
		m.layout.ToolRoot.SetVisible(false)
	}

	m.relocateControlsToBrowser()

	if m.layout.BrowserRoot != nil {
		m.layout.BrowserRoot.SetVisible(true)
	}

	m.scroll = 0
	m.mode = studiotypes.ViewModeWorkBrowser
	m.logger.Debug("Entered work browser", "mode", m.mode)
}

// Exit switches back to tool mode. A no-op when already there. Scroll and
// focus restoration is deferred until Settle so it runs after the region
// tree has been put back.
func (m *ModeCoordinator) Exit() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode == studiotypes.ViewModeTool {
		return
	}

	if m.layout.BrowserRoot != nil {
		m.layout.BrowserRoot.SetVisible(false)
	}

	m.restoreControlsFromBrowser()

	if m.layout.ToolRoot != nil {
		m.layout.ToolRoot.SetVisible(true)
	}

	savedScroll := m.savedScroll
	savedFocus := m.savedFocus
	m.pending = append(m.pending, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.scroll = savedScroll
		m.focus = savedFocus
	})

	m.modals = m.modals[:0]
	m.mode = studiotypes.ViewModeTool
	m.logger.Debug("Exited work browser", "mode", m.mode)
}

// Settle runs deferred restoration steps queued by Exit.
func (m *ModeCoordinator) Settle() {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, step := range pending {
		step()
	}
}

// OpenModal pushes a modal on top of the work browser.
func (m *ModeCoordinator) OpenModal(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modals = append(m.modals, id)
}

// CloseModal removes the named modal wherever it sits in the stack.
func (m *ModeCoordinator) CloseModal(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.modals) - 1; i >= 0; i-- {
		if m.modals[i] == id {
			m.modals = append(m.modals[:i], m.modals[i+1:]...)
			return
		}
	}
}

// OpenModals returns the modal stack, innermost last.
func (m *ModeCoordinator) OpenModals() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.modals...)
}

// HandleEscape implements the nesting rule: with any modal open, Escape
// closes only the topmost modal; otherwise it exits work-browser mode. It
// never skips a modal to exit the outer mode.
func (m *ModeCoordinator) HandleEscape() EscapeOutcome {
	m.mu.Lock()
	if len(m.modals) > 0 {
		m.modals = m.modals[:len(m.modals)-1]
		m.mu.Unlock()
		return EscapeClosedModal
	}
	inBrowser := m.mode == studiotypes.ViewModeWorkBrowser
	m.mu.Unlock()

	if inBrowser {
		m.Exit()
		return EscapeExitedBrowser
	}
	return EscapeIgnored
}

// Scroll returns the current scroll offset.
func (m *ModeCoordinator) Scroll() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scroll
}

// SetScroll records the current scroll offset.
func (m *ModeCoordinator) SetScroll(offset int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scroll = offset
}

// Focus returns the focused region identifier.
func (m *ModeCoordinator) Focus() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focus
}

// SetFocus records the focused region identifier.
func (m *ModeCoordinator) SetFocus(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.focus = id
}

// relocateControlsToBrowser moves the shared control and its status indicator
// into the browser header, preserving their relative order. Must be called
// with the coordinator locked.
func (m *ModeCoordinator) relocateControlsToBrowser() {
	header := m.layout.BrowserHeader
	if header == nil {
		return
	}

	if m.layout.Control != nil {
		anchor, err := DetachWithAnchor(m.layout.Control)
		if err != nil {
			m.logger.Debug("Control relocation skipped", "error", err)
		} else {
			m.controlAnchor = anchor
			_ = header.AppendChild(m.layout.Control)
		}
	}
	if m.layout.StatusIndicator != nil {
		anchor, err := DetachWithAnchor(m.layout.StatusIndicator)
		if err != nil {
			m.logger.Debug("Status indicator relocation skipped", "error", err)
		} else {
			m.statusAnchor = anchor
			_ = header.AppendChild(m.layout.StatusIndicator)
		}
	}
}

// restoreControlsFromBrowser puts the shared control and status indicator
// back at their anchored positions. Must be called with the coordinator
// locked.
func (m *ModeCoordinator) restoreControlsFromBrowser() {
	if m.controlAnchor != nil && m.layout.Control != nil {
		if err := m.controlAnchor.Restore(m.layout.Control); err != nil {
			m.logger.Debug("Control restore failed", "error", err)
		}
		m.controlAnchor = nil
	}
	if m.statusAnchor != nil && m.layout.StatusIndicator != nil {
		if err := m.statusAnchor.Restore(m.layout.StatusIndicator); err != nil {
			m.logger.Debug("Status indicator restore failed", "error", err)
		}
		m.statusAnchor = nil
	}
}
