package studiotypes

// ViewMode is the shell's top-level view state: exactly one mode is active
// at a time.
type ViewMode string

// View modes.
const (
	ViewModeTool        ViewMode = "tool"
	ViewModeWorkBrowser ViewMode = "work_browser"
)
