// Package view provides terminal rendering for StudioShell.
// Assistant replies render as markdown through glamour; chrome is styled with
// lipgloss against the detected terminal color profile.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"studioshell/pkg/studiotypes"
)

const defaultRenderWidth = 80

// Renderer turns the region tree into terminal output.
type Renderer struct {
	markdown *glamour.TermRenderer
	width    int

	userStyle      lipgloss.Style
	assistantStyle lipgloss.Style
	errorStyle     lipgloss.Style
	toastStyle     lipgloss.Style
	affordance     lipgloss.Style
	listTitle      lipgloss.Style
	listMeta       lipgloss.Style
	activeMark     lipgloss.Style
}

// NewRenderer creates a renderer wrapped at width columns (0 means default).
// Styling follows the detected terminal color profile: monochrome terminals
// keep emphasis but drop color.
func NewRenderer(width int) (*Renderer, error) {
	return newRendererWithProfile(width, termenv.ColorProfile())
}

func newRendererWithProfile(width int, profile termenv.Profile) (*Renderer, error) {
	if width <= 0 {
		width = defaultRenderWidth
	}

	markdown, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	colored := func(style lipgloss.Style, color string) lipgloss.Style {
		if profile == termenv.Ascii {
			return style
		}
		return style.Foreground(lipgloss.Color(color))
	}

	return &Renderer{
		markdown:       markdown,
		width:          width,
		userStyle:      colored(lipgloss.NewStyle().Bold(true), "39"),
		assistantStyle: colored(lipgloss.NewStyle(), "252"),
		errorStyle:     colored(lipgloss.NewStyle(), "196"),
		toastStyle:     colored(lipgloss.NewStyle().Italic(true), "214"),
		affordance:     lipgloss.NewStyle().Faint(true),
		listTitle:      lipgloss.NewStyle().Bold(true),
		listMeta:       lipgloss.NewStyle().Faint(true),
		activeMark:     colored(lipgloss.NewStyle(), "46"),
	}, nil
}

// RenderLog renders the visible message log entries in order.
func (r *Renderer) RenderLog(log *MessageLog) string {
	var out strings.Builder

	for _, entry := range log.Entries() {
		out.WriteString(r.RenderEntry(log, entry))
	}
	return out.String()
}

// RenderEntry renders a single log entry: its bubble plus any feedback
// affordance beneath it.
func (r *Renderer) RenderEntry(log *MessageLog, entry *Region) string {
	if entry == nil || !entry.Visible() {
		return ""
	}

	var out strings.Builder
	role := log.Role(entry.ID())
	for _, child := range entry.Children() {
		if !child.Visible() {
			continue
		}
		switch {
		case strings.HasPrefix(child.ID(), bubbleIDPrefix):
			out.WriteString(r.renderBubble(role, child.Content()))
		case strings.HasPrefix(child.ID(), feedbackIDPrefix):
			out.WriteString(r.affordance.Render("  ↳ "+child.Content()) + "\n")
		}
	}
	return out.String()
}

func (r *Renderer) renderBubble(role, content string) string {
	if role == studiotypes.RoleUser {
		return r.userStyle.Render("You") + "  " + content + "\n"
	}

	if strings.HasPrefix(content, "Error: ") {
		return r.errorStyle.Render(content) + "\n"
	}

	rendered, err := r.markdown.Render(content)
	if err != nil {
		// Markdown failures are cosmetic only; fall back to the raw text.
		return r.assistantStyle.Render(content) + "\n"
	}
	return rendered
}

// RenderToast renders a transient status message.
func (r *Renderer) RenderToast(message string) string {
	return r.toastStyle.Render("· " + message)
}

// RenderWorkList renders the work browser body: the visible recency entries
// with the active item marked.
func (r *Renderer) RenderWorkList(entries []studiotypes.RecentWorkEntry, activeKey string) string {
	if len(entries) == 0 {
		return r.listMeta.Render("No matching work. Create something new with \\create.")
	}

	var out strings.Builder
	for i, entry := range entries {
		marker := "  "
		if entry.Key() == activeKey {
			marker = r.activeMark.Render("▸ ")
		}
		line := fmt.Sprintf("%s%2d. %s", marker, i+1, r.listTitle.Render(entry.Label))
		meta := fmt.Sprintf("%s · %s", entry.Bucket, entry.ActivityTime().Format("2006-01-02 15:04"))
		out.WriteString(line + "\n" + "      " + r.listMeta.Render(meta) + "\n")
	}
	return out.String()
}

// RenderStatusLine renders the prompt status: active tool, brand summary,
// attached work.
func (r *Renderer) RenderStatusLine(tool studiotypes.ToolConfig, brandSummary string, work *studiotypes.WorkItem) string {
	parts := []string{r.listTitle.Render(tool.Title)}
	if brandSummary != "" {
		parts = append(parts, brandSummary)
	}
	if work != nil {
		parts = append(parts, fmt.Sprintf("working on %q", work.Label))
	}
	return r.listMeta.Render(strings.Join(parts, " · "))
}

// PlainWidth returns the display width of s with ANSI escapes stripped.
func PlainWidth(s string) int {
	return len([]rune(ansi.Strip(s)))
}
