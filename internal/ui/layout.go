package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timetracker/internal/theme"
)

// Layout manages the multi-panel terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ListWidth returns the width of the task list column: a third of the
// screen, but never narrower than 28 columns.
func (l Layout) ListWidth() int {
	w := l.Width / 3
	if w < 28 {
		w = 28
	}
	if w > l.Width {
		w = l.Width
	}
	return w
}

// DetailWidth returns the width left for the detail column.
func (l Layout) DetailWidth() int {
	w := l.Width - l.ListWidth()
	if w < 0 {
		return 0
	}
	return w
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the top header bar with a title on the left and
// a status (usually the running timer) on the right.
func (l Layout) RenderHeader(title string, status string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	statusRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(status)

	gap := l.Width -
		lipgloss.Width(titleRendered) -
		lipgloss.Width(statusRendered)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.HeaderStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		filler,
		statusRendered,
	)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.StatusBarStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderColumns places the list and detail panes side by side, each
// clipped to the content height.
func (l Layout) RenderColumns(list, detail string) string {
	h := l.ContentHeight()
	if h < 0 {
		h = 0
	}
	left := lipgloss.NewStyle().Width(l.ListWidth()).MaxHeight(h).Render(list)
	right := lipgloss.NewStyle().Width(l.DetailWidth()).MaxHeight(h).Render(detail)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
