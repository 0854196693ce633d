package detail

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timetracker/internal/ui"
	"github.com/nhle/timetracker/internal/view"
)

// Model is the scrollable detail pane. Only paging keys scroll it, so
// j/k stay free for list navigation.
type Model struct {
	viewport viewport.Model
	taskID   string
	width    int
	height   int
}

// New creates a detail pane of the given size.
func New(width, height int) Model {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f"),
			key.WithHelp("pgdn", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("pgup", "scroll up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "½ page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "½ page up"),
		),
	}

	return Model{
		viewport: vp,
		width:    width,
		height:   height,
	}
}

// SetDetail re-renders the pane. The scroll position is kept while the
// same task stays selected and reset when the selection changes.
func (m *Model) SetDetail(d *view.Detail) {
	id := ""
	if d != nil {
		id = d.ID
	}
	m.viewport.SetContent(ui.RenderDetail(d, m.width))
	if id != m.taskID {
		m.taskID = id
		m.viewport.GotoTop()
	}
}

// Update delegates scrolling keys to the viewport.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the visible part of the pane.
func (m Model) View() string {
	return m.viewport.View()
}

// AtTop reports whether the pane is scrolled to the top.
func (m Model) AtTop() bool {
	return m.viewport.AtTop()
}

// SetSize updates the pane dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}
