package commentbox

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timetracker/internal/theme"
)

// SubmittedMsg is emitted when the user enters a non-blank comment.
type SubmittedMsg struct {
	TaskID string
	Text   string
}

// CancelMsg is emitted on esc.
type CancelMsg struct{}

// Model is a single-line comment input attached to one task.
type Model struct {
	input  textinput.Model
	taskID string
	title  string
	width  int
}

// New creates a comment input.
func New(width int) Model {
	ti := textinput.New()
	ti.Placeholder = "add a comment..."
	ti.Prompt = "› "
	ti.CharLimit = 500
	ti.Width = width - 6

	return Model{
		input: ti,
		width: width,
	}
}

// Active reports whether the input is open.
func (m Model) Active() bool {
	return m.taskID != ""
}

// Open focuses the input for the given task.
func (m *Model) Open(taskID, title string) tea.Cmd {
	m.taskID = taskID
	m.title = title
	m.input.Reset()
	return tea.Batch(m.input.Focus(), textinput.Blink)
}

// Close blurs and clears the input.
func (m *Model) Close() {
	m.taskID = ""
	m.input.Reset()
	m.input.Blur()
}

// Update handles messages for the comment input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.Active() {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			submitted := SubmittedMsg{TaskID: m.taskID, Text: text}
			m.Close()
			return m, func() tea.Msg { return submitted }
		case "esc":
			m.Close()
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the input box.
func (m Model) View() string {
	if !m.Active() {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Comment on "+m.title),
		m.input.View(),
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the input width.
func (m *Model) SetSize(width int) {
	m.width = width
	m.input.Width = width - 6
}
