package taskform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timetracker/internal/crossref"
	"github.com/nhle/timetracker/internal/model"
	"github.com/nhle/timetracker/internal/theme"
	"github.com/nhle/timetracker/internal/tracker"
)

// SubmittedMsg is dispatched when the form completes. TaskID is empty
// when creating a task.
type SubmittedMsg struct {
	TaskID string
	Input  tracker.TaskInput
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	ticket      string
	tags        string
	recurring   bool
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	editID string
	width  int
	height int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Active reports whether a form is open.
func (m Model) Active() bool {
	return m.form != nil
}

// StartCreate opens an empty form.
func (m *Model) StartCreate() tea.Cmd {
	m.editID = ""
	*m.fb = formBindings{}
	m.form = m.build()
	return m.form.Init()
}

// StartEdit opens the form prefilled from task.
func (m *Model) StartEdit(task model.Task) tea.Cmd {
	m.editID = task.ID
	*m.fb = formBindings{
		title:       task.Title,
		description: task.Description,
		ticket:      task.JiraTicket,
		tags:        strings.Join(task.Tags, ", "),
		recurring:   task.IsRecurring,
	}
	m.form = m.build()
	return m.form.Init()
}

// Close discards the open form.
func (m *Model) Close() {
	m.form = nil
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		submitted := SubmittedMsg{TaskID: m.editID, Input: m.input()}
		m.form = nil
		return m, func() tea.Msg { return submitted }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editID != "" {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) build() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What are you working on?").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details...").
				Value(&m.fb.description),
			huh.NewInput().
				Title("Jira Ticket").
				Placeholder("PROJ-123 or a browse URL (optional)").
				Value(&m.fb.ticket).
				Validate(validateTicket),
			huh.NewInput().
				Title("Tags").
				Placeholder("comma, separated").
				Value(&m.fb.tags),
			huh.NewConfirm().
				Title("Recurring task?").
				Value(&m.fb.recurring),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight()).WithShowHelp(false)
}

func (m Model) input() tracker.TaskInput {
	return tracker.TaskInput{
		Title:       m.fb.title,
		Description: m.fb.description,
		JiraTicket:  m.fb.ticket,
		Tags:        tracker.ParseTags(m.fb.tags),
		IsRecurring: m.fb.recurring,
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

// validateTicket accepts an empty value or anything that normalizes to an
// issue key.
func validateTicket(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if keys := crossref.ExtractJiraKeys(crossref.NormalizeTicket(s)); len(keys) == 0 {
		return fmt.Errorf("expected an issue key like PROJ-123")
	}
	return nil
}
