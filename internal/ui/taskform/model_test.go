package taskform

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/timetracker/internal/model"
)

func TestStartEdit_PrefillsInput(t *testing.T) {
	m := New(80, 30)
	m.StartEdit(model.Task{
		ID:          "t1",
		Title:       "Deploy",
		Description: "prod",
		JiraTicket:  "OPS-3",
		Tags:        []string{"ops", "release"},
		IsRecurring: true,
	})

	require.True(t, m.Active())
	in := m.input()
	assert.Equal(t, "Deploy", in.Title)
	assert.Equal(t, "prod", in.Description)
	assert.Equal(t, "OPS-3", in.JiraTicket)
	assert.Equal(t, []string{"ops", "release"}, in.Tags)
	assert.True(t, in.IsRecurring)
	assert.Contains(t, m.View(), "Edit Task")
}

func TestStartCreate_ResetsBindings(t *testing.T) {
	m := New(80, 30)
	m.StartEdit(model.Task{ID: "t1", Title: "Deploy"})
	m.StartCreate()

	assert.Empty(t, m.input().Title)
	assert.Contains(t, m.View(), "New Task")
}

func TestUpdate_EscCancels(t *testing.T) {
	m := New(80, 30)
	m.StartCreate()

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Active())
	require.NotNil(t, cmd)
	assert.Equal(t, CancelMsg{}, cmd())
}

func TestValidateTicket(t *testing.T) {
	for _, ok := range []string{"", "  ", "OPS-1", "ops-12", "https://acme.atlassian.net/browse/OPS-9"} {
		assert.NoError(t, validateTicket(ok), ok)
	}
	for _, bad := range []string{"nope", "123"} {
		assert.Error(t, validateTicket(bad), bad)
	}
}
