package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/nhle/timetracker/internal/model"
	"github.com/nhle/timetracker/internal/view"
)

func TestLayout_Columns(t *testing.T) {
	l := NewLayout(120, 40)
	assert.Equal(t, 38, l.ContentHeight())
	assert.Equal(t, 40, l.ListWidth())
	assert.Equal(t, 80, l.DetailWidth())

	narrow := NewLayout(20, 10)
	assert.Equal(t, 20, narrow.ListWidth())
	assert.Equal(t, 0, narrow.DetailWidth())
}

func TestLayout_HeaderSpansWidth(t *testing.T) {
	l := NewLayout(60, 20)
	header := l.RenderHeader("Time Tracker", "00:12:00")
	assert.Equal(t, 60, lipgloss.Width(header))

	bar := l.RenderStatusBar("q quit")
	assert.Equal(t, 60, lipgloss.Width(bar))
}

func TestRenderList(t *testing.T) {
	out := RenderList("Active", []view.Item{
		{ID: "a", Title: "Write docs", Status: model.StatusInProgress, StatusLabel: "IN PROGRESS", Elapsed: "00:01:00", Running: true, Selected: true},
		{ID: "b", Title: "Review", Status: model.StatusTodo, StatusLabel: "TODO", Elapsed: "00:00:00", Ticket: "OPS-1"},
	})
	assert.Contains(t, out, "Active (2)")
	assert.Contains(t, out, "Write docs")
	assert.Contains(t, out, "OPS-1")

	assert.Contains(t, RenderList("Recent", nil), "none")
}

func TestRenderDetail(t *testing.T) {
	assert.Contains(t, RenderDetail(nil, 80), "Select a task")

	out := RenderDetail(&view.Detail{
		Title:       "Write docs",
		Status:      model.StatusPaused,
		StatusLabel: "PAUSED",
		Timer:       "01:00:00",
		Actions:     view.Actions(model.StatusPaused),
		Sessions:    []view.SessionRow{{When: "Just now", Range: "09:00 - 10:00", Duration: "01:00:00"}},
	}, 80)
	assert.Contains(t, out, "Write docs")
	assert.Contains(t, out, "Start · Complete")
	assert.Contains(t, out, "09:00 - 10:00")
	assert.True(t, strings.Contains(out, "No comments yet"))

	linked := RenderDetail(&view.Detail{
		Title:     "Write docs",
		Ticket:    "DOC-7",
		TicketURL: "https://acme.atlassian.net/browse/DOC-7",
	}, 120)
	assert.Contains(t, linked, "https://acme.atlassian.net/browse/DOC-7")
}
