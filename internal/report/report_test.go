package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/timetracker/internal/model"
	"github.com/nhle/timetracker/internal/report"
)

var cet = time.FixedZone("CET", 3600)

func at(day, hour, min int) time.Time {
	return time.Date(2024, 3, day, hour, min, 0, 0, cet)
}

func builder() report.Builder {
	return report.Builder{
		Now:      func() time.Time { return at(15, 10, 0) },
		Location: cet,
	}
}

func taskWith(title string, sessions ...model.Session) model.Task {
	t := model.Task{ID: title, Title: title, Status: model.StatusPaused}
	for _, s := range sessions {
		t.AppendSession(s)
	}
	return t
}

func TestBuild_ClipsSessionsAtWindowEdges(t *testing.T) {
	tasks := []model.Task{
		taskWith("Night shift",
			model.NewSession(at(9, 23, 0), at(10, 1, 0)),
			model.NewSession(at(10, 23, 30), at(11, 0, 30)),
			model.NewSession(at(8, 9, 0), at(8, 10, 0)),
		),
	}

	r, err := builder().Build(tasks, "2024-03-10", "2024-03-10")
	require.NoError(t, err)
	require.Len(t, r.Entries, 1)

	sessions := r.Entries[0].Sessions
	require.Len(t, sessions, 2)

	assert.Equal(t, at(10, 0, 0), sessions[0].Start)
	assert.Equal(t, at(10, 1, 0), sessions[0].End)
	assert.Equal(t, int64(3600), sessions[0].Duration)
	assert.Equal(t, int64(7200), sessions[0].Original.Duration)

	assert.Equal(t, r.WindowEnd, sessions[1].End)
	assert.Equal(t, int64(1799), sessions[1].Duration)

	assert.Equal(t, int64(5399), r.Entries[0].Total)
}

func TestBuild_OmitsTasksOutsideWindow(t *testing.T) {
	tasks := []model.Task{
		taskWith("Before", model.NewSession(at(1, 9, 0), at(1, 10, 0))),
		taskWith("Inside", model.NewSession(at(5, 9, 0), at(5, 9, 30))),
		taskWith("Empty"),
	}

	r, err := builder().Build(tasks, "2024-03-04", "2024-03-06")
	require.NoError(t, err)
	require.Len(t, r.Entries, 1)
	assert.Equal(t, "Inside", r.Entries[0].Task.Title)
	assert.Equal(t, report.Summary{Tasks: 1, Sessions: 1, TotalSeconds: 1800}, r.Summary)
}

func TestBuild_IncludesLiveSessionWithoutPersistingIt(t *testing.T) {
	start := at(15, 9, 15)
	running := taskWith("Running", model.NewSession(at(14, 9, 0), at(14, 9, 10)))
	running.Status = model.StatusInProgress
	running.CurrentSessionStart = &start

	tasks := []model.Task{running}
	r, err := builder().Build(tasks, "2024-03-14", "2024-03-15")
	require.NoError(t, err)
	require.Len(t, r.Entries, 1)

	sessions := r.Entries[0].Sessions
	require.Len(t, sessions, 2)
	assert.False(t, sessions[0].Live)
	assert.True(t, sessions[1].Live)
	assert.Equal(t, at(15, 10, 0), sessions[1].End)
	assert.Equal(t, int64(45*60), sessions[1].Duration)
	assert.Equal(t, int64(600+45*60), r.Summary.TotalSeconds)

	assert.Len(t, tasks[0].TimeSessions, 1)
}

func TestBuild_SortsEntriesByTitleIgnoringCaseAndAccents(t *testing.T) {
	s := func(day int) model.Session { return model.NewSession(at(day, 9, 0), at(day, 9, 1)) }
	tasks := []model.Task{
		taskWith("banana", s(3)),
		taskWith("Éclair", s(2)),
		taskWith("cherry", s(4)),
		taskWith("Apple", s(5)),
		taskWith("apple", s(6)),
	}

	r, err := builder().Build(tasks, "2024-03-01", "2024-03-31")
	require.NoError(t, err)

	var titles []string
	for _, e := range r.Entries {
		titles = append(titles, e.Task.Title)
	}
	assert.Equal(t, []string{"Apple", "apple", "banana", "cherry", "Éclair"}, titles)
	assert.Equal(t, 5, r.Summary.Sessions)
}

func TestBuild_SortsSessionsByClippedStart(t *testing.T) {
	tasks := []model.Task{taskWith("A",
		model.NewSession(at(12, 14, 0), at(12, 15, 0)),
		model.NewSession(at(12, 8, 0), at(12, 9, 0)),
		model.NewSession(at(11, 22, 0), at(12, 2, 0)),
	)}

	r, err := builder().Build(tasks, "2024-03-12", "2024-03-12")
	require.NoError(t, err)

	sessions := r.Entries[0].Sessions
	require.Len(t, sessions, 3)
	assert.Equal(t, at(12, 0, 0), sessions[0].Start)
	assert.Equal(t, at(12, 8, 0), sessions[1].Start)
	assert.Equal(t, at(12, 14, 0), sessions[2].Start)
}

func TestBuild_Label(t *testing.T) {
	r, err := builder().Build(nil, "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 — 2024-03-31, generated 2024-03-15 10:00", r.Label)
	assert.Empty(t, r.Entries)
	assert.Equal(t, report.Summary{}, r.Summary)
}

func TestBuild_RejectsInvalidRanges(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{"missing start", "", "2024-03-01"},
		{"missing end", "2024-03-01", ""},
		{"malformed", "2024-3-1", "2024-03-02"},
		{"start after end", "2024-03-02", "2024-03-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := builder().Build(nil, tt.start, tt.end)
			require.Error(t, err)
			assert.True(t, model.IsValidationError(err))
		})
	}
}
