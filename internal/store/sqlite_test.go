package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/timetracker/internal/model"
	"github.com/nhle/timetracker/internal/store"
	"github.com/nhle/timetracker/tests/testutil"
)

func TestSQLiteStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	var missing map[string]string
	found, err := s.Get(ctx, "absent", &missing)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, missing)

	require.NoError(t, s.Set(ctx, "greeting", map[string]string{"hello": "world"}))
	require.NoError(t, s.Set(ctx, "greeting", map[string]string{"hello": "again"}))

	var got map[string]string
	found, err = s.Get(ctx, "greeting", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "again", got["hello"])

	require.NoError(t, s.Delete(ctx, "greeting"))
	require.NoError(t, s.Delete(ctx, "greeting"))

	found, err = s.Get(ctx, "greeting", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tt.db")

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, store.KeySettings, model.Settings{JiraURL: "https://example.atlassian.net"}))
	require.NoError(t, s.Close())

	// Re-opening must not re-apply migrations or lose data.
	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	var settings model.Settings
	found, err := s.Get(ctx, store.KeySettings, &settings)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "https://example.atlassian.net", settings.JiraURL)
}

func TestTaskStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ts := testutil.NewTestTaskStore(t)

	tasks, err := ts.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NotNil(t, tasks)

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	running := start.Add(2 * time.Hour)
	want := []model.Task{
		{
			ID:         "a",
			Title:      "Write report",
			JiraTicket: "OPS-7",
			Tags:       []string{"writing", "q1"},
			Status:     model.StatusPaused,
			CreatedAt:  start,
			UpdatedAt:  start,
			TimeSessions: []model.Session{
				model.NewSession(start, start.Add(90*time.Minute)),
			},
			TotalTime: 5400,
			Comments: []model.Comment{
				{ID: "c1", Text: "draft done", CreatedAt: start},
			},
		},
		{
			ID:                  "b",
			Title:               "Review",
			Status:              model.StatusInProgress,
			CreatedAt:           start,
			UpdatedAt:           running,
			CurrentSessionStart: &running,
		},
	}
	require.NoError(t, ts.SaveTasks(ctx, want))

	got, err := ts.LoadTasks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Write report", got[0].Title)
	assert.Equal(t, []string{"writing", "q1"}, got[0].Tags)
	assert.Equal(t, int64(5400), got[0].TotalTime)
	assert.True(t, got[0].TimeSessions[0].Start.Equal(start))
	assert.Nil(t, got[0].CurrentSessionStart)
	require.NotNil(t, got[1].CurrentSessionStart)
	assert.True(t, got[1].CurrentSessionStart.Equal(running))
}

func TestTaskStore_Settings(t *testing.T) {
	ctx := context.Background()
	ts := testutil.NewTestTaskStore(t)

	settings, err := ts.LoadSettings(ctx)
	require.NoError(t, err)
	assert.False(t, settings.Configured())

	want := model.Settings{
		JiraURL:   "https://example.atlassian.net",
		JiraEmail: "me@example.com",
		JiraToken: "secret",
	}
	require.NoError(t, ts.SaveSettings(ctx, want))

	settings, err = ts.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, settings)

	require.NoError(t, ts.ClearSettings(ctx))
	settings, err = ts.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Settings{}, settings)
}
