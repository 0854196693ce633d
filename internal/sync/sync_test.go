package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/timetracker/internal/model"
	"github.com/nhle/timetracker/internal/source"
	"github.com/nhle/timetracker/internal/tracker"
	"github.com/nhle/timetracker/tests/testutil"
)

func TestSync_PersistsReconciledTask(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewTestTaskStore(t)

	var messages []string
	tr := tracker.New(repo,
		tracker.WithClock(func() time.Time { return t0 }),
		tracker.WithNotifier(func(n model.Notification) { messages = append(messages, n.Message) }),
	)
	require.NoError(t, tr.Load(ctx))

	task, err := tr.CreateTask(ctx, tracker.TaskInput{Title: "local", JiraTicket: "OPS-1"})
	require.NoError(t, err)

	f := &fakeJira{
		issue:    source.Issue{Summary: "From Jira"},
		worklogs: []source.Worklog{{Started: t0.Add(-time.Hour), TimeSpentSeconds: 1200}},
	}
	result, err := Sync(ctx, tr, newReconciler(f), task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pulled)
	assert.Contains(t, messages, "Synced with Jira: 0 pushed, 1 pulled")

	// The store holds the reconciled task.
	reloaded := tracker.New(repo, tracker.WithClock(func() time.Time { return t0 }))
	require.NoError(t, reloaded.Load(ctx))
	got, err := reloaded.Task(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "From Jira", got.Title)
	assert.Equal(t, int64(1200), got.TotalTime)
	assert.Equal(t, model.StatusTodo, got.Status)
}

func TestSync_FetchFailureLeavesTaskUntouched(t *testing.T) {
	ctx := context.Background()
	var messages []string
	tr := tracker.New(testutil.NewTestTaskStore(t),
		tracker.WithNotifier(func(n model.Notification) { messages = append(messages, n.Message) }),
	)
	require.NoError(t, tr.Load(ctx))

	task, err := tr.CreateTask(ctx, tracker.TaskInput{Title: "local", JiraTicket: "OPS-1"})
	require.NoError(t, err)

	f := &fakeJira{
		issue:      source.Issue{Summary: "From Jira"},
		worklogErr: &source.StatusError{StatusCode: 500, Body: "boom"},
	}
	_, err = Sync(ctx, tr, newReconciler(f), task.ID)
	require.Error(t, err)

	got, err := tr.Task(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "local", got.Title)
	require.NotEmpty(t, messages)
	assert.Contains(t, messages[len(messages)-1], "Failed to sync with Jira")
}

func TestOnTimerStopped_SyncsAutoPausedTask(t *testing.T) {
	ctx := context.Background()
	now := t0
	f := &fakeJira{issue: source.Issue{Summary: "Linked"}}
	r := newReconciler(f)

	var tr *tracker.Tracker
	tr = tracker.New(testutil.NewTestTaskStore(t),
		tracker.WithClock(func() time.Time { return now }),
		tracker.WithTransitionHook(func(ctx context.Context, task model.Task, from, to model.Status) {
			OnTimerStopped(tr, r)(ctx, task, from, to)
		}),
	)
	require.NoError(t, tr.Load(ctx))

	linked, err := tr.CreateTask(ctx, tracker.TaskInput{Title: "Linked", JiraTicket: "OPS-1"})
	require.NoError(t, err)
	unlinked, err := tr.CreateTask(ctx, tracker.TaskInput{Title: "Unlinked"})
	require.NoError(t, err)

	_, err = tr.RequestStatus(ctx, linked.ID, model.StatusInProgress)
	require.NoError(t, err)
	assert.Empty(t, f.added)

	now = now.Add(45 * time.Minute)
	_, err = tr.RequestStatus(ctx, unlinked.ID, model.StatusInProgress)
	require.NoError(t, err)

	require.Len(t, f.added, 1)
	assert.Equal(t, "45m", f.added[0].TimeSpent)
	assert.Equal(t, t0, f.added[0].Started)

	got, err := tr.Task(linked.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaused, got.Status)
	assert.Len(t, got.TimeSessions, 1)

	active, ok := tr.Active()
	require.True(t, ok)
	assert.Equal(t, unlinked.ID, active.ID)
}

func TestOnTimerStopped_SyncsOnPauseOnly(t *testing.T) {
	ctx := context.Background()
	now := t0
	f := &fakeJira{issue: source.Issue{Summary: "Linked"}}
	r := newReconciler(f)

	var tr *tracker.Tracker
	tr = tracker.New(testutil.NewTestTaskStore(t),
		tracker.WithClock(func() time.Time { return now }),
		tracker.WithTransitionHook(func(ctx context.Context, task model.Task, from, to model.Status) {
			OnTimerStopped(tr, r)(ctx, task, from, to)
		}),
	)
	require.NoError(t, tr.Load(ctx))

	task, err := tr.CreateTask(ctx, tracker.TaskInput{Title: "Linked", JiraTicket: "OPS-1"})
	require.NoError(t, err)

	_, err = tr.RequestStatus(ctx, task.ID, model.StatusInProgress)
	require.NoError(t, err)
	_, err = tr.RequestStatus(ctx, task.ID, model.StatusTodo)
	require.NoError(t, err)
	assert.Len(t, f.added, 0, "a stop with no recorded time has nothing to push")

	_, err = tr.RequestStatus(ctx, task.ID, model.StatusInProgress)
	require.NoError(t, err)
	now = now.Add(20 * time.Minute)
	_, err = tr.RequestStatus(ctx, task.ID, model.StatusPaused)
	require.NoError(t, err)

	require.Len(t, f.added, 1)
	assert.Equal(t, "20m", f.added[0].TimeSpent)
}

func TestMerge_KeepsSessionsRecordedDuringSync(t *testing.T) {
	recorded := session(t0, time.Hour)
	duringSync := session(t0.Add(2*time.Hour), time.Minute)
	pulled := session(t0.Add(-5*time.Hour), 30*time.Minute)

	current := linkedTask(recorded, duringSync)
	synced := *linkedTask(recorded, pulled)
	synced.Title = "Remote"

	added := Merge(current, synced)
	assert.Equal(t, 1, added)
	assert.Equal(t, "Remote", current.Title)
	require.Len(t, current.TimeSessions, 3)
	assert.Equal(t, pulled, current.TimeSessions[2])
	assert.Equal(t, current.SessionTotal(), current.TotalTime)
}
