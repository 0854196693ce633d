package sync

import (
	"context"
	"errors"
	"strings"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/timetracker/internal/model"
	"github.com/nhle/timetracker/internal/source"
)

var t0 = time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

var settings = model.Settings{
	JiraURL:   "https://acme.atlassian.net",
	JiraEmail: "dev@acme.io",
	JiraToken: "secret",
}

// fakeJira is an in-memory issue tracker. Added worklogs become visible
// to later GetWorklogs calls.
type fakeJira struct {
	mu gosync.Mutex

	issue       source.Issue
	issueErr    error
	worklogErr  error
	worklogs    []source.Worklog
	added       []source.NewWorklog
	failStarted map[time.Time]error
}

func (f *fakeJira) ValidateConnection(context.Context) (string, error) {
	return "Dev User", nil
}

func (f *fakeJira) GetIssue(_ context.Context, key string) (*source.Issue, error) {
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	issue := f.issue
	issue.Key = key
	return &issue, nil
}

func (f *fakeJira) GetWorklogs(context.Context, string) ([]source.Worklog, error) {
	if f.worklogErr != nil {
		return nil, f.worklogErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]source.Worklog(nil), f.worklogs...), nil
}

func (f *fakeJira) AddWorklog(_ context.Context, _ string, wl source.NewWorklog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failStarted[wl.Started]; err != nil {
		return err
	}
	f.added = append(f.added, wl)
	secs, _ := parseTrackerDuration(wl.TimeSpent)
	f.worklogs = append(f.worklogs, source.Worklog{Started: wl.Started, TimeSpentSeconds: secs})
	return nil
}

// parseTrackerDuration understands the hour and minute values the
// reconciler sends for sessions shorter than a working day.
func parseTrackerDuration(s string) (int64, error) {
	d, err := time.ParseDuration(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		return 0, err
	}
	return int64(d / time.Second), nil
}

func newReconciler(f *fakeJira) *Reconciler {
	return NewReconciler(settings,
		WithClientFactory(func(model.Settings) source.IssueTracker { return f }),
		WithClock(func() time.Time { return t0.Add(24 * time.Hour) }),
	)
}

func linkedTask(sessions ...model.Session) *model.Task {
	task := &model.Task{
		ID:          "t1",
		Title:       "local title",
		Description: "local description",
		JiraTicket:  "OPS-1",
		Status:      model.StatusPaused,
	}
	for _, s := range sessions {
		task.AppendSession(s)
	}
	return task
}

func session(start time.Time, d time.Duration) model.Session {
	return model.NewSession(start, start.Add(d))
}

func TestReconcile_PushesAndPullsOnlyUnmatchedEntries(t *testing.T) {
	ctx := context.Background()
	shared := session(t0, time.Hour)
	localOnly := session(t0.Add(2*time.Hour), 90*time.Minute)
	remoteOnly := source.Worklog{Started: t0.Add(-24 * time.Hour), TimeSpentSeconds: 1800}

	f := &fakeJira{
		issue: source.Issue{Summary: "Remote summary", Description: "Remote body"},
		worklogs: []source.Worklog{
			{Started: shared.Start, TimeSpentSeconds: 3600},
			remoteOnly,
		},
	}
	task := linkedTask(shared, localOnly)

	result, err := newReconciler(f).Reconcile(ctx, task)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pushed)
	assert.Equal(t, 1, result.Pulled)
	assert.Empty(t, result.PushErrors)

	assert.Equal(t, "Remote summary", task.Title)
	assert.Equal(t, "Remote body", task.Description)
	assert.Equal(t, t0.Add(24*time.Hour), task.UpdatedAt)

	require.Len(t, f.added, 1)
	assert.Equal(t, "1h 30m", f.added[0].TimeSpent)
	assert.Equal(t, localOnly.Start, f.added[0].Started)

	require.Len(t, task.TimeSessions, 3)
	pulled := task.TimeSessions[2]
	assert.Equal(t, remoteOnly.Started, pulled.Start)
	assert.Equal(t, remoteOnly.Started.Add(30*time.Minute), pulled.End)
	assert.Equal(t, int64(1800), pulled.Duration)
	assert.Equal(t, task.SessionTotal(), task.TotalTime)

	// A second pass finds nothing left to exchange.
	result, err = newReconciler(f).Reconcile(ctx, task)
	require.NoError(t, err)
	assert.Zero(t, result.Pushed)
	assert.Zero(t, result.Pulled)
	assert.Len(t, task.TimeSessions, 3)
}

func TestReconcile_FullyMatchedDoesNothing(t *testing.T) {
	s1 := session(t0, time.Hour)
	s2 := session(t0.Add(3*time.Hour), 15*time.Minute)
	f := &fakeJira{
		issue: source.Issue{Summary: "Summary"},
		worklogs: []source.Worklog{
			{Started: s2.Start, TimeSpentSeconds: 900},
			{Started: s1.Start, TimeSpentSeconds: 3600},
		},
	}
	task := linkedTask(s1, s2)

	result, err := newReconciler(f).Reconcile(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, &Result{}, result)
	assert.Empty(t, f.added)
	assert.Len(t, task.TimeSessions, 2)
}

func TestReconcile_MatchesInstantsAcrossZones(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	s := session(t0, time.Hour)
	f := &fakeJira{
		issue:    source.Issue{Summary: "Summary"},
		worklogs: []source.Worklog{{Started: t0.In(berlin), TimeSpentSeconds: 3600}},
	}

	result, err := newReconciler(f).Reconcile(context.Background(), linkedTask(s))
	require.NoError(t, err)
	assert.Zero(t, result.Pushed)
	assert.Zero(t, result.Pulled)
}

func TestReconcile_PushFailureIsNotFatal(t *testing.T) {
	bad := session(t0, time.Hour)
	good := session(t0.Add(2*time.Hour), 2*time.Hour)
	f := &fakeJira{
		issue:    source.Issue{Summary: "Summary"},
		worklogs: []source.Worklog{{Started: t0.Add(-time.Hour), TimeSpentSeconds: 600}},
		failStarted: map[time.Time]error{
			bad.Start: &source.StatusError{Method: "POST", StatusCode: 400, Body: "timeSpent: invalid"},
		},
	}
	task := linkedTask(bad, good)

	result, err := newReconciler(f).Reconcile(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pushed)
	assert.Equal(t, 1, result.Pulled)
	require.Len(t, result.PushErrors, 1)

	pe := result.PushErrors[0]
	assert.Equal(t, bad, pe.Session)
	assert.Equal(t, 400, pe.StatusCode)
	assert.Equal(t, "timeSpent: invalid", pe.Body)
}

func TestReconcile_FetchFailures(t *testing.T) {
	notFound := &source.StatusError{Method: "GET", StatusCode: 404, Body: "Issue does not exist"}

	tests := []struct {
		name       string
		fake       *fakeJira
		wantStatus int
	}{
		{
			name:       "issue",
			fake:       &fakeJira{issueErr: notFound},
			wantStatus: 404,
		},
		{
			name:       "worklogs",
			fake:       &fakeJira{issue: source.Issue{Summary: "S"}, worklogErr: errors.New("connection reset")},
			wantStatus: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := linkedTask(session(t0, time.Hour))

			_, err := newReconciler(tt.fake).Reconcile(context.Background(), task)
			require.Error(t, err)

			var fe *FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.wantStatus, fe.StatusCode)
			assert.Empty(t, tt.fake.added)
			assert.Len(t, task.TimeSessions, 1)
		})
	}
}

func TestReconcile_NotConfigured(t *testing.T) {
	f := &fakeJira{}

	task := linkedTask()
	task.JiraTicket = ""
	_, err := newReconciler(f).Reconcile(context.Background(), task)
	assert.True(t, errors.Is(err, ErrNotConfigured))

	r := NewReconciler(model.Settings{JiraURL: "https://acme.atlassian.net", JiraEmail: "dev@acme.io"},
		WithClientFactory(func(model.Settings) source.IssueTracker { return f }))
	_, err = r.Reconcile(context.Background(), linkedTask())
	assert.True(t, errors.Is(err, ErrNotConfigured))

	_, err = r.TestConnection(context.Background())
	assert.True(t, model.IsValidationError(err))
}

func TestReconcile_EmptyRemoteDescriptionKeepsLocal(t *testing.T) {
	f := &fakeJira{issue: source.Issue{Summary: "Remote"}}
	task := linkedTask()

	_, err := newReconciler(f).Reconcile(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, "Remote", task.Title)
	assert.Equal(t, "local description", task.Description)
}

func TestTestConnection(t *testing.T) {
	name, err := newReconciler(&fakeJira{}).TestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dev User", name)
}
