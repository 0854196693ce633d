// Package sync reconciles a task's local sessions with the worklog of its
// linked issue: local sessions missing remotely are pushed, remote
// entries missing locally are pulled.
package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nhle/timetracker/internal/model"
	"github.com/nhle/timetracker/internal/source"
	"github.com/nhle/timetracker/internal/source/jira"
	"github.com/nhle/timetracker/internal/timefmt"
)

// maxConcurrentPushes bounds the worklog submissions in flight at once.
const maxConcurrentPushes = 4

// ErrNotConfigured is returned when the task has no linked ticket or the
// remote credentials are incomplete.
var ErrNotConfigured = errors.New("sync not configured: missing ticket or Jira credentials")

// FetchError aborts a reconcile: the issue or its worklog could not be
// read. StatusCode is zero for transport failures.
type FetchError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("fetching %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("fetching %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PushError records a local session that could not be submitted. Push
// errors never abort a reconcile.
type PushError struct {
	Session    model.Session
	StatusCode int
	Body       string
	Err        error
}

func (e *PushError) Error() string {
	return fmt.Sprintf("pushing session started %s: %v", e.Session.Start.Format(time.RFC3339), e.Err)
}

func (e *PushError) Unwrap() error { return e.Err }

// Result summarizes a reconcile.
type Result struct {
	Pushed     int
	Pulled     int
	PushErrors []*PushError
}

// ClientFactory builds the remote client for a set of credentials.
type ClientFactory func(settings model.Settings) source.IssueTracker

// JiraClientFactory connects to Jira Cloud.
func JiraClientFactory(settings model.Settings) source.IssueTracker {
	return jira.NewAdapter(settings.JiraURL, settings.JiraEmail, settings.JiraToken)
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClientFactory replaces the Jira client, typically with a fake.
func WithClientFactory(f ClientFactory) Option {
	return func(r *Reconciler) { r.factory = f }
}

// WithCalendar sets the working calendar used to render pushed durations.
func WithCalendar(cal timefmt.Calendar) Option {
	return func(r *Reconciler) { r.calendar = cal }
}

// WithClock overrides the time source used for updatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// Reconciler synchronizes tasks with their linked issues.
type Reconciler struct {
	settings model.Settings
	factory  ClientFactory
	calendar timefmt.Calendar
	now      func() time.Time
}

// NewReconciler creates a Reconciler using settings for every call.
func NewReconciler(settings model.Settings, opts ...Option) *Reconciler {
	r := &Reconciler{
		settings: settings,
		factory:  JiraClientFactory,
		calendar: timefmt.DefaultCalendar,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) client() (source.IssueTracker, error) {
	if !r.settings.Configured() {
		return nil, ErrNotConfigured
	}
	return r.factory(r.settings), nil
}

// TestConnection checks the credentials and returns the display name of
// the authenticated user.
func (r *Reconciler) TestConnection(ctx context.Context) (string, error) {
	if err := r.settings.Validate(); err != nil {
		return "", err
	}
	client, err := r.client()
	if err != nil {
		return "", err
	}
	return client.ValidateConnection(ctx)
}

// Reconcile synchronizes task with its linked issue in place. The issue's
// summary and description replace the local ones. Sessions are matched to
// worklog entries by exact start instant. The caller persists task.
func (r *Reconciler) Reconcile(ctx context.Context, task *model.Task) (*Result, error) {
	key := strings.TrimSpace(task.JiraTicket)
	if key == "" {
		return nil, fmt.Errorf("task %q has no linked ticket: %w", task.Title, ErrNotConfigured)
	}

	client, err := r.client()
	if err != nil {
		return nil, err
	}

	issue, err := client.GetIssue(ctx, key)
	if err != nil {
		return nil, newFetchError("issue "+key, err)
	}

	if issue.Summary != "" {
		task.Title = issue.Summary
	}
	if issue.Description != "" {
		task.Description = issue.Description
	}
	task.UpdatedAt = model.Instant(r.now())

	worklogs, err := client.GetWorklogs(ctx, key)
	if err != nil {
		return nil, newFetchError("worklogs of "+key, err)
	}

	remote := make(map[int64]struct{}, len(worklogs))
	for _, wl := range worklogs {
		remote[wl.Started.UnixNano()] = struct{}{}
	}
	local := make(map[int64]struct{}, len(task.TimeSessions))
	for _, s := range task.TimeSessions {
		local[s.Start.UnixNano()] = struct{}{}
	}

	var toPush []model.Session
	for _, s := range task.TimeSessions {
		if _, ok := remote[s.Start.UnixNano()]; !ok {
			toPush = append(toPush, s)
		}
	}

	// Pushes only read toPush, so the pull below may append to
	// task.TimeSessions while they are in flight.
	pushErrs := make([]*PushError, len(toPush))
	var g errgroup.Group
	g.SetLimit(maxConcurrentPushes)
	for i, s := range toPush {
		g.Go(func() error {
			pushErrs[i] = r.push(ctx, client, key, s)
			return nil
		})
	}

	result := &Result{}
	for _, wl := range worklogs {
		if _, ok := local[wl.Started.UnixNano()]; ok {
			continue
		}
		start := model.Instant(wl.Started)
		task.AppendSession(model.Session{
			Start:    start,
			End:      start.Add(time.Duration(wl.TimeSpentSeconds) * time.Second),
			Duration: wl.TimeSpentSeconds,
		})
		result.Pulled++
	}

	_ = g.Wait()

	for _, pe := range pushErrs {
		if pe != nil {
			result.PushErrors = append(result.PushErrors, pe)
			continue
		}
		result.Pushed++
	}

	return result, nil
}

func (r *Reconciler) push(ctx context.Context, client source.IssueTracker, key string, s model.Session) *PushError {
	err := client.AddWorklog(ctx, key, source.NewWorklog{
		TimeSpent: timefmt.TrackerDuration(s.Duration, r.calendar),
		Started:   s.Start,
	})
	if err == nil {
		return nil
	}
	code, body := source.StatusOf(err)
	return &PushError{Session: s, StatusCode: code, Body: body, Err: err}
}

func newFetchError(op string, err error) *FetchError {
	code, body := source.StatusOf(err)
	return &FetchError{Op: op, StatusCode: code, Body: body, Err: err}
}
