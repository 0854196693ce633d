package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/timetracker/internal/crossref"
	"github.com/nhle/timetracker/internal/model"
)

// Repository persists the whole task collection.
type Repository interface {
	LoadTasks(ctx context.Context) ([]model.Task, error)
	SaveTasks(ctx context.Context, tasks []model.Task) error
}

// Notifier receives user-facing notifications after a mutation commits.
type Notifier func(model.Notification)

// TransitionHook is called after a status change has been persisted, once
// per task whose status changed (including tasks paused to make room for
// a newly started one).
type TransitionHook func(ctx context.Context, task model.Task, from, to model.Status)

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithConfirm installs the confirmation hook for gated transitions.
func WithConfirm(confirm ConfirmFunc) Option {
	return func(t *Tracker) { t.confirm = confirm }
}

// WithNotifier installs the notification sink.
func WithNotifier(n Notifier) Option {
	return func(t *Tracker) { t.notify = n }
}

// WithTransitionHook registers a hook run after every persisted status
// change.
func WithTransitionHook(h TransitionHook) Option {
	return func(t *Tracker) { t.hooks = append(t.hooks, h) }
}

// Tracker owns the task collection and the running timer. Each mutation
// is applied to a copy of the current state, persisted with a single
// SaveTasks call and only then committed, so a failed write leaves the
// in-memory state unchanged.
//
// A Tracker is not safe for concurrent use.
type Tracker struct {
	repo    Repository
	state   Context
	now     func() time.Time
	confirm ConfirmFunc
	notify  Notifier
	hooks   []TransitionHook
	newID   func() string
}

// New creates a Tracker backed by repo. Call Load before use.
func New(repo Repository, opts ...Option) *Tracker {
	t := &Tracker{
		repo:  repo,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Load reads the collection from the repository and restores the running
// timer. Any repair Restore makes is persisted immediately.
func (t *Tracker) Load(ctx context.Context) error {
	tasks, err := t.repo.LoadTasks(ctx)
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}

	state, changed := Restore(tasks, t.now())
	if len(changed) > 0 {
		if err := t.repo.SaveTasks(ctx, state.Tasks); err != nil {
			return fmt.Errorf("saving restored tasks: %w", err)
		}
	}

	t.state = state
	return nil
}

// Tasks returns a copy of the collection in storage order.
func (t *Tracker) Tasks() []model.Task {
	return t.state.Clone().Tasks
}

// Context returns a copy of the current application context.
func (t *Tracker) Context() Context {
	return t.state.Clone()
}

// Task returns a copy of the task with the given id.
func (t *Tracker) Task(id string) (model.Task, error) {
	idx := t.state.Index(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t.state.Tasks[idx].Clone(), nil
}

// Active returns the running task, if any.
func (t *Tracker) Active() (model.Task, bool) {
	if t.state.ActiveTaskID == "" {
		return model.Task{}, false
	}
	task, err := t.Task(t.state.ActiveTaskID)
	if err != nil {
		return model.Task{}, false
	}
	return task, true
}

// TaskInput carries the user-editable fields of a task.
type TaskInput struct {
	Title       string
	Description string
	JiraTicket  string
	Tags        []string
	IsRecurring bool
}

// ParseTags splits a comma-separated tag list, trimming each entry and
// dropping empties.
func ParseTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (in TaskInput) normalize() TaskInput {
	out := TaskInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		JiraTicket:  crossref.NormalizeTicket(in.JiraTicket),
		IsRecurring: in.IsRecurring,
	}
	for _, tag := range in.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out.Tags = append(out.Tags, tag)
		}
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}

// CreateTask validates in and appends a new TODO task.
func (t *Tracker) CreateTask(ctx context.Context, in TaskInput) (model.Task, error) {
	in = in.normalize()
	now := model.Instant(t.now())

	task := model.Task{
		ID:           t.newID(),
		Title:        in.Title,
		Description:  in.Description,
		JiraTicket:   in.JiraTicket,
		Tags:         in.Tags,
		IsRecurring:  in.IsRecurring,
		Status:       model.StatusTodo,
		CreatedAt:    now,
		UpdatedAt:    now,
		TimeSessions: []model.Session{},
		Comments:     []model.Comment{},
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}

	next := t.state.Clone()
	next.Tasks = append(next.Tasks, task)
	if err := t.commit(ctx, next); err != nil {
		return model.Task{}, err
	}

	t.emit(model.Notification{
		Level: model.LevelSuccess, TaskID: task.ID, Message: "Task created", CreatedAt: now,
	})
	return task.Clone(), nil
}

// UpdateTask replaces the editable fields of an existing task. Identity,
// status, sessions, comments and totals are preserved.
func (t *Tracker) UpdateTask(ctx context.Context, id string, in TaskInput) (model.Task, error) {
	in = in.normalize()
	if err := (model.Task{Title: in.Title}).Validate(); err != nil {
		return model.Task{}, err
	}

	next := t.state.Clone()
	idx := next.Index(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	now := model.Instant(t.now())
	task := &next.Tasks[idx]
	task.Title = in.Title
	task.Description = in.Description
	task.JiraTicket = in.JiraTicket
	task.Tags = in.Tags
	task.IsRecurring = in.IsRecurring
	task.UpdatedAt = now

	if err := t.commit(ctx, next); err != nil {
		return model.Task{}, err
	}

	t.emit(model.Notification{
		Level: model.LevelSuccess, TaskID: id, Message: "Task updated", CreatedAt: now,
	})
	return next.Tasks[idx].Clone(), nil
}

// DeleteTask removes a task. A running task has its open session closed
// and recorded first, and the active timer is cleared.
func (t *Tracker) DeleteTask(ctx context.Context, id string) error {
	next := t.state.Clone()
	idx := next.Index(id)
	if idx < 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	now := model.Instant(t.now())
	var notes []model.Notification

	if next.Tasks[idx].IsRunning() {
		if closed, stopped := leaveInProgress(&next.Tasks[idx], model.StatusPaused, now); stopped {
			notes = append(notes, stoppedNotice(id, closed, now))
		}
	}
	if next.ActiveTaskID == id {
		next.ActiveTaskID = ""
		next.SessionStart = nil
	}

	next.Tasks = append(next.Tasks[:idx], next.Tasks[idx+1:]...)
	if err := t.commit(ctx, next); err != nil {
		return err
	}

	notes = append(notes, model.Notification{
		Level: model.LevelInfo, TaskID: id, Message: "Task deleted", CreatedAt: now,
	})
	t.emit(notes...)
	return nil
}

// RequestStatus applies a status transition, consulting the confirmation
// hook for gated changes. No-ops and declined confirmations do not touch
// storage.
func (t *Tracker) RequestStatus(ctx context.Context, id string, to model.Status) (Outcome, error) {
	return t.RequestStatusWith(ctx, id, to, t.confirm)
}

// RequestStatusWith is RequestStatus with an explicit confirmation hook,
// for callers that have already asked the user.
func (t *Tracker) RequestStatusWith(ctx context.Context, id string, to model.Status, confirm ConfirmFunc) (Outcome, error) {
	next := t.state.Clone()
	out, err := Transition(&next, id, to, t.now(), confirm)
	if err != nil || !out.Applied {
		return out, err
	}

	if err := t.commit(ctx, next); err != nil {
		return Outcome{From: out.From, To: out.To}, err
	}

	t.emit(out.Notifications...)

	for _, paused := range out.Paused {
		t.runHooks(ctx, paused, model.StatusInProgress, model.StatusPaused)
	}
	t.runHooks(ctx, next.Tasks[next.Index(id)], out.From, out.To)

	return out, nil
}

// AddComment attaches a comment to a task. Blank text is rejected.
func (t *Tracker) AddComment(ctx context.Context, taskID, text string) (model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Comment{}, &model.ValidationError{Field: "comment", Message: "comment text is required"}
	}

	next := t.state.Clone()
	idx := next.Index(taskID)
	if idx < 0 {
		return model.Comment{}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}

	now := model.Instant(t.now())
	comment := model.Comment{ID: t.newID(), Text: text, CreatedAt: now}
	next.Tasks[idx].Comments = append(next.Tasks[idx].Comments, comment)
	next.Tasks[idx].UpdatedAt = now

	if err := t.commit(ctx, next); err != nil {
		return model.Comment{}, err
	}

	t.emit(model.Notification{
		Level: model.LevelSuccess, TaskID: taskID, Message: "Comment added", CreatedAt: now,
	})
	return comment, nil
}

// DeleteComment removes a comment from a task.
func (t *Tracker) DeleteComment(ctx context.Context, taskID, commentID string) error {
	next := t.state.Clone()
	idx := next.Index(taskID)
	if idx < 0 {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}

	task := &next.Tasks[idx]
	ci := task.CommentIndex(commentID)
	if ci < 0 {
		return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
	}

	now := model.Instant(t.now())
	task.Comments = append(task.Comments[:ci], task.Comments[ci+1:]...)
	task.UpdatedAt = now

	if err := t.commit(ctx, next); err != nil {
		return err
	}

	t.emit(model.Notification{
		Level: model.LevelInfo, TaskID: taskID, Message: "Comment deleted", CreatedAt: now,
	})
	return nil
}

// Mutate applies fn to a copy of the task and persists the result with a
// single write. If fn returns an error nothing is persisted. The task's
// identity and timer fields are restored after fn runs, so fn cannot
// break the single-active-timer invariant.
func (t *Tracker) Mutate(ctx context.Context, id string, fn func(*model.Task) error) (model.Task, error) {
	next := t.state.Clone()
	idx := next.Index(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	task := &next.Tasks[idx]
	before := task.Clone()
	if err := fn(task); err != nil {
		return model.Task{}, err
	}

	task.ID = before.ID
	task.CreatedAt = before.CreatedAt
	task.Status = before.Status
	task.CurrentSessionStart = before.CurrentSessionStart
	task.UpdatedAt = model.Instant(t.now())

	if err := t.commit(ctx, next); err != nil {
		return model.Task{}, err
	}
	return next.Tasks[idx].Clone(), nil
}

// Notify forwards n to the installed notifier. Collaborators such as the
// reconciler use it to surface their own messages.
func (t *Tracker) Notify(n model.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = t.now()
	}
	t.emit(n)
}

// Now returns the tracker's current time.
func (t *Tracker) Now() time.Time {
	return t.now()
}

func (t *Tracker) commit(ctx context.Context, next Context) error {
	if err := t.repo.SaveTasks(ctx, next.Tasks); err != nil {
		return fmt.Errorf("persisting tasks: %w", err)
	}
	t.state = next
	return nil
}

func (t *Tracker) emit(notes ...model.Notification) {
	if t.notify == nil {
		return
	}
	for _, n := range notes {
		t.notify(n)
	}
}

func (t *Tracker) runHooks(ctx context.Context, task model.Task, from, to model.Status) {
	for _, h := range t.hooks {
		h(ctx, task.Clone(), from, to)
	}
}
