// Package tracker implements the task/timer state machine. The pure core
// (Context, Transition, Restore) operates on an explicit application
// context; Tracker wraps it with persistence and notifications.
package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/nhle/timetracker/internal/model"
	"github.com/nhle/timetracker/internal/timefmt"
)

// ErrNotFound is returned when an operation names a task or comment that
// is not in the collection. The collection is left untouched.
var ErrNotFound = errors.New("not found")

// ConfirmFunc asks the user to approve a gated transition. Returning
// false aborts the transition.
type ConfirmFunc func(task model.Task, prompt string) bool

// Context is the explicit application state the state machine threads
// through every operation: the task collection and the running timer.
type Context struct {
	Tasks []model.Task

	// ActiveTaskID is the id of the IN_PROGRESS task, or empty.
	ActiveTaskID string

	// SessionStart mirrors the active task's CurrentSessionStart.
	SessionStart *time.Time
}

// Clone returns a deep copy of c.
func (c Context) Clone() Context {
	out := Context{ActiveTaskID: c.ActiveTaskID}
	if c.SessionStart != nil {
		start := *c.SessionStart
		out.SessionStart = &start
	}
	out.Tasks = make([]model.Task, len(c.Tasks))
	for i, t := range c.Tasks {
		out.Tasks[i] = t.Clone()
	}
	return out
}

// Index returns the position of the task with the given id, or -1.
func (c Context) Index(id string) int {
	for i := range c.Tasks {
		if c.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Outcome describes what a Transition did.
type Outcome struct {
	From model.Status
	To   model.Status

	// Applied is false for no-ops and declined confirmations.
	Applied bool

	// Declined is true when the confirmation hook refused the transition.
	Declined bool

	// Closed is the session recorded on the transitioned task, if any.
	Closed *model.Session

	// Paused lists tasks that were forced out of IN_PROGRESS to make room
	// for the newly started one, as they look after pausing.
	Paused []model.Task

	Notifications []model.Notification
}

// ConfirmationPrompt reports whether moving from one status to another
// requires user confirmation, and the question to ask.
func ConfirmationPrompt(from, to model.Status) (string, bool) {
	switch {
	case from == model.StatusInProgress && to == model.StatusDone:
		return "Complete this task and stop the timer?", true
	case from == model.StatusDone && to == model.StatusInProgress:
		return "Reopen this completed task?", true
	}
	return "", false
}

// Transition requests a status change for the task with the given id.
// Requests for the current status or an unrecognized status are no-ops.
// Entering IN_PROGRESS first pauses any other running task; leaving it
// closes the open session into TimeSessions and TotalTime. A nil confirm
// approves every gated transition.
func Transition(
	c *Context,
	taskID string,
	to model.Status,
	now time.Time,
	confirm ConfirmFunc,
) (Outcome, error) {
	idx := c.Index(taskID)
	if idx < 0 {
		return Outcome{To: to}, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}

	task := &c.Tasks[idx]
	out := Outcome{From: task.Status, To: to}
	if !to.Valid() || to == task.Status {
		return out, nil
	}

	if prompt, gated := ConfirmationPrompt(task.Status, to); gated && confirm != nil {
		if !confirm(task.Clone(), prompt) {
			out.Declined = true
			return out, nil
		}
	}

	now = model.Instant(now)

	switch {
	case to == model.StatusInProgress:
		for i := range c.Tasks {
			other := &c.Tasks[i]
			if i == idx || other.Status != model.StatusInProgress {
				continue
			}
			out.Notifications = append(out.Notifications, notice(
				model.LevelInfo, other.ID, now, "Paused: %s", other.Title,
			))
			if closed, stopped := leaveInProgress(other, model.StatusPaused, now); stopped {
				out.Notifications = append(out.Notifications, stoppedNotice(other.ID, closed, now))
			}
			out.Paused = append(out.Paused, other.Clone())
		}

		start := now
		task.Status = model.StatusInProgress
		task.CurrentSessionStart = &start
		task.UpdatedAt = now

		sessionStart := start
		c.ActiveTaskID = task.ID
		c.SessionStart = &sessionStart

		out.Notifications = append(out.Notifications, notice(
			model.LevelSuccess, task.ID, now, "Timer started: %s", task.Title,
		))

	case task.Status == model.StatusInProgress:
		closed, stopped := leaveInProgress(task, to, now)
		out.Closed = closed
		if stopped {
			out.Notifications = append(out.Notifications, stoppedNotice(task.ID, closed, now))
		}
		if c.ActiveTaskID == task.ID {
			c.ActiveTaskID = ""
			c.SessionStart = nil
		}

	default:
		task.Status = to
		task.UpdatedAt = now
	}

	out.Applied = true
	return out, nil
}

// leaveInProgress moves task out of IN_PROGRESS, recording the open
// session and folding it into TotalTime in the same step. stopped reports
// whether a timer was running. A session that did not outlast its start
// instant is dropped, so the returned session may be nil even then.
func leaveInProgress(task *model.Task, to model.Status, now time.Time) (closed *model.Session, stopped bool) {
	task.Status = to
	task.UpdatedAt = now

	if task.CurrentSessionStart == nil {
		return nil, false
	}

	start := *task.CurrentSessionStart
	task.CurrentSessionStart = nil
	if !now.After(start) {
		return nil, true
	}

	session := model.NewSession(start, now)
	task.AppendSession(session)
	return &session, true
}

// Restore repairs a collection loaded from storage. The first IN_PROGRESS
// task with a session start becomes the active task. Every other
// IN_PROGRESS task is demoted to PAUSED, closing its open session at now.
// Stray session starts on tasks that are not running are cleared. It
// returns the ids of the tasks it changed.
func Restore(tasks []model.Task, now time.Time) (Context, []string) {
	c := Context{Tasks: tasks}
	var changed []string

	now = model.Instant(now)
	for i := range c.Tasks {
		t := &c.Tasks[i]
		switch {
		case t.Status == model.StatusInProgress && t.CurrentSessionStart != nil && c.ActiveTaskID == "":
			start := *t.CurrentSessionStart
			c.ActiveTaskID = t.ID
			c.SessionStart = &start

		case t.Status == model.StatusInProgress:
			leaveInProgress(t, model.StatusPaused, now)
			changed = append(changed, t.ID)

		case t.CurrentSessionStart != nil:
			t.CurrentSessionStart = nil
			changed = append(changed, t.ID)
		}
	}

	return c, changed
}

func notice(level, taskID string, now time.Time, format string, args ...interface{}) model.Notification {
	return model.Notification{
		Level:     level,
		TaskID:    taskID,
		Message:   fmt.Sprintf(format, args...),
		CreatedAt: now,
	}
}

func stoppedNotice(taskID string, s *model.Session, now time.Time) model.Notification {
	if s == nil {
		return notice(model.LevelInfo, taskID, now, "Timer stopped: no time recorded")
	}
	return notice(
		model.LevelInfo, taskID, now,
		"Timer stopped: %s recorded", timefmt.FormatDuration(s.Duration),
	)
}
