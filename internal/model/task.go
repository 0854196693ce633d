package model

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a task's timer.
type Status string

// Task status constants.
const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusPaused     Status = "PAUSED"
	StatusDone       Status = "DONE"
)

// Statuses lists every recognized status in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusPaused, StatusDone}

// ParseStatus converts user input such as "in progress" or "in_progress"
// into a Status. The second return value is false for unrecognized input.
func ParseStatus(s string) (Status, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	for _, st := range Statuses {
		if string(st) == normalized {
			return st, true
		}
	}
	return "", false
}

// Valid reports whether s is one of the four recognized statuses.
func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// Label returns the human-readable form, e.g. "IN PROGRESS".
func (s Status) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// Session is a closed interval of tracked time.
type Session struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Duration is floor(End-Start) in seconds, stored redundantly for
	// cheap aggregation.
	Duration int64 `json:"duration"`
}

// NewSession closes an interval into a Session with its duration floored
// to whole seconds.
func NewSession(start, end time.Time) Session {
	return Session{
		Start:    start,
		End:      end,
		Duration: int64(end.Sub(start) / time.Second),
	}
}

// Comment is an immutable note attached to a task.
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task is a unit of tracked work.
type Task struct {
	// ID is an opaque identifier assigned at creation; it never changes.
	ID string `json:"id"`

	Title       string `json:"title"`
	Description string `json:"description"`

	// JiraTicket is the external issue key (e.g. PROJ-123), if linked.
	JiraTicket string `json:"jiraTicket"`

	// Tags preserves the order the user entered them in.
	Tags        []string `json:"tags"`
	IsRecurring bool     `json:"isRecurring"`

	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// CurrentSessionStart is set iff Status is IN_PROGRESS.
	CurrentSessionStart *time.Time `json:"currentSessionStart,omitempty"`

	// TimeSessions is append-only, in recording order.
	TimeSessions []Session `json:"timeSessions"`

	// TotalTime caches the sum of TimeSessions durations in seconds.
	TotalTime int64 `json:"totalTime"`

	Comments []Comment `json:"comments"`
}

// Validate checks the fields a user can edit.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Message: "task title is required"}
	}
	return nil
}

// IsRunning reports whether the task's timer is currently running.
func (t Task) IsRunning() bool {
	return t.Status == StatusInProgress
}

// AppendSession records a closed session and folds its duration into
// TotalTime in the same step.
func (t *Task) AppendSession(s Session) {
	t.TimeSessions = append(t.TimeSessions, s)
	t.TotalTime += s.Duration
}

// SessionTotal recomputes the sum of all session durations. TotalTime is
// the maintained aggregate; this exists for verification.
func (t Task) SessionTotal() int64 {
	var total int64
	for _, s := range t.TimeSessions {
		total += s.Duration
	}
	return total
}

// Elapsed returns TotalTime plus the time accrued by a running timer.
func (t Task) Elapsed(now time.Time) int64 {
	total := t.TotalTime
	if t.IsRunning() && t.CurrentSessionStart != nil {
		if live := int64(now.Sub(*t.CurrentSessionStart) / time.Second); live > 0 {
			total += live
		}
	}
	return total
}

// CommentIndex returns the position of the comment with the given id, or -1.
func (t Task) CommentIndex(id string) int {
	for i, c := range t.Comments {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers cannot alias the slices of a task
// held by the tracker.
func (t Task) Clone() Task {
	c := t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.TimeSessions != nil {
		c.TimeSessions = append([]Session(nil), t.TimeSessions...)
	}
	if t.Comments != nil {
		c.Comments = append([]Comment(nil), t.Comments...)
	}
	if t.CurrentSessionStart != nil {
		start := *t.CurrentSessionStart
		c.CurrentSessionStart = &start
	}
	return c
}

// Instant normalizes a timestamp to the precision stored for sessions:
// no monotonic reading, truncated to the millisecond.
func Instant(t time.Time) time.Time {
	return t.Round(0).Truncate(time.Millisecond)
}
