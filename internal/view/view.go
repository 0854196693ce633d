// Package view projects tracker state into display-ready values. Render
// is pure: the same State always yields the same ViewModel, so the
// terminal UI and the CLI can share it and tests can assert on it.
package view

import (
	"time"

	"github.com/nhle/timetracker/internal/model"
	"github.com/nhle/timetracker/internal/timefmt"
)

const (
	// recentLimit caps the completed tasks shown in the recent list.
	recentLimit = 10

	// sessionLimit caps the sessions shown in the detail pane.
	sessionLimit = 5
)

// State is everything a render needs.
type State struct {
	Tasks      []model.Task
	SelectedID string
	Now        time.Time

	// Location is used for wall-clock times. Nil means time.Local.
	Location *time.Location

	// IssueURL links a ticket key to the issue tracker. Nil omits links.
	IssueURL func(key string) string
}

// Item is one row of a task list.
type Item struct {
	ID          string
	Title       string
	Status      model.Status
	StatusLabel string
	Ticket      string
	Elapsed     string
	Running     bool
	Selected    bool
}

// Action is a status change offered for the selected task.
type Action struct {
	Label  string
	Target model.Status
}

// SessionRow is one recorded session in the detail pane.
type SessionRow struct {
	When     string
	Range    string
	Duration string
}

// CommentRow is one comment in the detail pane.
type CommentRow struct {
	ID   string
	When string
	Text string
}

// Detail describes the selected task.
type Detail struct {
	ID          string
	Title       string
	Status      model.Status
	StatusLabel string
	Ticket      string
	TicketURL   string
	Recurring   bool
	Created     string
	Description string
	Tags        []string

	// Timer is TotalTime plus the live elapsed time of a running timer.
	Timer   string
	Running bool

	// CanSync is true when the task is linked to an issue.
	CanSync bool

	Actions  []Action
	Sessions []SessionRow
	Comments []CommentRow
}

// ViewModel is the rendered projection of a State.
type ViewModel struct {
	// Active holds every task that is not DONE, in storage order.
	Active []Item

	// Recent holds the first completed tasks in storage order.
	Recent []Item

	// Detail is nil when no task is selected or the selection is stale.
	Detail *Detail
}

// Render projects s into a ViewModel.
func Render(s State) ViewModel {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}

	vm := ViewModel{Active: []Item{}, Recent: []Item{}}
	for _, t := range s.Tasks {
		if t.Status != model.StatusDone {
			vm.Active = append(vm.Active, item(t, s))
			continue
		}
		if len(vm.Recent) < recentLimit {
			vm.Recent = append(vm.Recent, item(t, s))
		}
	}

	for _, t := range s.Tasks {
		if t.ID == s.SelectedID {
			d := detail(t, s.Now, loc)
			if s.IssueURL != nil && d.Ticket != "" {
				d.TicketURL = s.IssueURL(d.Ticket)
			}
			vm.Detail = &d
			break
		}
	}

	return vm
}

// Actions returns the status changes offered for a task in status.
func Actions(status model.Status) []Action {
	var actions []Action
	switch status {
	case model.StatusTodo, model.StatusPaused:
		actions = append(actions, Action{Label: "Start", Target: model.StatusInProgress})
	case model.StatusInProgress:
		actions = append(actions, Action{Label: "Pause", Target: model.StatusPaused})
	}
	if status == model.StatusDone {
		actions = append(actions, Action{Label: "Reopen", Target: model.StatusTodo})
	} else {
		actions = append(actions, Action{Label: "Complete", Target: model.StatusDone})
	}
	return actions
}

func item(t model.Task, s State) Item {
	return Item{
		ID:          t.ID,
		Title:       t.Title,
		Status:      t.Status,
		StatusLabel: t.Status.Label(),
		Ticket:      t.JiraTicket,
		Elapsed:     timefmt.FormatDuration(t.Elapsed(s.Now)),
		Running:     t.IsRunning(),
		Selected:    t.ID == s.SelectedID,
	}
}

func detail(t model.Task, now time.Time, loc *time.Location) Detail {
	d := Detail{
		ID:          t.ID,
		Title:       t.Title,
		Status:      t.Status,
		StatusLabel: t.Status.Label(),
		Ticket:      t.JiraTicket,
		Recurring:   t.IsRecurring,
		Created:     timefmt.Relative(t.CreatedAt, now),
		Description: t.Description,
		Tags:        append([]string(nil), t.Tags...),
		Timer:       timefmt.FormatDuration(t.Elapsed(now)),
		Running:     t.IsRunning(),
		CanSync:     t.JiraTicket != "",
		Actions:     Actions(t.Status),
	}

	for i := len(t.TimeSessions) - 1; i >= 0 && len(d.Sessions) < sessionLimit; i-- {
		s := t.TimeSessions[i]
		d.Sessions = append(d.Sessions, SessionRow{
			When:     timefmt.Relative(s.Start, now),
			Range:    timefmt.Clock(s.Start.In(loc)) + " - " + timefmt.Clock(s.End.In(loc)),
			Duration: timefmt.FormatDuration(s.Duration),
		})
	}

	for _, c := range t.Comments {
		d.Comments = append(d.Comments, CommentRow{
			ID:   c.ID,
			When: timefmt.Relative(c.CreatedAt, now),
			Text: c.Text,
		})
	}

	return d
}
