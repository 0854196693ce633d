// Package report builds date-range time reports from the task collection.
// Sessions straddling the range boundaries are clipped to the range.
package report

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nhle/timetracker/internal/model"
	"github.com/nhle/timetracker/internal/timefmt"
)

// labelLayout renders the generation timestamp in a report label.
const labelLayout = "2006-01-02 15:04"

// Session is a session clipped to the report window.
type Session struct {
	// Start and End are the clipped bounds.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Duration is recomputed from the clipped bounds, floored to seconds.
	Duration int64 `json:"duration"`

	// Original is the session as recorded (or synthesized, when Live).
	Original model.Session `json:"original"`

	// Live marks the synthetic session of a running timer. It is never
	// persisted.
	Live bool `json:"live,omitempty"`
}

// Entry is one task's contribution to the report.
type Entry struct {
	Task     model.Task `json:"task"`
	Sessions []Session  `json:"sessions"`
	Total    int64      `json:"total"`
}

// Summary aggregates a report.
type Summary struct {
	Tasks        int   `json:"tasks"`
	Sessions     int   `json:"sessions"`
	TotalSeconds int64 `json:"totalSeconds"`
}

// Report is the outcome of a Build.
type Report struct {
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	WindowStart time.Time `json:"windowStart"`
	WindowEnd   time.Time `json:"windowEnd"`
	GeneratedAt time.Time `json:"generatedAt"`
	Label       string    `json:"label"`
	Entries     []Entry   `json:"entries"`
	Summary     Summary   `json:"summary"`
}

// Builder builds reports. The zero value uses time.Now and time.Local.
type Builder struct {
	Now      func() time.Time
	Location *time.Location
}

func (b Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

func (b Builder) location() *time.Location {
	if b.Location == nil {
		return time.Local
	}
	return b.Location
}

// Build collects every session overlapping the inclusive calendar range
// [startDate, endDate] (YYYY-MM-DD, local time). Running tasks contribute
// a live session ending now. Tasks without overlapping sessions are
// omitted; entries are ordered by title, ignoring case and accents.
func (b Builder) Build(tasks []model.Task, startDate, endDate string) (*Report, error) {
	startDate = strings.TrimSpace(startDate)
	endDate = strings.TrimSpace(endDate)
	if startDate == "" || endDate == "" {
		return nil, &model.ValidationError{Message: "Please select both a start and end date"}
	}

	loc := b.location()
	start, err := timefmt.ParseDate(startDate, loc)
	if err != nil {
		return nil, &model.ValidationError{Field: "start date", Message: err.Error()}
	}
	end, err := timefmt.ParseDate(endDate, loc)
	if err != nil {
		return nil, &model.ValidationError{Field: "end date", Message: err.Error()}
	}
	if start.After(end) {
		return nil, &model.ValidationError{Message: "The start date cannot be after the end date"}
	}

	now := b.now()
	ws, we := timefmt.StartOfDay(start), timefmt.EndOfDay(end)

	r := &Report{
		StartDate:   startDate,
		EndDate:     endDate,
		WindowStart: ws,
		WindowEnd:   we,
		GeneratedAt: now,
		Label: fmt.Sprintf("%s — %s, generated %s",
			startDate, endDate, now.In(loc).Format(labelLayout)),
		Entries: []Entry{},
	}

	for _, task := range tasks {
		sessions := clip(candidates(task, now), ws, we)
		if len(sessions) == 0 {
			continue
		}

		entry := Entry{Task: task.Clone(), Sessions: sessions}
		for _, s := range sessions {
			entry.Total += s.Duration
		}
		r.Entries = append(r.Entries, entry)
	}

	col := collate.New(language.Und, collate.IgnoreCase, collate.IgnoreDiacritics)
	slices.SortStableFunc(r.Entries, func(a, b Entry) int {
		return col.CompareString(a.Task.Title, b.Task.Title)
	})

	for _, e := range r.Entries {
		r.Summary.Tasks++
		r.Summary.Sessions += len(e.Sessions)
		r.Summary.TotalSeconds += e.Total
	}

	return r, nil
}

// candidates returns the task's recorded sessions plus, for a running
// task, a live session from its start until now.
func candidates(task model.Task, now time.Time) []Session {
	out := make([]Session, 0, len(task.TimeSessions)+1)
	for _, s := range task.TimeSessions {
		out = append(out, Session{Original: s})
	}
	if task.IsRunning() && task.CurrentSessionStart != nil {
		out = append(out, Session{
			Original: model.NewSession(*task.CurrentSessionStart, now),
			Live:     true,
		})
	}
	return out
}

// clip keeps the sessions overlapping [ws, we], bounds them to the window
// and sorts them by clipped start.
func clip(sessions []Session, ws, we time.Time) []Session {
	var kept []Session
	for _, s := range sessions {
		o := s.Original
		if o.End.Before(ws) || o.Start.After(we) {
			continue
		}

		s.Start, s.End = o.Start, o.End
		if s.Start.Before(ws) {
			s.Start = ws
		}
		if s.End.After(we) {
			s.End = we
		}
		if d := int64(s.End.Sub(s.Start) / time.Second); d > 0 {
			s.Duration = d
		}
		kept = append(kept, s)
	}

	slices.SortStableFunc(kept, func(a, b Session) int {
		return a.Start.Compare(b.Start)
	})
	return kept
}
