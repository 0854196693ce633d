package timefmt

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date form used for report inputs.
const DateLayout = "2006-01-02"

// WorklogLayout is the timestamp form the issue tracker expects for a
// worklog's "started" field.
const WorklogLayout = "2006-01-02T15:04:05.000-0700"

// ParseDate parses a YYYY-MM-DD calendar date at local midnight in loc.
// A nil loc means time.Local.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// StartOfDay returns 00:00:00.000 of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns now's calendar date as YYYY-MM-DD.
func Today(now time.Time) string {
	return FormatDate(now)
}

// FirstOfMonth returns the first day of now's month as YYYY-MM-DD.
func FirstOfMonth(now time.Time) string {
	y, m, _ := now.Date()
	return FormatDate(time.Date(y, m, 1, 0, 0, 0, 0, now.Location()))
}

// FormatWorklogStarted renders t in UTC with a "+0000" offset, the form
// the issue tracker accepts for new worklogs.
func FormatWorklogStarted(t time.Time) string {
	return t.UTC().Format(WorklogLayout)
}

// ParseTrackerTime parses a timestamp returned by the issue tracker, which
// uses "2006-01-02T15:04:05.000+0000" but occasionally omits milliseconds
// or uses RFC 3339.
func ParseTrackerTime(s string) (time.Time, error) {
	layouts := []string{
		WorklogLayout,
		"2006-01-02T15:04:05-0700",
		time.RFC3339Nano,
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("parsing tracker timestamp %q: unrecognized layout", s)
}

// Clock renders the local time of day as HH:MM (24h).
func Clock(t time.Time) string {
	return t.Format("15:04")
}

// Relative describes t relative to now the way the task list shows it:
// "Just now", "5 min ago", "2 hours ago", "3 days ago", then the date.
func Relative(t, now time.Time) string {
	diff := now.Sub(t)
	mins := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%d min ago", mins)
	case hours < 24:
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case days < 7:
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	}
	return FormatDate(t.In(now.Location()))
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
