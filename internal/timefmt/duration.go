// Package timefmt converts seconds and instants to display strings and
// back. Everything here is pure.
package timefmt

import (
	"fmt"
	"strconv"
	"strings"
)

// Calendar describes the working calendar the issue tracker uses when it
// renders durations in weeks and days.
type Calendar struct {
	HoursPerDay int
	DaysPerWeek int
}

// DefaultCalendar is the tracker's stock 8h day, 5d week.
var DefaultCalendar = Calendar{HoursPerDay: 8, DaysPerWeek: 5}

// FormatDuration renders seconds as "HH:MM:SS". Negative input clamps to
// zero and hours are not wrapped at 24.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ParseDuration parses the "HH:MM:SS" form produced by FormatDuration.
func ParseDuration(s string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("parsing duration %q: expected HH:MM:SS", s)
	}

	var values [3]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("parsing duration %q: invalid component %q", s, p)
		}
		values[i] = n
	}
	if values[1] > 59 || values[2] > 59 {
		return 0, fmt.Errorf("parsing duration %q: minutes and seconds must be below 60", s)
	}

	return values[0]*3600 + values[1]*60 + values[2], nil
}

// TrackerDuration renders seconds in the issue tracker's compact notation,
// e.g. "1w 2d 3h 4m". Only non-zero components are emitted; zero (or a
// sub-minute amount) renders as "0m". A calendar with non-positive fields
// falls back to DefaultCalendar.
func TrackerDuration(seconds int64, cal Calendar) string {
	if cal.HoursPerDay <= 0 || cal.DaysPerWeek <= 0 {
		cal = DefaultCalendar
	}
	if seconds < 0 {
		seconds = 0
	}

	const (
		secondsPerMinute = 60
		secondsPerHour   = 3600
	)
	secondsPerDay := int64(secondsPerHour * cal.HoursPerDay)
	secondsPerWeek := secondsPerDay * int64(cal.DaysPerWeek)

	weeks := seconds / secondsPerWeek
	days := (seconds % secondsPerWeek) / secondsPerDay
	hours := (seconds % secondsPerDay) / secondsPerHour
	minutes := (seconds % secondsPerHour) / secondsPerMinute

	var parts []string
	for _, c := range []struct {
		n    int64
		unit string
	}{
		{weeks, "w"},
		{days, "d"},
		{hours, "h"},
		{minutes, "m"},
	} {
		if c.n > 0 {
			parts = append(parts, strconv.FormatInt(c.n, 10)+c.unit)
		}
	}

	if len(parts) == 0 {
		return "0m"
	}
	return strings.Join(parts, " ")
}
