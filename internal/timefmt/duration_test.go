package timefmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		want    string
	}{
		{"zero", 0, "00:00:00"},
		{"negative clamps", -30, "00:00:00"},
		{"seconds only", 59, "00:00:59"},
		{"mixed", 3725, "01:02:05"},
		{"past one day", 90000, "25:00:00"},
		{"three digit hours", 360000, "100:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.seconds))
		})
	}
}

func TestParseDuration_RoundTrip(t *testing.T) {
	for _, x := range []int64{0, 1, 59, 60, 3599, 3600, 86399, 90061, 360000} {
		parsed, err := ParseDuration(FormatDuration(x))
		require.NoError(t, err)
		assert.Equal(t, x, parsed)
		assert.Equal(t, FormatDuration(x), FormatDuration(parsed))
	}
}

func TestParseDuration_Invalid(t *testing.T) {
	for _, in := range []string{"", "12:00", "aa:bb:cc", "01:60:00", "01:00:61", "-1:00:00"} {
		_, err := ParseDuration(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestTrackerDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		cal     Calendar
		want    string
	}{
		{"zero", 0, DefaultCalendar, "0m"},
		{"under a minute", 45, DefaultCalendar, "0m"},
		{"two and a half hours", 9000, DefaultCalendar, "2h 30m"},
		{"exact day", 8 * 3600, DefaultCalendar, "1d"},
		{"full decomposition", (5*8+2*8+3)*3600 + 4*60, DefaultCalendar, "1w 2d 3h 4m"},
		{"custom calendar", 24 * 3600, Calendar{HoursPerDay: 6, DaysPerWeek: 4}, "1w"},
		{"invalid calendar falls back", 9000, Calendar{}, "2h 30m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrackerDuration(tt.seconds, tt.cal))
		})
	}
}
