package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timetracker/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// Apply selects the color variant named by the display.theme setting:
// "default" lets the terminal background decide, "dark" and "light"
// force one side of every adaptive color.
func Apply(name string) error {
	switch name {
	case "", "default":
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	default:
		return fmt.Errorf("unknown theme %q (want default, dark or light)", name)
	}
	return nil
}

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// SectionStyle titles a block inside the detail panel.
var SectionStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorMagenta).
	MarginTop(1)

// TimerStyle renders the large elapsed-time readout.
var TimerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite)

// RunningStyle marks a task whose timer is running.
var RunningStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGreen)

// DimmedStyle renders secondary text such as timestamps.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// TicketStyle renders a linked issue key.
var TicketStyle = lipgloss.NewStyle().
	Foreground(ColorBlue)

// TagStyle renders a single tag chip.
var TagStyle = lipgloss.NewStyle().
	Foreground(ColorOrange).
	Padding(0, 1)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// StatusStyle returns a color-coded style for the given task status.
func StatusStyle(status model.Status) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.StatusTodo:
		return base.Foreground(ColorBlue)
	case model.StatusInProgress:
		return base.Foreground(ColorGreen)
	case model.StatusPaused:
		return base.Foreground(ColorYellow)
	case model.StatusDone:
		return base.Foreground(ColorGray)
	default:
		return base.Foreground(ColorGray)
	}
}

// NotificationStyle returns the style for a notification of the given level.
func NotificationStyle(level string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch level {
	case model.LevelSuccess:
		return base.Foreground(ColorGreen)
	case model.LevelError:
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorBlue)
	}
}
