package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/timetracker/internal/theme"
	"github.com/nhle/timetracker/internal/view"
)

// RenderList renders a titled task list. The selected item is highlighted
// and running tasks carry a ▶ marker.
func RenderList(title string, items []view.Item) string {
	var b strings.Builder
	b.WriteString(theme.SectionStyle.Render(fmt.Sprintf("%s (%d)", title, len(items))))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(theme.ListItemStyle.Render(theme.DimmedStyle.Render("none")))
		b.WriteString("\n")
		return b.String()
	}

	for _, it := range items {
		line := it.Title
		if it.Running {
			line = theme.RunningStyle.Render("▶ ") + line
		}
		meta := theme.StatusStyle(it.Status).Render(it.StatusLabel) + " " + theme.DimmedStyle.Render(it.Elapsed)
		if it.Ticket != "" {
			meta += " " + theme.TicketStyle.Render(it.Ticket)
		}

		style := theme.ListItemStyle
		if it.Selected {
			style = theme.SelectedItemStyle
		}
		b.WriteString(style.Render(line + "\n" + meta))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderDetail renders the detail pane for the selected task.
func RenderDetail(d *view.Detail, width int) string {
	panel := theme.DetailPanelStyle
	if width > 4 {
		panel = panel.Width(width - 4)
	}
	if d == nil {
		return panel.Render(theme.DimmedStyle.Render("Select a task or create a new one to get started"))
	}

	var sections []string

	meta := []string{theme.StatusStyle(d.Status).Render(d.StatusLabel)}
	if d.Ticket != "" {
		meta = append(meta, theme.TicketStyle.Render(d.Ticket))
	}
	if d.Recurring {
		meta = append(meta, "Recurring")
	}
	meta = append(meta, theme.DimmedStyle.Render("Created: "+d.Created))
	sections = append(sections,
		theme.HeaderStyle.Render(d.Title),
		strings.Join(meta, "  "),
	)
	if d.TicketURL != "" {
		sections = append(sections, theme.DimmedStyle.Render(d.TicketURL))
	}

	timer := theme.TimerStyle.Render(d.Timer)
	if d.Running {
		timer = theme.RunningStyle.Render("▶ ") + timer
	}
	labels := make([]string, 0, len(d.Actions))
	for _, a := range d.Actions {
		labels = append(labels, a.Label)
	}
	sections = append(sections, "", timer+"  "+theme.HelpStyle.Render(strings.Join(labels, " · ")))

	if d.Description != "" {
		sections = append(sections, theme.SectionStyle.Render("Description"), d.Description)
	}

	if len(d.Tags) > 0 {
		tags := make([]string, 0, len(d.Tags))
		for _, t := range d.Tags {
			tags = append(tags, theme.TagStyle.Render(t))
		}
		sections = append(sections, theme.SectionStyle.Render("Tags"), strings.Join(tags, " "))
	}

	if len(d.Sessions) > 0 {
		sections = append(sections, theme.SectionStyle.Render("Time Sessions"))
		for _, s := range d.Sessions {
			sections = append(sections, fmt.Sprintf("%s  %s  %s",
				theme.DimmedStyle.Render(s.When), s.Range, s.Duration))
		}
	}

	sections = append(sections, theme.SectionStyle.Render(fmt.Sprintf("Comments (%d)", len(d.Comments))))
	if len(d.Comments) == 0 {
		sections = append(sections, theme.DimmedStyle.Render("No comments yet"))
	}
	for _, c := range d.Comments {
		sections = append(sections, theme.DimmedStyle.Render(c.When)+"  "+c.Text)
	}

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
