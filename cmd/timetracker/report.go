package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/timetracker/internal/report"
	"github.com/nhle/timetracker/internal/theme"
	"github.com/nhle/timetracker/internal/timefmt"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report time spent per task over a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			now := e.tracker.Now()
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			if !cmd.Flags().Changed("from") {
				from = timefmt.FirstOfMonth(now)
			}
			if !cmd.Flags().Changed("to") {
				to = timefmt.Today(now)
			}

			b := report.Builder{Now: e.tracker.Now}
			r, err := b.Build(e.tracker.Tasks(), from, to)
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(e.out)
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			renderReport(e.out, r)
			return nil
		},
	}

	cmd.Flags().String("from", "", "First day of the range, YYYY-MM-DD (default: first of this month)")
	cmd.Flags().String("to", "", "Last day of the range, YYYY-MM-DD (default: today)")
	cmd.Flags().Bool("json", false, "Output as JSON")

	return cmd
}

func renderReport(w io.Writer, r *report.Report) {
	fmt.Fprintln(w, theme.HeaderStyle.Render(r.Label))

	if len(r.Entries) == 0 {
		fmt.Fprintln(w, theme.DimmedStyle.Render("No tasks or time sessions found in the selected date range."))
		return
	}

	fmt.Fprintf(w, "%d tasks · %d sessions · %s\n",
		r.Summary.Tasks, r.Summary.Sessions, timefmt.FormatDuration(r.Summary.TotalSeconds))

	for _, entry := range r.Entries {
		heading := entry.Task.Title
		if entry.Task.JiraTicket != "" {
			heading += " " + theme.TicketStyle.Render(entry.Task.JiraTicket)
		}
		fmt.Fprintln(w, theme.SectionStyle.Render(heading)+"  "+theme.TimerStyle.Render(timefmt.FormatDuration(entry.Total)))

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
			Headers("DATE", "START", "END", "DURATION").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return lipgloss.NewStyle().Bold(true).Padding(0, 1)
				}
				return lipgloss.NewStyle().Padding(0, 1)
			})

		for _, s := range entry.Sessions {
			end := timefmt.Clock(s.End.Local())
			if s.Live {
				end += " (running)"
			}
			t.Row(
				timefmt.FormatDate(s.Start.Local()),
				timefmt.Clock(s.Start.Local()),
				end,
				timefmt.FormatDuration(s.Duration),
			)
		}
		fmt.Fprintln(w, t.String())
	}
}
