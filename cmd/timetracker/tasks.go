package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/timetracker/internal/model"
	"github.com/nhle/timetracker/internal/theme"
	"github.com/nhle/timetracker/internal/tracker"
	"github.com/nhle/timetracker/internal/ui"
	"github.com/nhle/timetracker/internal/view"
)

func addTaskFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("description", "d", "", "Task description")
	cmd.Flags().StringP("ticket", "t", "", "Jira issue key or browse URL")
	cmd.Flags().String("tags", "", "Comma-separated tags")
	cmd.Flags().Bool("recurring", false, "Mark the task as recurring")
}

func taskInput(cmd *cobra.Command, title string, base model.Task) tracker.TaskInput {
	in := tracker.TaskInput{
		Title:       title,
		Description: base.Description,
		JiraTicket:  base.JiraTicket,
		Tags:        base.Tags,
		IsRecurring: base.IsRecurring,
	}
	if cmd.Flags().Changed("description") {
		in.Description, _ = cmd.Flags().GetString("description")
	}
	if cmd.Flags().Changed("ticket") {
		in.JiraTicket, _ = cmd.Flags().GetString("ticket")
	}
	if cmd.Flags().Changed("tags") {
		tags, _ := cmd.Flags().GetString("tags")
		in.Tags = tracker.ParseTags(tags)
	}
	if cmd.Flags().Changed("recurring") {
		in.IsRecurring, _ = cmd.Flags().GetBool("recurring")
	}
	return in
}

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			ctx := cmd.Context()
			if pause, _ := cmd.Flags().GetBool("pause-running"); pause {
				if active, ok := e.tracker.Active(); ok {
					if _, err := e.tracker.RequestStatus(ctx, active.ID, model.StatusPaused); err != nil {
						return err
					}
				}
			}

			task, err := e.tracker.CreateTask(ctx, taskInput(cmd, args[0], model.Task{}))
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, task.ID)
			return nil
		},
	}

	addTaskFlags(cmd)
	cmd.Flags().Bool("pause-running", false, "Pause the running timer before creating the task")

	return cmd
}

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a task's title, description, ticket, tags or recurring flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			task, err := e.resolveTask(args[0])
			if err != nil {
				return err
			}

			title := task.Title
			if cmd.Flags().Changed("title") {
				title, _ = cmd.Flags().GetString("title")
			}
			_, err = e.tracker.UpdateTask(cmd.Context(), task.ID, taskInput(cmd, title, task))
			return err
		},
	}

	cmd.Flags().String("title", "", "New title")
	addTaskFlags(cmd)

	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active and recently completed tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			vm := view.Render(view.State{Tasks: e.tracker.Tasks(), Now: e.tracker.Now()})
			fmt.Fprintln(e.out, theme.SectionStyle.Render("Active Tasks"))
			fmt.Fprintln(e.out, taskTable(vm.Active))
			fmt.Fprintln(e.out, theme.SectionStyle.Render("Recently Completed"))
			fmt.Fprintln(e.out, taskTable(vm.Recent))
			return nil
		},
	}
}

func taskTable(items []view.Item) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers("ID", "TITLE", "STATUS", "TICKET", "TIME").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			if col == 2 {
				return theme.StatusStyle(items[row].Status)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, it := range items {
		title := it.Title
		if it.Running {
			title = "▶ " + title
		}
		t.Row(shortID(it.ID), title, it.StatusLabel, it.Ticket, it.Elapsed)
	}
	return t.String()
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a task's details, recent sessions and comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			task, err := e.resolveTask(args[0])
			if err != nil {
				return err
			}

			vm := view.Render(view.State{
				Tasks:      e.tracker.Tasks(),
				SelectedID: task.ID,
				Now:        e.tracker.Now(),
				IssueURL:   e.issueURL(cmd.Context()),
			})
			fmt.Fprintln(e.out, ui.RenderDetail(vm.Detail, 80))
			if len(task.Comments) > 0 {
				fmt.Fprintln(e.out, theme.SectionStyle.Render("Comment IDs"))
			}
			for _, c := range task.Comments {
				fmt.Fprintf(e.out, "%s  %s\n", theme.DimmedStyle.Render(shortID(c.ID)), c.Text)
			}
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			task, err := e.resolveTask(args[0])
			if err != nil {
				return err
			}
			if !e.confirm(fmt.Sprintf("Delete %q?", task.Title)) {
				return nil
			}
			return e.tracker.DeleteTask(cmd.Context(), task.ID)
		},
	}
}
