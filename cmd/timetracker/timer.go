package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/timetracker/internal/model"
)

// transitionCmd builds a command that moves one task to a fixed status.
func transitionCmd(use, short string, to model.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, args[0], to)
		},
	}
}

func runTransition(cmd *cobra.Command, arg string, to model.Status) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	task, err := e.resolveTask(arg)
	if err != nil {
		return err
	}

	out, err := e.tracker.RequestStatus(cmd.Context(), task.ID, to)
	if err != nil {
		return err
	}
	switch {
	case out.Declined:
		fmt.Fprintln(e.out, "Cancelled.")
	case !out.Applied:
		fmt.Fprintf(e.out, "%s is already %s.\n", task.Title, task.Status.Label())
	}
	return nil
}

func startCmd() *cobra.Command {
	return transitionCmd("start", "Start the timer on a task, pausing any other running task", model.StatusInProgress)
}

func pauseCmd() *cobra.Command {
	return transitionCmd("pause", "Pause a task's timer", model.StatusPaused)
}

func doneCmd() *cobra.Command {
	return transitionCmd("done", "Complete a task", model.StatusDone)
}

func reopenCmd() *cobra.Command {
	return transitionCmd("reopen", "Move a completed task back to TODO", model.StatusTodo)
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [id] [TODO|IN_PROGRESS|PAUSED|DONE]",
		Short: "Set a task's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, ok := model.ParseStatus(args[1])
			if !ok {
				return &model.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", args[1])}
			}
			return runTransition(cmd, args[0], to)
		},
	}
}
