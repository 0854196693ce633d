package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/timetracker/internal/tracker"
)

func commentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Add or delete task comments",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add [task-id] [text...]",
		Short: "Attach a comment to a task",
		Args:  cobra.MinimumNArgs(2),
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
			_, err = e.tracker.AddComment(cmd.Context(), task.ID, strings.Join(args[1:], " "))
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [task-id] [comment-id]",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(2),
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

			var matches []string
			for _, c := range task.Comments {
				if strings.HasPrefix(c.ID, args[1]) {
					matches = append(matches, c.ID)
				}
			}
			switch len(matches) {
			case 0:
				return fmt.Errorf("comment %s: %w", args[1], tracker.ErrNotFound)
			case 1:
			default:
				return errors.New("comment id prefix is ambiguous")
			}

			if !e.confirm("Delete this comment?") {
				return nil
			}
			return e.tracker.DeleteComment(cmd.Context(), task.ID, matches[0])
		},
	})

	return cmd
}
