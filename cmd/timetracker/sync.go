package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/timetracker/internal/source"
	appsync "github.com/nhle/timetracker/internal/sync"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [id]",
		Short: "Reconcile a task with its Jira issue: push missing sessions, pull missing worklogs",
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

			r, err := e.reconciler(cmd.Context())
			if err != nil {
				return err
			}

			result, err := appsync.Sync(cmd.Context(), e.tracker, r, task.ID)
			if err != nil {
				return err
			}
			if len(result.PushErrors) > 0 {
				return fmt.Errorf("%d of %d worklogs failed to push",
					len(result.PushErrors), len(result.PushErrors)+result.Pushed)
			}
			return nil
		},
	}
}

func testConnectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection",
		Short: "Check the stored Jira credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			r, err := e.reconciler(cmd.Context())
			if err != nil {
				return err
			}

			name, err := r.TestConnection(cmd.Context())
			switch {
			case source.IsAuthError(err):
				return errors.New("✗ Authentication failed")
			case err != nil:
				return fmt.Errorf("✗ %w", err)
			}
			fmt.Fprintf(e.out, "✓ Connection successful (signed in as %s)\n", name)
			return nil
		},
	}
}
