package main

import (
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/timetracker/internal/app"
	appsync "github.com/nhle/timetracker/internal/sync"
	"github.com/nhle/timetracker/internal/tracker"
)

func uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			inbox := app.NewInbox()
			e, err := openEnvWith(cmd, false, tracker.WithNotifier(inbox.Push))
			if err != nil {
				return err
			}
			defer e.close()

			var r *appsync.Reconciler
			if s, err := e.settings(cmd.Context()); err != nil {
				log.Printf("sync disabled: %v", err)
			} else if s.Configured() {
				r = appsync.NewReconciler(s, appsync.WithCalendar(e.calendar()))
			}

			m := app.New(e.tracker, inbox, app.Options{
				Reconciler:      r,
				SyncOnStop:      e.cfg.Sync.OnStatusChange,
				IssueURL:        e.issueURL(cmd.Context()),
				RefreshInterval: time.Duration(e.cfg.Display.RefreshIntervalMs) * time.Millisecond,
			})
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}
