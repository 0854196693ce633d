package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/timetracker/internal/credential"
	"github.com/nhle/timetracker/internal/model"
	"github.com/nhle/timetracker/internal/source/jira"
	"github.com/nhle/timetracker/internal/store"
	appsync "github.com/nhle/timetracker/internal/sync"
	"github.com/nhle/timetracker/internal/theme"
	"github.com/nhle/timetracker/internal/timefmt"
	"github.com/nhle/timetracker/internal/tracker"
)

// env bundles what a command needs: configuration, storage and a loaded
// tracker.
type env struct {
	cfg     *model.AppConfig
	kv      *store.SQLiteStore
	tasks   *store.TaskStore
	tracker *tracker.Tracker
	out     io.Writer
	yes     bool
}

// openEnv loads configuration, opens storage and loads the tracker. The
// caller must call close.
func openEnv(cmd *cobra.Command, opts ...tracker.Option) (*env, error) {
	return openEnvWith(cmd, true, opts...)
}

// openEnvWith is openEnv with control over the synchronous sync hook.
// The terminal UI passes false and syncs stopped tasks off its own loop.
func openEnvWith(cmd *cobra.Command, syncHook bool, opts ...tracker.Option) (*env, error) {
	ctx := cmd.Context()

	path, _ := cmd.Flags().GetString("config")
	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := theme.Apply(cfg.Display.Theme); err != nil {
		log.Printf("ignoring display.theme: %v", err)
	}

	kv, err := store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	yes, _ := cmd.Flags().GetBool("yes")
	e := &env{
		cfg:   cfg,
		kv:    kv,
		tasks: store.NewTaskStore(kv),
		out:   cmd.OutOrStdout(),
		yes:   yes,
	}

	base := []tracker.Option{
		tracker.WithConfirm(e.confirmTransition),
		tracker.WithNotifier(e.printNotification),
	}
	if syncHook && cfg.Sync.OnStatusChange {
		hook, err := e.syncHook(ctx)
		if err != nil {
			log.Printf("sync on status change disabled: %v", err)
		} else if hook != nil {
			base = append(base, tracker.WithTransitionHook(hook))
		}
	}

	e.tracker = tracker.New(e.tasks, append(base, opts...)...)
	if err := e.tracker.Load(ctx); err != nil {
		e.close()
		return nil, err
	}
	return e, nil
}

func (e *env) close() {
	if err := e.kv.Close(); err != nil {
		log.Printf("failed to close store: %v", err)
	}
}

func (e *env) calendar() timefmt.Calendar {
	return timefmt.Calendar{
		HoursPerDay: e.cfg.Calendar.HoursPerDay,
		DaysPerWeek: e.cfg.Calendar.DaysPerWeek,
	}
}

// settings returns the Jira settings with the token resolved from the
// keyring when configured to keep it there.
func (e *env) settings(ctx context.Context) (model.Settings, error) {
	s, err := e.tasks.LoadSettings(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	if !e.cfg.Sync.UseKeyring {
		return s, nil
	}

	ring, err := credential.Open()
	if err != nil {
		return s, err
	}
	return ring.ApplyToken(s)
}

func (e *env) reconciler(ctx context.Context) (*appsync.Reconciler, error) {
	s, err := e.settings(ctx)
	if err != nil {
		return nil, err
	}
	return appsync.NewReconciler(s, appsync.WithCalendar(e.calendar())), nil
}

// issueURL links ticket keys to the configured Jira site. It returns nil
// when no site is configured.
func (e *env) issueURL(ctx context.Context) func(string) string {
	s, err := e.tasks.LoadSettings(ctx)
	if err != nil || s.JiraURL == "" {
		return nil
	}
	return func(key string) string { return jira.BrowseURL(s.JiraURL, key) }
}

// syncHook builds the hook that reconciles a linked task whenever its
// timer stops. It returns nil when Jira is not configured.
func (e *env) syncHook(ctx context.Context) (tracker.TransitionHook, error) {
	s, err := e.settings(ctx)
	if err != nil {
		return nil, err
	}
	if !s.Configured() {
		return nil, nil
	}

	r := appsync.NewReconciler(s, appsync.WithCalendar(e.calendar()))
	return func(ctx context.Context, task model.Task, from, to model.Status) {
		appsync.OnTimerStopped(e.tracker, r)(ctx, task, from, to)
	}, nil
}

func (e *env) confirm(prompt string) bool {
	if e.yes {
		return true
	}
	var ok bool
	err := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false
	}
	return ok
}

func (e *env) confirmTransition(task model.Task, prompt string) bool {
	return e.confirm(fmt.Sprintf("%s\n%s", task.Title, prompt))
}

func (e *env) printNotification(n model.Notification) {
	fmt.Fprintln(e.out, theme.NotificationStyle(n.Level).Render(n.Message))
}

// resolveTask finds a task by full id or unique id prefix.
func (e *env) resolveTask(arg string) (model.Task, error) {
	if t, err := e.tracker.Task(arg); err == nil {
		return t, nil
	}

	var matches []model.Task
	for _, t := range e.tracker.Tasks() {
		if strings.HasPrefix(t.ID, arg) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("task %s: %w", arg, tracker.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("task id prefix %q is ambiguous (%d matches)", arg, len(matches))
	}
}

// shortID is the id prefix shown in listings.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
