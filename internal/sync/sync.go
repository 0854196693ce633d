package sync

import (
	"context"
	"fmt"

	"github.com/nhle/timetracker/internal/model"
	"github.com/nhle/timetracker/internal/tracker"
)

// Sync reconciles one task held by tr and persists the outcome with a
// single write. Push failures are reported through tr's notifier and in
// the returned Result; any other failure leaves the task untouched.
func Sync(ctx context.Context, tr *tracker.Tracker, r *Reconciler, taskID string) (*Result, error) {
	var result *Result
	_, err := tr.Mutate(ctx, taskID, func(task *model.Task) error {
		var err error
		result, err = r.Reconcile(ctx, task)
		return err
	})
	if err != nil {
		tr.Notify(model.Notification{
			Level:   model.LevelError,
			TaskID:  taskID,
			Message: fmt.Sprintf("Failed to sync with Jira: %v", err),
		})
		return nil, err
	}

	for _, pe := range result.PushErrors {
		tr.Notify(model.Notification{
			Level:   model.LevelError,
			TaskID:  taskID,
			Message: fmt.Sprintf("Failed to sync worklog with Jira: %v", pe.Err),
		})
	}
	tr.Notify(model.Notification{
		Level:   model.LevelSuccess,
		TaskID:  taskID,
		Message: fmt.Sprintf("Synced with Jira: %d pushed, %d pulled", result.Pushed, result.Pulled),
	})

	return result, nil
}

// OnTimerStopped returns a transition hook that syncs a linked task each
// time its timer stops. The tracker also fires hooks for tasks it pauses
// because another task started, so starting one task syncs the task it
// displaced before returning. Failures are surfaced as notifications only.
func OnTimerStopped(tr *tracker.Tracker, r *Reconciler) tracker.TransitionHook {
	return func(ctx context.Context, task model.Task, from, _ model.Status) {
		if from != model.StatusInProgress || task.JiraTicket == "" {
			return
		}
		_, _ = Sync(ctx, tr, r, task.ID)
	}
}

// Merge folds a copy of a task that was reconciled away from the tracker
// back into the current version. The remote title and description win;
// sessions in synced that current lacks (by start instant) are appended.
// Sessions recorded locally in the meantime are kept. It returns the
// number of sessions appended.
func Merge(current *model.Task, synced model.Task) int {
	current.Title = synced.Title
	current.Description = synced.Description

	have := make(map[int64]struct{}, len(current.TimeSessions))
	for _, s := range current.TimeSessions {
		have[s.Start.UnixNano()] = struct{}{}
	}

	var added int
	for _, s := range synced.TimeSessions {
		if _, ok := have[s.Start.UnixNano()]; ok {
			continue
		}
		current.AppendSession(s)
		have[s.Start.UnixNano()] = struct{}{}
		added++
	}
	return added
}
