package store

import (
	"context"
	"fmt"

	"github.com/nhle/timetracker/internal/model"
)

// TaskStore adapts a key-value Store to the two records the application
// persists: the whole task collection and the settings record.
type TaskStore struct {
	kv Store
}

// NewTaskStore wraps kv.
func NewTaskStore(kv Store) *TaskStore {
	return &TaskStore{kv: kv}
}

// LoadTasks returns the persisted task collection, or an empty slice when
// nothing has been saved yet.
func (s *TaskStore) LoadTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if _, err := s.kv.Get(ctx, KeyTasks, &tasks); err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// SaveTasks re-serializes the entire collection.
func (s *TaskStore) SaveTasks(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	if err := s.kv.Set(ctx, KeyTasks, tasks); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	return nil
}

// LoadSettings returns the persisted settings, or the zero value.
func (s *TaskStore) LoadSettings(ctx context.Context) (model.Settings, error) {
	var settings model.Settings
	if _, err := s.kv.Get(ctx, KeySettings, &settings); err != nil {
		return model.Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	return settings, nil
}

// SaveSettings replaces the settings record.
func (s *TaskStore) SaveSettings(ctx context.Context, settings model.Settings) error {
	if err := s.kv.Set(ctx, KeySettings, settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// ClearSettings deletes the settings record.
func (s *TaskStore) ClearSettings(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeySettings); err != nil {
		return fmt.Errorf("clearing settings: %w", err)
	}
	return nil
}
