package testutil

import (
	"testing"

	"github.com/nhle/timetracker/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewTestTaskStore wraps NewTestStore in a TaskStore.
func NewTestTaskStore(t *testing.T) *store.TaskStore {
	t.Helper()
	return store.NewTaskStore(NewTestStore(t))
}
