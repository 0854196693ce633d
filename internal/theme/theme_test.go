package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/timetracker/internal/model"
)

func TestApply(t *testing.T) {
	for _, name := range []string{"", "default", "dark", "light"} {
		assert.NoError(t, Apply(name), name)
	}
	assert.Error(t, Apply("solarized"))
}

func TestStatusStyle_DistinguishesRunningTasks(t *testing.T) {
	running := StatusStyle(model.StatusInProgress).GetForeground()
	paused := StatusStyle(model.StatusPaused).GetForeground()
	assert.NotEqual(t, running, paused)
	assert.Equal(t, ColorRed, NotificationStyle(model.LevelError).GetForeground())
}
