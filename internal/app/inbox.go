package app

import (
	"time"

	"github.com/nhle/timetracker/internal/model"
)

// noticeTTL is how long a notification stays in the status bar.
const noticeTTL = 4 * time.Second

// Inbox collects notifications for the status bar. Bubble Tea copies the
// root model on every update, so the model holds a pointer to it.
type Inbox struct {
	items []model.Notification
	now   func() time.Time
}

// NewInbox creates an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{now: time.Now}
}

// Push records a notification. It has the tracker.Notifier signature.
func (b *Inbox) Push(n model.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = b.now()
	}
	b.items = append(b.items, n)
}

// Error records err as an error notification.
func (b *Inbox) Error(err error) {
	b.Push(model.Notification{Level: model.LevelError, Message: err.Error()})
}

// Latest returns the most recent notification.
func (b *Inbox) Latest() (model.Notification, bool) {
	if len(b.items) == 0 {
		return model.Notification{}, false
	}
	return b.items[len(b.items)-1], true
}

// All returns every notification in arrival order.
func (b *Inbox) All() []model.Notification {
	return append([]model.Notification(nil), b.items...)
}
