package model

import "time"

// Notification level constants.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelError   = "error"
)

// Notification is a user-facing message produced by a state change or a
// sync step. Notifications are transient and never persisted.
type Notification struct {
	// Level is one of the Level* constants.
	Level string `json:"level"`

	// TaskID links this notification to the task it concerns, if any.
	TaskID string `json:"task_id,omitempty"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}
