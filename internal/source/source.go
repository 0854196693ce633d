package source

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// AuthError indicates that authentication has failed for the tracker.
// It is returned by clients when a 401 response is received.
type AuthError struct {
	BaseURL string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.BaseURL, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// StatusError is returned when the tracker answers with a non-success
// status. Body holds the raw response body for display.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf(
		"unexpected status %d on %s %s: %s",
		e.StatusCode, e.Method, e.Path, e.Body,
	)
}

// StatusOf extracts the HTTP status and body from err's chain. It returns
// zero and an empty body for transport-level failures.
func StatusOf(err error) (int, string) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, se.Body
	}
	return 0, ""
}

// Issue is the subset of a remote issue the reconciler consumes.
type Issue struct {
	Key     string
	Summary string

	// Description is the issue body flattened to plain text.
	Description string
}

// Worklog is a single remote time entry.
type Worklog struct {
	Started          time.Time
	TimeSpentSeconds int64
}

// NewWorklog is the payload submitted for a local session.
type NewWorklog struct {
	// TimeSpent uses the tracker's duration notation, e.g. "2h 30m".
	TimeSpent string

	// Started is rendered by the client in the tracker's offset notation.
	Started time.Time
}

// IssueTracker is the remote collaborator the sync reconciler depends on.
type IssueTracker interface {
	// ValidateConnection verifies credentials and connectivity.
	// Returns a human-readable status message on success.
	ValidateConnection(ctx context.Context) (string, error)

	// GetIssue fetches the canonical record for an issue key.
	GetIssue(ctx context.Context, key string) (*Issue, error)

	// GetWorklogs lists every worklog entry recorded on the issue.
	GetWorklogs(ctx context.Context, key string) ([]Worklog, error)

	// AddWorklog submits a new worklog entry.
	AddWorklog(ctx context.Context, key string, wl NewWorklog) error
}
