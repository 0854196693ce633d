package jira

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/nhle/timetracker/internal/source"
	"github.com/nhle/timetracker/internal/timefmt"
)

// worklogPageSize is the page size requested when listing worklogs.
const worklogPageSize = 100

// Adapter implements source.IssueTracker for Jira Cloud.
type Adapter struct {
	client *Client
}

// NewAdapter creates a new Jira adapter authenticating as email with an
// API token.
func NewAdapter(baseURL, email, apiToken string) *Adapter {
	return &Adapter{
		client: NewClient(baseURL, email, apiToken),
	}
}

var _ source.IssueTracker = (*Adapter)(nil)

// ValidateConnection verifies credentials by calling GET /rest/api/3/myself.
// Returns the user's display name on success.
func (a *Adapter) ValidateConnection(
	ctx context.Context,
) (string, error) {
	var me Myself
	if err := a.client.Get(ctx, "/rest/api/3/myself", &me); err != nil {
		return "", fmt.Errorf("validating Jira connection: %w", err)
	}
	return me.DisplayName, nil
}

// GetIssue fetches an issue's summary and description.
func (a *Adapter) GetIssue(
	ctx context.Context,
	key string,
) (*source.Issue, error) {
	path := fmt.Sprintf(
		"/rest/api/3/issue/%s?fields=summary,description",
		url.PathEscape(key),
	)

	var issue Issue
	if err := a.client.Get(ctx, path, &issue); err != nil {
		return nil, fmt.Errorf("fetching Jira issue %s: %w", key, err)
	}

	return &source.Issue{
		Key:         issue.Key,
		Summary:     issue.Fields.Summary,
		Description: FlattenADF(issue.Fields.Description),
	}, nil
}

// GetWorklogs lists every worklog on an issue, following pagination.
func (a *Adapter) GetWorklogs(
	ctx context.Context,
	key string,
) ([]source.Worklog, error) {
	var worklogs []source.Worklog

	for startAt := 0; ; {
		path := fmt.Sprintf(
			"/rest/api/3/issue/%s/worklog?startAt=%d&maxResults=%d",
			url.PathEscape(key), startAt, worklogPageSize,
		)

		var page WorklogPage
		if err := a.client.Get(ctx, path, &page); err != nil {
			return nil, fmt.Errorf("fetching worklogs for %s: %w", key, err)
		}

		for _, wl := range page.Worklogs {
			converted, err := toWorklog(wl)
			if err != nil {
				return nil, fmt.Errorf("worklog %s on %s: %w", wl.Started, key, err)
			}
			worklogs = append(worklogs, converted)
		}

		startAt += len(page.Worklogs)
		if len(page.Worklogs) == 0 || startAt >= page.Total {
			break
		}
	}

	return worklogs, nil
}

// AddWorklog posts a new worklog entry. started is sent in UTC with the
// "+0000" offset notation Jira requires.
func (a *Adapter) AddWorklog(
	ctx context.Context,
	key string,
	wl source.NewWorklog,
) error {
	path := fmt.Sprintf("/rest/api/3/issue/%s/worklog", url.PathEscape(key))
	payload := AddWorklogRequest{
		TimeSpent: wl.TimeSpent,
		Started:   timefmt.FormatWorklogStarted(wl.Started),
	}

	var created Worklog
	if err := a.client.Post(ctx, path, payload, &created); err != nil {
		return fmt.Errorf("adding worklog to %s: %w", key, err)
	}
	return nil
}

// BrowseURL returns the link to an issue in the Jira UI, or "" when
// either the site URL or the key is empty.
func BrowseURL(baseURL, key string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" || key == "" {
		return ""
	}
	return baseURL + "/browse/" + url.PathEscape(key)
}

// toWorklog converts the wire form to source.Worklog.
func toWorklog(wl Worklog) (source.Worklog, error) {
	started, err := timefmt.ParseTrackerTime(wl.Started)
	if err != nil {
		return source.Worklog{}, err
	}

	return source.Worklog{
		Started:          started,
		TimeSpentSeconds: wl.TimeSpentSeconds,
	}, nil
}
