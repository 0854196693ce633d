package jira

// Issue represents a single Jira issue from the REST API.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self"`
	Fields IssueFields `json:"fields"`
}

// IssueFields contains the fields of a Jira issue the tracker reads.
type IssueFields struct {
	Summary string `json:"summary"`

	// Description is an Atlassian Document Format tree; nil when empty.
	Description *ADFNode `json:"description"`
}

// ADFNode is one node of an Atlassian Document Format tree. Only the
// fields needed to extract plain text are decoded.
type ADFNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Content []ADFNode `json:"content,omitempty"`
}

// Worklog is a single entry from GET /rest/api/3/issue/{key}/worklog.
type Worklog struct {
	Started          string `json:"started"`
	TimeSpent        string `json:"timeSpent"`
	TimeSpentSeconds int64  `json:"timeSpentSeconds"`
}

// WorklogPage is a page of worklogs.
type WorklogPage struct {
	StartAt    int       `json:"startAt"`
	MaxResults int       `json:"maxResults"`
	Total      int       `json:"total"`
	Worklogs   []Worklog `json:"worklogs"`
}

// AddWorklogRequest is the body of POST /rest/api/3/issue/{key}/worklog.
type AddWorklogRequest struct {
	TimeSpent string `json:"timeSpent"`
	Started   string `json:"started"`
}

// Myself is the response from GET /rest/api/3/myself.
type Myself struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	Active       bool   `json:"active"`
}

// ErrorResponse is the standard Jira error response format.
type ErrorResponse struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}
