package model

import "strings"

// Settings holds the remote issue tracker credentials persisted under the
// "settings" key.
type Settings struct {
	JiraURL   string `json:"jiraUrl"`
	JiraEmail string `json:"jiraEmail"`
	JiraToken string `json:"jiraToken"`
}

// Configured reports whether all three credentials are present.
func (s Settings) Configured() bool {
	return strings.TrimSpace(s.JiraURL) != "" &&
		strings.TrimSpace(s.JiraEmail) != "" &&
		strings.TrimSpace(s.JiraToken) != ""
}

// Validate returns a ValidationError naming the first missing credential.
func (s Settings) Validate() error {
	switch {
	case strings.TrimSpace(s.JiraURL) == "":
		return &ValidationError{Field: "jiraUrl", Message: "Please fill in all Jira credentials"}
	case strings.TrimSpace(s.JiraEmail) == "":
		return &ValidationError{Field: "jiraEmail", Message: "Please fill in all Jira credentials"}
	case strings.TrimSpace(s.JiraToken) == "":
		return &ValidationError{Field: "jiraToken", Message: "Please fill in all Jira credentials"}
	}
	return nil
}

// Redacted returns a copy safe for display, with the token masked.
func (s Settings) Redacted() Settings {
	if s.JiraToken != "" {
		s.JiraToken = "********"
	}
	return s
}
