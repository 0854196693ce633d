package crossref

import (
	"regexp"
	"strings"
)

// jiraKeyPattern matches Jira issue keys (e.g., PROJ-123, ABC-1).
var jiraKeyPattern = regexp.MustCompile(`([A-Z][A-Z0-9]+-\d+)`)

// ExtractJiraKeys extracts all Jira issue key matches from text.
// Returns a deduplicated list preserving the order of first occurrence.
func ExtractJiraKeys(text string) []string {
	matches := jiraKeyPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var result []string
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		result = append(result, m)
	}
	return result
}

// NormalizeTicket turns user input for a task's ticket into a bare issue
// key. It accepts a key in any case ("proj-12"), or a browse URL
// ("https://acme.atlassian.net/browse/PROJ-12"). Input that contains no
// recognizable key is returned trimmed and unchanged.
func NormalizeTicket(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if i := strings.LastIndex(trimmed, "/browse/"); i >= 0 {
		rest := trimmed[i+len("/browse/"):]
		if keys := ExtractJiraKeys(strings.ToUpper(rest)); len(keys) > 0 {
			return keys[0]
		}
	}

	upper := strings.ToUpper(trimmed)
	if jiraKeyPattern.FindString(upper) == upper {
		return upper
	}
	return trimmed
}
