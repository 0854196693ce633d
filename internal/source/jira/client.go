package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/timetracker/internal/source"
)

// Client is a thin HTTP client for the Jira Cloud REST API v3.
// It handles Basic authentication, JSON marshaling, and
// automatic retry with exponential backoff on HTTP 429.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
	maxRetries int
	backoff    func(resp *http.Response, attempt int) time.Duration
}

// NewClient creates a new Jira HTTP client. The baseURL should be the
// root URL of the Jira site (e.g., https://acme.atlassian.net).
// email and apiToken are combined into a Basic credential.
func NewClient(baseURL, email, apiToken string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: "Basic " + BasicToken(email, apiToken),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
		backoff:    retryAfterDuration,
	}
}

// BasicToken returns base64("email:token"), the credential Jira Cloud
// expects for API-token authentication.
func BasicToken(email, apiToken string) string {
	return base64.StdEncoding.EncodeToString([]byte(email + ":" + apiToken))
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(
	ctx context.Context,
	path string,
	result interface{},
) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// do is the core HTTP method that builds the request, handles auth,
// rate limiting with exponential backoff, and JSON (de)serialization.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	url := c.baseURL + path

	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if data != nil {
			bodyReader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(
			ctx, method, url, bodyReader,
		)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", c.authHeader)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Atlassian-Token", "no-check")
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := c.backoff(resp, attempt)
			lastErr = &source.StatusError{
				Method:     method,
				Path:       path,
				StatusCode: resp.StatusCode,
				Body:       string(respBody),
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return &authFailure{
				StatusError: source.StatusError{
					Method:     method,
					Path:       path,
					StatusCode: resp.StatusCode,
					Body:       string(respBody),
				},
				auth: source.AuthError{
					BaseURL: c.baseURL,
					Message: "authentication failed (401): check your email and API token",
				},
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &source.StatusError{
				Method:     method,
				Path:       path,
				StatusCode: resp.StatusCode,
				Body:       errorBody(respBody),
			}
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf(
				"unmarshaling response from %s %s: %w",
				method, path, err,
			)
		}

		return nil
	}

	return fmt.Errorf(
		"max retries (%d) exceeded: %w", c.maxRetries, lastErr,
	)
}

// authFailure carries both the status (for display) and the auth
// classification, so errors.As matches either *source.StatusError or
// *source.AuthError.
type authFailure struct {
	source.StatusError
	auth source.AuthError
}

func (e *authFailure) Error() string { return e.auth.Error() }

// As lets errors.As reach the embedded errors.
func (e *authFailure) As(target interface{}) bool {
	switch t := target.(type) {
	case **source.StatusError:
		*t = &e.StatusError
		return true
	case **source.AuthError:
		*t = &e.auth
		return true
	}
	return false
}

// errorBody condenses Jira's standard error payload into one line, or
// returns the raw body when it is not in that format.
func errorBody(body []byte) string {
	var jiraErr ErrorResponse
	if json.Unmarshal(body, &jiraErr) == nil &&
		(len(jiraErr.ErrorMessages) > 0 || len(jiraErr.Errors) > 0) {
		parts := append([]string(nil), jiraErr.ErrorMessages...)
		fields := make([]string, 0, len(jiraErr.Errors))
		for field := range jiraErr.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			parts = append(parts, field+": "+jiraErr.Errors[field])
		}
		return strings.Join(parts, "; ")
	}
	return string(body)
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
