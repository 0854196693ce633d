package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/timetracker/internal/report"
	"github.com/nhle/timetracker/internal/tracker"
	"github.com/nhle/timetracker/tests/testutil"
)

// run executes the CLI against a database in dir and returns stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TIMETRACKER_STORAGE_PATH", filepath.Join(dir, "tt.db"))

	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(dir, "config.yaml"), "--yes"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func TestCLI_TaskLifecycle(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "add", "Write docs", "--ticket", "ops-1", "--tags", "docs, writing")
	require.NoError(t, err)
	assert.Contains(t, out, "Task created")
	id := lastLine(out)
	require.NotEmpty(t, id)

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Write docs")
	assert.Contains(t, out, "OPS-1")
	assert.Contains(t, out, shortID(id))

	out, err = run(t, dir, "start", shortID(id))
	require.NoError(t, err)
	assert.Contains(t, out, "Timer started: Write docs")

	out, err = run(t, dir, "start", shortID(id))
	require.NoError(t, err)
	assert.Contains(t, out, "Write docs is already IN PROGRESS.")

	_, err = run(t, dir, "done", id)
	require.NoError(t, err)

	_, err = run(t, dir, "comment", "add", id, "shipped", "it")
	require.NoError(t, err)

	out, err = run(t, dir, "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "DONE")
	assert.Contains(t, out, "shipped it")

	_, err = run(t, dir, "delete", id)
	require.NoError(t, err)

	_, err = run(t, dir, "show", id)
	assert.ErrorIs(t, err, tracker.ErrNotFound)
}

func TestCLI_ShowLinksTicket(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "settings", "set",
		"--url", "https://acme.atlassian.net/", "--email", "me@acme.io", "--token", "x")
	require.NoError(t, err)

	out, err := run(t, dir, "add", "Linked", "--ticket", "OPS-9")
	require.NoError(t, err)
	id := lastLine(out)

	out, err = run(t, dir, "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "https://acme.atlassian.net/browse/OPS-9")
}

func TestCLI_StatusRejectsUnknownValue(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "add", "A")
	require.NoError(t, err)

	_, err = run(t, dir, "status", lastLine(out), "blocked")
	assert.ErrorContains(t, err, `unknown status "blocked"`)
}

func TestCLI_ReportJSON(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "report", "--from", "2024-01-01", "--to", "2024-01-31", "--json")
	require.NoError(t, err)

	var r report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "2024-01-01", r.StartDate)
	assert.Equal(t, "2024-01-31", r.EndDate)
	assert.Empty(t, r.Entries)

	_, err = run(t, dir, "report", "--from", "2024-02-01", "--to", "2024-01-31")
	assert.ErrorContains(t, err, "The start date cannot be after the end date")
}

func TestCLI_ConfigInit(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "config.yaml")

	_, err = run(t, dir, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, dir, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestResolveTask(t *testing.T) {
	ctx := context.Background()
	tr := tracker.New(testutil.NewTestTaskStore(t))
	require.NoError(t, tr.Load(ctx))

	a, err := tr.CreateTask(ctx, tracker.TaskInput{Title: "A"})
	require.NoError(t, err)
	_, err = tr.CreateTask(ctx, tracker.TaskInput{Title: "B"})
	require.NoError(t, err)

	e := &env{tracker: tr}

	got, err := e.resolveTask(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)

	got, err = e.resolveTask(a.ID[:12])
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = e.resolveTask("")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = e.resolveTask("zzz")
	assert.ErrorIs(t, err, tracker.ErrNotFound)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123abcd", shortID("0123abcd-ffff"))
	assert.Equal(t, "abc", shortID("abc"))
}
