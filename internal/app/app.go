package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/timetracker/internal/keys"
	"github.com/nhle/timetracker/internal/model"
	appsync "github.com/nhle/timetracker/internal/sync"
	"github.com/nhle/timetracker/internal/theme"
	"github.com/nhle/timetracker/internal/tracker"
	"github.com/nhle/timetracker/internal/ui"
	"github.com/nhle/timetracker/internal/ui/commentbox"
	"github.com/nhle/timetracker/internal/ui/detail"
	"github.com/nhle/timetracker/internal/ui/taskform"
	"github.com/nhle/timetracker/internal/view"
)

// tickMsg drives the periodic refresh of running timers.
type tickMsg time.Time

// syncDoneMsg carries the outcome of a reconcile run off the UI loop.
type syncDoneMsg struct {
	taskID string
	task   model.Task
	result *appsync.Result
	err    error
}

// pending is an action waiting on a y/n answer.
type pending struct {
	prompt string
	taskID string
	to     model.Status
	delete bool
}

// Options configures the terminal UI.
type Options struct {
	// Reconciler enables the sync key. Nil hides it.
	Reconciler *appsync.Reconciler

	// SyncOnStop syncs a linked task in the background whenever its timer
	// stops, including tasks paused because another one started.
	SyncOnStop bool

	// IssueURL links ticket keys in the detail pane. Nil omits links.
	IssueURL func(key string) string

	// RefreshInterval is the timer redraw period.
	RefreshInterval time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Model is the root Bubble Tea model. All tracker calls happen inside
// Update, so the tracker is only ever touched from the UI loop.
type Model struct {
	tracker    *tracker.Tracker
	inbox      *Inbox
	reconciler *appsync.Reconciler
	syncOnStop bool
	issueURL   func(string) string
	keys       *keys.KeyMap
	help       help.Model
	layout     ui.Layout
	form       taskform.Model
	comment    commentbox.Model
	detail     detail.Model
	refresh    time.Duration
	clock      func() time.Time

	now        time.Time
	selectedID string
	pending    *pending
	syncing    map[string]bool
	ready      bool
}

// New creates the root model. Notifications the tracker emits should be
// routed to inbox.
func New(tr *tracker.Tracker, inbox *Inbox, opts Options) Model {
	clock := opts.Now
	if clock == nil {
		clock = time.Now
	}
	refresh := opts.RefreshInterval
	if refresh <= 0 {
		refresh = time.Second
	}

	layout := ui.NewLayout(80, 24)
	m := Model{
		tracker:    tr,
		inbox:      inbox,
		reconciler: opts.Reconciler,
		syncOnStop: opts.SyncOnStop,
		issueURL:   opts.IssueURL,
		keys:       keys.DefaultKeyMap(),
		help:       help.New(),
		layout:     layout,
		form:       taskform.New(layout.DetailWidth(), layout.ContentHeight()),
		comment:    commentbox.New(layout.DetailWidth()),
		detail:     detail.New(layout.DetailWidth(), layout.ContentHeight()),
		refresh:    refresh,
		clock:      clock,
		now:        clock(),
		syncing:    map[string]bool{},
	}
	if active, ok := tr.Active(); ok {
		m.selectedID = active.ID
	} else if order := m.order(); len(order) > 0 {
		m.selectedID = order[0]
	}
	m.refreshDetail()
	return m
}

// Init starts the refresh tick.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.refreshDetail()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.help.Width = msg.Width
		m.form.SetSize(m.layout.DetailWidth(), m.layout.ContentHeight())
		m.comment.SetSize(m.layout.DetailWidth())
		m.detail.SetSize(m.layout.DetailWidth(), m.layout.ContentHeight())
		m.ready = true
		return m, nil

	case tickMsg:
		m.now = m.clock()
		return m, m.tick()

	case syncDoneMsg:
		delete(m.syncing, msg.taskID)
		m.applySync(msg)
		return m, nil

	case taskform.SubmittedMsg:
		m.form.Close()
		m.saveTask(msg)
		return m, nil

	case commentbox.SubmittedMsg:
		if _, err := m.tracker.AddComment(context.Background(), msg.TaskID, msg.Text); err != nil {
			m.inbox.Error(err)
		}
		m.now = m.clock()
		return m, nil

	case taskform.CancelMsg, commentbox.CancelMsg:
		return m, nil
	}

	// Open inputs own the keyboard.
	if m.form.Active() {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	if m.comment.Active() {
		var cmd tea.Cmd
		m.comment, cmd = m.comment.Update(msg)
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.pending != nil {
			return m.answer(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	ctx := context.Background()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Down):
		m.move(1)

	case key.Matches(msg, m.keys.Up):
		m.move(-1)

	case key.Matches(msg, m.keys.Refresh):
		if err := m.tracker.Load(ctx); err != nil {
			m.inbox.Error(err)
		}

	case key.Matches(msg, m.keys.Start):
		cmd := m.request(model.StatusInProgress)
		return m, cmd

	case key.Matches(msg, m.keys.Pause):
		cmd := m.request(model.StatusPaused)
		return m, cmd

	case key.Matches(msg, m.keys.Complete):
		cmd := m.request(model.StatusDone)
		return m, cmd

	case key.Matches(msg, m.keys.Reopen):
		cmd := m.request(model.StatusTodo)
		return m, cmd

	case key.Matches(msg, m.keys.Delete):
		if m.selectedID != "" {
			m.pending = &pending{prompt: "Delete this task?", taskID: m.selectedID, delete: true}
		}

	case key.Matches(msg, m.keys.New):
		cmd := m.form.StartCreate()
		return m, cmd

	case key.Matches(msg, m.keys.Edit):
		if task, err := m.tracker.Task(m.selectedID); err == nil {
			cmd := m.form.StartEdit(task)
			return m, cmd
		}

	case key.Matches(msg, m.keys.Comment):
		if task, err := m.tracker.Task(m.selectedID); err == nil {
			cmd := m.comment.Open(task.ID, task.Title)
			return m, cmd
		}

	case key.Matches(msg, m.keys.Sync):
		cmd := m.startSync(m.selectedID)
		return m, cmd

	default:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	m.now = m.clock()
	return m, nil
}

// saveTask creates or updates a task from a submitted form and selects
// it.
func (m *Model) saveTask(msg taskform.SubmittedMsg) {
	ctx := context.Background()
	var (
		task model.Task
		err  error
	)
	if msg.TaskID == "" {
		task, err = m.tracker.CreateTask(ctx, msg.Input)
	} else {
		task, err = m.tracker.UpdateTask(ctx, msg.TaskID, msg.Input)
	}
	if err != nil {
		m.inbox.Error(err)
		return
	}
	m.selectedID = task.ID
	m.now = m.clock()
}

// request asks the tracker for a status change on the selected task,
// first prompting when the transition is gated.
func (m *Model) request(to model.Status) tea.Cmd {
	task, err := m.tracker.Task(m.selectedID)
	if err != nil {
		return nil
	}
	if prompt, gated := tracker.ConfirmationPrompt(task.Status, to); gated {
		m.pending = &pending{prompt: prompt, taskID: task.ID, to: to}
		return nil
	}
	out, err := m.tracker.RequestStatus(context.Background(), task.ID, to)
	m.now = m.clock()
	if err != nil {
		m.inbox.Error(err)
		return nil
	}
	return m.syncStopped(task.ID, out)
}

// syncStopped starts a background sync for every task whose timer the
// transition stopped, when sync on stop is enabled.
func (m *Model) syncStopped(taskID string, out tracker.Outcome) tea.Cmd {
	if !m.syncOnStop || !out.Applied {
		return nil
	}
	var cmds []tea.Cmd
	for _, p := range out.Paused {
		cmds = append(cmds, m.startSync(p.ID))
	}
	if out.From == model.StatusInProgress {
		cmds = append(cmds, m.startSync(taskID))
	}
	return tea.Batch(cmds...)
}

func (m Model) answer(msg tea.KeyMsg) (Model, tea.Cmd) {
	p := m.pending
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.pending = nil
		ctx := context.Background()
		var err error
		if p.delete {
			err = m.tracker.DeleteTask(ctx, p.taskID)
			if err == nil {
				m.selectedID = ""
				if order := m.order(); len(order) > 0 {
					m.selectedID = order[0]
				}
			}
		} else {
			approve := func(model.Task, string) bool { return true }
			var out tracker.Outcome
			out, err = m.tracker.RequestStatusWith(ctx, p.taskID, p.to, approve)
			if err == nil {
				cmd = m.syncStopped(p.taskID, out)
			}
		}
		if err != nil {
			m.inbox.Error(err)
		}
		m.now = m.clock()

	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.pending = nil
	}
	return m, cmd
}

// startSync reconciles a copy of the task off the UI loop. The result
// comes back as a syncDoneMsg. At most one sync per task is in flight.
func (m *Model) startSync(taskID string) tea.Cmd {
	if m.reconciler == nil || m.syncing[taskID] {
		return nil
	}
	task, err := m.tracker.Task(taskID)
	if err != nil || task.JiraTicket == "" {
		return nil
	}

	m.syncing[taskID] = true
	r := m.reconciler
	return func() tea.Msg {
		result, err := r.Reconcile(context.Background(), &task)
		return syncDoneMsg{taskID: task.ID, task: task, result: result, err: err}
	}
}

// applySync merges a task reconciled off the UI loop into the tracker.
func (m *Model) applySync(msg syncDoneMsg) {
	if msg.err != nil {
		m.inbox.Push(model.Notification{
			Level:   model.LevelError,
			TaskID:  msg.taskID,
			Message: fmt.Sprintf("Failed to sync with Jira: %v", msg.err),
		})
		return
	}

	_, err := m.tracker.Mutate(context.Background(), msg.taskID, func(t *model.Task) error {
		appsync.Merge(t, msg.task)
		return nil
	})
	if err != nil {
		m.inbox.Error(err)
		return
	}

	for _, pe := range msg.result.PushErrors {
		m.inbox.Push(model.Notification{
			Level:   model.LevelError,
			TaskID:  msg.taskID,
			Message: fmt.Sprintf("Failed to sync worklog with Jira: %v", pe.Err),
		})
	}
	m.inbox.Push(model.Notification{
		Level:   model.LevelSuccess,
		TaskID:  msg.taskID,
		Message: fmt.Sprintf("Synced with Jira: %d pushed, %d pulled", msg.result.Pushed, msg.result.Pulled),
	})
}

// order lists task ids in display order: active tasks, then recent ones.
func (m Model) order() []string {
	vm := m.render()
	ids := make([]string, 0, len(vm.Active)+len(vm.Recent))
	for _, it := range vm.Active {
		ids = append(ids, it.ID)
	}
	for _, it := range vm.Recent {
		ids = append(ids, it.ID)
	}
	return ids
}

func (m *Model) move(delta int) {
	order := m.order()
	if len(order) == 0 {
		return
	}
	idx := 0
	for i, id := range order {
		if id == m.selectedID {
			idx = i + delta
			break
		}
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(order) {
		idx = len(order) - 1
	}
	m.selectedID = order[idx]
}

// refreshDetail re-renders the detail pane from the current state.
func (m *Model) refreshDetail() {
	m.detail.SetDetail(m.render().Detail)
}

func (m Model) render() view.ViewModel {
	return view.Render(view.State{
		Tasks:      m.tracker.Tasks(),
		SelectedID: m.selectedID,
		Now:        m.now,
		IssueURL:   m.issueURL,
	})
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	vm := m.render()

	status := "no timer running"
	if active, ok := m.tracker.Active(); ok {
		for _, it := range vm.Active {
			if it.ID == active.ID {
				status = "▶ " + it.Title + " " + it.Elapsed
			}
		}
	}
	if len(m.syncing) > 0 {
		status = "syncing… " + status
	}
	header := m.layout.RenderHeader("Time Tracker", status)

	list := ui.RenderList("Active Tasks", vm.Active) + "\n" + ui.RenderList("Recently Completed", vm.Recent)
	right := m.detail.View()
	switch {
	case m.form.Active():
		right = m.form.View()
	case m.comment.Active():
		right = m.comment.View() + "\n" + right
	}
	content := m.layout.RenderColumns(list, right)

	return m.layout.RenderWithFrame(header, content, m.layout.RenderStatusBar(m.statusLine()))
}

// statusLine shows the pending prompt, else the latest notification, else
// key hints.
func (m Model) statusLine() string {
	if m.pending != nil {
		return m.pending.prompt + " (y/n)"
	}
	if n, ok := m.inbox.Latest(); ok && m.now.Sub(n.CreatedAt) < noticeTTL {
		return theme.NotificationStyle(n.Level).Render(n.Message)
	}
	return m.help.View(m.keys)
}
