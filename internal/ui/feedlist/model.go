// Package feedlist is the notification feed page: the list, its loading
// and error states, and the key handling that drives the feed controller.
package feedlist

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/keys"
	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/theme"
)

// FetchedMsg is sent when a fetch started by the page has completed.
type FetchedMsg struct {
	Err error
}

// NoticeMsg carries the outcome of a mutation for the status bar.
type NoticeMsg struct {
	Notice feed.Notice
}

// SelectedMsg is sent when the user opens a notification.
type SelectedMsg struct {
	Notification model.Notification
}

// Model is the feed page.
type Model struct {
	list    list.Model
	spinner spinner.Model
	ctrl    *feed.Controller
	keys    *keys.KeyMap
	timeout time.Duration
	snap    feed.Snapshot
	width   int
	height  int
}

// New creates the feed page over ctrl. Each request is bounded by timeout.
func New(ctrl *feed.Controller, k *keys.KeyMap, timeout time.Duration, width, height int) Model {
	l := list.New([]list.Item{}, Delegate{now: time.Now}, width, height-2)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		list:    l,
		spinner: sp,
		ctrl:    ctrl,
		keys:    k,
		timeout: timeout,
		snap:    ctrl.Snapshot(),
		width:   width,
		height:  height,
	}
}

// WithClock returns the page rendering relative dates against now.
func (m Model) WithClock(now func() time.Time) Model {
	m.list.SetDelegate(Delegate{now: now})
	return m
}

// Init starts the first fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(m.ctrl.StartFetch()), m.spinner.Tick)
}

// Update handles messages for the feed page.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FetchedMsg, NoticeMsg:
		cmd := m.sync()
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.snap.Generating = m.ctrl.Generating()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(Item)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedMsg{Notification: item.Notification}
		}

	case key.Matches(msg, m.keys.Refresh):
		return m.Refresh()

	case key.Matches(msg, m.keys.CycleType):
		return m.ApplyFilter(m.snap.Filter.NextType())

	case key.Matches(msg, m.keys.ToggleUnread):
		f := m.snap.Filter
		f.UnreadOnly = !f.UnreadOnly
		return m.ApplyFilter(f)

	case key.Matches(msg, m.keys.MarkRead):
		item, ok := m.list.SelectedItem().(Item)
		if !ok {
			return m, nil
		}
		return m, m.MarkRead(item.Notification.ID)

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, m.MarkAllRead()

	case key.Matches(msg, m.keys.Generate):
		return m.StartGenerate()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Refresh refetches the current filter. It is also the retry after an
// error.
func (m Model) Refresh() (Model, tea.Cmd) {
	ticket := m.ctrl.StartFetch()
	cmd := m.sync()
	return m, tea.Batch(cmd, m.fetch(ticket))
}

// ApplyFilter switches to f and fetches its roster.
func (m Model) ApplyFilter(f model.Filter) (Model, tea.Cmd) {
	ticket, err := m.ctrl.SetFilter(f)
	if err != nil {
		return m, nil
	}
	m.list.ResetSelected()
	cmd := m.sync()
	return m, tea.Batch(cmd, m.fetch(ticket))
}

// StartGenerate requests new notifications unless a request is pending.
func (m Model) StartGenerate() (Model, tea.Cmd) {
	if m.snap.Generating {
		return m, nil
	}
	m.snap.Generating = true
	return m, m.generate()
}

// sync pulls the controller state into the view.
func (m *Model) sync() tea.Cmd {
	m.snap = m.ctrl.Snapshot()
	return m.list.SetItems(toItems(m.snap.Roster))
}

func (m Model) fetch(t feed.Ticket) tea.Cmd {
	ctrl, timeout := m.ctrl, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return FetchedMsg{Err: ctrl.RunFetch(ctx, t)}
	}
}

// MarkRead returns a command that marks id as read.
func (m Model) MarkRead(id model.ID) tea.Cmd {
	ctrl, timeout := m.ctrl, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		notice, _ := ctrl.MarkAsRead(ctx, id)
		return NoticeMsg{Notice: notice}
	}
}

// MarkAllRead returns a command that marks every notification as read.
func (m Model) MarkAllRead() tea.Cmd {
	ctrl, timeout := m.ctrl, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		notice, _ := ctrl.MarkAllAsRead(ctx)
		return NoticeMsg{Notice: notice}
	}
}

// generate asks the service for new notifications. The generation and the
// refetch after it get one timeout each.
func (m Model) generate() tea.Cmd {
	ctrl, timeout := m.ctrl, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*timeout)
		defer cancel()
		notice, err := ctrl.GenerateDynamic(ctx)
		if errors.Is(err, feed.ErrBusy) {
			return nil
		}
		return NoticeMsg{Notice: notice}
	}
}

// Snapshot returns the state the page last rendered.
func (m Model) Snapshot() feed.Snapshot {
	return m.snap
}

// View renders the feed page.
func (m Model) View() string {
	lines := []string{m.renderToolbar()}

	if m.snap.Status == feed.StatusError {
		banner := theme.ErrorBannerStyle.
			Width(max(m.width-4, 10)).
			Render(m.snap.Err + "\n" + theme.HelpStyle.Render("press r to retry"))
		lines = append(lines, banner)
	}

	switch {
	case m.snap.Status == feed.StatusLoading && len(m.snap.Roster) == 0:
		lines = append(lines, m.centered(m.spinner.View()+" Loading notifications…"))
	case len(m.snap.Roster) == 0 && m.snap.Status == feed.StatusReady:
		lines = append(lines, m.renderEmptyState())
	case len(m.snap.Roster) > 0:
		lines = append(lines, m.list.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderToolbar shows the active filter and any pending work.
func (m Model) renderToolbar() string {
	filter := lipgloss.NewStyle().Bold(true).Render("Filter: ") + m.snap.Filter.Label()

	var activity string
	switch {
	case m.snap.Generating:
		activity = m.spinner.View() + " Generating…"
	case m.snap.Status == feed.StatusLoading && len(m.snap.Roster) > 0:
		activity = m.spinner.View() + " Refreshing…"
	}

	return lipgloss.NewStyle().Padding(0, 1).Render(filter + "  " + activity)
}

func (m Model) renderEmptyState() string {
	if m.snap.Filter != (model.Filter{}) {
		return m.centered("No notifications match this filter.\nPress tab or u to change it.")
	}
	return m.centered("No notifications yet.\n\nPress g to generate some.")
}

func (m Model) centered(s string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(max(m.height-2, 1)).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(s)
}

// SetSize updates the page dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
