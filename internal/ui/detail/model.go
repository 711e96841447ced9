package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/keys"
	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/theme"
)

// BackMsg signals the parent to navigate back to the feed.
type BackMsg struct{}

// MarkReadMsg asks the parent to mark the shown notification as read.
type MarkReadMsg struct {
	ID model.ID
}

// Model is the notification detail view.
type Model struct {
	item     *model.Notification
	viewport viewport.Model
	keys     *keys.KeyMap
	now      func() time.Time
	width    int
	height   int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		now:      time.Now,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.MarkRead):
			if m.item == nil || m.item.Read {
				return m, nil
			}
			id := m.item.ID
			return m, func() tea.Msg { return MarkReadMsg{ID: id} }
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.item == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No notification selected")
	}
	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.item == nil {
		return ""
	}
	n := m.item
	p := theme.ForType(n.Type)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	state := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorYellow).Render("unread")
	if n.Read {
		state = metaStyle.Render("read")
	}

	sections := []string{
		titleStyle.Render(n.Title),
		lipgloss.JoinHorizontal(lipgloss.Top,
			theme.TypeStyle(n.Type).Render(p.Icon+" "+p.Title), "  ", state),
		"",
		fmt.Sprintf("%s  %s (%s)",
			metaStyle.Render("Received:"),
			valStyle.Render(n.CreatedAt.Local().Format("2006-01-02 15:04")),
			feed.FormatDate(n.CreatedAt, m.now()),
		),
	}

	separator := lipgloss.NewStyle().
		Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))

	body := n.Message
	if body == "" {
		body = metaStyle.Italic(true).Render("No message")
	}
	sections = append(sections, "", separator, "",
		lipgloss.NewStyle().Width(max(m.width-4, 20)).Render(body))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetNotification replaces the shown notification and re-renders.
func (m *Model) SetNotification(n model.Notification) {
	m.item = &n
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Sync refreshes the shown notification from roster, keeping the scroll
// position. A notification that has left the roster stays as it was.
func (m *Model) Sync(roster []model.Notification) {
	if m.item == nil {
		return
	}
	for _, n := range roster {
		if n.ID == m.item.ID {
			m.item = &n
			m.viewport.SetContent(m.renderContent())
			return
		}
	}
}

// Current returns the shown notification, if any.
func (m Model) Current() (model.Notification, bool) {
	if m.item == nil {
		return model.Notification{}, false
	}
	return *m.item, true
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.item != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
