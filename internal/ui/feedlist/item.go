package feedlist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/theme"
)

var (
	itemStyle = lipgloss.NewStyle().PaddingLeft(2)

	selectedItemStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(theme.ColorBlue)

	unreadTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	readTitleStyle   = lipgloss.NewStyle().Foreground(theme.ColorGray)
	previewStyle     = lipgloss.NewStyle().Foreground(theme.ColorGray)
	dateStyle        = lipgloss.NewStyle().Foreground(theme.ColorGray)
	unreadDotStyle   = lipgloss.NewStyle().Foreground(theme.ColorBlue)
)

// Item wraps a notification so it can be used in a bubbles/list.
type Item struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Notification.Title }

// Title returns the notification title.
func (i Item) Title() string { return i.Notification.Title }

// Description returns the notification body.
func (i Item) Description() string { return i.Notification.Message }

func toItems(roster []model.Notification) []list.Item {
	items := make([]list.Item, len(roster))
	for i, n := range roster {
		items[i] = Item{Notification: n}
	}
	return items
}

// Delegate renders a notification as a heading line and a preview line.
type Delegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render draws a single notification.
func (d Delegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	item, ok := li.(Item)
	if !ok {
		return
	}
	fmt.Fprint(w, renderItem(item.Notification, d.now(), m.Width(), index == m.Index()))
}

func renderItem(n model.Notification, now time.Time, width int, selected bool) string {
	p := theme.ForType(n.Type)

	dot := " "
	titleStyle := readTitleStyle
	if !n.Read {
		dot = unreadDotStyle.Render("●")
		titleStyle = unreadTitleStyle
	}

	heading := fmt.Sprintf("%s %s %s %s",
		dot,
		theme.TypeStyle(n.Type).Render(p.Icon+" "+p.Title),
		titleStyle.Render(n.Title),
		dateStyle.Render(feed.FormatDate(n.CreatedAt, now)),
	)
	preview := "    " + previewStyle.Render(truncate(n.Message, width-8))

	block := heading + "\n" + preview
	if selected {
		return selectedItemStyle.Render(block)
	}
	return itemStyle.Render(block)
}

// truncate shortens s to at most n runes, ending in an ellipsis.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
