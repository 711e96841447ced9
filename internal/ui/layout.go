package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notifeed/internal/theme"
)

// Layout manages the header / content / status bar split of the terminal.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentHeight returns the height available for the main content area.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.StatusBarHeight, 1)
}

// UnreadBadge formats the unread counter shown in the header.
func UnreadBadge(n int) string {
	return fmt.Sprintf("[%d unread]", n)
}

// RenderHeader renders the title on the left and the unread badge on the
// right.
func (l Layout) RenderHeader(title string, unread int) string {
	left := theme.HeaderStyle.Render(title)
	right := theme.UnreadBadgeStyle.
		Background(theme.HeaderStyle.GetBackground()).
		Render(UnreadBadge(unread))
	return joinFilled(theme.HeaderStyle, l.Width, left, right)
}

// RenderStatusBar renders key hints, or the latest notice when there is
// one.
func (l Layout) RenderStatusBar(hints string, notice string, isError bool) string {
	style := theme.StatusBarStyle
	text := hints
	if notice != "" {
		style = theme.NoticeStyle(isError)
		text = notice
	}
	return joinFilled(style, l.Width, style.Render(text), "")
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// joinFilled places left and right at the edges of a width-wide bar painted
// with style's background.
func joinFilled(style lipgloss.Style, width int, left, right string) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}
