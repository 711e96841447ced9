package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/notifeed/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// UnreadBadgeStyle renders the "[N unread]" counter in the header.
var UnreadBadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorYellow).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ErrorBannerStyle frames the fetch error shown in place of the list.
var ErrorBannerStyle = lipgloss.NewStyle().
	Foreground(ColorRed).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorRed).
	Padding(0, 1)

// Presentation is how one notification type is shown.
type Presentation struct {
	Icon  string
	Title string
	Color lipgloss.AdaptiveColor
}

// ForType returns the presentation for t. Unrecognised values render as
// TypeOther.
func ForType(t model.Type) Presentation {
	switch t {
	case model.TypeAnimal:
		return Presentation{Icon: "🐾", Title: "Animal", Color: ColorOrange}
	case model.TypePlant:
		return Presentation{Icon: "🌿", Title: "Plant", Color: ColorGreen}
	case model.TypeWeather:
		return Presentation{Icon: "☁", Title: "Weather", Color: ColorBlue}
	case model.TypeMedical:
		return Presentation{Icon: "✚", Title: "Medical", Color: ColorRed}
	default:
		return Presentation{Icon: "•", Title: "Other", Color: ColorGray}
	}
}

// TypeStyle returns a color-coded label style for t.
func TypeStyle(t model.Type) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(ForType(t).Color)
}

// NoticeStyle returns the status bar style for a transient notice.
func NoticeStyle(isError bool) lipgloss.Style {
	base := StatusBarStyle.Bold(true)
	if isError {
		return base.Foreground(ColorRed)
	}
	return base.Foreground(ColorGreen)
}
