package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Morrolan/testr/internal/events"
)

// Palette exposes the semantic color tokens used across the dashboard.
type Palette struct {
	Primary   lipgloss.TerminalColor
	Accent    lipgloss.TerminalColor
	Muted     lipgloss.TerminalColor
	Warning   lipgloss.TerminalColor
	Success   lipgloss.TerminalColor
	Caution   lipgloss.TerminalColor
	Info      lipgloss.TerminalColor
	Surface   lipgloss.TerminalColor
	Border    lipgloss.TerminalColor
	Highlight lipgloss.TerminalColor
}

var Colors = Palette{
	Primary:   lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#FFFDF5"},
	Accent:    lipgloss.AdaptiveColor{Light: "#C43FCF", Dark: "#EE6FF8"},
	Muted:     lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"},
	Warning:   lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"},
	Success:   lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#35D79C"},
	Caution:   lipgloss.AdaptiveColor{Light: "#B58900", Dark: "#E5C07B"},
	Info:      lipgloss.AdaptiveColor{Light: "#0B7BBF", Dark: "#61AFEF"},
	Surface:   lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"},
	Border:    lipgloss.AdaptiveColor{Light: "#BDBABA", Dark: "#3C3C3C"},
	Highlight: lipgloss.AdaptiveColor{Light: "#8A9A00", Dark: "#ECFD65"},
}

const (
	ViewHorizontalPadding = 2
	ViewTopPadding        = 1
	ViewBottomPadding     = 0
	SectionSpacing        = 1
)

var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(Colors.Primary)
	SubtitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Colors.Accent)
	BodyStyle     = lipgloss.NewStyle().Foreground(Colors.Primary)
	HintStyle     = lipgloss.NewStyle().Foreground(Colors.Muted)
	WarningStyle  = lipgloss.NewStyle().Foreground(Colors.Warning).Bold(true)
	SuccessStyle  = lipgloss.NewStyle().Foreground(Colors.Success).Bold(true)
	SelectedStyle = lipgloss.NewStyle().Foreground(Colors.Surface).Background(Colors.Accent).Bold(true)
	BorderStyle   = lipgloss.NewStyle().BorderForeground(Colors.Border)
)

var (
	badgeBase    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	BadgePassed  = badgeBase.Foreground(Colors.Surface).Background(Colors.Success)
	BadgeFailed  = badgeBase.Foreground(Colors.Surface).Background(Colors.Warning)
	BadgeSkipped = badgeBase.Foreground(Colors.Surface).Background(Colors.Caution)
)

// OutcomeStyle returns the foreground style used for an outcome label.
func OutcomeStyle(o events.Outcome) lipgloss.Style {
	switch o {
	case events.OutcomePassed:
		return lipgloss.NewStyle().Foreground(Colors.Success)
	case events.OutcomeFailed, events.OutcomeError:
		return lipgloss.NewStyle().Foreground(Colors.Warning).Bold(true)
	case events.OutcomeSkipped:
		return lipgloss.NewStyle().Foreground(Colors.Caution)
	default:
		return BodyStyle
	}
}
