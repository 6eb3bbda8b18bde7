package components

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Morrolan/testr/internal/tui/theme"
)

// NewHelp returns a help model styled with the shared palette.
func NewHelp() help.Model {
	h := help.New()
	keyStyle := lipgloss.NewStyle().Foreground(theme.Colors.Highlight).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.Colors.Muted)
	sepStyle := lipgloss.NewStyle().Foreground(theme.Colors.Muted)
	h.ShortSeparator = " • "
	h.Styles.ShortKey = keyStyle
	h.Styles.ShortDesc = descStyle
	h.Styles.ShortSeparator = sepStyle
	h.Styles.FullKey = keyStyle
	h.Styles.FullDesc = descStyle
	h.Styles.FullSeparator = sepStyle
	h.Styles.Ellipsis = sepStyle
	return h
}

// HelpBar renders the short help for keys on a single line no wider than width.
func HelpBar(width int, h help.Model, keys help.KeyMap) string {
	if keys == nil {
		return ""
	}
	maxWidth := width
	if maxWidth <= 0 {
		maxWidth = ContentWidth(width)
	}
	h.Width = maxWidth
	line := h.ShortHelpView(keys.ShortHelp())
	if runewidth.StringWidth(StripANSI(line)) > maxWidth {
		line = FitStyledContent(line, maxWidth, false, Ellipsis)
	}
	return line
}
