package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/Morrolan/testr/internal/tui/theme"
)

// FlashKind enumerates flash banner severity levels.
type FlashKind int

const (
	FlashNone FlashKind = iota
	FlashInfo
	FlashSuccess
	FlashWarning
	FlashDanger
)

// Flash renders a single-line banner highlighting ephemeral state.
func Flash(kind FlashKind, message string) string {
	msg := strings.TrimSpace(message)
	if msg == "" || kind == FlashNone {
		return ""
	}
	style := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	switch kind {
	case FlashSuccess:
		style = style.Background(theme.Colors.Success).Foreground(theme.Colors.Surface)
	case FlashWarning:
		style = style.Background(theme.Colors.Highlight).Foreground(theme.Colors.Border)
	case FlashDanger:
		style = style.Background(theme.Colors.Warning).Foreground(theme.Colors.Surface)
	default:
		style = style.Background(theme.Colors.Surface).Foreground(theme.Colors.Accent)
	}
	return style.Render(msg)
}

// NewSpinner returns a dot spinner for the indeterminate progress line.
func NewSpinner() spinner.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Colors.Accent)
	return sp
}

// SpinnerLine renders an inline spinner with descriptive text.
func SpinnerLine(spinnerView, text string) string {
	if strings.TrimSpace(text) == "" {
		return spinnerView
	}
	return lipgloss.JoinHorizontal(lipgloss.Left,
		lipgloss.NewStyle().Foreground(theme.Colors.Accent).Render(spinnerView),
		theme.BodyStyle.Render(" "+text),
	)
}

// CommandChip renders a shell command as a pill followed by a copy hint.
func CommandChip(label, cmd string) string {
	if strings.TrimSpace(cmd) == "" {
		return ""
	}
	chip := lipgloss.NewStyle().
		Background(theme.Colors.Surface).
		Foreground(theme.Colors.Accent).
		Padding(0, 1).
		Bold(true).
		Render(cmd)
	hint := theme.HintStyle.Render(" [c] copy")
	if label == "" {
		return chip + hint
	}
	return theme.HintStyle.Render(label+" ") + chip + hint
}
