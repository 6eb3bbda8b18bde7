package components

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/Morrolan/testr/internal/tui/theme"
)

// NewTextInput returns a single-line input with the shared palette.
func NewTextInput(placeholder string) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Prompt = "› "
	input.PromptStyle = lipgloss.NewStyle().Foreground(theme.Colors.Highlight)
	input.Cursor.Style = lipgloss.NewStyle().Foreground(theme.Colors.Accent)
	input.TextStyle = theme.BodyStyle
	input.PlaceholderStyle = theme.HintStyle
	return input
}

// NewTextarea returns a multi-line input whose border tracks focus.
func NewTextarea(placeholder string, height int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.SetHeight(max(height, 1))

	ta.FocusedStyle.Base = lipgloss.NewStyle().
		BorderStyle(theme.BorderFor(theme.BorderRounded)).
		BorderForeground(theme.Colors.Accent)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle().Background(theme.Colors.Surface)
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(theme.Colors.Highlight)
	ta.FocusedStyle.Text = theme.BodyStyle
	ta.FocusedStyle.Placeholder = theme.HintStyle

	ta.BlurredStyle.Base = lipgloss.NewStyle().
		BorderStyle(theme.BorderFor(theme.BorderNormal)).
		BorderForeground(theme.Colors.Border)
	ta.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(theme.Colors.Muted)
	ta.BlurredStyle.Text = theme.BodyStyle
	ta.BlurredStyle.Placeholder = theme.HintStyle
	return ta
}
