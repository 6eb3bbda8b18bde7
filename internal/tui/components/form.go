package components

import (
	"strings"

	"github.com/Morrolan/testr/internal/tui/theme"
)

// FormField describes a labeled input block within the launcher form.
type FormField struct {
	Label   string
	Input   string // rendered bubbles input
	Focused bool
	Hint    string
	Error   string
}

// FormFieldView renders the label/input/hint/error stack for a single field.
func FormFieldView(field FormField) string {
	if strings.TrimSpace(field.Label) == "" {
		return field.Input
	}
	marker := "  "
	labelStyle := theme.HintStyle
	if field.Focused {
		marker = "▶ "
		labelStyle = theme.SelectedStyle
	}
	lines := []string{labelStyle.Render(marker + field.Label), field.Input}
	switch {
	case field.Error != "":
		lines = append(lines, theme.WarningStyle.Render(field.Error))
	case field.Hint != "":
		lines = append(lines, theme.HintStyle.Render(field.Hint))
	}
	return strings.Join(lines, "\n")
}
