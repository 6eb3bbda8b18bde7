package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Morrolan/testr/internal/tui/theme"
)

// ViewWidth falls back to a classic 80 column terminal before the first
// WindowSizeMsg arrives.
func ViewWidth(width int) int {
	if width <= 0 {
		return 80
	}
	return width
}

// ContentWidth is the usable width once the shared horizontal padding is removed.
func ContentWidth(width int) int {
	w := ViewWidth(width) - theme.ViewHorizontalPadding*2
	if w < 24 {
		return 24
	}
	return w
}

// PadToHeight ensures the rendered view fills at least the given height, so
// Bubble Tea doesn't leave artifacts from previous, taller frames.
func PadToHeight(view string, minHeight int) string {
	if minHeight <= 0 {
		return view
	}
	height := lipgloss.Height(view)
	if height >= minHeight {
		return view
	}
	return view + strings.Repeat("\n", minHeight-height)
}

// ClampHeight drops trailing lines so the view never exceeds maxHeight.
func ClampHeight(view string, maxHeight int) string {
	if maxHeight <= 0 {
		return view
	}
	lines := strings.Split(view, "\n")
	if len(lines) <= maxHeight {
		return view
	}
	return strings.Join(lines[:maxHeight], "\n")
}
