package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Morrolan/testr/internal/tui/theme"
)

// SummaryBar renders outcome counts as badges.
func SummaryBar(passed, failed, skipped int) string {
	parts := []string{
		theme.BadgePassed.Render(fmt.Sprintf("PASSED %d", passed)),
		theme.BadgeFailed.Render(fmt.Sprintf("FAILED %d", failed)),
		theme.BadgeSkipped.Render(fmt.Sprintf("SKIPPED %d", skipped)),
	}
	return strings.Join(parts, "  ")
}

// TableStyles customizes Bubble table colors to match the shared palette.
func TableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(theme.Colors.Border).
		Bold(true).
		Foreground(theme.Colors.Primary).
		Padding(0, 1)
	styles.Cell = styles.Cell.
		Foreground(theme.Colors.Primary).
		Padding(0, 1)
	styles.Selected = styles.Selected.
		Foreground(theme.Colors.Surface).
		Background(theme.Colors.Accent).
		Bold(true)
	return styles
}
