package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Morrolan/testr/internal/tui/theme"
)

// TitleConfig controls how a TitleBar renders.
type TitleConfig struct {
	Title    string
	Subtitle string
}

// TitleBar renders a bold title aligned with an optional subtitle label.
func TitleBar(cfg TitleConfig) string {
	title := strings.TrimSpace(cfg.Title)
	if title == "" {
		return ""
	}
	rendered := theme.TitleStyle.Render(title)
	if strings.TrimSpace(cfg.Subtitle) == "" {
		return rendered
	}
	divider := lipgloss.NewStyle().Foreground(theme.Colors.Muted).Render(" · ")
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, divider, theme.SubtitleStyle.Render(cfg.Subtitle))
}

// PageShellOptions configures the shared page wrapper.
type PageShellOptions struct {
	Width int
	Title TitleConfig
	Body  string
	Help  string
}

// PageShell wraps a title, body, and help line with shared padding and spacing.
func PageShell(opts PageShellOptions) string {
	width := ViewWidth(opts.Width)
	sections := make([]string, 0, 3)
	if title := TitleBar(opts.Title); title != "" {
		sections = append(sections, title)
	}
	if body := strings.TrimRight(opts.Body, "\n"); strings.TrimSpace(body) != "" {
		sections = append(sections, body)
	}
	if strings.TrimSpace(opts.Help) != "" {
		sections = append(sections, opts.Help)
	}
	return Pad(width, strings.Join(sections, "\n\n"))
}

// Pad applies the shared outer padding to a fully composed view.
func Pad(width int, content string) string {
	return lipgloss.NewStyle().
		Width(ViewWidth(width)).
		PaddingLeft(theme.ViewHorizontalPadding).
		PaddingRight(theme.ViewHorizontalPadding).
		PaddingTop(theme.ViewTopPadding).
		PaddingBottom(theme.ViewBottomPadding).
		Render(content)
}

// ModalConfig defines the body of a notice modal.
type ModalConfig struct {
	Width  int
	Title  string
	Body   []string
	Footer string
}

// Modal renders a bordered notice with a warning header.
func Modal(cfg ModalConfig) string {
	if cfg.Title == "" && len(cfg.Body) == 0 {
		return ""
	}
	width := ContentWidth(cfg.Width)
	if width > 72 {
		width = 72
	}
	panel := lipgloss.NewStyle().
		Border(theme.BorderFor(theme.DefaultModalBorder)).
		BorderForeground(theme.Colors.Warning).
		Align(lipgloss.Left)
	inner := width - panel.GetHorizontalBorderSize()

	header := lipgloss.NewStyle().
		Background(theme.Colors.Warning).
		Foreground(theme.Colors.Surface).
		Bold(true).
		Padding(0, 1).
		Render(FitStyledContent(strings.TrimSpace(cfg.Title), inner-2, false, Ellipsis))

	bodyStyle := lipgloss.NewStyle().Width(inner).Padding(1, 2).Foreground(theme.Colors.Primary)
	body := FitStyledContent(strings.Join(cfg.Body, "\n"), inner-4, true, Ellipsis)

	parts := []string{header, bodyStyle.Render(body)}
	if strings.TrimSpace(cfg.Footer) != "" {
		parts = append(parts, lipgloss.NewStyle().Padding(0, 2).Render(theme.HintStyle.Render(cfg.Footer)))
	}
	return panel.Width(inner).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
