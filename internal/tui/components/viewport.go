package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Morrolan/testr/internal/tui/theme"
)

// ViewportCardOptions configures the bordered panel wrapper. Width is the
// total rendered width, border included.
type ViewportCardOptions struct {
	Width        int
	Height       int // content rows; zero sizes to the content
	Title        string
	Content      string
	Status       string
	Focused      bool
	NoWrap       bool   // truncate instead of wrapping
	Tail         string // truncation tail, defaults to …
	Preformatted bool   // render content as-is without re-wrapping
}

func cardStyle(focused bool) lipgloss.Style {
	color := theme.Colors.Border
	if focused {
		color = theme.Colors.Accent
	}
	return lipgloss.NewStyle().
		Border(theme.BorderFor(theme.CardBorder(focused))).
		BorderForeground(color).
		Padding(0, 1)
}

// ViewportCard renders log/table panels with a shared frame, title and footer.
func ViewportCard(opts ViewportCardOptions) string {
	width := max(opts.Width, 8)
	style := cardStyle(opts.Focused)
	style = style.Width(width - style.GetHorizontalBorderSize())
	inner := ViewportInnerWidth(width)

	content := strings.TrimRight(opts.Content, "\n")
	if !opts.Preformatted {
		content = FitStyledContent(content, inner, !opts.NoWrap, opts.Tail)
	}
	if opts.Height > 0 {
		content = ClampHeight(content, opts.Height)
		style = style.Height(opts.Height)
	}

	parts := make([]string, 0, 3)
	if strings.TrimSpace(opts.Title) != "" {
		titleStyle := theme.HintStyle
		if opts.Focused {
			titleStyle = theme.SubtitleStyle
		}
		parts = append(parts, titleStyle.Render(FitStyledContent(opts.Title, width, false, Ellipsis)))
	}
	parts = append(parts, style.Render(content))
	if strings.TrimSpace(opts.Status) != "" {
		footer := lipgloss.NewStyle().
			Width(width).
			Background(theme.Colors.Surface).
			Foreground(theme.Colors.Muted).
			Padding(0, 1)
		parts = append(parts, footer.Render(FitStyledContent(opts.Status, width-2, false, Ellipsis)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// ViewportInnerWidth returns the usable content width inside a ViewportCard of
// the given total width.
func ViewportInnerWidth(totalWidth int) int {
	style := cardStyle(false)
	return max(1, max(totalWidth, 8)-style.GetHorizontalFrameSize())
}

// ViewportChromeHeight returns the rows a ViewportCard adds around its content.
func ViewportChromeHeight(hasTitle, hasStatus bool) int {
	h := cardStyle(false).GetVerticalFrameSize()
	if hasTitle {
		h++
	}
	if hasStatus {
		h++
	}
	return h
}
