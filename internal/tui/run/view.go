package run

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Morrolan/testr/internal/events"
	"github.com/Morrolan/testr/internal/tui/components"
	"github.com/Morrolan/testr/internal/tui/theme"
)

const (
	appTitle     = "testr"
	countColumn  = 5
	minTableRows = 3 // header (2) + one row
)

func failureColumns(inner int) []table.Column {
	// each column carries one cell of padding on both sides
	avail := max(inner-6-countColumn, 2)
	group := max(avail*45/100, 1)
	tests := max(avail-group, 1)
	return []table.Column{
		{Title: "File / Feature", Width: group},
		{Title: "Count", Width: countColumn},
		{Title: "Tests", Width: tests},
	}
}

func (m *Model) View() string {
	header := m.headerView()
	footer := m.footerView()
	area := components.ContentArea(m.width, m.height)
	bodyHeight := max(area.Dy()-lipgloss.Height(header)-lipgloss.Height(footer)-2, 0)

	body := m.panelsView()
	if m.modal != nil {
		modal := components.Modal(components.ModalConfig{
			Width:  m.width,
			Title:  m.modal.title,
			Body:   m.modal.body,
			Footer: "enter/esc to dismiss",
		})
		body = lipgloss.Place(area.Dx(), bodyHeight, lipgloss.Center, lipgloss.Center, modal)
		body = components.ClampHeight(body, bodyHeight)
	}

	view := components.Pad(m.width, strings.Join([]string{header, body, footer}, "\n\n"))
	view = components.ClampHeight(view, m.height)
	return components.PadToHeight(view, m.height)
}

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	area := components.ContentArea(m.width, m.height)
	chrome := lipgloss.Height(m.headerView()) + lipgloss.Height(m.footerView()) + 2
	_, bodyArea := components.SplitVertical(area, components.Fixed(chrome))

	cardChrome := components.ViewportChromeHeight(true, false)
	top, bottom := components.SplitVertical(bodyArea, components.Percent(50))
	left, right := components.SplitHorizontal(top, components.Percent(55))

	tableHeight := max(top.Dy()-cardChrome, minTableRows)
	tableInner := components.ViewportInnerWidth(left.Dx())
	m.table.SetColumns(failureColumns(tableInner))
	m.table.SetWidth(tableInner)
	m.table.SetHeight(tableHeight)

	m.details.Width = components.ViewportInnerWidth(right.Dx())
	m.details.Height = tableHeight

	m.logView.Width = components.ViewportInnerWidth(bottom.Dx())
	m.logView.Height = max(bottom.Dy()-cardChrome, 1)

	m.progress.Width = max(area.Dx()-16, 10)
	m.help.Width = area.Dx()

	m.refreshDetails()
	wasAtBottom := m.logView.AtBottom()
	m.refreshLog()
	if wasAtBottom {
		m.logView.GotoBottom()
	}
}

func (m *Model) headerView() string {
	width := components.ContentWidth(m.width)
	stats, _, _ := strings.Cut(m.summary.String(), "\n")
	lines := []string{
		components.TitleBar(components.TitleConfig{Title: appTitle, Subtitle: m.ctrl.Phase().Label()}),
		components.SummaryBar(m.summary.Passed, m.summary.Failed, m.summary.Skipped),
		theme.BodyStyle.Render(stats),
		m.progressLine(),
		theme.HintStyle.Render(m.summary.Extra),
	}
	return components.FitStyledContent(strings.Join(lines, "\n"), width, false, components.Ellipsis)
}

func (m *Model) progressLine() string {
	if m.total == nil {
		if m.ctrl.Active() {
			return components.SpinnerLine(m.spinner.View(), "Collecting tests…")
		}
		return theme.HintStyle.Render("No tests collected.")
	}
	ratio := 0.0
	if *m.total > 0 {
		ratio = min(float64(m.completed)/float64(*m.total), 1)
	}
	return m.progress.ViewAs(ratio) + theme.HintStyle.Render(fmt.Sprintf(" %d/%d", m.completed, *m.total))
}

func (m *Model) footerView() string {
	width := components.ContentWidth(m.width)
	status := ""
	switch {
	case m.flash != "":
		status = components.Flash(m.flashKind, m.flash)
	default:
		if cmd, err := m.ctrl.RerunCommand(); err == nil {
			status = components.CommandChip("Rerun", cmd)
		}
	}
	var keys help.KeyMap = m.keys
	if m.modal != nil {
		keys = modalKeys{m.keys}
	}
	lines := []string{status, components.HelpBar(width, m.help, keys)}
	return components.FitStyledContent(strings.Join(lines, "\n"), width, false, components.Ellipsis)
}

func (m *Model) panelsView() string {
	area := components.ContentArea(m.width, m.height)
	left, right := components.SplitHorizontal(area, components.Percent(55))

	failures := components.ViewportCard(components.ViewportCardOptions{
		Width:        left.Dx(),
		Height:       m.details.Height,
		Title:        fmt.Sprintf("Failures (%d)", len(m.rows)),
		Content:      m.table.View(),
		Focused:      m.focus == focusTable,
		Preformatted: true,
	})
	details := components.ViewportCard(components.ViewportCardOptions{
		Width:        right.Dx(),
		Height:       m.details.Height,
		Title:        "Details",
		Content:      m.details.View(),
		Focused:      m.focus == focusDetails,
		Preformatted: true,
	})
	logTitle := "Log"
	if !m.logView.AtBottom() {
		logTitle = fmt.Sprintf("Log (%.0f%%)", m.logView.ScrollPercent()*100)
	}
	logCard := components.ViewportCard(components.ViewportCardOptions{
		Width:        area.Dx(),
		Height:       m.logView.Height,
		Title:        logTitle,
		Content:      m.logView.View(),
		Focused:      m.focus == focusLog,
		Preformatted: true,
	})
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, failures, details),
		logCard,
	)
}

// styleLogLine colors the outcome tag of a result line and collection errors.
func styleLogLine(line string) string {
	if strings.HasPrefix(line, "[!]") {
		return theme.WarningStyle.Render(line)
	}
	for _, o := range events.Outcomes {
		tag := "[" + string(o) + "]"
		if i := strings.LastIndex(line, tag); i >= 0 {
			return line[:i] + theme.OutcomeStyle(o).Render(tag) + line[i+len(tag):]
		}
	}
	return line
}
