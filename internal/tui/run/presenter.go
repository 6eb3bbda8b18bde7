package run

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/Morrolan/testr/internal/dashboard"
	"github.com/Morrolan/testr/internal/tui/components"
)

// WriteLine appends a log line, dropping the oldest once logLimit is reached.
// Only the new lines are styled. The view follows the tail only while it is
// scrolled to the bottom.
func (m *Model) WriteLine(line string) {
	for _, l := range strings.Split(strings.TrimRight(line, "\n"), "\n") {
		m.logs = append(m.logs, l)
		m.logRendered = append(m.logRendered, m.renderLogLine(l))
	}
	if n := len(m.logs) - logLimit; n > 0 {
		m.logs = m.logs[n:]
		m.logRendered = m.logRendered[n:]
	}
	wasAtBottom := m.logView.AtBottom()
	m.logView.SetContent(strings.Join(m.logRendered, "\n"))
	if wasAtBottom {
		m.logView.GotoBottom()
	}
}

func (m *Model) ClearLog() {
	m.logs = nil
	m.refreshLog()
	m.logView.GotoTop()
}

func (m *Model) SetProgress(total *int, completed int) {
	if total == nil {
		m.total = nil
	} else {
		n := *total
		m.total = &n
	}
	m.completed = completed
}

func (m *Model) SetSummary(s dashboard.Summary) {
	m.summary = s
}

// ReplaceFailureRows swaps the table rows, keeping the cursor on the
// previously selected row when it survives.
func (m *Model) ReplaceFailureRows(rows []dashboard.FailureRow) {
	m.rows = rows
	tableRows := make([]table.Row, 0, len(rows))
	cursor := 0
	for i, row := range rows {
		tableRows = append(tableRows, table.Row{row.Group, fmt.Sprint(row.Count), row.Tests})
		if row.Key == m.selectedKey {
			cursor = i
		}
	}
	m.table.SetRows(tableRows)
	if len(rows) == 0 {
		m.selectedKey = ""
		m.table.SetCursor(0)
		return
	}
	m.selectedKey = rows[cursor].Key
	m.table.SetCursor(cursor)
}

func (m *Model) ShowDetails(lines []string) {
	m.detailLines = lines
	m.refreshDetails()
	m.details.GotoTop()
}

func (m *Model) ShowModal(title string, body []string) {
	m.modal = &modalState{title: title, body: body}
}

// refreshLog restyles every kept line, for when the log width changes.
func (m *Model) refreshLog() {
	m.logRendered = make([]string, len(m.logs))
	for i, l := range m.logs {
		m.logRendered[i] = m.renderLogLine(l)
	}
	m.logView.SetContent(strings.Join(m.logRendered, "\n"))
}

func (m *Model) renderLogLine(line string) string {
	return components.FitStyledContent(styleLogLine(line), m.logView.Width, true, "")
}

func (m *Model) refreshDetails() {
	content := strings.Join(m.detailLines, "\n")
	if len(m.detailLines) == 0 {
		content = "Select a failure to see its output."
	}
	m.details.SetContent(components.FitStyledContent(content, m.details.Width, true, ""))
}
