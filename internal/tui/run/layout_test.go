package run

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/Morrolan/testr/internal/dashboard"
)

// The dashboard must never grow past the terminal, which would push the
// summary and progress lines off-screen.
func TestViewRespectsTerminalSize(t *testing.T) {
	cases := []struct {
		width, height int
	}{
		{width: 200, height: 50},
		{width: 120, height: 40},
		{width: 80, height: 24},
		{width: 80, height: 18},
		{width: 60, height: 12},
	}

	for _, tc := range cases {
		m := newTestModel(t, sampleEngine())
		drive(t, m, m.ctrl.Init())
		m.Update(tea.WindowSizeMsg{Width: tc.width, Height: tc.height})
		for i := 0; i < 300; i++ {
			m.WriteLine("a long log line that keeps going well past the edge of a narrow terminal window")
		}

		view := m.View()
		assert.LessOrEqual(t, lipgloss.Height(view), tc.height, "height for %dx%d", tc.width, tc.height)
		assert.LessOrEqual(t, lipgloss.Width(view), tc.width, "width for %dx%d", tc.width, tc.height)

		m.ShowModal(dashboard.StopModalTitle, []string{dashboard.StopModalBody})
		view = m.View()
		assert.LessOrEqual(t, lipgloss.Height(view), tc.height, "modal height for %dx%d", tc.width, tc.height)
		assert.LessOrEqual(t, lipgloss.Width(view), tc.width, "modal width for %dx%d", tc.width, tc.height)
	}
}

func TestPanelsVisibleOnStandardTerminal(t *testing.T) {
	m := newTestModel(t, sampleEngine())
	drive(t, m, m.ctrl.Init())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	view := m.View()
	assert.Equal(t, 24, lipgloss.Height(view))
	assert.Contains(t, view, "Failures (2)")
	assert.Contains(t, view, "Details")
	assert.Contains(t, view, "Log")
	assert.Contains(t, view, "PASSED 1")
	assert.Contains(t, view, "FAILED 2")
	assert.Contains(t, view, "Run complete (exit status 1).")
}
