// Package run is the interactive test dashboard. It renders the state owned by
// a dashboard.Controller and maps keys onto its actions.
package run

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Morrolan/testr/internal/dashboard"
	"github.com/Morrolan/testr/internal/errors"
	"github.com/Morrolan/testr/internal/tui/components"
)

// Run launches the dashboard and blocks until the user quits.
func Run(opts dashboard.Options, progOpts ...tea.ProgramOption) error {
	m := New(opts)
	progOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}, progOpts...)
	prog := tea.NewProgram(m, progOpts...)
	if _, err := prog.Run(); err != nil {
		m.ctrl.Shutdown()
		return errors.WithStackTraceAndPrefix(err, "dashboard")
	}
	return nil
}

type focus int

const (
	focusTable focus = iota
	focusDetails
	focusLog
	focusCount
)

const (
	progressStart = "#C43FCF"
	progressEnd   = "#35D79C"

	logLimit      = 2000
	flashDuration = 3 * time.Second
	summaryTick   = time.Second
)

type flashExpiredMsg struct{ id int }

type summaryTickMsg struct{}

type modalState struct {
	title string
	body  []string
}

// Model is the bubbletea model of the dashboard. It implements
// dashboard.Presenter so the controller renders straight into it.
type Model struct {
	ctrl *dashboard.Controller

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	progress progress.Model
	table    table.Model
	details  viewport.Model
	logView  viewport.Model

	width, height int
	focus         focus

	logs        []string
	logRendered []string
	detailLines []string
	rows        []dashboard.FailureRow
	selectedKey string
	total       *int
	completed   int
	summary     dashboard.Summary
	modal       *modalState

	flash     string
	flashKind components.FlashKind
	flashID   int
}

var _ dashboard.Presenter = (*Model)(nil)

// New builds the dashboard model and its controller.
func New(opts dashboard.Options) *Model {
	tbl := table.New(
		table.WithColumns(failureColumns(40)),
		table.WithFocused(true),
		table.WithStyles(components.TableStyles()),
	)
	bar := progress.New(
		progress.WithGradient(progressStart, progressEnd),
		progress.WithoutPercentage(),
	)
	m := &Model{
		keys:     newKeyMap(),
		help:     components.NewHelp(),
		spinner:  components.NewSpinner(),
		progress: bar,
		table:    tbl,
		details:  viewport.New(0, 0),
		logView:  viewport.New(0, 0),
		width:    80,
		height:   24,
	}
	m.logView.MouseWheelEnabled = true
	m.details.MouseWheelEnabled = true
	m.ctrl = dashboard.New(opts, m)
	m.resize()
	return m
}

// Controller exposes the run controller driving the model.
func (m *Model) Controller() *dashboard.Controller { return m.ctrl }

// Init starts the first run as soon as the program mounts.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.ctrl.Init(), m.spinner.Tick, tickSummary())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, tea.ClearScreen
	case tea.KeyMsg:
		return m, m.handleKey(components.NormalizeKey(msg))
	case tea.MouseMsg:
		var cmd tea.Cmd
		if m.focus == focusDetails {
			m.details, cmd = m.details.Update(msg)
		} else {
			m.logView, cmd = m.logView.Update(msg)
		}
		return m, cmd
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case summaryTickMsg:
		if m.ctrl.Active() {
			m.summary = m.ctrl.Summary(m.summary.Extra)
		}
		return m, tickSummary()
	case flashExpiredMsg:
		if msg.id == m.flashID {
			m.flash = ""
		}
		return m, nil
	}
	return m, m.ctrl.Update(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m.quit()
	}
	if m.modal != nil {
		if key.Matches(msg, m.keys.Acknowledge) {
			m.modal = nil
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.RerunFailed):
		return m.ctrl.RerunFailed()
	case key.Matches(msg, m.keys.RerunSelected):
		return m.ctrl.RerunSelected()
	case key.Matches(msg, m.keys.RunAll):
		return m.ctrl.RerunAll()
	case key.Matches(msg, m.keys.Stop):
		return m.ctrl.Stop()
	case key.Matches(msg, m.keys.Copy):
		return m.copyRerunCommand()
	case key.Matches(msg, m.keys.Focus):
		m.setFocus((m.focus + 1) % focusCount)
		return nil
	case msg.Type == tea.KeyShiftTab:
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusTable:
		if key.Matches(msg, m.keys.Select) {
			m.selectCursor(true)
			return nil
		}
		before := m.table.Cursor()
		m.table, cmd = m.table.Update(msg)
		if m.table.Cursor() != before {
			m.selectCursor(false)
		}
	case focusDetails:
		m.details, cmd = m.details.Update(msg)
	case focusLog:
		m.logView, cmd = m.logView.Update(msg)
	}
	return cmd
}

func (m *Model) quit() tea.Cmd {
	m.ctrl.Shutdown()
	return tea.Quit
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	if f == focusTable {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

// selectCursor forwards the row under the table cursor to the controller.
func (m *Model) selectCursor(force bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return
	}
	rowKey := m.rows[i].Key
	if rowKey == m.selectedKey && !force {
		return
	}
	m.selectedKey = rowKey
	m.ctrl.Select(rowKey)
}

func (m *Model) copyRerunCommand() tea.Cmd {
	cmd, err := m.ctrl.RerunCommand()
	if err != nil {
		return m.setFlash(components.FlashDanger, fmt.Sprintf("Cannot build command: %v", errors.Unwrap(err)))
	}
	if err := clipboard.WriteAll(cmd); err != nil {
		return m.setFlash(components.FlashWarning, "Clipboard unavailable. Command: "+cmd)
	}
	return m.setFlash(components.FlashSuccess, "Copied: "+cmd)
}

func (m *Model) setFlash(kind components.FlashKind, msg string) tea.Cmd {
	m.flashID++
	m.flash = msg
	m.flashKind = kind
	id := m.flashID
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashExpiredMsg{id: id} })
}

func tickSummary() tea.Cmd {
	return tea.Tick(summaryTick, func(time.Time) tea.Msg { return summaryTickMsg{} })
}
