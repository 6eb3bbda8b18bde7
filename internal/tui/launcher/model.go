// Package launcher is the interactive form that edits a run configuration
// before the dashboard starts.
package launcher

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/shlex"

	"github.com/Morrolan/testr/internal/config"
	"github.com/Morrolan/testr/internal/errors"
	"github.com/Morrolan/testr/internal/tui/components"
)

// ErrCanceled is returned when the user leaves the form without launching.
var ErrCanceled = errors.New("launch canceled")

// Run shows the form seeded with initial and returns the edited configuration.
func Run(initial config.RunConfig, progOpts ...tea.ProgramOption) (config.RunConfig, error) {
	progOpts = append([]tea.ProgramOption{tea.WithAltScreen()}, progOpts...)
	prog := tea.NewProgram(newModel(initial), progOpts...)
	res, err := prog.Run()
	if err != nil {
		return config.RunConfig{}, errors.WithStackTraceAndPrefix(err, "launcher")
	}
	m, ok := res.(model)
	if !ok {
		return config.RunConfig{}, errors.New("unexpected program result")
	}
	return m.result()
}

type field int

const (
	fieldPaths field = iota
	fieldKeyword
	fieldMarkers
	fieldExtra
	fieldLaunch
	fieldCount
)

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Launch key.Binding
	Cancel key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Launch, k.Cancel}
}

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous")),
	Launch: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "launch")),
	Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel")),
}

type model struct {
	cursor   field
	launched bool
	errText  string
	cfg      config.RunConfig

	paths   textinput.Model
	keyword textinput.Model
	markers textinput.Model
	extra   textarea.Model
	help    help.Model

	width, height int
}

func newModel(cfg config.RunConfig) model {
	paths := components.NewTextInput("./...")
	paths.SetValue(strings.Join(quoteAll(cfg.Paths), " "))
	keyword := components.NewTextInput("TestName|OtherTest")
	keyword.SetValue(cfg.Keyword)
	markers := components.NewTextInput("integration,e2e")
	markers.SetValue(cfg.Markers)
	extra := components.NewTextarea("-race -timeout 30s", 3)
	extra.SetValue(strings.Join(quoteAll(cfg.Extra), " "))

	m := model{
		cfg:     cfg.Clone(),
		paths:   paths,
		keyword: keyword,
		markers: markers,
		extra:   extra,
		help:    components.NewHelp(),
	}
	m.focus(fieldPaths)
	return m
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		width := components.ContentWidth(m.width) - 4
		m.paths.Width = width
		m.keyword.Width = width
		m.markers.Width = width
		m.extra.SetWidth(width)
		return m, nil
	case tea.KeyMsg:
		msg = components.NormalizeKey(msg)
		switch {
		case key.Matches(msg, keys.Cancel):
			return m, tea.Quit
		case key.Matches(msg, keys.Launch):
			return m.launch()
		case key.Matches(msg, keys.Next):
			if m.cursor != fieldExtra || msg.Type == tea.KeyTab {
				m.focus((m.cursor + 1) % fieldCount)
				return m, nil
			}
		case key.Matches(msg, keys.Prev):
			if m.cursor != fieldExtra || msg.Type == tea.KeyShiftTab {
				m.focus((m.cursor + fieldCount - 1) % fieldCount)
				return m, nil
			}
		case msg.Type == tea.KeyEnter && m.cursor == fieldLaunch:
			return m.launch()
		case msg.Type == tea.KeyEnter && m.cursor != fieldExtra:
			m.focus(m.cursor + 1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.cursor {
	case fieldPaths:
		m.paths, cmd = m.paths.Update(msg)
	case fieldKeyword:
		m.keyword, cmd = m.keyword.Update(msg)
	case fieldMarkers:
		m.markers, cmd = m.markers.Update(msg)
	case fieldExtra:
		m.extra, cmd = m.extra.Update(msg)
	}
	return m, cmd
}

func (m *model) focus(f field) {
	m.cursor = f
	m.paths.Blur()
	m.keyword.Blur()
	m.markers.Blur()
	m.extra.Blur()
	switch f {
	case fieldPaths:
		m.paths.Focus()
	case fieldKeyword:
		m.keyword.Focus()
	case fieldMarkers:
		m.markers.Focus()
	case fieldExtra:
		m.extra.Focus()
	}
}

// launch validates the inputs and quits with the edited configuration, or
// stays on the form with an inline error.
func (m model) launch() (tea.Model, tea.Cmd) {
	cfg, err := m.parse()
	if err != nil {
		m.errText = err.Error()
		return m, nil
	}
	m.cfg = cfg
	m.launched = true
	m.errText = ""
	return m, tea.Quit
}

func (m model) parse() (config.RunConfig, error) {
	paths, err := shlex.Split(m.paths.Value())
	if err != nil {
		return config.RunConfig{}, errors.WithStackTraceAndPrefix(err, "paths")
	}
	extra, err := config.ParseExtra(strings.Split(m.extra.Value(), "\n"))
	if err != nil {
		return config.RunConfig{}, errors.WithStackTraceAndPrefix(err, "extra options")
	}
	return config.New(paths, strings.TrimSpace(m.keyword.Value()), strings.TrimSpace(m.markers.Value()), extra), nil
}

func (m model) result() (config.RunConfig, error) {
	if !m.launched {
		return config.RunConfig{}, ErrCanceled
	}
	return m.cfg.Clone(), nil
}

func (m model) View() string {
	fieldErr := func(f field) string {
		if m.errText != "" && (f == fieldPaths && strings.HasPrefix(m.errText, "paths") ||
			f == fieldExtra && strings.HasPrefix(m.errText, "extra")) {
			return m.errText
		}
		return ""
	}
	launch := "press enter or ctrl+s"
	if m.cursor == fieldLaunch {
		launch = components.Flash(components.FlashInfo, "Launch dashboard")
	}
	fields := []components.FormField{
		{Label: "Packages / node ids", Input: m.paths.View(), Focused: m.cursor == fieldPaths, Hint: "space separated, shell quoting allowed", Error: fieldErr(fieldPaths)},
		{Label: "Test name filter (-run)", Input: m.keyword.View(), Focused: m.cursor == fieldKeyword},
		{Label: "Build tags (-tags)", Input: m.markers.View(), Focused: m.cursor == fieldMarkers},
		{Label: "Extra go test flags", Input: m.extra.View(), Focused: m.cursor == fieldExtra, Hint: "one or more lines, shell quoting allowed", Error: fieldErr(fieldExtra)},
		{Label: "Launch", Input: launch, Focused: m.cursor == fieldLaunch},
	}
	blocks := make([]string, 0, len(fields))
	for _, f := range fields {
		blocks = append(blocks, components.FormFieldView(f))
	}
	view := components.PageShell(components.PageShellOptions{
		Width: m.width,
		Title: components.TitleConfig{Title: "testr", Subtitle: "configure run"},
		Body:  strings.Join(blocks, "\n\n"),
		Help:  components.HelpBar(components.ContentWidth(m.width), m.help, keys),
	})
	return components.PadToHeight(view, m.height)
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if v == "" || strings.ContainsAny(v, " \t\"'\\") {
			v = "'" + strings.ReplaceAll(v, "'", `'"'"'`) + "'"
		}
		out[i] = v
	}
	return out
}
