package run

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	RerunFailed   key.Binding
	RerunSelected key.Binding
	RunAll        key.Binding
	Stop          key.Binding
	Copy          key.Binding
	Focus         key.Binding
	Select        key.Binding
	Quit          key.Binding
	Acknowledge   key.Binding
	ForceQuit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		RerunFailed:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rerun failed")),
		RerunSelected: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "rerun selected")),
		RunAll:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "run all")),
		Stop:          key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Copy:          key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy cmd")),
		Focus:         key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		Select:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+q", "esc"), key.WithHelp("q", "quit")),
		Acknowledge:   key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter", "dismiss")),
		ForceQuit:     key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.RerunFailed, k.RerunSelected, k.RunAll, k.Stop, k.Copy, k.Focus, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Select, k.Acknowledge}}
}

// modalKeys is the help shown while the stop notice is open.
type modalKeys struct{ keyMap }

func (k modalKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Acknowledge}
}

func (k modalKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
