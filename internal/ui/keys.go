package ui

import (
	uistate "github.com/atomicstack/earctl/internal/ui/state"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Option []key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j", "tab"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Option: []key.Binding{
			key.NewBinding(key.WithKeys("1")),
			key.NewBinding(key.WithKeys("2")),
			key.NewBinding(key.WithKeys("3")),
			key.NewBinding(key.WithKeys("4")),
		},
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Help, k.Quit}
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.showHelp = !m.showHelp
		return nil
	}
	// Settings stay hidden until the device identified itself.
	if !m.connected() {
		return nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Up):
		return m.apply(uistate.MoveCursor{Delta: -1})
	case key.Matches(keyMsg, m.keys.Down):
		return m.apply(uistate.MoveCursor{Delta: 1})
	case key.Matches(keyMsg, m.keys.Left):
		return m.apply(uistate.Step{Delta: -1})
	case key.Matches(keyMsg, m.keys.Right):
		return m.apply(uistate.Step{Delta: 1})
	}
	for i, binding := range m.keys.Option {
		if key.Matches(keyMsg, binding) {
			return m.apply(uistate.Choose{Row: m.controls.Cursor, Option: i})
		}
	}
	return nil
}
