package ui

import (
	"github.com/atomicstack/earctl/internal/backend"
	tea "github.com/charmbracelet/bubbletea"
)

// redrawMsg wakes the program after the session worker emitted a response.
type redrawMsg struct{}

func waitForRedraw(n *backend.Notifier) tea.Cmd {
	return func() tea.Msg {
		<-n.C()
		return redrawMsg{}
	}
}

// handleRedrawMsg has nothing left to do: Update drained the responses
// before dispatching here. It only re-arms the wait for the next response.
func (m *Model) handleRedrawMsg(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(redrawMsg); !ok {
		return nil
	}
	if m.notifier == nil {
		return nil
	}
	return waitForRedraw(m.notifier)
}
