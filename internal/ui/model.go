package ui

import (
	"reflect"

	"github.com/atomicstack/earctl/internal/backend"
	"github.com/atomicstack/earctl/internal/data/dispatcher"
	"github.com/atomicstack/earctl/internal/logging"
	"github.com/atomicstack/earctl/internal/logging/events"
	"github.com/atomicstack/earctl/internal/state"
	"github.com/atomicstack/earctl/internal/theme"
	"github.com/atomicstack/earctl/internal/ui/command"
	uistate "github.com/atomicstack/earctl/internal/ui/state"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const defaultTitle = "Nothing Ear Manager"

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Model implements the Bubble Tea model for the control panel.
type Model struct {
	device     state.Device
	controls   uistate.Controls
	bus        *command.Bus
	dispatcher *dispatcher.Dispatcher
	notifier   *backend.Notifier

	spinner    spinner.Model
	keys       keyMap
	width      int
	fixedWidth bool
	showHelp   bool
	fatalErr   error

	handlers map[reflect.Type]msgHandler
}

// NewModel wires the model to the command bus, the response source and the
// redraw notifier. notifier may be nil, in which case responses are only
// picked up when some other message arrives.
func NewModel(bus *command.Bus, responses dispatcher.Source, notifier *backend.Notifier, width int) *Model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	if styles.Spinner != nil {
		s.Style = *styles.Spinner
	}
	m := &Model{
		controls:   uistate.NewControls(),
		bus:        bus,
		dispatcher: dispatcher.New(responses),
		notifier:   notifier,
		spinner:    s,
		keys:       defaultKeyMap(),
		showHelp:   true,
	}
	if width > 0 {
		m.width = width
		m.fixedWidth = true
	}
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.notifier != nil {
		cmds = append(cmds, waitForRedraw(m.notifier))
	}
	return tea.Batch(cmds...)
}

// Update drains queued worker responses, then handles msg. Every frame the
// program renders is therefore preceded by a drain.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.drainResponses()
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, nil
}

// Err returns the fault that made the model quit, if any.
func (m *Model) Err() error {
	return m.fatalErr
}

// Device exposes the mirrored device state.
func (m *Model) Device() state.Device {
	return m.device
}

// Controls exposes the current selection.
func (m *Model) Controls() uistate.Controls {
	return m.controls
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(spinner.TickMsg{}):   m.handleSpinnerTickMsg,
		reflect.TypeOf(redrawMsg{}):         m.handleRedrawMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) drainResponses() {
	m.device, _ = m.dispatcher.Drain(m.device)
}

func (m *Model) connected() bool {
	_, ok := m.device.Info()
	return ok
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size, ok := msg.(tea.WindowSizeMsg)
	if !ok || m.fixedWidth {
		return nil
	}
	m.width = size.Width
	return nil
}

func (m *Model) handleSpinnerTickMsg(msg tea.Msg) tea.Cmd {
	if m.connected() {
		return nil
	}
	tick, ok := msg.(spinner.TickMsg)
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(tick)
	return cmd
}

// apply runs ev through the reducer and dispatches the resulting command.
func (m *Model) apply(ev uistate.Event) tea.Cmd {
	before := m.controls
	next, cmd := uistate.Reduce(m.controls, ev)
	m.controls = next
	if next.Cursor != before.Cursor {
		events.UI.Cursor(next.Cursor.String())
	}
	if cmd == nil {
		return nil
	}
	row := next.Cursor
	if choose, ok := ev.(uistate.Choose); ok {
		row = choose.Row
	}
	if idx := next.Selected(row); idx >= 0 {
		events.UI.Select(row.String(), uistate.Options(row)[idx])
	}
	if err := m.bus.Dispatch(cmd); err != nil {
		logging.Error(err)
		m.fatalErr = err
		return tea.Quit
	}
	return nil
}
