package ui

import (
	"errors"
	"testing"

	"github.com/atomicstack/earctl/internal/backend"
	"github.com/atomicstack/earctl/internal/ui/command"
	uistate "github.com/atomicstack/earctl/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

type modelFixture struct {
	h      *Harness
	cmdTx  *backend.Sender[backend.Command]
	cmdRx  *backend.Receiver[backend.Command]
	respTx *backend.Sender[backend.Response]
	notify *backend.Notifier
}

func newModelFixture(t *testing.T) *modelFixture {
	t.Helper()
	cmdTx, cmdRx := backend.NewChannel[backend.Command]()
	respTx, respRx := backend.NewChannel[backend.Response]()
	notify := backend.NewNotifier()
	m := NewModel(command.New(cmdTx), respRx, notify, 0)
	t.Cleanup(func() {
		respTx.Close()
		respRx.Close()
		cmdRx.Close()
	})
	return &modelFixture{h: NewHarness(m), cmdTx: cmdTx, cmdRx: cmdRx, respTx: respTx, notify: notify}
}

func (f *modelFixture) emit(t *testing.T, resp backend.Response) {
	t.Helper()
	if err := f.respTx.Send(resp); err != nil {
		t.Fatalf("send response: %v", err)
	}
	f.notify.RequestRedraw()
	f.h.Redraw()
}

func (f *modelFixture) connect(t *testing.T) {
	t.Helper()
	f.emit(t, backend.DeviceInfo{Address: "AA:BB:CC", FirmwareVersion: "1.2.3", SerialNumber: "SN42"})
}

func (f *modelFixture) nextCommand(t *testing.T) backend.Command {
	t.Helper()
	cmd, ok := f.cmdRx.TryRecv()
	if !ok {
		t.Fatalf("expected a queued command")
	}
	return cmd
}

func TestRedrawFoldsDeviceInfo(t *testing.T) {
	f := newModelFixture(t)
	if _, ok := f.h.Model().Device().Info(); ok {
		t.Fatalf("expected no device info before the first response")
	}
	f.connect(t)
	info, ok := f.h.Model().Device().Info()
	if !ok || info.SerialNumber != "SN42" {
		t.Fatalf("expected device info, got %#v", info)
	}
	if f.h.LastCmd() == nil {
		t.Fatalf("expected redraw handler to re-arm the wait")
	}
}

func TestAnyMessageDrainsResponses(t *testing.T) {
	f := newModelFixture(t)
	if err := f.respTx.Send(backend.ErrorResponse{Message: "timeout"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	f.h.Send(tea.WindowSizeMsg{Width: 80, Height: 24})
	if msg, ok := f.h.Model().Device().LastError(); !ok || msg != "timeout" {
		t.Fatalf("expected error to be folded, got %q", msg)
	}
}

func TestKeysIgnoredUntilConnected(t *testing.T) {
	f := newModelFixture(t)
	f.h.Key("2")
	f.h.Key("down")
	if _, ok := f.cmdRx.TryRecv(); ok {
		t.Fatalf("expected no command before the device is connected")
	}
	if f.h.Model().Controls() != uistate.NewControls() {
		t.Fatalf("expected controls to be unchanged")
	}
}

func TestOptionKeyDispatchesCommand(t *testing.T) {
	f := newModelFixture(t)
	f.connect(t)

	f.h.Key("3")
	if cmd := f.nextCommand(t); cmd != (backend.SetNoiseControlMode{Mode: backend.NoiseControlAdaptive}) {
		t.Fatalf("expected adaptive noise control, got %#v", cmd)
	}

	f.h.Key("down")
	f.h.Key("1")
	if cmd := f.nextCommand(t); cmd != (backend.SetNoiseControlMode{Mode: backend.NoiseControlHigh}) {
		t.Fatalf("expected high noise control, got %#v", cmd)
	}

	f.h.Key("down")
	f.h.Key("right")
	if cmd := f.nextCommand(t); cmd != (backend.SetLowLatency{Enabled: false}) {
		t.Fatalf("expected low latency off, got %#v", cmd)
	}
	f.h.Key("right")
	if cmd := f.nextCommand(t); cmd != (backend.SetLowLatency{Enabled: true}) {
		t.Fatalf("expected low latency on, got %#v", cmd)
	}
	if _, ok := f.cmdRx.TryRecv(); ok {
		t.Fatalf("expected no further commands")
	}
}

func TestCursorMovesWithoutCommands(t *testing.T) {
	f := newModelFixture(t)
	f.connect(t)
	f.h.Key("down")
	f.h.Key("down")
	f.h.Key("up")
	if got := f.h.Model().Controls().Cursor; got != uistate.RowANCMode {
		t.Fatalf("expected cursor on ANC mode, got %s", got)
	}
	if _, ok := f.cmdRx.TryRecv(); ok {
		t.Fatalf("expected cursor movement to send nothing")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "esc", "ctrl+c"} {
		f := newModelFixture(t)
		f.h.Key(k)
		cmd := f.h.LastCmd()
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s: expected tea.QuitMsg", k)
		}
	}
}

func TestDispatchFailureQuits(t *testing.T) {
	f := newModelFixture(t)
	f.connect(t)
	f.cmdRx.Close()

	f.h.Key("1")
	if err := f.h.Model().Err(); !errors.Is(err, backend.ErrPeerClosed) {
		t.Fatalf("expected peer closed error, got %v", err)
	}
	cmd := f.h.LastCmd()
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestSpinnerStopsOnceConnected(t *testing.T) {
	f := newModelFixture(t)
	f.h.Send(f.h.Model().spinner.Tick())
	if f.h.LastCmd() == nil {
		t.Fatalf("expected spinner to keep ticking while waiting")
	}
	f.connect(t)
	f.h.Send(f.h.Model().spinner.Tick())
	if f.h.LastCmd() != nil {
		t.Fatalf("expected spinner to stop once connected")
	}
}

func TestFixedWidthIgnoresResize(t *testing.T) {
	m := NewModel(nil, nil, nil, 40)
	h := NewHarness(m)
	h.Send(tea.WindowSizeMsg{Width: 120})
	if h.Model().width != 40 {
		t.Fatalf("expected fixed width 40, got %d", h.Model().width)
	}
}
