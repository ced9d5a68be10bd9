package backend

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/atomicstack/earctl/internal/logging/events"
)

// Connector establishes a device session. The worker calls it exactly once.
type Connector interface {
	Connect(ctx context.Context) (Session, error)
}

// Session is a live connection to one device. It is owned by the worker and
// never touched from the UI goroutine.
type Session interface {
	Info() DeviceInfo
	SetNoiseControl(ctx context.Context, mode NoiseControlMode) error
	SetLowLatency(ctx context.Context, enabled bool) error
	SetInEarDetection(ctx context.Context, enabled bool) error
	Close() error
}

// State is the worker's lifecycle position.
type State int32

const (
	StateConnecting State = iota
	StateConnected
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Worker forwards commands to a device session in the order they were sent
// and reports outcomes back to the UI. Every response it emits is followed by
// exactly one redraw request.
type Worker struct {
	connector Connector
	commands  *Receiver[Command]
	responses *Sender[Response]
	redraw    Redrawer

	state   atomic.Int32
	emitted atomic.Int64
}

// NewWorker wires a worker to its channels. A nil redraw disables redraw
// requests.
func NewWorker(connector Connector, commands *Receiver[Command], responses *Sender[Response], redraw Redrawer) *Worker {
	if redraw == nil {
		redraw = RedrawFunc(nil)
	}
	return &Worker{
		connector: connector,
		commands:  commands,
		responses: responses,
		redraw:    redraw,
	}
}

// State reports the current lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Emitted reports how many responses have been delivered so far.
func (w *Worker) Emitted() int64 {
	return w.emitted.Load()
}

// Run executes the state machine: one connect attempt, then a command loop
// until the command channel closes. A failed connect is reported as an
// ErrorResponse and ends the worker with a nil error; failed commands are
// reported and the loop continues. Run returns a non-nil error only when ctx
// is cancelled or the response receiver has gone away.
//
// Device calls carry ctx but are never given a deadline: a hung call stalls
// the worker until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	defer w.responses.Close()
	defer w.setState(StateTerminated)

	w.setState(StateConnecting)
	session, err := w.connector.Connect(ctx)
	if err != nil {
		events.Worker.ConnectFailed(err)
		if emitErr := w.emit(ErrorResponse{Message: err.Error()}); emitErr != nil {
			events.Worker.Terminated(events.ReasonResponseFault)
			return emitErr
		}
		events.Worker.Terminated(events.ReasonConnectFailed)
		return nil
	}
	defer func() {
		events.Worker.SessionClosed(session.Close())
	}()

	info := session.Info()
	events.Worker.Connected(info.Address, info.FirmwareVersion, info.SerialNumber)
	if err := w.emit(info); err != nil {
		events.Worker.Terminated(events.ReasonResponseFault)
		return err
	}
	w.setState(StateConnected)

	for {
		cmd, err := w.commands.Recv(ctx)
		if errors.Is(err, ErrChannelClosed) {
			events.Worker.Terminated(events.ReasonCommandsClosed)
			return nil
		}
		if err != nil {
			events.Worker.Terminated(events.ReasonCanceled)
			return err
		}

		label := commandLabel(cmd)
		events.Command.Apply(label)
		if err := apply(ctx, session, cmd); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				events.Worker.Terminated(events.ReasonCanceled)
				return ctxErr
			}
			events.Command.Failed(label, err)
			if emitErr := w.emit(ErrorResponse{Message: err.Error()}); emitErr != nil {
				events.Worker.Terminated(events.ReasonResponseFault)
				return emitErr
			}
			continue
		}
		events.Command.Applied(label)
	}
}

func (w *Worker) emit(resp Response) error {
	if err := w.responses.Send(resp); err != nil {
		events.Response.Drop(resp.Kind(), err)
		return fmt.Errorf("emit %s response: %w", resp.Kind(), err)
	}
	w.emitted.Add(1)
	events.Response.Emit(resp.Kind())
	w.redraw.RequestRedraw()
	return nil
}

func (w *Worker) setState(s State) {
	if State(w.state.Swap(int32(s))) != s {
		events.Worker.State(s.String())
	}
}

func apply(ctx context.Context, session Session, cmd Command) error {
	switch c := cmd.(type) {
	case SetNoiseControlMode:
		return session.SetNoiseControl(ctx, c.Mode)
	case SetLowLatency:
		return session.SetLowLatency(ctx, c.Enabled)
	case SetInEarDetection:
		return session.SetInEarDetection(ctx, c.Enabled)
	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
}

func commandLabel(cmd Command) string {
	if cmd == nil {
		return "<nil>"
	}
	return cmd.String()
}
