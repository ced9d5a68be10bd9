package command

import (
	"fmt"

	"github.com/atomicstack/earctl/internal/backend"
	"github.com/atomicstack/earctl/internal/logging/events"
)

// Sink is the producing end of the command channel.
type Sink interface {
	Send(backend.Command) error
	Close()
}

// Bus hands user commands to the session worker. Dispatch never waits for the
// worker; a successful dispatch says nothing about whether the device
// accepted the setting.
type Bus struct {
	sink Sink
}

// New initialises a command bus on top of the command channel.
func New(sink Sink) *Bus {
	return &Bus{sink: sink}
}

// Dispatch enqueues cmd. A nil command is ignored. An error means the worker
// side of the channel is gone, which the caller should treat as fatal.
func (b *Bus) Dispatch(cmd backend.Command) error {
	if cmd == nil {
		return nil
	}
	label := cmd.String()
	events.Command.Queue(label)
	if b == nil || b.sink == nil {
		err := fmt.Errorf("dispatch %s: no command channel", label)
		events.Command.SendFailed(label, err)
		return err
	}
	if err := b.sink.Send(cmd); err != nil {
		events.Command.SendFailed(label, err)
		return fmt.Errorf("dispatch %s: %w", label, err)
	}
	return nil
}

// Close releases the bus's sender handle, which lets the worker shut down
// once it has applied everything already queued.
func (b *Bus) Close() {
	if b == nil || b.sink == nil {
		return
	}
	b.sink.Close()
}
