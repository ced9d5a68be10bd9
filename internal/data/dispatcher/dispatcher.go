package dispatcher

import (
	"github.com/atomicstack/earctl/internal/backend"
	"github.com/atomicstack/earctl/internal/logging/events"
	"github.com/atomicstack/earctl/internal/state"
)

// Source is the non-blocking end of the response channel.
type Source interface {
	TryRecv() (backend.Response, bool)
}

type Result struct {
	Folded        int
	DeviceUpdated bool
	ErrorUpdated  bool
}

// Dispatcher folds queued worker responses into the device mirror.
type Dispatcher struct {
	source Source
}

func New(source Source) *Dispatcher {
	return &Dispatcher{source: source}
}

// Drain folds every response that is queued right now, in arrival order, and
// returns without waiting once the queue is empty.
func (d *Dispatcher) Drain(device state.Device) (state.Device, Result) {
	var res Result
	if d == nil || d.source == nil {
		return device, res
	}
	for {
		resp, ok := d.source.TryRecv()
		if !ok {
			break
		}
		device = state.Fold(device, resp)
		res.Folded++
		switch resp.(type) {
		case backend.DeviceInfo:
			res.DeviceUpdated = true
		case backend.ErrorResponse:
			res.ErrorUpdated = true
		}
		events.Response.Fold(resp.Kind())
	}
	events.UI.Drain(res.Folded)
	return device, res
}
