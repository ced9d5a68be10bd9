package events

import "github.com/atomicstack/earctl/internal/logging"

type UITracer struct{}

type CommandTracer struct{}

type DeviceTracer struct{}

var (
	UI      = UITracer{}
	Command = CommandTracer{}
	Device  = DeviceTracer{}
)

func (UITracer) Cursor(row string) {
	logging.Trace("ui.cursor", map[string]interface{}{"row": row})
}

func (UITracer) Select(row, option string) {
	logging.Trace("ui.select", map[string]interface{}{"row": row, "option": option})
}

func (UITracer) Drain(count int) {
	if count == 0 {
		return
	}
	logging.Trace("ui.drain", map[string]interface{}{"count": count})
}

func (CommandTracer) Queue(label string) {
	logging.Trace("command.queue", map[string]interface{}{"command": label})
}

func (CommandTracer) SendFailed(label string, err error) {
	payload := map[string]interface{}{"command": label}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("command.send.error", payload)
}

func (CommandTracer) Apply(label string) {
	logging.Trace("command.apply", map[string]interface{}{"command": label})
}

func (CommandTracer) Applied(label string) {
	logging.Trace("command.applied", map[string]interface{}{"command": label})
}

func (CommandTracer) Failed(label string, err error) {
	payload := map[string]interface{}{"command": label}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("command.error", payload)
}

func (DeviceTracer) Resolve(address, transport string) {
	logging.Trace("device.resolve", map[string]interface{}{"address": address, "transport": transport})
}

func (DeviceTracer) Request(command string, operation int) {
	logging.Trace("device.request", map[string]interface{}{"command": command, "operation": operation})
}

func (DeviceTracer) Skip(command string, operation int, reason string) {
	logging.Trace("device.frame.skip", map[string]interface{}{
		"command":   command,
		"operation": operation,
		"reason":    reason,
	})
}
