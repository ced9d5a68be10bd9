package events

import "github.com/atomicstack/earctl/internal/logging"

type WorkerTracer struct{}

type ResponseTracer struct{}

type terminateReason string

const (
	ReasonConnectFailed  terminateReason = "connect-failed"
	ReasonCommandsClosed terminateReason = "commands-closed"
	ReasonCanceled       terminateReason = "canceled"
	ReasonResponseFault  terminateReason = "response-fault"
)

var (
	Worker   = WorkerTracer{}
	Response = ResponseTracer{}
)

func (WorkerTracer) State(state string) {
	logging.Trace("worker.state", map[string]interface{}{"state": state})
}

func (WorkerTracer) Connected(address, firmware, serial string) {
	logging.Trace("worker.connected", map[string]interface{}{
		"address":  address,
		"firmware": firmware,
		"serial":   serial,
	})
}

func (WorkerTracer) ConnectFailed(err error) {
	if err == nil {
		return
	}
	logging.Trace("worker.connect.error", map[string]interface{}{"error": err.Error()})
}

func (WorkerTracer) Terminated(reason terminateReason) {
	logging.Trace("worker.terminated", map[string]interface{}{"reason": string(reason)})
}

func (WorkerTracer) SessionClosed(err error) {
	payload := map[string]interface{}{}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("worker.session.close", payload)
}

func (ResponseTracer) Emit(kind string) {
	logging.Trace("response.emit", map[string]interface{}{"kind": kind})
}

func (ResponseTracer) Drop(kind string, err error) {
	payload := map[string]interface{}{"kind": kind}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("response.drop", payload)
}

func (ResponseTracer) Fold(kind string) {
	logging.Trace("response.fold", map[string]interface{}{"kind": kind})
}
