package backend

import "fmt"

// NoiseControlMode is the device's active noise suppression setting.
type NoiseControlMode int

const (
	NoiseControlHigh NoiseControlMode = iota
	NoiseControlMid
	NoiseControlLow
	NoiseControlAdaptive
	NoiseControlTransparency
	NoiseControlOff
)

// NoiseControlModes lists every mode in display order.
var NoiseControlModes = []NoiseControlMode{
	NoiseControlHigh,
	NoiseControlMid,
	NoiseControlLow,
	NoiseControlAdaptive,
	NoiseControlTransparency,
	NoiseControlOff,
}

func (m NoiseControlMode) String() string {
	switch m {
	case NoiseControlHigh:
		return "high"
	case NoiseControlMid:
		return "mid"
	case NoiseControlLow:
		return "low"
	case NoiseControlAdaptive:
		return "adaptive"
	case NoiseControlTransparency:
		return "transparency"
	case NoiseControlOff:
		return "off"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Command is a user intent travelling from the UI to the session worker. The
// set of implementations is closed: SetNoiseControlMode, SetLowLatency and
// SetInEarDetection.
type Command interface {
	fmt.Stringer
	isCommand()
}

type SetNoiseControlMode struct {
	Mode NoiseControlMode
}

type SetLowLatency struct {
	Enabled bool
}

type SetInEarDetection struct {
	Enabled bool
}

func (SetNoiseControlMode) isCommand() {}
func (SetLowLatency) isCommand()       {}
func (SetInEarDetection) isCommand()   {}

func (c SetNoiseControlMode) String() string {
	return "noise-control=" + c.Mode.String()
}

func (c SetLowLatency) String() string {
	return "low-latency=" + onOff(c.Enabled)
}

func (c SetInEarDetection) String() string {
	return "in-ear-detection=" + onOff(c.Enabled)
}

// Response is an outcome reported by the session worker. The set of
// implementations is closed: DeviceInfo and ErrorResponse.
type Response interface {
	Kind() string
	isResponse()
}

// DeviceInfo identifies the connected device. The worker emits it once, right
// after the session is established.
type DeviceInfo struct {
	Address         string
	FirmwareVersion string
	SerialNumber    string
}

// ErrorResponse carries a failed connect or command as opaque text.
type ErrorResponse struct {
	Message string
}

func (DeviceInfo) isResponse()    {}
func (ErrorResponse) isResponse() {}

func (DeviceInfo) Kind() string    { return "device-info" }
func (ErrorResponse) Kind() string { return "error" }

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
