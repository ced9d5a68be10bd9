package state

import "github.com/atomicstack/earctl/internal/backend"

// Device mirrors what the UI knows about the connected device. It is rebuilt
// from drained responses and is never authoritative.
type Device struct {
	info     *backend.DeviceInfo
	lastErr  string
	hasError bool
}

// Info returns the last reported device identity, if any.
func (d Device) Info() (backend.DeviceInfo, bool) {
	if d.info == nil {
		return backend.DeviceInfo{}, false
	}
	return *d.info, true
}

// LastError returns the most recent error message, if any.
func (d Device) LastError() (string, bool) {
	return d.lastErr, d.hasError
}

// Fold applies one response. Device info replaces the identity display; an
// error replaces the previous error and leaves the identity untouched.
func Fold(d Device, resp backend.Response) Device {
	switch r := resp.(type) {
	case backend.DeviceInfo:
		info := r
		d.info = &info
	case backend.ErrorResponse:
		d.lastErr = r.Message
		d.hasError = true
	}
	return d
}
