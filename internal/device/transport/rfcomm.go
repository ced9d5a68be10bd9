package transport

import "fmt"

// RFCOMMTransport connects a raw Bluetooth RFCOMM socket to the device.
type RFCOMMTransport struct {
	channel uint8
}

func NewRFCOMMTransport(channel int) (*RFCOMMTransport, error) {
	if channel < 1 || channel > 30 {
		return nil, fmt.Errorf("invalid rfcomm channel: %d", channel)
	}
	return &RFCOMMTransport{channel: uint8(channel)}, nil
}

func (t *RFCOMMTransport) Name() string {
	return "rfcomm"
}

func (t *RFCOMMTransport) Channel() int {
	return int(t.channel)
}
