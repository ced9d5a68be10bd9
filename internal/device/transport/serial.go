package transport

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.bug.st/serial"
)

// SerialTransport talks to a tty that is already bound to the device's
// RFCOMM channel, e.g. /dev/rfcomm0 created with `rfcomm bind`.
type SerialTransport struct {
	portName string
	baudRate int

	open func(string, *serial.Mode) (serial.Port, error)
}

func NewSerialTransport(portName string, baudRate int) *SerialTransport {
	return &SerialTransport{
		portName: portName,
		baudRate: baudRate,
		open:     serial.Open,
	}
}

func (t *SerialTransport) Name() string {
	return "serial"
}

// Open ignores address; the tty binding already names the device.
func (t *SerialTransport) Open(ctx context.Context, _ string) (io.ReadWriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.portName == "" {
		return nil, errors.New("serial port is empty")
	}
	if t.baudRate <= 0 {
		return nil, fmt.Errorf("invalid serial baud rate: %d", t.baudRate)
	}

	port, err := t.open(t.portName, &serial.Mode{BaudRate: t.baudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %q: %w", t.portName, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set serial read timeout: %w", err)
	}
	return &serialConn{port: port}, nil
}

type serialConn struct {
	port serial.Port
}

// Read returns (0, nil) when the read timeout expires.
func (c *serialConn) Read(p []byte) (int, error) {
	return c.port.Read(p)
}

func (c *serialConn) Write(p []byte) (int, error) {
	if err := writeFull(context.Background(), c.port, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *serialConn) Close() error {
	return c.port.Close()
}
