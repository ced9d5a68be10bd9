// Package transport opens the byte stream to the earbuds' control channel.
package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"
)

// readTimeout bounds every blocking read so callers can observe
// cancellation between reads.
const readTimeout = 300 * time.Millisecond

// Transport opens a connection to the device at address.
type Transport interface {
	Name() string
	Open(ctx context.Context, address string) (io.ReadWriteCloser, error)
}

// ParseAddress parses a colon separated Bluetooth address.
func ParseAddress(address string) ([6]byte, error) {
	var out [6]byte
	hw, err := net.ParseMAC(address)
	if err != nil {
		return out, fmt.Errorf("parse bluetooth address %q: %w", address, err)
	}
	if len(hw) != len(out) {
		return out, fmt.Errorf("parse bluetooth address %q: expected 6 bytes, got %d", address, len(hw))
	}
	copy(out[:], hw)
	return out, nil
}

func writeFull(ctx context.Context, w io.Writer, buf []byte) error {
	written := 0
	for written < len(buf) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := w.Write(buf[written:])
		if err != nil {
			return err
		}
		written += n
	}
	return nil
}
