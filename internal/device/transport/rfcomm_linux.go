//go:build linux

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sys/unix"
)

func (t *RFCOMMTransport) Open(ctx context.Context, address string) (io.ReadWriteCloser, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, fmt.Errorf("open rfcomm socket: %w", err)
	}

	// bdaddr_t is stored least significant byte first.
	sa := &unix.SockaddrRFCOMM{Channel: t.channel}
	for i := range addr {
		sa.Addr[i] = addr[len(addr)-1-i]
	}

	stop := context.AfterFunc(ctx, func() {
		_ = unix.Shutdown(fd, unix.SHUT_RDWR)
	})
	err = unix.Connect(fd, sa)
	if !stop() || err != nil {
		_ = unix.Close(fd)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("connect rfcomm %s channel %d: %w", address, t.channel, err)
	}

	tv := unix.NsecToTimeval(readTimeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("set rfcomm read timeout: %w", err)
	}
	return &rfcommConn{fd: fd}, nil
}

type rfcommConn struct {
	fd int

	closeOnce sync.Once
	closeErr  error
}

// Read returns (0, nil) when the receive timeout expires and io.EOF once the
// device hung up.
func (c *rfcommConn) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(c.fd, p)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return 0, nil
		case err != nil:
			return 0, fmt.Errorf("rfcomm read: %w", err)
		case n == 0 && len(p) > 0:
			return 0, io.EOF
		}
		return n, nil
	}
}

func (c *rfcommConn) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := unix.Write(c.fd, p[written:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return written, fmt.Errorf("rfcomm write: %w", err)
		}
		written += n
	}
	return written, nil
}

func (c *rfcommConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = unix.Close(c.fd)
	})
	return c.closeErr
}
