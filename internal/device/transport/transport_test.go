package transport

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go.bug.st/serial"
)

func TestParseAddress(t *testing.T) {
	got, err := ParseAddress("2C:BE:EB:01:02:03")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := [6]byte{0x2C, 0xBE, 0xEB, 0x01, 0x02, 0x03}
	if got != want {
		t.Fatalf("expected % x, got % x", want, got)
	}
	for _, bad := range []string{"", "2C:BE:EB", "00:00:5e:00:53:01:02:03", "zz:zz:zz:zz:zz:zz"} {
		if _, err := ParseAddress(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestNewRFCOMMTransportChannelRange(t *testing.T) {
	for _, ch := range []int{0, 31, -1} {
		if _, err := NewRFCOMMTransport(ch); err == nil {
			t.Fatalf("expected error for channel %d", ch)
		}
	}
	tr, err := NewRFCOMMTransport(15)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	if tr.Channel() != 15 || tr.Name() != "rfcomm" {
		t.Fatalf("unexpected transport %#v", tr)
	}
}

type fakePort struct {
	serial.Port

	timeout    time.Duration
	timeoutErr error
	closed     bool
	written    bytes.Buffer
	chunk      int
}

func (p *fakePort) SetReadTimeout(d time.Duration) error {
	p.timeout = d
	return p.timeoutErr
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.chunk > 0 && len(b) > p.chunk {
		b = b[:p.chunk]
	}
	return p.written.Write(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func fakeOpener(port *fakePort, err error) func(string, *serial.Mode) (serial.Port, error) {
	return func(string, *serial.Mode) (serial.Port, error) {
		if err != nil {
			return nil, err
		}
		return port, nil
	}
}

func TestSerialOpenValidates(t *testing.T) {
	ctx := context.Background()
	if _, err := NewSerialTransport("", 115200).Open(ctx, ""); err == nil {
		t.Fatalf("expected error for empty port")
	}
	if _, err := NewSerialTransport("/dev/rfcomm0", 0).Open(ctx, ""); err == nil {
		t.Fatalf("expected error for zero baud rate")
	}
	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := NewSerialTransport("/dev/rfcomm0", 115200).Open(canceled, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSerialOpenSetsReadTimeout(t *testing.T) {
	port := &fakePort{chunk: 3}
	tr := NewSerialTransport("/dev/rfcomm0", 115200)
	tr.open = fakeOpener(port, nil)

	conn, err := tr.Open(context.Background(), "ignored")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if port.timeout != readTimeout {
		t.Fatalf("expected read timeout %s, got %s", readTimeout, port.timeout)
	}

	n, err := conn.Write([]byte("hello world"))
	if err != nil || n != 11 {
		t.Fatalf("expected full write, got %d / %v", n, err)
	}
	if port.written.String() != "hello world" {
		t.Fatalf("expected chunked writes to be joined, got %q", port.written.String())
	}
	if err := conn.Close(); err != nil || !port.closed {
		t.Fatalf("expected port to be closed")
	}
}

func TestSerialOpenFailures(t *testing.T) {
	tr := NewSerialTransport("/dev/rfcomm0", 115200)
	tr.open = fakeOpener(nil, errors.New("no such device"))
	if _, err := tr.Open(context.Background(), ""); err == nil {
		t.Fatalf("expected open error")
	}

	port := &fakePort{timeoutErr: errors.New("unsupported")}
	tr.open = fakeOpener(port, nil)
	if _, err := tr.Open(context.Background(), ""); err == nil {
		t.Fatalf("expected timeout error")
	}
	if !port.closed {
		t.Fatalf("expected port to be closed after setup failure")
	}
}
