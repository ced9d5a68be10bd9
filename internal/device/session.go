package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atomicstack/earctl/internal/backend"
	"github.com/atomicstack/earctl/internal/device/frame"
	"github.com/atomicstack/earctl/internal/logging/events"
)

// StatusError is the device rejecting a request.
type StatusError struct {
	Command uint16
	Status  byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s rejected by device (status 0x%02x)", frame.CommandName(e.Command), e.Status)
}

var ancLevels = map[backend.NoiseControlMode]byte{
	backend.NoiseControlHigh:         0x01,
	backend.NoiseControlMid:          0x02,
	backend.NoiseControlLow:          0x03,
	backend.NoiseControlAdaptive:     0x04,
	backend.NoiseControlOff:          0x05,
	backend.NoiseControlTransparency: 0x07,
}

type deadliner interface {
	SetDeadline(time.Time) error
}

// session speaks the request/reply protocol over one open connection. It is
// owned by the session worker and not safe for concurrent use.
type session struct {
	conn io.ReadWriteCloser
	rd   *contextReader
	dec  *frame.Decoder
	info backend.DeviceInfo
	op   byte

	closeOnce sync.Once
	closeErr  error
}

func newSession(conn io.ReadWriteCloser, address string) *session {
	rd := &contextReader{ctx: context.Background(), r: conn}
	return &session{
		conn: conn,
		rd:   rd,
		dec:  frame.NewDecoder(rd),
		info: backend.DeviceInfo{Address: address},
	}
}

// handshake fills in firmware and serial number.
func (s *session) handshake(ctx context.Context) error {
	fw, err := s.request(ctx, frame.CmdFirmware, nil)
	if err != nil {
		return fmt.Errorf("read firmware version: %w", err)
	}
	serial, err := s.request(ctx, frame.CmdSerial, nil)
	if err != nil {
		return fmt.Errorf("read serial number: %w", err)
	}
	s.info.FirmwareVersion = text(fw.Payload)
	s.info.SerialNumber = text(serial.Payload)
	return nil
}

func (s *session) Info() backend.DeviceInfo {
	return s.info
}

func (s *session) SetNoiseControl(ctx context.Context, mode backend.NoiseControlMode) error {
	level, ok := ancLevels[mode]
	if !ok {
		return fmt.Errorf("unknown noise control mode %d", mode)
	}
	_, err := s.request(ctx, frame.CmdSetANC, []byte{0x01, level, 0x00})
	return err
}

func (s *session) SetLowLatency(ctx context.Context, enabled bool) error {
	mode := byte(0x02)
	if enabled {
		mode = 0x01
	}
	_, err := s.request(ctx, frame.CmdSetLowLatency, []byte{mode, 0x00})
	return err
}

func (s *session) SetInEarDetection(ctx context.Context, enabled bool) error {
	_, err := s.request(ctx, frame.CmdSetInEar, []byte{0x01, 0x01, boolByte(enabled)})
	return err
}

func (s *session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

// request writes one frame and waits for the reply carrying the same
// operation id. Frames for other operations and corrupt frames are skipped.
func (s *session) request(ctx context.Context, cmd uint16, payload []byte) (frame.Frame, error) {
	s.op++
	if s.op == 0 {
		s.op = 1
	}
	op := s.op
	name := frame.CommandName(cmd)

	raw, err := frame.Encode(frame.Frame{Flags: frame.DefaultFlags, Command: cmd, Operation: op, Payload: payload})
	if err != nil {
		return frame.Frame{}, err
	}

	if d, ok := s.conn.(deadliner); ok {
		_ = d.SetDeadline(time.Time{})
		stop := context.AfterFunc(ctx, func() { _ = d.SetDeadline(time.Now()) })
		defer stop()
	}

	events.Device.Request(name, int(op))
	if err := writeFull(ctx, s.conn, raw); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return frame.Frame{}, ctxErr
		}
		return frame.Frame{}, fmt.Errorf("send %s: %w", name, err)
	}

	s.rd.ctx = ctx
	for {
		reply, err := s.dec.Decode()
		if errors.Is(err, frame.ErrChecksum) {
			events.Device.Skip(name, int(op), err.Error())
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return frame.Frame{}, ctxErr
			}
			return frame.Frame{}, fmt.Errorf("await %s reply: %w", name, err)
		}
		if reply.Operation != op {
			events.Device.Skip(frame.CommandName(reply.Command), int(reply.Operation), "unsolicited")
			continue
		}
		if reply.Command == frame.CmdError {
			status := byte(0)
			if len(reply.Payload) > 0 {
				status = reply.Payload[0]
			}
			return frame.Frame{}, &StatusError{Command: cmd, Status: status}
		}
		return reply, nil
	}
}

// contextReader retries reads that timed out without data until ctx ends.
// The session points ctx at the current request.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	for {
		if err := c.ctx.Err(); err != nil {
			return 0, err
		}
		n, err := c.r.Read(p)
		if errors.Is(err, os.ErrDeadlineExceeded) && c.ctx.Err() != nil {
			return 0, c.ctx.Err()
		}
		if n > 0 || err != nil {
			return n, err
		}
	}
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

func text(b []byte) string {
	return strings.TrimSpace(string(bytes.TrimRight(b, "\x00")))
}

func boolByte(b bool) byte {
	if b {
		return 0x01
	}
	return 0x00
}
