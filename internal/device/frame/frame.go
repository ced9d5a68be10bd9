// Package frame encodes and decodes the framed request/reply protocol spoken
// by the earbuds over their RFCOMM channel.
//
// A frame is laid out as
//
//	0x55 flags 0x01 cmd(u16 LE) len(u8) 0x00 op(u8) payload crc(u16 LE)
//
// where crc is CRC-16/MODBUS over every byte before it.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/sigurn/crc16"
)

const (
	Start byte = 0x55

	// DefaultFlags is what the host sets on outgoing requests.
	DefaultFlags byte = 0x60

	headerSize  = 8
	trailerSize = 2
	version     = 0x01
)

// Commands understood by the device.
const (
	CmdFirmware      uint16 = 0xC042
	CmdSerial        uint16 = 0xC006
	CmdSetANC        uint16 = 0xF00F
	CmdSetLowLatency uint16 = 0xF040
	CmdSetInEar      uint16 = 0xF004
	CmdError         uint16 = 0xE001
)

var (
	ErrChecksum        = errors.New("frame checksum mismatch")
	ErrPayloadTooLarge = errors.New("frame payload too large")
)

// Frame is one decoded message.
type Frame struct {
	Flags     byte
	Command   uint16
	Operation byte
	Payload   []byte
}

// CommandName returns a short label for cmd, used in traces and errors.
func CommandName(cmd uint16) string {
	switch cmd {
	case CmdFirmware:
		return "firmware"
	case CmdSerial:
		return "serial"
	case CmdSetANC:
		return "set-anc"
	case CmdSetLowLatency:
		return "set-low-latency"
	case CmdSetInEar:
		return "set-in-ear"
	case CmdError:
		return "error"
	default:
		return fmt.Sprintf("0x%04x", cmd)
	}
}

// Encode serialises f including the trailing checksum.
func Encode(f Frame) ([]byte, error) {
	if len(f.Payload) > math.MaxUint8 {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(f.Payload))
	}
	buf := make([]byte, headerSize+len(f.Payload)+trailerSize)
	buf[0] = Start
	buf[1] = f.Flags
	buf[2] = version
	binary.LittleEndian.PutUint16(buf[3:5], f.Command)
	buf[5] = byte(len(f.Payload))
	buf[6] = 0x00
	buf[7] = f.Operation
	copy(buf[headerSize:], f.Payload)
	body := buf[:headerSize+len(f.Payload)]
	binary.LittleEndian.PutUint16(buf[len(body):], Checksum(body))
	return buf, nil
}

// Decoder reads frames from a byte stream. Bytes consumed by a false start
// or a corrupt frame are rescanned, so a stray start byte in line noise
// cannot swallow the frame that follows it.
type Decoder struct {
	r       io.Reader
	pending []byte
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode returns the next frame. A frame whose checksum does not match
// yields an error wrapping ErrChecksum; the decoder stays usable and the
// next call resumes scanning right after that frame's start byte.
func (d *Decoder) Decode() (Frame, error) {
	for {
		if err := d.resyncToStart(); err != nil {
			return Frame{}, err
		}

		header := make([]byte, headerSize)
		header[0] = Start
		if err := d.readFull(header[1:]); err != nil {
			return Frame{}, fmt.Errorf("read frame header: %w", err)
		}
		if header[2] != version || header[6] != 0x00 {
			d.unread(header[1:])
			continue
		}
		n := int(header[5])
		rest := make([]byte, n+trailerSize)
		if err := d.readFull(rest); err != nil {
			return Frame{}, fmt.Errorf("read frame payload: %w", err)
		}

		body := append(header, rest[:n]...)
		want := binary.LittleEndian.Uint16(rest[n:])
		if got := Checksum(body); got != want {
			d.unread(append(body[1:], rest[n:]...))
			return Frame{}, fmt.Errorf("%w: got 0x%04x want 0x%04x", ErrChecksum, got, want)
		}
		return Frame{
			Flags:     header[1],
			Command:   binary.LittleEndian.Uint16(header[3:5]),
			Operation: header[7],
			Payload:   rest[:n:n],
		}, nil
	}
}

func (d *Decoder) resyncToStart() error {
	buf := make([]byte, 1)
	for {
		if err := d.readFull(buf); err != nil {
			return err
		}
		if buf[0] == Start {
			return nil
		}
	}
}

func (d *Decoder) readFull(buf []byte) error {
	n := copy(buf, d.pending)
	d.pending = d.pending[n:]
	if n == len(buf) {
		return nil
	}
	_, err := io.ReadFull(d.r, buf[n:])
	if errors.Is(err, io.EOF) && n > 0 {
		return io.ErrUnexpectedEOF
	}
	return err
}

// unread queues b to be scanned again before anything new from the stream.
func (d *Decoder) unread(b []byte) {
	d.pending = append(append([]byte(nil), b...), d.pending...)
}

var modbus = crc16.MakeTable(crc16.CRC16_MODBUS)

// Checksum computes CRC-16/MODBUS.
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, modbus)
}
