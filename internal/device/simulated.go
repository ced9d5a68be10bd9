package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"strings"

	"github.com/atomicstack/earctl/internal/device/frame"
)

// cmdBattery is an unsolicited status push the simulated device sends ahead
// of some replies.
const cmdBattery uint16 = 0xE002

// Failure names accepted by NewSimulated.
const (
	FailConnect        = "connect"
	FailNoiseControl   = "noise-control"
	FailLowLatency     = "low-latency"
	FailInEarDetection = "in-ear-detection"
)

var simulatedFailures = map[string]uint16{
	FailConnect:        0,
	FailNoiseControl:   frame.CmdSetANC,
	FailLowLatency:     frame.CmdSetLowLatency,
	FailInEarDetection: frame.CmdSetInEar,
}

// Simulated is an in-process device reachable over net.Pipe. It implements
// transport.Transport, so it runs through the same connector and session as
// real hardware.
type Simulated struct {
	Address         string
	FirmwareVersion string
	SerialNumber    string

	failConnect bool
	reject      map[uint16]bool
}

// NewSimulated returns a simulated device that fails the named operations.
func NewSimulated(failures []string) (*Simulated, error) {
	s := &Simulated{
		Address:         "00:11:22:33:44:55",
		FirmwareVersion: "1.0.1.58",
		SerialNumber:    "SH10241234567",
		reject:          map[uint16]bool{},
	}
	for _, name := range failures {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cmd, ok := simulatedFailures[name]
		if !ok {
			return nil, fmt.Errorf("unknown simulated failure %q (want one of %s)", name, strings.Join(SimulatedFailureNames(), ", "))
		}
		if name == FailConnect {
			s.failConnect = true
			continue
		}
		s.reject[cmd] = true
	}
	return s, nil
}

// SimulatedFailureNames lists the accepted failure names.
func SimulatedFailureNames() []string {
	names := make([]string, 0, len(simulatedFailures))
	for name := range simulatedFailures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Simulated) Name() string {
	return "simulated"
}

func (s *Simulated) Open(ctx context.Context, _ string) (io.ReadWriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.failConnect {
		return nil, errors.New("simulated device unreachable")
	}
	host, dev := net.Pipe()
	go s.serve(dev)
	return host, nil
}

// serve answers requests until the host side closes.
func (s *Simulated) serve(conn net.Conn) {
	defer conn.Close()
	dec := frame.NewDecoder(conn)
	for {
		req, err := dec.Decode()
		if errors.Is(err, frame.ErrChecksum) {
			continue
		}
		if err != nil {
			return
		}
		for _, reply := range s.replies(req) {
			raw, err := frame.Encode(reply)
			if err != nil {
				return
			}
			if _, err := conn.Write(raw); err != nil {
				return
			}
		}
	}
}

func (s *Simulated) replies(req frame.Frame) []frame.Frame {
	reply := frame.Frame{Flags: req.Flags, Command: req.Command, Operation: req.Operation}
	if s.reject[req.Command] {
		reply.Command = frame.CmdError
		reply.Payload = []byte{0x01}
		return []frame.Frame{reply}
	}
	switch req.Command {
	case frame.CmdFirmware:
		reply.Payload = []byte(s.FirmwareVersion)
	case frame.CmdSerial:
		reply.Payload = []byte(s.SerialNumber)
	case frame.CmdSetANC:
		battery := frame.Frame{Command: cmdBattery, Payload: []byte{0x02, 0x5A, 0x5F}}
		return []frame.Frame{battery, reply}
	case frame.CmdSetLowLatency, frame.CmdSetInEar:
	default:
		reply.Command = frame.CmdError
		reply.Payload = []byte{0x02}
	}
	return []frame.Frame{reply}
}
