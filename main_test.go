package main

import (
	"os"
	"testing"
	"time"

	"github.com/atomicstack/earctl/internal/app"
	"github.com/atomicstack/earctl/internal/config"
	"github.com/google/go-cmp/cmp"
)

func TestProbeTerminalOnRegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "tty")
	if err != nil {
		t.Fatalf("create temp: %v", err)
	}
	defer f.Close()
	if got := probeTerminal(f); got != (terminal{}) {
		t.Fatalf("expected no terminal for a regular file, got %#v", got)
	}
}

func TestStartupTracePayloadSerial(t *testing.T) {
	cfg := config.Config{
		App: app.Config{
			Transport:     app.TransportSerial,
			NamePrefix:    "Nothing Ear",
			SerialPort:    "/dev/rfcomm0",
			BaudRate:      115200,
			Channel:       15,
			ShutdownGrace: 2 * time.Second,
			Width:         60,
		},
		Logging: config.Logging{Trace: true},
		Flags:   map[string]string{"transport": "serial"},
		Args:    []string{"-transport", "serial", "-serial-port", "/dev/rfcomm0"},
	}

	payload := startupTracePayload(cfg, terminal{IsTerminal: true, Width: 120})

	want := map[string]interface{}{
		"transport":  "serial",
		"address":    "auto (Nothing Ear*)",
		"grace":      "2s",
		"serialPort": "/dev/rfcomm0",
		"baud":       115200,
	}
	if diff := cmp.Diff(want, payload["device"]); diff != "" {
		t.Fatalf("unexpected device summary (-want +got):\n%s", diff)
	}
	tty, ok := payload["terminal"].(terminal)
	if !ok {
		t.Fatalf("expected terminal details in payload")
	}
	if tty.Width != 120 || tty.Render != 60 {
		t.Fatalf("expected terminal width 120 rendered at 60, got %#v", tty)
	}
	if payload["trace"] != true {
		t.Fatalf("expected trace true, got %v", payload["trace"])
	}
}

func TestDeviceSummaryPerTransport(t *testing.T) {
	rfcomm := deviceSummary(app.Config{Transport: app.TransportRFCOMM, Address: "AA:BB:CC:DD:EE:FF", Adapter: "hci1", Channel: 15})
	if rfcomm["address"] != "AA:BB:CC:DD:EE:FF" || rfcomm["adapter"] != "hci1" || rfcomm["channel"] != 15 {
		t.Fatalf("unexpected rfcomm summary %#v", rfcomm)
	}
	if _, ok := rfcomm["serialPort"]; ok {
		t.Fatalf("expected serial options to be omitted for rfcomm")
	}

	sim := deviceSummary(app.Config{Transport: app.TransportSimulated, SimulateFailures: "connect, low-latency,"})
	if diff := cmp.Diff([]string{"connect", "low-latency"}, sim["failures"]); diff != "" {
		t.Fatalf("unexpected failures (-want +got):\n%s", diff)
	}
}
