package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/atomicstack/earctl/internal/app"
	"github.com/atomicstack/earctl/internal/config"
	"github.com/atomicstack/earctl/internal/logging"
	"github.com/atomicstack/earctl/internal/logging/events"
	"golang.org/x/term"
)

func main() {
	runtimeCfg := config.MustLoad()
	if err := config.Validate(runtimeCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	logging.Configure(runtimeCfg.Logging.FilePath)
	logging.SetTraceEnabled(runtimeCfg.Logging.Trace)

	events.App.Start(startupTracePayload(runtimeCfg, probeTerminal(os.Stdout)))

	if err := app.Run(runtimeCfg.App); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// startupTracePayload records which device earctl is about to talk to and how.
func startupTracePayload(cfg config.Config, tty terminal) map[string]interface{} {
	return map[string]interface{}{
		"argv":     cfg.Args,
		"flags":    cfg.Flags,
		"device":   deviceSummary(cfg.App),
		"terminal": tty.withOverride(cfg.App.Width),
		"trace":    cfg.Logging.Trace,
		"logFile":  logging.Path(),
	}
}

// deviceSummary keeps only the options that matter for the chosen transport.
func deviceSummary(a app.Config) map[string]interface{} {
	address := a.Address
	if address == "" {
		address = "auto (" + a.NamePrefix + "*)"
	}
	out := map[string]interface{}{
		"transport": a.Transport,
		"address":   address,
		"grace":     a.ShutdownGrace.String(),
	}
	switch a.Transport {
	case app.TransportRFCOMM:
		out["adapter"] = a.Adapter
		out["channel"] = a.Channel
	case app.TransportSerial:
		out["serialPort"] = a.SerialPort
		out["baud"] = a.BaudRate
	case app.TransportSimulated:
		var failures []string
		for _, f := range strings.Split(a.SimulateFailures, ",") {
			if f = strings.TrimSpace(f); f != "" {
				failures = append(failures, f)
			}
		}
		out["failures"] = failures
	}
	return out
}

type terminal struct {
	IsTerminal bool   `json:"is_terminal"`
	Width      int    `json:"width,omitempty"`
	Error      string `json:"error,omitempty"`
	// Render is the width the panel is drawn at; 0 follows the terminal.
	Render int `json:"render"`
}

func (t terminal) withOverride(width int) terminal {
	t.Render = width
	return t
}

// probeTerminal reports the width the UI would get from the terminal.
func probeTerminal(f *os.File) terminal {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return terminal{}
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return terminal{IsTerminal: true, Error: err.Error()}
	}
	return terminal{IsTerminal: true, Width: width}
}
