package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atomicstack/earctl/internal/backend"
	"github.com/atomicstack/earctl/internal/device"
	"github.com/atomicstack/earctl/internal/device/bluez"
	"github.com/atomicstack/earctl/internal/device/transport"
	"github.com/atomicstack/earctl/internal/logging/events"
	"github.com/atomicstack/earctl/internal/ui"
	"github.com/atomicstack/earctl/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

const (
	TransportRFCOMM    = "rfcomm"
	TransportSerial    = "serial"
	TransportSimulated = "simulated"
)

// Config describes user-provided application options.
type Config struct {
	Transport        string
	Address          string
	NamePrefix       string
	Adapter          string
	SerialPort       string
	BaudRate         int
	Channel          int
	SimulateFailures string
	ShutdownGrace    time.Duration
	Width            int
}

// Run starts the session worker and the Bubble Tea program, and tears both
// down once the program exits.
func Run(cfg Config) error {
	connector, err := newConnector(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmdTx, cmdRx := backend.NewChannel[backend.Command]()
	respTx, respRx := backend.NewChannel[backend.Response]()
	defer respRx.Close()
	notifier := backend.NewNotifier()
	worker := backend.NewWorker(connector, cmdRx, respTx, notifier)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})

	bus := command.New(cmdTx)
	model := ui.NewModel(bus, respRx, notifier, cfg.Width)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := program.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) {
		runErr = nil
	}

	// Closing the last command sender lets the worker finish what is queued.
	bus.Close()
	waitErr := shutdown(g.Wait, cancel, cfg.ShutdownGrace)
	events.App.Stop(errors.Join(runErr, model.Err(), waitErr))

	switch {
	case runErr != nil:
		return runErr
	case model.Err() != nil:
		return model.Err()
	default:
		return waitErr
	}
}

// shutdown waits up to grace for the worker. When the grace period runs out
// the worker's context is cancelled and left behind; it ends with the process.
// A grace of zero or less cancels right away.
func shutdown(wait func() error, cancel context.CancelFunc, grace time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- wait()
	}()

	timer := time.NewTimer(max(grace, 0))
	defer timer.Stop()

	select {
	case err := <-done:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case <-timer.C:
		cancel()
		events.App.ShutdownTimeout(grace.String())
		return nil
	}
}

func newConnector(cfg Config) (backend.Connector, error) {
	switch cfg.Transport {
	case TransportSimulated:
		sim, err := device.NewSimulated(splitList(cfg.SimulateFailures))
		if err != nil {
			return nil, err
		}
		if cfg.Address != "" {
			sim.Address = cfg.Address
		}
		return device.NewConnector(device.StaticResolver(sim.Address), sim), nil
	case TransportSerial:
		var resolver device.Resolver = bluez.Resolver{Adapter: cfg.Adapter, NamePrefix: cfg.NamePrefix}
		if cfg.Address != "" {
			resolver = device.StaticResolver(cfg.Address)
		}
		return device.NewConnector(resolver, transport.NewSerialTransport(cfg.SerialPort, cfg.BaudRate)), nil
	case TransportRFCOMM, "":
		t, err := transport.NewRFCOMMTransport(cfg.Channel)
		if err != nil {
			return nil, err
		}
		resolver := bluez.Resolver{Adapter: cfg.Adapter, Address: cfg.Address, NamePrefix: cfg.NamePrefix}
		return device.NewConnector(resolver, t), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
