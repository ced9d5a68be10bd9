// Package device implements the earbud session behind backend.Connector:
// resolve the device, open a transport, and speak the frame protocol.
package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/atomicstack/earctl/internal/backend"
	"github.com/atomicstack/earctl/internal/device/transport"
	"github.com/atomicstack/earctl/internal/logging/events"
)

// Resolver finds the address of the device to talk to.
type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}

// StaticResolver always returns the same address.
type StaticResolver string

func (r StaticResolver) Resolve(context.Context) (string, error) {
	if r == "" {
		return "", errors.New("no device address configured")
	}
	return string(r), nil
}

// Connector opens a session to the earbuds. Connect either returns a session
// with device info filled in or an error; it never retries.
type Connector struct {
	resolver  Resolver
	transport transport.Transport
}

func NewConnector(resolver Resolver, t transport.Transport) *Connector {
	return &Connector{resolver: resolver, transport: t}
}

func (c *Connector) Connect(ctx context.Context) (backend.Session, error) {
	address, err := c.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve device: %w", err)
	}
	events.Device.Resolve(address, c.transport.Name())

	conn, err := c.transport.Open(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("open %s transport: %w", c.transport.Name(), err)
	}
	s := newSession(conn, address)
	if err := s.handshake(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
