//go:build !linux

package transport

import (
	"context"
	"errors"
	"io"
)

func (t *RFCOMMTransport) Open(context.Context, string) (io.ReadWriteCloser, error) {
	return nil, errors.New("rfcomm sockets are only supported on linux; use -transport serial")
}
