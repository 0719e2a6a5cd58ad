// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/bureau-foundation/rwinner/lib/endpoint"
)

// Listeners are the host's bound debug and data listeners.
type Listeners struct {
	Debug net.Listener
	Data  net.Listener
}

// Listen binds the debug listener and then the data listener. If the
// data bind fails the debug listener is closed before returning.
func Listen(ctx context.Context, endpoints endpoint.Set) (*Listeners, error) {
	var config net.ListenConfig

	debug, err := config.Listen(ctx, "tcp", endpoints.Debug.Address())
	if err != nil {
		return nil, fmt.Errorf("binding debug listener on %s: %w", endpoints.Debug, err)
	}
	data, err := config.Listen(ctx, "tcp", endpoints.Data.Address())
	if err != nil {
		debug.Close()
		return nil, fmt.Errorf("binding data listener on %s: %w", endpoints.Data, err)
	}
	return &Listeners{Debug: debug, Data: data}, nil
}

// Accept waits for the agent's debug connection and then its data
// connection. There is no timeout: the host has nothing else to do until
// the agent connects.
func (l *Listeners) Accept() (debug, data net.Conn, err error) {
	debug, err = l.Debug.Accept()
	if err != nil {
		return nil, nil, fmt.Errorf("accepting debug connection: %w", err)
	}
	data, err = l.Data.Accept()
	if err != nil {
		debug.Close()
		return nil, nil, fmt.Errorf("accepting data connection: %w", err)
	}
	return debug, data, nil
}

// Close closes both listeners.
func (l *Listeners) Close() error {
	return errors.Join(l.Debug.Close(), l.Data.Close())
}

// DialForward makes the single attempt to reach the downstream
// consumer. A zero timeout leaves only the context deadline.
func DialForward(ctx context.Context, forward endpoint.Endpoint, timeout time.Duration) (net.Conn, error) {
	dialer := net.Dialer{Timeout: timeout}
	connection, err := dialer.DialContext(ctx, "tcp", forward.Address())
	if err != nil {
		return nil, fmt.Errorf("connecting forward endpoint %s: %w", forward, err)
	}
	return connection, nil
}
