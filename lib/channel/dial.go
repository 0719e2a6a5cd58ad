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

// Conns are the agent's connected data and debug streams.
type Conns struct {
	Data  net.Conn
	Debug net.Conn
}

// Dial connects the data channel and then the debug channel. If either
// fails, whatever was opened is closed and the error returned; the agent
// must not hook anything in that case.
func Dial(ctx context.Context, endpoints endpoint.Set, timeout time.Duration) (*Conns, error) {
	dialer := net.Dialer{Timeout: timeout}

	data, err := dialer.DialContext(ctx, "tcp", endpoints.Data.Address())
	if err != nil {
		return nil, fmt.Errorf("connecting data channel %s: %w", endpoints.Data, err)
	}
	debug, err := dialer.DialContext(ctx, "tcp", endpoints.Debug.Address())
	if err != nil {
		data.Close()
		return nil, fmt.Errorf("connecting debug channel %s: %w", endpoints.Debug, err)
	}
	return &Conns{Data: data, Debug: debug}, nil
}

// Close shuts down both streams. The host's relays see EOF and finish.
func (c *Conns) Close() error {
	return errors.Join(c.Data.Close(), c.Debug.Close())
}
