// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bureau-foundation/rwinner/lib/binhash"
	"github.com/bureau-foundation/rwinner/lib/channel"
	"github.com/bureau-foundation/rwinner/lib/endpoint"
	"github.com/bureau-foundation/rwinner/lib/event"
	"github.com/bureau-foundation/rwinner/lib/inject"
	"github.com/bureau-foundation/rwinner/lib/layout"
)

// DefaultDialTimeout bounds the single forward connection attempt.
const DefaultDialTimeout = 5 * time.Second

// Controller drives one host session.
type Controller struct {
	Endpoints endpoint.Set
	Layout    layout.Layout

	// AgentPath is the agent module injected into the target.
	AgentPath string

	Finder   inject.Finder
	Injector inject.Injector

	// Output receives the debug stream verbatim. If nil, os.Stdout.
	Output io.Writer

	// Logger receives lifecycle messages and outcomes. If nil,
	// slog.Default() is used.
	Logger *slog.Logger

	// DialTimeout bounds the forward connection attempt. Zero means
	// DefaultDialTimeout.
	DialTimeout time.Duration

	mu        sync.Mutex
	debugAddr net.Addr
	dataAddr  net.Addr
}

// DebugAddr returns the bound debug listener address, or nil before
// Run has bound it.
func (c *Controller) DebugAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.debugAddr
}

// DataAddr returns the bound data listener address, or nil before Run
// has bound it.
func (c *Controller) DataAddr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dataAddr
}

func (c *Controller) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Controller) output() io.Writer {
	if c.Output != nil {
		return c.Output
	}
	return os.Stdout
}

// Run executes the session and returns nil once the agent's streams
// have closed and it has been ejected. Errors before that point are
// fatal to the session; everything opened so far is closed first.
//
// ctx bounds the startup phase only: cancelling it while waiting for
// the agent to connect aborts the session.
func (c *Controller) Run(ctx context.Context) error {
	logger := c.logger()

	if c.Finder == nil || c.Injector == nil {
		return errors.New("host: finder and injector are required")
	}

	target, err := c.Finder.Find(ctx, c.Layout.ProcessName)
	if err != nil {
		return fmt.Errorf("finding target process: %w", err)
	}
	logger.Info("target process found", "name", target.Name, "pid", target.PID)

	listeners, err := channel.Listen(ctx, c.Endpoints)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.debugAddr = listeners.Debug.Addr()
	c.dataAddr = listeners.Data.Addr()
	c.mu.Unlock()
	logger.Info("listening",
		"debug", listeners.Debug.Addr().String(),
		"data", listeners.Data.Addr().String())

	forward := c.dialForward(ctx)

	abort := func(err error) error {
		listeners.Close()
		if forward != nil {
			forward.Close()
		}
		return err
	}

	c.logAgentDigest()

	handle, err := c.Injector.Inject(ctx, target, c.AgentPath)
	if err != nil {
		return abort(fmt.Errorf("injecting %s into %s: %w", c.AgentPath, target, err))
	}
	logger.Info("agent injected", "module", handle.ModulePath, "base", fmt.Sprintf("%#x", handle.ModuleBase))

	debug, data, err := acceptAll(ctx, listeners)
	if err != nil {
		return abort(err)
	}
	// No further connections are expected.
	listeners.Close()
	logger.Info("agent connected",
		"debug", debug.RemoteAddr().String(),
		"data", data.RemoteAddr().String())

	c.relay(debug, data, forward)

	if err := c.Injector.Eject(context.Background(), handle); err != nil {
		// The usual cause is that the game has already exited, taking
		// the agent with it.
		logger.Warn("ejecting agent failed", "error", err)
	} else {
		logger.Info("agent ejected")
	}

	debug.Close()
	data.Close()
	if forward != nil {
		forward.Close()
	}
	logger.Info("session finished")
	return nil
}

// dialForward makes the one forward connection attempt. Failure is
// logged and the session runs without forwarding.
func (c *Controller) dialForward(ctx context.Context) net.Conn {
	timeout := c.DialTimeout
	if timeout == 0 {
		timeout = DefaultDialTimeout
	}
	forward, err := channel.DialForward(ctx, c.Endpoints.Forward, timeout)
	if err != nil {
		c.logger().Warn("forward endpoint unavailable, continuing without forwarding", "error", err)
		return nil
	}
	c.logger().Info("forwarding outcomes", "forward", c.Endpoints.Forward.String())
	return forward
}

func (c *Controller) logAgentDigest() {
	digest, err := binhash.HashFile(c.AgentPath)
	if err != nil {
		c.logger().Warn("hashing agent module failed", "path", c.AgentPath, "error", err)
		return
	}
	c.logger().Info("agent module", "path", c.AgentPath, "blake3", binhash.FormatDigest(digest))
}

// acceptAll accepts debug then data, closing the listeners if ctx is
// cancelled first.
func acceptAll(ctx context.Context, listeners *channel.Listeners) (debug, data net.Conn, err error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			listeners.Close()
		case <-done:
		}
	}()

	debug, data, err = listeners.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, fmt.Errorf("waiting for agent: %w", ctx.Err())
		}
		return nil, nil, err
	}
	return debug, data, nil
}

// relay drains both streams and returns when both have ended.
func (c *Controller) relay(debug, data, forward net.Conn) {
	logger := c.logger()

	var forwarder *channel.Forwarder
	if forward != nil {
		forwarder = channel.NewForwarder(forward, logger)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		copied, err := channel.RelayDebug(c.output(), debug)
		if err != nil {
			logger.Error("debug relay failed", "error", err)
		}
		logger.Info("debug stream closed", "bytes", copied)
	}()
	go func() {
		defer wg.Done()
		count, err := channel.RelayData(data, forwarder, func(observed event.Event) {
			logger.Info("player won", "payload", observed.Payload)
		})
		if err != nil {
			logger.Error("data relay failed", "error", err)
		}
		logger.Info("data stream closed", "events", count)
	}()
	wg.Wait()
}
