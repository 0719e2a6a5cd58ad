// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/rwinner/lib/channel"
	"github.com/bureau-foundation/rwinner/lib/endpoint"
	"github.com/bureau-foundation/rwinner/lib/event"
	"github.com/bureau-foundation/rwinner/lib/hook"
	"github.com/bureau-foundation/rwinner/lib/layout"
	"github.com/bureau-foundation/rwinner/lib/memory"
)

// DefaultDialTimeout bounds each channel connection attempt.
const DefaultDialTimeout = 5 * time.Second

// Stages reported by FatalError.
const (
	StageConnect = "connect"
	StageResolve = "resolve"
	StageInstall = "install"
	StageEnable  = "enable"
)

// FatalError is a startup failure after which the agent must not run.
type FatalError struct {
	Stage string
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("agent %s: %v", e.Stage, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Config is everything the agent needs from its host process.
type Config struct {
	Endpoints endpoint.Set
	Layout    layout.Layout

	// ModuleBase is the load address of the game's main module.
	ModuleBase uintptr

	// Reader reads the game's memory. Normally memory.Self().
	Reader memory.Reader

	// Mechanism performs the interception of the setter.
	Mechanism hook.Mechanism

	// Logger receives messages until the debug channel is connected.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Level is the minimum level written to the debug channel.
	Level slog.Leveler

	// DialTimeout bounds each connection attempt. Zero means
	// DefaultDialTimeout.
	DialTimeout time.Duration
}

// Agent is a running interception session.
type Agent struct {
	conns    *channel.Conns
	hook     *hook.Hook
	logger   *slog.Logger
	resolver memory.Resolver
	chain    memory.Chain
	reader   memory.Reader

	writeMu sync.Mutex
	broken  bool

	closeOnce sync.Once
	closeErr  error
}

// Start connects both channels and enables the hook. No call is
// intercepted until both connections are up.
func Start(ctx context.Context, config Config) (*Agent, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := config.DialTimeout
	if timeout == 0 {
		timeout = DefaultDialTimeout
	}
	if config.Reader == nil {
		return nil, &FatalError{Stage: StageResolve, Err: errors.New("memory reader is required")}
	}

	conns, err := channel.Dial(ctx, config.Endpoints, timeout)
	if err != nil {
		logger.Error("connecting to host failed", "error", err)
		return nil, &FatalError{Stage: StageConnect, Err: err}
	}

	agent := &Agent{
		conns:  conns,
		logger: slog.New(slog.NewTextHandler(conns.Debug, &slog.HandlerOptions{Level: config.Level})),
		reader: config.Reader,
		resolver: memory.Resolver{
			Reader:  config.Reader,
			Floor:   uint64(config.ModuleBase),
			Ceiling: config.Layout.Ceiling,
		},
		chain: memory.Chain{
			Base:    config.ModuleBase + uintptr(config.Layout.PointerBase),
			Offsets: config.Layout.Offsets,
		},
	}
	agent.logger.Info("agent connected",
		"data", config.Endpoints.Data.String(),
		"debug", config.Endpoints.Debug.String())

	if err := config.Layout.Validate(); err != nil {
		return nil, agent.abort(StageResolve, fmt.Errorf("layout: %w", err))
	}
	if config.ModuleBase == 0 {
		return nil, agent.abort(StageResolve, errors.New("module base unresolved"))
	}
	target := config.ModuleBase + uintptr(config.Layout.FunctionOffset)
	agent.logger.Info("module resolved",
		"base", fmt.Sprintf("%#x", config.ModuleBase),
		"target", fmt.Sprintf("%#x", target))

	engine := &hook.Engine{Logger: agent.logger}
	installed, err := engine.Install(target, agent.Observe, config.Mechanism)
	if err != nil {
		return nil, agent.abort(StageInstall, err)
	}
	agent.hook = installed

	if err := installed.Enable(); err != nil {
		return nil, agent.abort(StageEnable, err)
	}
	agent.logger.Info("hook enabled")
	return agent, nil
}

// abort logs a startup failure into the debug channel, tears down
// whatever was set up, and returns the FatalError.
func (a *Agent) abort(stage string, err error) error {
	fatal := &FatalError{Stage: stage, Err: err}
	a.logger.Error("agent startup failed", "stage", stage, "error", err)
	if closeErr := a.Close(); closeErr != nil {
		return errors.Join(fatal, closeErr)
	}
	return fatal
}

// Logger returns the logger that writes into the debug channel.
func (a *Agent) Logger() *slog.Logger { return a.logger }

// Observe handles one intercepted setter call. this is the variable
// being written and arg points at the incoming value record.
//
// The setter runs constantly on the game thread and the chain is
// unresolved whenever no match is loaded, so failures here write
// nothing anywhere: a debug-channel line per call would block the game
// on the socket.
func (a *Agent) Observe(this, arg uintptr) {
	won, err := a.resolver.Resolve(a.chain)
	if err != nil || this != won {
		return
	}

	record, err := memory.ReadRecord(a.reader, arg)
	if err != nil {
		return
	}
	a.logger.Debug("player won updated", "value", record.Value)
	a.emit(record.Value)
}

func (a *Agent) emit(value float64) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	if a.broken {
		return
	}
	encoded := event.EncodeData(value)
	if _, err := a.conns.Data.Write(encoded[:]); err != nil {
		a.broken = true
		a.logger.Error("writing event failed, no further events will be sent", "error", err)
	}
}

// Close disables the hook and closes both channels. It is safe to call
// more than once; later calls return the first result.
func (a *Agent) Close() error {
	a.closeOnce.Do(func() {
		enabled := a.hook.State() == hook.Enabled
		hookErr := a.hook.Disable()
		if hookErr != nil {
			a.logger.Error("disabling hook failed", "error", hookErr)
		} else if enabled {
			a.logger.Info("hook disabled")
		}
		a.closeErr = errors.Join(hookErr, a.conns.Close())
	})
	return a.closeErr
}
