// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import "C"

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/bureau-foundation/rwinner/lib/agent"
	"github.com/bureau-foundation/rwinner/lib/endpoint"
	"github.com/bureau-foundation/rwinner/lib/hook"
	"github.com/bureau-foundation/rwinner/lib/layout"
	"github.com/bureau-foundation/rwinner/lib/logging"
	"github.com/bureau-foundation/rwinner/lib/memory"
	"github.com/bureau-foundation/rwinner/lib/process"
)

var (
	sessionMu sync.Mutex
	session   *agent.Agent
)

// init runs on the runtime's startup thread when the module is loaded.
func init() {
	running, err := start()
	if err != nil {
		process.Fatal(err)
	}
	sessionMu.Lock()
	session = running
	sessionMu.Unlock()
}

func start() (*agent.Agent, error) {
	logger := logging.New(os.Stderr, slog.LevelInfo)

	configPath, err := process.BesideExecutable(endpoint.FileName)
	if err != nil {
		return nil, err
	}
	endpoints, err := endpoint.Load(configPath)
	if err != nil {
		return nil, err
	}
	layoutPath, err := process.BesideExecutable(layout.FileName)
	if err != nil {
		return nil, err
	}
	gameLayout, err := layout.Load(layoutPath)
	if err != nil {
		return nil, err
	}
	logger.Info("agent configuration", "config", configPath, "layout", layoutPath)

	mechanism, err := hook.NewTrampoline()
	if err != nil {
		return nil, err
	}

	// A zero base is reported by Start once the debug channel is up.
	base, err := memory.ModuleBase()
	if err != nil {
		logger.Error("resolving module base failed", "error", err)
	}

	running, err := agent.Start(context.Background(), agent.Config{
		Endpoints:  endpoints,
		Layout:     gameLayout,
		ModuleBase: base,
		Reader:     memory.Self(),
		Mechanism:  mechanism,
		Logger:     logger,
		Level:      slog.LevelInfo,
	})
	if err != nil {
		var fatal *agent.FatalError
		if errors.As(err, &fatal) {
			logger.Error("agent failed to start", "stage", fatal.Stage)
		}
		return nil, err
	}
	slog.SetDefault(running.Logger())
	running.Logger().Info("agent configuration", "config", configPath, "layout", layoutPath)
	return running, nil
}

// RwinnerDetach disables the hook and closes both channels. It has the
// thread start routine signature so the host can run it on a remote
// thread.
//
//export RwinnerDetach
func RwinnerDetach(parameter uintptr) uint32 {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if session == nil {
		return 0
	}
	if err := session.Close(); err != nil {
		session.Logger().Error("detach failed", "error", err)
		return 1
	}
	return 0
}
