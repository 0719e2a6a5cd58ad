// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// rwinner is the host controller. It finds the running game, injects the
// agent module beside this executable into it, prints the agent's debug
// output, and logs (and optionally forwards) every "player won" update
// until the game exits.
//
// Endpoints come from config.ini beside the executable, which is created
// with defaults on first run. The host only needs the process and agent
// names from the layout; the agent reads its own config.ini and
// layout.yaml beside the game executable, and the layout there must
// supply the game build's addresses. Keep the two config.ini files in
// agreement when changing ports.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/rwinner/lib/endpoint"
	"github.com/bureau-foundation/rwinner/lib/host"
	"github.com/bureau-foundation/rwinner/lib/inject"
	"github.com/bureau-foundation/rwinner/lib/layout"
	"github.com/bureau-foundation/rwinner/lib/logging"
	"github.com/bureau-foundation/rwinner/lib/process"
	"github.com/bureau-foundation/rwinner/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var configDirectory string
	var layoutPath string
	var agentPath string
	var processName string
	var verbose bool

	flagSet := pflag.NewFlagSet("rwinner", pflag.ContinueOnError)
	flagSet.StringVar(&configDirectory, "config-dir", "", "directory holding the host's config.ini (default: beside the executable); the agent always reads config.ini beside the game executable")
	flagSet.StringVar(&layoutPath, "layout", "", "host layout file (default: layout.yaml beside the executable); the agent always reads layout.yaml beside the game executable")
	flagSet.StringVar(&agentPath, "agent", "", "agent module to inject (default: the layout's agent module beside the executable)")
	flagSet.StringVar(&processName, "process", "", "target executable name (default: from the layout)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	showVersion := flagSet.Bool("version", false, "print version information and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if *showVersion {
		version.Print("rwinner", verbose)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(os.Stderr, level)
	slog.SetDefault(logger)

	configPath, err := besideOr(configDirectory, endpoint.FileName)
	if err != nil {
		return err
	}
	endpoints, err := endpoint.Load(configPath)
	if err != nil {
		return err
	}

	if layoutPath == "" {
		if layoutPath, err = process.BesideExecutable(layout.FileName); err != nil {
			return err
		}
	}
	gameLayout, err := layout.Load(layoutPath)
	if err != nil {
		return err
	}
	if processName != "" {
		gameLayout.ProcessName = processName
	}
	if err := gameLayout.ValidateTarget(); err != nil {
		return fmt.Errorf("layout %s: %w", layoutPath, err)
	}

	if agentPath == "" {
		if agentPath, err = process.BesideExecutable(gameLayout.AgentModule); err != nil {
			return err
		}
	}

	injector, err := inject.NewInjector()
	if err != nil {
		return err
	}

	logger.Info("starting rwinner",
		"version", version.Info(),
		"config", configPath,
		"layout", layoutPath,
		"data", endpoints.Data.String(),
		"debug", endpoints.Debug.String(),
		"forward", endpoints.Forward.String(),
	)

	// Signals only interrupt startup; a live session ends when the game
	// closes the agent's connections.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller := &host.Controller{
		Endpoints: endpoints,
		Layout:    gameLayout,
		AgentPath: agentPath,
		Finder:    inject.ProcessFinder{},
		Injector:  injector,
		Output:    os.Stdout,
		Logger:    logger,
	}
	return controller.Run(ctx)
}

// besideOr joins name onto directory, or onto the executable's
// directory when directory is empty.
func besideOr(directory, name string) (string, error) {
	if directory == "" {
		return process.BesideExecutable(name)
	}
	return filepath.Join(directory, name), nil
}
