// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// rwinner-agent is the module injected into the game. Build it with
//
//	go build -buildmode=c-shared -o rivals_rwinner.dll ./cmd/rwinner-agent
//
// Loading the module starts the agent: it connects to the host, hooks
// the game's variable setter, and streams "player won" updates. The
// exported RwinnerDetach entry point disables the hook and disconnects.
// A fatal startup error terminates the game process.
//
// The agent reads config.ini and layout.yaml from the game executable's
// directory, not the host's, and layout.yaml there must supply the
// game build's addresses.
//
// The hook is disabled only when the host ejects the agent through
// RwinnerDetach. A Go c-shared module gets no callback when the game
// exits or unloads it, so a game that exits with the agent attached
// exits with the hook still in place.
package main

// main is required by -buildmode=c-shared and never runs.
func main() {}
