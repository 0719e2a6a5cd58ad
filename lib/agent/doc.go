// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent is the code that runs inside the game process.
//
// [Start] connects the data and debug channels to the host, moves the
// agent's logging onto the debug channel, and hooks the game's variable
// setter. Every intercepted call walks the pointer chain to the "player
// won" variable; when the setter is writing that variable, the new value
// is sent to the host as one 8-byte record. Calls that do not touch the
// variable, or arrive while the chain is unresolvable (menus, loading
// screens), produce nothing.
//
// Startup failures are returned as [*FatalError] after the hook is
// disabled and both connections are closed. The caller decides how to
// terminate.
package agent
