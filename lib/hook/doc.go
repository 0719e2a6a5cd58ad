// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hook intercepts a two-argument function so an [Observer] sees
// every call before the original function runs.
//
// The engine is deliberately observational: the detour it installs calls
// the observer and then always calls the original function exactly once
// with the unmodified arguments, returning the original's result. The
// observer cannot change arguments, skip the call, or alter the return
// value, and a panicking observer is recovered and logged.
//
// How calls get redirected is a [Mechanism]:
//
//   - [Slot] redirects a Go dispatch slot. Tests and simulations use it
//     to stand in for a native function.
//   - [NewTrampoline] patches native code on windows/amd64: the first
//     instructions of the target are copied into an executable gate
//     followed by a jump back, and the target's entry is overwritten
//     with an absolute jump to a Go callback.
//
// A [Hook] moves through Uninstalled -> Installed -> Enabled <-> Disabled
// and never returns to Uninstalled. [Hook.Disable] is safe in every
// state, including on a nil *Hook, so teardown paths can call it
// unconditionally.
package hook
