// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package inject finds the target process and loads the agent module
// into it.
//
// Both operations sit behind interfaces ([Finder], [Injector]) so the
// host controller can be driven by fakes in tests. The real
// implementations are:
//
//   - [ProcessFinder], built on gopsutil's process table, which matches
//     executable names case-insensitively and returns the first hit.
//   - The Windows injector returned by [NewInjector], which writes the
//     module path into the target, runs LoadLibraryW there on a remote
//     thread, and records where the module was mapped. Eject runs the
//     agent's exported [DetachSymbol] in the target, which disables the
//     hook and closes the agent's channels. The module itself stays
//     mapped: a Go runtime cannot be unloaded from a live process.
//
// On other platforms NewInjector returns [ErrUnsupported].
package inject
