// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory is the only place in rwinner that handles raw
// addresses of the process the agent runs in.
//
// Everything else reaches memory through the [Reader] capability:
//
//   - [Self] reads the current process through the operating system
//     (ReadProcessMemory on Windows, process_vm_readv on Linux), so an
//     unmapped address produces an error instead of a fault.
//   - [Image] is a sparse in-memory address space for tests and
//     simulations.
//
// [Resolver] walks a [Chain] of pointer dereferences from a static slot
// in the game module to the variable of interest. Each dereferenced
// value must lie within [Floor, Ceiling] (the module base and the top of
// user space); the walk stops at the first null cursor, out-of-range
// value, or failed read and never reads past it.
//
// [ReadRecord] decodes the game's 16-byte variable cell ([Record]) at an
// address, and [ModuleBase] finds where the primary executable image is
// mapped.
package memory
