// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inject

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// DetachSymbol is the agent module's exported teardown entry point. It
// has the thread start routine signature so it can be run directly on a
// remote thread.
const DetachSymbol = "RwinnerDetach"

var (
	// ErrProcessNotFound is returned when no process has the requested
	// name.
	ErrProcessNotFound = errors.New("inject: process not found")

	// ErrUnsupported is returned by NewInjector on platforms without an
	// injection mechanism.
	ErrUnsupported = errors.New("inject: injection not supported on this platform")
)

// Target identifies a running process.
type Target struct {
	PID  int32
	Name string
}

func (t Target) String() string {
	return fmt.Sprintf("%s (pid %d)", t.Name, t.PID)
}

// Handle identifies a module loaded into a target. It is required to
// eject the module.
type Handle struct {
	Target     Target
	ModulePath string

	// ModuleBase is where the module was mapped in the target.
	ModuleBase uintptr
}

// Finder locates a process by executable name.
type Finder interface {
	Find(ctx context.Context, name string) (Target, error)
}

// Injector loads and unloads a module in a target process.
type Injector interface {
	Inject(ctx context.Context, target Target, modulePath string) (Handle, error)
	Eject(ctx context.Context, handle Handle) error
}

// ProcessFinder is a [Finder] over the operating system's process table.
type ProcessFinder struct{}

// Find returns the first process whose executable name equals name,
// ignoring case.
func (ProcessFinder) Find(ctx context.Context, name string) (Target, error) {
	processes, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return Target{}, fmt.Errorf("inject: listing processes: %w", err)
	}
	for _, candidate := range processes {
		candidateName, err := candidate.NameWithContext(ctx)
		if err != nil {
			// Processes exit between listing and inspection, and
			// protected ones refuse queries. Neither can be the target.
			continue
		}
		if strings.EqualFold(candidateName, name) {
			return Target{PID: candidate.Pid, Name: candidateName}, nil
		}
	}
	return Target{}, fmt.Errorf("%w: %s", ErrProcessNotFound, name)
}
