// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hook

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Func is the signature of the intercepted function: a receiver pointer
// and one argument pointer.
type Func func(this, arg uintptr) uintptr

// Observer is called with the arguments of every intercepted call.
type Observer func(this, arg uintptr)

// Mechanism redirects calls of a native or simulated function.
type Mechanism interface {
	// Prepare readies redirection of target to detour without
	// activating it, and returns a Func that invokes the original
	// behaviour of target.
	Prepare(target uintptr, detour Func) (original Func, err error)

	// Activate starts routing calls of target to detour.
	Activate() error

	// Deactivate restores the original routing.
	Deactivate() error
}

var (
	// ErrDoubleHook is returned when installing over a target that
	// already has a hook.
	ErrDoubleHook = errors.New("hook: target already hooked")

	// ErrNotInstalled is returned by Enable on a hook that was never
	// successfully installed.
	ErrNotInstalled = errors.New("hook: not installed")

	// ErrUnresolvedTarget is returned when the target address is zero.
	ErrUnresolvedTarget = errors.New("hook: target address unresolved")

	// ErrUnsupported is returned by mechanisms unavailable on this
	// platform.
	ErrUnsupported = errors.New("hook: mechanism not supported on this platform")
)

// State is the lifecycle state of a Hook.
type State int

const (
	Uninstalled State = iota
	Installed
	Enabled
	Disabled
)

func (s State) String() string {
	switch s {
	case Uninstalled:
		return "uninstalled"
	case Installed:
		return "installed"
	case Enabled:
		return "enabled"
	case Disabled:
		return "disabled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Engine tracks installed hooks by target address.
type Engine struct {
	// Logger receives observer panics and state transitions. If nil,
	// slog.Default() is used.
	Logger *slog.Logger

	mu    sync.Mutex
	hooks map[uintptr]*Hook
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Install prepares a hook of target that reports every call to
// observer. The hook starts in the Installed state; call Enable to start
// intercepting.
func (e *Engine) Install(target uintptr, observer Observer, mechanism Mechanism) (*Hook, error) {
	if target == 0 {
		return nil, ErrUnresolvedTarget
	}
	if observer == nil {
		return nil, fmt.Errorf("hook: observer is required")
	}
	if mechanism == nil {
		return nil, fmt.Errorf("hook: mechanism is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.hooks[target]; exists {
		return nil, fmt.Errorf("%w: %#x", ErrDoubleHook, target)
	}

	hook := &Hook{
		target:    target,
		observer:  observer,
		mechanism: mechanism,
		logger:    e.logger().With("target", fmt.Sprintf("%#x", target)),
	}
	original, err := mechanism.Prepare(target, hook.detour)
	if err != nil {
		return nil, fmt.Errorf("hook: preparing %#x: %w", target, err)
	}
	hook.original = original
	hook.state = Installed

	if e.hooks == nil {
		e.hooks = make(map[uintptr]*Hook)
	}
	e.hooks[target] = hook
	hook.logger.Debug("hook installed")
	return hook, nil
}

// Hook is one installed interception.
type Hook struct {
	target    uintptr
	observer  Observer
	mechanism Mechanism
	original  Func
	logger    *slog.Logger

	mu    sync.Mutex
	state State
}

// Target returns the hooked address.
func (h *Hook) Target() uintptr { return h.target }

// State returns the current lifecycle state.
func (h *Hook) State() State {
	if h == nil {
		return Uninstalled
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Enable activates interception. Enabling an enabled hook does nothing.
func (h *Hook) Enable() error {
	if h == nil {
		return ErrNotInstalled
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case Enabled:
		return nil
	case Installed, Disabled:
		if err := h.mechanism.Activate(); err != nil {
			return fmt.Errorf("hook: enabling %#x: %w", h.target, err)
		}
		h.state = Enabled
		h.logger.Debug("hook enabled")
		return nil
	default:
		return ErrNotInstalled
	}
}

// Disable deactivates interception. It is a no-op unless the hook is
// enabled, so it may be called from any teardown path.
func (h *Hook) Disable() error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != Enabled {
		return nil
	}
	if err := h.mechanism.Deactivate(); err != nil {
		return fmt.Errorf("hook: disabling %#x: %w", h.target, err)
	}
	h.state = Disabled
	h.logger.Debug("hook disabled")
	return nil
}

// Call invokes the original function directly, bypassing the observer.
func (h *Hook) Call(this, arg uintptr) uintptr {
	return h.original(this, arg)
}

// detour is what the mechanism routes intercepted calls to.
func (h *Hook) detour(this, arg uintptr) uintptr {
	h.observe(this, arg)
	return h.original(this, arg)
}

func (h *Hook) observe(this, arg uintptr) {
	defer func() {
		if recovered := recover(); recovered != nil {
			h.logger.Error("observer panicked", "panic", recovered)
		}
	}()
	h.observer(this, arg)
}
