// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hook

import (
	"errors"
	"sync"
)

// Slot is a [Mechanism] over a Go function value. Callers invoke the
// function through Slot.Invoke, the way native code calls through a
// fixed entry point; an active hook swaps the slot to the detour.
type Slot struct {
	mu       sync.RWMutex
	current  Func
	original Func
	detour   Func
	prepared bool
}

// NewSlot returns a Slot that initially dispatches to fn.
func NewSlot(fn Func) *Slot {
	return &Slot{current: fn}
}

// Invoke calls whatever the slot currently dispatches to.
func (s *Slot) Invoke(this, arg uintptr) uintptr {
	s.mu.RLock()
	fn := s.current
	s.mu.RUnlock()
	return fn(this, arg)
}

// Prepare implements [Mechanism].
func (s *Slot) Prepare(target uintptr, detour Func) (Func, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prepared {
		return nil, errors.New("hook: slot already prepared")
	}
	if s.current == nil {
		return nil, errors.New("hook: slot has no function")
	}
	s.original = s.current
	s.detour = detour
	s.prepared = true
	return s.original, nil
}

// Activate implements [Mechanism].
func (s *Slot) Activate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.prepared {
		return errors.New("hook: slot not prepared")
	}
	s.current = s.detour
	return nil
}

// Deactivate implements [Mechanism].
func (s *Slot) Deactivate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.prepared {
		return errors.New("hook: slot not prepared")
	}
	s.current = s.original
	return nil
}
