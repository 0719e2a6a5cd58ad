// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hook

import (
	"errors"
	"fmt"
	"sync"
	"syscall"

	"golang.org/x/sys/windows"

	"github.com/bureau-foundation/rwinner/lib/memory"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procFlushInstructionCache = kernel32.NewProc("FlushInstructionCache")
)

// gateSize is the allocation for the relocated prologue plus the jump
// back into the target.
const gateSize = 64

// Trampoline patches the entry of a native function in the current
// process.
type Trampoline struct {
	mu       sync.Mutex
	target   uintptr
	stolen   []byte
	patch    []byte
	gate     uintptr
	callback uintptr
}

// NewTrampoline returns a native code-patching [Mechanism].
func NewTrampoline() (Mechanism, error) {
	return &Trampoline{}, nil
}

// Prepare copies the target's first instructions into an executable
// gate that continues at the first untouched instruction, and builds
// the entry patch that jumps to detour.
func (t *Trampoline) Prepare(target uintptr, detour Func) (Func, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gate != 0 {
		return nil, errors.New("hook: trampoline already prepared")
	}

	prologue := make([]byte, maxPrologue)
	if err := memory.Self().ReadAt(prologue, target); err != nil {
		return nil, fmt.Errorf("hook: reading prologue: %w", err)
	}
	length, err := stealLength(prologue)
	if err != nil {
		return nil, err
	}

	gate, err := windows.VirtualAlloc(0, gateSize, windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_EXECUTE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("hook: allocating gate: %w", err)
	}
	code := append(append([]byte{}, prologue[:length]...), absoluteJump(target+uintptr(length))...)
	if err := writeCode(gate, code); err != nil {
		windows.VirtualFree(gate, 0, windows.MEM_RELEASE)
		return nil, err
	}

	t.target = target
	t.stolen = prologue[:length]
	t.gate = gate
	t.callback = syscall.NewCallback(func(this, arg uintptr) uintptr {
		return detour(this, arg)
	})
	t.patch = absoluteJump(t.callback)
	// Pad the rest of the stolen range so a disassembler walking the
	// patched entry does not decode half an instruction.
	for len(t.patch) < length {
		t.patch = append(t.patch, 0xCC)
	}

	original := func(this, arg uintptr) uintptr {
		result, _, _ := syscall.SyscallN(gate, this, arg)
		return result
	}
	return original, nil
}

// Activate writes the entry patch.
func (t *Trampoline) Activate() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gate == 0 {
		return errors.New("hook: trampoline not prepared")
	}
	return writeCode(t.target, t.patch)
}

// Deactivate restores the original entry bytes.
func (t *Trampoline) Deactivate() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gate == 0 {
		return errors.New("hook: trampoline not prepared")
	}
	return writeCode(t.target, t.stolen)
}

// writeCode copies code to address, lifting page protection for the
// duration of the write and flushing the instruction cache afterwards.
func writeCode(address uintptr, code []byte) error {
	var previous uint32
	if err := windows.VirtualProtect(address, uintptr(len(code)), windows.PAGE_EXECUTE_READWRITE, &previous); err != nil {
		return fmt.Errorf("hook: VirtualProtect %#x: %w", address, err)
	}

	var written uintptr
	writeErr := windows.WriteProcessMemory(windows.CurrentProcess(), address, &code[0], uintptr(len(code)), &written)

	var restored uint32
	if err := windows.VirtualProtect(address, uintptr(len(code)), previous, &restored); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("hook: restoring protection at %#x: %w", address, err)
	}
	if writeErr != nil {
		return fmt.Errorf("hook: writing %d bytes at %#x: %w", len(code), address, writeErr)
	}
	if written != uintptr(len(code)) {
		return fmt.Errorf("hook: short write at %#x: %d of %d bytes", address, written, len(code))
	}

	procFlushInstructionCache.Call(uintptr(windows.CurrentProcess()), address, uintptr(len(code)))
	return nil
}
