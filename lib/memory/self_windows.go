// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Self returns a Reader over the current process.
func Self() Reader { return selfReader{} }

type selfReader struct{}

// ReadAt goes through ReadProcessMemory on the pseudo-handle of the
// current process. The kernel validates the source range, so a stale
// pointer yields ERROR_PARTIAL_COPY instead of an access violation.
func (selfReader) ReadAt(p []byte, addr uintptr) error {
	if len(p) == 0 {
		return nil
	}
	var read uintptr
	err := windows.ReadProcessMemory(windows.CurrentProcess(), addr, &p[0], uintptr(len(p)), &read)
	if err != nil {
		return &FaultError{Addr: addr, Size: len(p)}
	}
	if read != uintptr(len(p)) {
		return fmt.Errorf("memory: short read at %#x: %d of %d bytes", addr, read, len(p))
	}
	return nil
}

// ModuleBase returns the load address of the current process's
// executable image.
func ModuleBase() (uintptr, error) {
	var module windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &module); err != nil {
		return 0, fmt.Errorf("memory: GetModuleHandleEx: %w", err)
	}
	return uintptr(module), nil
}
