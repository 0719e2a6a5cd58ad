// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Self returns a Reader over the current process.
func Self() Reader { return selfReader{pid: os.Getpid()} }

type selfReader struct {
	pid int
}

// ReadAt uses process_vm_readv against our own pid. The kernel copies
// from the source range on our behalf, so an unmapped address returns
// EFAULT instead of raising SIGSEGV.
func (r selfReader) ReadAt(p []byte, addr uintptr) error {
	if len(p) == 0 {
		return nil
	}
	local := []unix.Iovec{{Base: &p[0]}}
	local[0].SetLen(len(p))
	remote := []unix.RemoteIovec{{Base: addr, Len: len(p)}}

	n, err := unix.ProcessVMReadv(r.pid, local, remote, 0)
	if err != nil {
		return &FaultError{Addr: addr, Size: len(p)}
	}
	if n != len(p) {
		return fmt.Errorf("memory: short read at %#x: %d of %d bytes", addr, n, len(p))
	}
	return nil
}

// ModuleBase returns the lowest mapping of the current executable in
// /proc/self/maps.
func ModuleBase() (uintptr, error) {
	executable, err := os.Readlink("/proc/self/exe")
	if err != nil {
		return 0, fmt.Errorf("memory: resolving /proc/self/exe: %w", err)
	}

	maps, err := os.Open("/proc/self/maps")
	if err != nil {
		return 0, fmt.Errorf("memory: opening /proc/self/maps: %w", err)
	}
	defer maps.Close()

	scanner := bufio.NewScanner(maps)
	for scanner.Scan() {
		base, path, ok := parseMapsLine(scanner.Text())
		if ok && path == executable {
			return base, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("memory: reading /proc/self/maps: %w", err)
	}
	return 0, fmt.Errorf("memory: %s not mapped", executable)
}

// parseMapsLine extracts the start address and path from one line of
// /proc/<pid>/maps:
//
//	55d0c6a00000-55d0c6a02000 r--p 00000000 fd:01 1234   /usr/bin/game
func parseMapsLine(line string) (uintptr, string, bool) {
	fields := strings.Fields(line)
	if len(fields) < 6 {
		return 0, "", false
	}
	start, _, found := strings.Cut(fields[0], "-")
	if !found {
		return 0, "", false
	}
	base, err := strconv.ParseUint(start, 16, 64)
	if err != nil {
		return 0, "", false
	}
	return uintptr(base), strings.Join(fields[5:], " "), true
}
