// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package inject

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procVirtualAllocEx     = kernel32.NewProc("VirtualAllocEx")
	procVirtualFreeEx      = kernel32.NewProc("VirtualFreeEx")
	procCreateRemoteThread = kernel32.NewProc("CreateRemoteThread")
	procGetExitCodeThread  = kernel32.NewProc("GetExitCodeThread")
)

const processAccess = windows.PROCESS_CREATE_THREAD |
	windows.PROCESS_QUERY_INFORMATION |
	windows.PROCESS_VM_OPERATION |
	windows.PROCESS_VM_WRITE |
	windows.PROCESS_VM_READ

type remoteInjector struct{}

// NewInjector returns the remote-thread injector.
func NewInjector() (Injector, error) {
	return remoteInjector{}, nil
}

func (remoteInjector) Inject(ctx context.Context, target Target, modulePath string) (Handle, error) {
	absolute, err := filepath.Abs(modulePath)
	if err != nil {
		return Handle{}, fmt.Errorf("inject: resolving %s: %w", modulePath, err)
	}

	process, err := windows.OpenProcess(processAccess, false, uint32(target.PID))
	if err != nil {
		return Handle{}, fmt.Errorf("inject: opening %s: %w", target, err)
	}
	defer windows.CloseHandle(process)

	path, err := windows.UTF16FromString(absolute)
	if err != nil {
		return Handle{}, fmt.Errorf("inject: encoding module path: %w", err)
	}
	size := uintptr(len(path) * 2)

	remote, _, err := procVirtualAllocEx.Call(uintptr(process), 0, size,
		windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if remote == 0 {
		return Handle{}, fmt.Errorf("inject: allocating path buffer in %s: %w", target, err)
	}
	defer procVirtualFreeEx.Call(uintptr(process), remote, 0, windows.MEM_RELEASE)

	var written uintptr
	if err := windows.WriteProcessMemory(process, remote, (*byte)(unsafe.Pointer(&path[0])), size, &written); err != nil {
		return Handle{}, fmt.Errorf("inject: writing path buffer: %w", err)
	}

	loadLibrary, err := kernel32Export("LoadLibraryW")
	if err != nil {
		return Handle{}, err
	}
	exit, err := runRemote(ctx, process, loadLibrary, remote)
	if err != nil {
		return Handle{}, fmt.Errorf("inject: LoadLibraryW in %s: %w", target, err)
	}
	if exit == 0 {
		return Handle{}, fmt.Errorf("inject: LoadLibraryW in %s failed to load %s", target, absolute)
	}

	// The thread exit code is the low half of the module handle, so
	// recover the full base from the module list.
	base, err := moduleBase(uint32(target.PID), filepath.Base(absolute))
	if err != nil {
		return Handle{}, err
	}
	return Handle{Target: target, ModulePath: absolute, ModuleBase: base}, nil
}

func (remoteInjector) Eject(ctx context.Context, handle Handle) error {
	rva, err := exportOffset(handle.ModulePath, DetachSymbol)
	if err != nil {
		return err
	}

	process, err := windows.OpenProcess(processAccess, false, uint32(handle.Target.PID))
	if err != nil {
		return fmt.Errorf("inject: opening %s: %w", handle.Target, err)
	}
	defer windows.CloseHandle(process)

	if _, err := runRemote(ctx, process, handle.ModuleBase+rva, 0); err != nil {
		return fmt.Errorf("inject: running %s in %s: %w", DetachSymbol, handle.Target, err)
	}
	return nil
}

// runRemote starts a thread in process at start with one argument and
// waits for it to exit, returning its exit code.
func runRemote(ctx context.Context, process windows.Handle, start, parameter uintptr) (uint32, error) {
	thread, _, err := procCreateRemoteThread.Call(uintptr(process), 0, 0, start, parameter, 0, 0)
	if thread == 0 {
		return 0, fmt.Errorf("creating remote thread: %w", err)
	}
	defer windows.CloseHandle(windows.Handle(thread))

	// Poll so a cancelled context does not leave the caller blocked on
	// a thread that never returns.
	for {
		event, err := windows.WaitForSingleObject(windows.Handle(thread), 100)
		if err != nil {
			return 0, fmt.Errorf("waiting for remote thread: %w", err)
		}
		if event == windows.WAIT_OBJECT_0 {
			break
		}
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
	}

	var exit uint32
	if ok, _, err := procGetExitCodeThread.Call(thread, uintptr(unsafe.Pointer(&exit))); ok == 0 {
		return 0, fmt.Errorf("reading remote thread exit code: %w", err)
	}
	return exit, nil
}

// kernel32Export returns the address of a kernel32 export. kernel32 is
// mapped at the same base in every process of a session, so the local
// address is valid in the target.
func kernel32Export(name string) (uintptr, error) {
	if err := kernel32.Load(); err != nil {
		return 0, fmt.Errorf("inject: loading kernel32: %w", err)
	}
	address, err := windows.GetProcAddress(windows.Handle(kernel32.Handle()), name)
	if err != nil {
		return 0, fmt.Errorf("inject: resolving %s: %w", name, err)
	}
	return address, nil
}

// exportOffset maps the module locally without running its entry point
// and returns the offset of an export from the module base.
func exportOffset(modulePath, symbol string) (uintptr, error) {
	local, err := windows.LoadLibraryEx(modulePath, 0, windows.DONT_RESOLVE_DLL_REFERENCES)
	if err != nil {
		return 0, fmt.Errorf("inject: mapping %s: %w", modulePath, err)
	}
	defer windows.FreeLibrary(local)

	address, err := windows.GetProcAddress(local, symbol)
	if err != nil {
		return 0, fmt.Errorf("inject: resolving %s in %s: %w", symbol, modulePath, err)
	}
	return address - uintptr(local), nil
}

// moduleBase walks the target's module list for a module by file name.
func moduleBase(pid uint32, name string) (uintptr, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, pid)
	if err != nil {
		return 0, fmt.Errorf("inject: snapshotting modules of pid %d: %w", pid, err)
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ModuleEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	for err = windows.Module32First(snapshot, &entry); err == nil; err = windows.Module32Next(snapshot, &entry) {
		if strings.EqualFold(windows.UTF16ToString(entry.Module[:]), name) {
			return entry.ModBaseAddr, nil
		}
	}
	return 0, fmt.Errorf("inject: module %s not loaded in pid %d", name, pid)
}
