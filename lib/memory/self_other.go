// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows && !linux

package memory

import (
	"errors"
	"runtime"
)

var errUnsupported = errors.New("memory: live reads not supported on " + runtime.GOOS)

// Self returns a Reader that fails every read on this platform.
func Self() Reader { return unsupportedReader{} }

type unsupportedReader struct{}

func (unsupportedReader) ReadAt(p []byte, addr uintptr) error { return errUnsupported }

// ModuleBase is not supported on this platform.
func ModuleBase() (uintptr, error) { return 0, errUnsupported }
