// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package inject

// NewInjector is only available on Windows.
func NewInjector() (Injector, error) {
	return nil, ErrUnsupported
}
