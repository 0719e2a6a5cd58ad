// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !(windows && amd64)

package hook

// NewTrampoline is only available on windows/amd64.
func NewTrampoline() (Mechanism, error) {
	return nil, ErrUnsupported
}
