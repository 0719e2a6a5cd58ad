// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// Windows socket error numbers for the same conditions as ECONNRESET
// and ECONNABORTED. They are distinct errno values from the POSIX ones
// on that platform.
const (
	wsaConnectionAborted syscall.Errno = 10053
	wsaConnectionReset   syscall.Errno = 10054
)

// IsExpectedCloseError reports whether err is how a stream ends when the
// other side closes or dies: EOF, use of a closed connection, a broken
// pipe, or a reset/aborted connection. The agent's sockets go away this
// way whenever the game exits, so none of these are failures.
func IsExpectedCloseError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EPIPE, syscall.ECONNRESET, syscall.ECONNABORTED,
			wsaConnectionAborted, wsaConnectionReset:
			return true
		}
	}
	return false
}
