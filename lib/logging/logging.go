// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the host's structured logger.
package logging

import (
	"io"
	"log/slog"

	"golang.org/x/term"
)

// New returns a logger writing to writer at level. When writer is a
// terminal the output is slog's text format for humans; otherwise
// (redirected to a file, piped into another tool) it is JSON.
func New(writer io.Writer, level slog.Leveler) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if isTerminal(writer) {
		return slog.New(slog.NewTextHandler(writer, options))
	}
	return slog.New(slog.NewJSONHandler(writer, options))
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(file.Fd()))
}
