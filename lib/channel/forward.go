// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"io"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/rwinner/lib/event"
)

// Forwarder writes outcome payloads to the downstream consumer as 4-byte
// records. The first write failure turns forwarding off for the rest of
// the session; the relay that feeds it keeps running. A nil *Forwarder
// forwards nothing.
type Forwarder struct {
	writer io.Writer
	logger *slog.Logger

	mu       sync.Mutex
	disabled bool
}

// NewForwarder returns a Forwarder writing to writer. If logger is nil,
// slog.Default() is used.
func NewForwarder(writer io.Writer, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{writer: writer, logger: logger}
}

// Forward writes observed's payload downstream.
func (f *Forwarder) Forward(observed event.Event) {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disabled {
		return
	}

	record := event.EncodeForward(observed.Payload)
	if _, err := f.writer.Write(record[:]); err != nil {
		f.disabled = true
		f.logger.Error("forwarding failed, continuing without forwarding",
			"payload", observed.Payload,
			"error", err,
		)
	}
}

// Active reports whether payloads are still being forwarded.
func (f *Forwarder) Active() bool {
	if f == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.disabled
}
