// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/rwinner/lib/event"
	"github.com/bureau-foundation/rwinner/lib/netutil"
)

// RelayDebug copies the debug stream to destination byte for byte until
// the stream ends. A peer disconnect is a normal end and returns nil.
//
// If destination fails, the rest of the stream is still read and
// discarded so the agent never blocks on a full socket; the write error
// is returned once the stream ends.
func RelayDebug(destination io.Writer, source io.Reader) (int64, error) {
	output := &drainWriter{destination: destination}
	copied, err := io.Copy(output, source)
	if err != nil && !netutil.IsExpectedCloseError(err) {
		return copied, fmt.Errorf("relaying debug stream: %w", err)
	}
	if output.err != nil {
		return copied, fmt.Errorf("writing debug output: %w", output.err)
	}
	return copied, nil
}

// drainWriter forwards to destination until the first write error and
// swallows everything after it.
type drainWriter struct {
	destination io.Writer
	err         error
}

func (w *drainWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return len(p), nil
	}
	if _, err := w.destination.Write(p); err != nil {
		w.err = err
	}
	return len(p), nil
}

// RelayData reads 8-byte records from source until the stream ends,
// handing each decoded event to handle and, when forwarder is non-nil,
// writing it downstream. It returns the number of records read. A
// trailing partial record ends the relay without an event.
func RelayData(source io.Reader, forwarder *Forwarder, handle func(event.Event)) (int, error) {
	var record [event.DataRecordSize]byte
	count := 0
	for {
		if _, err := io.ReadFull(source, record[:]); err != nil {
			if errors.Is(err, io.EOF) || netutil.IsExpectedCloseError(err) {
				return count, nil
			}
			return count, fmt.Errorf("reading data record %d: %w", count, err)
		}
		count++

		observed := event.FromValue(event.DecodeData(record))
		if handle != nil {
			handle(observed)
		}
		forwarder.Forward(observed)
	}
}
