// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// DataRecordSize is the size of one record on the data channel.
	DataRecordSize = 8

	// ForwardRecordSize is the size of one record on the forward channel.
	ForwardRecordSize = 4
)

// Kind identifies what an Event signals.
type Kind uint8

const (
	// Outcome is the end-of-match winner signal.
	Outcome Kind = iota + 1
)

func (k Kind) String() string {
	switch k {
	case Outcome:
		return "outcome"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Event is one decoded observation as the host sees it.
type Event struct {
	Kind Kind

	// Payload is the observed value truncated toward zero. For Outcome
	// events it is the winning player slot.
	Payload int32
}

// FromValue builds an Outcome event from the raw observed value.
func FromValue(value float64) Event {
	return Event{Kind: Outcome, Payload: Truncate(value)}
}

// EncodeData returns the data-channel record for value.
func EncodeData(value float64) [DataRecordSize]byte {
	var record [DataRecordSize]byte
	binary.NativeEndian.PutUint64(record[:], math.Float64bits(value))
	return record
}

// DecodeData decodes a data-channel record.
func DecodeData(record [DataRecordSize]byte) float64 {
	return math.Float64frombits(binary.NativeEndian.Uint64(record[:]))
}

// EncodeForward returns the forward-channel record for payload.
func EncodeForward(payload int32) [ForwardRecordSize]byte {
	var record [ForwardRecordSize]byte
	binary.NativeEndian.PutUint32(record[:], uint32(payload))
	return record
}

// DecodeForward decodes a forward-channel record.
func DecodeForward(record [ForwardRecordSize]byte) int32 {
	return int32(binary.NativeEndian.Uint32(record[:]))
}

// Truncate converts value to int32 toward zero. NaN maps to 0 and values
// beyond the int32 range saturate, so a corrupted record can never
// produce an implementation-defined conversion.
func Truncate(value float64) int32 {
	switch {
	case math.IsNaN(value):
		return 0
	case value >= math.MaxInt32:
		return math.MaxInt32
	case value <= math.MinInt32:
		return math.MinInt32
	default:
		return int32(value)
	}
}
