// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
)

// Reader reads bytes from an address space.
type Reader interface {
	// ReadAt fills p with the bytes starting at addr. It either fills
	// all of p or returns an error.
	ReadAt(p []byte, addr uintptr) error
}

// ReadUint64 reads a native-endian 64-bit word at addr.
func ReadUint64(reader Reader, addr uintptr) (uint64, error) {
	var word [8]byte
	if err := reader.ReadAt(word[:], addr); err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint64(word[:]), nil
}

// RecordSize is the size of a [Record] in the target's memory.
const RecordSize = 16

// Record is the game's variable cell: a double followed by two 32-bit
// fields. Only Value is used, but the layout fixes the record's size and
// therefore where neighbouring cells start.
type Record struct {
	Value float64
	Flags int32
	Kind  int32
}

// ReadRecord decodes the Record at addr.
func ReadRecord(reader Reader, addr uintptr) (Record, error) {
	var raw [RecordSize]byte
	if err := reader.ReadAt(raw[:], addr); err != nil {
		return Record{}, err
	}
	return Record{
		Value: math.Float64frombits(binary.NativeEndian.Uint64(raw[0:8])),
		Flags: int32(binary.NativeEndian.Uint32(raw[8:12])),
		Kind:  int32(binary.NativeEndian.Uint32(raw[12:16])),
	}, nil
}

// FaultError reports a read of an address that is not mapped.
type FaultError struct {
	Addr uintptr
	Size int
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("memory: %d bytes at %#x not mapped", e.Size, e.Addr)
}

// Image is a sparse byte-addressed address space. Only written bytes are
// mapped; reading any unwritten byte fails with *FaultError. Image is
// safe for concurrent use.
type Image struct {
	mu    sync.RWMutex
	bytes map[uintptr]byte
}

// NewImage returns an empty Image.
func NewImage() *Image {
	return &Image{bytes: make(map[uintptr]byte)}
}

// Write maps data at addr.
func (m *Image) Write(addr uintptr, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range data {
		m.bytes[addr+uintptr(i)] = b
	}
}

// PutUint64 maps a native-endian 64-bit word at addr.
func (m *Image) PutUint64(addr uintptr, value uint64) {
	var word [8]byte
	binary.NativeEndian.PutUint64(word[:], value)
	m.Write(addr, word[:])
}

// PutRecord maps record at addr.
func (m *Image) PutRecord(addr uintptr, record Record) {
	var raw [RecordSize]byte
	binary.NativeEndian.PutUint64(raw[0:8], math.Float64bits(record.Value))
	binary.NativeEndian.PutUint32(raw[8:12], uint32(record.Flags))
	binary.NativeEndian.PutUint32(raw[12:16], uint32(record.Kind))
	m.Write(addr, raw[:])
}

// ReadAt implements [Reader].
func (m *Image) ReadAt(p []byte, addr uintptr) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range p {
		b, ok := m.bytes[addr+uintptr(i)]
		if !ok {
			return &FaultError{Addr: addr, Size: len(p)}
		}
		p[i] = b
	}
	return nil
}
