// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"errors"
	"fmt"
)

var (
	// ErrNullPointer matches *NullPointerError.
	ErrNullPointer = errors.New("memory: null pointer in chain")

	// ErrOutOfRange matches *OutOfRangeError.
	ErrOutOfRange = errors.New("memory: pointer out of range")
)

// Chain is a static base address followed by the byte offsets applied
// after each dereference.
type Chain struct {
	Base    uintptr
	Offsets []int64
}

// NullPointerError reports a null cursor before applying Offsets[Index].
type NullPointerError struct {
	Index int
}

func (e *NullPointerError) Error() string {
	return fmt.Sprintf("memory: null pointer before offset %d", e.Index)
}

func (e *NullPointerError) Is(target error) bool { return target == ErrNullPointer }

// OutOfRangeError reports a dereferenced value outside [Floor, Ceiling]
// at hop Index.
type OutOfRangeError struct {
	Index   int
	Value   uint64
	Floor   uint64
	Ceiling uint64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("memory: pointer %#x at hop %d outside [%#x, %#x]", e.Value, e.Index, e.Floor, e.Ceiling)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// ReadError reports a failed read of the cursor at hop Index.
type ReadError struct {
	Index int
	Addr  uintptr
	Err   error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("memory: reading hop %d at %#x: %v", e.Index, e.Addr, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Resolver walks pointer chains through Reader.
type Resolver struct {
	Reader Reader

	// Floor is the lowest plausible pointer value, normally the module
	// base of the target process.
	Floor uint64

	// Ceiling is the highest plausible pointer value.
	Ceiling uint64
}

// Resolve walks chain and returns the final address. For each offset the
// cursor is dereferenced, the value is range-checked, and the offset is
// added to the value. The result is the address of the structure the
// chain leads to; it is not itself dereferenced.
func (r *Resolver) Resolve(chain Chain) (uintptr, error) {
	cursor := chain.Base
	for index, offset := range chain.Offsets {
		if cursor == 0 {
			return 0, &NullPointerError{Index: index}
		}
		value, err := ReadUint64(r.Reader, cursor)
		if err != nil {
			return 0, &ReadError{Index: index, Addr: cursor, Err: err}
		}
		if value < r.Floor || value > r.Ceiling {
			return 0, &OutOfRangeError{Index: index, Value: value, Floor: r.Floor, Ceiling: r.Ceiling}
		}
		cursor = uintptr(value) + uintptr(offset)
	}
	return cursor, nil
}
