// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"errors"
	"testing"
)

const (
	testFloor   = 0x140000000
	testCeiling = 0x7FFFFFFF_FFFFFFFF
)

// chainImage builds a three-hop chain:
//
//	[base] -> 0x150000000, +0x10 -> [0x150000010] -> 0x160000000,
//	+0x20 -> [0x160000020] -> 0x170000000, +0x30 -> 0x170000030
func chainImage() (*Image, Chain) {
	image := NewImage()
	base := uintptr(testFloor + 0x1000)
	image.PutUint64(base, 0x150000000)
	image.PutUint64(0x150000010, 0x160000000)
	image.PutUint64(0x160000020, 0x170000000)
	return image, Chain{Base: base, Offsets: []int64{0x10, 0x20, 0x30}}
}

func newResolver(image *Image) *Resolver {
	return &Resolver{Reader: image, Floor: testFloor, Ceiling: testCeiling}
}

func TestResolve_ValidChain(t *testing.T) {
	image, chain := chainImage()
	got, err := newResolver(image).Resolve(chain)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != 0x170000030 {
		t.Errorf("Resolve = %#x, want 0x170000030", got)
	}
}

func TestResolve_NegativeOffset(t *testing.T) {
	image := NewImage()
	base := uintptr(testFloor + 0x1000)
	image.PutUint64(base, 0x150000100)
	image.PutUint64(0x1500000F0, 0x160000000)

	got, err := newResolver(image).Resolve(Chain{Base: base, Offsets: []int64{-0x10, 8}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != 0x160000008 {
		t.Errorf("Resolve = %#x, want 0x160000008", got)
	}
}

func TestResolve_EmptyChainReturnsBase(t *testing.T) {
	got, err := newResolver(NewImage()).Resolve(Chain{Base: 0x1234})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != 0x1234 {
		t.Errorf("Resolve = %#x, want 0x1234", got)
	}
}

func TestResolve_OutOfRange(t *testing.T) {
	tests := []struct {
		name      string
		value     uint64
		wantIndex int
	}{
		{"below floor", testFloor - 1, 1},
		{"above ceiling", 0x8000000000000000, 1},
		{"zero", 0, 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			image, chain := chainImage()
			image.PutUint64(0x150000010, test.value)

			_, err := newResolver(image).Resolve(chain)
			if !errors.Is(err, ErrOutOfRange) {
				t.Fatalf("Resolve error = %v, want ErrOutOfRange", err)
			}
			var rangeError *OutOfRangeError
			if !errors.As(err, &rangeError) {
				t.Fatalf("error %T is not *OutOfRangeError", err)
			}
			if rangeError.Index != test.wantIndex || rangeError.Value != test.value {
				t.Errorf("OutOfRangeError = %+v, want index %d value %#x", rangeError, test.wantIndex, test.value)
			}
		})
	}
}

// countingReader records every address read so tests can prove the walk
// stops at the first bad hop.
type countingReader struct {
	Reader
	addrs []uintptr
}

func (c *countingReader) ReadAt(p []byte, addr uintptr) error {
	c.addrs = append(c.addrs, addr)
	return c.Reader.ReadAt(p, addr)
}

func TestResolve_StopsAtFirstBadHop(t *testing.T) {
	image, chain := chainImage()
	image.PutUint64(chain.Base, 0x10)

	reader := &countingReader{Reader: image}
	resolver := &Resolver{Reader: reader, Floor: testFloor, Ceiling: testCeiling}
	if _, err := resolver.Resolve(chain); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Resolve error = %v, want ErrOutOfRange", err)
	}
	if len(reader.addrs) != 1 {
		t.Errorf("read %d addresses %#x, want only the base", len(reader.addrs), reader.addrs)
	}
}

func TestResolve_NullBase(t *testing.T) {
	_, err := newResolver(NewImage()).Resolve(Chain{Base: 0, Offsets: []int64{8}})
	if !errors.Is(err, ErrNullPointer) {
		t.Fatalf("Resolve error = %v, want ErrNullPointer", err)
	}
	var nullError *NullPointerError
	if !errors.As(err, &nullError) || nullError.Index != 0 {
		t.Errorf("error = %#v, want NullPointerError at index 0", err)
	}
}

func TestResolve_NullIntermediateCursor(t *testing.T) {
	// A value equal to the negated offset lands the cursor on zero.
	image := NewImage()
	base := uintptr(testFloor + 0x1000)
	image.PutUint64(base, testFloor)

	resolver := newResolver(image)
	_, err := resolver.Resolve(Chain{Base: base, Offsets: []int64{-testFloor, 8}})
	var nullError *NullPointerError
	if !errors.As(err, &nullError) || nullError.Index != 1 {
		t.Fatalf("Resolve error = %v, want NullPointerError at index 1", err)
	}
}

func TestResolve_UnmappedHop(t *testing.T) {
	image, chain := chainImage()
	image.PutUint64(0x150000010, 0x190000000) // in range, but nothing mapped there

	_, err := newResolver(image).Resolve(chain)
	var readError *ReadError
	if !errors.As(err, &readError) {
		t.Fatalf("Resolve error = %v, want *ReadError", err)
	}
	if readError.Index != 2 || readError.Addr != 0x190000020 {
		t.Errorf("ReadError = %+v, want index 2 at 0x190000020", readError)
	}
	var fault *FaultError
	if !errors.As(err, &fault) {
		t.Errorf("ReadError does not wrap *FaultError: %v", err)
	}
}
