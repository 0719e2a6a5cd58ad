// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hook

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/arch/x86/x86asm"
)

// absoluteJumpSize is the length of "jmp qword ptr [rip+0]" followed by
// its 8-byte destination.
const absoluteJumpSize = 14

// maxPrologue bounds how much of the target is read when choosing the
// instructions to relocate. No x86 instruction is longer than 15 bytes.
const maxPrologue = absoluteJumpSize + 15

var (
	// ErrRelativeInstruction is returned when an instruction that would
	// be overwritten addresses memory relative to its own location and
	// therefore cannot run from the gate.
	ErrRelativeInstruction = errors.New("hook: relative instruction in prologue")

	// ErrPrologueTooShort is returned when the target returns before
	// enough bytes are available for the entry patch.
	ErrPrologueTooShort = errors.New("hook: function too short to patch")
)

// absoluteJump encodes an indirect jump to destination that does not
// depend on where it is placed.
func absoluteJump(destination uintptr) []byte {
	code := make([]byte, absoluteJumpSize)
	code[0], code[1] = 0xFF, 0x25 // jmp [rip+0]
	binary.LittleEndian.PutUint64(code[6:], uint64(destination))
	return code
}

// stealLength decodes 64-bit instructions from the start of code and
// returns the length of the shortest whole-instruction prefix that covers
// an absolute jump. Every instruction in that prefix must be safe to
// execute at a different address.
func stealLength(code []byte) (int, error) {
	length := 0
	for length < absoluteJumpSize {
		if length >= len(code) {
			return 0, fmt.Errorf("hook: prologue truncated after %d bytes", length)
		}
		instruction, err := x86asm.Decode(code[length:], 64)
		if err != nil {
			return 0, fmt.Errorf("hook: decoding prologue at +%d: %w", length, err)
		}
		if err := checkRelocatable(instruction); err != nil {
			return 0, fmt.Errorf("%w: %v at +%d", err, instruction, length)
		}
		length += instruction.Len
		if isTerminal(instruction.Op) && length < absoluteJumpSize {
			return 0, ErrPrologueTooShort
		}
	}
	return length, nil
}

func checkRelocatable(instruction x86asm.Inst) error {
	for _, argument := range instruction.Args {
		if argument == nil {
			break
		}
		switch value := argument.(type) {
		case x86asm.Rel:
			return ErrRelativeInstruction
		case x86asm.Mem:
			if value.Base == x86asm.RIP {
				return ErrRelativeInstruction
			}
		}
	}
	return nil
}

func isTerminal(op x86asm.Op) bool {
	switch op {
	case x86asm.RET, x86asm.LRET, x86asm.JMP, x86asm.INT, x86asm.UD2:
		return true
	}
	return false
}
