// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package layout describes where things live inside the target game
// build: the process and agent module names, the offset of the
// intercepted setter function from the module base, and the pointer
// chain that leads from a static slot in the module to the "player won"
// variable.
//
// The built-in [Default] names the game process and the agent module
// but carries no addresses: the setter offset, the pointer base, and
// the offset chain depend on the exact game build and must come from a
// layout.yaml file beside the executable. Fields absent from the file
// keep their defaults. Unknown fields are rejected so a typo cannot
// silently leave an address unset.
//
// [Layout.ValidateTarget] checks what the host needs (names only);
// [Layout.Validate] checks everything the agent needs to hook. An agent
// started without addresses fails before touching game code.
package layout

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the conventional name of the layout override file.
const FileName = "layout.yaml"

// MaxUserAddress is the highest address a 64-bit user-space pointer may
// hold.
const MaxUserAddress = 0x7FFFFFFF_FFFFFFFF

// Layout is the target-specific address map.
type Layout struct {
	// ProcessName is the executable image name of the target process.
	ProcessName string `yaml:"process_name"`

	// AgentModule is the agent module's file name, resolved beside the
	// host executable.
	AgentModule string `yaml:"agent_module"`

	// FunctionOffset is the offset of the intercepted variable setter
	// from the module base.
	FunctionOffset uint64 `yaml:"function_offset"`

	// PointerBase is the offset of the static slot the pointer chain
	// starts from.
	PointerBase uint64 `yaml:"pointer_base"`

	// Offsets are the signed byte offsets applied after each
	// dereference of the chain.
	Offsets []int64 `yaml:"offsets"`

	// Ceiling is the highest plausible pointer value. Every hop must
	// lie between the module base and Ceiling.
	Ceiling uint64 `yaml:"ceiling"`
}

// Default returns the build-independent part of the layout. The
// address fields are zero and fail [Layout.Validate] until a layout file
// supplies them.
func Default() Layout {
	return Layout{
		ProcessName: "RivalsofAether.exe",
		AgentModule: "rivals_rwinner.dll",
		Ceiling:     MaxUserAddress,
	}
}

// Load reads the override file at path on top of [Default]. A missing
// file is not an error; the result is [Default], which the caller's
// validation rejects if it needs addresses.
func Load(path string) (Layout, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Layout{}, fmt.Errorf("opening layout %s: %w", path, err)
	}
	defer file.Close()

	layout, err := Decode(file)
	if err != nil {
		return Layout{}, fmt.Errorf("layout %s: %w", path, err)
	}
	return layout, nil
}

// Decode reads YAML overrides from reader on top of [Default]. It does
// not validate; the host and the agent need different fields.
func Decode(reader io.Reader) (Layout, error) {
	layout := Default()

	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(&layout); err != nil && !errors.Is(err, io.EOF) {
		return Layout{}, fmt.Errorf("decoding: %w", err)
	}
	return layout, nil
}

// ValidateTarget checks the fields the host uses to find the game and
// the agent module.
func (l Layout) ValidateTarget() error {
	return errors.Join(l.targetErrors()...)
}

func (l Layout) targetErrors() []error {
	var errs []error
	if l.ProcessName == "" {
		errs = append(errs, fmt.Errorf("process_name is required"))
	}
	if l.AgentModule == "" {
		errs = append(errs, fmt.Errorf("agent_module is required"))
	}
	return errs
}

// Validate checks that every field needed to hook and resolve is set.
func (l Layout) Validate() error {
	errs := l.targetErrors()
	if l.FunctionOffset == 0 {
		errs = append(errs, fmt.Errorf("function_offset is required (set it in %s)", FileName))
	}
	if l.PointerBase == 0 {
		errs = append(errs, fmt.Errorf("pointer_base is required (set it in %s)", FileName))
	}
	if len(l.Offsets) == 0 {
		errs = append(errs, fmt.Errorf("offsets must not be empty (set them in %s)", FileName))
	}
	if l.Ceiling == 0 {
		errs = append(errs, fmt.Errorf("ceiling is required"))
	}
	return errors.Join(errs...)
}
