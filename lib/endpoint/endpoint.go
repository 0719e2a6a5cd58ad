// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package endpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/ini.v1"
)

// FileName is the conventional name of the endpoint file.
const FileName = "config.ini"

// Section names and keys in the endpoint file.
const (
	SectionData    = "internal_data"
	SectionDebug   = "internal_debug"
	SectionForward = "conn"

	keyHost = "tcp_ip"
	keyPort = "tcp_port"
)

// Endpoint is a TCP host and port.
type Endpoint struct {
	Host string
	Port uint16
}

// Address returns the endpoint in "host:port" form for net.Dial and
// net.Listen.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port)))
}

func (e Endpoint) String() string {
	return e.Address()
}

// Set holds the three endpoints.
type Set struct {
	// Data carries 8-byte outcome records from agent to host.
	Data Endpoint

	// Debug carries the agent's log text to the host.
	Debug Endpoint

	// Forward is where the host relays outcomes as 4-byte records.
	Forward Endpoint
}

// Default returns the endpoints written to a freshly created file.
func Default() Set {
	return Set{
		Data:    Endpoint{Host: "127.0.0.1", Port: 4555},
		Debug:   Endpoint{Host: "127.0.0.1", Port: 4556},
		Forward: Endpoint{Host: "127.0.0.1", Port: 5005},
	}
}

// Load reads the endpoint file at path, creating it with [Default]
// values first if it does not exist.
func Load(path string) (Set, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := WriteDefault(path); err != nil {
			return Set{}, err
		}
	} else if err != nil {
		return Set{}, fmt.Errorf("checking endpoint file %s: %w", path, err)
	}

	file, err := ini.Load(path)
	if err != nil {
		return Set{}, fmt.Errorf("parsing endpoint file %s: %w", path, err)
	}
	set, err := fromFile(file)
	if err != nil {
		return Set{}, fmt.Errorf("endpoint file %s: %w", path, err)
	}
	return set, nil
}

// Parse reads endpoints from INI content. Missing sections and keys
// take their default values.
func Parse(data []byte) (Set, error) {
	file, err := ini.Load(data)
	if err != nil {
		return Set{}, fmt.Errorf("parsing endpoints: %w", err)
	}
	return fromFile(file)
}

func fromFile(file *ini.File) (Set, error) {
	defaults := Default()
	var errs []error

	data, err := readSection(file, SectionData, defaults.Data)
	errs = append(errs, err)
	debug, err := readSection(file, SectionDebug, defaults.Debug)
	errs = append(errs, err)
	forward, err := readSection(file, SectionForward, defaults.Forward)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return Set{}, err
	}
	return Set{Data: data, Debug: debug, Forward: forward}, nil
}

func readSection(file *ini.File, name string, fallback Endpoint) (Endpoint, error) {
	section, err := file.GetSection(name)
	if err != nil {
		return fallback, nil
	}

	result := fallback
	if section.HasKey(keyHost) {
		if host := section.Key(keyHost).String(); host != "" {
			result.Host = host
		}
	}
	if section.HasKey(keyPort) {
		raw := section.Key(keyPort).String()
		port, err := strconv.ParseUint(raw, 10, 16)
		if err != nil {
			return Endpoint{}, fmt.Errorf("%s.%s: invalid port %q", name, keyPort, raw)
		}
		result.Port = uint16(port)
	}
	return result, nil
}

// WriteDefault writes the default endpoint file to path. The file is
// written to a temporary name in the same directory and renamed into
// place, so a concurrent reader never sees a partial file.
func WriteDefault(path string) error {
	file := ini.Empty()
	defaults := Default()
	for _, entry := range []struct {
		section  string
		endpoint Endpoint
	}{
		{SectionData, defaults.Data},
		{SectionDebug, defaults.Debug},
		{SectionForward, defaults.Forward},
	} {
		section, err := file.NewSection(entry.section)
		if err != nil {
			return fmt.Errorf("building default endpoint file: %w", err)
		}
		section.Key(keyHost).SetValue(entry.endpoint.Host)
		section.Key(keyPort).SetValue(strconv.Itoa(int(entry.endpoint.Port)))
	}

	directory := filepath.Dir(path)
	temporary, err := os.CreateTemp(directory, ".config-*.ini")
	if err != nil {
		return fmt.Errorf("creating default endpoint file: %w", err)
	}
	temporaryPath := temporary.Name()
	defer os.Remove(temporaryPath)

	if _, err := file.WriteTo(temporary); err != nil {
		temporary.Close()
		return fmt.Errorf("writing default endpoint file: %w", err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("closing default endpoint file: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("installing default endpoint file %s: %w", path, err)
	}
	return nil
}
