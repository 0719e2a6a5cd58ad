// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"net"
	"testing"

	"github.com/bureau-foundation/rwinner/lib/endpoint"
)

// Listen opens a TCP listener on an ephemeral loopback port. It is
// closed when the test completes.
func Listen(t *testing.T) net.Listener {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening on loopback: %v", err)
	}
	t.Cleanup(func() { listener.Close() })
	return listener
}

// EndpointOf returns the endpoint a peer dials to reach listener.
func EndpointOf(t *testing.T, listener net.Listener) endpoint.Endpoint {
	t.Helper()
	address, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		t.Fatalf("listener address %v is not TCP", listener.Addr())
	}
	return endpoint.Endpoint{Host: address.IP.String(), Port: uint16(address.Port)}
}

// ClosedEndpoint returns a loopback endpoint with nothing listening on
// it: the port was bound and released, so connecting is refused.
func ClosedEndpoint(t *testing.T) endpoint.Endpoint {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening on loopback: %v", err)
	}
	result := EndpointOf(t, listener)
	listener.Close()
	return result
}

// Ephemeral returns a loopback endpoint with port 0, for components
// that bind their own listeners.
func Ephemeral() endpoint.Endpoint {
	return endpoint.Endpoint{Host: "127.0.0.1", Port: 0}
}
