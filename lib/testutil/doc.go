// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for rwinner packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so a test that would otherwise hang on a broken channel fails
// with a message instead.
//
// [Listen], [EndpointOf], and [ClosedEndpoint] set up loopback TCP
// fixtures for exercising the channel bridge: a listener on an ephemeral
// port (closed when the test ends), the endpoint.Endpoint a peer dials
// to reach it, and an endpoint nothing is listening on.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
