// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil classifies the errors a stream relay sees when its
// peer goes away, so relays can tell a normal end of session from a
// failure worth logging.
package netutil
