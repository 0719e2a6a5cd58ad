// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package endpoint resolves the three TCP endpoints the host and the
// agent agree on: the data channel, the debug channel, and the optional
// forward connection to a downstream consumer.
//
// Endpoints come from an INI file (conventionally config.ini beside the
// executable) with one section per endpoint:
//
//	[internal_data]
//	tcp_ip   = 127.0.0.1
//	tcp_port = 4555
//
//	[internal_debug]
//	tcp_ip   = 127.0.0.1
//	tcp_port = 4556
//
//	[conn]
//	tcp_ip   = 127.0.0.1
//	tcp_port = 5005
//
// [Load] writes this default file when none exists, so a first run
// always succeeds. Keys missing from an existing file take the default
// value; a file that does not parse, or a port that is not a number in
// 0-65535, is an error. Port 0 requests an ephemeral port and is only
// meaningful for listeners.
//
// The resolved [Set] is immutable. Callers load it once at process start
// and pass it by value to the components that need it.
package endpoint
