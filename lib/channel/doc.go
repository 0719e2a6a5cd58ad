// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package channel carries observations from the agent to the host and
// from the host to a downstream consumer.
//
// A session has two agent-to-host TCP streams and an optional third
// host-to-downstream stream:
//
//   - debug: the agent's log text, copied verbatim to the host's
//     output by [RelayDebug].
//   - data: fixed 8-byte outcome records (see package event), decoded
//     by [RelayData].
//   - forward: 4-byte records the host writes through a [Forwarder]
//     when a downstream consumer accepted a connection at startup.
//
// Ordering is part of the contract. The host binds debug then data
// ([Listen]) before the agent is loaded, and accepts debug then data
// ([Listeners.Accept]). The agent connects data then debug ([Dial])
// before it installs its hook, so no record is produced before the host
// can read it. Nothing here retries: a failed bind or dial is returned
// to the caller, which decides whether it is fatal.
package channel
