// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package host runs one session of the controller side: find the game,
// open the channels, inject the agent, relay until the agent goes away,
// and eject it.
//
// [Controller.Run] is strictly sequential up to the point where both
// agent connections are accepted. From there two goroutines each drain
// one stream: the debug relay copies text to Output, the data relay
// logs each outcome and forwards it when a forward connection exists.
// The session ends when both streams have closed, which happens when
// the game exits or the agent is detached. There is no other
// cancellation once the session is live.
package host
