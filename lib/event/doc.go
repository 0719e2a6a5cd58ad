// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package event defines the outcome event and its two wire encodings.
//
// The agent writes one 8-byte record per observed outcome to the data
// channel: the native-endian IEEE-754 encoding of the float64 the game
// assigned. The host decodes each record, truncates it toward zero to an
// int32 ([Truncate]) and, when a downstream consumer is connected,
// re-encodes the integer as a 4-byte native-endian record on the forward
// channel.
//
// Both encodings are fixed-size with no framing, versioning, or
// checksums. A reader that receives a short record has lost the stream.
package event
