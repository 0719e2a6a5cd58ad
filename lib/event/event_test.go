// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"math"
	"testing"
)

func TestDataRoundTripAndTruncation(t *testing.T) {
	tests := []struct {
		value float64
		want  int32
	}{
		{0.0, 0},
		{1.0, 1},
		{2.0, 2},
		{-1.0, -1},
		{3.999, 3},
	}
	for _, test := range tests {
		record := EncodeData(test.value)
		decoded := DecodeData(record)
		if decoded != test.value {
			t.Errorf("DecodeData(EncodeData(%v)) = %v", test.value, decoded)
		}
		if got := Truncate(decoded); got != test.want {
			t.Errorf("Truncate(%v) = %d, want %d", decoded, got, test.want)
		}
	}
}

func TestTruncateTowardZero(t *testing.T) {
	if got := Truncate(-3.999); got != -3 {
		t.Errorf("Truncate(-3.999) = %d, want -3", got)
	}
	if got := Truncate(math.NaN()); got != 0 {
		t.Errorf("Truncate(NaN) = %d, want 0", got)
	}
	if got := Truncate(1e12); got != math.MaxInt32 {
		t.Errorf("Truncate(1e12) = %d, want MaxInt32", got)
	}
	if got := Truncate(-1e12); got != math.MinInt32 {
		t.Errorf("Truncate(-1e12) = %d, want MinInt32", got)
	}
}

func TestForwardRoundTrip(t *testing.T) {
	for _, payload := range []int32{0, 1, 2, -1, math.MaxInt32, math.MinInt32} {
		if got := DecodeForward(EncodeForward(payload)); got != payload {
			t.Errorf("DecodeForward(EncodeForward(%d)) = %d", payload, got)
		}
	}
}

func TestFromValue(t *testing.T) {
	got := FromValue(2.0)
	if got.Kind != Outcome || got.Payload != 2 {
		t.Errorf("FromValue(2.0) = %+v", got)
	}
	if got.Kind.String() != "outcome" {
		t.Errorf("Kind.String() = %q", got.Kind.String())
	}
	if Kind(9).String() != "kind(9)" {
		t.Errorf("unknown kind string = %q", Kind(9).String())
	}
}
