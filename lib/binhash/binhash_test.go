// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zeebo/blake3"
)

func writeModule(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rivals_rwinner.dll")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestHashFile(t *testing.T) {
	large := make([]byte, 256*1024)
	for i := range large {
		large[i] = byte(i % 251)
	}

	tests := []struct {
		name    string
		content []byte
	}{
		{"small", []byte("MZ agent module")},
		{"empty", nil},
		// Larger than any single read buffer.
		{"large", large},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := HashFile(writeModule(t, test.content))
			if err != nil {
				t.Fatalf("HashFile: %v", err)
			}
			if want := blake3.Sum256(test.content); got != want {
				t.Errorf("HashFile = %x, want %x", got, want)
			}
		})
	}
}

func TestHashFileEmptyKnownDigest(t *testing.T) {
	got, err := HashFile(writeModule(t, nil))
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	const want = "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"
	if formatted := FormatDigest(got); formatted != want {
		t.Errorf("FormatDigest(HashFile(empty)) = %s, want %s", formatted, want)
	}
}

func TestHashFileNonexistent(t *testing.T) {
	if _, err := HashFile(filepath.Join(t.TempDir(), "missing.dll")); err == nil {
		t.Fatal("HashFile should fail for a nonexistent file")
	}
}
