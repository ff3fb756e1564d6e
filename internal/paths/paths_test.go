// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestGetConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BIAS_SCAN_CONFIG_DIR", dir)

	if got := GetConfigDir(); got != dir {
		t.Errorf("GetConfigDir() = %q, want %q", got, dir)
	}
	if got := GetConfigFile(); got != filepath.Join(dir, "config.yaml") {
		t.Errorf("GetConfigFile() = %q", got)
	}
	if got := GetSuppressionsFile(); got != filepath.Join(dir, "suppressions.yaml") {
		t.Errorf("GetSuppressionsFile() = %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/notes.txt", filepath.Join(home, "notes.txt")},
		{"relative/file", "relative/file"},
		{"~other", "~other"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ExpandHome(tt.in); got != tt.want {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	if err := ValidatePath(""); err != nil {
		t.Errorf("empty path should be valid: %v", err)
	}
	if err := ValidatePath("reports/out.json"); err != nil {
		t.Errorf("plain path should be valid: %v", err)
	}
	err := ValidatePath("bad\x00path")
	if err == nil {
		t.Fatal("expected error for null byte")
	}
	if _, ok := err.(*PathValidationError); !ok {
		t.Errorf("expected *PathValidationError, got %T", err)
	}
}
