// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultSuppressionsFile is the project-local suppression store
const DefaultSuppressionsFile = ".bias-scan-suppressions.yaml"

// GetConfigDir returns the bias-scan configuration directory
func GetConfigDir() string {
	// Check for explicit override first (works on all platforms)
	if dir := os.Getenv("BIAS_SCAN_CONFIG_DIR"); dir != "" {
		return dir
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "bias-scan")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".bias-scan"
	}
	return filepath.Join(home, ".bias-scan")
}

// GetConfigFile returns the path to the main config file
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// GetSuppressionsFile returns the path to the user-level suppressions file
func GetSuppressionsFile() string {
	return filepath.Join(GetConfigDir(), "suppressions.yaml")
}

// ExpandHome replaces a leading "~" with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// NormalizePath expands "~", environment variables and cleans the path
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(ExpandHome(os.ExpandEnv(path)))
}

// ValidatePath validates a path for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return nil // Empty path is valid
	}

	if runtime.GOOS == "windows" {
		return validateWindowsPath(path)
	}

	return validateUnixPath(path)
}

// validateWindowsPath validates a Windows path
func validateWindowsPath(path string) error {
	for i, char := range path {
		if strings.ContainsRune(`<>:"|?*`, char) {
			// Skip colon if it's part of a drive letter (position 1: C:)
			if char == ':' && i == 1 {
				continue
			}
			return &PathValidationError{
				Path:   path,
				Reason: "contains invalid character: " + string(char),
			}
		}
	}

	if len(path) > 32767 {
		return &PathValidationError{
			Path:   path,
			Reason: "path exceeds maximum length of 32,767 characters",
		}
	}

	return nil
}

// validateUnixPath validates a Unix path
func validateUnixPath(path string) error {
	// Main restriction is null bytes
	if strings.ContainsRune(path, 0) {
		return &PathValidationError{
			Path:   path,
			Reason: "contains null byte",
		}
	}

	return nil
}

// PathValidationError represents a path validation error
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Reason
}
