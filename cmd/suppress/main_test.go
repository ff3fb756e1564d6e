// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bias-scan/internal/suppressions"
)

var ruleIDPattern = regexp.MustCompile(`SUP-[0-9A-F]{8}`)

func runCLI(t *testing.T, file string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"--suppression-file", file}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Lifecycle(t *testing.T) {
	file := filepath.Join(t.TempDir(), "suppressions.yaml")

	code, out, _ := runCLI(t, file, "list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "No suppression rules found.")

	code, out, stderr := runCLI(t, file, "add", "--category", "Gender-Bias", "--source", "docs/*.md",
		"--reason", "quoted survey answers", "--expires", "30d", "--created-by", "reviewer")
	require.Equal(t, 0, code, stderr)
	id := ruleIDPattern.FindString(out)
	require.NotEmpty(t, id)

	rules := suppressions.NewSuppressionManager(file).ListSuppressions()
	require.Len(t, rules, 1)
	assert.Equal(t, "gender_stereotyping", string(rules[0].Category))
	assert.Equal(t, "reviewer", rules[0].CreatedBy)
	assert.NotNil(t, rules[0].ExpiresAt)

	code, _, _ = runCLI(t, file, "disable", id)
	require.Equal(t, 0, code)
	assert.False(t, suppressions.NewSuppressionManager(file).ListSuppressions()[0].Enabled)

	code, _, _ = runCLI(t, file, "enable", id)
	require.Equal(t, 0, code)
	assert.True(t, suppressions.NewSuppressionManager(file).ListSuppressions()[0].Enabled)

	code, out, _ = runCLI(t, file, "list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Category: gender_stereotyping")
	assert.Contains(t, out, "Source: docs/*.md")
	assert.Contains(t, out, "Enabled: true")

	code, out, _ = runCLI(t, file, "cleanup")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Cleaned up 0 expired")

	code, _, _ = runCLI(t, file, "remove", id)
	require.Equal(t, 0, code)
	assert.Empty(t, suppressions.NewSuppressionManager(file).ListSuppressions())
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantStderr string
	}{
		{"no command", nil, "a command is required"},
		{"unknown command", []string{"purge"}, `unknown command "purge"`},
		{"add without reason", []string{"add", "--category", "groupthink"}, "a reason is required"},
		{"add unknown category", []string{"add", "--category", "made_up", "--reason", "x"}, "unknown category"},
		{"add bad expiry", []string{"add", "--reason", "x", "--expires", "soon"}, "invalid expiry"},
		{"add text without source", []string{"add", "--reason", "x", "--category", "groupthink", "--text", "we all agree"}, "needs both"},
		{"remove missing id", []string{"remove"}, "exactly one rule ID"},
		{"disable unknown id", []string{"disable", "SUP-00000000"}, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "suppressions.yaml")
			code, _, stderr := runCLI(t, file, tt.args...)
			assert.Equal(t, 2, code)
			assert.Contains(t, stderr, tt.wantStderr)
		})
	}
}
