// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bias-scan/internal/config"
	"bias-scan/internal/core"
	"bias-scan/internal/detector"
	"bias-scan/internal/observability"
	"bias-scan/internal/performance"
	"bias-scan/internal/resilience"
)

func TestParseFailOn(t *testing.T) {
	tests := []struct {
		value   string
		want    detector.Severity
		wantErr bool
	}{
		{"high", detector.SeverityHigh, false},
		{"Medium", detector.SeverityMedium, false},
		{"low", detector.SeverityLow, false},
		{"none", detector.SeverityNone, false},
		{"", detector.SeverityHigh, false},
		{"critical", detector.SeverityNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := parseFailOn(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveConfiguration(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		settings, err := resolveConfiguration(config.Default(), flagValues{})
		require.NoError(t, err)
		assert.Equal(t, "text", settings.Format)
		assert.Equal(t, "high", settings.FailOn)
	})

	t.Run("profile applied", func(t *testing.T) {
		settings, err := resolveConfiguration(config.Default(), flagValues{profileName: "ci"})
		require.NoError(t, err)
		assert.True(t, settings.NoColor)
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := resolveConfiguration(config.Default(), flagValues{profileName: "nope"})
		assert.ErrorContains(t, err, `profile "nope" not found`)
	})

	t.Run("format from config is validated", func(t *testing.T) {
		cfg := config.Default()
		cfg.Defaults.Format = "SARIF"
		_, err := resolveConfiguration(cfg, flagValues{})
		assert.ErrorContains(t, err, `unknown format "sarif"`)
	})

	t.Run("document format needs an output file", func(t *testing.T) {
		cfg := config.Default()
		cfg.Defaults.Format = "PDF"
		_, err := resolveConfiguration(cfg, flagValues{})
		assert.ErrorContains(t, err, "requires --output")

		settings, err := resolveConfiguration(cfg, flagValues{outputFile: "notes_bias-free.pdf"})
		require.NoError(t, err)
		assert.Equal(t, "pdf", settings.Format)
	})

	t.Run("fail-on from config is validated", func(t *testing.T) {
		cfg := config.Default()
		cfg.Defaults.FailOn = "sometimes"
		_, err := resolveConfiguration(cfg, flagValues{})
		assert.ErrorContains(t, err, "fail-on")
	})
}

func TestFilterForExit(t *testing.T) {
	reports := []detector.Report{{
		Source: "a.txt",
		Analysis: detector.TextAnalysis{Findings: []detector.BiasFinding{
			{Category: detector.ToxicLanguage, Severity: detector.SeverityHigh},
			{Category: detector.Groupthink, Severity: detector.SeverityMedium},
		}},
	}}

	all := filterForExit(reports, nil)
	assert.Len(t, all[0].Analysis.Findings, 2)

	onlyGroupthink := filterForExit(reports, []detector.Category{detector.Groupthink})
	require.Len(t, onlyGroupthink[0].Analysis.Findings, 1)
	assert.Equal(t, detector.SeverityMedium, onlyGroupthink[0].Analysis.MaxSeverity())

	// The input reports are left untouched
	assert.Len(t, reports[0].Analysis.Findings, 2)
}

func TestReadStdin(t *testing.T) {
	text, err := readStdin(strings.NewReader("everyone agrees"), 64)
	require.NoError(t, err)
	assert.Equal(t, "everyone agrees", text)

	_, err = readStdin(strings.NewReader(strings.Repeat("x", 65)), 64)
	require.Error(t, err)
	assert.True(t, resilience.IsType(err, resilience.ErrorTypeTooLarge))
}

func TestValidateWebModeFlags(t *testing.T) {
	tests := []struct {
		name    string
		flags   flagValues
		wantErr string
	}{
		{"plain", flagValues{webMode: true}, ""},
		{"custom port", flagValues{webMode: true, webPort: 9090}, ""},
		{"with file", flagValues{webMode: true, inputFile: "a.txt"}, "--file"},
		{"with text and output", flagValues{webMode: true, text: "x", outputFile: "o.json"}, "--text, --output"},
		{"bad port", flagValues{webMode: true, webPort: 70000}, "invalid port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateWebModeFlags(tt.flags)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestPrintStatsSummary(t *testing.T) {
	stats := performance.NewStats()
	stats.RecordError("not_found")

	var buf bytes.Buffer
	printStatsSummary(&buf, stats.Snapshot())
	assert.Contains(t, buf.String(), "Performance summary")
	assert.Contains(t, buf.String(), "errors: not_found=1")
}

func TestLogRuleHits(t *testing.T) {
	eng, err := core.BuildEngine(config.Default().Defaults)
	require.NoError(t, err)

	reports := []detector.Report{
		{Source: "memo.txt", Analysis: detector.TextAnalysis{InputText: "All women are emotional."}},
		{Source: "clean.txt", Analysis: detector.TextAnalysis{InputText: "Thanks for the review."}},
	}

	var buf bytes.Buffer
	logRuleHits(observability.NewDebugObserver(&buf), eng.Matcher(), reports)

	out := buf.String()
	assert.Contains(t, out, "rules: memo.txt: gender_stereotyping matched")
	assert.Contains(t, out, "base confidence")
	assert.Contains(t, out, "base severity")
	assert.NotContains(t, out, "clean.txt")
}
