// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"bias-scan/internal/config"
	"bias-scan/internal/detector"
	"bias-scan/internal/resilience"
	"bias-scan/internal/suppressions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu       sync.Mutex
	analyses []string
	errors   []string
}

func (r *countingRecorder) RecordAnalysis(source string, _ time.Duration, _ detector.TextAnalysis) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses = append(r.analyses, source)
}

func (r *countingRecorder) RecordError(errorType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, errorType)
}

func newTestScanner(t *testing.T, opts ...ScannerOption) *Scanner {
	t.Helper()
	eng, err := BuildEngine(config.Default().Defaults)
	require.NoError(t, err)
	return NewScanner(eng, nil, opts...)
}

func TestBuildEngine(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(d *config.Defaults)
		wantType resilience.ErrorType
	}{
		{name: "defaults", mutate: func(d *config.Defaults) {}},
		{name: "sentence mode", mutate: func(d *config.Defaults) { d.ClassificationMode = "sentence" }},
		{
			name:     "unknown mode",
			mutate:   func(d *config.Defaults) { d.ClassificationMode = "paragraph" },
			wantType: resilience.ErrorTypeInvalidInput,
		},
		{
			name:     "missing patterns file",
			mutate:   func(d *config.Defaults) { d.PatternsFile = filepath.Join(t.TempDir(), "none.yaml") },
			wantType: resilience.ErrorTypePatternCompilation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := config.Default().Defaults
			tt.mutate(&d)
			eng, err := BuildEngine(d)
			if tt.wantType != "" {
				require.Error(t, err)
				assert.True(t, resilience.IsType(err, tt.wantType), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, eng)
		})
	}
}

func TestScanText(t *testing.T) {
	rec := &countingRecorder{}
	s := newTestScanner(t, WithRecorders(rec))

	report := s.ScanText("", "Everyone agrees that this is absolutely stupid.")
	assert.Equal(t, "<text>", report.Source)
	assert.Equal(t, "text", report.SourceType)
	assert.True(t, report.Analysis.HasCategory(detector.Groupthink))
	assert.True(t, report.Analysis.HasCategory(detector.ToxicLanguage))
	assert.Equal(t, []string{"text"}, rec.analyses)
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memo.txt")
	require.NoError(t, os.WriteFile(path, []byte("Everyone agrees with the plan.\n\nNobody disagrees."), 0o600))

	rec := &countingRecorder{}
	s := newTestScanner(t, WithRecorders(rec))

	report, err := s.ScanFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, report.Source)
	assert.Equal(t, "plaintext", report.SourceType)
	assert.Equal(t, 2, report.Metadata["paragraphs"])
	assert.True(t, report.Analysis.HasCategory(detector.Groupthink))

	_, err = s.ScanFile(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.Equal(t, []string{"plaintext"}, rec.analyses)
	assert.Equal(t, []string{"not_found"}, rec.errors)
}

func TestScanWithSuppressions(t *testing.T) {
	sm := suppressions.NewSuppressionManager(filepath.Join(t.TempDir(), "s.yaml"))
	_, err := sm.AddSuppression(suppressions.AddOptions{
		Category:   detector.Groupthink,
		SourceGlob: "quotes.txt",
		Reason:     "quoted survey answer",
	})
	require.NoError(t, err)

	s := newTestScanner(t, WithSuppressions(sm))
	text := "Everyone agrees that this is absolutely stupid."

	engineOnly := s.Engine().Analyze(text)
	report := s.ScanText("quotes.txt", text)

	assert.False(t, report.Analysis.HasCategory(detector.Groupthink))
	assert.True(t, report.Analysis.HasCategory(detector.ToxicLanguage))
	require.Len(t, report.SuppressedFindings, 1)
	assert.Equal(t, detector.Groupthink, report.SuppressedFindings[0].Finding.Category)

	// Engine output is untouched by suppression
	assert.Equal(t, engineOnly.ToxicityScore, report.Analysis.ToxicityScore)
	assert.Equal(t, engineOnly.OverallRisk, report.Analysis.OverallRisk)
	assert.True(t, engineOnly.HasCategory(detector.Groupthink))

	other := s.ScanText("other.txt", text)
	assert.True(t, other.Analysis.HasCategory(detector.Groupthink))
}

func TestExitCode(t *testing.T) {
	withSeverity := func(sev detector.Severity) detector.Report {
		return detector.Report{Analysis: detector.TextAnalysis{
			Findings: []detector.BiasFinding{{Category: detector.Anchoring, Severity: sev}},
		}}
	}

	tests := []struct {
		name    string
		reports []detector.Report
		failOn  detector.Severity
		want    int
	}{
		{"no reports", nil, detector.SeverityHigh, ExitClean},
		{"below threshold", []detector.Report{withSeverity(detector.SeverityMedium)}, detector.SeverityHigh, ExitClean},
		{"at threshold", []detector.Report{withSeverity(detector.SeverityMedium)}, detector.SeverityMedium, ExitFindings},
		{"any report over", []detector.Report{{}, withSeverity(detector.SeverityHigh)}, detector.SeverityLow, ExitFindings},
		{"disabled", []detector.Report{withSeverity(detector.SeverityHigh)}, detector.SeverityNone, ExitClean},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.reports, tt.failOn))
		})
	}
}
