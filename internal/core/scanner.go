// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"errors"
	"time"

	"bias-scan/internal/detector"
	"bias-scan/internal/engine"
	"bias-scan/internal/observability"
	"bias-scan/internal/resilience"
	"bias-scan/internal/router"
	"bias-scan/internal/suppressions"
)

// Exit codes shared by the CLIs
const (
	ExitClean    = 0
	ExitFindings = 1
	ExitError    = 2
)

// Recorder receives every completed analysis. performance.Stats and
// monitoring.Metrics both implement it.
type Recorder interface {
	RecordAnalysis(source string, d time.Duration, a detector.TextAnalysis)
	RecordError(errorType string)
}

// Scanner performs the scanning logic shared by the CLI and the web server
type Scanner struct {
	engine       *engine.Engine
	router       *router.FileRouter
	suppressions *suppressions.SuppressionManager
	observer     *observability.StandardObserver
	recorders    []Recorder
}

// ScannerOption configures a Scanner
type ScannerOption func(*Scanner)

// WithSuppressions applies a suppression manager to every report
func WithSuppressions(sm *suppressions.SuppressionManager) ScannerOption {
	return func(s *Scanner) {
		s.suppressions = sm
	}
}

// WithObserver sets the observability component
func WithObserver(observer *observability.StandardObserver) ScannerOption {
	return func(s *Scanner) {
		s.observer = observer
	}
}

// WithRecorders adds analysis recorders
func WithRecorders(recorders ...Recorder) ScannerOption {
	return func(s *Scanner) {
		s.recorders = append(s.recorders, recorders...)
	}
}

// NewScanner creates a scanner. A nil router gets the default preprocessors.
func NewScanner(eng *engine.Engine, fileRouter *router.FileRouter, opts ...ScannerOption) *Scanner {
	s := &Scanner{engine: eng, router: fileRouter}
	for _, opt := range opts {
		opt(s)
	}
	if s.router == nil {
		s.router = router.NewFileRouter(nil, s.observer)
	}
	return s
}

// AddRecorders attaches recorders. Call it before scanning starts.
func (s *Scanner) AddRecorders(recorders ...Recorder) {
	s.recorders = append(s.recorders, recorders...)
}

// Engine returns the analysis engine
func (s *Scanner) Engine() *engine.Engine {
	return s.engine
}

// Observer returns the configured observer, which may be nil
func (s *Scanner) Observer() *observability.StandardObserver {
	return s.observer
}

// Router returns the file router
func (s *Scanner) Router() *router.FileRouter {
	return s.router
}

// ScanText analyses text that did not come from a file
func (s *Scanner) ScanText(source, text string) detector.Report {
	if source == "" {
		source = "<text>"
	}
	var finishTiming func(bool, map[string]interface{})
	if s.observer != nil {
		finishTiming = s.observer.StartTiming("scanner", "scan_text", source)
	}
	start := time.Now()

	report := detector.Report{
		Source:     source,
		SourceType: "text",
		Analysis:   s.engine.Analyze(text),
	}
	s.record("text", time.Since(start), report.Analysis)
	s.applySuppressions(&report)

	if finishTiming != nil {
		finishTiming(true, reportMetadata(report))
	}
	return report
}

// ScanFile extracts a file's text and analyses it
func (s *Scanner) ScanFile(filePath string) (detector.Report, error) {
	var finishTiming func(bool, map[string]interface{})
	if s.observer != nil {
		finishTiming = s.observer.StartTiming("scanner", "scan_file", filePath)
	}
	start := time.Now()

	content, err := s.router.ProcessFile(filePath)
	if err != nil {
		s.recordError(err)
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		return detector.Report{Source: filePath}, err
	}

	report := detector.Report{
		Source:     filePath,
		SourceType: content.ProcessorType,
		Metadata: map[string]any{
			"filename":   content.Filename,
			"format":     content.Format,
			"word_count": content.WordCount,
			"char_count": content.CharCount,
			"line_count": content.LineCount,
			"paragraphs": content.Paragraphs,
		},
		Analysis: s.engine.Analyze(content.Text),
	}
	if content.PageCount > 0 {
		report.Metadata["page_count"] = content.PageCount
	}
	for k, v := range content.Metadata {
		if _, taken := report.Metadata[k]; !taken {
			report.Metadata[k] = v
		}
	}

	s.record(content.ProcessorType, time.Since(start), report.Analysis)
	s.applySuppressions(&report)

	if finishTiming != nil {
		finishTiming(true, reportMetadata(report))
	}
	return report, nil
}

func (s *Scanner) applySuppressions(report *detector.Report) {
	if s.suppressions != nil {
		s.suppressions.Apply(report)
	}
}

func (s *Scanner) record(source string, d time.Duration, a detector.TextAnalysis) {
	for _, r := range s.recorders {
		r.RecordAnalysis(source, d, a)
	}
}

func (s *Scanner) recordError(err error) {
	errType := string(resilience.ErrorTypeInternal)
	var ce *resilience.ClassifiedError
	if errors.As(err, &ce) {
		errType = string(ce.Type)
	}
	for _, r := range s.recorders {
		r.RecordError(errType)
	}
}

func reportMetadata(report detector.Report) map[string]interface{} {
	return map[string]interface{}{
		"finding_count":    len(report.Analysis.Findings),
		"suppressed_count": report.SuppressedCount(),
		"overall_risk":     report.Analysis.OverallRisk.String(),
	}
}

// ExitCode returns ExitFindings when any active finding is at or above
// failOn. SeverityNone disables failing on findings.
func ExitCode(reports []detector.Report, failOn detector.Severity) int {
	if failOn == detector.SeverityNone {
		return ExitClean
	}
	for _, report := range reports {
		if report.Analysis.MaxSeverity() >= failOn {
			return ExitFindings
		}
	}
	return ExitClean
}
