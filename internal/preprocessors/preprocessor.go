// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bias-scan/internal/observability"
	"bias-scan/internal/resilience"
)

// DefaultMaxFileBytes is the upload and file size limit
const DefaultMaxFileBytes int64 = 10 << 20

// ProcessedContent represents content that has been processed by a preprocessor
type ProcessedContent struct {
	// Original file information
	OriginalPath string
	Filename     string

	// Extracted content
	Text string

	// Content metadata
	Format     string
	PageCount  int
	WordCount  int
	CharCount  int
	LineCount  int
	Paragraphs int

	// Processing information
	ProcessorType string

	// Additional metadata, e.g. EXIF fields or PDF version
	Metadata map[string]interface{}
}

// Preprocessor interface defines methods for preprocessing files
type Preprocessor interface {
	// CanProcess checks if this preprocessor can handle the given file
	CanProcess(filePath string) bool

	// Process extracts content from the file
	Process(filePath string) (*ProcessedContent, error)

	// GetName returns the name of this preprocessor
	GetName() string

	// GetSupportedExtensions returns the file extensions this preprocessor supports
	GetSupportedExtensions() []string

	// SetObserver sets the observability component
	SetObserver(observer *observability.StandardObserver)
}

// PreprocessorManager manages all available preprocessors
type PreprocessorManager struct {
	preprocessors []Preprocessor
	maxFileBytes  int64
	observer      *observability.StandardObserver
}

// NewPreprocessorManager creates a new preprocessor manager with a size limit.
// A non-positive limit selects DefaultMaxFileBytes.
func NewPreprocessorManager(maxFileBytes int64) *PreprocessorManager {
	if maxFileBytes <= 0 {
		maxFileBytes = DefaultMaxFileBytes
	}
	return &PreprocessorManager{
		preprocessors: make([]Preprocessor, 0),
		maxFileBytes:  maxFileBytes,
	}
}

// NewDefaultManager registers every built-in preprocessor. Order matters:
// the first preprocessor that accepts a file wins.
func NewDefaultManager(maxFileBytes int64, observer *observability.StandardObserver) *PreprocessorManager {
	pm := NewPreprocessorManager(maxFileBytes)
	pm.observer = observer
	for _, p := range []Preprocessor{
		NewPDFPreprocessor(),
		NewOfficePreprocessor(),
		NewImagePreprocessor(),
		NewPlainTextPreprocessor(),
	} {
		p.SetObserver(observer)
		pm.RegisterPreprocessor(p)
	}
	return pm
}

// RegisterPreprocessor adds a preprocessor to the manager
func (pm *PreprocessorManager) RegisterPreprocessor(p Preprocessor) {
	pm.preprocessors = append(pm.preprocessors, p)
}

// MaxFileBytes returns the configured size limit
func (pm *PreprocessorManager) MaxFileBytes() int64 {
	return pm.maxFileBytes
}

// GetPreprocessor returns the appropriate preprocessor for a file, or nil if none found
func (pm *PreprocessorManager) GetPreprocessor(filePath string) Preprocessor {
	for _, p := range pm.preprocessors {
		if p.CanProcess(filePath) {
			return p
		}
	}
	return nil
}

// GetAvailablePreprocessors returns all registered preprocessors
func (pm *PreprocessorManager) GetAvailablePreprocessors() []Preprocessor {
	return pm.preprocessors
}

// SupportedExtensions returns every extension some preprocessor accepts
func (pm *PreprocessorManager) SupportedExtensions() []string {
	var exts []string
	seen := make(map[string]bool)
	for _, p := range pm.preprocessors {
		for _, ext := range p.GetSupportedExtensions() {
			if !seen[ext] {
				seen[ext] = true
				exts = append(exts, ext)
			}
		}
	}
	return exts
}

// ProcessFile checks the size limit, picks a preprocessor and extracts text.
// Errors are resilience.ClassifiedError values of type too_large,
// unsupported, not_found or extraction.
func (pm *PreprocessorManager) ProcessFile(filePath string) (*ProcessedContent, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, &resilience.ClassifiedError{Original: err, Type: resilience.ErrorTypeNotFound, Operation: "open file"}
	}
	if info.IsDir() {
		return nil, resilience.NewInvalidInputError("open file", fmt.Sprintf("%s is a directory", filePath))
	}
	if info.Size() > pm.maxFileBytes {
		return nil, resilience.NewTooLargeError(filepath.Base(filePath), info.Size(), pm.maxFileBytes)
	}

	p := pm.GetPreprocessor(filePath)
	if p == nil {
		ext := strings.ToLower(filepath.Ext(filePath))
		if ext == "" {
			ext = "binary content"
		}
		return nil, resilience.NewUnsupportedError(filePath, "no extractor for "+ext)
	}

	if d := observability.Debug(pm.observer); d != nil {
		d.LogDetail("preprocessors", fmt.Sprintf("%s -> %s", filepath.Base(filePath), p.GetName()))
	}

	result, err := p.Process(filePath)
	if err != nil {
		return nil, resilience.NewExtractionError(filePath, err)
	}
	fillCounts(result)
	return result, nil
}

// fillCounts derives word, line and paragraph statistics from the text
func fillCounts(pc *ProcessedContent) {
	pc.WordCount = len(strings.Fields(pc.Text))
	pc.CharCount = len(pc.Text)
	pc.LineCount = 0
	if pc.Text != "" {
		pc.LineCount = strings.Count(pc.Text, "\n") + 1
	}
	pc.Paragraphs = countParagraphs(pc.Text)
	if pc.Metadata == nil {
		pc.Metadata = make(map[string]interface{})
	}
}

// countParagraphs counts blocks separated by blank lines
func countParagraphs(text string) int {
	count := 0
	for _, para := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(para) != "" {
			count++
		}
	}
	return count
}

// startTiming wires both the metrics and debug observers for one Process call
func startTiming(observer *observability.StandardObserver, component, filePath string) func(success bool, details string) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if observer != nil {
		finishTiming = observer.StartTiming(component, "process_file", filePath)
		if observer.DebugObserver != nil {
			finishStep = observer.DebugObserver.StartStep(component, "process_file", filePath)
		}
	}
	return func(success bool, details string) {
		if finishTiming != nil {
			finishTiming(success, map[string]interface{}{"details": details})
		}
		if finishStep != nil {
			finishStep(success, details)
		}
	}
}
