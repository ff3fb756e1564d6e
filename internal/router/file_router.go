// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bias-scan/internal/observability"
	"bias-scan/internal/paths"
	"bias-scan/internal/preprocessors"
	"bias-scan/internal/resilience"
)

// SkippedFile is a discovered path that will not be scanned
type SkippedFile struct {
	Path   string
	Reason string
	Silent bool // true = don't show to user, false = show as warning
}

// DiscoveryResult lists the files an input expands to
type DiscoveryResult struct {
	FilesToProcess []string
	SkippedFiles   []SkippedFile
}

// FileRouter expands CLI inputs into files and hands each one to the
// preprocessor that can extract its text
type FileRouter struct {
	manager  *preprocessors.PreprocessorManager
	metrics  *RouterMetrics
	observer *observability.StandardObserver
}

// NewFileRouter creates a new file router around a preprocessor manager
func NewFileRouter(manager *preprocessors.PreprocessorManager, observer *observability.StandardObserver) *FileRouter {
	if manager == nil {
		manager = preprocessors.NewDefaultManager(0, observer)
	}
	return &FileRouter{
		manager:  manager,
		metrics:  NewRouterMetrics(),
		observer: observer,
	}
}

// Manager returns the underlying preprocessor manager
func (fr *FileRouter) Manager() *preprocessors.PreprocessorManager {
	return fr.manager
}

// GetMetrics returns current router metrics
func (fr *FileRouter) GetMetrics() *RouterMetrics {
	return fr.metrics
}

// isArchiveOrMedia reports types that are skipped without a warning
func isArchiveOrMedia(ext string) bool {
	switch ext {
	case ".mp4", ".mov", ".avi", ".mkv", ".mp3", ".wav", ".flac",
		".dmg", ".iso", ".img", ".zip", ".tar", ".gz", ".7z", ".exe", ".so", ".dylib":
		return true
	}
	return false
}

// isHiddenDir reports version control and dependency directories
func isHiddenDir(name string) bool {
	if name == "node_modules" || name == "vendor" {
		return true
	}
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// CanProcessFile determines if a file can be processed and why not
func (fr *FileRouter) CanProcessFile(filePath string) (bool, string) {
	ext := strings.ToLower(filepath.Ext(filePath))
	info, err := os.Stat(filepath.Clean(filePath))
	if err != nil {
		return false, "not accessible"
	}
	if info.Size() > fr.manager.MaxFileBytes() {
		return false, fmt.Sprintf("file too large (max size: %dMB)", fr.manager.MaxFileBytes()/(1024*1024))
	}
	if isArchiveOrMedia(ext) {
		return false, "unsupported file type"
	}
	p := fr.manager.GetPreprocessor(filePath)
	if p == nil {
		return false, "unsupported file type"
	}
	return true, p.GetName()
}

// Discover expands a file, directory or glob into the files to scan.
// Directories are walked one level deep unless recursive is set.
func (fr *FileRouter) Discover(inputPath string, recursive bool) (*DiscoveryResult, error) {
	result := &DiscoveryResult{}
	if !hasGlobMeta(inputPath) {
		if err := paths.ValidatePath(inputPath); err != nil {
			return nil, resilience.NewInvalidInputError("discover files", err.Error())
		}
	}
	expanded := paths.ExpandHome(inputPath)

	// A literal file wins over glob interpretation
	if _, err := os.Stat(expanded); err != nil && hasGlobMeta(expanded) {
		matches, err := filepath.Glob(expanded)
		if err != nil {
			return nil, resilience.NewInvalidInputError("discover files", fmt.Sprintf("invalid glob pattern: %v", err))
		}
		if len(matches) == 0 {
			return nil, &resilience.ClassifiedError{
				Type:      resilience.ErrorTypeNotFound,
				Operation: "discover files",
				Message:   "no files match pattern: " + inputPath,
			}
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			fr.consider(result, filepath.Clean(match))
		}
		return result, nil
	}

	cleanPath := filepath.Clean(expanded)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, &resilience.ClassifiedError{
			Original:  err,
			Type:      resilience.ErrorTypeNotFound,
			Operation: "discover files",
			Message:   "path does not exist or is not accessible: " + inputPath,
		}
	}

	if info.Mode().IsRegular() {
		fr.consider(result, cleanPath)
		return result, nil
	}
	if !info.IsDir() {
		return nil, resilience.NewInvalidInputError("discover files", "path is neither a regular file nor a directory")
	}

	err = filepath.WalkDir(cleanPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.SkippedFiles = append(result.SkippedFiles, SkippedFile{Path: path, Reason: err.Error()})
			return nil
		}
		if d.IsDir() {
			if path == cleanPath {
				return nil
			}
			if !recursive || isHiddenDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			fr.consider(result, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error accessing directory: %w", err)
	}

	sort.Strings(result.FilesToProcess)
	return result, nil
}

// consider adds a file to the scan list or records why it is skipped
func (fr *FileRouter) consider(result *DiscoveryResult, path string) {
	ok, reason := fr.CanProcessFile(path)
	if ok {
		result.FilesToProcess = append(result.FilesToProcess, path)
		return
	}
	silent := isArchiveOrMedia(strings.ToLower(filepath.Ext(path)))
	result.SkippedFiles = append(result.SkippedFiles, SkippedFile{Path: path, Reason: reason, Silent: silent})
	fr.metrics.RecordSkip(reason)
}

func hasGlobMeta(path string) bool {
	return strings.ContainsAny(path, "*?") || (strings.Contains(path, "[") && strings.Contains(path, "]"))
}

// ProcessFile extracts the text of one file and records router metrics
func (fr *FileRouter) ProcessFile(filePath string) (*preprocessors.ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	if fr.observer != nil {
		finishTiming = fr.observer.StartTiming("router", "process_file", filePath)
	}
	start := time.Now()
	ext := strings.ToLower(filepath.Ext(filePath))
	fr.metrics.RecordFileType(ext)

	content, err := fr.manager.ProcessFile(filePath)
	if err != nil {
		var ce *resilience.ClassifiedError
		errType := string(resilience.ErrorTypeInternal)
		if errors.As(err, &ce) {
			errType = string(ce.Type)
		}
		fr.metrics.RecordError(errType)
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error_type": errType, "file_ext": ext})
		}
		return nil, err
	}

	fr.metrics.RecordProcessing(content.ProcessorType, time.Since(start).Milliseconds())
	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"processor":  content.ProcessorType,
			"file_ext":   ext,
			"word_count": content.WordCount,
		})
	}
	return content, nil
}
