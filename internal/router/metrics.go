// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package router

import "sync"

// RouterMetrics collects performance and usage metrics
type RouterMetrics struct {
	mu sync.Mutex

	FilesProcessed   int64            `json:"files_processed"`
	ProcessingTimeMs map[string]int64 `json:"processing_time_ms"`
	ErrorCounts      map[string]int64 `json:"error_counts"`
	FileTypeCounts   map[string]int64 `json:"file_type_counts"`
	SkipCounts       map[string]int64 `json:"skip_counts"`
}

// NewRouterMetrics creates a new metrics collector
func NewRouterMetrics() *RouterMetrics {
	return &RouterMetrics{
		ProcessingTimeMs: make(map[string]int64),
		ErrorCounts:      make(map[string]int64),
		FileTypeCounts:   make(map[string]int64),
		SkipCounts:       make(map[string]int64),
	}
}

// RecordProcessing records successful processing metrics
func (m *RouterMetrics) RecordProcessing(preprocessor string, durationMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FilesProcessed++
	m.ProcessingTimeMs[preprocessor] += durationMs
}

// RecordError records error metrics
func (m *RouterMetrics) RecordError(errorType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCounts[errorType]++
}

// RecordFileType records file type metrics
func (m *RouterMetrics) RecordFileType(fileExt string) {
	if fileExt == "" {
		fileExt = "none"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FileTypeCounts[fileExt]++
}

// RecordSkip records a file skipped during discovery
func (m *RouterMetrics) RecordSkip(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SkipCounts[reason]++
}

// GetSummary returns a copy of the metrics
func (m *RouterMetrics) GetSummary() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return map[string]interface{}{
		"files_processed":    m.FilesProcessed,
		"processing_time_ms": copyCounts(m.ProcessingTimeMs),
		"error_counts":       copyCounts(m.ErrorCounts),
		"file_type_counts":   copyCounts(m.FileTypeCounts),
		"skip_counts":        copyCounts(m.SkipCounts),
	}
}

func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
