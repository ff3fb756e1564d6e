// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"bias-scan/internal/observability"
)

// MaxWorkers caps the pool regardless of CPU count
const MaxWorkers = 8

// ParallelProcessor manages parallel file processing
type ParallelProcessor struct {
	workers  int
	scanner  FileScanner
	observer *observability.StandardObserver
}

// ProcessingStats tracks parallel processing statistics
type ProcessingStats struct {
	TotalFiles     int           `json:"total_files"`
	ProcessedFiles int           `json:"processed_files"`
	FailedFiles    int           `json:"failed_files"`
	TotalFindings  int           `json:"total_findings"`
	TotalDuration  time.Duration `json:"total_duration_ms"`
	WorkerCount    int           `json:"worker_count"`
	AvgFileTime    time.Duration `json:"avg_file_time_ms"`
}

// NewParallelProcessor sizes the pool to the CPU count
func NewParallelProcessor(scanner FileScanner, observer *observability.StandardObserver) *ParallelProcessor {
	workers := runtime.NumCPU()
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	return NewParallelProcessorWithWorkers(scanner, workers, observer)
}

// NewParallelProcessorWithWorkers uses an explicit worker count
func NewParallelProcessorWithWorkers(scanner FileScanner, workers int, observer *observability.StandardObserver) *ParallelProcessor {
	if workers < 1 {
		workers = 1
	}
	return &ParallelProcessor{workers: workers, scanner: scanner, observer: observer}
}

// Workers returns the pool size
func (pp *ParallelProcessor) Workers() int {
	return pp.workers
}

// ProgressCallback is called when a file is completed
type ProgressCallback func(completed, total int, currentFile string)

// ProcessFiles scans files in parallel. Results come back in input order;
// per-file failures are reported in Result.Error. Cancelling ctx stops the
// scan and returns ctx.Err().
func (pp *ParallelProcessor) ProcessFiles(ctx context.Context, filePaths []string, progress ProgressCallback) ([]Result, *ProcessingStats, error) {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if pp.observer != nil {
		finishTiming = pp.observer.StartTiming("parallel_processor", "process_files", "batch")
	}

	workers := pp.workers
	if workers > len(filePaths) {
		workers = len(filePaths)
	}
	pool := NewWorkerPool(ctx, workers, pp.scanner, pp.observer)
	pool.Start()

	// Submit jobs in a separate goroutine to prevent deadlock
	go func() {
		defer pool.CloseJobs()
		for i, filePath := range filePaths {
			if !pool.Submit(&Job{Index: i, FilePath: filePath, JobID: fmt.Sprintf("job_%d", i)}) {
				return
			}
		}
	}()

	results := make([]Result, len(filePaths))
	stats := &ProcessingStats{TotalFiles: len(filePaths), WorkerCount: workers}
	var fileTime time.Duration

	for received := 0; received < len(filePaths); received++ {
		var result *Result
		select {
		case result = <-pool.Results():
		case <-ctx.Done():
			pool.cancel()
			pool.Stop()
			if finishTiming != nil {
				finishTiming(false, map[string]interface{}{"cancelled_after": received})
			}
			return nil, stats, ctx.Err()
		}

		results[result.Index] = *result
		fileTime += result.Duration
		if result.Error != nil {
			stats.FailedFiles++
			if pp.observer != nil {
				pp.observer.LogError("parallel_processor", "file_processing", result.FilePath, result.Error)
			}
		} else {
			stats.ProcessedFiles++
			stats.TotalFindings += len(result.Report.Analysis.Findings)
		}

		if progress != nil {
			progress(received+1, len(filePaths), result.FilePath)
		}
	}
	pool.Stop()

	stats.TotalDuration = time.Since(start)
	stats.AvgFileTime = fileTime / time.Duration(max(len(filePaths), 1))

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"total_files":     stats.TotalFiles,
			"processed_files": stats.ProcessedFiles,
			"total_findings":  stats.TotalFindings,
			"worker_count":    workers,
			"duration_ms":     stats.TotalDuration.Milliseconds(),
		})
	}
	return results, stats, nil
}
