// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bias-scan/internal/detector"
	"bias-scan/internal/observability"
)

// FileScanner extracts and analyses one file
type FileScanner interface {
	ScanFile(filePath string) (detector.Report, error)
}

// WorkerPool fans file scans out over a fixed number of goroutines
type WorkerPool struct {
	workers  int
	jobs     chan *Job
	results  chan *Result
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	scanner  FileScanner
	observer *observability.StandardObserver

	closeJobs sync.Once
}

// Job represents a file processing task
type Job struct {
	Index    int
	FilePath string
	JobID    string
}

// Result represents processing results
type Result struct {
	JobID    string
	Index    int
	FilePath string
	Report   detector.Report
	Error    error
	Duration time.Duration
}

// NewWorkerPool creates a worker pool bound to ctx
func NewWorkerPool(ctx context.Context, workers int, scanner FileScanner, observer *observability.StandardObserver) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		workers:  workers,
		jobs:     make(chan *Job, workers*2),
		results:  make(chan *Result, workers*2),
		ctx:      ctx,
		cancel:   cancel,
		scanner:  scanner,
		observer: observer,
	}
}

// Start initializes worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// CloseJobs signals that no more jobs will be submitted
func (wp *WorkerPool) CloseJobs() {
	wp.closeJobs.Do(func() { close(wp.jobs) })
}

// Stop waits for the workers to exit and closes the results channel.
// CloseJobs must have been called or the context cancelled first.
func (wp *WorkerPool) Stop() {
	wp.wg.Wait()
	close(wp.results)
	wp.cancel()
}

// Submit queues a job. It returns false once the pool's context is done.
func (wp *WorkerPool) Submit(job *Job) bool {
	select {
	case wp.jobs <- job:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Results returns the results channel
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		if wp.ctx.Err() != nil {
			return
		}
		result := wp.processJob(job, id)

		select {
		case wp.results <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

// processJob scans one file. A panicking scanner fails only its own job.
func (wp *WorkerPool) processJob(job *Job, workerID int) (result *Result) {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if wp.observer != nil {
		finishTiming = wp.observer.StartTiming("worker_pool", "process_job", job.FilePath)
	}

	result = &Result{JobID: job.JobID, Index: job.Index, FilePath: job.FilePath}
	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Errorf("scan panic in %s: %v", job.FilePath, r)
		}
		result.Duration = time.Since(start)
		if finishTiming != nil {
			finishTiming(result.Error == nil, map[string]interface{}{
				"worker_id":     workerID,
				"finding_count": len(result.Report.Analysis.Findings),
				"duration_ms":   result.Duration.Milliseconds(),
			})
		}
	}()

	result.Report, result.Error = wp.scanner.ScanFile(job.FilePath)
	return result
}
