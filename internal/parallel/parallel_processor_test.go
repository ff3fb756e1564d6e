// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bias-scan/internal/detector"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScanner struct {
	calls atomic.Int32
	delay time.Duration
}

func (f *fakeScanner) ScanFile(path string) (detector.Report, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	switch {
	case strings.HasPrefix(path, "bad"):
		return detector.Report{}, errors.New("cannot read " + path)
	case strings.HasPrefix(path, "panic"):
		panic("boom")
	}
	return detector.Report{
		Source: path,
		Analysis: detector.TextAnalysis{
			Findings: []detector.BiasFinding{{Category: detector.Groupthink}},
		},
	}, nil
}

func TestProcessFiles_OrderAndErrors(t *testing.T) {
	paths := []string{"a.txt", "bad.txt", "c.txt", "panic.txt", "e.txt"}
	pp := NewParallelProcessorWithWorkers(&fakeScanner{}, 3, nil)

	var mu sync.Mutex
	var progress []int
	results, stats, err := pp.ProcessFiles(context.Background(), paths, func(completed, total int, _ string) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, len(paths), total)
		progress = append(progress, completed)
	})
	require.NoError(t, err)
	require.Len(t, results, len(paths))

	for i, r := range results {
		assert.Equal(t, paths[i], r.FilePath, "results keep input order")
	}
	assert.Error(t, results[1].Error)
	assert.Contains(t, results[3].Error.Error(), "panic")
	assert.Equal(t, "c.txt", results[2].Report.Source)

	assert.Equal(t, 3, stats.ProcessedFiles)
	assert.Equal(t, 2, stats.FailedFiles)
	assert.Equal(t, 3, stats.TotalFindings)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, progress)
}

func TestProcessFiles_Empty(t *testing.T) {
	results, stats, err := NewParallelProcessor(&fakeScanner{}, nil).ProcessFiles(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, stats.TotalFiles)
}

func TestProcessFiles_Cancelled(t *testing.T) {
	scanner := &fakeScanner{delay: 20 * time.Millisecond}
	paths := make([]string, 50)
	for i := range paths {
		paths[i] = "f.txt"
	}

	ctx, cancel := context.WithCancel(context.Background())
	pp := NewParallelProcessorWithWorkers(scanner, 2, nil)
	_, _, err := pp.ProcessFiles(ctx, paths, func(completed, _ int, _ string) {
		if completed == 2 {
			cancel()
		}
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, int(scanner.calls.Load()), len(paths))
}

func TestNewParallelProcessor_WorkerCap(t *testing.T) {
	pp := NewParallelProcessor(&fakeScanner{}, nil)
	assert.GreaterOrEqual(t, pp.Workers(), 1)
	assert.LessOrEqual(t, pp.Workers(), MaxWorkers)
}
