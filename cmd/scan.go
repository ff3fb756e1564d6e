// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"bias-scan/internal/config"
	"bias-scan/internal/core"
	"bias-scan/internal/detector"
	"bias-scan/internal/parallel"
	"bias-scan/internal/performance"
	"bias-scan/internal/resilience"
)

// collectReports runs the requested scan. hadErrors is set when at least
// one file failed; the remaining reports are still returned.
func collectReports(ctx context.Context, scanner *core.Scanner, f flagValues, settings config.Defaults, showProgress bool) (reports []detector.Report, hadErrors bool, err error) {
	switch {
	case f.inputFile != "" && f.text != "":
		return nil, false, errors.New("--file and --text cannot be used together")
	case f.text != "":
		return []detector.Report{scanner.ScanText("<text>", f.text)}, false, nil
	case f.inputFile != "":
		return scanFiles(ctx, scanner, f.inputFile, settings.Recursive, f.quiet, showProgress)
	case !isTerminal(os.Stdin):
		text, err := readStdin(os.Stdin, settings.MaxFileBytes)
		if err != nil {
			return nil, false, err
		}
		return []detector.Report{scanner.ScanText("<stdin>", text)}, false, nil
	default:
		return nil, false, errors.New("no input: use --file, --text or pipe text on stdin (see --help)")
	}
}

func readStdin(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if int64(len(data)) > limit {
		return "", resilience.NewTooLargeError("stdin", int64(len(data)), limit)
	}
	return string(data), nil
}

func scanFiles(ctx context.Context, scanner *core.Scanner, inputPath string, recursive, quiet, showProgress bool) ([]detector.Report, bool, error) {
	discovery, err := scanner.Router().Discover(inputPath, recursive)
	if err != nil {
		return nil, false, err
	}

	if !quiet {
		for _, skipped := range discovery.SkippedFiles {
			if !skipped.Silent {
				fmt.Fprintf(os.Stderr, "Skipping %s: %s\n", skipped.Path, skipped.Reason)
			}
		}
	}
	if len(discovery.FilesToProcess) == 0 {
		return nil, false, resilience.NewUnsupportedError(inputPath, "no supported files found")
	}

	var progress parallel.ProgressCallback
	if showProgress && len(discovery.FilesToProcess) > 1 {
		progress = func(completed, total int, currentFile string) {
			fmt.Fprintf(os.Stderr, "\rScanning [%d/%d] %-60.60s", completed, total, currentFile)
			if completed == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	processor := parallel.NewParallelProcessor(scanner, scanner.Observer())
	results, stats, err := processor.ProcessFiles(ctx, discovery.FilesToProcess, progress)
	if err != nil {
		return nil, false, err
	}

	reports := make([]detector.Report, 0, len(results))
	hadErrors := false
	for _, result := range results {
		if result.Error != nil {
			hadErrors = true
			fmt.Fprintf(os.Stderr, "Error scanning %s: %v\n", result.FilePath, result.Error)
			continue
		}
		reports = append(reports, result.Report)
	}

	if !quiet && len(discovery.FilesToProcess) > 1 {
		fmt.Fprintf(os.Stderr, "Scanned %d files (%d failed) with %d workers in %s\n",
			stats.TotalFiles, stats.FailedFiles, stats.WorkerCount, stats.TotalDuration.Round(1e6))
	}
	return reports, hadErrors, nil
}

// printStatsSummary writes the latency and category summary shown under --debug
func printStatsSummary(w io.Writer, snap performance.Snapshot) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance summary")
	fmt.Fprintf(w, "  analyses: %d  findings: %d  input: %d bytes\n", snap.Analyses, snap.Findings, snap.InputBytes)
	fmt.Fprintf(w, "  latency ms: p50=%.2f p90=%.2f p99=%.2f max=%.2f\n",
		snap.Latency.P50, snap.Latency.P90, snap.Latency.P99, snap.Latency.Max)

	sources := make([]string, 0, len(snap.LatencyBy))
	for source := range snap.LatencyBy {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		l := snap.LatencyBy[source]
		fmt.Fprintf(w, "    %-10s n=%d p50=%.2f p99=%.2f\n", source, l.Count, l.P50, l.P99)
	}
	if len(snap.TopCategories) > 0 {
		fmt.Fprintf(w, "  top categories: %s\n", strings.Join(snap.TopCategories, ", "))
	}
	if len(snap.Errors) > 0 {
		types := make([]string, 0, len(snap.Errors))
		for t, n := range snap.Errors {
			types = append(types, fmt.Sprintf("%s=%d", t, n))
		}
		sort.Strings(types)
		fmt.Fprintf(w, "  errors: %s\n", strings.Join(types, ", "))
	}
}
