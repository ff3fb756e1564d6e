// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package performance keeps in-process analysis statistics for /api/stats
// and the CLI debug summary.
package performance

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"bias-scan/internal/detector"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Latencies are recorded in microseconds between 1us and 60s
const (
	minLatencyMicros = 1
	maxLatencyMicros = 60_000_000
	sigFigs          = 3
)

// Stats aggregates analysis latency and outcome counts
type Stats struct {
	mu sync.Mutex

	startTime time.Time
	histogram *hdrhistogram.Histogram
	bySource  map[string]*hdrhistogram.Histogram

	analyses   int64
	findings   int64
	positive   int64
	inputBytes int64
	byRisk     map[detector.Severity]int64
	byCategory map[detector.Category]int64
	errors     map[string]int64
}

// NewStats creates an empty statistics collector
func NewStats() *Stats {
	return &Stats{
		startTime:  time.Now(),
		histogram:  hdrhistogram.New(minLatencyMicros, maxLatencyMicros, sigFigs),
		bySource:   make(map[string]*hdrhistogram.Histogram),
		byRisk:     make(map[detector.Severity]int64),
		byCategory: make(map[detector.Category]int64),
		errors:     make(map[string]int64),
	}
}

// RecordAnalysis adds one analysis. source groups latencies, e.g. "text" or "pdf".
func (s *Stats) RecordAnalysis(source string, d time.Duration, a detector.TextAnalysis) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.analyses++
	s.inputBytes += int64(len(a.InputText))
	if a.Positive {
		s.positive++
	}
	s.byRisk[a.OverallRisk]++
	for _, f := range a.Findings {
		s.findings++
		s.byCategory[f.Category]++
	}

	micros := d.Microseconds()
	if micros < minLatencyMicros {
		micros = minLatencyMicros
	}
	if micros > maxLatencyMicros {
		micros = maxLatencyMicros
	}
	_ = s.histogram.RecordValue(micros)

	if source == "" {
		source = "unknown"
	}
	h, ok := s.bySource[source]
	if !ok {
		h = hdrhistogram.New(minLatencyMicros, maxLatencyMicros, sigFigs)
		s.bySource[source] = h
	}
	_ = h.RecordValue(micros)
}

// RecordError counts a failed scan by error type
func (s *Stats) RecordError(errorType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[errorType]++
}

// Latency summarises a histogram in milliseconds
type Latency struct {
	Count int64   `json:"count"`
	P50   float64 `json:"p50_ms"`
	P90   float64 `json:"p90_ms"`
	P99   float64 `json:"p99_ms"`
	Max   float64 `json:"max_ms"`
	Mean  float64 `json:"mean_ms"`
}

func latencyOf(h *hdrhistogram.Histogram) Latency {
	return Latency{
		Count: h.TotalCount(),
		P50:   float64(h.ValueAtPercentile(50)) / 1000.0,
		P90:   float64(h.ValueAtPercentile(90)) / 1000.0,
		P99:   float64(h.ValueAtPercentile(99)) / 1000.0,
		Max:   float64(h.Max()) / 1000.0,
		Mean:  h.Mean() / 1000.0,
	}
}

// Memory is a point-in-time runtime reading
type Memory struct {
	HeapAllocBytes uint64 `json:"heap_alloc_bytes"`
	Goroutines     int    `json:"goroutines"`
}

// Snapshot is a copy of the statistics safe to serialise
type Snapshot struct {
	UptimeSeconds float64            `json:"uptime_seconds"`
	Analyses      int64              `json:"analyses"`
	Findings      int64              `json:"findings"`
	Positive      int64              `json:"positive_context"`
	InputBytes    int64              `json:"input_bytes"`
	Latency       Latency            `json:"latency"`
	LatencyBy     map[string]Latency `json:"latency_by_source"`
	ByRisk        map[string]int64   `json:"by_risk"`
	ByCategory    map[string]int64   `json:"by_category"`
	TopCategories []string           `json:"top_categories"`
	Errors        map[string]int64   `json:"errors"`
	Memory        Memory             `json:"memory"`
}

// Snapshot copies the current statistics
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(s.startTime).Seconds(),
		Analyses:      s.analyses,
		Findings:      s.findings,
		Positive:      s.positive,
		InputBytes:    s.inputBytes,
		Latency:       latencyOf(s.histogram),
		LatencyBy:     make(map[string]Latency, len(s.bySource)),
		ByRisk:        make(map[string]int64, len(s.byRisk)),
		ByCategory:    make(map[string]int64, len(s.byCategory)),
		Errors:        make(map[string]int64, len(s.errors)),
	}
	for source, h := range s.bySource {
		snap.LatencyBy[source] = latencyOf(h)
	}
	for _, sev := range []detector.Severity{detector.SeverityNone, detector.SeverityLow, detector.SeverityMedium, detector.SeverityHigh} {
		snap.ByRisk[sev.String()] = s.byRisk[sev]
	}
	for c, n := range s.byCategory {
		snap.ByCategory[string(c)] = n
	}
	for t, n := range s.errors {
		snap.Errors[t] = n
	}
	snap.TopCategories = topCategories(s.byCategory, 5)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	snap.Memory = Memory{HeapAllocBytes: mem.HeapAlloc, Goroutines: runtime.NumGoroutine()}
	return snap
}

// topCategories orders by count, then name
func topCategories(counts map[detector.Category]int64, n int) []string {
	cats := make([]detector.Category, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if counts[cats[i]] != counts[cats[j]] {
			return counts[cats[i]] > counts[cats[j]]
		}
		return cats[i] < cats[j]
	})
	if len(cats) > n {
		cats = cats[:n]
	}
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

// Reset clears every counter and histogram
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startTime = time.Now()
	s.histogram.Reset()
	s.bySource = make(map[string]*hdrhistogram.Histogram)
	s.analyses, s.findings, s.positive, s.inputBytes = 0, 0, 0, 0
	s.byRisk = make(map[detector.Severity]int64)
	s.byCategory = make(map[detector.Category]int64)
	s.errors = make(map[string]int64)
}
