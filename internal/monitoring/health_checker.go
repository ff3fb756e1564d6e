// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package monitoring

import (
	"fmt"
	"sync"
	"time"

	"bias-scan/internal/detector"
	"bias-scan/internal/observability"
)

// Analyzer is the part of the engine the health check exercises
type Analyzer interface {
	Analyze(text string) detector.TextAnalysis
}

// canary is a known input and the category it must produce
type canary struct {
	text string
	want detector.Category // empty means no findings expected
}

var canaries = []canary{
	{text: "Everyone agrees this is the only way.", want: detector.Groupthink},
	{text: "The quarterly report is attached.", want: ""},
}

// HealthCheckResult represents a single health check result
type HealthCheckResult struct {
	Timestamp    time.Time `json:"timestamp"`
	Healthy      bool      `json:"healthy"`
	ResponseTime float64   `json:"response_time_ms"`
	Error        string    `json:"error,omitempty"`
}

// HealthStatus summarises recent checks
type HealthStatus struct {
	Healthy          bool              `json:"healthy"`
	LastCheck        HealthCheckResult `json:"last_check"`
	SuccessfulChecks int               `json:"successful_checks"`
	FailedChecks     int               `json:"failed_checks"`
}

// HealthChecker runs canary texts through the engine. A check fails when a
// canary does not produce its expected category.
type HealthChecker struct {
	analyzer Analyzer
	observer *observability.StandardObserver

	mu     sync.RWMutex
	status HealthStatus
}

// NewHealthChecker creates a health checker over an analyzer
func NewHealthChecker(analyzer Analyzer, observer *observability.StandardObserver) *HealthChecker {
	return &HealthChecker{analyzer: analyzer, observer: observer}
}

// Check runs the canaries once and records the outcome
func (hc *HealthChecker) Check() HealthCheckResult {
	start := time.Now()
	err := hc.runCanaries()
	result := HealthCheckResult{
		Timestamp:    start,
		Healthy:      err == nil,
		ResponseTime: float64(time.Since(start).Microseconds()) / 1000.0,
	}
	if err != nil {
		result.Error = err.Error()
		hc.observer.LogError("health_checker", "canary", "engine", err)
	}

	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.status.Healthy = result.Healthy
	hc.status.LastCheck = result
	if result.Healthy {
		hc.status.SuccessfulChecks++
	} else {
		hc.status.FailedChecks++
	}
	return result
}

// Status returns the latest recorded status
func (hc *HealthChecker) Status() HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.status
}

func (hc *HealthChecker) runCanaries() (err error) {
	if hc.analyzer == nil {
		return fmt.Errorf("no analyzer configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analyzer panic: %v", r)
		}
	}()

	for _, c := range canaries {
		analysis := hc.analyzer.Analyze(c.text)
		if c.want == "" {
			if len(analysis.Findings) > 0 {
				return fmt.Errorf("neutral canary produced %d findings", len(analysis.Findings))
			}
			continue
		}
		if !analysis.HasCategory(c.want) {
			return fmt.Errorf("canary %q did not produce %s", c.text, c.want)
		}
	}
	return nil
}
