// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StandardObserver implements observability for all components
type StandardObserver struct {
	level         ObservabilityLevel
	writer        io.Writer
	mu            sync.Mutex
	newRequestID  func() string
	DebugObserver *DebugObserver // Reference to debug observer when in debug mode
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// ParseLevel maps the CLI switches onto a level
func ParseLevel(debug, verbose bool) ObservabilityLevel {
	switch {
	case debug:
		return ObservabilityDebug
	case verbose:
		return ObservabilityMetrics
	default:
		return ObservabilityOff
	}
}

// NewStandardObserver creates observability component
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	return &StandardObserver{
		level:        level,
		writer:       writer,
		newRequestID: NewRequestID,
	}
}

// NewRequestID returns a random identifier for correlating log lines
func NewRequestID() string {
	return "req-" + uuid.New().String()
}

// Level returns the configured level
func (o *StandardObserver) Level() ObservabilityLevel {
	if o == nil {
		return ObservabilityOff
	}
	return o.level
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, source string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		if o == nil {
			return
		}
		duration := time.Since(start)

		data := StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			Source:     source,
			DurationMs: duration.Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		}

		o.LogOperation(data)
	}
}

// LogOperation logs operation data
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o == nil || o.level == ObservabilityOff {
		return
	}

	if data.RequestID == "" {
		data.RequestID = o.newRequestID()
	}
	if data.Timestamp.IsZero() {
		data.Timestamp = time.Now().UTC()
	}

	// Only log JSON in debug mode
	if o.level == ObservabilityDebug {
		o.mu.Lock()
		defer o.mu.Unlock()
		json.NewEncoder(o.writer).Encode(data)
	}
}

// LogError records a failed operation at any level above off
func (o *StandardObserver) LogError(component, operation, source string, err error) {
	if o == nil || o.level == ObservabilityOff || err == nil {
		return
	}
	data := StandardObservabilityData{
		Component: component,
		Operation: operation,
		Source:    source,
		Error:     err.Error(),
		RequestID: o.newRequestID(),
		Timestamp: time.Now().UTC(),
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	json.NewEncoder(o.writer).Encode(data)
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Timestamp    time.Time              `json:"timestamp"`
	Component    string                 `json:"component"`
	Operation    string                 `json:"operation"`
	RequestID    string                 `json:"request_id"`
	Source       string                 `json:"source,omitempty"`
	DurationMs   int64                  `json:"duration_ms,omitempty"`
	Success      bool                   `json:"success"`
	Error        string                 `json:"error,omitempty"`
	TextBytes    int                    `json:"text_bytes,omitempty"`
	FindingCount int                    `json:"finding_count,omitempty"`
	Risk         string                 `json:"risk,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}
