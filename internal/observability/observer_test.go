// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestStartTimingWritesJSONInDebug(t *testing.T) {
	var buf bytes.Buffer
	o := NewStandardObserver(ObservabilityDebug, &buf)

	done := o.StartTiming("engine", "analyze", "notes.txt")
	done(true, map[string]interface{}{"findings": 2})

	var data StandardObservabilityData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if data.Component != "engine" || data.Operation != "analyze" || data.Source != "notes.txt" {
		t.Errorf("unexpected data %+v", data)
	}
	if !strings.HasPrefix(data.RequestID, "req-") || len(data.RequestID) != len("req-")+36 {
		t.Errorf("request id %q is not a uuid", data.RequestID)
	}
}

func TestObserverLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     ObservabilityLevel
		wantTimed bool
		wantError bool
	}{
		{"off", ObservabilityOff, false, false},
		{"metrics", ObservabilityMetrics, false, true},
		{"debug", ObservabilityDebug, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			o := NewStandardObserver(tt.level, &buf)
			o.StartTiming("c", "op", "")(true, nil)
			if got := buf.Len() > 0; got != tt.wantTimed {
				t.Errorf("timing output = %v, want %v", got, tt.wantTimed)
			}

			buf.Reset()
			o.LogError("c", "op", "", errors.New("boom"))
			if got := strings.Contains(buf.String(), "boom"); got != tt.wantError {
				t.Errorf("error output = %v, want %v", got, tt.wantError)
			}
		})
	}
}

func TestNilObserverIsSafe(t *testing.T) {
	var o *StandardObserver
	o.StartTiming("c", "op", "")(true, nil)
	o.LogOperation(StandardObservabilityData{})
	o.LogError("c", "op", "", errors.New("x"))
	if Debug(o) != nil {
		t.Error("nil observer has no debug observer")
	}
	if o.Level() != ObservabilityOff {
		t.Error("nil observer should report off")
	}
}

func TestDebugObserverSteps(t *testing.T) {
	var buf bytes.Buffer
	d := NewDebugObserver(&buf)
	if Debug(d.StandardObserver) != d {
		t.Fatal("debug observer not linked")
	}

	finish := d.StartStep("router", "extract", "a.pdf")
	d.LogDetail("router", "using pdf extractor")
	d.LogMetric("router", "pages", 3)
	finish(true, "ok")

	out := buf.String()
	for _, want := range []string{"router: extract (a.pdf)", "→ router: using pdf extractor", "pages = 3", "extract completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel(true, true) != ObservabilityDebug || ParseLevel(false, true) != ObservabilityMetrics || ParseLevel(false, false) != ObservabilityOff {
		t.Error("ParseLevel mapping wrong")
	}
}
