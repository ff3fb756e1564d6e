// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"fmt"
	"strings"
)

// Severity is an ordered harm level. SeverityNone means "no finding".
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
)

var severityNames = map[Severity]string{
	SeverityNone:   "none",
	SeverityLow:    "low",
	SeverityMedium: "medium",
	SeverityHigh:   "high",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// MarshalText encodes the severity as its lowercase name
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a lowercase or mixed-case severity name
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity converts a name such as "High" into a Severity
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "":
		return SeverityNone, nil
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	}
	return SeverityNone, fmt.Errorf("unknown severity %q", name)
}

// SeverityFromScore maps a combined score onto a severity: > 0.7 high, > 0.4 medium, else low
func SeverityFromScore(score float64) Severity {
	switch {
	case score > 0.7:
		return SeverityHigh
	case score > 0.4:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// OverallRisk rolls findings and toxicity up into one severity
func OverallRisk(findings []BiasFinding, toxicity float64) Severity {
	hasHigh, hasMedium := false, false
	for _, f := range findings {
		switch f.Severity {
		case SeverityHigh:
			hasHigh = true
		case SeverityMedium:
			hasMedium = true
		}
	}

	switch {
	case hasHigh || toxicity > 0.7:
		return SeverityHigh
	case hasMedium || toxicity > 0.4:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
