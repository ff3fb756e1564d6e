// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"bias-scan/internal/detector"
)

var errNilLibrary = errors.New("engine: pattern library is required")

const (
	recReview       = "Review your message for potential biases before sending"
	recAudience     = "Consider how your message might be perceived by different audiences"
	recReframe      = "Reframe your message using more constructive language"
	recFacts        = "Focus on facts and solutions rather than criticism"
	recHighSeverity = "This message contains high-severity biases - consider revising"
	recBiasFree     = "Your message appears to be bias-free and professional"
)

func recommendations(findings []detector.BiasFinding, toxicity float64) []string {
	var recs []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			recs = append(recs, s)
		}
	}

	if len(findings) > 0 {
		add(recReview)
		add(recAudience)
	}
	for _, f := range findings {
		add(f.Suggestion)
	}
	if toxicity > 0.5 {
		add(recReframe)
		add(recFacts)
	}
	for _, f := range findings {
		if f.Severity == detector.SeverityHigh {
			add(recHighSeverity)
			break
		}
	}
	if len(recs) == 0 {
		add(recBiasFree)
	}
	return recs
}

func countFindings(findings []detector.BiasFinding) detector.Counts {
	counts := detector.Counts{
		Total:      len(findings),
		ByCategory: make(map[detector.Category]int),
		BySeverity: map[detector.Severity]int{
			detector.SeverityLow:    0,
			detector.SeverityMedium: 0,
			detector.SeverityHigh:   0,
		},
	}
	for _, f := range findings {
		counts.ByCategory[f.Category]++
		counts.BySeverity[f.Severity]++
	}
	return counts
}

func insights(findings []detector.BiasFinding) []string {
	if len(findings) == 0 {
		return []string{
			"Your document demonstrates excellent inclusive language practices.",
			"No significant bias patterns were detected in the text.",
		}
	}

	var out []string
	high, medium := 0, 0
	for _, f := range findings {
		switch f.Severity {
		case detector.SeverityHigh:
			high++
		case detector.SeverityMedium:
			medium++
		}
	}
	if high > 0 {
		out = append(out, fmt.Sprintf("High-severity biases detected: %d instances that should be addressed immediately.", high))
	}
	if medium > 0 {
		out = append(out, fmt.Sprintf("Medium-severity biases detected: %d instances that could be improved.", medium))
	}

	// Findings are unique per category, so the most prominent one is the
	// highest-confidence finding
	top := findings[0]
	out = append(out, fmt.Sprintf("Most prominent bias type: %s (confidence %.0f%%)", top.Category.Title(), top.Confidence*100))
	out = append(out, "Consider reviewing and revising the identified bias patterns for more inclusive communication.")
	return out
}

// complexity is min(1, (words*0.1 + sentences*0.05 + avgWordLength*0.1) / 10)
func complexity(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	letters := 0
	for _, w := range words {
		letters += utf8.RuneCountInString(w)
	}
	sentences := len(detector.SplitSentences(text))
	avg := float64(letters) / float64(len(words))

	score := (float64(len(words))*0.1 + float64(sentences)*0.05 + avg*0.1) / 10
	return math.Min(1, score)
}
