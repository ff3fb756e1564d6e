// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package heuristic

import (
	"math"
	"testing"

	"bias-scan/internal/context"
	"bias-scan/internal/detector"
	"bias-scan/internal/patterns"
)

func newTestScorer(t *testing.T, opts ...patterns.Option) *Scorer {
	t.Helper()
	lib, err := patterns.New(opts...)
	if err != nil {
		t.Fatalf("failed to build library: %v", err)
	}
	return NewScorer(lib, context.NewClassifier())
}

func findingFor(findings []detector.BiasFinding, c detector.Category) (detector.BiasFinding, bool) {
	for _, f := range findings {
		if f.Category == c {
			return f, true
		}
	}
	return detector.BiasFinding{}, false
}

func TestScoreScenarios(t *testing.T) {
	s := newTestScorer(t)

	tests := []struct {
		name         string
		text         string
		category     detector.Category
		wantSeverity detector.Severity
	}{
		{"groupthink", "Everyone agrees with him, let's finalize this.", detector.Groupthink, detector.SeverityHigh},
		{"gender", "All women are emotional.", detector.GenderStereotyping, detector.SeverityHigh},
		{"toxic", "This is absolutely stupid and terrible.", detector.ToxicLanguage, detector.SeverityHigh},
		{"educational", "This guy is from IIT, he'll be better than the others.", detector.EducationalBias, detector.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := s.Score(tt.text)
			f, ok := findingFor(findings, tt.category)
			if !ok {
				t.Fatalf("Score(%q) = %+v, missing %s", tt.text, findings, tt.category)
			}
			if f.Confidence <= EmitThreshold || f.Confidence > 1 {
				t.Errorf("confidence %v out of range", f.Confidence)
			}
			if f.Severity != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", f.Severity, tt.wantSeverity)
			}
			if f.Source != detector.SourceHeuristic {
				t.Errorf("source = %s", f.Source)
			}
			if f.Explanation != "" {
				t.Errorf("scorer must not attach explanations")
			}
		})
	}
}

func TestScoreNeutralAndPositive(t *testing.T) {
	s := newTestScorer(t)
	for _, text := range []string{
		"The team should review the proposal and consider all available options.",
		"All people should be treated equally",
		"We should analyze the data carefully",
		"",
	} {
		if got := s.Score(text); len(got) != 0 {
			t.Errorf("Score(%q) = %+v, want no findings", text, got)
		}
	}
}

func TestScoreArithmetic(t *testing.T) {
	// One expanded-only rule plus one keyword: 0.3 + 0.2 = 0.5
	s := newTestScorer(t,
		patterns.WithoutExamples(),
		patterns.WithRule("custom_bias", `\bzorblax\b`, 0.5, detector.TierExpanded),
	)

	b := findBreakdown(s.Explain("zorblax here"), "custom_bias")
	if b.PatternHits != 1 || len(b.MatchedKeywords) != 0 {
		t.Fatalf("unexpected breakdown %+v", b)
	}
	if math.Abs(b.Confidence-0.3) > 1e-9 {
		t.Errorf("confidence = %v, want 0.3", b.Confidence)
	}
	if _, ok := findingFor(s.Score("zorblax here"), "custom_bias"); ok {
		t.Errorf("0.3 must not exceed the emit threshold")
	}
}

func TestScoreContextIndicators(t *testing.T) {
	s := newTestScorer(t)

	// groupthink indicators: team, meeting, decision, project
	b := findBreakdown(s.Explain("The team meeting about the project"), detector.Groupthink)
	if math.Abs(b.IndicatorRatio-0.75) > 1e-9 {
		t.Errorf("indicator ratio = %v, want 0.75", b.IndicatorRatio)
	}
}

func TestScoreClampsToOne(t *testing.T) {
	s := newTestScorer(t)
	findings := s.Score("Everyone agrees, we all think alike, nobody disagrees, consensus is unanimous. Let's finalize this team decision.")
	f, ok := findingFor(findings, detector.Groupthink)
	if !ok {
		t.Fatal("missing groupthink")
	}
	if f.Confidence != 1 {
		t.Errorf("confidence = %v, want clamp at 1", f.Confidence)
	}
}

func findBreakdown(all []Breakdown, c detector.Category) Breakdown {
	for _, b := range all {
		if b.Category == c {
			return b
		}
	}
	return Breakdown{}
}

func TestToxicity(t *testing.T) {
	s := newTestScorer(t)

	tests := []struct {
		name string
		text string
		want float64
	}{
		{"repeated toxic", "stupid stupid stupid stupid", 1},
		{"one in twenty", "stupid a b c d e f g h i j k l m n o p q r s", 0.5},
		{"substring counts", "idiots everywhere a b c d e f g h i j k l m n o p q r", 0.5},
		{"clean", "the release went well", 0},
		{"empty", "", 0},
		{"positive gate", "Everyone deserves respect, even stupid ideas", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Toxicity(tt.text); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Toxicity(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
