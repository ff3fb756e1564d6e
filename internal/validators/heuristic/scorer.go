// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package heuristic

import (
	"sort"
	"strings"

	"bias-scan/internal/context"
	"bias-scan/internal/detector"
	"bias-scan/internal/patterns"
)

// Scoring weights
const (
	patternWeight = 0.3
	keywordWeight = 0.2
	contextWeight = 0.3

	// EmitThreshold is the confidence a category must exceed to be reported
	EmitThreshold = 0.4
)

// toxicWords feed the bag-of-words toxicity ratio
var toxicWords = []string{
	"stupid", "idiot", "terrible", "awful", "hate", "disgusting", "useless", "worthless",
}

// Scorer re-scans text with the permissive rule tier plus keyword and
// context-indicator heuristics
type Scorer struct {
	library    *patterns.Library
	classifier *context.Classifier
}

// NewScorer creates a scorer over a compiled library
func NewScorer(library *patterns.Library, classifier *context.Classifier) *Scorer {
	return &Scorer{
		library:    library,
		classifier: classifier,
	}
}

// Breakdown shows how a category's confidence was assembled
type Breakdown struct {
	Category        detector.Category
	PatternHits     int
	MatchedKeywords []string
	IndicatorRatio  float64
	Confidence      float64
}

// Score returns one finding per category whose confidence exceeds
// EmitThreshold, ordered by category. Explanations are left empty.
func (s *Scorer) Score(text string) []detector.BiasFinding {
	findings := []detector.BiasFinding{}

	gate := s.classifier.Gate(text)
	if gate.Positive || gate.Effective == "" {
		return findings
	}

	for _, category := range s.library.AllCategories() {
		b := s.breakdown(category, gate.Effective)
		if b.Confidence <= EmitThreshold {
			continue
		}

		weight := s.library.Profile(category).SeverityWeight
		findings = append(findings, detector.BiasFinding{
			Category:        category,
			Confidence:      b.Confidence,
			Severity:        detector.SeverityFromScore((b.Confidence + weight) / 2),
			MatchedKeywords: b.MatchedKeywords,
			Source:          detector.SourceHeuristic,
		})
	}
	return findings
}

// Explain returns the scoring breakdown of every category, including those
// below the emit threshold
func (s *Scorer) Explain(text string) []Breakdown {
	gate := s.classifier.Gate(text)
	if gate.Positive || gate.Effective == "" {
		return nil
	}

	var out []Breakdown
	for _, category := range s.library.AllCategories() {
		out = append(out, s.breakdown(category, gate.Effective))
	}
	return out
}

func (s *Scorer) breakdown(category detector.Category, text string) Breakdown {
	lower := strings.ToLower(text)
	profile := s.library.Profile(category)

	b := Breakdown{Category: category}

	// Each distinct pattern counts once no matter how often it matches
	seen := make(map[string]bool)
	for _, rule := range s.library.ExpandedRulesFor(category) {
		expr := rule.Pattern.String()
		if seen[expr] {
			continue
		}
		if rule.Matches(text) {
			seen[expr] = true
			b.PatternHits++
		}
	}

	keywords := make(map[string]bool)
	for _, kw := range profile.Keywords {
		kw = strings.ToLower(kw)
		if kw != "" && strings.Contains(lower, kw) {
			keywords[kw] = true
		}
	}
	for kw := range keywords {
		b.MatchedKeywords = append(b.MatchedKeywords, kw)
	}
	sort.Strings(b.MatchedKeywords)

	if len(profile.ContextIndicators) > 0 {
		found := 0
		for _, ind := range profile.ContextIndicators {
			if strings.Contains(lower, strings.ToLower(ind)) {
				found++
			}
		}
		b.IndicatorRatio = float64(found) / float64(len(profile.ContextIndicators))
	}

	score := patternWeight*float64(b.PatternHits) +
		keywordWeight*float64(len(b.MatchedKeywords)) +
		contextWeight*b.IndicatorRatio
	if score > 1 {
		score = 1
	}
	b.Confidence = score
	return b
}

// Toxicity returns min(1, toxicWords/words*10) over whitespace-separated
// words. Inclusive input scores zero.
func (s *Scorer) Toxicity(text string) float64 {
	gate := s.classifier.Gate(text)
	if gate.Positive {
		return 0
	}
	return ToxicityRatio(gate.Effective)
}

// ToxicityRatio is the ungated toxicity computation
func ToxicityRatio(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}

	toxic := 0
	for _, w := range words {
		for _, t := range toxicWords {
			if strings.Contains(w, t) {
				toxic++
				break
			}
		}
	}

	ratio := float64(toxic) / float64(len(words)) * 10
	if ratio > 1 {
		return 1
	}
	return ratio
}
