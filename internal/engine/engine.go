// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package engine merges the rule and heuristic stages into a TextAnalysis.
//
// An Engine is immutable after construction and safe for concurrent use.
// It performs no I/O and never logs.
package engine

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	biascontext "bias-scan/internal/context"
	"bias-scan/internal/detector"
	"bias-scan/internal/patterns"
	"bias-scan/internal/rewriter"
	"bias-scan/internal/validators/heuristic"
	"bias-scan/internal/validators/rules"
)

// Confidence given to categories only the rule stage found
const (
	RuleOnlyConfidence         = 0.6
	RuleOnlyNegativeConfidence = 0.7
)

// DefaultMaxInputBytes caps how much text the detectors see
const DefaultMaxInputBytes = 1 << 20

// Engine is the hybrid bias detector
type Engine struct {
	library    *patterns.Library
	classifier *biascontext.Classifier
	matcher    *rules.Matcher
	scorer     *heuristic.Scorer
	rewriter   *rewriter.Rewriter

	maxInputBytes int
}

// Option configures an Engine
type Option func(*Engine)

// WithRewriter replaces the built-in substitution table
func WithRewriter(r *rewriter.Rewriter) Option {
	return func(e *Engine) {
		e.rewriter = r
	}
}

// WithMaxInputBytes sets the detection input cap. Zero or less disables it.
func WithMaxInputBytes(n int) Option {
	return func(e *Engine) {
		e.maxInputBytes = n
	}
}

// New wires an engine around an already compiled library and classifier
func New(library *patterns.Library, classifier *biascontext.Classifier, opts ...Option) (*Engine, error) {
	if library == nil {
		return nil, errNilLibrary
	}
	if classifier == nil {
		classifier = biascontext.NewClassifier()
	}

	e := &Engine{
		library:       library,
		classifier:    classifier,
		matcher:       rules.NewMatcher(library, classifier),
		scorer:        heuristic.NewScorer(library, classifier),
		rewriter:      rewriter.New(),
		maxInputBytes: DefaultMaxInputBytes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewDefault builds an engine over the built-in library in whole_text mode
func NewDefault() (*Engine, error) {
	lib, err := patterns.New()
	if err != nil {
		return nil, err
	}
	return New(lib, biascontext.NewClassifier())
}

// Library returns the compiled pattern library
func (e *Engine) Library() *patterns.Library { return e.library }

// Classifier returns the context classifier
func (e *Engine) Classifier() *biascontext.Classifier { return e.classifier }

// Matcher returns the rule stage
func (e *Engine) Matcher() *rules.Matcher { return e.matcher }

// Scorer returns the heuristic stage
func (e *Engine) Scorer() *heuristic.Scorer { return e.scorer }

// Analyze runs the full pipeline. It never panics and never fails.
func (e *Engine) Analyze(text string) detector.TextAnalysis {
	if strings.TrimSpace(text) == "" {
		return emptyAnalysis(text)
	}

	input := e.truncate(text)
	classification := e.classifier.Classify(input)
	gate := e.classifier.Gate(input)

	ruleCategories := e.matcher.MatchRules(input)
	scored := e.scorer.Score(input)
	toxicity := e.scorer.Toxicity(input)

	findings := e.merge(ruleCategories, scored, classification.IsNegative)
	for i := range findings {
		entry := Lookup(findings[i].Category)
		findings[i].Explanation = entry.Explanation
		findings[i].Suggestion = entry.Suggestion
		findings[i].Impact = entry.Impact
		findings[i].Context = contextFor(entry, classification.Domain)
		findings[i].Examples = append([]string(nil), entry.Examples...)
	}

	categories := make([]detector.Category, 0, len(findings))
	for _, f := range findings {
		categories = append(categories, f.Category)
	}

	analysis := detector.TextAnalysis{
		InputText:       text,
		Findings:        findings,
		ToxicityScore:   toxicity,
		OverallRisk:     detector.OverallRisk(findings, toxicity),
		Recommendations: recommendations(findings, toxicity),
		ImprovedText:    e.rewriter.Rewrite(text, categories),
		Positive:        gate.Positive,
		Counts:          countFindings(findings),
		Insights:        insights(findings),
		Complexity:      complexity(input),
	}
	return analysis
}

// AnalyzeBatch analyses texts in order, stopping between items when ctx is done
func (e *Engine) AnalyzeBatch(ctx context.Context, texts []string) ([]detector.TextAnalysis, error) {
	results := make([]detector.TextAnalysis, 0, len(texts))
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, e.Analyze(text))
	}
	return results, nil
}

// merge unions both stages, one finding per category, ordered by confidence
// descending then category name
func (e *Engine) merge(ruleCategories []detector.Category, scored []detector.BiasFinding, negative bool) []detector.BiasFinding {
	byCategory := make(map[detector.Category]detector.BiasFinding, len(scored)+len(ruleCategories))
	for _, f := range scored {
		if existing, ok := byCategory[f.Category]; ok && existing.Confidence >= f.Confidence {
			continue
		}
		byCategory[f.Category] = f
	}

	ruleOnly := RuleOnlyConfidence
	if negative {
		ruleOnly = RuleOnlyNegativeConfidence
	}

	for _, c := range ruleCategories {
		if f, ok := byCategory[c]; ok {
			f.Source = detector.SourceBoth
			byCategory[c] = f
			continue
		}
		weight := e.library.Profile(c).SeverityWeight
		byCategory[c] = detector.BiasFinding{
			Category:   c,
			Confidence: ruleOnly,
			Severity:   detector.SeverityFromScore((ruleOnly + weight) / 2),
			Source:     detector.SourceRules,
		}
	}

	findings := make([]detector.BiasFinding, 0, len(byCategory))
	for _, f := range byCategory {
		findings = append(findings, f)
	}
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Confidence != findings[j].Confidence {
			return findings[i].Confidence > findings[j].Confidence
		}
		return findings[i].Category < findings[j].Category
	})
	return findings
}

// truncate cuts text to the input cap on a rune boundary
func (e *Engine) truncate(text string) string {
	if e.maxInputBytes <= 0 || len(text) <= e.maxInputBytes {
		return text
	}
	cut := e.maxInputBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func emptyAnalysis(text string) detector.TextAnalysis {
	return detector.TextAnalysis{
		InputText:       text,
		Findings:        []detector.BiasFinding{},
		OverallRisk:     detector.SeverityLow,
		Recommendations: []string{},
		ImprovedText:    text,
		Counts:          countFindings(nil),
	}
}
