// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"sort"

	"bias-scan/internal/context"
	"bias-scan/internal/detector"
	"bias-scan/internal/patterns"
)

// Matcher applies the canonical rule tier and reports which categories fired.
// It does no scoring.
type Matcher struct {
	library    *patterns.Library
	classifier *context.Classifier
}

// NewMatcher creates a matcher over a compiled library
func NewMatcher(library *patterns.Library, classifier *context.Classifier) *Matcher {
	return &Matcher{
		library:    library,
		classifier: classifier,
	}
}

// MatchRules returns the sorted set of categories with at least one matching
// canonical rule. Inclusive input yields an empty set.
func (m *Matcher) MatchRules(text string) []detector.Category {
	gate := m.classifier.Gate(text)
	if gate.Positive || gate.Effective == "" {
		return []detector.Category{}
	}

	categories := []detector.Category{}
	for _, category := range m.library.AllCategories() {
		for _, rule := range m.library.RulesFor(category) {
			if rule.Matches(gate.Effective) {
				categories = append(categories, category)
				break
			}
		}
	}
	return categories
}

// MatchDetails returns the distinct matched substrings per category, in the
// order they were first seen
func (m *Matcher) MatchDetails(text string) map[detector.Category][]string {
	details := make(map[detector.Category][]string)

	gate := m.classifier.Gate(text)
	if gate.Positive || gate.Effective == "" {
		return details
	}

	for _, category := range m.library.AllCategories() {
		seen := make(map[string]bool)
		for _, rule := range m.library.RulesFor(category) {
			for _, match := range rule.Pattern.FindAllString(gate.Effective, -1) {
				if !seen[match] {
					seen[match] = true
					details[category] = append(details[category], match)
				}
			}
		}
	}
	return details
}

// Hit is one canonical rule that fired, with the weights the library gave it.
// The engine derives finding confidence elsewhere; these are reported for
// inspection only.
type Hit struct {
	Category       detector.Category
	Match          string
	BaseConfidence float64
	BaseSeverity   detector.Severity
	Source         string
}

// Hits returns every matching canonical rule with its first match, in
// category then rule order
func (m *Matcher) Hits(text string) []Hit {
	gate := m.classifier.Gate(text)
	if gate.Positive || gate.Effective == "" {
		return nil
	}

	var hits []Hit
	for _, category := range m.library.AllCategories() {
		for _, rule := range m.library.RulesFor(category) {
			if rule.Pattern == nil {
				continue
			}
			if match := rule.Pattern.FindString(gate.Effective); match != "" {
				hits = append(hits, Hit{
					Category:       category,
					Match:          match,
					BaseConfidence: rule.BaseConfidence,
					BaseSeverity:   rule.BaseSeverity,
					Source:         rule.Source,
				})
			}
		}
	}
	return hits
}

// Categories returns the keys of a MatchDetails result in sorted order
func Categories(details map[detector.Category][]string) []detector.Category {
	categories := make([]detector.Category, 0, len(details))
	for c := range details {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	return categories
}
