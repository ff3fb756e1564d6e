// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"
	"strings"

	"bias-scan/internal/detector"
	"bias-scan/internal/help"
	"bias-scan/internal/patterns"
)

// categoryHelp describes one bias category for --help <category>
type categoryHelp struct {
	category detector.Category
	entry    CatalogEntry
	profile  patterns.CategoryProfile
	rules    int
}

func (c categoryHelp) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:                strings.ToUpper(string(c.category)),
		ShortDescription:    c.entry.Explanation,
		DetailedDescription: fmt.Sprintf("%s.\n\nImpact: %s.\nSuggestion: %s.\n\nSeverity weight %.2f, %d detection rules.", c.entry.Explanation, c.entry.Impact, c.entry.Suggestion, c.profile.SeverityWeight, c.rules),
		Patterns:            c.entry.Examples,
		PositiveKeywords:    c.profile.Keywords,
		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Pattern match", Description: "Each distinct matching rule", Weight: 30},
			{Name: "Keyword", Description: "Each category keyword present", Weight: 20},
			{Name: "Context indicators", Description: strings.Join(c.profile.ContextIndicators, ", "), Weight: 30},
		},
	}
}

// HelpProviders returns the detection stages and one provider per category
func (e *Engine) HelpProviders() []help.Provider {
	providers := []help.Provider{e.matcher, e.scorer}
	for _, c := range e.library.AllCategories() {
		providers = append(providers, categoryHelp{
			category: c,
			entry:    Lookup(c),
			profile:  e.library.Profile(c),
			rules:    len(e.library.ExpandedRulesFor(c)),
		})
	}
	return providers
}
