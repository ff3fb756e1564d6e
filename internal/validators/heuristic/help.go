// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package heuristic

import "bias-scan/internal/help"

// GetCheckInfo returns standardized information about the heuristic stage
func (s *Scorer) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "HEURISTIC",
		ShortDescription: "Scores each bias category from patterns, keywords and context words",
		DetailedDescription: `The heuristic stage re-scans the text with the permissive rule tier and adds
keyword and context-indicator evidence. For each category:

  confidence = min(1, 0.3 x matching patterns + 0.2 x matched keywords + 0.3 x indicator ratio)

A category is reported only when its confidence exceeds 0.4. Severity is derived from the
average of the confidence and the category's fixed severity weight: above 0.7 is high,
above 0.4 is medium, otherwise low.

The stage also computes a toxicity score: the share of words containing a toxic stem,
multiplied by ten and capped at 1.0.`,
		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Pattern match", Description: "Each distinct matching rule of the expanded tier", Weight: 30},
			{Name: "Keyword", Description: "Each category keyword found in the text", Weight: 20},
			{Name: "Context indicators", Description: "Fraction of the category's indicator words present", Weight: 30},
		},
		PositiveKeywords: []string{"everyone", "consensus", "women", "stupid", "prestigious", "typical"},
		NegativeKeywords: []string{"all people should", "everyone deserves", "equal rights", "diversity and inclusion"},
		Examples: []string{
			"bias-scan --text \"This is absolutely stupid and terrible.\" --verbose",
		},
	}
}
