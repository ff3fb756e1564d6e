// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rules

import "bias-scan/internal/help"

// GetCheckInfo returns standardized information about the rule stage
func (m *Matcher) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "RULES",
		ShortDescription: "Matches the canonical regex and phrase rules of every bias category",
		DetailedDescription: `The rule stage applies the strict, canonical tier of the pattern library to the text.

Every rule is case-insensitive and tolerant of extra whitespace between words. A category is
reported as soon as one of its rules matches; the stage itself assigns no confidence. Categories
found only by this stage receive a fixed confidence of 0.6, or 0.7 when the text also contains
hostile wording.

Inclusive statements such as "all people should be treated equally" are removed by the context
gate before any rule runs. In the default whole_text mode a single inclusive statement exempts the
entire input; use --classification-mode sentence to exempt only the inclusive sentences.`,
		Patterns: []string{
			"Blanket statements about a group (e.g., \"all women are\", \"every engineer is\")",
			"Consensus pressure (e.g., \"everyone agrees\", \"nobody disagrees\")",
			"Prestige comparisons (e.g., \"from IIT, he'll be better\")",
			"Hostile wording (e.g., \"this is absolutely stupid\")",
			"Literal reference sentences from the embedded example corpus",
		},
		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Pattern match", Description: "Any canonical rule of the category matches", Weight: 60},
			{Name: "Negative context", Description: "Hostile wording elsewhere in the text", Weight: 10},
		},
		ConfigurationInfo: `Additional rules can be appended with --patterns <file.yaml> or defaults.patterns_file.
Appended rules never change the order of the built-in ones.`,
		Examples: []string{
			"bias-scan --text \"Everyone agrees, let's ship it\" --show-match",
			"bias-scan --file notes.md --patterns team-rules.yaml",
		},
	}
}
