// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package context

// inclusivePhrases are matched as lowercase substrings
var inclusivePhrases = []string{
	"all people should be treated equally",
	"all peoples should be treat equally",
	"everyone deserves respect",
	"all humans are equal",
	"treat everyone fairly",
	"respect all people",
	"equal rights for all",
	"diversity and inclusion",
	"inclusive environment",
	"fair treatment",
	"equal opportunity",
	"respectful communication",
	"inclusive language",
	"diverse perspectives",
	"equal access",
	"fair representation",
	"inclusive culture",
	"equal treatment",
	"respectful dialogue",
	"inclusive practices",
	"fair assessment",
}

// inclusiveTemplates are generalizations whose predicate is benign. "are" only
// counts with an affirming complement, so "all people are lazy" stays negative.
var inclusiveTemplates = []string{
	`(?i)\b(?:all\s+people|everyone|everybody)\s+(?:should|can|could|have|has|deserves?|needs?|will|must|matters?)\b`,
	`(?i)\b(?:all\s+people|everyone|everybody)\s+(?:are|is)\s+(?:equal|equally|valued|valuable|welcome|important|unique|capable|deserving|worthy|entitled\s+to\s+respect)\b`,
	`(?i)\btreat\s+(?:everyone|all\s+people|others)\s+(?:equally|fairly|with\s+(?:respect|kindness|dignity))\b`,
	`(?i)\bequal\s+(?:rights|opportunit(?:y|ies)|treatment|access|pay)\b`,
	`(?i)\binclusive\s+(?:environment|culture|practices|language|workplace|team)\b`,
	`(?i)\bdiversity\s+(?:and|&)\s+inclusion\b`,
	`(?i)\brespect\s+all\s+people\b`,
}

// negativeWords mark text as hostile. Stems are prefix-matched on a word boundary.
var negativeWords = []string{
	"stupid", "idiot", "terrible", "awful", "hate", "disgusting",
	`kill(?:s|ed|ing)?\b`, `die(?:s|d)?\b`, "racist", "sexist", `toxic\b`, "discriminatory",
	"superior", "inferior", `weak\b`, `lazy\b`, "aggressive", "emotional",
}

var negativeGeneralizations = []string{
	`(?i)\ball\s+\w+\s+(?:are|can't|won't|don't|is|was)\s+(?:stupid|weak|lazy|aggressive|emotional)\b`,
	`(?i)\bevery\s+\w+\s+(?:is|are|can't|won't)\s+(?:stupid|weak|lazy|aggressive|emotional)\b`,
	`(?i)\b(?:women|men|males|females)\s+(?:are|can't|won't|don't)\s+(?:stupid|weak|lazy|aggressive|emotional)\b`,
}
