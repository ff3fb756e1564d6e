// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rewriter

import (
	"regexp"

	"bias-scan/internal/detector"
)

func sub(pattern, replacement string) Substitution {
	return Substitution{
		Pattern:     regexp.MustCompile(`(?i)` + pattern),
		Replacement: replacement,
	}
}

const eliteSchools = `(iit|mit|harvard|oxford|cambridge|stanford|yale|princeton|an?\s+ivy\s+league(?:\s+school)?|an?\s+elite\s+school|a\s+top\s+university)`

// toxicSynonyms maps hostile words onto neutral ones
var toxicSynonyms = []struct{ word, replacement string }{
	{`stupid`, "challenging"},
	{`terrible`, "difficult"},
	{`awful`, "problematic"},
	{`hate`, "dislike"},
	{`idiot`, "person"},
	{`kill`, "eliminate"},
	{`die`, "cease"},
}

func builtinSubstitutions() map[detector.Category][]Substitution {
	generalizations := []Substitution{
		sub(`\ball\s+\w+\s+are\b`, "some people are"),
		sub(`\bevery\s+\w+\s+is\b`, "some people are"),
		sub(`\btypical\s+of\b`, "some examples of"),
	}

	groupGeneralization := []Substitution{
		sub(`\b(?:all\s+)?(?:black|white|asian|hispanic|latino|arab|african|european|those|these)\s+people\s+are\b`, "some individuals are"),
	}

	toxic := make([]Substitution, 0, len(toxicSynonyms))
	for _, s := range toxicSynonyms {
		toxic = append(toxic, sub(`\b`+s.word+`\b`, s.replacement))
	}

	return map[detector.Category][]Substitution{
		detector.GenderStereotyping: {
			sub(`\b(?:all\s+(?:men|women|males|females)|males|females)\s+are\b`, "some people are"),
		},
		detector.Stereotyping:   generalizations,
		detector.Generalization: generalizations,
		detector.ToxicLanguage:  toxic,
		detector.Groupthink: {
			sub(`\beveryone\s+agrees\b`, "many people agree"),
			sub(`\bwe\s+all\s+think\b`, "we generally think"),
			sub(`\bnobody\s+disagrees\b`, "most people agree"),
		},
		detector.Confirmation: {
			sub(`\bproves\s+my\s+point\b`, "supports this view"),
			sub(`\bas\s+expected\b`, "as anticipated"),
			sub(`\bconfirms\s+what\s+I\s+thought\b`, "aligns with this perspective"),
		},
		detector.RacialStereotyping: groupGeneralization,
		detector.CulturalBias:       groupGeneralization,
		detector.AgeBias: {
			sub(`\b(?:older|younger)\s+(?:people|workers|employees)\b`, "people with different experience levels"),
		},
		detector.EducationalBias: {
			sub(`\bfrom\s+`+eliteSchools+`,?\s+(?:he|she|they)(?:'ll|\s+will)\s+be\s+better(?:\s+than\s+(?:the\s+)?(?:others|everyone(?:\s+else)?|rest))?`,
				"from $1, and brings their own experience"),
		},
		detector.DismissiveLanguage: {
			sub(`\bwhatever,\s*`, ""),
			sub(`\bI\s+don'?t\s+care\b`, "I have concerns"),
		},
	}
}
