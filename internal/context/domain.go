// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package context

import (
	"strings"
)

// Domain is the communication setting a text most likely comes from
type Domain string

const (
	DomainTeamCommunication Domain = "team_communication"
	DomainDecisionMaking    Domain = "decision_making"
	DomainPersonnel         Domain = "personnel"
	DomainFeedback          Domain = "feedback"
	DomainAnalysis          Domain = "analysis"
	DomainGeneral           Domain = "general"
)

// domainOrder fixes iteration order so ties resolve the same way every run
var domainOrder = []Domain{
	DomainTeamCommunication,
	DomainDecisionMaking,
	DomainPersonnel,
	DomainFeedback,
	DomainAnalysis,
}

// DomainClassifier identifies the communication domain of a text
type DomainClassifier struct {
	domainKeywords map[Domain][]string
}

// NewDomainClassifier creates a communication domain classifier
func NewDomainClassifier() *DomainClassifier {
	domainKeywords := map[Domain][]string{
		DomainTeamCommunication: {
			"team", "meeting", "standup", "slack", "channel", "sync",
			"colleague", "everyone", "we all", "call", "chat",
		},
		DomainDecisionMaking: {
			"decision", "decide", "finalize", "approve", "proceed",
			"consensus", "vote", "option", "proposal", "agree",
		},
		DomainPersonnel: {
			"hire", "hiring", "candidate", "interview", "promotion",
			"employee", "salary", "resume", "graduate", "university",
			"recruit", "onboarding",
		},
		DomainFeedback: {
			"feedback", "review", "evaluation", "performance", "criticism",
			"comment", "rating", "appraisal",
		},
		DomainAnalysis: {
			"data", "evidence", "research", "study", "result",
			"analysis", "report", "metric", "finding",
		},
	}

	return &DomainClassifier{domainKeywords: domainKeywords}
}

// ClassifyDomain returns the best matching domain and the share of keyword
// hits it accounts for
func (dc *DomainClassifier) ClassifyDomain(content string) (Domain, float64) {
	lowerContent := strings.ToLower(content)

	// Sample content for analysis (first 5000 chars)
	sample := lowerContent
	if len(lowerContent) > 5000 {
		sample = lowerContent[:5000]
	}

	domainScores := make(map[Domain]int)
	totalKeywords := 0

	for _, domain := range domainOrder {
		for _, keyword := range dc.domainKeywords[domain] {
			if strings.Contains(sample, keyword) {
				domainScores[domain]++
				totalKeywords++
			}
		}
	}

	if totalKeywords == 0 {
		return DomainGeneral, 0.0
	}

	bestDomain := DomainGeneral
	bestScore := 0
	for _, domain := range domainOrder {
		if domainScores[domain] > bestScore {
			bestScore = domainScores[domain]
			bestDomain = domain
		}
	}

	confidence := float64(bestScore) / float64(totalKeywords)

	// Require minimum confidence threshold
	if confidence < 0.3 {
		return DomainGeneral, confidence
	}

	return bestDomain, confidence
}
