// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"bias-scan/internal/context"
	"bias-scan/internal/detector"
)

// CatalogEntry is the static description attached to every finding of a category
type CatalogEntry struct {
	Explanation    string
	Suggestion     string
	Impact         string
	Examples       []string
	DefaultContext string
}

var genericEntry = CatalogEntry{
	Explanation:    "Language pattern that may contain bias",
	Suggestion:     "Review and revise for inclusivity",
	Impact:         "May be perceived as unfair by parts of the audience",
	Examples:       []string{"Pattern detected in text"},
	DefaultContext: "General communication context",
}

// domainContexts phrase Finding.Context from the classifier's domain
var domainContexts = map[context.Domain]string{
	context.DomainTeamCommunication: "Detected in team communication context",
	context.DomainDecisionMaking:    "Found in decision-making or evaluation context",
	context.DomainPersonnel:         "Identified in personnel or demographic context",
	context.DomainFeedback:          "Detected in feedback or communication context",
	context.DomainAnalysis:          "Found in analysis or research context",
}

var catalog = map[detector.Category]CatalogEntry{
	detector.Groupthink: {
		Explanation:    "Assuming consensus without considering dissenting views or alternative perspectives",
		Suggestion:     "Actively seek diverse perspectives and encourage constructive disagreement before making decisions",
		Impact:         "Can lead to poor decision-making and missed opportunities",
		Examples:       []string{"Everyone agrees with...", "We all think...", "Nobody disagrees..."},
		DefaultContext: "Detected in team communication context",
	},
	detector.Anchoring: {
		Explanation:    "Relying too heavily on first piece of information when making decisions",
		Suggestion:     "Evaluate all information equally and consider multiple data points before forming conclusions",
		Impact:         "May result in biased judgments based on initial impressions",
		Examples:       []string{"My first impression...", "Initially I thought...", "At first glance..."},
		DefaultContext: "Found in decision-making or evaluation context",
	},
	detector.GenderStereotyping: {
		Explanation:    "Language that stereotypes or discriminates based on gender",
		Suggestion:     "Use gender-neutral language and focus on individual capabilities",
		Impact:         "Perpetuates stereotypes and creates unfair biases in evaluation",
		Examples:       []string{"All men are...", "Women are emotional...", "Male-dominated field..."},
		DefaultContext: "Identified in personnel or demographic context",
	},
	detector.CulturalBias: {
		Explanation:    "Making broad generalizations based on identity characteristics, cultural background, or demographics",
		Suggestion:     "Evaluate individuals based on their actions, abilities, and merits, not demographic factors",
		Impact:         "Perpetuates stereotypes and creates unfair biases in evaluation",
		Examples:       []string{"People from that background...", "Typical of their culture...", "This person is from..."},
		DefaultContext: "Identified in personnel or demographic context",
	},
	detector.ToxicLanguage: {
		Explanation:    "Using emotionally charged, offensive, or unprofessional language",
		Suggestion:     "Express concerns constructively and professionally, focusing on facts and solutions",
		Impact:         "Creates hostile environment and damages team relationships",
		Examples:       []string{"This is stupid...", "Terrible idea...", "I hate this..."},
		DefaultContext: "Detected in feedback or communication context",
	},
	detector.Confirmation: {
		Explanation:    "Seeking information that confirms existing beliefs while ignoring contradictory evidence",
		Suggestion:     "Actively seek evidence that challenges your assumptions and consider alternative viewpoints",
		Impact:         "Reinforces existing biases and prevents objective analysis",
		Examples:       []string{"This proves my point...", "As expected...", "This confirms what I thought..."},
		DefaultContext: "Found in analysis or research context",
	},
	detector.Stereotyping: {
		Explanation:    "Applying broad generalizations to entire groups of people",
		Suggestion:     "Treat each person as an individual, not as a representative of a group",
		Impact:         "Leads to unfair treatment and missed opportunities",
		Examples:       []string{"All engineers are...", "Every manager is...", "All students from..."},
		DefaultContext: "Identified in group or category context",
	},
	detector.AgeBias: {
		Explanation:    "Language that stereotypes or discriminates based on age",
		Suggestion:     "Focus on experience and skills rather than age-based assumptions",
		Impact:         "Excludes capable people at both ends of their careers",
		Examples:       []string{"Older workers can't adapt...", "Millennials are entitled...", "Too old for..."},
		DefaultContext: "Identified in personnel or demographic context",
	},
	detector.EducationalBias: {
		Explanation:    "Language that discriminates based on educational background or institution prestige",
		Suggestion:     "Focus on skills and demonstrated experience instead of where someone studied",
		Impact:         "Narrows hiring and promotion to a privileged subset of candidates",
		Examples:       []string{"From a prestigious university...", "IIT graduates are better...", "Elite school graduates..."},
		DefaultContext: "Identified in personnel or demographic context",
	},
	detector.Generalization: {
		Explanation:    "Language that makes broad generalizations without evidence",
		Suggestion:     "Use specific examples and avoid absolute statements",
		Impact:         "Overstates claims and discourages nuance",
		Examples:       []string{"They always...", "Nobody ever...", "Everyone can't..."},
		DefaultContext: "General communication context",
	},
	detector.DismissiveLanguage: {
		Explanation:    "Language that brushes off other people's ideas or concerns",
		Suggestion:     "Acknowledge the idea and explain your concerns specifically",
		Impact:         "Discourages participation and hides real objections",
		Examples:       []string{"Whatever...", "I don't care, do what you want...", "Not worth discussing..."},
		DefaultContext: "Detected in team communication context",
	},
	detector.HierarchicalBias: {
		Explanation:    "Discounting contributions based on seniority or rank",
		Suggestion:     "Evaluate ideas on their merit regardless of who proposes them",
		Impact:         "Silences junior staff and loses useful input",
		Examples:       []string{"Junior employees can't...", "Only senior managers should...", "Just an intern..."},
		DefaultContext: "Found in decision-making or evaluation context",
	},
	detector.DepartmentStereotyping: {
		Explanation:    "Generalizing about people based on the team or function they work in",
		Suggestion:     "Describe the specific behaviour instead of attributing it to a department",
		Impact:         "Builds silos and friction between teams",
		Examples:       []string{"Marketing people are all...", "Engineers are socially awkward...", "Typical sales..."},
		DefaultContext: "Identified in group or category context",
	},
	detector.RacialStereotyping: {
		Explanation:    "Language that stereotypes or discriminates based on race or ethnicity",
		Suggestion:     "Focus on individual characteristics and avoid racial or ethnic generalizations",
		Impact:         "Causes serious harm and exposes the organisation to discrimination claims",
		Examples:       []string{"All Asians are...", "Black people are naturally...", "Ethnic group tendencies..."},
		DefaultContext: "Identified in personnel or demographic context",
	},
	detector.ReligiousBias: {
		Explanation:    "Language that stereotypes people based on their religion or belief",
		Suggestion:     "Avoid attributing traits to people because of their faith",
		Impact:         "Alienates colleagues and can amount to religious discrimination",
		Examples:       []string{"Muslims are all...", "Christians are all judgmental...", "All atheists are..."},
		DefaultContext: "Identified in personnel or demographic context",
	},
	detector.NationalityBias: {
		Explanation:    "Language that stereotypes people based on their nationality or origin",
		Suggestion:     "Refer to individuals and their actions rather than national stereotypes",
		Impact:         "Undermines international collaboration and inclusion",
		Examples:       []string{"Americans are all...", "French people are all rude...", "Those foreigners..."},
		DefaultContext: "Identified in personnel or demographic context",
	},
	detector.SocioeconomicBias: {
		Explanation:    "Language that stereotypes people based on income, wealth or class",
		Suggestion:     "Avoid linking character or ability to economic background",
		Impact:         "Reinforces class barriers in hiring and evaluation",
		Examples:       []string{"Poor people are all lazy...", "Rich people are all greedy...", "Middle class people are..."},
		DefaultContext: "Identified in personnel or demographic context",
	},
	detector.AvailabilityBias: {
		Explanation:    "Judging how common something is by how easily an example comes to mind",
		Suggestion:     "Check the claim against data rather than a memorable recent example",
		Impact:         "Skews risk estimates and priorities toward vivid anecdotes",
		Examples:       []string{"I saw this happen once, so...", "Recent examples prove...", "I remember this clearly..."},
		DefaultContext: "Found in analysis or research context",
	},
}

// Lookup returns the catalog entry of a category, or a generic entry
func Lookup(category detector.Category) CatalogEntry {
	if entry, ok := catalog[category]; ok {
		return entry
	}
	return genericEntry
}

func contextFor(entry CatalogEntry, domain context.Domain) string {
	if phrase, ok := domainContexts[domain]; ok {
		return phrase
	}
	return entry.DefaultContext
}
