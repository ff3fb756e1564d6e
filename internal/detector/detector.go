// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"regexp"
	"time"
)

// Tier separates the strict rule set used by the rule matcher from the
// permissive set only the heuristic scorer evaluates.
type Tier string

const (
	TierCanonical Tier = "canonical"
	TierExpanded  Tier = "expanded"
)

// PatternRule is a single compiled detection rule
type PatternRule struct {
	Category       Category
	Pattern        *regexp.Regexp
	BaseConfidence float64
	BaseSeverity   Severity
	Tier           Tier

	// Source names where the rule came from ("builtin", "examples", or an extension file path)
	Source string
}

// Matches reports whether the rule fires anywhere in text
func (r PatternRule) Matches(text string) bool {
	return r.Pattern != nil && r.Pattern.MatchString(text)
}

// FindingSource records which stage of the pipeline produced a finding
type FindingSource string

const (
	SourceRules     FindingSource = "rules"
	SourceHeuristic FindingSource = "heuristic"
	SourceBoth      FindingSource = "both"
)

// BiasFinding is one detected category for one analysis call
type BiasFinding struct {
	Category        Category      `json:"category" yaml:"category"`
	Confidence      float64       `json:"confidence" yaml:"confidence"`
	Severity        Severity      `json:"severity" yaml:"severity"`
	Explanation     string        `json:"explanation" yaml:"explanation"`
	Suggestion      string        `json:"suggestion" yaml:"suggestion"`
	Impact          string        `json:"impact,omitempty" yaml:"impact,omitempty"`
	Context         string        `json:"context,omitempty" yaml:"context,omitempty"`
	MatchedKeywords []string      `json:"matched_keywords,omitempty" yaml:"matched_keywords,omitempty"`
	Examples        []string      `json:"examples,omitempty" yaml:"examples,omitempty"`
	Source          FindingSource `json:"source" yaml:"source"`
}

// Counts summarises findings by category and severity
type Counts struct {
	Total      int              `json:"total" yaml:"total"`
	ByCategory map[Category]int `json:"by_category" yaml:"by_category"`
	BySeverity map[Severity]int `json:"by_severity" yaml:"by_severity"`
}

// TextAnalysis is the result of analysing one piece of text
type TextAnalysis struct {
	InputText       string        `json:"input_text" yaml:"input_text"`
	Findings        []BiasFinding `json:"findings" yaml:"findings"`
	ToxicityScore   float64       `json:"toxicity_score" yaml:"toxicity_score"`
	OverallRisk     Severity      `json:"overall_risk" yaml:"overall_risk"`
	Recommendations []string      `json:"recommendations" yaml:"recommendations"`
	ImprovedText    string        `json:"improved_text" yaml:"improved_text"`

	// Positive is set when the context gate treated the whole input as inclusive
	Positive   bool     `json:"positive" yaml:"positive"`
	Counts     Counts   `json:"counts" yaml:"counts"`
	Insights   []string `json:"insights,omitempty" yaml:"insights,omitempty"`
	Complexity float64  `json:"complexity" yaml:"complexity"`
}

// HasCategory reports whether the analysis contains a finding for c
func (a TextAnalysis) HasCategory(c Category) bool {
	_, ok := a.Finding(c)
	return ok
}

// Finding returns the finding for c, if any
func (a TextAnalysis) Finding(c Category) (BiasFinding, bool) {
	for _, f := range a.Findings {
		if f.Category == c {
			return f, true
		}
	}
	return BiasFinding{}, false
}

// MaxSeverity returns the highest severity among the findings
func (a TextAnalysis) MaxSeverity() Severity {
	max := SeverityNone
	for _, f := range a.Findings {
		if f.Severity > max {
			max = f.Severity
		}
	}
	return max
}

// Report ties an analysis to the document it came from
type Report struct {
	Source     string         `json:"source" yaml:"source"`
	SourceType string         `json:"source_type,omitempty" yaml:"source_type,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Analysis   TextAnalysis   `json:"analysis" yaml:"analysis"`

	SuppressedFindings []SuppressedFinding `json:"suppressed,omitempty" yaml:"suppressed,omitempty"`
}

// SuppressedFinding represents a finding that was suppressed by a rule
type SuppressedFinding struct {
	Finding      BiasFinding `json:"finding" yaml:"finding"`
	SuppressedBy string      `json:"suppressed_by" yaml:"suppressed_by"`
	RuleReason   string      `json:"rule_reason" yaml:"rule_reason"`
	ExpiresAt    *time.Time  `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Expired      bool        `json:"expired" yaml:"expired"`
}

// SuppressedCount counts findings hidden by active rules
func (r Report) SuppressedCount() int {
	n := 0
	for _, s := range r.SuppressedFindings {
		if !s.Expired {
			n++
		}
	}
	return n
}
