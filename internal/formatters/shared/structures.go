// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"bias-scan/internal/detector"
	"bias-scan/internal/formatters"
)

// Response is the top-level structure for JSON/YAML output
type Response struct {
	Summary Summary  `json:"summary" yaml:"summary"`
	Results []Result `json:"results" yaml:"results"`
}

// Summary aggregates the displayed findings of every report
type Summary struct {
	Sources     int            `json:"sources" yaml:"sources"`
	Findings    int            `json:"findings" yaml:"findings"`
	Suppressed  int            `json:"suppressed" yaml:"suppressed"`
	HighestRisk string         `json:"highest_risk" yaml:"highest_risk"`
	BySeverity  map[string]int `json:"by_severity" yaml:"by_severity"`
	ByCategory  map[string]int `json:"by_category" yaml:"by_category"`
}

// Result is one analysed source in JSON/YAML format
type Result struct {
	Source          string                 `json:"source" yaml:"source"`
	SourceType      string                 `json:"source_type,omitempty" yaml:"source_type,omitempty"`
	OverallRisk     string                 `json:"overall_risk" yaml:"overall_risk"`
	ToxicityScore   float64                `json:"toxicity_score" yaml:"toxicity_score"`
	Positive        bool                   `json:"positive" yaml:"positive"`
	Complexity      float64                `json:"complexity" yaml:"complexity"`
	Findings        []Finding              `json:"findings" yaml:"findings"`
	Recommendations []string               `json:"recommendations" yaml:"recommendations"`
	Insights        []string               `json:"insights,omitempty" yaml:"insights,omitempty"`
	ImprovedText    string                 `json:"improved_text,omitempty" yaml:"improved_text,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Suppressed      []Suppressed           `json:"suppressed,omitempty" yaml:"suppressed,omitempty"`
}

// Finding is a single finding in JSON/YAML format
type Finding struct {
	Category        string   `json:"category" yaml:"category"`
	Severity        string   `json:"severity" yaml:"severity"`
	Confidence      float64  `json:"confidence" yaml:"confidence"`
	Source          string   `json:"source" yaml:"source"`
	Explanation     string   `json:"explanation" yaml:"explanation"`
	Suggestion      string   `json:"suggestion" yaml:"suggestion"`
	Impact          string   `json:"impact,omitempty" yaml:"impact,omitempty"`
	Context         string   `json:"context,omitempty" yaml:"context,omitempty"`
	MatchedKeywords []string `json:"matched_keywords,omitempty" yaml:"matched_keywords,omitempty"`
	Examples        []string `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// Suppressed is a suppressed finding in JSON/YAML format
type Suppressed struct {
	Finding      Finding `json:"finding" yaml:"finding"`
	SuppressedBy string  `json:"suppressed_by" yaml:"suppressed_by"`
	Reason       string  `json:"reason" yaml:"reason"`
	Expired      bool    `json:"expired" yaml:"expired"`
}

// ConvertFinding converts a detector finding, honouring Verbose and ShowMatch
func ConvertFinding(f detector.BiasFinding, options formatters.FormatterOptions) Finding {
	out := Finding{
		Category:    string(f.Category),
		Severity:    f.Severity.String(),
		Confidence:  f.Confidence,
		Source:      string(f.Source),
		Explanation: f.Explanation,
		Suggestion:  f.Suggestion,
	}
	if options.Verbose {
		out.Impact = f.Impact
		out.Context = f.Context
		out.Examples = f.Examples
	}
	if options.ShowMatch || options.Verbose {
		out.MatchedKeywords = f.MatchedKeywords
	}
	return out
}

// ConvertReports converts reports to the JSON/YAML structure, applying the
// severity and category filters to findings and summary alike
func ConvertReports(reports []detector.Report, options formatters.FormatterOptions) Response {
	resp := Response{
		Summary: Summary{
			Sources:     len(reports),
			HighestRisk: detector.SeverityNone.String(),
			BySeverity:  map[string]int{"low": 0, "medium": 0, "high": 0},
			ByCategory:  map[string]int{},
		},
		Results: make([]Result, 0, len(reports)),
	}

	highest := detector.SeverityNone
	for _, report := range reports {
		a := report.Analysis
		result := Result{
			Source:          report.Source,
			SourceType:      report.SourceType,
			OverallRisk:     a.OverallRisk.String(),
			ToxicityScore:   a.ToxicityScore,
			Positive:        a.Positive,
			Complexity:      a.Complexity,
			Findings:        []Finding{},
			Recommendations: a.Recommendations,
			Insights:        a.Insights,
			Metadata:        report.Metadata,
		}
		if options.ShowImproved || options.Verbose {
			result.ImprovedText = a.ImprovedText
		}
		if a.OverallRisk > highest {
			highest = a.OverallRisk
		}

		for _, f := range options.Filter(a.Findings) {
			result.Findings = append(result.Findings, ConvertFinding(f, options))
			resp.Summary.Findings++
			resp.Summary.BySeverity[f.Severity.String()]++
			resp.Summary.ByCategory[string(f.Category)]++
		}

		resp.Summary.Suppressed += report.SuppressedCount()
		if options.ShowSuppressed {
			for _, s := range report.SuppressedFindings {
				result.Suppressed = append(result.Suppressed, Suppressed{
					Finding:      ConvertFinding(s.Finding, options),
					SuppressedBy: s.SuppressedBy,
					Reason:       s.RuleReason,
					Expired:      s.Expired,
				})
			}
		}

		resp.Results = append(resp.Results, result)
	}
	resp.Summary.HighestRisk = highest.String()

	return resp
}
