// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"
	"time"

	"bias-scan/internal/detector"
	"bias-scan/internal/formatters"

	"github.com/fatih/color"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
			"dim":     color.New(color.Faint),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors and tables"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(reports []detector.Report, options formatters.FormatterOptions) (string, error) {
	var builder strings.Builder

	shown := 0
	for _, report := range reports {
		findings := options.Filter(report.Analysis.Findings)
		shown += len(findings)
		f.appendReport(&builder, report, findings, options)
	}

	f.appendSummary(&builder, reports, shown, options)
	return builder.String(), nil
}

// paint applies a named color unless colors are disabled
func (f *Formatter) paint(name string, options formatters.FormatterOptions, format string, args ...interface{}) string {
	if options.NoColor {
		return fmt.Sprintf(format, args...)
	}
	return f.colors[name].Sprintf(format, args...)
}

func severityColor(s detector.Severity) string {
	switch s {
	case detector.SeverityHigh:
		return "red"
	case detector.SeverityMedium:
		return "yellow"
	default:
		return "green"
	}
}

// appendReport writes the header, findings table and optional sections of one report
func (f *Formatter) appendReport(builder *strings.Builder, report detector.Report, findings []detector.BiasFinding, options formatters.FormatterOptions) {
	a := report.Analysis
	risk := strings.ToUpper(a.OverallRisk.String())
	fmt.Fprintf(builder, "%s %s\n",
		f.paint("white", options, "== %s", report.Source),
		f.paint(severityColor(a.OverallRisk), options, "(risk %s, toxicity %.2f)", risk, a.ToxicityScore))

	if a.Positive {
		builder.WriteString(f.paint("green", options, "Inclusive context detected; no findings reported.") + "\n")
	}

	if len(findings) == 0 {
		builder.WriteString("No bias findings.\n")
	} else {
		f.appendHeaders(builder, options)
		for _, finding := range findings {
			if options.Verbose {
				f.appendDetailedFinding(builder, finding, options)
				continue
			}
			f.appendSummaryLine(builder, finding, false, options)
		}
	}

	if options.ShowSuppressed {
		for _, s := range report.SuppressedFindings {
			f.appendSummaryLine(builder, s.Finding, true, options)
			fmt.Fprintf(builder, "         suppressed by %s (%s, %s)\n", s.SuppressedBy, s.RuleReason, formatExpirationStatus(s.ExpiresAt, s.Expired))
		}
	}

	if len(findings) > 0 && len(a.Recommendations) > 0 {
		builder.WriteString(f.paint("cyan", options, "Recommendations:") + "\n")
		for _, rec := range a.Recommendations {
			fmt.Fprintf(builder, "  - %s\n", rec)
		}
	}

	if options.Verbose && len(a.Insights) > 0 {
		builder.WriteString(f.paint("cyan", options, "Insights:") + "\n")
		for _, insight := range a.Insights {
			fmt.Fprintf(builder, "  - %s\n", insight)
		}
	}

	if options.ShowImproved && a.ImprovedText != a.InputText {
		builder.WriteString(f.paint("cyan", options, "Improved text:") + "\n")
		for _, line := range strings.Split(a.ImprovedText, "\n") {
			fmt.Fprintf(builder, "  %s\n", line)
		}
	}
	builder.WriteString("\n")
}

// appendHeaders adds column headers to the string builder
func (f *Formatter) appendHeaders(builder *strings.Builder, options formatters.FormatterOptions) {
	if options.Verbose {
		return
	}
	header := fmt.Sprintf("%-8s %-24s %-8s %-9s %s", "LEVEL", "CATEGORY", "CONF%", "FOUND BY", "SUGGESTION")
	builder.WriteString(f.paint("white", options, "%s", header) + "\n")
	builder.WriteString(f.paint("white", options, "%s", strings.Repeat("-", 80)) + "\n")
}

// appendSummaryLine adds a single line summary to the string builder
func (f *Formatter) appendSummaryLine(builder *strings.Builder, finding detector.BiasFinding, suppressed bool, options formatters.FormatterOptions) {
	level := strings.ToUpper(finding.Severity.String())
	levelStr := f.paint(severityColor(finding.Severity), options, "[%-6s]", level)
	if suppressed {
		levelStr = f.paint("dim", options, "[%-6s]", "SUPP")
	}

	category := string(finding.Category)
	if len(category) > 24 {
		category = category[:21] + "..."
	}

	fmt.Fprintf(builder, "%s %s %s %s %s\n",
		levelStr,
		f.paint("cyan", options, "%-24s", category),
		f.paint("blue", options, "%7.2f%%", finding.Confidence*100),
		f.paint("magenta", options, "%-9s", finding.Source),
		finding.Suggestion)

	if options.ShowMatch && len(finding.MatchedKeywords) > 0 {
		fmt.Fprintf(builder, "         matched: %s\n", strings.Join(finding.MatchedKeywords, ", "))
	}
}

// appendDetailedFinding adds detailed finding information to the string builder
func (f *Formatter) appendDetailedFinding(builder *strings.Builder, finding detector.BiasFinding, options formatters.FormatterOptions) {
	builder.WriteString(f.paint("white", options, "=== %s ===", finding.Category.Title()) + "\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(builder, "%s %s\n", f.paint("cyan", options, "%s:", label), value)
	}

	fmt.Fprintf(builder, "%s %.2f%% %s\n",
		f.paint("cyan", options, "Confidence:"),
		finding.Confidence*100,
		f.paint(severityColor(finding.Severity), options, "(%s)", strings.ToUpper(finding.Severity.String())))
	field("Detected by", string(finding.Source))
	field("Explanation", finding.Explanation)
	field("Impact", finding.Impact)
	field("Suggestion", finding.Suggestion)
	field("Context", finding.Context)
	field("Matched keywords", strings.Join(finding.MatchedKeywords, ", "))
	if len(finding.Examples) > 0 {
		field("Examples", strings.Join(finding.Examples, "; "))
	}
	builder.WriteString("\n")
}

// appendSummary writes the totals table across all reports
func (f *Formatter) appendSummary(builder *strings.Builder, reports []detector.Report, shown int, options formatters.FormatterOptions) {
	bySeverity := map[detector.Severity]int{}
	suppressed := 0
	for _, report := range reports {
		for _, finding := range options.Filter(report.Analysis.Findings) {
			bySeverity[finding.Severity]++
		}
		suppressed += report.SuppressedCount()
	}

	builder.WriteString(f.paint("white", options, "SUMMARY") + "\n")
	fmt.Fprintf(builder, "  %-12s %d\n", "Sources", len(reports))
	fmt.Fprintf(builder, "  %-12s %d\n", "Findings", shown)
	for _, row := range []struct {
		severity detector.Severity
		label    string
	}{
		{detector.SeverityHigh, "High"},
		{detector.SeverityMedium, "Medium"},
		{detector.SeverityLow, "Low"},
	} {
		fmt.Fprintf(builder, "  %s %d\n", f.paint(severityColor(row.severity), options, "%-12s", row.label), bySeverity[row.severity])
	}
	if suppressed > 0 {
		fmt.Fprintf(builder, "  %-12s %d\n", "Suppressed", suppressed)
	}
}

// formatExpirationStatus returns a human-readable expiration status
func formatExpirationStatus(expiresAt *time.Time, expired bool) string {
	if expiresAt == nil {
		return "never expires"
	}

	if expired {
		daysAgo := int(time.Since(*expiresAt).Hours() / 24)
		switch daysAgo {
		case 0:
			return "expired today"
		case 1:
			return "expired 1 day ago"
		default:
			return fmt.Sprintf("expired %d days ago", daysAgo)
		}
	}

	daysUntil := int(time.Until(*expiresAt).Hours() / 24)
	switch daysUntil {
	case 0:
		return "expires today"
	case 1:
		return "expires in 1 day"
	default:
		return fmt.Sprintf("expires in %d days", daysUntil)
	}
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
