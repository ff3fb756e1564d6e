// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/csv"
	"fmt"
	"strings"

	"bias-scan/internal/detector"
	"bias-scan/internal/formatters"
)

// Formatter implements CSV output formatting, one row per finding
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(reports []detector.Report, options formatters.FormatterOptions) (string, error) {
	var builder strings.Builder
	w := csv.NewWriter(&builder)

	headers := []string{"Source", "Category", "Severity", "Confidence", "Detected By", "Overall Risk", "Explanation", "Suggestion"}
	if options.ShowMatch || options.Verbose {
		headers = append(headers, "Matched Keywords")
	}
	if options.Verbose {
		headers = append(headers, "Impact", "Context")
	}
	if options.ShowSuppressed {
		headers = append(headers, "Suppressed By")
	}
	if err := w.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, report := range reports {
		for _, finding := range options.Filter(report.Analysis.Findings) {
			if err := w.Write(f.createRow(report, finding, "", options)); err != nil {
				return "", fmt.Errorf("error writing CSV row: %w", err)
			}
		}
		if !options.ShowSuppressed {
			continue
		}
		for _, s := range report.SuppressedFindings {
			if err := w.Write(f.createRow(report, s.Finding, s.SuppressedBy, options)); err != nil {
				return "", fmt.Errorf("error writing CSV row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("error formatting CSV: %w", err)
	}
	return builder.String(), nil
}

// createRow creates a CSV row for a finding
func (f *Formatter) createRow(report detector.Report, finding detector.BiasFinding, suppressedBy string, options formatters.FormatterOptions) []string {
	row := []string{
		report.Source,
		string(finding.Category),
		finding.Severity.String(),
		fmt.Sprintf("%.2f", finding.Confidence),
		string(finding.Source),
		report.Analysis.OverallRisk.String(),
		finding.Explanation,
		finding.Suggestion,
	}
	if options.ShowMatch || options.Verbose {
		row = append(row, strings.Join(finding.MatchedKeywords, "; "))
	}
	if options.Verbose {
		row = append(row, finding.Impact, finding.Context)
	}
	if options.ShowSuppressed {
		row = append(row, suppressedBy)
	}

	for i := range row {
		row[i] = sanitizeFormulaInjection(row[i])
	}
	return row
}

// sanitizeFormulaInjection prevents CSV injection attacks by sanitizing formula characters
func sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	switch field[0] {
	case '=', '+', '-', '@':
		// Prefix with single quote to prevent formula execution
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
