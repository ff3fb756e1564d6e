// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"bias-scan/internal/detector"
	"bias-scan/internal/formatters"
)

// DocumentTitle heads every bias-free document
const DocumentTitle = "Bias-Free Document"

// Document is the layout-neutral content of a bias-free document
type Document struct {
	Title     string
	Generated time.Time
	Sections  []DocumentSection
}

// DocumentSection is one analysed source: its summary counts and rewritten text
type DocumentSection struct {
	Source     string
	Total      int
	ByCategory []CategoryCount
	Paragraphs []string
}

// CategoryCount is the number of displayed findings of one category
type CategoryCount struct {
	Category string
	Count    int
}

// BuildDocument collects the improved text and finding counts of each report
func BuildDocument(reports []detector.Report, options formatters.FormatterOptions, now time.Time) Document {
	doc := Document{Title: DocumentTitle, Generated: now}
	for _, report := range reports {
		findings := options.Filter(report.Analysis.Findings)

		counts := make(map[string]int)
		for _, f := range findings {
			counts[string(f.Category)]++
		}
		byCategory := make([]CategoryCount, 0, len(counts))
		for c, n := range counts {
			byCategory = append(byCategory, CategoryCount{Category: c, Count: n})
		}
		sort.Slice(byCategory, func(i, j int) bool { return byCategory[i].Category < byCategory[j].Category })

		text := report.Analysis.ImprovedText
		if text == "" {
			text = report.Analysis.InputText
		}

		doc.Sections = append(doc.Sections, DocumentSection{
			Source:     report.Source,
			Total:      len(findings),
			ByCategory: byCategory,
			Paragraphs: Paragraphs(text),
		})
	}
	return doc
}

// SummaryLines renders the section header lines shared by every document writer
func (s DocumentSection) SummaryLines(generated time.Time) []string {
	lines := []string{
		"Source: " + s.Source,
		"Generated on: " + generated.Format("2006-01-02"),
		fmt.Sprintf("Original biases detected: %d", s.Total),
	}
	for _, c := range s.ByCategory {
		lines = append(lines, fmt.Sprintf("  %s: %d", strings.ReplaceAll(c.Category, "_", " "), c.Count))
	}
	return lines
}

// Paragraphs splits text on line breaks, normalising CRLF and dropping trailing blank lines
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Wrap breaks a paragraph into lines of at most width runes, splitting on spaces where possible
func Wrap(paragraph string, width int) []string {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var current []rune
	for _, word := range words {
		w := []rune(word)
		for len(w) > width {
			if len(current) > 0 {
				lines = append(lines, string(current))
				current = nil
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(current) == 0:
			current = w
		case len(current)+1+len(w) <= width:
			current = append(append(current, ' '), w...)
		default:
			lines = append(lines, string(current))
			current = w
		}
	}
	if len(current) > 0 {
		lines = append(lines, string(current))
	}
	return lines
}
