// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"
)

// ContextInfo stores the text surrounding a matched span
type ContextInfo struct {
	BeforeText string `json:"before_text,omitempty" yaml:"before_text,omitempty"`
	AfterText  string `json:"after_text,omitempty" yaml:"after_text,omitempty"`

	// Line containing the match
	FullLine   string `json:"full_line,omitempty" yaml:"full_line,omitempty"`
	LineNumber int    `json:"line_number" yaml:"line_number"`
}

// ContextExtractor extracts context around a span of in-memory text
type ContextExtractor struct {
	// Number of characters before and after the match to consider
	ContextChars int
}

// NewContextExtractor creates a new context extractor with default settings
func NewContextExtractor() *ContextExtractor {
	return &ContextExtractor{
		ContextChars: 40,
	}
}

// WithContextChars sets the number of context characters
func (ce *ContextExtractor) WithContextChars(chars int) *ContextExtractor {
	ce.ContextChars = chars
	return ce
}

// ExtractSpan returns context for text[start:end]. Out-of-range offsets are clamped.
func (ce *ContextExtractor) ExtractSpan(text string, start, end int) ContextInfo {
	start = clamp(start, 0, len(text))
	end = clamp(end, start, len(text))

	lineStart := strings.LastIndexByte(text[:start], '\n') + 1
	lineEnd := len(text)
	if idx := strings.IndexByte(text[end:], '\n'); idx >= 0 {
		lineEnd = end + idx
	}

	info := ContextInfo{
		FullLine:   text[lineStart:lineEnd],
		LineNumber: strings.Count(text[:start], "\n") + 1,
	}

	before := clamp(start-ce.ContextChars, lineStart, start)
	after := clamp(end+ce.ContextChars, end, lineEnd)
	info.BeforeText = text[before:start]
	info.AfterText = text[end:after]
	return info
}

// Sentence is one segment of a larger text with its byte offsets
type Sentence struct {
	Text  string
	Start int
	End   int
}

// SplitSentences segments text on terminal punctuation followed by
// whitespace, and on line breaks. Empty segments are dropped.
func SplitSentences(text string) []Sentence {
	var sentences []Sentence
	start := 0

	emit := func(end int) {
		segment := text[start:end]
		trimmed := strings.TrimSpace(segment)
		if trimmed != "" {
			offset := strings.Index(segment, trimmed)
			sentences = append(sentences, Sentence{
				Text:  trimmed,
				Start: start + offset,
				End:   start + offset + len(trimmed),
			})
		}
		start = end
	}

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			emit(i + 1)
		case '.', '!', '?':
			// Consume runs like "?!" or "..."
			j := i + 1
			for j < len(text) && (text[j] == '.' || text[j] == '!' || text[j] == '?') {
				j++
			}
			if j == len(text) || text[j] == ' ' || text[j] == '\t' || text[j] == '\n' || text[j] == '\r' {
				emit(j)
			}
			i = j - 1
		}
	}
	if start < len(text) {
		emit(len(text))
	}
	return sentences
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
