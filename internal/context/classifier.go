// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package context

import (
	"fmt"
	"regexp"
	"strings"

	"bias-scan/internal/detector"
)

// Mode controls how much text a positive match suppresses
type Mode string

const (
	// ModeWholeText treats the input as one unit: a single inclusive
	// statement anywhere suppresses every finding.
	ModeWholeText Mode = "whole_text"

	// ModeSentence classifies each sentence and drops only the inclusive ones
	ModeSentence Mode = "sentence"
)

// ParseMode validates a classification mode name. Empty means whole_text.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case "", ModeWholeText:
		return ModeWholeText, nil
	case ModeSentence:
		return ModeSentence, nil
	}
	return "", fmt.Errorf("unknown classification mode %q (want whole_text or sentence)", name)
}

// Classification is the verdict for one span of text
type Classification struct {
	IsPositive    bool
	IsNegative    bool
	MatchedPhrase string
	Domain        Domain
}

// GateResult is what the matcher and scorer actually analyse
type GateResult struct {
	// Effective is the text left after inclusive content is removed
	Effective           string
	Positive            bool
	SuppressedSentences int
}

// Classifier decides whether text is inclusive and therefore exempt from findings
type Classifier struct {
	mode              Mode
	positivePhrases   []string
	positiveTemplates []*regexp.Regexp
	negativeWords     *regexp.Regexp
	negativePatterns  []*regexp.Regexp
	domains           *DomainClassifier
}

// Option configures a Classifier
type Option func(*Classifier)

// WithMode selects whole-text or per-sentence gating
func WithMode(mode Mode) Option {
	return func(c *Classifier) {
		c.mode = mode
	}
}

// WithPositivePhrases adds inclusive phrases to the built-in list
func WithPositivePhrases(phrases ...string) Option {
	return func(c *Classifier) {
		for _, p := range phrases {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				c.positivePhrases = append(c.positivePhrases, p)
			}
		}
	}
}

// NewClassifier creates a classifier with the built-in phrase and template lists
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		mode:              ModeWholeText,
		positivePhrases:   append([]string(nil), inclusivePhrases...),
		positiveTemplates: compileAll(inclusiveTemplates),
		negativeWords:     regexp.MustCompile(`(?i)\b(?:` + strings.Join(negativeWords, "|") + `)`),
		negativePatterns:  compileAll(negativeGeneralizations),
		domains:           NewDomainClassifier(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode returns the gating mode
func (c *Classifier) Mode() Mode {
	return c.mode
}

// Classify inspects text as a whole
func (c *Classifier) Classify(text string) Classification {
	phrase, positive := c.positiveMatch(text)
	domain, _ := c.domains.ClassifyDomain(text)
	return Classification{
		IsPositive:    positive,
		IsNegative:    c.isNegative(text),
		MatchedPhrase: phrase,
		Domain:        domain,
	}
}

// IsPositive is Classify(text).IsPositive without the domain work
func (c *Classifier) IsPositive(text string) bool {
	_, positive := c.positiveMatch(text)
	return positive
}

// Gate returns the portion of text that detection should run on
func (c *Classifier) Gate(text string) GateResult {
	if strings.TrimSpace(text) == "" {
		return GateResult{Effective: text}
	}

	if c.mode != ModeSentence {
		if c.IsPositive(text) {
			return GateResult{Positive: true}
		}
		return GateResult{Effective: text}
	}

	sentences := detector.SplitSentences(text)
	kept := make([]string, 0, len(sentences))
	suppressed := 0
	for _, s := range sentences {
		if c.IsPositive(s.Text) {
			suppressed++
			continue
		}
		kept = append(kept, s.Text)
	}

	return GateResult{
		Effective:           strings.Join(kept, "\n"),
		Positive:            len(sentences) > 0 && suppressed == len(sentences),
		SuppressedSentences: suppressed,
	}
}

func (c *Classifier) positiveMatch(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, phrase := range c.positivePhrases {
		if strings.Contains(lower, phrase) {
			return phrase, true
		}
	}
	for _, tmpl := range c.positiveTemplates {
		if m := tmpl.FindString(text); m != "" {
			return strings.ToLower(m), true
		}
	}
	return "", false
}

func (c *Classifier) isNegative(text string) bool {
	if c.negativeWords.MatchString(text) {
		return true
	}
	for _, p := range c.negativePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func compileAll(exprs []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		compiled = append(compiled, regexp.MustCompile(e))
	}
	return compiled
}
