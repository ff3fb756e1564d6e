// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package rewriter produces the suggested "improved" version of a text by
// applying per-category substitutions. The output is best-effort cleanup:
// a span rewritten for one category may be rewritten again by a later one,
// and nothing guarantees the result is free of bias.
package rewriter

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"bias-scan/internal/detector"
)

// Substitution replaces every match of Pattern with Replacement. Replacement
// may reference capture groups as $1.
type Substitution struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// Change records one applied substitution
type Change struct {
	Category    detector.Category `json:"category" yaml:"category"`
	Original    string            `json:"original" yaml:"original"`
	Replacement string            `json:"replacement" yaml:"replacement"`
}

// Rewriter holds the substitution table
type Rewriter struct {
	rules map[detector.Category][]Substitution
}

// Option configures a Rewriter
type Option func(*Rewriter)

// WithSubstitution appends a substitution for a category. The pattern is
// compiled case-insensitively.
func WithSubstitution(category detector.Category, pattern, replacement string) Option {
	return func(r *Rewriter) {
		r.rules[category] = append(r.rules[category], sub(pattern, replacement))
	}
}

// New creates a rewriter with the built-in substitution table
func New(opts ...Option) *Rewriter {
	r := &Rewriter{rules: builtinSubstitutions()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rewrite applies the substitutions of each category, categories in
// alphabetical order
func (r *Rewriter) Rewrite(text string, categories []detector.Category) string {
	out, _ := r.RewriteWithChanges(text, categories)
	return out
}

// RewriteWithChanges is Rewrite that also reports what was replaced
func (r *Rewriter) RewriteWithChanges(text string, categories []detector.Category) (string, []Change) {
	ordered := append([]detector.Category(nil), categories...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	var changes []Change
	for i, category := range ordered {
		if i > 0 && ordered[i-1] == category {
			continue
		}
		for _, s := range r.rules[category] {
			var applied []Change
			text, applied = apply(s, text, category)
			changes = append(changes, applied...)
		}
	}
	return text, changes
}

// Supports reports whether any substitution exists for a category
func (r *Rewriter) Supports(category detector.Category) bool {
	return len(r.rules[category]) > 0
}

func apply(s Substitution, text string, category detector.Category) (string, []Change) {
	matches := s.Pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var b strings.Builder
	var changes []Change
	last := 0
	capitalizeNext := false
	for _, m := range matches {
		original := text[m[0]:m[1]]
		replacement := string(s.Pattern.ExpandString(nil, s.Replacement, text, m))

		prefix := text[last:m[0]]
		if capitalizeNext {
			prefix = upperFirst(prefix)
			capitalizeNext = false
		}
		b.WriteString(prefix)

		if startsUpper(original) {
			if replacement == "" {
				capitalizeNext = true
			} else {
				replacement = upperFirst(replacement)
			}
		}
		b.WriteString(replacement)
		last = m[1]

		changes = append(changes, Change{Category: category, Original: original, Replacement: replacement})
	}

	rest := text[last:]
	if capitalizeNext {
		rest = upperFirst(rest)
	}
	b.WriteString(rest)
	return b.String(), changes
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || !unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
