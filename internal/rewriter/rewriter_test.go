// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package rewriter

import (
	"strings"
	"testing"

	"bias-scan/internal/detector"
)

func TestRewrite(t *testing.T) {
	r := New()

	tests := []struct {
		name       string
		text       string
		categories []detector.Category
		want       string
	}{
		{
			name:       "gender keeps capitalisation",
			text:       "All women are emotional.",
			categories: []detector.Category{detector.GenderStereotyping, detector.Stereotyping},
			want:       "Some people are emotional.",
		},
		{
			name:       "toxic synonyms",
			text:       "This is absolutely stupid and terrible.",
			categories: []detector.Category{detector.ToxicLanguage},
			want:       "This is absolutely challenging and difficult.",
		},
		{
			name:       "toxic word boundaries",
			text:       "The diet studied how to kill time. Die hard.",
			categories: []detector.Category{detector.ToxicLanguage},
			want:       "The diet studied how to eliminate time. Cease hard.",
		},
		{
			name:       "groupthink",
			text:       "Everyone agrees with him, let's finalize this.",
			categories: []detector.Category{detector.Groupthink},
			want:       "Many people agree with him, let's finalize this.",
		},
		{
			name:       "educational",
			text:       "This guy is from IIT, he'll be better than the others.",
			categories: []detector.Category{detector.EducationalBias},
			want:       "This guy is from IIT, and brings their own experience.",
		},
		{
			name:       "confirmation",
			text:       "As expected, this proves my point.",
			categories: []detector.Category{detector.Confirmation},
			want:       "As anticipated, this supports this view.",
		},
		{
			name:       "dismissive removes filler",
			text:       "Whatever, this is useless. I don't care.",
			categories: []detector.Category{detector.DismissiveLanguage},
			want:       "This is useless. I have concerns.",
		},
		{
			name:       "age",
			text:       "Older workers can't adapt.",
			categories: []detector.Category{detector.AgeBias},
			want:       "People with different experience levels can't adapt.",
		},
		{
			name:       "only detected categories apply",
			text:       "Everyone agrees this is stupid.",
			categories: []detector.Category{detector.Groupthink},
			want:       "Many people agree this is stupid.",
		},
		{
			name:       "unknown category is a no-op",
			text:       "Nothing to do here.",
			categories: []detector.Category{"made_up"},
			want:       "Nothing to do here.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Rewrite(tt.text, tt.categories); got != tt.want {
				t.Errorf("Rewrite(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestRewriteOrderIsAlphabetical(t *testing.T) {
	r := New()
	text := "All women are emotional and every manager is stupid."

	a := r.Rewrite(text, []detector.Category{detector.ToxicLanguage, detector.Stereotyping, detector.GenderStereotyping})
	b := r.Rewrite(text, []detector.Category{detector.GenderStereotyping, detector.ToxicLanguage, detector.Stereotyping})
	if a != b {
		t.Fatalf("category order changed output: %q vs %q", a, b)
	}
	if strings.Contains(a, "All women are") || strings.Contains(a, "stupid") {
		t.Errorf("biased spans left in %q", a)
	}
}

func TestRewriteWithChanges(t *testing.T) {
	r := New()
	_, changes := r.RewriteWithChanges("stupid, stupid, awful", []detector.Category{detector.ToxicLanguage})
	if len(changes) != 3 {
		t.Fatalf("got %d changes, want 3: %+v", len(changes), changes)
	}
	if changes[0].Original != "stupid" || changes[0].Replacement != "challenging" {
		t.Errorf("unexpected first change %+v", changes[0])
	}
}

func TestWithSubstitution(t *testing.T) {
	r := New(WithSubstitution("jargon", `\bsynergy\b`, "cooperation"))
	if !r.Supports("jargon") {
		t.Fatal("custom category not registered")
	}
	if got := r.Rewrite("Synergy matters", []detector.Category{"jargon"}); got != "Cooperation matters" {
		t.Errorf("got %q", got)
	}
}
