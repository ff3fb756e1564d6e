// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"

	biascontext "bias-scan/internal/context"
	"bias-scan/internal/detector"
	"bias-scan/internal/patterns"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewDefault()
	if err != nil {
		t.Fatalf("NewDefault() error = %v", err)
	}
	return e
}

func mustFinding(t *testing.T, a detector.TextAnalysis, c detector.Category) detector.BiasFinding {
	t.Helper()
	f, ok := a.Finding(c)
	if !ok {
		t.Fatalf("no %s finding in %+v", c, a.Findings)
	}
	return f
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestPositiveContextSuppression(t *testing.T) {
	e := newTestEngine(t)

	inputs := []string{
		"All people should be treated equally",
		"Everyone deserves respect and dignity",
		"Equal rights for all individuals",
		"Diversity and inclusion make us stronger",
		"All people can learn and grow",
		"Everyone has potential for success",
		"All people should be treated equally, even if everyone agrees that women are emotional.",
	}
	for _, text := range inputs {
		t.Run(text, func(t *testing.T) {
			a := e.Analyze(text)
			if len(a.Findings) != 0 {
				t.Errorf("Findings = %+v, want none", a.Findings)
			}
			if a.OverallRisk != detector.SeverityLow {
				t.Errorf("OverallRisk = %s, want low", a.OverallRisk)
			}
			if !a.Positive {
				t.Error("Positive = false, want true")
			}
			if a.ToxicityScore != 0 {
				t.Errorf("ToxicityScore = %v, want 0", a.ToxicityScore)
			}
			if !reflect.DeepEqual(a.Recommendations, []string{recBiasFree}) {
				t.Errorf("Recommendations = %v", a.Recommendations)
			}
		})
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	e := newTestEngine(t)
	text := "Everyone agrees that all women are emotional and this is absolutely stupid."

	first := e.Analyze(text)
	for i := 0; i < 10; i++ {
		if got := e.Analyze(text); !reflect.DeepEqual(first, got) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, got)
		}
	}
}

func TestFindingsUniquePerCategory(t *testing.T) {
	e := newTestEngine(t)
	texts := []string{
		"Everyone agrees, nobody disagrees, we all think alike. Consensus is unanimous.",
		"All women are emotional. Women are too emotional for leadership roles. Males are weak.",
		"This is absolutely stupid and terrible. I hate this. That is awful and disgusting.",
	}
	for _, text := range texts {
		a := e.Analyze(text)
		seen := make(map[detector.Category]bool)
		for _, f := range a.Findings {
			if seen[f.Category] {
				t.Errorf("duplicate category %s for %q", f.Category, text)
			}
			seen[f.Category] = true
		}
		if a.Counts.Total != len(a.Findings) {
			t.Errorf("Counts.Total = %d, want %d", a.Counts.Total, len(a.Findings))
		}
	}
}

func TestToxicityThreshold(t *testing.T) {
	e := newTestEngine(t)
	a := e.Analyze("stupid stupid stupid stupid")

	if math.Abs(a.ToxicityScore-1.0) > 1e-9 {
		t.Errorf("ToxicityScore = %v, want 1", a.ToxicityScore)
	}
	if a.OverallRisk != detector.SeverityHigh {
		t.Errorf("OverallRisk = %s, want high", a.OverallRisk)
	}
}

func TestRiskMonotonicity(t *testing.T) {
	e := newTestEngine(t)

	bases := []string{
		"My first impression is that this won't work.",
		"We all think this is the right approach.",
		"All women are emotional.",
	}
	addition := " This is absolutely stupid and terrible."

	for _, base := range bases {
		before := e.Analyze(base)
		after := e.Analyze(base + addition)
		if len(before.Findings) == 0 {
			t.Fatalf("%q produced no findings", base)
		}
		if after.OverallRisk < before.OverallRisk {
			t.Errorf("%q: risk dropped from %s to %s", base, before.OverallRisk, after.OverallRisk)
		}
		if after.OverallRisk != detector.SeverityHigh {
			t.Errorf("%q + toxic: risk = %s, want high", base, after.OverallRisk)
		}
	}
}

func TestScenarios(t *testing.T) {
	e := newTestEngine(t)

	t.Run("groupthink", func(t *testing.T) {
		a := e.Analyze("Everyone agrees with him, let's finalize this.")
		f := mustFinding(t, a, detector.Groupthink)
		if f.Severity < detector.SeverityMedium {
			t.Errorf("Severity = %s, want medium or high", f.Severity)
		}
		if f.Source != detector.SourceBoth {
			t.Errorf("Source = %s, want both", f.Source)
		}
		if f.Explanation == "" {
			t.Error("Explanation is empty")
		}
		joined := strings.ToLower(strings.Join(a.Recommendations, "\n"))
		if !strings.Contains(joined, "diverse perspectives") {
			t.Errorf("Recommendations = %v, want a diverse perspectives suggestion", a.Recommendations)
		}
	})

	t.Run("educational", func(t *testing.T) {
		a := e.Analyze("This guy is from IIT, he'll be better than the others.")
		if !a.HasCategory(detector.EducationalBias) {
			t.Fatalf("findings: %+v", a.Findings)
		}
		if want := "This guy is from IIT, and brings their own experience."; a.ImprovedText != want {
			t.Errorf("ImprovedText = %q, want %q", a.ImprovedText, want)
		}
	})

	t.Run("gender", func(t *testing.T) {
		a := e.Analyze("All women are emotional.")
		f := mustFinding(t, a, detector.GenderStereotyping)
		if f.Severity != detector.SeverityHigh || a.OverallRisk != detector.SeverityHigh {
			t.Errorf("severity = %s, risk = %s, want high/high", f.Severity, a.OverallRisk)
		}
	})

	t.Run("neutral", func(t *testing.T) {
		a := e.Analyze("The team should review the proposal and consider all available options.")
		if len(a.Findings) != 0 {
			t.Errorf("Findings = %+v, want none", a.Findings)
		}
		if a.OverallRisk != detector.SeverityLow || a.Positive {
			t.Errorf("risk = %s, positive = %v, want low/false", a.OverallRisk, a.Positive)
		}
		if !reflect.DeepEqual(a.Recommendations, []string{recBiasFree}) {
			t.Errorf("Recommendations = %v", a.Recommendations)
		}
	})

	t.Run("toxic", func(t *testing.T) {
		a := e.Analyze("This is absolutely stupid and terrible.")
		f := mustFinding(t, a, detector.ToxicLanguage)
		if f.Severity != detector.SeverityHigh {
			t.Errorf("Severity = %s, want high", f.Severity)
		}
		if a.ToxicityScore <= 0.5 {
			t.Errorf("ToxicityScore = %v, want > 0.5", a.ToxicityScore)
		}
		for _, rec := range []string{recReframe, recHighSeverity} {
			if !containsString(a.Recommendations, rec) {
				t.Errorf("Recommendations missing %q", rec)
			}
		}
	})

	t.Run("rewrite round trip", func(t *testing.T) {
		a := e.Analyze("All women are emotional.")
		if strings.Contains(a.ImprovedText, "All women are") {
			t.Errorf("ImprovedText still biased: %q", a.ImprovedText)
		}
		if !strings.HasSuffix(a.ImprovedText, " emotional.") {
			t.Errorf("ImprovedText = %q", a.ImprovedText)
		}
	})
}

func TestEmptyAndDegenerateInput(t *testing.T) {
	e := newTestEngine(t)

	for _, text := range []string{"", "   ", "\n\t\n"} {
		a := e.Analyze(text)
		if len(a.Findings) != 0 || a.ToxicityScore != 0 || a.Positive {
			t.Errorf("%q: findings=%d toxicity=%v positive=%v", text, len(a.Findings), a.ToxicityScore, a.Positive)
		}
		if a.OverallRisk != detector.SeverityLow {
			t.Errorf("%q: risk = %s, want low", text, a.OverallRisk)
		}
		if a.ImprovedText != text {
			t.Errorf("%q: ImprovedText = %q", text, a.ImprovedText)
		}
	}

	for _, text := range []string{"?!?!...", "🙂🙂🙂", "日本語のテキストです。", strings.Repeat("a", 10000)} {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Analyze(%.20q) panicked: %v", text, r)
				}
			}()
			e.Analyze(text)
		}()
	}
}

func TestFindingsSortedByConfidence(t *testing.T) {
	e := newTestEngine(t)
	a := e.Analyze("Everyone agrees that all women are emotional, my first impression is bad, and this is absolutely stupid.")
	if len(a.Findings) < 2 {
		t.Fatalf("want at least two findings, got %+v", a.Findings)
	}

	for i := 1; i < len(a.Findings); i++ {
		prev, cur := a.Findings[i-1], a.Findings[i]
		if prev.Confidence < cur.Confidence ||
			(prev.Confidence == cur.Confidence && prev.Category >= cur.Category) {
			t.Errorf("findings out of order at %d: %s(%v) before %s(%v)", i, prev.Category, prev.Confidence, cur.Category, cur.Confidence)
		}
	}
}

func TestRuleOnlyFindingsAreSynthesized(t *testing.T) {
	lib, err := patterns.New(patterns.WithRule("custom_bias", `\bfrobnicate\b`, 0.9, detector.TierCanonical))
	if err != nil {
		t.Fatal(err)
	}
	e, err := New(lib, biascontext.NewClassifier())
	if err != nil {
		t.Fatal(err)
	}

	f := mustFinding(t, e.Analyze("Please frobnicate the widget."), "custom_bias")
	if f.Source != detector.SourceRules {
		t.Errorf("Source = %s, want rules", f.Source)
	}
	if math.Abs(f.Confidence-RuleOnlyConfidence) > 1e-9 {
		t.Errorf("Confidence = %v, want %v", f.Confidence, RuleOnlyConfidence)
	}
	if f.Severity != detector.SeverityMedium {
		t.Errorf("Severity = %s, want medium", f.Severity)
	}
	if f.Explanation != genericEntry.Explanation {
		t.Errorf("Explanation = %q, want the generic entry", f.Explanation)
	}

	f = mustFinding(t, e.Analyze("Please frobnicate the lazy widget."), "custom_bias")
	if math.Abs(f.Confidence-RuleOnlyNegativeConfidence) > 1e-9 {
		t.Errorf("negative Confidence = %v, want %v", f.Confidence, RuleOnlyNegativeConfidence)
	}
}

func TestSentenceModeKeepsBiasedSentences(t *testing.T) {
	lib := patterns.MustNew()
	text := "Everyone deserves respect. All women are emotional."

	whole, err := New(lib, biascontext.NewClassifier())
	if err != nil {
		t.Fatal(err)
	}
	if got := whole.Analyze(text).Findings; len(got) != 0 {
		t.Errorf("whole_text findings = %+v, want none", got)
	}

	sentence, err := New(lib, biascontext.NewClassifier(biascontext.WithMode(biascontext.ModeSentence)))
	if err != nil {
		t.Fatal(err)
	}
	a := sentence.Analyze(text)
	if !a.HasCategory(detector.GenderStereotyping) || a.Positive {
		t.Errorf("sentence mode: findings = %+v, positive = %v", a.Findings, a.Positive)
	}
}

func TestInputCap(t *testing.T) {
	e, err := New(patterns.MustNew(), nil, WithMaxInputBytes(64))
	if err != nil {
		t.Fatal(err)
	}

	text := strings.Repeat("plain words ", 20) + "Everyone agrees with him."
	a := e.Analyze(text)
	if a.HasCategory(detector.Groupthink) {
		t.Error("text past the cap should not be analysed")
	}
	if a.InputText != text || a.ImprovedText != text {
		t.Error("InputText and ImprovedText should cover the full input")
	}
}

func TestCountsAndInsights(t *testing.T) {
	e := newTestEngine(t)

	clean := e.Analyze("The outcome looks promising")
	if len(clean.Insights) != 2 {
		t.Errorf("clean insights = %v, want two lines", clean.Insights)
	}
	if n := clean.Counts.BySeverity[detector.SeverityHigh]; n != 0 {
		t.Errorf("clean high count = %d", n)
	}

	a := e.Analyze("All women are emotional.")
	if a.Counts.Total != len(a.Findings) {
		t.Errorf("Counts.Total = %d, want %d", a.Counts.Total, len(a.Findings))
	}
	total := 0
	for _, n := range a.Counts.BySeverity {
		total += n
	}
	if total != a.Counts.Total {
		t.Errorf("severity counts sum to %d, want %d", total, a.Counts.Total)
	}
	if len(a.Insights) == 0 || !strings.Contains(a.Insights[0], "High-severity biases detected") {
		t.Errorf("Insights = %v", a.Insights)
	}
	if a.Complexity <= 0 || a.Complexity > 1 {
		t.Errorf("Complexity = %v, want (0, 1]", a.Complexity)
	}
}

func TestAnalyzeBatch(t *testing.T) {
	e := newTestEngine(t)

	results, err := e.AnalyzeBatch(context.Background(), []string{"All women are emotional.", "The outcome looks promising"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || len(results[0].Findings) == 0 || len(results[1].Findings) != 0 {
		t.Errorf("unexpected batch results: %+v", results)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err = e.AnalyzeBatch(ctx, []string{"a", "b"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if len(results) != 0 {
		t.Errorf("cancelled batch returned %d results", len(results))
	}
}

func TestConcurrentAnalyze(t *testing.T) {
	e := newTestEngine(t)
	text := "Everyone agrees with him, let's finalize this."
	want := e.Analyze(text)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := e.Analyze(text); !reflect.DeepEqual(want, got) {
				t.Errorf("concurrent result differs: %+v", got)
			}
		}()
	}
	wg.Wait()
}

func TestNewRequiresLibrary(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Error("New(nil, nil) should fail")
	}
}

func TestHelpProviders(t *testing.T) {
	e := newTestEngine(t)
	providers := e.HelpProviders()
	if want := 2 + len(e.Library().AllCategories()); len(providers) != want {
		t.Errorf("providers = %d, want %d", len(providers), want)
	}
	if name := providers[0].GetCheckInfo().Name; name != "RULES" {
		t.Errorf("first provider = %q, want RULES", name)
	}
}
