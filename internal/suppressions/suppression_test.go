// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package suppressions

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"bias-scan/internal/detector"
)

func newTestReport(source, text string, categories ...detector.Category) detector.Report {
	findings := make([]detector.BiasFinding, 0, len(categories))
	for _, c := range categories {
		findings = append(findings, detector.BiasFinding{Category: c, Confidence: 0.8, Severity: detector.SeverityHigh})
	}
	return detector.Report{
		Source:   source,
		Analysis: detector.TextAnalysis{InputText: text, Findings: findings},
	}
}

func TestNewSuppressionManager_NoFile(t *testing.T) {
	sm := NewSuppressionManager(filepath.Join(t.TempDir(), "missing.yaml"))
	if !sm.IsEnabled() {
		t.Error("suppression manager should be enabled by default")
	}
	if sm.LoadError() != nil {
		t.Errorf("missing file should not be an error, got %v", sm.LoadError())
	}
	if rules := sm.ListSuppressions(); rules == nil || len(rules) != 0 {
		t.Errorf("expected empty non-nil rules, got %v", rules)
	}
}

func TestNewSuppressionManager_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("rules: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	sm := NewSuppressionManager(path)
	if sm.LoadError() == nil {
		t.Error("expected a load error for malformed YAML")
	}
}

func TestFindingHash(t *testing.T) {
	a := FindingHash(detector.GenderStereotyping, "/docs/memo.txt", "All  Men are\nstrong")
	b := FindingHash(detector.GenderStereotyping, "other/memo.txt", "all men are strong")
	c := FindingHash(detector.ToxicLanguage, "memo.txt", "all men are strong")

	if a != b {
		t.Error("hash should ignore directories, case and whitespace")
	}
	if a == c {
		t.Error("hash should depend on the category")
	}
	if len(a) != 64 {
		t.Errorf("expected a sha256 hex digest, got %d chars", len(a))
	}
}

func TestNormalizeText_Prefix(t *testing.T) {
	long := ""
	for i := 0; i < 300; i++ {
		long += "é"
	}
	if got := len([]rune(NormalizeText(long))); got != normalizedPrefixRunes {
		t.Errorf("expected %d runes, got %d", normalizedPrefixRunes, got)
	}
}

func TestAddAndApply(t *testing.T) {
	tests := []struct {
		name           string
		opts           AddOptions
		source         string
		wantSuppressed []detector.Category
	}{
		{
			name:           "category and glob",
			opts:           AddOptions{Category: detector.Groupthink, SourceGlob: "*.md", Reason: "quoted"},
			source:         "notes/team.md",
			wantSuppressed: []detector.Category{detector.Groupthink},
		},
		{
			name:   "glob mismatch",
			opts:   AddOptions{Category: detector.Groupthink, SourceGlob: "*.txt", Reason: "quoted"},
			source: "team.md",
		},
		{
			name:           "any category for a file",
			opts:           AddOptions{SourceGlob: "team.md", Reason: "fixture"},
			source:         "team.md",
			wantSuppressed: []detector.Category{detector.Groupthink, detector.ToxicLanguage},
		},
		{
			name:           "pinned to text",
			opts:           AddOptions{Category: detector.ToxicLanguage, SourceGlob: "team.md", Text: "Everyone agrees it is stupid.", Reason: "quote"},
			source:         "team.md",
			wantSuppressed: []detector.Category{detector.ToxicLanguage},
		},
		{
			name:   "pinned to other text",
			opts:   AddOptions{Category: detector.ToxicLanguage, SourceGlob: "team.md", Text: "something else", Reason: "quote"},
			source: "team.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewSuppressionManager(filepath.Join(t.TempDir(), "s.yaml"))
			if _, err := sm.AddSuppression(tt.opts); err != nil {
				t.Fatalf("AddSuppression failed: %v", err)
			}

			report := newTestReport(tt.source, "Everyone agrees it is stupid.",
				detector.Groupthink, detector.ToxicLanguage)
			sm.Apply(&report)

			if len(report.SuppressedFindings) != len(tt.wantSuppressed) {
				t.Fatalf("expected %d suppressed, got %d", len(tt.wantSuppressed), len(report.SuppressedFindings))
			}
			for i, c := range tt.wantSuppressed {
				if report.SuppressedFindings[i].Finding.Category != c {
					t.Errorf("suppressed[%d] = %s, want %s", i, report.SuppressedFindings[i].Finding.Category, c)
				}
			}
			if got := len(report.Analysis.Findings) + len(report.SuppressedFindings); got != 2 {
				t.Errorf("findings should be moved, not dropped: %d total", got)
			}
		})
	}
}

func TestAddSuppression_Validation(t *testing.T) {
	sm := NewSuppressionManager(filepath.Join(t.TempDir(), "s.yaml"))

	cases := []AddOptions{
		{Category: detector.Groupthink},
		{Category: "made_up", Reason: "x"},
		{SourceGlob: "[", Reason: "x"},
		{Text: "abc", Reason: "x"},
	}
	for _, opts := range cases {
		if _, err := sm.AddSuppression(opts); err == nil {
			t.Errorf("expected error for %+v", opts)
		}
	}

	ok := AddOptions{Category: detector.Groupthink, SourceGlob: "*.md", Reason: "x"}
	if _, err := sm.AddSuppression(ok); err != nil {
		t.Fatal(err)
	}
	if _, err := sm.AddSuppression(ok); err == nil {
		t.Error("expected duplicate rule to be rejected")
	}
}

func TestExpiredRuleKeepsFindingActive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	sm := NewSuppressionManager(path)
	past := time.Now().Add(-48 * time.Hour)
	if _, err := sm.AddSuppression(AddOptions{Category: detector.Groupthink, Reason: "old", ExpiresAt: &past}); err != nil {
		t.Fatal(err)
	}

	report := newTestReport("a.txt", "Everyone agrees.", detector.Groupthink)
	sm.Apply(&report)

	if len(report.Analysis.Findings) != 1 {
		t.Error("expired rule must not suppress")
	}
	if len(report.SuppressedFindings) != 1 || !report.SuppressedFindings[0].Expired {
		t.Error("expired rule hit should be listed as expired")
	}
	if sm.GetExpiredRule(report.Analysis.Findings[0], "a.txt", "Everyone agrees.") == nil {
		t.Error("GetExpiredRule should find the rule")
	}

	removed, err := sm.CleanupExpired()
	if err != nil || removed != 1 {
		t.Errorf("expected 1 expired rule removed, got %d (%v)", removed, err)
	}
}

func TestDisableRemoveAndPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	sm := NewSuppressionManager(path)
	rule, err := sm.AddSuppression(AddOptions{Category: detector.AgeBias, Reason: "fixture"})
	if err != nil {
		t.Fatal(err)
	}

	if err := sm.DisableSuppressionByID(rule.ID); err != nil {
		t.Fatalf("DisableSuppressionByID failed: %v", err)
	}
	finding := detector.BiasFinding{Category: detector.AgeBias}
	if ok, _ := sm.IsSuppressed(finding, "x.txt", "older workers"); ok {
		t.Error("disabled rule should not suppress")
	}

	reloaded := NewSuppressionManager(path)
	rules := reloaded.ListSuppressions()
	if len(rules) != 1 || rules[0].Enabled {
		t.Fatalf("expected one disabled rule on disk, got %+v", rules)
	}

	if err := reloaded.RemoveSuppression(rule.ID); err != nil {
		t.Fatalf("RemoveSuppression failed: %v", err)
	}
	if err := reloaded.RemoveSuppression(rule.ID); err == nil {
		t.Error("removing twice should fail")
	}
}

func TestGenerateSuppressionRules(t *testing.T) {
	sm := NewSuppressionManager(filepath.Join(t.TempDir(), "s.yaml"))
	reports := []detector.Report{
		newTestReport("a.txt", "text one", detector.Groupthink, detector.ToxicLanguage),
		newTestReport("b.txt", "text two", detector.Groupthink),
	}

	added, err := sm.GenerateSuppressionRules(reports, "baseline", false)
	if err != nil {
		t.Fatalf("GenerateSuppressionRules failed: %v", err)
	}
	if added != 3 {
		t.Errorf("expected 3 rules, got %d", added)
	}

	added, err = sm.GenerateSuppressionRules(reports, "baseline", false)
	if err != nil || added != 0 {
		t.Errorf("second run should add nothing, got %d (%v)", added, err)
	}

	for _, rule := range sm.ListSuppressions() {
		if rule.Enabled {
			t.Error("generated rules should be disabled")
		}
		if rule.LastSeenAt == nil || rule.ExpiresAt == nil {
			t.Error("generated rules need last-seen and expiry times")
		}
	}
}

func TestSetEnabled(t *testing.T) {
	sm := NewSuppressionManager(filepath.Join(t.TempDir(), "s.yaml"))
	if _, err := sm.AddSuppression(AddOptions{Reason: "everything"}); err != nil {
		t.Fatal(err)
	}
	sm.SetEnabled(false)

	report := newTestReport("a.txt", "x", detector.Groupthink)
	sm.Apply(&report)
	if len(report.SuppressedFindings) != 0 {
		t.Error("disabled manager should not suppress")
	}
}

func TestParseExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in      string
		want    *time.Time
		wantErr bool
	}{
		{in: ""},
		{in: "never"},
		{in: "30d", want: ptr(now.AddDate(0, 0, 30))},
		{in: "2w", want: ptr(now.AddDate(0, 0, 14))},
		{in: "12h", want: ptr(now.Add(12 * time.Hour))},
		{in: "2025-03-01", want: ptr(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))},
		{in: "soon", wantErr: true},
		{in: "-5d", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExpiry(tt.in, now)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (got == nil) != (tt.want == nil) || (got != nil && !got.Equal(*tt.want)) {
				t.Errorf("ParseExpiry(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func ptr(t time.Time) *time.Time { return &t }
