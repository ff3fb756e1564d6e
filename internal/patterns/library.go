// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"bias-scan/internal/detector"
	"bias-scan/internal/resilience"
)

// LibraryVersion identifies the built-in rule tables. Bump it whenever a rule
// is appended so reports can be tied to the tables that produced them.
const LibraryVersion = "2024.3"

// CategoryProfile holds the scoring inputs for one category
type CategoryProfile struct {
	Category          detector.Category
	Keywords          []string
	ContextIndicators []string
	SeverityWeight    float64
}

// defaultSeverityWeight applies to categories with no profile
const defaultSeverityWeight = 0.5

// Library is the compiled, immutable set of detection rules
type Library struct {
	version    string
	canonical  map[detector.Category][]detector.PatternRule
	expanded   map[detector.Category][]detector.PatternRule
	profiles   map[detector.Category]CategoryProfile
	examples   []ReferenceExample
	categories []detector.Category

	extensionFiles []string
}

// LibraryStats summarises the size and coverage of a library
type LibraryStats struct {
	Version          string                    `json:"version" yaml:"version"`
	Categories       int                       `json:"categories" yaml:"categories"`
	CanonicalRules   int                       `json:"canonical_rules" yaml:"canonical_rules"`
	ExpandedRules    int                       `json:"expanded_rules" yaml:"expanded_rules"`
	BiasedExamples   int                       `json:"biased_examples" yaml:"biased_examples"`
	NeutralExamples  int                       `json:"neutral_examples" yaml:"neutral_examples"`
	ExamplesPerLabel map[detector.Category]int `json:"examples_per_category" yaml:"examples_per_category"`
	ExtensionFiles   []string                  `json:"extension_files,omitempty" yaml:"extension_files,omitempty"`
}

// Option configures library construction
type Option func(*libraryOptions)

type libraryOptions struct {
	extensionFiles []string
	skipExamples   bool
	extraSpecs     []ruleSpec
}

// WithExtensionFile appends the rules of a YAML extension file after the built-ins
func WithExtensionFile(path string) Option {
	return func(o *libraryOptions) {
		if path != "" {
			o.extensionFiles = append(o.extensionFiles, path)
		}
	}
}

// WithoutExamples skips compiling the reference example sentences into rules
func WithoutExamples() Option {
	return func(o *libraryOptions) {
		o.skipExamples = true
	}
}

// WithRule appends a single regex rule. Intended for tests and embedding callers.
func WithRule(category detector.Category, pattern string, confidence float64, tier detector.Tier) Option {
	return func(o *libraryOptions) {
		o.extraSpecs = append(o.extraSpecs, ruleSpec{
			category:   category,
			pattern:    pattern,
			confidence: confidence,
			severity:   detector.SeverityMedium,
			tier:       tier,
			source:     "option",
		})
	}
}

// New compiles the built-in tables plus any extensions. Every compile
// failure is collected and returned as a pattern_compilation error.
func New(opts ...Option) (*Library, error) {
	options := &libraryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	lib := &Library{
		version:   LibraryVersion,
		canonical: make(map[detector.Category][]detector.PatternRule),
		expanded:  make(map[detector.Category][]detector.PatternRule),
		profiles:  make(map[detector.Category]CategoryProfile),
	}

	for _, p := range builtinProfiles() {
		lib.profiles[p.Category] = p
	}

	specs := builtinRules()

	if !options.skipExamples {
		examples, err := loadEmbeddedExamples()
		if err != nil {
			return nil, resilience.NewPatternCompilationError("embedded examples", err)
		}
		lib.examples = examples
		specs = append(specs, exampleRules(examples)...)
	}

	specs = append(specs, options.extraSpecs...)

	for _, path := range options.extensionFiles {
		ext, err := loadExtensionFile(path)
		if err != nil {
			return nil, resilience.NewPatternCompilationError(path, err)
		}
		for _, p := range ext.profiles {
			if _, exists := lib.profiles[p.Category]; !exists {
				lib.profiles[p.Category] = p
			}
		}
		specs = append(specs, ext.rules...)
		lib.extensionFiles = append(lib.extensionFiles, path)
	}

	var compileErrs []error
	seen := make(map[detector.Category]bool)
	for _, spec := range specs {
		rule, err := spec.compile()
		if err != nil {
			compileErrs = append(compileErrs, fmt.Errorf("%s rule %q: %w", spec.category, spec.pattern, err))
			continue
		}
		if rule.Tier == detector.TierExpanded {
			lib.expanded[rule.Category] = append(lib.expanded[rule.Category], rule)
		} else {
			lib.canonical[rule.Category] = append(lib.canonical[rule.Category], rule)
		}
		if !seen[rule.Category] {
			seen[rule.Category] = true
			lib.categories = append(lib.categories, rule.Category)
		}
	}
	if len(compileErrs) > 0 {
		return nil, resilience.NewPatternCompilationError("pattern library", errors.Join(compileErrs...))
	}

	detector.SortCategories(lib.categories)
	return lib, nil
}

// MustNew is New for callers that treat a broken library as a programming error
func MustNew(opts ...Option) *Library {
	lib, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return lib
}

// RulesFor returns the canonical rules of a category, in library order
func (l *Library) RulesFor(category detector.Category) []detector.PatternRule {
	return append([]detector.PatternRule(nil), l.canonical[category]...)
}

// ExpandedRulesFor returns the canonical rules followed by the permissive ones
func (l *Library) ExpandedRulesFor(category detector.Category) []detector.PatternRule {
	rules := make([]detector.PatternRule, 0, len(l.canonical[category])+len(l.expanded[category]))
	rules = append(rules, l.canonical[category]...)
	return append(rules, l.expanded[category]...)
}

// AllCategories returns every category with at least one rule, sorted by name
func (l *Library) AllCategories() []detector.Category {
	return append([]detector.Category(nil), l.categories...)
}

// Profile returns the scoring profile of a category. Unknown categories get
// an empty profile with the default severity weight.
func (l *Library) Profile(category detector.Category) CategoryProfile {
	if p, ok := l.profiles[category]; ok {
		return p
	}
	return CategoryProfile{Category: category, SeverityWeight: defaultSeverityWeight}
}

// Version returns the library version, suffixed when extensions are loaded
func (l *Library) Version() string {
	if len(l.extensionFiles) == 0 {
		return l.version
	}
	return fmt.Sprintf("%s+%d", l.version, len(l.extensionFiles))
}

// Examples returns the labelled reference sentences
func (l *Library) Examples() []ReferenceExample {
	return append([]ReferenceExample(nil), l.examples...)
}

// Stats reports rule counts and example coverage
func (l *Library) Stats() LibraryStats {
	stats := LibraryStats{
		Version:          l.Version(),
		Categories:       len(l.categories),
		ExamplesPerLabel: make(map[detector.Category]int),
		ExtensionFiles:   append([]string(nil), l.extensionFiles...),
	}
	for _, rules := range l.canonical {
		stats.CanonicalRules += len(rules)
	}
	for _, rules := range l.expanded {
		stats.ExpandedRules += len(rules)
	}
	for _, ex := range l.examples {
		if ex.IsNeutral() {
			stats.NeutralExamples++
			continue
		}
		stats.BiasedExamples++
		stats.ExamplesPerLabel[ex.Category]++
	}
	return stats
}

// ruleSpec is the uncompiled form of a rule
type ruleSpec struct {
	category   detector.Category
	pattern    string
	literal    bool
	confidence float64
	severity   detector.Severity
	tier       detector.Tier
	source     string
}

func (s ruleSpec) compile() (detector.PatternRule, error) {
	expr := s.pattern
	if s.literal {
		expr = PhrasePattern(s.pattern)
	}
	if !strings.HasPrefix(expr, "(?i)") {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return detector.PatternRule{}, err
	}

	tier := s.tier
	if tier == "" {
		tier = detector.TierCanonical
	}
	source := s.source
	if source == "" {
		source = "builtin"
	}
	return detector.PatternRule{
		Category:       s.category,
		Pattern:        re,
		BaseConfidence: clampUnit(s.confidence),
		BaseSeverity:   s.severity,
		Tier:           tier,
		Source:         source,
	}, nil
}

// PhrasePattern turns a literal phrase into a regex that tolerates any run
// of whitespace between words and ignores trailing punctuation.
func PhrasePattern(phrase string) string {
	words := strings.Fields(strings.TrimRight(strings.TrimSpace(phrase), ".!?"))
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return `\b` + strings.Join(words, `\s+`)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
