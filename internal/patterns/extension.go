// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bias-scan/internal/detector"
)

// ExtensionFile is the YAML layout accepted by WithExtensionFile:
//
//	categories:
//	  - name: ableist_language
//	    severity_weight: 0.7
//	    keywords: [crippled, lame]
//	    context_indicators: [person, team]
//	rules:
//	  - category: ableist_language
//	    pattern: '\bfalls\s+on\s+deaf\s+ears\b'
//	    confidence: 0.8
//	    severity: medium
//	    tier: canonical
//	  - category: groupthink
//	    phrase: "we never question the plan"
type ExtensionFile struct {
	Categories []ExtensionCategory `yaml:"categories"`
	Rules      []ExtensionRule     `yaml:"rules"`
}

// ExtensionCategory declares the scoring profile of a category
type ExtensionCategory struct {
	Name              string   `yaml:"name"`
	SeverityWeight    float64  `yaml:"severity_weight"`
	Keywords          []string `yaml:"keywords"`
	ContextIndicators []string `yaml:"context_indicators"`
}

// ExtensionRule is either a regex (pattern) or a literal phrase
type ExtensionRule struct {
	Category   string            `yaml:"category"`
	Pattern    string            `yaml:"pattern"`
	Phrase     string            `yaml:"phrase"`
	Confidence float64           `yaml:"confidence"`
	Severity   detector.Severity `yaml:"severity"`
	Tier       detector.Tier     `yaml:"tier"`
}

type extension struct {
	profiles []CategoryProfile
	rules    []ruleSpec
}

func loadExtensionFile(path string) (*extension, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read extension file: %w", err)
	}
	return parseExtension(data, path)
}

func parseExtension(data []byte, source string) (*extension, error) {
	var file ExtensionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse extension file: %w", err)
	}

	ext := &extension{}
	for _, c := range file.Categories {
		if c.Name == "" {
			return nil, errors.New("extension category without a name")
		}
		weight := c.SeverityWeight
		if weight <= 0 {
			weight = defaultSeverityWeight
		}
		ext.profiles = append(ext.profiles, CategoryProfile{
			Category:          detector.ParseCategory(c.Name),
			Keywords:          c.Keywords,
			ContextIndicators: c.ContextIndicators,
			SeverityWeight:    clampUnit(weight),
		})
	}

	for i, r := range file.Rules {
		if r.Category == "" {
			return nil, fmt.Errorf("rule %d: category is required", i)
		}
		if (r.Pattern == "") == (r.Phrase == "") {
			return nil, fmt.Errorf("rule %d: exactly one of pattern or phrase is required", i)
		}
		switch r.Tier {
		case "", detector.TierCanonical, detector.TierExpanded:
		default:
			return nil, fmt.Errorf("rule %d: unknown tier %q", i, r.Tier)
		}

		spec := ruleSpec{
			category:   detector.ParseCategory(r.Category),
			pattern:    r.Pattern,
			confidence: r.Confidence,
			severity:   r.Severity,
			tier:       r.Tier,
			source:     source,
		}
		if r.Phrase != "" {
			spec.pattern = r.Phrase
			spec.literal = true
		}
		if spec.confidence <= 0 {
			spec.confidence = 0.7
		}
		if spec.severity == detector.SeverityNone {
			spec.severity = detector.SeverityMedium
		}
		ext.rules = append(ext.rules, spec)
	}
	return ext, nil
}
