// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"bias-scan/internal/detector"
)

//go:embed examples.yaml
var embeddedExamples []byte

// neutralLabel marks reference sentences that must not produce findings
const neutralLabel = "none"

// ReferenceExample is one labelled sentence of the reference corpus
type ReferenceExample struct {
	Text       string            `yaml:"text" json:"text"`
	Category   detector.Category `yaml:"category" json:"category"`
	Severity   detector.Severity `yaml:"severity" json:"severity"`
	Field      string            `yaml:"field" json:"field"`
	Context    string            `yaml:"context" json:"context"`
	Confidence float64           `yaml:"confidence" json:"confidence"`
}

// IsNeutral reports whether the example is labelled as containing no bias
func (e ReferenceExample) IsNeutral() bool {
	return e.Category == neutralLabel || e.Category == ""
}

type exampleFile struct {
	Examples []ReferenceExample `yaml:"examples"`
}

func loadEmbeddedExamples() ([]ReferenceExample, error) {
	return parseExamples(embeddedExamples)
}

func parseExamples(data []byte) ([]ReferenceExample, error) {
	var file exampleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse reference examples: %w", err)
	}

	examples := make([]ReferenceExample, 0, len(file.Examples))
	for i, ex := range file.Examples {
		if strings.TrimSpace(ex.Text) == "" {
			return nil, fmt.Errorf("reference example %d has no text", i)
		}
		ex.Category = detector.ParseCategory(string(ex.Category))
		examples = append(examples, ex)
	}
	return examples, nil
}

// exampleRules turns every biased example into a whitespace-tolerant literal rule
func exampleRules(examples []ReferenceExample) []ruleSpec {
	var specs []ruleSpec
	for _, ex := range examples {
		if ex.IsNeutral() {
			continue
		}
		specs = append(specs, ruleSpec{
			category:   ex.Category,
			pattern:    ex.Text,
			literal:    true,
			confidence: ex.Confidence,
			severity:   ex.Severity,
			tier:       detector.TierCanonical,
			source:     "examples",
		})
	}
	return specs
}
