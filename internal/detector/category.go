// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"sort"
	"strings"
)

// Category names a class of biased language. The set is open: consumers
// must accept values they do not know.
type Category string

const (
	GenderStereotyping     Category = "gender_stereotyping"
	AgeBias                Category = "age_bias"
	EducationalBias        Category = "educational_bias"
	Groupthink             Category = "groupthink"
	Anchoring              Category = "anchoring"
	Confirmation           Category = "confirmation"
	Stereotyping           Category = "stereotyping"
	ToxicLanguage          Category = "toxic_language"
	CulturalBias           Category = "cultural_bias"
	Generalization         Category = "generalization"
	DismissiveLanguage     Category = "dismissive_language"
	HierarchicalBias       Category = "hierarchical_bias"
	DepartmentStereotyping Category = "department_stereotyping"
	RacialStereotyping     Category = "racial_stereotyping"
	ReligiousBias          Category = "religious_bias"
	NationalityBias        Category = "nationality_bias"
	SocioeconomicBias      Category = "socioeconomic_bias"
	AvailabilityBias       Category = "availability_bias"
)

// BuiltinCategories lists every category the built-in library knows about
var BuiltinCategories = []Category{
	GenderStereotyping, AgeBias, EducationalBias, Groupthink, Anchoring,
	Confirmation, Stereotyping, ToxicLanguage, CulturalBias, Generalization,
	DismissiveLanguage, HierarchicalBias, DepartmentStereotyping,
	RacialStereotyping, ReligiousBias, NationalityBias, SocioeconomicBias,
	AvailabilityBias,
}

// categoryAliases reconciles the older label schemes with the canonical names
var categoryAliases = map[string]Category{
	"gender_bias":       GenderStereotyping,
	"gender":            GenderStereotyping,
	"toxic":             ToxicLanguage,
	"toxicity":          ToxicLanguage,
	"confirmation_bias": Confirmation,
	"anchoring_bias":    Anchoring,
	"racial_bias":       RacialStereotyping,
	"gendercultural":    CulturalBias,
	"department_bias":   DepartmentStereotyping,
	"age":               AgeBias,
	"educational":       EducationalBias,
	"dismissive":        DismissiveLanguage,
}

// ParseCategory normalises a label and resolves historical aliases.
// Unknown labels are returned as-is so that extension categories survive.
func ParseCategory(label string) Category {
	normalized := strings.ToLower(strings.TrimSpace(label))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if c, ok := categoryAliases[normalized]; ok {
		return c
	}
	return Category(normalized)
}

// IsBuiltin reports whether c is one of the built-in categories
func (c Category) IsBuiltin() bool {
	for _, b := range BuiltinCategories {
		if b == c {
			return true
		}
	}
	return false
}

// Title returns a human readable name, e.g. "Gender Stereotyping"
func (c Category) Title() string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// SortCategories sorts in place by name and returns the slice
func SortCategories(categories []Category) []Category {
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	return categories
}
