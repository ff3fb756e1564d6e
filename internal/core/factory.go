// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"bias-scan/internal/config"
	biascontext "bias-scan/internal/context"
	"bias-scan/internal/engine"
	"bias-scan/internal/patterns"
	"bias-scan/internal/resilience"
)

// BuildEngine compiles the pattern library (plus the optional extension
// file) and wires the classifier mode and input cap from resolved settings.
// A malformed rule surfaces as a pattern_compilation error.
func BuildEngine(defaults config.Defaults) (*engine.Engine, error) {
	var libOpts []patterns.Option
	if defaults.PatternsFile != "" {
		libOpts = append(libOpts, patterns.WithExtensionFile(defaults.PatternsFile))
	}
	library, err := patterns.New(libOpts...)
	if err != nil {
		if resilience.IsType(err, resilience.ErrorTypePatternCompilation) {
			return nil, err
		}
		return nil, resilience.NewPatternCompilationError(defaults.PatternsFile, err)
	}

	mode, err := biascontext.ParseMode(defaults.ClassificationMode)
	if err != nil {
		return nil, resilience.NewInvalidInputError("classification mode", err.Error())
	}

	eng, err := engine.New(library, biascontext.NewClassifier(biascontext.WithMode(mode)),
		engine.WithMaxInputBytes(defaults.MaxInputBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}
	return eng, nil
}
