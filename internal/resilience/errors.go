// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// ErrorType represents different types of errors for handling strategies
type ErrorType string

const (
	ErrorTypeInternal           ErrorType = "internal"
	ErrorTypeInvalidInput       ErrorType = "invalid_input"       // Rejected at the boundary
	ErrorTypePatternCompilation ErrorType = "pattern_compilation" // Malformed rule, fatal at startup
	ErrorTypeExtraction         ErrorType = "extraction"          // Document could not be read
	ErrorTypeUnsupported        ErrorType = "unsupported"         // No preprocessor for the file type
	ErrorTypeTooLarge           ErrorType = "too_large"           // Size limit exceeded
	ErrorTypeNotFound           ErrorType = "not_found"
)

// ClassifiedError wraps an error with type information
type ClassifiedError struct {
	Original  error
	Type      ErrorType
	Operation string
	Message   string
}

func (e *ClassifiedError) Error() string {
	msg := e.Message
	if msg == "" && e.Original != nil {
		msg = e.Original.Error()
	}
	if e.Operation != "" {
		msg = e.Operation + ": " + msg
	}
	if e.Message != "" && e.Original != nil {
		msg += ": " + e.Original.Error()
	}
	return msg
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// ClassifyError categorizes an error for appropriate handling
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	switch {
	case errors.Is(err, os.ErrNotExist):
		return &ClassifiedError{Original: err, Type: ErrorTypeNotFound}
	case errors.Is(err, http.ErrMissingFile):
		return &ClassifiedError{Original: err, Type: ErrorTypeInvalidInput}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "too large") || strings.Contains(errStr, "request body too large"):
		return &ClassifiedError{Original: err, Type: ErrorTypeTooLarge}
	case strings.Contains(errStr, "not supported") || strings.Contains(errStr, "unsupported"):
		return &ClassifiedError{Original: err, Type: ErrorTypeUnsupported}
	case strings.Contains(errStr, "invalid") || strings.Contains(errStr, "malformed"):
		return &ClassifiedError{Original: err, Type: ErrorTypeInvalidInput}
	}

	return &ClassifiedError{Original: err, Type: ErrorTypeInternal}
}

// IsType reports whether err is, or wraps, a ClassifiedError of type t
func IsType(err error, t ErrorType) bool {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Type == t
	}
	return false
}

// HTTPStatus maps an error onto the status code the web server should return
func HTTPStatus(err error) int {
	switch ClassifyError(err).Type {
	case ErrorTypeInvalidInput:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrorTypeUnsupported:
		return http.StatusUnsupportedMediaType
	case ErrorTypeExtraction:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// NewInvalidInputError creates an error for input rejected at a boundary
func NewInvalidInputError(operation, message string) *ClassifiedError {
	return &ClassifiedError{Type: ErrorTypeInvalidInput, Operation: operation, Message: message}
}

// NewPatternCompilationError creates an error for a rule that failed to compile
func NewPatternCompilationError(source string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Original:  cause,
		Type:      ErrorTypePatternCompilation,
		Operation: "compile patterns",
		Message:   fmt.Sprintf("invalid rule in %s", source),
	}
}

// NewExtractionError creates an error for a document that could not be read
func NewExtractionError(path string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Original:  cause,
		Type:      ErrorTypeExtraction,
		Operation: "extract text",
		Message:   path,
	}
}

// NewUnsupportedError creates an error for a file type nothing can process
func NewUnsupportedError(path, reason string) *ClassifiedError {
	return &ClassifiedError{
		Type:      ErrorTypeUnsupported,
		Operation: "route file",
		Message:   fmt.Sprintf("%s: %s", path, reason),
	}
}

// NewTooLargeError creates an error for input over a size limit
func NewTooLargeError(what string, size, limit int64) *ClassifiedError {
	return &ClassifiedError{
		Type:    ErrorTypeTooLarge,
		Message: fmt.Sprintf("%s too large: %d bytes (max %d)", what, size, limit),
	}
}
