// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"fmt"
	"sort"
	"strings"

	"bias-scan/internal/detector"
)

// FormatterOptions defines configuration options for formatters
type FormatterOptions struct {
	Severities     map[detector.Severity]bool // Which severities to display; nil shows all
	Categories     []detector.Category        // Which categories to display; empty shows all
	Verbose        bool                       // Whether to display explanation, impact and context
	NoColor        bool                       // Whether to disable colored output
	ShowMatch      bool                       // Whether to display matched keywords
	ShowImproved   bool                       // Whether to display the rewritten text
	ShowSuppressed bool                       // Whether to include suppressed findings
}

// Wants reports whether a finding passes the severity and category filters
func (o FormatterOptions) Wants(f detector.BiasFinding) bool {
	if o.Severities != nil && !o.Severities[f.Severity] {
		return false
	}
	if len(o.Categories) == 0 {
		return true
	}
	for _, c := range o.Categories {
		if c == f.Category {
			return true
		}
	}
	return false
}

// Filter returns the findings that pass the options' filters, preserving order
func (o FormatterOptions) Filter(findings []detector.BiasFinding) []detector.BiasFinding {
	filtered := make([]detector.BiasFinding, 0, len(findings))
	for _, f := range findings {
		if o.Wants(f) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// Formatter interface defines methods that all output formatters must implement
type Formatter interface {
	// Format renders the reports according to the formatter's specific output format
	Format(reports []detector.Report, options FormatterOptions) (string, error)

	// Name returns the name of the formatter (e.g., "json", "text", "csv")
	Name() string

	// Description returns a brief description of what this formatter outputs
	Description() string

	// FileExtension returns the recommended file extension for this format (e.g., ".json", ".txt", ".csv")
	FileExtension() string
}

// Registry holds all registered formatters
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry creates a new formatter registry
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
	}
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) {
	r.formatters[formatter.Name()] = formatter
}

// Get retrieves a formatter by name
func (r *Registry) Get(name string) (Formatter, bool) {
	formatter, exists := r.formatters[strings.ToLower(name)]
	return formatter, exists
}

// List returns all registered formatter names in sorted order
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatInfo provides metadata about a formatter for web UI integration
type FormatInfo struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Extension    string `json:"extension"`
	MimeType     string `json:"mime_type"`
	WebSupported bool   `json:"web_supported"`
}

// DefaultRegistry is the global formatter registry, populated by init functions
var DefaultRegistry = NewRegistry()

// Register is a convenience function to register a formatter with the default registry
func Register(formatter Formatter) {
	DefaultRegistry.Register(formatter)
}

// Get is a convenience function to get a formatter from the default registry
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// List is a convenience function to list all formatters in the default registry
func List() []string {
	return DefaultRegistry.List()
}

// UnsupportedFormatError is returned for a format no formatter is registered for
type UnsupportedFormatError struct {
	Format    string
	Available []string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format '%s'. Available formats: %s", e.Format, strings.Join(e.Available, ", "))
}

// Export is a service-level function that provides unified formatting for both CLI and Web UI
func Export(format string, reports []detector.Report, options FormatterOptions) (string, error) {
	formatter, exists := Get(format)
	if !exists {
		return "", &UnsupportedFormatError{Format: format, Available: List()}
	}
	return formatter.Format(reports, options)
}

// ExportForWeb provides web-friendly export with proper MIME types and filenames
func ExportForWeb(format string, reports []detector.Report, options FormatterOptions) (content string, mimeType string, filename string, err error) {
	content, err = Export(format, reports, options)
	if err != nil {
		return "", "", "", err
	}

	info := GetFormatInfo(format)
	return content, info.MimeType, "bias-scan-report" + info.Extension, nil
}

// GetFormatInfo returns metadata about a specific formatter
func GetFormatInfo(name string) FormatInfo {
	formatter, exists := Get(name)
	if !exists {
		return FormatInfo{}
	}

	info := FormatInfo{
		Name:         formatter.Name(),
		Description:  formatter.Description(),
		Extension:    formatter.FileExtension(),
		WebSupported: true,
	}

	switch formatter.Name() {
	case "json":
		info.MimeType = "application/json"
	case "csv":
		info.MimeType = "text/csv"
	case "yaml":
		info.MimeType = "application/x-yaml"
	case "text":
		info.MimeType = "text/plain"
	case "pdf":
		info.MimeType = "application/pdf"
	case "docx":
		info.MimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		info.MimeType = "application/octet-stream"
	}

	return info
}

// GetSupportedFormats returns information about all available formatters
func GetSupportedFormats() []FormatInfo {
	formats := make([]FormatInfo, 0, len(List()))
	for _, name := range List() {
		formats = append(formats, GetFormatInfo(name))
	}
	return formats
}
