// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// CheckInfo contains standardized information about a detection stage or bias category
type CheckInfo struct {
	Name                string             // Name of the check (e.g., "GROUPTHINK")
	ShortDescription    string             // Short description for the checks list
	DetailedDescription string             // Detailed description of what the check does
	Patterns            []string           // Patterns the check looks for
	SupportedFormats    []string           // Formats or types supported by the check
	ConfidenceFactors   []ConfidenceFactor // Factors affecting confidence
	PositiveKeywords    []string           // Keywords that increase confidence
	NegativeKeywords    []string           // Keywords that decrease confidence
	ConfigurationInfo   string             // Information about how to configure the check
	Examples            []string           // Usage examples
}

// ConfidenceFactor represents a factor that affects confidence scoring
type ConfidenceFactor struct {
	Name        string  // Name of the factor
	Description string  // Description of the factor
	Weight      float64 // Weight of the factor in the confidence score (percentage)
}

// Provider defines the interface for help content providers
type Provider interface {
	GetCheckInfo() CheckInfo
}

// System manages help content for the application
type System struct {
	providers map[string]Provider
	out       io.Writer
	noColor   bool
	colors    map[string]*color.Color
}

// NewSystem creates a new help system writing to stdout
func NewSystem(noColor bool) *System {
	// Disable colors if requested
	if noColor {
		color.NoColor = true
	}

	return &System{
		providers: make(map[string]Provider),
		out:       os.Stdout,
		noColor:   noColor,
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"header":   color.New(color.FgBlue, color.Bold),
			"item":     color.New(color.FgCyan),
			"emphasis": color.New(color.FgWhite, color.Bold),
			"positive": color.New(color.FgGreen),
			"negative": color.New(color.FgRed),
			"warning":  color.New(color.FgYellow),
			"example":  color.New(color.FgMagenta),
		},
	}
}

// SetOutput redirects help output
func (h *System) SetOutput(w io.Writer) {
	h.out = w
}

// RegisterProvider adds a help provider to the system
func (h *System) RegisterProvider(provider Provider) {
	info := provider.GetCheckInfo()
	h.providers[strings.ToLower(info.Name)] = provider
}

// Names returns the registered check names in alphabetical order
func (h *System) Names() []string {
	names := make([]string, 0, len(h.providers))
	for _, provider := range h.providers {
		names = append(names, provider.GetCheckInfo().Name)
	}
	sort.Strings(names)
	return names
}

// ShowGeneralHelp displays general help information
func (h *System) ShowGeneralHelp() {
	out := h.out
	h.colors["title"].Fprintln(out, "Bias Scan - Biased Language Detection Tool")
	fmt.Fprintln(out, "==========================================")
	fmt.Fprintln(out)
	h.colors["header"].Fprintln(out, "USAGE:")
	fmt.Fprintln(out, "  bias-scan --file <path|glob|dir> [options]")
	fmt.Fprintln(out, "  bias-scan --text \"<text>\" [options]")
	fmt.Fprintln(out, "  echo \"<text>\" | bias-scan [options]")
	fmt.Fprintln(out, "  bias-scan --web [--port <port>]  # Web server mode")
	fmt.Fprintln(out)

	h.colors["header"].Fprintln(out, "OPTIONS:")

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  --file\t<path>\tFile, glob or directory to scan")
	fmt.Fprintln(w, "  --text\t<text>\tAnalyze the given text instead of a file")
	fmt.Fprintln(w, "  --recursive\t\tRecursively scan directories")
	fmt.Fprintln(w, "  --format\t<format>\tOutput format: text, json, yaml, csv, pdf, docx (default: text)")
	fmt.Fprintln(w, "  --output\t<path>\tPath to output file (if not specified, output to stdout)")
	fmt.Fprintln(w, "  --config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(w, "  --profile\t<name>\tProfile name to use from config file")
	fmt.Fprintln(w, "  --list-profiles\t\tList available profiles in config file")
	fmt.Fprintln(w, "  --severity\t<levels>\tSeverities to display: low,medium,high,all (default: all)")
	fmt.Fprintln(w, "  --categories\t<list>\tBias categories to display, e.g. groupthink,toxic_language (default: all)")
	fmt.Fprintln(w, "  --fail-on\t<severity>\tExit with status 1 when a finding reaches this severity (default: high)")
	fmt.Fprintln(w, "  --classification-mode\t<mode>\tInclusive-context gate: whole_text or sentence (default: whole_text)")
	fmt.Fprintln(w, "  --patterns\t<path>\tYAML file with additional categories and rules")
	fmt.Fprintln(w, "  --show-improved\t\tPrint the rewritten, more inclusive text")
	fmt.Fprintln(w, "  --show-match\t\tShow matched keywords for each finding")
	fmt.Fprintln(w, "  --verbose\t\tDisplay explanations, impact and context for each finding")
	fmt.Fprintln(w, "  --debug\t\tShow extraction, gating and scoring steps")
	fmt.Fprintln(w, "  --quiet\t\tSuppress progress output (useful for scripts and CI/CD)")
	fmt.Fprintln(w, "  --no-color\t\tDisable colored output")
	fmt.Fprintln(w, "  --suppression-file\t<path>\tPath to suppression file (default: .bias-scan-suppressions.yaml)")
	fmt.Fprintln(w, "  --show-suppressed\t\tInclude suppressed findings in the output")
	fmt.Fprintln(w, "  --generate-suppressions\t\tGenerate disabled suppression rules for all findings")
	fmt.Fprintln(w, "  --web\t\tStart web server mode instead of CLI scanning")
	fmt.Fprintln(w, "  --port\t<port>\tPort for web server (default: 8080, only used with --web)")
	fmt.Fprintln(w, "  --version\t\tShow version information")
	fmt.Fprintln(w, "  --help\t\tShow this help message")
	fmt.Fprintln(w, "  --help checks\t\tList all detection stages and bias categories")
	fmt.Fprintln(w, "  --help <check>\t\tShow detailed help for a stage or category")
	w.Flush()

	fmt.Fprintln(out)
	h.colors["header"].Fprintln(out, "EXAMPLES:")
	h.colors["example"].Fprintln(out, "  bias-scan --text \"Everyone agrees, so let's not waste time\"")
	h.colors["example"].Fprintln(out, "  bias-scan --file docs/ --recursive --severity medium,high --format json")
	h.colors["example"].Fprintln(out, "  bias-scan --file review.docx --show-improved --verbose")
	h.colors["example"].Fprintln(out, "  bias-scan --file . --config bias-scan.yaml --profile strict")

	fmt.Fprintln(out)
	h.colors["header"].Fprintln(out, "EXIT CODES:")
	fmt.Fprintln(out, "  0  no findings at or above --fail-on")
	fmt.Fprintln(out, "  1  findings at or above --fail-on")
	fmt.Fprintln(out, "  2  usage or runtime error")

	fmt.Fprintln(out)
	h.colors["header"].Fprintln(out, "CONFIGURATION:")
	fmt.Fprintln(out, "  Default config: ~/.bias-scan/config.yaml")
	fmt.Fprintln(out, "  Project config: bias-scan.yaml or .bias-scan.yaml (in current directory)")
	fmt.Fprintln(out, "  Environment: BIAS_SCAN_CONFIG_DIR, BIAS_SCAN_PORT, BIAS_SCAN_CLASSIFICATION_MODE,")
	fmt.Fprintln(out, "               BIAS_SCAN_RATE_LIMIT, SENTRY_DSN (a .env file is loaded when present)")
}

// ShowChecksHelp displays information about all available checks
func (h *System) ShowChecksHelp() {
	out := h.out
	h.colors["title"].Fprintln(out, "Detection Stages and Bias Categories")
	fmt.Fprintln(out, "====================================")
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	h.colors["header"].Fprintln(w, "  CHECK\tDESCRIPTION")
	h.colors["header"].Fprintln(w, "  -----\t-----------")

	for _, name := range h.Names() {
		info := h.providers[strings.ToLower(name)].GetCheckInfo()
		fmt.Fprintf(w, "  ")
		h.colors["emphasis"].Fprintf(w, "%s", info.Name)
		fmt.Fprintf(w, "\t%s\n", info.ShortDescription)
	}
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "For detailed information about a specific check, use:")
	h.colors["example"].Fprintln(out, "  bias-scan --help <check>")
	if names := h.Names(); len(names) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Example:")
		h.colors["example"].Fprintf(out, "  bias-scan --help %s\n", strings.ToLower(names[0]))
	}
}

// ShowCheckHelp displays detailed help for a specific check
func (h *System) ShowCheckHelp(checkName string) bool {
	out := h.out
	provider, exists := h.providers[strings.ToLower(checkName)]
	if !exists {
		h.colors["negative"].Fprintf(out, "Error: Check '%s' not found.\n", checkName)
		fmt.Fprintln(out, "Use 'bias-scan --help checks' to see a list of available checks.")
		return false
	}

	info := provider.GetCheckInfo()

	h.colors["title"].Fprintf(out, "%s\n", info.Name)
	fmt.Fprintln(out, strings.Repeat("=", len(info.Name)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, info.DetailedDescription)
	fmt.Fprintln(out)

	h.printList("PATTERNS DETECTED:", info.Patterns)
	h.printList("SUPPORTED FORMATS:", info.SupportedFormats)

	if len(info.ConfidenceFactors) > 0 {
		h.colors["header"].Fprintln(out, "CONFIDENCE SCORING:")
		for _, factor := range info.ConfidenceFactors {
			fmt.Fprint(out, "   - ")
			h.colors["item"].Fprintf(out, "%s ", factor.Name)
			fmt.Fprintf(out, "(%.0f%%): %s\n", factor.Weight, factor.Description)
		}
		fmt.Fprintln(out)
	}

	if len(info.PositiveKeywords) > 0 {
		fmt.Fprint(out, "Keywords: ")
		h.colors["warning"].Fprintln(out, strings.Join(info.PositiveKeywords, ", "))
		fmt.Fprintln(out)
	}
	if len(info.NegativeKeywords) > 0 {
		fmt.Fprint(out, "Suppressing phrases: ")
		h.colors["positive"].Fprintln(out, strings.Join(info.NegativeKeywords, ", "))
		fmt.Fprintln(out)
	}

	h.colors["header"].Fprintln(out, "Severity Levels:")
	fmt.Fprint(out, "- ")
	h.colors["negative"].Fprint(out, "HIGH")
	fmt.Fprintln(out, " (above 0.7): Clearly biased wording, revise before sharing")
	fmt.Fprint(out, "- ")
	h.colors["warning"].Fprint(out, "MEDIUM")
	fmt.Fprintln(out, " (0.4 to 0.7): Likely biased, worth a second look")
	fmt.Fprint(out, "- ")
	h.colors["positive"].Fprint(out, "LOW")
	fmt.Fprintln(out, " (0.4 and below): Weak signal")
	fmt.Fprintln(out)

	if info.ConfigurationInfo != "" {
		h.colors["header"].Fprintln(out, "CONFIGURATION:")
		fmt.Fprintln(out, info.ConfigurationInfo)
		fmt.Fprintln(out)
	}

	if len(info.Examples) > 0 {
		h.colors["header"].Fprintln(out, "EXAMPLES:")
		for _, example := range info.Examples {
			fmt.Fprint(out, "  ")
			h.colors["example"].Fprintln(out, example)
		}
	}

	return true
}

func (h *System) printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	h.colors["header"].Fprintln(h.out, title)
	for _, item := range items {
		fmt.Fprint(h.out, "  - ")
		h.colors["item"].Fprintln(h.out, item)
	}
	fmt.Fprintln(h.out)
}
